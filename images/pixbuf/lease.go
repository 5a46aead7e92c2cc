package pixbuf

import (
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-boxblur/images/kernels"
)

// guard tracks whether a lease is outstanding.
type guard struct {
	held atomic.Bool
}

func (g *guard) lock() error {
	if !g.held.CompareAndSwap(false, true) {
		return errors.Wrap(kernels.ErrBufferAccess, "pixels already acquired")
	}
	return nil
}

func (g *guard) unlock() error {
	if !g.held.CompareAndSwap(true, false) {
		return errors.Wrap(kernels.ErrBufferAccess, "pixels not acquired")
	}
	return nil
}

// Held reports whether a lease is currently outstanding.
func (g *guard) Held() bool {
	return g.held.Load()
}
