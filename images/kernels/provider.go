package kernels

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// PixelFormat describes the byte layout of a locked pixel buffer.
type PixelFormat int

const (
	// FormatUnknown is a layout the provider could not classify.
	FormatUnknown PixelFormat = iota
	// FormatRGBA8888 is premultiplied R, G, B, A bytes (image.RGBA).
	FormatRGBA8888
	// FormatNRGBA8888 is non-premultiplied R, G, B, A bytes (image.NRGBA).
	FormatNRGBA8888
	// FormatBGRA8888 is B, G, R, A bytes (OpenCV CV_8UC4).
	FormatBGRA8888
	// FormatRGB888 is three 8-bit channels without alpha.
	FormatRGB888
	// FormatGray8 is a single 8-bit channel.
	FormatGray8
)

var formatNames = map[PixelFormat]string{
	FormatUnknown:   "unknown",
	FormatRGBA8888:  "RGBA_8888",
	FormatNRGBA8888: "NRGBA_8888",
	FormatBGRA8888:  "BGRA_8888",
	FormatRGB888:    "RGB_888",
	FormatGray8:     "GRAY_8",
}

func (f PixelFormat) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return formatNames[FormatUnknown]
}

// Blurrable reports whether the engine can operate on the format: four
// channels of eight bits each, in any fixed order.
func (f PixelFormat) Blurrable() bool {
	switch f {
	case FormatRGBA8888, FormatNRGBA8888, FormatBGRA8888:
		return true
	default:
		return false
	}
}

// Lease is the view of a pixel buffer granted by a BufferProvider. Pix is only
// valid between Acquire and Release.
type Lease struct {
	// Pix holds Width*Height pixels, row-major, without row padding.
	Pix []uint8
	// Width is the number of pixels per row.
	Width int
	// Height is the number of rows.
	Height int
	// Format is the layout reported by the provider.
	Format PixelFormat
}

// BufferProvider grants exclusive access to a pixel buffer owned by someone else.
// Release must only be called after a successful Acquire.
type BufferProvider interface {
	Acquire() (Lease, error)
	Release() error
}

// BlurBuffer acquires the provider's pixels, blurs them in place and releases
// them again. Release runs on every path once Acquire succeeded, including
// validation failures.
func (e *Engine) BlurBuffer(p BufferProvider, iterations, radius int) (err error) {
	lease, err := p.Acquire()
	if err != nil {
		if errors.Is(err, ErrBufferAccess) || errors.Is(err, ErrUnsupportedFormat) {
			return err
		}
		return errors.Wrapf(ErrBufferAccess, "acquire pixels: %v", err)
	}
	defer func() {
		if rerr := p.Release(); rerr != nil {
			if !errors.Is(rerr, ErrBufferAccess) {
				rerr = errors.Wrapf(ErrBufferAccess, "release pixels: %v", rerr)
			}
			err = multierr.Append(err, rerr)
		}
	}()

	if !lease.Format.Blurrable() {
		e.logger().Debug("rejecting pixel format", zap.Stringer("format", lease.Format))
		return errors.Wrapf(ErrUnsupportedFormat, "format %s", lease.Format)
	}

	return e.Blur(lease.Pix, lease.Width, lease.Height, iterations, radius)
}

// BlurBuffer runs BlurBuffer on the default engine.
func BlurBuffer(p BufferProvider, iterations, radius int) error {
	return defaultEngine.BlurBuffer(p, iterations, radius)
}
