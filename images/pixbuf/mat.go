package pixbuf

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-boxblur/images/kernels"
)

// Mat leases the native pixel memory of an OpenCV matrix. CV_8UC4 matrices
// are blurred in place as BGRA; CV_8UC3 and CV_8UC1 are leased and reported so
// the engine can reject them.
type Mat struct {
	guard
	mat gocv.Mat
}

// NewMat wraps m. The caller keeps ownership and must not Close it while leased.
func NewMat(m gocv.Mat) *Mat {
	return &Mat{mat: m}
}

func matFormat(t gocv.MatType) (kernels.PixelFormat, int) {
	switch t {
	case gocv.MatTypeCV8UC4:
		return kernels.FormatBGRA8888, 4
	case gocv.MatTypeCV8UC3:
		return kernels.FormatRGB888, 3
	case gocv.MatTypeCV8UC1:
		return kernels.FormatGray8, 1
	default:
		return kernels.FormatUnknown, 0
	}
}

// Acquire implements kernels.BufferProvider.
func (p *Mat) Acquire() (kernels.Lease, error) {
	if p.mat.Empty() {
		return kernels.Lease{}, errors.Wrap(kernels.ErrBufferAccess, "empty mat")
	}
	if !p.mat.IsContinuous() {
		return kernels.Lease{}, errors.Wrap(kernels.ErrBufferAccess, "mat memory is not continuous")
	}

	format, bpp := matFormat(p.mat.Type())
	if format == kernels.FormatUnknown {
		return kernels.Lease{}, errors.Wrapf(kernels.ErrUnsupportedFormat, "mat type %v", p.mat.Type())
	}

	if err := p.lock(); err != nil {
		return kernels.Lease{}, err
	}

	data, err := p.mat.DataPtrUint8()
	if err != nil {
		_ = p.unlock()
		return kernels.Lease{}, errors.Wrapf(kernels.ErrBufferAccess, "mat data: %v", err)
	}

	w, h := p.mat.Cols(), p.mat.Rows()
	return kernels.Lease{
		Pix:    data[:w*h*bpp],
		Width:  w,
		Height: h,
		Format: format,
	}, nil
}

// Release implements kernels.BufferProvider.
func (p *Mat) Release() error {
	return p.unlock()
}
