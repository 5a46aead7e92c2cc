package pixbuf

import (
	"image"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-boxblur/images/kernels"
)

// Image leases the pixels of a Go image. *image.RGBA and *image.NRGBA are
// blurrable; *image.Gray is leased and reported as kernels.FormatGray8 so the
// engine can reject it. Any other image type fails to acquire.
type Image struct {
	guard
	img image.Image
}

// NewImage wraps img. The image must not be resized while leased.
func NewImage(img image.Image) *Image {
	return &Image{img: img}
}

// Acquire implements kernels.BufferProvider.
func (p *Image) Acquire() (kernels.Lease, error) {
	if p.img == nil {
		return kernels.Lease{}, errors.Wrap(kernels.ErrBufferAccess, "no image")
	}

	var (
		pix    []uint8
		stride int
		rect   image.Rectangle
		format kernels.PixelFormat
		bpp    int
	)
	switch m := p.img.(type) {
	case *image.RGBA:
		pix, stride, rect, format, bpp = m.Pix, m.Stride, m.Rect, kernels.FormatRGBA8888, 4
	case *image.NRGBA:
		pix, stride, rect, format, bpp = m.Pix, m.Stride, m.Rect, kernels.FormatNRGBA8888, 4
	case *image.Gray:
		pix, stride, rect, format, bpp = m.Pix, m.Stride, m.Rect, kernels.FormatGray8, 1
	default:
		return kernels.Lease{}, errors.Wrapf(kernels.ErrUnsupportedFormat, "image type %T", p.img)
	}

	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return kernels.Lease{}, errors.Wrapf(kernels.ErrBufferAccess, "empty image %v", rect)
	}
	if h > 1 && stride != w*bpp {
		return kernels.Lease{}, errors.Wrapf(kernels.ErrUnsupportedFormat,
			"rows are not contiguous: stride %d for width %d", stride, w)
	}

	if err := p.lock(); err != nil {
		return kernels.Lease{}, err
	}

	// Pix[0] is the pixel at Rect.Min, sub-images included.
	return kernels.Lease{
		Pix:    pix[:w*h*bpp],
		Width:  w,
		Height: h,
		Format: format,
	}, nil
}

// Release implements kernels.BufferProvider.
func (p *Image) Release() error {
	return p.unlock()
}
