package images

import (
	"image"
	"image/draw"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Scale resizes src to the given width and height with bilinear interpolation,
// returning a Go-native RGBA image.
//
// Arguments:
//   - src: The image to resize.
//   - width: The width to resize the image to.
//   - height: The height to resize the image to.
//
// Returns:
//   - *image.RGBA: The resized image, with bounds starting at (0, 0).
//   - error: An error if the target dimensions are not positive.
func Scale(src image.Image, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid target dimensions: %dx%d", width, height)
	}

	b := src.Bounds()
	if b.Dx() == width && b.Dy() == height {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
		return dst, nil
	}

	scaled := resize.Resize(uint(width), uint(height), src, resize.Bilinear)
	if rgba, ok := scaled.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Rect, scaled, scaled.Bounds().Min, draw.Src)
	return dst, nil
}

// ScaleDown shrinks src by an integer ratio, keeping at least one pixel per axis.
func ScaleDown(src image.Image, ratio int) (*image.RGBA, error) {
	if ratio < 1 {
		return nil, errors.Errorf("invalid scale ratio: %d", ratio)
	}
	b := src.Bounds()
	return Scale(src, max(1, b.Dx()/ratio), max(1, b.Dy()/ratio))
}
