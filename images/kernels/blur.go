package kernels

import (
	"image"
	"image/draw"
	"sync"
)

// DefaultIterations is the number of passes used when Options.Iterations is zero.
const DefaultIterations = 3

// Options configures the out-of-place blur helpers.
type Options struct {
	Radius     int     // Blur radius (window size = 2*Radius + 1). Zero returns a copy.
	Iterations int     // Row+column passes. Zero means DefaultIterations.
	Pool       *Pool   // Optional buffer pool for dst reuse.
	Engine     *Engine // Optional engine; nil uses the default one.
}

func (o Options) iterations() int {
	if o.Iterations <= 0 {
		return DefaultIterations
	}
	return o.Iterations
}

// Pool lets callers reuse destination images across frames to reduce GC pressure.
type Pool struct {
	rgba sync.Pool // *image.RGBA
}

func (p *Pool) GetRGBA(bounds image.Rectangle) *image.RGBA {
	if p == nil {
		return image.NewRGBA(bounds)
	}
	if v := p.rgba.Get(); v != nil {
		img := v.(*image.RGBA)
		if img.Rect == bounds {
			return img
		}
	}
	return image.NewRGBA(bounds)
}

func (p *Pool) PutRGBA(img *image.RGBA) {
	if p == nil || img == nil {
		return
	}
	// The next writer fully overwrites, so no clearing.
	p.rgba.Put(img)
}

// BoxBlur returns a blurred copy of src as *image.RGBA. The source is never
// modified: it is copied into a (possibly pooled) RGBA image which is then
// blurred in place by the iterative engine.
//
// Radius zero returns an unblurred copy. Errors are those of Engine.Blur.
func BoxBlur(src image.Image, opt Options) (*image.RGBA, error) {
	b := src.Bounds()
	dst := opt.Pool.GetRGBA(b)
	drawImage(dst, src)

	if opt.Radius == 0 {
		return dst, nil
	}

	engine := opt.Engine
	if engine == nil {
		engine = defaultEngine
	}
	if err := engine.Blur(dst.Pix, b.Dx(), b.Dy(), opt.iterations(), opt.Radius); err != nil {
		opt.Pool.PutRGBA(dst)
		return nil, err
	}
	return dst, nil
}

// drawImage copies src into dst, converting to premultiplied RGBA when needed.
func drawImage(dst *image.RGBA, src image.Image) {
	if s, ok := src.(*image.RGBA); ok && s.Rect == dst.Rect && s.Stride == dst.Stride {
		copy(dst.Pix, s.Pix)
		return
	}
	draw.Draw(dst, dst.Rect, src, src.Bounds().Min, draw.Src)
}

// BlurRegions blurs only the given regions by compositing from a blurred copy.
// This costs one full-frame blur plus a few rectangle copies.
// Regions are clipped to bounds; overlapping regions are handled naturally.
func BlurRegions(src image.Image, regions []image.Rectangle, opt Options) (*image.RGBA, error) {
	blurred, err := BoxBlur(src, Options{Radius: opt.Radius, Iterations: opt.Iterations, Engine: opt.Engine})
	if err != nil {
		return nil, err
	}

	out := opt.Pool.GetRGBA(src.Bounds())
	drawImage(out, src)

	b := out.Rect
	for _, r := range regions {
		r = r.Intersect(b)
		if r.Empty() {
			continue
		}
		n := r.Dx() * 4
		for y := r.Min.Y; y < r.Max.Y; y++ {
			srcOff := blurred.PixOffset(r.Min.X, y)
			dstOff := out.PixOffset(r.Min.X, y)
			copy(out.Pix[dstOff:dstOff+n], blurred.Pix[srcOff:srcOff+n])
		}
	}
	return out, nil
}
