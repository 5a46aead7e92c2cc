// Package postprocess applies blur effects to decoded images. Each
// postprocessor has a cache key that identifies its output for given input,
// so results can be cached per source image and key.
package postprocess

import (
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/codec"
	"github.com/nvr-ai/go-boxblur/images/kernels"
	"github.com/nvr-ai/go-boxblur/images/pixbuf"
)

// Postprocessor transforms an image. Implementations never modify src.
type Postprocessor interface {
	// Name is a short human readable name.
	Name() string
	// CacheKey identifies the output for a given input image.
	CacheKey() string
	// Process returns the processed image.
	Process(src image.Image) (*image.RGBA, error)
}

// blurCopy runs the engine on a fresh RGBA copy of src through a pixel lease.
func blurCopy(engine *kernels.Engine, src image.Image, iterations, radius int) (*image.RGBA, error) {
	dst := codec.ToRGBA(src)
	if dst == src {
		dst = image.NewRGBA(dst.Rect)
		copy(dst.Pix, src.(*image.RGBA).Pix)
	}

	if engine == nil {
		engine = &kernels.Engine{}
	}
	if err := engine.BlurBuffer(pixbuf.NewImage(dst), iterations, radius); err != nil {
		return nil, err
	}
	return dst, nil
}

// IterativeBoxBlur blurs the whole image with the iterative box blur.
type IterativeBoxBlur struct {
	Iterations int
	Radius     int
	Engine     *kernels.Engine
}

// NewIterativeBoxBlur returns a box blur with kernels.DefaultIterations passes.
func NewIterativeBoxBlur(radius int) *IterativeBoxBlur {
	return &IterativeBoxBlur{Iterations: kernels.DefaultIterations, Radius: radius}
}

func (p *IterativeBoxBlur) Name() string { return "IterativeBoxBlur" }

func (p *IterativeBoxBlur) CacheKey() string {
	return fmt.Sprintf("i%dr%d", p.Iterations, p.Radius)
}

func (p *IterativeBoxBlur) Process(src image.Image) (*image.RGBA, error) {
	return blurCopy(p.Engine, src, p.Iterations, p.Radius)
}

// ScalingBlur shrinks the image by ScaleRatio, blurs the small copy and scales
// it back to the source size. A large blur is much cheaper on the small image,
// and the upscale adds smoothing of its own.
type ScalingBlur struct {
	Iterations int
	Radius     int
	ScaleRatio int
	Engine     *kernels.Engine
}

func (p *ScalingBlur) Name() string { return "ScalingBlur" }

func (p *ScalingBlur) CacheKey() string {
	return fmt.Sprintf("i%dr%ds%d", p.Iterations, p.Radius, p.ScaleRatio)
}

func (p *ScalingBlur) Process(src image.Image) (*image.RGBA, error) {
	if p.ScaleRatio <= 1 {
		return blurCopy(p.Engine, src, p.Iterations, p.Radius)
	}

	b := src.Bounds()
	small, err := images.ScaleDown(src, p.ScaleRatio)
	if err != nil {
		return nil, errors.Wrap(err, "scale down")
	}
	if err := p.engine().BlurBuffer(pixbuf.NewImage(small), p.Iterations, p.Radius); err != nil {
		return nil, err
	}
	out, err := images.Scale(small, b.Dx(), b.Dy())
	if err != nil {
		return nil, errors.Wrap(err, "scale up")
	}
	return out, nil
}

func (p *ScalingBlur) engine() *kernels.Engine {
	if p.Engine == nil {
		return &kernels.Engine{}
	}
	return p.Engine
}

// GaussianBlur approximates a Gaussian blur of standard deviation Sigma with
// Iterations box blur passes.
type GaussianBlur struct {
	Sigma      float32
	Iterations int
	Engine     *kernels.Engine
}

func (p *GaussianBlur) Name() string { return "GaussianBlur" }

func (p *GaussianBlur) CacheKey() string {
	return fmt.Sprintf("g%.2fi%d", p.Sigma, p.Iterations)
}

// Radius is the box radius used for each pass.
func (p *GaussianBlur) Radius() int {
	return kernels.RadiusForSigma(p.Sigma, p.Iterations)
}

func (p *GaussianBlur) Process(src image.Image) (*image.RGBA, error) {
	if p.Sigma <= 0 {
		return nil, errors.Wrapf(kernels.ErrInvalidArgument, "sigma %v must be positive", p.Sigma)
	}
	return blurCopy(p.Engine, src, p.Iterations, p.Radius())
}

// Chain runs postprocessors in order, each on the previous output.
type Chain []Postprocessor

func (c Chain) Name() string {
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return strings.Join(names, "+")
}

func (c Chain) CacheKey() string {
	keys := make([]string, len(c))
	for i, p := range c {
		keys[i] = p.CacheKey()
	}
	return strings.Join(keys, "+")
}

func (c Chain) Process(src image.Image) (*image.RGBA, error) {
	if len(c) == 0 {
		return codec.ToRGBA(src), nil
	}
	cur := src
	var out *image.RGBA
	for _, p := range c {
		var err error
		if out, err = p.Process(cur); err != nil {
			return nil, errors.Wrap(err, p.Name())
		}
		cur = out
	}
	return out, nil
}
