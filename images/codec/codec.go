// Package codec decodes compressed images into RGBA pixel buffers the blur
// engine can lease, and encodes them back.
package codec

import (
	"bytes"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/gen2brain/jpegn"
	"github.com/pkg/errors"
	"github.com/sapphi-red/midec"
	_ "github.com/sapphi-red/midec/gif" // animation detection
	_ "github.com/sapphi-red/midec/png"
	_ "github.com/sapphi-red/midec/webp"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp" // header probing

	"github.com/nvr-ai/go-boxblur/images"
)

var (
	// ErrInvalidImageSrc reports bytes that claim a known format but fail to decode.
	ErrInvalidImageSrc = errors.New("invalid image src")
	// ErrUnsupportedImageFormat reports bytes or a target format no codec handles.
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
	// ErrPixelLimitExceeded reports an image larger than Config.MaxPixels.
	ErrPixelLimitExceeded = errors.New("the image exceeds max pixels limit")
	// ErrAnimatedImage reports a multi-frame GIF, APNG or WebP.
	ErrAnimatedImage = errors.New("animated images are not supported")
)

// DefaultQuality is the JPEG and lossy WebP quality used when Config.Quality is zero.
const DefaultQuality = 90

// Codec converts between compressed bytes and RGBA pixel buffers.
type Codec interface {
	// Decode returns the first frame of data as an RGBA image with bounds at (0, 0).
	Decode(data []byte) (*image.RGBA, error)
	// DecodeImage is Decode that also returns the header metadata it probed.
	DecodeImage(data []byte) (*image.RGBA, images.Image, error)
	// Encode compresses img in the given format.
	Encode(img image.Image, format images.ImageFormat) ([]byte, error)
}

// Config configures the default codec.
type Config struct {
	// MaxPixels rejects larger images before decoding. Zero disables the check.
	MaxPixels int
	// AutoOrient applies the EXIF orientation of JPEG (and TIFF-tagged) sources.
	AutoOrient bool
	// Quality is the JPEG and lossy WebP quality in [1, 100].
	Quality int
	// Lossless selects lossless WebP output.
	Lossless bool
}

type defaultCodec struct {
	c Config
}

// New returns the default codec.
func New(c Config) Codec {
	if c.Quality <= 0 || c.Quality > 100 {
		c.Quality = DefaultQuality
	}
	return &defaultCodec{c: c}
}

// Probe reads the header of data and reports its format and dimensions
// without decoding pixels.
func Probe(data []byte) (images.Image, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return images.Image{}, ErrUnsupportedImageFormat
		}
		return images.Image{}, errors.Wrapf(ErrInvalidImageSrc, "read header: %v", err)
	}

	format := images.ImageFormat(name)
	if !format.Valid() {
		return images.Image{}, errors.Wrapf(ErrUnsupportedImageFormat, "format %q", name)
	}
	return images.Image{
		Format: format,
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

func (d *defaultCodec) Decode(data []byte) (*image.RGBA, error) {
	img, _, err := d.DecodeImage(data)
	return img, err
}

func (d *defaultCodec) DecodeImage(data []byte) (*image.RGBA, images.Image, error) {
	meta, err := Probe(data)
	if err != nil {
		return nil, images.Image{}, err
	}

	// pixel limit before any decoding work
	if d.c.MaxPixels > 0 && meta.Pixels() > d.c.MaxPixels {
		return nil, meta, errors.Wrapf(ErrPixelLimitExceeded, "%dx%d > %d pixels", meta.Width, meta.Height, d.c.MaxPixels)
	}

	switch meta.Format {
	case images.FormatGIF, images.FormatPNG, images.FormatWebP:
		animated, err := midec.IsAnimated(bytes.NewReader(data))
		if err != nil {
			return nil, meta, errors.Wrapf(ErrInvalidImageSrc, "inspect frames: %v", err)
		}
		if animated {
			return nil, meta, ErrAnimatedImage
		}
	}

	var img image.Image
	switch meta.Format {
	case images.FormatJPEG:
		img, err = jpegn.Decode(bytes.NewReader(data), &jpegn.Options{
			ToRGBA:         true,
			UpsampleMethod: jpegn.CatmullRom,
			AutoRotate:     d.c.AutoOrient,
		})
	case images.FormatWebP:
		img, err = webp.DecodeRGBA(data)
	default:
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(d.c.AutoOrient))
	}
	if err != nil {
		return nil, meta, errors.Wrapf(ErrInvalidImageSrc, "decode %s: %v", meta.Format, err)
	}

	return ToRGBA(img), meta, nil
}

func (d *defaultCodec) Encode(img image.Image, format images.ImageFormat) ([]byte, error) {
	var (
		buf bytes.Buffer
		err error
	)
	switch format {
	case images.FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: d.c.Quality})
	case images.FormatPNG:
		err = png.Encode(&buf, img)
	case images.FormatGIF:
		err = gif.Encode(&buf, img, nil)
	case images.FormatBMP:
		err = bmp.Encode(&buf, img)
	case images.FormatWebP:
		err = webp.Encode(&buf, img, &webp.Options{Lossless: d.c.Lossless, Quality: float32(d.c.Quality)})
	default:
		return nil, errors.Wrapf(ErrUnsupportedImageFormat, "encode %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", format)
	}
	return buf.Bytes(), nil
}

// ToRGBA returns img as a contiguous *image.RGBA with bounds starting at (0, 0),
// converting to premultiplied alpha when needed.
func ToRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if m, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && m.Stride == b.Dx()*4 {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
