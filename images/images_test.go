package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestImage() *image.RGBA {
	// Create a simple 100x100 red image.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	return img
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]ImageFormat{
		"a.jpg":          FormatJPEG,
		"dir/B.JPEG":     FormatJPEG,
		"c.png":          FormatPNG,
		"d.webp":         FormatWebP,
		"e.gif":          FormatGIF,
		"/tmp/frame.bmp": FormatBMP,
	}
	for path, want := range cases {
		got, ok := FormatFromPath(path)
		assert.True(t, ok, "%s should be supported", path)
		assert.Equal(t, want, got, "format of %s", path)
	}

	_, ok := FormatFromPath("notes.txt")
	assert.False(t, ok, "unknown extensions should not match")
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".jpg", FormatJPEG.Extension())
	assert.Equal(t, ".webp", FormatWebP.Extension())
	assert.True(t, FormatBMP.Valid())
	assert.False(t, ImageFormat("tiff").Valid())
}

func TestChecksum(t *testing.T) {
	a := getTestImage()
	b := getTestImage()
	assert.Equal(t, Checksum(a), Checksum(b), "identical pixels should hash identically")

	b.SetRGBA(50, 50, color.RGBA{0, 0, 255, 255})
	assert.NotEqual(t, Checksum(a), Checksum(b), "a changed pixel should change the checksum")

	// Sub-images hash only their visible rows.
	sub := a.SubImage(image.Rect(10, 10, 20, 20)).(*image.RGBA)
	small := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := range small.Pix {
		small.Pix[i] = []uint8{255, 0, 0, 255}[i%4]
	}
	assert.Equal(t, Checksum(small), Checksum(sub))

	assert.Equal(t, "empty", Checksum(nil))
}

func TestScale(t *testing.T) {
	img, err := Scale(getTestImage(), 40, 25)
	require.NoError(t, err, "Scale should not error for valid input")
	assert.Equal(t, image.Rect(0, 0, 40, 25), img.Rect, "Scaled image should have requested size")
	px := img.RGBAAt(20, 12)
	assert.InDelta(t, 255, int(px.R), 1, "uniform color should survive scaling")
	assert.InDelta(t, 0, int(px.G), 1, "uniform color should survive scaling")

	_, err = Scale(getTestImage(), 0, 10)
	assert.EqualError(t, err, "invalid target dimensions: 0x10", "Scale should error for zero dimensions")
}

func TestScaleSameSizeCopies(t *testing.T) {
	src := getTestImage()
	img, err := Scale(src, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, src.Pix, img.Pix)
	assert.NotSame(t, &src.Pix[0], &img.Pix[0], "same-size scaling should still copy")
}

func TestScaleDown(t *testing.T) {
	img, err := ScaleDown(getTestImage(), 4)
	require.NoError(t, err)
	assert.Equal(t, 25, img.Rect.Dx())

	tiny, err := ScaleDown(image.NewRGBA(image.Rect(0, 0, 3, 3)), 8)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1, 1), tiny.Rect, "at least one pixel should remain")

	_, err = ScaleDown(getTestImage(), 0)
	assert.EqualError(t, err, "invalid scale ratio: 0")
}
