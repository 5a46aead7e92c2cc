package images

import (
	"crypto/md5"
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// Checksum generates a deterministic checksum of the visible pixels of img,
// skipping any stride padding.
//
// Arguments:
// - img: The image to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, "empty" for an empty image.
//
// Example:
//
// ```go
//
//	before := Checksum(img)
//	_ = kernels.IterativeBoxBlur(img.Pix, w, h, 3, 5)
//	fmt.Printf("%s -> %s\n", before, Checksum(img))
//
// ```
func Checksum(img *image.RGBA) string {
	if img == nil || img.Rect.Empty() {
		return "empty"
	}

	hash := md5.New()
	n := img.Rect.Dx() * 4
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		off := img.PixOffset(img.Rect.Min.X, y)
		hash.Write(img.Pix[off : off+n])
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// ComputeMatChecksum generates a deterministic checksum for a Mat to verify idempotency.
//
// Arguments:
// - mat: The Mat to compute checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string.
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	data, err := mat.DataPtrUint8()
	if err != nil {
		return "unreadable"
	}
	hash := md5.New()
	hash.Write(data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
