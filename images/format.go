package images

import (
	"path/filepath"
	"strings"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
	// FormatGIF is the GIF image format. Only single-frame images are blurred.
	FormatGIF ImageFormat = "gif"
	// FormatBMP is the BMP image format.
	FormatBMP ImageFormat = "bmp"
)

var extensionFormats = map[string]ImageFormat{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".webp": FormatWebP,
	".gif":  FormatGIF,
	".bmp":  FormatBMP,
}

// FormatFromPath returns the format matching the file extension of path.
//
// Arguments:
//   - path: File name or path, the extension is matched case-insensitively.
//
// Returns:
//   - The format and true, or "" and false when the extension is not supported.
func FormatFromPath(path string) (ImageFormat, bool) {
	f, ok := extensionFormats[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// Extension returns the canonical file extension, including the dot.
func (f ImageFormat) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// Valid reports whether f is one of the supported formats.
func (f ImageFormat) Valid() bool {
	switch f {
	case FormatJPEG, FormatWebP, FormatPNG, FormatGIF, FormatBMP:
		return true
	default:
		return false
	}
}
