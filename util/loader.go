package util

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/nvr-ai/go-boxblur/images"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file.
	Data []byte
	// Format is the format implied by the file extension.
	Format images.ImageFormat
}

// LoadDirectoryImageFiles reads all image files from a directory.
//
// Arguments:
// - dir: Directory path containing image files. Subdirectories are skipped.
//
// Returns:
// - []ImageFile: Slice of ImageFile sorted by file name, each containing the raw bytes of an image file.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var imgs []ImageFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		format, ok := images.FormatFromPath(file.Name())
		if !ok {
			continue
		}

		imgPath := filepath.Join(dir, file.Name())
		data, readErr := os.ReadFile(imgPath)
		if readErr != nil {
			return nil, readErr
		}
		imgs = append(imgs, ImageFile{
			Path:   imgPath,
			Data:   data,
			Format: format,
		})
	}

	sort.Slice(imgs, func(i, j int) bool {
		return imgs[i].Path < imgs[j].Path
	})

	return imgs, nil
}
