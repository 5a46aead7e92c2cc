// Package images - Image definition for processing utilities.
package images

// Image represents an image with a format, data, width, and height.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// Pixels returns the number of pixels of the decoded image.
func (i Image) Pixels() int {
	return i.Width * i.Height
}
