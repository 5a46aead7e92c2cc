package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/codec"
	"github.com/nvr-ai/go-boxblur/images/kernels"
	"github.com/nvr-ai/go-boxblur/images/postprocess"
)

// Config holds every setting of the command line tools.
type Config struct {
	// DevMode enables debug console logging (default: false)
	DevMode bool `mapstructure:"dev" yaml:"dev"`

	// Blur selects the postprocessor.
	Blur struct {
		// Iterations is the number of row and column passes (default: 3)
		Iterations int `mapstructure:"iterations" yaml:"iterations"`
		// Radius is the box radius in pixels (default: 10)
		Radius int `mapstructure:"radius" yaml:"radius"`
		// ScaleRatio shrinks the image before blurring when greater than 1 (default: 1)
		ScaleRatio int `mapstructure:"scaleRatio" yaml:"scaleRatio"`
		// Sigma derives the radius from a gaussian standard deviation when positive (default: 0)
		Sigma float32 `mapstructure:"sigma" yaml:"sigma"`
	} `mapstructure:"blur" yaml:"blur"`

	// Imaging limits decoding and processing.
	Imaging struct {
		// MaxPixels is the largest decodable image (default: 2560*1600*4)
		MaxPixels int `mapstructure:"maxPixels" yaml:"maxPixels"`
		// Concurrency is the number of files processed at once (default: 1)
		Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
		// MemoryLimit caps the blur scratch allocation in bytes (default: 64MiB)
		MemoryLimit int `mapstructure:"memoryLimit" yaml:"memoryLimit"`
		// AutoOrient applies EXIF orientation on decode (default: true)
		AutoOrient bool `mapstructure:"autoOrient" yaml:"autoOrient"`
	} `mapstructure:"imaging" yaml:"imaging"`

	// Output configures encoding.
	Output struct {
		// Format of written files, empty keeps the input format (default: "")
		Format string `mapstructure:"format" yaml:"format"`
		// Quality of JPEG and lossy WebP output (default: 90)
		Quality int `mapstructure:"quality" yaml:"quality"`
		// Lossless selects lossless WebP output (default: false)
		Lossless bool `mapstructure:"lossless" yaml:"lossless"`
	} `mapstructure:"output" yaml:"output"`
}

func init() {
	viper.SetDefault("dev", false)
	viper.SetDefault("blur.iterations", kernels.DefaultIterations)
	viper.SetDefault("blur.radius", 10)
	viper.SetDefault("blur.scaleRatio", 1)
	viper.SetDefault("blur.sigma", 0)
	viper.SetDefault("imaging.maxPixels", 2560*1600*4)
	viper.SetDefault("imaging.concurrency", 1)
	viper.SetDefault("imaging.memoryLimit", kernels.DefaultMemoryLimit)
	viper.SetDefault("imaging.autoOrient", true)
	viper.SetDefault("output.format", "")
	viper.SetDefault("output.quality", codec.DefaultQuality)
	viper.SetDefault("output.lossless", false)
}

func (c *Config) getEngine(logger *zap.Logger) *kernels.Engine {
	return kernels.NewEngine(c.Imaging.MemoryLimit, logger.Named("kernels"))
}

func (c *Config) getCodec() codec.Codec {
	return codec.New(codec.Config{
		MaxPixels:  c.Imaging.MaxPixels,
		AutoOrient: c.Imaging.AutoOrient,
		Quality:    c.Output.Quality,
		Lossless:   c.Output.Lossless,
	})
}

// getPostprocessor picks the gaussian approximation when a sigma is set, the
// scaling blur when a scale ratio is set, and the plain box blur otherwise.
func (c *Config) getPostprocessor(engine *kernels.Engine) postprocess.Postprocessor {
	switch {
	case c.Blur.Sigma > 0:
		return &postprocess.GaussianBlur{Sigma: c.Blur.Sigma, Iterations: c.Blur.Iterations, Engine: engine}
	case c.Blur.ScaleRatio > 1:
		return &postprocess.ScalingBlur{
			Iterations: c.Blur.Iterations,
			Radius:     c.Blur.Radius,
			ScaleRatio: c.Blur.ScaleRatio,
			Engine:     engine,
		}
	default:
		return &postprocess.IterativeBoxBlur{Iterations: c.Blur.Iterations, Radius: c.Blur.Radius, Engine: engine}
	}
}

func (c *Config) getOutputFormat() (images.ImageFormat, error) {
	f := images.ImageFormat(c.Output.Format)
	if f == "" || f.Valid() {
		return f, nil
	}
	return "", errors.Wrapf(codec.ErrUnsupportedImageFormat, "output format %q", c.Output.Format)
}

func (c *Config) getPipeline(logger *zap.Logger) (*postprocess.Pipeline, error) {
	format, err := c.getOutputFormat()
	if err != nil {
		return nil, err
	}
	return &postprocess.Pipeline{
		Codec:         c.getCodec(),
		Postprocessor: c.getPostprocessor(c.getEngine(logger)),
		Format:        format,
		Logger:        logger.Named("pipeline"),
	}, nil
}
