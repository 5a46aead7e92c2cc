package cmd

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-boxblur/images"
)

// blurCommand blurs a single image file.
func blurCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "blur IN OUT",
		Short: "Blur one image file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLogger()
			defer logger.Sync()

			return blurFile(&c, logger, args[0], args[1])
		},
	}
}

// blurFile reads in, blurs it and writes the result to out. Without a
// configured output format the extension of out decides, then the input format.
// An unknown extension of out is logged and otherwise ignored.
func blurFile(c *Config, logger *zap.Logger, in, out string) error {
	cfg := *c
	if cfg.Output.Format == "" {
		if f, ok := images.FormatFromPath(out); ok {
			cfg.Output.Format = string(f)
		} else if ext := filepath.Ext(out); ext != "" {
			logger.Warn("output extension is not a supported format, keeping the input format",
				zap.String("out", out),
				zap.String("extension", ext))
		}
	}

	p, err := cfg.getPipeline(logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return errors.Wrap(err, "read input")
	}
	res, err := p.Run(data)
	if err != nil {
		return errors.Wrap(err, in)
	}
	if err := os.WriteFile(out, res.Data, 0o644); err != nil {
		return errors.Wrap(err, "write output")
	}

	logger.Info("blurred image",
		zap.String("in", in),
		zap.String("out", out),
		zap.String("postprocessor", p.Postprocessor.CacheKey()),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Duration("elapsed", res.Elapsed))
	return nil
}
