package postprocess

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/images/codec"
)

// Pipeline decodes an image, runs a postprocessor and encodes the result.
type Pipeline struct {
	Codec         codec.Codec
	Postprocessor Postprocessor
	// Format of the output. Empty keeps the input format.
	Format images.ImageFormat
	Logger *zap.Logger
}

// Result is the output of one pipeline run.
type Result struct {
	Data     []byte
	Format   images.ImageFormat
	Width    int
	Height   int
	Checksum string
	Elapsed  time.Duration
}

// Run processes one encoded image.
func (p *Pipeline) Run(data []byte) (*Result, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	src, meta, err := p.Codec.DecodeImage(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	format := p.Format
	if format == "" {
		format = meta.Format
	}

	out, err := p.Postprocessor.Process(src)
	if err != nil {
		return nil, errors.Wrap(err, "postprocess")
	}

	encoded, err := p.Codec.Encode(out, format)
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}

	res := &Result{
		Data:     encoded,
		Format:   format,
		Width:    out.Rect.Dx(),
		Height:   out.Rect.Dy(),
		Checksum: images.Checksum(out),
		Elapsed:  time.Since(start),
	}
	log.Debug("pipeline run",
		zap.String("postprocessor", p.Postprocessor.Name()),
		zap.String("cache_key", p.Postprocessor.CacheKey()),
		zap.String("input_format", string(meta.Format)),
		zap.String("output_format", string(format)),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.String("checksum", res.Checksum),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}
