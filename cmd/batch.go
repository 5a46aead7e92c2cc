package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/nvr-ai/go-boxblur/images"
	"github.com/nvr-ai/go-boxblur/profiler"
	"github.com/nvr-ai/go-boxblur/util"
)

// batchCommand blurs every image of a directory.
func batchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch IN_DIR OUT_DIR",
		Short: "Blur every image file in a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := getLogger()
			defer logger.Sync()

			rec := profiler.New(profiler.Options{Logger: logger.Named("profiler")})
			if c.DevMode {
				rec.Start(cmd.Context())
				defer rec.Stop()
			}

			n, err := blurDirectory(cmd.Context(), &c, logger, rec, args[0], args[1])
			rec.Report()
			logger.Info("batch finished", zap.Int("written", n), zap.Error(err))
			return err
		},
	}
}

// errOutputConflict reports an input whose output path is already claimed by
// another input of the same batch, e.g. a.jpg and a.jpeg.
var errOutputConflict = errors.New("output path already taken")

// batchJob is one input file and the output it is written to.
type batchJob struct {
	file   util.ImageFile
	format images.ImageFormat
	target string
}

// planBatch assigns every file its output path: the base name plus the
// extension of the configured format, or of the file's own format. Files are
// claimed in order; a later file mapping to a taken path is rejected with
// errOutputConflict.
func planBatch(files []util.ImageFile, out string, format images.ImageFormat) ([]batchJob, error) {
	var (
		jobs []batchJob
		errs error
	)
	claimed := make(map[string]string, len(files))
	for _, f := range files {
		jf := format
		if jf == "" {
			jf = f.Format
		}
		base := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
		target := filepath.Join(out, base+jf.Extension())
		if owner, ok := claimed[target]; ok {
			errs = multierr.Append(errs, errors.Wrapf(errOutputConflict, "%s: %s is written from %s", f.Path, target, owner))
			continue
		}
		claimed[target] = f.Path
		jobs = append(jobs, batchJob{file: f, format: jf, target: target})
	}
	return jobs, errs
}

// blurDirectory blurs the images of in into out, keeping the base names. Every
// output is encoded in the format its extension names. Up to
// Imaging.Concurrency files are processed at once. It returns the number of
// files written and the combined errors of the failed or conflicting ones.
// Successful runs are timed into rec under the postprocessor cache key.
func blurDirectory(ctx context.Context, c *Config, logger *zap.Logger, rec *profiler.Recorder, in, out string) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	files, err := util.LoadDirectoryImageFiles(in)
	if err != nil {
		return 0, errors.Wrap(err, "load input directory")
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return 0, errors.Wrap(err, "create output directory")
	}

	p, err := c.getPipeline(logger)
	if err != nil {
		return 0, err
	}

	jobs, errs := planBatch(files, out, p.Format)
	for _, e := range multierr.Errors(errs) {
		logger.Warn("skipping image", zap.Error(e))
	}

	concurrency := c.Imaging.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		written int
	)
	for _, job := range jobs {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
			break
		}

		wg.Add(1)
		go func(job batchJob) {
			defer wg.Done()
			defer sem.Release(1)

			jp := *p
			jp.Format = job.format
			res, err := jp.Run(job.file.Data)
			if err == nil {
				rec.RecordDuration(p.Postprocessor.CacheKey(), res.Elapsed)
				rec.RecordMetric("megapixels", float64(res.Width*res.Height)/1e6)
				err = os.WriteFile(job.target, res.Data, 0o644)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Warn("failed to blur image", zap.String("path", job.file.Path), zap.Error(err))
				errs = multierr.Append(errs, errors.Wrap(err, job.file.Path))
				return
			}
			written++
		}(job)
	}
	wg.Wait()

	return written, errs
}
