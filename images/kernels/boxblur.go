package kernels

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// These bounds are small enough to keep every index and channel sum inside the
// integer types used below.
const (
	MaxDimension  = 65536
	MaxIterations = 65536
	MaxRadius     = 65536
)

// Channels is the number of bytes per pixel the engine works on.
const Channels = 4

// DefaultMemoryLimit covers the division table and scratch line of the largest
// valid radius and dimensions.
const DefaultMemoryLimit = 64 << 20

// Engine runs the iterative box blur. The zero value is ready to use with
// DefaultMemoryLimit and no logging.
type Engine struct {
	// MemoryLimit caps the bytes allocated per call for the division table and
	// scratch line. Zero means DefaultMemoryLimit.
	MemoryLimit int
	// Logger receives debug and failure logs. Nil disables logging.
	Logger *zap.Logger
}

var defaultEngine = &Engine{}

// NewEngine returns an engine with the given memory limit and logger.
func NewEngine(memoryLimit int, logger *zap.Logger) *Engine {
	return &Engine{MemoryLimit: memoryLimit, Logger: logger}
}

func (e *Engine) logger() *zap.Logger {
	if e == nil || e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Engine) memoryLimit() int {
	if e == nil || e.MemoryLimit <= 0 {
		return DefaultMemoryLimit
	}
	return e.MemoryLimit
}

// IterativeBoxBlur blurs pix in place with the default engine.
func IterativeBoxBlur(pix []uint8, width, height, iterations, radius int) error {
	return defaultEngine.Blur(pix, width, height, iterations, radius)
}

// Blur blurs width*height 4-byte pixels in place.
//
// Every iteration runs a moving-average pass over all rows followed by a pass
// over all columns, each averaging the 2*radius+1 pixels centered on the output
// with edge pixels repeated. The runtime is O(iterations * width * height)
// independent of the radius. Memory is 256*(2*radius+1) bytes for the division
// table plus max(width, height)*4 bytes of scratch.
//
// All errors are detected before the first write, so pix is left untouched when
// an error is returned.
func (e *Engine) Blur(pix []uint8, width, height, iterations, radius int) error {
	if iterations <= 0 || iterations > MaxIterations {
		return errors.Wrapf(ErrInvalidArgument, "iterations %d out of bounds [1, %d]", iterations, MaxIterations)
	}
	if radius <= 0 || radius > MaxRadius {
		return errors.Wrapf(ErrInvalidArgument, "blur radius %d out of bounds [1, %d]", radius, MaxRadius)
	}
	if width <= 0 || width > MaxDimension || height <= 0 || height > MaxDimension {
		return errors.Wrapf(ErrInvalidArgument, "dimensions %dx%d out of bounds [1, %d]", width, height, MaxDimension)
	}
	if need := width * height * Channels; len(pix) < need {
		return errors.Wrapf(ErrInvalidArgument, "buffer holds %d bytes, %dx%d needs %d", len(pix), width, height, need)
	}

	log := e.logger()
	est := EstimateMemory(width, height, radius)
	if limit := e.memoryLimit(); est.Total > limit {
		log.Error("blur allocation over limit",
			zap.Int("iterations", iterations),
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Int("radius", radius),
			zap.Int("required", est.Total),
			zap.Int("limit", limit))
		return errors.Wrapf(ErrOutOfMemory, "%d iterations on %dx%d with radius %d needs %d bytes, limit %d",
			iterations, width, height, radius, est.Total, limit)
	}

	log.Debug("box blur",
		zap.Int("iterations", iterations),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("radius", radius),
		zap.Int("table_bytes", est.TableBytes),
		zap.Int("scratch_bytes", est.ScratchBytes))

	div := NewDivisionTable(radius)
	line := make([]uint8, max(width, height)*Channels)
	rowBytes := width * Channels

	for i := 0; i < iterations; i++ {
		for row := 0; row < height; row++ {
			horizontalBlur(pix, line, width, row, radius, div)
			copy(pix[row*rowBytes:(row+1)*rowBytes], line[:rowBytes])
		}

		for col := 0; col < width; col++ {
			verticalBlur(pix, line, width, height, col, radius, div)
			p := col * Channels
			for row := 0; row < height; row++ {
				o := row * Channels
				copy(pix[p:p+Channels], line[o:o+Channels])
				p += rowBytes
			}
		}
	}

	return nil
}

// horizontalBlur writes the blurred version of row into out. Every pixel of the
// row is read once on entering and once on leaving the window; positions
// outside the row repeat the edge pixel.
func horizontalBlur(pix, out []uint8, width, row, radius int, div DivisionTable) {
	first := width * row
	last := first + width - 1
	diameter := 2*radius + 1

	var s0, s1, s2, s3 uint32

	// i is relative to the first pixel of the row.
	for i := -radius; i < width+radius; i++ {
		p := bound(first+i, first, last) * Channels
		s0 += uint32(pix[p])
		s1 += uint32(pix[p+1])
		s2 += uint32(pix[p+2])
		s3 += uint32(pix[p+3])

		if i >= radius {
			o := (i - radius) * Channels
			out[o] = div[s0]
			out[o+1] = div[s1]
			out[o+2] = div[s2]
			out[o+3] = div[s3]

			q := bound(first+i-(diameter-1), first, last) * Channels
			s0 -= uint32(pix[q])
			s1 -= uint32(pix[q+1])
			s2 -= uint32(pix[q+2])
			s3 -= uint32(pix[q+3])
		}
	}
}

// verticalBlur writes the blurred version of col into out, top to bottom.
//
//	[ 0 ] [   ] [ col          ] [   ] [ w-1 ]
//	[   ] [   ] [ col+w        ] [   ] [     ]
//	[   ] [   ] [ ...          ] [   ] [     ]
//	[   ] [   ] [ col+(h-1)*w  ] [   ] [     ]
func verticalBlur(pix, out []uint8, width, height, col, radius int, div DivisionTable) {
	first := col
	last := width*(height-1) + col
	radiusTimesW := radius * width
	diameterMinusOneTimesW := 2 * radius * width

	var s0, s1, s2, s3 uint32
	o := 0

	// i is an absolute pixel index; width is the step down one row.
	for i := first - radiusTimesW; i <= last+radiusTimesW; i += width {
		p := bound(i, first, last) * Channels
		s0 += uint32(pix[p])
		s1 += uint32(pix[p+1])
		s2 += uint32(pix[p+2])
		s3 += uint32(pix[p+3])

		if i-radiusTimesW >= first {
			out[o] = div[s0]
			out[o+1] = div[s1]
			out[o+2] = div[s2]
			out[o+3] = div[s3]
			o += Channels

			q := bound(i-diameterMinusOneTimesW, first, last) * Channels
			s0 -= uint32(pix[q])
			s1 -= uint32(pix[q+1])
			s2 -= uint32(pix[q+2])
			s3 -= uint32(pix[q+3])
		}
	}
}

func bound(x, l, h int) int {
	if x < l {
		return l
	}
	if x > h {
		return h
	}
	return x
}
