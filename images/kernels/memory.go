package kernels

import (
	"runtime"
	"time"
)

// MemoryEstimate is the auxiliary memory one Blur call allocates.
type MemoryEstimate struct {
	// TableBytes is the division table, 256 entries per window position.
	TableBytes int `json:"table_bytes"`
	// ScratchBytes is the reusable row or column line.
	ScratchBytes int `json:"scratch_bytes"`
	// Total is the sum of both.
	Total int `json:"total"`
}

// EstimateMemory returns the bytes Blur allocates for the given dimensions and radius.
// The pixel buffer itself is owned by the caller and not included.
func EstimateMemory(width, height, radius int) MemoryEstimate {
	table := 256 * (2*radius + 1)
	scratch := max(width, height) * Channels
	return MemoryEstimate{
		TableBytes:   table,
		ScratchBytes: scratch,
		Total:        table + scratch,
	}
}

// BlurMemoryProfile captures what one blur call actually cost.
type BlurMemoryProfile struct {
	Estimate   MemoryEstimate `json:"estimate"`
	Duration   time.Duration  `json:"duration"`
	Mallocs    uint64         `json:"mallocs"`
	BytesAlloc uint64         `json:"bytes_alloc"`
	Iterations int            `json:"iterations"`
	Radius     int            `json:"radius"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`
}

// ProfileBlur runs e.Blur and records its duration and heap allocations.
// The runtime counters are process wide, so concurrent allocations elsewhere
// show up in the result.
func (e *Engine) ProfileBlur(pix []uint8, width, height, iterations, radius int) (*BlurMemoryProfile, error) {
	var m1, m2 runtime.MemStats
	runtime.ReadMemStats(&m1)
	start := time.Now()

	if err := e.Blur(pix, width, height, iterations, radius); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	runtime.ReadMemStats(&m2)

	return &BlurMemoryProfile{
		Estimate:   EstimateMemory(width, height, radius),
		Duration:   elapsed,
		Mallocs:    m2.Mallocs - m1.Mallocs,
		BytesAlloc: m2.TotalAlloc - m1.TotalAlloc,
		Iterations: iterations,
		Radius:     radius,
		Width:      width,
		Height:     height,
	}, nil
}
