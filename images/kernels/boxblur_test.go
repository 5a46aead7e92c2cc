package kernels

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// referenceBlur is a direct O(n*diameter) rendition of the separable blur with
// edge replication and round-half-up averaging.
func referenceBlur(pix []uint8, w, h, iterations, radius int) []uint8 {
	cur := append([]uint8(nil), pix...)
	d := 2*radius + 1

	for it := 0; it < iterations; it++ {
		tmp := make([]uint8, len(cur))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				for c := 0; c < Channels; c++ {
					s := 0
					for k := -radius; k <= radius; k++ {
						s += int(cur[(y*w+bound(x+k, 0, w-1))*Channels+c])
					}
					tmp[(y*w+x)*Channels+c] = uint8((s + radius) / d)
				}
			}
		}
		out := make([]uint8, len(cur))
		for x := 0; x < w; x++ {
			for y := 0; y < h; y++ {
				for c := 0; c < Channels; c++ {
					s := 0
					for k := -radius; k <= radius; k++ {
						s += int(tmp[(bound(y+k, 0, h-1)*w+x)*Channels+c])
					}
					out[(y*w+x)*Channels+c] = uint8((s + radius) / d)
				}
			}
		}
		cur = out
	}

	return cur
}

func randomPixels(w, h int, seed int64) []uint8 {
	rng := rand.New(rand.NewSource(seed))
	pix := make([]uint8, w*h*Channels)
	for i := range pix {
		pix[i] = uint8(rng.Intn(256))
	}
	return pix
}

func TestBlurThreeByOneScenario(t *testing.T) {
	pix := []uint8{
		0, 0, 0, 255,
		255, 255, 255, 255,
		0, 0, 0, 255,
	}

	require.NoError(t, IterativeBoxBlur(pix, 3, 1, 1, 1))

	// Middle: (0+255+0)/3. Left: (0+0+255)/3 with the left neighbour clamped
	// to itself, right likewise.
	want := []uint8{
		85, 85, 85, 255,
		85, 85, 85, 255,
		85, 85, 85, 255,
	}
	assert.Equal(t, want, pix, "3x1 scenario should be reproduced bit-exact")
}

func TestBlurMatchesReference(t *testing.T) {
	cases := []struct {
		w, h, iterations, radius int
	}{
		{1, 1, 1, 1},
		{7, 5, 1, 1},
		{16, 9, 2, 2},
		{33, 27, 3, 4},
		{5, 40, 1, 3},
		{3, 4, 2, 9}, // radius larger than both dimensions
		{64, 1, 4, 5},
		{1, 64, 4, 5},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("%dx%d_i%d_r%d", tc.w, tc.h, tc.iterations, tc.radius), func(t *testing.T) {
			pix := randomPixels(tc.w, tc.h, int64(i+1))
			want := referenceBlur(pix, tc.w, tc.h, tc.iterations, tc.radius)

			require.NoError(t, IterativeBoxBlur(pix, tc.w, tc.h, tc.iterations, tc.radius))
			assert.Equal(t, want, pix, "engine output should equal the direct separable average")
		})
	}
}

func TestBlurUniformLineIsFixedPoint(t *testing.T) {
	v := [Channels]uint8{37, 200, 0, 128}

	for _, dims := range [][2]int{{1, 1}, {17, 1}, {1, 17}, {256, 1}, {1, 3}} {
		for _, radius := range []int{1, 2, 10, 300} {
			for _, iterations := range []int{1, 3} {
				w, h := dims[0], dims[1]
				pix := make([]uint8, w*h*Channels)
				for p := 0; p < w*h; p++ {
					copy(pix[p*Channels:], v[:])
				}
				orig := append([]uint8(nil), pix...)

				require.NoError(t, IterativeBoxBlur(pix, w, h, iterations, radius))
				assert.Equal(t, orig, pix, "uniform %dx%d should be unchanged (radius %d, iterations %d)",
					w, h, radius, iterations)
			}
		}
	}
}

func maxAdjacentDiff(pix []uint8) int {
	best := 0
	for p := Channels; p < len(pix); p += Channels {
		d := int(pix[p]) - int(pix[p-Channels])
		if d < 0 {
			d = -d
		}
		best = max(best, d)
	}
	return best
}

func TestBlurRampSmoothsMonotonically(t *testing.T) {
	const w = 48
	ramp := make([]uint8, w*Channels)
	for x := 0; x < w; x++ {
		var v uint8
		switch {
		case x < 20:
			v = 0
		case x < 23:
			v = uint8((x - 19) * 64)
		default:
			v = 255
		}
		ramp[x*Channels], ramp[x*Channels+1], ramp[x*Channels+2], ramp[x*Channels+3] = v, v, v, 255
	}

	prev := maxAdjacentDiff(ramp)
	for iterations := 1; iterations <= 4; iterations++ {
		pix := append([]uint8(nil), ramp...)
		require.NoError(t, IterativeBoxBlur(pix, w, 1, iterations, 2))

		got := maxAdjacentDiff(pix)
		assert.Less(t, got, prev, "iterations=%d should reduce the steepest step", iterations)
		prev = got
	}
}

func TestBlurIsDeterministic(t *testing.T) {
	a := randomPixels(41, 23, 7)
	b := append([]uint8(nil), a...)

	require.NoError(t, IterativeBoxBlur(a, 41, 23, 3, 4))
	require.NoError(t, IterativeBoxBlur(b, 41, 23, 3, 4))
	assert.True(t, bytes.Equal(a, b), "identical inputs should produce byte-identical output")
}

func TestBlurRejectsInvalidArguments(t *testing.T) {
	cases := []struct {
		name                     string
		w, h, iterations, radius int
		length                   int
	}{
		{"zero radius", 4, 4, 1, 0, 64},
		{"negative radius", 4, 4, 1, -3, 64},
		{"radius too large", 4, 4, 1, MaxRadius + 1, 64},
		{"zero iterations", 4, 4, 0, 1, 64},
		{"iterations too large", 4, 4, MaxIterations + 1, 1, 64},
		{"zero width", 0, 4, 1, 1, 64},
		{"zero height", 4, 0, 1, 1, 64},
		{"width too large", MaxDimension + 1, 1, 1, 1, 64},
		{"height too large", 1, MaxDimension + 1, 1, 1, 64},
		{"short buffer", 4, 4, 1, 1, 63},
	}

	for i, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pix := randomPixels(tc.length/Channels+1, 1, int64(i))[:tc.length]
			orig := append([]uint8(nil), pix...)

			err := IterativeBoxBlur(pix, tc.w, tc.h, tc.iterations, tc.radius)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Equal(t, orig, pix, "buffer should be left untouched on rejection")
		})
	}
}

func TestBlurMemoryLimit(t *testing.T) {
	pix := randomPixels(8, 8, 3)
	orig := append([]uint8(nil), pix...)

	e := NewEngine(EstimateMemory(8, 8, 2).Total-1, nil)
	err := e.Blur(pix, 8, 8, 1, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, orig, pix, "buffer should be left untouched when allocation is refused")

	e.MemoryLimit = EstimateMemory(8, 8, 2).Total
	assert.NoError(t, e.Blur(pix, 8, 8, 1, 2), "an estimate equal to the limit should be accepted")
}

func TestBlurMemoryLimitLogs(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := NewEngine(10, zap.New(core))

	err := e.Blur(randomPixels(4, 4, 1), 4, 4, 2, 3)
	require.ErrorIs(t, err, ErrOutOfMemory)

	entries := logs.FilterMessage("blur allocation over limit").All()
	require.Len(t, entries, 1, "the refusal should be logged once")
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, map[string]interface{}{
		"iterations": int64(2),
		"width":      int64(4),
		"height":     int64(4),
		"radius":     int64(3),
		"required":   int64(EstimateMemory(4, 4, 3).Total),
		"limit":      int64(10),
	}, entries[0].ContextMap())
	assert.Zero(t, logs.FilterMessage("box blur").Len(), "no blur should start after a refusal")
}

func TestBlurDebugLog(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := NewEngine(0, zap.New(core))
	require.NoError(t, e.Blur(randomPixels(6, 3, 2), 6, 3, 1, 2))

	entries := logs.FilterMessage("box blur").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	est := EstimateMemory(6, 3, 2)
	assert.Equal(t, int64(est.TableBytes), fields["table_bytes"])
	assert.Equal(t, int64(est.ScratchBytes), fields["scratch_bytes"])
}

func TestDefaultMemoryLimitCoversValidParameters(t *testing.T) {
	est := EstimateMemory(MaxDimension, MaxDimension, MaxRadius)
	assert.LessOrEqual(t, est.Total, DefaultMemoryLimit)
}
