package kernels

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRadiusForSigma(t *testing.T) {
	cases := []struct {
		sigma      float32
		iterations int
		want       int
	}{
		{0, 3, 1},
		{-2, 3, 1},
		{0.3, 3, 1},
		{2, 3, 2},   // sqrt(17) = 4.12 -> 1.56
		{5, 3, 5},   // sqrt(101) = 10.05 -> 4.52
		{10, 1, 17}, // sqrt(1201) = 34.66 -> 16.83
		{10, 0, 17}, // iterations clamp to 1
		{1e6, 1, MaxRadius},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, RadiusForSigma(tc.sigma, tc.iterations),
			"sigma=%v iterations=%d", tc.sigma, tc.iterations)
	}
}
