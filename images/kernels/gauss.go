package kernels

import "github.com/chewxy/math32"

// RadiusForSigma returns the box radius whose repetition over the given number
// of iterations approximates a Gaussian blur with standard deviation sigma.
// The ideal box width is sqrt(12*sigma^2/n + 1); the result is clamped to
// [1, MaxRadius].
func RadiusForSigma(sigma float32, iterations int) int {
	if iterations <= 0 {
		iterations = 1
	}
	if sigma <= 0 {
		return 1
	}

	ideal := math32.Sqrt(12*sigma*sigma/float32(iterations) + 1)
	radius := int(math32.Round((ideal - 1) / 2))

	switch {
	case radius < 1:
		return 1
	case radius > MaxRadius:
		return MaxRadius
	default:
		return radius
	}
}
