package lsi

import "math"

// DefaultDenoiseScale is the number of decimal places used to decide that a
// small negative component is numerical noise.
const DefaultDenoiseScale = 4

// Cosine returns the cosine similarity of u and v after zeroing every
// component in [-10^-scale, 0). A scale below 1 is treated as 1. When either
// vector is all zero the similarity is -1. u and v must have equal length
// and are not modified.
func Cosine(u, v []float64, scale int) float64 {
	if scale <= 0 {
		scale = 1
	}
	threshold := -1 / math.Pow(10, float64(scale))
	var dot, normU, normV float64
	for i := range u {
		a, b := denoise(u[i], threshold), denoise(v[i], threshold)
		dot += a * b
		normU += a * a
		normV += b * b
	}
	return finish(dot, normU, normV)
}

// RawCosine is Cosine without noise suppression.
func RawCosine(u, v []float64) float64 {
	var dot, normU, normV float64
	for i := range u {
		dot += u[i] * v[i]
		normU += u[i] * u[i]
		normV += v[i] * v[i]
	}
	return finish(dot, normU, normV)
}

func denoise(x, threshold float64) float64 {
	if x < 0 && x >= threshold {
		return 0
	}
	return x
}

func finish(dot, normU, normV float64) float64 {
	val := dot / (math.Sqrt(normU) * math.Sqrt(normV))
	switch {
	case math.IsNaN(val):
		return -1
	case val > 1:
		return 1
	case val < -1:
		return -1
	}
	return val
}
