package utils

import "math"

// L2Norm returns the Euclidean norm of x.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// NormalizeL2 scales x in place to unit length. A zero vector is left
// unchanged; callers check for that case before normalizing.
func NormalizeL2(x []float32) {
	norm := L2Norm(x)
	if norm == 0 {
		return
	}
	inv := float32(1 / norm)
	for i := range x {
		x[i] *= inv
	}
}

// InnerProduct returns the dot product of a and b, which for unit vectors
// equals their cosine similarity. Mismatched lengths or empty input yield 0.
func InnerProduct(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
