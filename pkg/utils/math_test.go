package utils

import (
	"math"
	"testing"
)

func TestNormalizeL2(t *testing.T) {
	v := []float32{3, 4}
	NormalizeL2(v)
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("normalized = %v, want [0.6 0.8]", v)
	}
	if n := L2Norm(v); math.Abs(n-1.0) > 1e-6 {
		t.Errorf("norm after normalize = %f, want 1", n)
	}
}

func TestNormalizeL2ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	NormalizeL2(v)
	for i, x := range v {
		if x != 0 {
			t.Errorf("v[%d] = %f, want 0 (zero vector unchanged)", i, x)
		}
	}
	if L2Norm(v) != 0 {
		t.Error("zero vector norm should be 0")
	}
}

func TestInnerProduct(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	if got := InnerProduct(a, a); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("InnerProduct(a, a) = %f, want 1", got)
	}
	if got := InnerProduct(a, b); got != 0 {
		t.Errorf("InnerProduct(a, b) = %f, want 0", got)
	}
	if got := InnerProduct(a, []float32{1, 2}); got != 0 {
		t.Errorf("mismatched lengths = %f, want 0", got)
	}
	if got := InnerProduct(nil, nil); got != 0 {
		t.Errorf("empty vectors = %f, want 0", got)
	}
}
