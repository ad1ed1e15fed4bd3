package utils

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CosineSimilarity(tt.a, tt.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(float64(got)-tt.want) > 1e-6 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarityLengthMismatch(t *testing.T) {
	if _, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}); err == nil {
		t.Error("expected an error for vectors of different lengths")
	}
}

func TestCosineSimilarityZeroVector(t *testing.T) {
	got, err := CosineSimilarity([]float32{0, 0}, []float32{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("zero-magnitude vector must score 0, got %f", got)
	}
}
