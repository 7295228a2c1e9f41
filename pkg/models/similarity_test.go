package models

import "testing"

func TestNewSimilarityMatrix(t *testing.T) {
	m := NewSimilarityMatrix([]string{"r1", "r2", "r3"})

	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", m.Size())
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if got := m.At(i, j); got != want {
				t.Errorf("At(%d,%d) = %f, want %f", i, j, got, want)
			}
		}
	}
}

func TestSimilarityMatrixSet(t *testing.T) {
	m := NewSimilarityMatrix([]string{"r1", "r2"})

	m.Set(0, 1, 0.42)
	if m.At(0, 1) != 0.42 || m.At(1, 0) != 0.42 {
		t.Error("Set must mirror across the diagonal")
	}

	m.Set(1, 1, 0.5)
	if m.At(1, 1) != 1.0 {
		t.Error("diagonal must stay fixed at 1.0")
	}
}

func TestBandValues(t *testing.T) {
	if BandNone != "none" || BandCritical != "critical" {
		t.Error("band constants changed; reports serialize these values")
	}
}
