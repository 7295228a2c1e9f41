package similarity

import (
	"math"
	"testing"

	"github.com/repoguard/repoguard/pkg/config"
	"github.com/repoguard/repoguard/pkg/models"
)

func defaultCombiner() *Combiner {
	cfg := config.DefaultConfig()
	return NewCombiner(cfg.Weights, cfg.Bands)
}

func TestCombine(t *testing.T) {
	c := defaultCombiner()

	tests := []struct {
		name     string
		token    float64
		semantic float64
		want     float64
		wantBand models.Band
	}{
		{name: "both perfect", token: 1.0, semantic: 1.0, want: 1.0, wantBand: models.BandCritical},
		{name: "both zero", token: 0.0, semantic: 0.0, want: 0.0, wantBand: models.BandNone},
		{name: "critical boundary", token: 0.96, semantic: 0.96, want: 0.96, wantBand: models.BandCritical},
		{name: "high", token: 0.80, semantic: 0.80, want: 0.80, wantBand: models.BandHigh},
		{name: "medium", token: 0.70, semantic: 0.70, want: 0.70, wantBand: models.BandMedium},
		{name: "low", token: 0.60, semantic: 0.60, want: 0.60, wantBand: models.BandLow},
		{name: "below low", token: 0.40, semantic: 0.40, want: 0.40, wantBand: models.BandNone},
		{name: "uneven inputs blend", token: 1.0, semantic: 0.0, want: 0.5, wantBand: models.BandLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, band := c.Combine(tt.token, tt.semantic)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Combine(%f, %f) = %f, want %f", tt.token, tt.semantic, got, tt.want)
			}
			if band != tt.wantBand {
				t.Errorf("Combine(%f, %f) band = %s, want %s", tt.token, tt.semantic, band, tt.wantBand)
			}
		})
	}
}

func TestCombineCustomWeights(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Weights = config.WeightConfig{Token: 0.3, Semantic: 0.7}
	c := NewCombiner(cfg.Weights, cfg.Bands)

	got, _ := c.Combine(1.0, 0.0)
	if math.Abs(got-0.3) > 1e-9 {
		t.Errorf("Combine(1, 0) = %f, want 0.3", got)
	}
}

func TestCombineMonotonic(t *testing.T) {
	c := defaultCombiner()
	prev := -1.0
	for s := 0.0; s <= 1.0; s += 0.05 {
		got, _ := c.Combine(0.5, s)
		if got < prev {
			t.Fatalf("Combine not monotonic in semantic score at %f", s)
		}
		prev = got
	}
}

func TestBandRank(t *testing.T) {
	ordered := []models.Band{models.BandNone, models.BandLow, models.BandMedium, models.BandHigh, models.BandCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Rank() >= ordered[i].Rank() {
			t.Errorf("Rank(%s) should be below Rank(%s)", ordered[i-1], ordered[i])
		}
	}
}
