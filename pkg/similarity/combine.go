package similarity

import (
	"github.com/repoguard/repoguard/pkg/config"
	"github.com/repoguard/repoguard/pkg/models"
)

// Combiner merges token and semantic scores into one file-pair score
// and assigns a confidence band. Combine is deterministic and monotonic
// in both inputs.
type Combiner struct {
	weights config.WeightConfig
	bands   config.BandConfig
}

// NewCombiner builds a Combiner from validated configuration.
// Weight and band invariants are checked by config.Validate; a
// misordered band configuration never reaches this point silently.
func NewCombiner(weights config.WeightConfig, bands config.BandConfig) *Combiner {
	return &Combiner{weights: weights, bands: bands}
}

// Combine returns the weighted combined score and its band.
func (c *Combiner) Combine(tokenScore, semanticScore float64) (float64, models.Band) {
	combined := c.weights.Token*tokenScore + c.weights.Semantic*semanticScore
	return combined, c.bandFor(combined)
}

// bandFor maps a combined score to a band via the fixed cut points.
// Pure function of the score; no hysteresis, no history dependence.
func (c *Combiner) bandFor(score float64) models.Band {
	switch {
	case score >= c.bands.Critical:
		return models.BandCritical
	case score >= c.bands.High:
		return models.BandHigh
	case score >= c.bands.Medium:
		return models.BandMedium
	case score >= c.bands.Low:
		return models.BandLow
	default:
		return models.BandNone
	}
}
