package confidence

import "PopPredict/internal/domain/models"

const (
	baseConfidence = 0.8
	minVolFactor   = 0.3

	// Applied when the predicted price is unusable (zero or negative).
	fallbackConfidence = 0.7
	fallbackRangePct   = 0.2
)

// Estimate carries a confidence score and the price interval derived from it.
type Estimate struct {
	Confidence float64
	Range      models.PriceRange
}

// FromVolatility derives confidence and a price interval from the raw
// predicted price and the item's 30-record price volatility. High volatility
// lowers confidence, which widens the interval:
//
//	volatility_factor = max(0.3, 1 - volatility/10)
//	confidence        = 0.8 * volatility_factor
//	range_pct         = 0.2 / confidence
//
// The lower bound is clamped to zero; for low-confidence predictions the raw
// formula can cross below it.
func FromVolatility(predicted, volatility float64) Estimate {
	if predicted <= 0 {
		// Both bounds clamp: a negative prediction would otherwise put the
		// upper bound below the clamped lower one.
		return Estimate{
			Confidence: fallbackConfidence,
			Range: models.PriceRange{
				Min: clampMin(predicted * (1 - fallbackRangePct)),
				Max: clampMin(predicted * (1 + fallbackRangePct)),
			},
		}
	}

	volFactor := 1 - volatility/10
	if volFactor < minVolFactor {
		volFactor = minVolFactor
	}
	conf := baseConfidence * volFactor

	rangePct := fallbackRangePct / conf
	return Estimate{
		Confidence: conf,
		Range: models.PriceRange{
			Min: clampMin(predicted * (1 - rangePct)),
			Max: predicted * (1 + rangePct),
		},
	}
}

func clampMin(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
