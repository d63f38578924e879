package features

import (
	"math"

	"PopPredict/internal/domain/models"
)

// HistoryStats holds rolling statistics over one item's sale prices.
// Windows are over the N most recent records, not the N most recent calendar
// days: sparse history still yields a full window. HasData distinguishes
// "computed from sales" from "no history at all" so the encoder can apply the
// base-value fallback instead of consuming zeros.
type HistoryStats struct {
	Avg7         float64
	Avg30        float64
	Avg90        float64
	Volatility30 float64
	HasData      bool
}

// Aggregate computes rolling statistics from sale prices ordered oldest first.
// A single record yields zero volatility and that record's price for all
// three averages.
func Aggregate(prices []float64) HistoryStats {
	if len(prices) == 0 {
		return HistoryStats{}
	}
	return HistoryStats{
		Avg7:         meanLast(prices, 7),
		Avg30:        meanLast(prices, 30),
		Avg90:        meanLast(prices, 90),
		Volatility30: stdDevLast(prices, 30),
		HasData:      true,
	}
}

// AggregateSales extracts prices from sale records (oldest first) and aggregates.
func AggregateSales(sales []models.SaleRecord) HistoryStats {
	prices := make([]float64, len(sales))
	for i, s := range sales {
		prices[i] = s.Price
	}
	return Aggregate(prices)
}

// meanLast averages the last min(n, len) values.
func meanLast(xs []float64, n int) float64 {
	w := window(xs, n)
	sum := 0.0
	for _, x := range w {
		sum += x
	}
	return sum / float64(len(w))
}

// stdDevLast computes the population standard deviation of the last
// min(n, len) values.
func stdDevLast(xs []float64, n int) float64 {
	w := window(xs, n)
	if len(w) < 2 {
		return 0
	}
	mean := 0.0
	for _, x := range w {
		mean += x
	}
	mean /= float64(len(w))

	variance := 0.0
	for _, x := range w {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(w))
	return math.Sqrt(variance)
}

func window(xs []float64, n int) []float64 {
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}

// LinearSlope fits a least-squares line over the series indexed 0..n-1 and
// returns its slope. Used for trend classification; zero for fewer than two
// points.
func LinearSlope(prices []float64) float64 {
	n := float64(len(prices))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range prices {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// ClassifyTrend maps a fitted slope onto a direction using the ±0.1 thresholds.
func ClassifyTrend(slope float64) models.TrendDirection {
	switch {
	case slope > 0.1:
		return models.TrendIncreasing
	case slope < -0.1:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}
