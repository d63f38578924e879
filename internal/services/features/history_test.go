package features

import (
	"math"
	"testing"
	"time"

	"PopPredict/internal/domain/models"
)

func TestAggregateEmpty(t *testing.T) {
	got := Aggregate(nil)
	if got.HasData {
		t.Fatalf("empty history should carry no data")
	}
}

func TestAggregateSingleRecord(t *testing.T) {
	got := Aggregate([]float64{42})
	if !got.HasData {
		t.Fatalf("expected data")
	}
	if got.Avg7 != 42 || got.Avg30 != 42 || got.Avg90 != 42 {
		t.Fatalf("single record should average itself: %+v", got)
	}
	if got.Volatility30 != 0 {
		t.Fatalf("single record has zero volatility, got %v", got.Volatility30)
	}
}

func TestAggregateWindows(t *testing.T) {
	// 10 records: the 7-day window sees only the last 7.
	prices := []float64{100, 100, 100, 10, 10, 10, 10, 10, 10, 10}
	got := Aggregate(prices)

	if got.Avg7 != 10 {
		t.Fatalf("avg7 should cover last 7 records only, got %v", got.Avg7)
	}
	want30 := (3*100.0 + 7*10.0) / 10.0
	if math.Abs(got.Avg30-want30) > 1e-9 {
		t.Fatalf("avg30 = %v, want %v", got.Avg30, want30)
	}
	if got.Avg30 != got.Avg90 {
		t.Fatalf("with 10 records the 30 and 90 windows are identical")
	}
}

func TestAggregatePopulationStdDev(t *testing.T) {
	got := Aggregate([]float64{10, 20})
	// Population std dev of {10, 20} is 5.
	if math.Abs(got.Volatility30-5) > 1e-9 {
		t.Fatalf("volatility = %v, want 5", got.Volatility30)
	}
}

func TestAggregateSales(t *testing.T) {
	now := time.Now()
	sales := []models.SaleRecord{
		{ItemID: "a", Price: 10, SoldAt: now.Add(-48 * time.Hour)},
		{ItemID: "a", Price: 20, SoldAt: now.Add(-24 * time.Hour)},
	}
	got := AggregateSales(sales)
	if !got.HasData || got.Avg7 != 15 {
		t.Fatalf("unexpected stats %+v", got)
	}
}

func TestLinearSlope(t *testing.T) {
	if s := LinearSlope([]float64{5}); s != 0 {
		t.Fatalf("single point slope should be 0, got %v", s)
	}
	if s := LinearSlope([]float64{1, 2, 3, 4}); math.Abs(s-1) > 1e-9 {
		t.Fatalf("slope = %v, want 1", s)
	}
	if s := LinearSlope([]float64{4, 3, 2, 1}); math.Abs(s+1) > 1e-9 {
		t.Fatalf("slope = %v, want -1", s)
	}
}

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		slope float64
		want  models.TrendDirection
	}{
		{0.5, models.TrendIncreasing},
		{0.11, models.TrendIncreasing},
		{0.1, models.TrendStable},
		{0, models.TrendStable},
		{-0.1, models.TrendStable},
		{-0.11, models.TrendDecreasing},
		{-2, models.TrendDecreasing},
	}
	for _, c := range cases {
		if got := ClassifyTrend(c.slope); got != c.want {
			t.Fatalf("ClassifyTrend(%v) = %v, want %v", c.slope, got, c.want)
		}
	}
}
