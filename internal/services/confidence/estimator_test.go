package confidence

import (
	"math"
	"testing"
)

func TestFromVolatilityCalm(t *testing.T) {
	est := FromVolatility(100, 0)
	if math.Abs(est.Confidence-0.8) > 1e-9 {
		t.Fatalf("zero volatility should yield 0.8, got %v", est.Confidence)
	}
	// range_pct = 0.2/0.8 = 0.25
	if math.Abs(est.Range.Min-75) > 1e-9 || math.Abs(est.Range.Max-125) > 1e-9 {
		t.Fatalf("range = [%v, %v], want [75, 125]", est.Range.Min, est.Range.Max)
	}
}

func TestFromVolatilityFloor(t *testing.T) {
	// Volatility 7 already hits the 0.3 factor floor; higher must not go lower.
	at := FromVolatility(100, 7)
	beyond := FromVolatility(100, 50)
	if math.Abs(at.Confidence-0.24) > 1e-9 {
		t.Fatalf("confidence at floor = %v, want 0.24", at.Confidence)
	}
	if math.Abs(beyond.Confidence-at.Confidence) > 1e-9 {
		t.Fatalf("confidence below floor: %v", beyond.Confidence)
	}
}

func TestFromVolatilityMidrange(t *testing.T) {
	est := FromVolatility(50, 5)
	want := 0.8 * 0.5
	if math.Abs(est.Confidence-want) > 1e-9 {
		t.Fatalf("confidence = %v, want %v", est.Confidence, want)
	}
	rangePct := 0.2 / want
	if math.Abs(est.Range.Max-50*(1+rangePct)) > 1e-9 {
		t.Fatalf("max = %v", est.Range.Max)
	}
}

func TestFromVolatilityWorstCaseInterval(t *testing.T) {
	// At the confidence floor range_pct caps at 0.2/0.24, so the interval
	// stays non-negative for any positive prediction.
	est := FromVolatility(1, 50)
	if est.Range.Min < 0 || est.Range.Min > est.Range.Max {
		t.Fatalf("range = [%v, %v]", est.Range.Min, est.Range.Max)
	}
	if est.Range.Max <= 1 {
		t.Fatalf("upper bound should exceed prediction, got %v", est.Range.Max)
	}
}

func TestFromVolatilityUnusablePrediction(t *testing.T) {
	est := FromVolatility(0, 3)
	if est.Confidence != 0.7 {
		t.Fatalf("non-positive prediction should yield 0.7, got %v", est.Confidence)
	}
	if est.Range.Min != 0 || est.Range.Max != 0 {
		t.Fatalf("zero prediction range = [%v, %v]", est.Range.Min, est.Range.Max)
	}

	neg := FromVolatility(-5, 0)
	if neg.Range.Min != 0 || neg.Range.Max != 0 {
		t.Fatalf("negative prediction range = [%v, %v], want [0, 0]", neg.Range.Min, neg.Range.Max)
	}
	if neg.Range.Min > neg.Range.Max {
		t.Fatalf("inverted range [%v, %v]", neg.Range.Min, neg.Range.Max)
	}
}
