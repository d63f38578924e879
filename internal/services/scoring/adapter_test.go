package scoring

import (
	"context"
	"errors"
	"testing"
)

type fakeScorer struct {
	price float64
	err   error
}

func (f *fakeScorer) Score(_ context.Context, _ []float64) (float64, error) {
	return f.price, f.err
}

func (f *fakeScorer) Ping(_ context.Context) error { return f.err }

func TestAdapterScorePassesThrough(t *testing.T) {
	a := NewAdapter(&fakeScorer{price: 77.7}, nil, nil)
	price, fallback := a.Score(context.Background(), []float64{1}, 15)
	if fallback {
		t.Fatalf("healthy scorer should not fall back")
	}
	if price != 77.7 {
		t.Fatalf("price = %v, want 77.7", price)
	}
}

func TestAdapterScoreFallback(t *testing.T) {
	a := NewAdapter(&fakeScorer{err: errors.New("connection refused")}, nil, nil)
	price, fallback := a.Score(context.Background(), []float64{1}, 15)
	if !fallback {
		t.Fatalf("failed scorer should fall back")
	}
	if price != 15*FallbackMultiplier {
		t.Fatalf("fallback price = %v, want %v", price, 15*FallbackMultiplier)
	}
}

func TestAdapterPing(t *testing.T) {
	healthy := NewAdapter(&fakeScorer{}, nil, nil)
	if err := healthy.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	down := NewAdapter(&fakeScorer{err: errors.New("down")}, nil, nil)
	if err := down.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping error")
	}
}
