package service

import "context"

// Scorer scores one encoded feature vector against the trained regression
// model. Implementations talk to an external serving endpoint; the rest of
// the system never sees its transport.
type Scorer interface {
	Score(ctx context.Context, features []float64) (float64, error)
	Ping(ctx context.Context) error
}
