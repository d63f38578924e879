package models

import "time"

// Item is one collectible catalog entry. Reference data owned by an external
// catalog process; read-only inside this service.
type Item struct {
	ID             string
	Name           string
	Series         string
	Character      string
	FunkoNumber    int
	ReleaseDate    time.Time
	IsChase        bool
	IsExclusive    bool
	IsVaulted      bool
	EstimatedValue *float64
	Rarity         string
}

// DefaultEstimatedValue is applied when the catalog carries no estimate.
const DefaultEstimatedValue = 15.0

// BaseValue returns the estimated value or the documented default.
func (i Item) BaseValue() float64 {
	if i.EstimatedValue == nil || *i.EstimatedValue <= 0 {
		return DefaultEstimatedValue
	}
	return *i.EstimatedValue
}
