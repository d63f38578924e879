package models

import "errors"

var (
	// ErrItemNotFound is returned when an item id is unknown to the catalog.
	ErrItemNotFound = errors.New("item not found")

	// ErrNoHistory is returned when an item has no recorded sales.
	ErrNoHistory = errors.New("no price history")

	// ErrScorerUnavailable marks a failed scorer round-trip. The scoring
	// adapter absorbs it via the fallback estimate; it only surfaces when the
	// fallback itself cannot be computed.
	ErrScorerUnavailable = errors.New("scorer unavailable")

	// ErrDataIntegrity aborts a training build when a sale record references
	// a missing item.
	ErrDataIntegrity = errors.New("data integrity violation")
)
