package repository

import (
	"context"

	"PopPredict/internal/domain/models"
)

// Catalog provides read-only access to the item catalog.
type Catalog interface {
	GetItem(ctx context.Context, id string) (models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
	Health(ctx context.Context) error
}

// Sales provides read access to append-only sale records.
type Sales interface {
	// RecentSales returns up to limit records for one item, oldest first.
	RecentSales(ctx context.Context, itemID string, limit int) ([]models.SaleRecord, error)
	// SalesSince returns records for one item newer than the cutoff, oldest first.
	SalesSince(ctx context.Context, itemID string, days int) ([]models.SaleRecord, error)
	// ListSales returns every record ordered by (item_id, sold_at) for training builds.
	ListSales(ctx context.Context) ([]models.SaleRecord, error)
}

// DatasetRow is one encoded training row: label first, then the feature vector.
type DatasetRow []float64

// Datasets is durable storage for encoded datasets and encoding tables.
type Datasets interface {
	WriteDataset(ctx context.Context, split string, rows []DatasetRow) error
	WriteEncodingTable(ctx context.Context, field string, codes map[string]int) error
	ReadEncodingTable(ctx context.Context, field string) (map[string]int, error)
}

// Events publishes pipeline lifecycle events for out-of-process consumers.
type Events interface {
	PublishDatasetReady(ctx context.Context, report map[string]interface{}) error
	Close() error
}

// Metrics records operational counters for the prediction pipeline.
type Metrics interface {
	RecordPrediction(marketplace string)
	RecordFallback()
	RecordError(kind string)
	RecordPredictedPrice(itemID string, price float64)
	RecordLatency(op string, seconds float64)
}
