package models

import "time"

// PriceRange bounds a prediction. Min is clamped to zero, never negative.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PredictionFactors summarizes the inputs that shaped a prediction.
type PredictionFactors struct {
	IsChase          bool   `json:"is_chase"`
	IsExclusive      bool   `json:"is_exclusive"`
	IsVaulted        bool   `json:"is_vaulted"`
	Condition        string `json:"condition"`
	Marketplace      string `json:"marketplace"`
	DaysSinceRelease int    `json:"days_since_release"`
}

// PredictionResult is the per-request output of the prediction service.
// Not persisted here; persistence is an external concern.
type PredictionResult struct {
	ItemID         string            `json:"item_id"`
	ItemName       string            `json:"item_name"`
	Series         string            `json:"series"`
	PredictedPrice float64           `json:"predicted_price"`
	Confidence     float64           `json:"confidence_score"`
	PriceRange     PriceRange        `json:"price_range"`
	Factors        PredictionFactors `json:"factors"`
	IsFallback     bool              `json:"is_fallback"`
	PredictedAt    time.Time         `json:"prediction_date"`
	ModelVersion   string            `json:"model_version"`
}

// BatchError records one failed item of a batch prediction.
type BatchError struct {
	ItemID string `json:"item_id"`
	Error  string `json:"error"`
}

// BatchPredictionResult is the best-effort output of a batch call.
type BatchPredictionResult struct {
	Results []*PredictionResult `json:"results"`
	Failed  []BatchError        `json:"failed,omitempty"`
}

// HistoricalPrice is one sale echoed back by the history endpoint.
type HistoricalPrice struct {
	Date        time.Time `json:"date"`
	Price       float64   `json:"price"`
	Marketplace string    `json:"marketplace"`
	Condition   string    `json:"condition"`
}

// TrendDirection classifies the slope of a price series.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// PriceHistory is the history endpoint payload: raw records plus trend analysis.
type PriceHistory struct {
	ItemID          string            `json:"item_id"`
	Records         []HistoricalPrice `json:"records"`
	TrendDirection  TrendDirection    `json:"trend_direction"`
	TrendStrength   float64           `json:"trend_strength"`
	AveragePrice    float64           `json:"average_price"`
	PriceChange     float64           `json:"price_change"`
	HighestPrice    float64           `json:"highest_price"`
	LowestPrice     float64           `json:"lowest_price"`
	VolatilityScore float64           `json:"volatility_score"`
}

// ServiceStatus reports model and scorer state for the status endpoint.
type ServiceStatus struct {
	ModelVersion    string    `json:"model_version"`
	FeatureCount    int       `json:"feature_count"`
	ScorerReachable bool      `json:"scorer_reachable"`
	EncodingsLoaded bool      `json:"encodings_loaded"`
	LastStatusCheck time.Time `json:"last_status_check"`
}
