package models

// Requests for prediction HTTP endpoints. Defined in domain for consistency and reuse.

type PredictRequest struct {
	ItemID      string `param:"id" query:"item_id" json:"item_id" validate:"required"`
	Condition   string `query:"condition" json:"condition" default:"mint" validate:"oneof=mint near_mint very_fine fine poor"`
	Marketplace string `query:"marketplace" json:"marketplace" default:"ebay" validate:"oneof=ebay mercari amazon funko_shop"`
	FutureDays  int    `query:"future_days" json:"future_days" default:"30" validate:"gte=-365,lte=365"`
}

type BatchPredictRequest struct {
	ItemIDs     []string `json:"item_ids" validate:"required,min=1,max=50,dive,required"`
	Condition   string   `json:"condition" default:"mint" validate:"oneof=mint near_mint very_fine fine poor"`
	Marketplace string   `json:"marketplace" default:"ebay" validate:"oneof=ebay mercari amazon funko_shop"`
	FutureDays  int      `json:"future_days" default:"30" validate:"gte=-365,lte=365"`
}

type HistoryRequest struct {
	ItemID string `param:"id" json:"item_id" validate:"required"`
	Days   int    `query:"days" json:"days" default:"90" validate:"gte=1,lte=730"`
}
