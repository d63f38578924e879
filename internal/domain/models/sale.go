package models

import "time"

// Condition is the ordered condition grade of a sold item.
type Condition string

const (
	ConditionMint     Condition = "mint"
	ConditionNearMint Condition = "near_mint"
	ConditionVeryFine Condition = "very_fine"
	ConditionFine     Condition = "fine"
	ConditionPoor     Condition = "poor"
)

// Marketplace identifies where a sale happened.
type Marketplace string

const (
	MarketplaceEbay      Marketplace = "ebay"
	MarketplaceMercari   Marketplace = "mercari"
	MarketplaceAmazon    Marketplace = "amazon"
	MarketplaceFunkoShop Marketplace = "funko_shop"
)

// SaleRecord is one observed transaction. Append-only; records for one item
// are ordered by SoldAt when rolling windows are computed.
type SaleRecord struct {
	ItemID      string
	Price       float64
	Marketplace Marketplace
	Condition   Condition
	SoldAt      time.Time
}
