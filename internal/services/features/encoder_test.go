package features

import (
	"math"
	"testing"
	"time"

	"PopPredict/internal/domain/models"
)

func testItem() models.Item {
	ev := 25.0
	return models.Item{
		ID:             "pop-001",
		Name:           "Batman",
		Series:         "DC Heroes",
		Character:      "Batman",
		FunkoNumber:    144,
		ReleaseDate:    time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC),
		IsChase:        true,
		IsExclusive:    false,
		IsVaulted:      true,
		EstimatedValue: &ev,
		Rarity:         "chase",
	}
}

func approxEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestEncodeVectorLayout(t *testing.T) {
	enc := NewEncoder(
		BuildEncodingTable([]string{"DC Heroes", "Marvel"}),
		BuildEncodingTable([]string{"Batman", "Spider-Man"}),
	)
	// 2024-03-15 is a Friday.
	saleDate := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	hist := HistoryStats{Avg7: 30, Avg30: 28, Avg90: 26, Volatility30: 4.5, HasData: true}

	v := enc.Encode(testItem(), "near_mint", "mercari", saleDate, hist)

	if len(v) != FeatureCount {
		t.Fatalf("expected %d features, got %d", FeatureCount, len(v))
	}
	if v[IdxDaysSinceRelease] != 366 {
		t.Fatalf("days_since_release = %v", v[IdxDaysSinceRelease])
	}
	if v[IdxReleaseMonth] != 3 || v[IdxSaleMonth] != 3 {
		t.Fatalf("months = %v, %v", v[IdxReleaseMonth], v[IdxSaleMonth])
	}
	if v[IdxSaleDayOfWeek] != 4 {
		t.Fatalf("friday should map to 4, got %v", v[IdxSaleDayOfWeek])
	}
	if v[IdxIsWeekendSale] != 0 {
		t.Fatalf("friday is not a weekend sale")
	}
	if v[IdxIsChase] != 1 || v[IdxIsExclusive] != 0 || v[IdxIsVaulted] != 1 {
		t.Fatalf("rarity flags = %v, %v, %v", v[IdxIsChase], v[IdxIsExclusive], v[IdxIsVaulted])
	}
	if v[IdxFunkoNumber] != 144 {
		t.Fatalf("funko_number = %v", v[IdxFunkoNumber])
	}
	if v[IdxSeriesEncoded] != 0 || v[IdxCharacterEncoded] != 0 {
		t.Fatalf("encoded categories = %v, %v", v[IdxSeriesEncoded], v[IdxCharacterEncoded])
	}
	if v[IdxConditionScore] != 4 {
		t.Fatalf("near_mint should score 4, got %v", v[IdxConditionScore])
	}
	if v[IdxMarketplaceEncoded] != 2 {
		t.Fatalf("mercari should encode 2, got %v", v[IdxMarketplaceEncoded])
	}
	if v[IdxAvgPrice7d] != 30 || v[IdxAvgPrice30d] != 28 || v[IdxAvgPrice90d] != 26 {
		t.Fatalf("averages = %v, %v, %v", v[IdxAvgPrice7d], v[IdxAvgPrice30d], v[IdxAvgPrice90d])
	}
	if v[IdxPriceVolatility30d] != 4.5 {
		t.Fatalf("volatility = %v", v[IdxPriceVolatility30d])
	}
	if v[IdxBaseEstimatedValue] != 25 {
		t.Fatalf("base_estimated_value = %v", v[IdxBaseEstimatedValue])
	}
}

func TestEncodeWeekendConvention(t *testing.T) {
	enc := NewEncoder(nil, nil)
	item := testItem()

	// 2024-03-16 Saturday, 2024-03-17 Sunday, 2024-03-18 Monday.
	sat := enc.Encode(item, "mint", "ebay", time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), HistoryStats{})
	sun := enc.Encode(item, "mint", "ebay", time.Date(2024, 3, 17, 0, 0, 0, 0, time.UTC), HistoryStats{})
	mon := enc.Encode(item, "mint", "ebay", time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), HistoryStats{})

	if sat[IdxSaleDayOfWeek] != 5 || sat[IdxIsWeekendSale] != 1 {
		t.Fatalf("saturday = %v weekend %v", sat[IdxSaleDayOfWeek], sat[IdxIsWeekendSale])
	}
	if sun[IdxSaleDayOfWeek] != 6 || sun[IdxIsWeekendSale] != 1 {
		t.Fatalf("sunday = %v weekend %v", sun[IdxSaleDayOfWeek], sun[IdxIsWeekendSale])
	}
	if mon[IdxSaleDayOfWeek] != 0 || mon[IdxIsWeekendSale] != 0 {
		t.Fatalf("monday = %v weekend %v", mon[IdxSaleDayOfWeek], mon[IdxIsWeekendSale])
	}
}

func TestEncodeDefaults(t *testing.T) {
	enc := NewEncoder(nil, nil)
	item := testItem()
	item.EstimatedValue = nil

	v := enc.Encode(item, "sealed", "etsy", time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), HistoryStats{})

	if v[IdxConditionScore] != 3 {
		t.Fatalf("unknown condition should score 3, got %v", v[IdxConditionScore])
	}
	if v[IdxMarketplaceEncoded] != 1 {
		t.Fatalf("unknown marketplace should encode 1, got %v", v[IdxMarketplaceEncoded])
	}
	if v[IdxSeriesEncoded] != DefaultCode || v[IdxCharacterEncoded] != DefaultCode {
		t.Fatalf("nil tables should yield default codes")
	}
	// No history: base value substitutes for all averages.
	if !approxEq(v[IdxAvgPrice7d], models.DefaultEstimatedValue) ||
		!approxEq(v[IdxAvgPrice30d], models.DefaultEstimatedValue) ||
		!approxEq(v[IdxAvgPrice90d], models.DefaultEstimatedValue) {
		t.Fatalf("averages should fall back to base value")
	}
	if v[IdxPriceVolatility30d] != 2.0 {
		t.Fatalf("volatility should default to 2.0, got %v", v[IdxPriceVolatility30d])
	}
	if !approxEq(v[IdxBaseEstimatedValue], models.DefaultEstimatedValue) {
		t.Fatalf("base value should default to %v", models.DefaultEstimatedValue)
	}
}

func TestEncodeFutureRelease(t *testing.T) {
	enc := NewEncoder(nil, nil)
	item := testItem()
	item.ReleaseDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	v := enc.Encode(item, "mint", "ebay", time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), HistoryStats{})
	if v[IdxDaysSinceRelease] >= 0 {
		t.Fatalf("pre-release sale date should yield negative days, got %v", v[IdxDaysSinceRelease])
	}
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames()
	if len(names) != FeatureCount {
		t.Fatalf("expected %d names, got %d", FeatureCount, len(names))
	}
	if names[0] != "days_since_release" || names[FeatureCount-1] != "base_estimated_value" {
		t.Fatalf("unexpected order: %v ... %v", names[0], names[FeatureCount-1])
	}
}
