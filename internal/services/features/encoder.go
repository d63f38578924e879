package features

import (
	"time"

	"PopPredict/internal/domain/models"
)

// Feature vector layout. Training and serving must produce this exact order;
// the scorer's weights are positional.
const (
	IdxDaysSinceRelease = iota
	IdxReleaseMonth
	IdxSaleMonth
	IdxSaleDayOfWeek
	IdxIsWeekendSale
	IdxIsChase
	IdxIsExclusive
	IdxIsVaulted
	IdxFunkoNumber
	IdxSeriesEncoded
	IdxCharacterEncoded
	IdxConditionScore
	IdxMarketplaceEncoded
	IdxAvgPrice7d
	IdxAvgPrice30d
	IdxAvgPrice90d
	IdxPriceVolatility30d
	IdxBaseEstimatedValue

	FeatureCount
)

var featureNames = [FeatureCount]string{
	"days_since_release", "release_month", "sale_month", "sale_day_of_week",
	"is_weekend_sale", "is_chase", "is_exclusive", "is_vaulted", "funko_number",
	"series_encoded", "character_encoded", "condition_score", "marketplace_encoded",
	"avg_price_7d", "avg_price_30d", "avg_price_90d", "price_volatility_30d",
	"base_estimated_value",
}

// FeatureNames returns the canonical feature order.
func FeatureNames() []string {
	out := make([]string, FeatureCount)
	copy(out, featureNames[:])
	return out
}

// Ordinal condition scores. Unknown grades score 3.
var conditionScores = map[string]float64{
	string(models.ConditionMint):     5,
	string(models.ConditionNearMint): 4,
	string(models.ConditionVeryFine): 3,
	string(models.ConditionFine):     2,
	string(models.ConditionPoor):     1,
}

// Ordinal marketplace codes. Unknown marketplaces encode as ebay.
var marketplaceCodes = map[string]float64{
	string(models.MarketplaceEbay):      1,
	string(models.MarketplaceMercari):   2,
	string(models.MarketplaceAmazon):    3,
	string(models.MarketplaceFunkoShop): 4,
}

const (
	defaultConditionScore  = 3
	defaultMarketplaceCode = 1
	defaultVolatility      = 2.0
)

// Encoder maps an item and its sale context onto the fixed feature vector.
// Series and character codes come from the persisted encoding tables so that
// training and serving agree; the encoder never hashes strings.
type Encoder struct {
	series    *EncodingTable
	character *EncodingTable
}

// NewEncoder creates an encoder bound to the given encoding tables.
// Nil tables are valid and encode everything to the default code.
func NewEncoder(series, character *EncodingTable) *Encoder {
	return &Encoder{series: series, character: character}
}

// Encode produces the 18-field vector for an item sold (or predicted to sell)
// at saleDate under the given condition and marketplace. hist supplies the
// rolling price statistics; when it carries no data the item's base estimated
// value substitutes for all three averages and volatility defaults to 2.0.
func (e *Encoder) Encode(item models.Item, condition, marketplace string, saleDate time.Time, hist HistoryStats) []float64 {
	v := make([]float64, FeatureCount)

	// Whole days, not clamped: negative when the release is in the future.
	v[IdxDaysSinceRelease] = float64(int(saleDate.Sub(item.ReleaseDate).Hours() / 24))
	v[IdxReleaseMonth] = float64(item.ReleaseDate.Month())
	v[IdxSaleMonth] = float64(saleDate.Month())

	dow := mondayIndexedWeekday(saleDate)
	v[IdxSaleDayOfWeek] = float64(dow)
	if dow >= 5 {
		v[IdxIsWeekendSale] = 1
	}

	v[IdxIsChase] = boolFeature(item.IsChase)
	v[IdxIsExclusive] = boolFeature(item.IsExclusive)
	v[IdxIsVaulted] = boolFeature(item.IsVaulted)
	v[IdxFunkoNumber] = float64(item.FunkoNumber)

	v[IdxSeriesEncoded] = float64(e.series.Code(item.Series))
	v[IdxCharacterEncoded] = float64(e.character.Code(item.Character))

	v[IdxConditionScore] = lookupOrDefault(conditionScores, condition, defaultConditionScore)
	v[IdxMarketplaceEncoded] = lookupOrDefault(marketplaceCodes, marketplace, defaultMarketplaceCode)

	base := item.BaseValue()
	if hist.HasData {
		v[IdxAvgPrice7d] = hist.Avg7
		v[IdxAvgPrice30d] = hist.Avg30
		v[IdxAvgPrice90d] = hist.Avg90
		v[IdxPriceVolatility30d] = hist.Volatility30
	} else {
		v[IdxAvgPrice7d] = base
		v[IdxAvgPrice30d] = base
		v[IdxAvgPrice90d] = base
		v[IdxPriceVolatility30d] = defaultVolatility
	}
	v[IdxBaseEstimatedValue] = base

	return v
}

// mondayIndexedWeekday maps time.Weekday (Sunday=0) onto the 0=Monday..6=Sunday
// convention the model was trained with.
func mondayIndexedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func lookupOrDefault(m map[string]float64, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
