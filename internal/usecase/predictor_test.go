package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"PopPredict/internal/domain/models"
	domrepo "PopPredict/internal/domain/repository"
	"PopPredict/internal/services/scoring"
)

type fakeCatalog struct {
	items map[string]models.Item
	err   error
}

func (f *fakeCatalog) GetItem(_ context.Context, id string) (models.Item, error) {
	if f.err != nil {
		return models.Item{}, f.err
	}
	item, ok := f.items[id]
	if !ok {
		return models.Item{}, models.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeCatalog) ListItems(_ context.Context) ([]models.Item, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeCatalog) Health(_ context.Context) error { return f.err }

type fakeSales struct {
	records map[string][]models.SaleRecord
	err     error
}

func (f *fakeSales) RecentSales(_ context.Context, itemID string, limit int) ([]models.SaleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	recs := f.records[itemID]
	if len(recs) > limit {
		recs = recs[len(recs)-limit:]
	}
	return recs, nil
}

func (f *fakeSales) SalesSince(_ context.Context, itemID string, _ int) ([]models.SaleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records[itemID], nil
}

func (f *fakeSales) ListSales(_ context.Context) ([]models.SaleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SaleRecord
	for _, recs := range f.records {
		out = append(out, recs...)
	}
	return out, nil
}

type fakeDatasets struct {
	splits   map[string][]domrepo.DatasetRow
	tables   map[string]map[string]int
	readErr  error
	writeErr error
}

func newFakeDatasets() *fakeDatasets {
	return &fakeDatasets{
		splits: map[string][]domrepo.DatasetRow{},
		tables: map[string]map[string]int{},
	}
}

func (f *fakeDatasets) WriteDataset(_ context.Context, split string, rows []domrepo.DatasetRow) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.splits[split] = rows
	return nil
}

func (f *fakeDatasets) WriteEncodingTable(_ context.Context, field string, codes map[string]int) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.tables[field] = codes
	return nil
}

func (f *fakeDatasets) ReadEncodingTable(_ context.Context, field string) (map[string]int, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.tables[field], nil
}

type stubScorer struct {
	price float64
	err   error
}

func (s *stubScorer) Score(_ context.Context, _ []float64) (float64, error) {
	return s.price, s.err
}

func (s *stubScorer) Ping(_ context.Context) error { return s.err }

var testNow = time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, catalog *fakeCatalog, sales *fakeSales, scorer *stubScorer) *PredictionService {
	t.Helper()
	l := testLogger(t)
	adapter := scoring.NewAdapter(scorer, l, nil)
	return NewPredictionService(catalog, sales, newFakeDatasets(), adapter, l, "1.0.0",
		WithClock(func() time.Time { return testNow }))
}

func TestPredictFallbackNoHistory(t *testing.T) {
	catalog := &fakeCatalog{items: map[string]models.Item{
		"pop-1": {ID: "pop-1", Name: "Darth Vader", Series: "Star Wars",
			ReleaseDate: testNow.AddDate(-1, 0, 0)},
	}}
	sales := &fakeSales{records: map[string][]models.SaleRecord{}}
	svc := newTestService(t, catalog, sales, &stubScorer{err: errors.New("unreachable")})

	res, err := svc.Predict(context.Background(), models.PredictRequest{
		ItemID: "pop-1", Condition: "mint", Marketplace: "ebay", FutureDays: 30,
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	if !res.IsFallback {
		t.Fatalf("expected fallback flag")
	}
	// No estimate on the item: base 15, fallback 15 * 1.2 = 18.
	if res.PredictedPrice != 18 {
		t.Fatalf("predicted = %v, want 18", res.PredictedPrice)
	}
	// Default volatility 2.0: confidence = 0.8 * (1 - 0.2) = 0.64.
	if math.Abs(res.Confidence-0.64) > 1e-9 {
		t.Fatalf("confidence = %v, want 0.64", res.Confidence)
	}
	if math.Abs(res.PriceRange.Min-12.38) > 0.011 || math.Abs(res.PriceRange.Max-23.63) > 0.011 {
		t.Fatalf("range = [%v, %v]", res.PriceRange.Min, res.PriceRange.Max)
	}
	if res.ModelVersion != "1.0.0" {
		t.Fatalf("model version = %q", res.ModelVersion)
	}
	if !res.PredictedAt.Equal(testNow) {
		t.Fatalf("predicted_at = %v", res.PredictedAt)
	}
}

func TestPredictHealthyScorer(t *testing.T) {
	ev := 40.0
	catalog := &fakeCatalog{items: map[string]models.Item{
		"pop-2": {ID: "pop-2", Name: "Grogu", Series: "Star Wars", IsChase: true,
			ReleaseDate: testNow.AddDate(0, -6, 0), EstimatedValue: &ev},
	}}
	sales := &fakeSales{records: map[string][]models.SaleRecord{
		"pop-2": {
			{ItemID: "pop-2", Price: 50, SoldAt: testNow.AddDate(0, 0, -3)},
			{ItemID: "pop-2", Price: 52, SoldAt: testNow.AddDate(0, 0, -1)},
		},
	}}
	svc := newTestService(t, catalog, sales, &stubScorer{price: 55.456})

	res, err := svc.Predict(context.Background(), models.PredictRequest{
		ItemID: "pop-2", Condition: "near_mint", Marketplace: "mercari", FutureDays: 7,
	})
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if res.IsFallback {
		t.Fatalf("healthy scorer should not fall back")
	}
	if res.PredictedPrice != 55.46 {
		t.Fatalf("predicted should round to 2 decimals, got %v", res.PredictedPrice)
	}
	if !res.Factors.IsChase || res.Factors.Condition != "near_mint" || res.Factors.Marketplace != "mercari" {
		t.Fatalf("factors = %+v", res.Factors)
	}
}

func TestPredictUnknownItem(t *testing.T) {
	svc := newTestService(t,
		&fakeCatalog{items: map[string]models.Item{}},
		&fakeSales{records: map[string][]models.SaleRecord{}},
		&stubScorer{price: 10})

	_, err := svc.Predict(context.Background(), models.PredictRequest{ItemID: "ghost"})
	if !errors.Is(err, models.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestPredictBatchPartialFailure(t *testing.T) {
	items := map[string]models.Item{}
	for _, id := range []string{"a", "b", "c", "d"} {
		items[id] = models.Item{ID: id, Name: id, ReleaseDate: testNow.AddDate(-1, 0, 0)}
	}
	svc := newTestService(t,
		&fakeCatalog{items: items},
		&fakeSales{records: map[string][]models.SaleRecord{}},
		&stubScorer{price: 20})

	out := svc.PredictBatch(context.Background(), models.BatchPredictRequest{
		ItemIDs:     []string{"a", "b", "ghost", "c", "d"},
		Condition:   "mint",
		Marketplace: "ebay",
		FutureDays:  30,
	})

	if len(out.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(out.Results))
	}
	if len(out.Failed) != 1 || out.Failed[0].ItemID != "ghost" {
		t.Fatalf("failed = %+v", out.Failed)
	}
}

func TestHistoryTrend(t *testing.T) {
	recs := []models.SaleRecord{
		{ItemID: "pop-3", Price: 10, Marketplace: "ebay", Condition: "mint", SoldAt: testNow.AddDate(0, 0, -4)},
		{ItemID: "pop-3", Price: 12, Marketplace: "ebay", Condition: "mint", SoldAt: testNow.AddDate(0, 0, -3)},
		{ItemID: "pop-3", Price: 14, Marketplace: "mercari", Condition: "mint", SoldAt: testNow.AddDate(0, 0, -2)},
		{ItemID: "pop-3", Price: 16, Marketplace: "ebay", Condition: "near_mint", SoldAt: testNow.AddDate(0, 0, -1)},
	}
	svc := newTestService(t,
		&fakeCatalog{items: map[string]models.Item{"pop-3": {ID: "pop-3"}}},
		&fakeSales{records: map[string][]models.SaleRecord{"pop-3": recs}},
		&stubScorer{price: 10})

	hist, err := svc.History(context.Background(), "pop-3", 90)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if hist.TrendDirection != models.TrendIncreasing {
		t.Fatalf("trend = %v", hist.TrendDirection)
	}
	if hist.AveragePrice != 13 {
		t.Fatalf("average = %v, want 13", hist.AveragePrice)
	}
	if hist.PriceChange != 6 {
		t.Fatalf("change = %v, want 6", hist.PriceChange)
	}
	if hist.HighestPrice != 16 || hist.LowestPrice != 10 {
		t.Fatalf("bounds = [%v, %v]", hist.LowestPrice, hist.HighestPrice)
	}
	if len(hist.Records) != 4 {
		t.Fatalf("records = %d", len(hist.Records))
	}
}

func TestHistoryNoRecords(t *testing.T) {
	svc := newTestService(t,
		&fakeCatalog{items: map[string]models.Item{}},
		&fakeSales{records: map[string][]models.SaleRecord{}},
		&stubScorer{price: 10})

	_, err := svc.History(context.Background(), "pop-x", 90)
	if !errors.Is(err, models.ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	svc := newTestService(t,
		&fakeCatalog{items: map[string]models.Item{}},
		&fakeSales{records: map[string][]models.SaleRecord{}},
		&stubScorer{price: 10})

	st := svc.Status(context.Background())
	if !st.ScorerReachable {
		t.Fatalf("stub scorer should be reachable")
	}
	if st.EncodingsLoaded {
		t.Fatalf("encodings not loaded yet")
	}
	if st.FeatureCount != 18 {
		t.Fatalf("feature count = %d, want 18", st.FeatureCount)
	}
	if st.ModelVersion != "1.0.0" {
		t.Fatalf("model version = %q", st.ModelVersion)
	}
}

func TestReloadEncodings(t *testing.T) {
	l := testLogger(t)
	datasets := newFakeDatasets()
	datasets.tables["series"] = map[string]int{"Star Wars": 0}
	datasets.tables["character"] = map[string]int{"Grogu": 0}

	adapter := scoring.NewAdapter(&stubScorer{price: 10}, l, nil)
	svc := NewPredictionService(
		&fakeCatalog{items: map[string]models.Item{}},
		&fakeSales{records: map[string][]models.SaleRecord{}},
		datasets, adapter, l, "1.0.0")

	if err := svc.ReloadEncodings(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !svc.Status(context.Background()).EncodingsLoaded {
		t.Fatalf("encodings should be marked loaded")
	}

	datasets.readErr = errors.New("clickhouse down")
	if err := svc.ReloadEncodings(context.Background()); err == nil {
		t.Fatalf("expected reload error")
	}
}
