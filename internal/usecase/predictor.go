package usecase

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"PopPredict/internal/domain/models"
	domrepo "PopPredict/internal/domain/repository"
	"PopPredict/internal/services/confidence"
	"PopPredict/internal/services/features"
	"PopPredict/internal/services/scoring"
	"PopPredict/pkg/cache"
	xlogger "PopPredict/pkg/logger"
)

// historyFetchLimit bounds how many recent sales feed the rolling windows.
// The widest window is 90 records, so fetching more buys nothing.
const historyFetchLimit = 90

// PredictionService composes the feature encoder, price history aggregator,
// scoring adapter and confidence estimator into the request-facing prediction
// flow. Requests share no mutable state beyond the encoding tables, which are
// swapped atomically on reload so in-flight requests never observe a
// partially-updated table.
type PredictionService struct {
	catalog      domrepo.Catalog
	sales        domrepo.Sales
	datasets     domrepo.Datasets
	adapter      *scoring.Adapter
	cache        cache.Service
	logger       *xlogger.Logger
	metrics      domrepo.Metrics
	modelVersion string

	predictionTTL time.Duration
	historyTTL    time.Duration

	encoder atomic.Pointer[features.Encoder]
	loaded  atomic.Bool

	now func() time.Time
}

// PredictionServiceOption configures optional collaborators.
type PredictionServiceOption func(*PredictionService)

// WithCache enables prediction/history response caching.
func WithCache(c cache.Service, predictionTTL, historyTTL time.Duration) PredictionServiceOption {
	return func(s *PredictionService) {
		s.cache = c
		s.predictionTTL = predictionTTL
		s.historyTTL = historyTTL
	}
}

// WithMetrics wires a metrics recorder.
func WithMetrics(m domrepo.Metrics) PredictionServiceOption {
	return func(s *PredictionService) { s.metrics = m }
}

// WithClock overrides the reference clock.
func WithClock(now func() time.Time) PredictionServiceOption {
	return func(s *PredictionService) { s.now = now }
}

func NewPredictionService(
	catalog domrepo.Catalog,
	sales domrepo.Sales,
	datasets domrepo.Datasets,
	adapter *scoring.Adapter,
	logger *xlogger.Logger,
	modelVersion string,
	opts ...PredictionServiceOption,
) *PredictionService {
	s := &PredictionService{
		catalog:      catalog,
		sales:        sales,
		datasets:     datasets,
		adapter:      adapter,
		logger:       logger,
		modelVersion: modelVersion,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Empty tables until ReloadEncodings succeeds: everything encodes to the
	// default code rather than failing.
	s.encoder.Store(features.NewEncoder(nil, nil))
	return s
}

// ReloadEncodings loads the persisted series/character encoding tables and
// swaps them in. Safe to call while serving.
func (s *PredictionService) ReloadEncodings(ctx context.Context) error {
	series, err := s.datasets.ReadEncodingTable(ctx, "series")
	if err != nil {
		return fmt.Errorf("read series encoding table: %w", err)
	}
	character, err := s.datasets.ReadEncodingTable(ctx, "character")
	if err != nil {
		return fmt.Errorf("read character encoding table: %w", err)
	}

	s.encoder.Store(features.NewEncoder(
		features.LoadEncodingTable(series),
		features.LoadEncodingTable(character),
	))
	s.loaded.Store(true)

	s.logger.Info("encoding tables loaded",
		xlogger.Int("series_vocab", len(series)),
		xlogger.Int("character_vocab", len(character)))
	return nil
}

// Predict estimates the resale price of one item.
func (s *PredictionService) Predict(ctx context.Context, req models.PredictRequest) (*models.PredictionResult, error) {
	start := s.now()

	cacheKey := cache.GenerateKeyWithParams("prediction", req.ItemID, req.Condition, req.Marketplace, req.FutureDays)
	if s.cache != nil {
		var cached models.PredictionResult
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	item, err := s.catalog.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", req.ItemID, err)
	}

	recent, err := s.sales.RecentSales(ctx, req.ItemID, historyFetchLimit)
	if err != nil {
		return nil, fmt.Errorf("recent sales %s: %w", req.ItemID, err)
	}
	stats := features.AggregateSales(recent)

	saleDate := s.now().AddDate(0, 0, req.FutureDays)
	vector := s.encoder.Load().Encode(item, req.Condition, req.Marketplace, saleDate, stats)

	price, fallback := s.adapter.Score(ctx, vector, item.BaseValue())
	est := confidence.FromVolatility(price, vector[features.IdxPriceVolatility30d])

	result := &models.PredictionResult{
		ItemID:         item.ID,
		ItemName:       item.Name,
		Series:         item.Series,
		PredictedPrice: round2(price),
		Confidence:     round3(est.Confidence),
		PriceRange: models.PriceRange{
			Min: round2(est.Range.Min),
			Max: round2(est.Range.Max),
		},
		Factors: models.PredictionFactors{
			IsChase:          item.IsChase,
			IsExclusive:      item.IsExclusive,
			IsVaulted:        item.IsVaulted,
			Condition:        req.Condition,
			Marketplace:      req.Marketplace,
			DaysSinceRelease: int(vector[features.IdxDaysSinceRelease]),
		},
		IsFallback:   fallback,
		PredictedAt:  s.now(),
		ModelVersion: s.modelVersion,
	}

	if s.metrics != nil {
		s.metrics.RecordPrediction(req.Marketplace)
		s.metrics.RecordPredictedPrice(item.ID, result.PredictedPrice)
		s.metrics.RecordLatency("predict", s.now().Sub(start).Seconds())
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, result, s.predictionTTL)
	}

	return result, nil
}

// PredictBatch fans out over the requested items in parallel. One item's
// failure never aborts the batch; failed items are reported alongside the
// successful results.
func (s *PredictionService) PredictBatch(ctx context.Context, req models.BatchPredictRequest) *models.BatchPredictionResult {
	out := &models.BatchPredictionResult{
		Results: make([]*models.PredictionResult, 0, len(req.ItemIDs)),
	}

	type indexed struct {
		pos    int
		result *models.PredictionResult
		err    error
		id     string
	}

	var wg sync.WaitGroup
	slots := make([]indexed, len(req.ItemIDs))
	for i, id := range req.ItemIDs {
		wg.Add(1)
		go func(pos int, itemID string) {
			defer wg.Done()
			res, err := s.Predict(ctx, models.PredictRequest{
				ItemID:      itemID,
				Condition:   req.Condition,
				Marketplace: req.Marketplace,
				FutureDays:  req.FutureDays,
			})
			slots[pos] = indexed{pos: pos, result: res, err: err, id: itemID}
		}(i, id)
	}
	wg.Wait()

	for _, slot := range slots {
		if slot.err != nil {
			out.Failed = append(out.Failed, models.BatchError{ItemID: slot.id, Error: slot.err.Error()})
			continue
		}
		out.Results = append(out.Results, slot.result)
	}

	s.logger.Info("batch prediction completed",
		xlogger.Int("requested", len(req.ItemIDs)),
		xlogger.Int("successful", len(out.Results)))
	return out
}

// History returns recent sales with trend analysis.
func (s *PredictionService) History(ctx context.Context, itemID string, days int) (*models.PriceHistory, error) {
	cacheKey := cache.GenerateKeyWithParams("history", itemID, days)
	if s.cache != nil {
		var cached models.PriceHistory
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	records, err := s.sales.SalesSince(ctx, itemID, days)
	if err != nil {
		return nil, fmt.Errorf("sales since %s: %w", itemID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("history %s: %w", itemID, models.ErrNoHistory)
	}

	prices := make([]float64, len(records))
	out := &models.PriceHistory{
		ItemID:  itemID,
		Records: make([]models.HistoricalPrice, len(records)),
	}
	for i, r := range records {
		prices[i] = r.Price
		out.Records[i] = models.HistoricalPrice{
			Date:        r.SoldAt,
			Price:       r.Price,
			Marketplace: string(r.Marketplace),
			Condition:   string(r.Condition),
		}
	}

	slope := features.LinearSlope(prices)
	out.TrendDirection = features.ClassifyTrend(slope)
	out.TrendStrength = round3(math.Abs(slope))
	out.AveragePrice = round2(mean(prices))
	out.PriceChange = round2(prices[len(prices)-1] - prices[0])
	out.HighestPrice = maxOf(prices)
	out.LowestPrice = minOf(prices)
	if out.AveragePrice > 0 {
		out.VolatilityScore = round3(stdDev(prices) / out.AveragePrice)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, out, s.historyTTL)
	}
	return out, nil
}

// Status reports model metadata and scorer reachability.
func (s *PredictionService) Status(ctx context.Context) models.ServiceStatus {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	reachable := s.adapter.Ping(probeCtx) == nil
	return models.ServiceStatus{
		ModelVersion:    s.modelVersion,
		FeatureCount:    features.FeatureCount,
		ScorerReachable: reachable,
		EncodingsLoaded: s.loaded.Load(),
		LastStatusCheck: s.now(),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func mean(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	v := 0.0
	for _, x := range xs {
		d := x - m
		v += d * d
	}
	return math.Sqrt(v / float64(len(xs)))
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func minOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
