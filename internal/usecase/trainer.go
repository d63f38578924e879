package usecase

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"PopPredict/internal/domain/models"
	domrepo "PopPredict/internal/domain/repository"
	"PopPredict/internal/services/features"
	xlogger "PopPredict/pkg/logger"
)

// Dataset split names, fixed: the training orchestrator keys off them.
const (
	SplitTrain      = "train"
	SplitValidation = "validation"
	SplitTest       = "test"
)

// BuildReport summarizes one training dataset build.
type BuildReport struct {
	TotalRows      int       `json:"total_rows"`
	TrainRows      int       `json:"train_rows"`
	ValidationRows int       `json:"validation_rows"`
	TestRows       int       `json:"test_rows"`
	DroppedRows    int       `json:"dropped_rows"`
	SeriesVocab    int       `json:"series_vocab"`
	CharacterVocab int       `json:"character_vocab"`
	BuiltAt        time.Time `json:"built_at"`
}

// TrainingConfig carries the reproducibility knobs of a build.
type TrainingConfig struct {
	// ShuffleSeed fixes the pre-split shuffle so reruns over identical input
	// produce identical splits.
	ShuffleSeed   int64
	TrainFraction float64
	ValFraction   float64
}

// TrainingDataBuilder joins sale records with item metadata, encodes every
// record through the same feature encoder the prediction service uses, and
// writes label-first rows split into train/validation/test.
type TrainingDataBuilder struct {
	catalog  domrepo.Catalog
	sales    domrepo.Sales
	datasets domrepo.Datasets
	events   domrepo.Events
	logger   *xlogger.Logger
	cfg      TrainingConfig
}

func NewTrainingDataBuilder(
	catalog domrepo.Catalog,
	sales domrepo.Sales,
	datasets domrepo.Datasets,
	events domrepo.Events,
	logger *xlogger.Logger,
	cfg TrainingConfig,
) *TrainingDataBuilder {
	if cfg.TrainFraction <= 0 {
		cfg.TrainFraction = 0.7
	}
	if cfg.ValFraction <= 0 {
		cfg.ValFraction = 0.2
	}
	return &TrainingDataBuilder{
		catalog:  catalog,
		sales:    sales,
		datasets: datasets,
		events:   events,
		logger:   logger,
		cfg:      cfg,
	}
}

// Build runs the full pipeline: join, two-pass encode, shuffle, split, persist.
// A sale record referencing a missing item aborts the build; silently dropping
// joined rows would bias the dataset without anyone noticing.
func (b *TrainingDataBuilder) Build(ctx context.Context) (*BuildReport, error) {
	start := time.Now()

	items, err := b.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	sales, err := b.sales.ListSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if len(sales) == 0 {
		return nil, fmt.Errorf("build: no sale records to train on")
	}

	itemsByID := make(map[string]models.Item, len(items))
	for _, it := range items {
		itemsByID[it.ID] = it
	}

	// Pass 1: verify the join and collect the full category vocabulary before
	// any encoding happens, so no code depends on record order.
	seriesVocab := map[string]struct{}{}
	characterVocab := map[string]struct{}{}
	for _, s := range sales {
		item, ok := itemsByID[s.ItemID]
		if !ok {
			return nil, fmt.Errorf("sale references unknown item %s: %w", s.ItemID, models.ErrDataIntegrity)
		}
		seriesVocab[item.Series] = struct{}{}
		characterVocab[item.Character] = struct{}{}
	}

	seriesTable := features.BuildEncodingTable(sortedKeys(seriesVocab))
	characterTable := features.BuildEncodingTable(sortedKeys(characterVocab))
	encoder := features.NewEncoder(seriesTable, characterTable)

	// Pass 2: encode each record with its own sale context and the rolling
	// statistics of that item's history up to and including the record.
	perItem := groupByItem(sales)
	rows := make([]domrepo.DatasetRow, 0, len(sales))
	dropped := 0
	for _, itemID := range sortedItemIDs(perItem) {
		records := perItem[itemID]
		item := itemsByID[itemID]
		prices := make([]float64, 0, len(records))
		for _, rec := range records {
			prices = append(prices, rec.Price)
			stats := features.Aggregate(prices)
			vector := encoder.Encode(item, string(rec.Condition), string(rec.Marketplace), rec.SoldAt, stats)

			row := make(domrepo.DatasetRow, 0, 1+len(vector))
			row = append(row, rec.Price)
			row = append(row, vector...)
			if !rowComplete(row) {
				dropped++
				continue
			}
			rows = append(rows, row)
		}
	}

	rng := rand.New(rand.NewSource(b.cfg.ShuffleSeed))
	rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })

	n := len(rows)
	trainEnd := int(b.cfg.TrainFraction * float64(n))
	valEnd := trainEnd + int(b.cfg.ValFraction*float64(n))

	if err := b.datasets.WriteEncodingTable(ctx, "series", seriesTable.Codes()); err != nil {
		return nil, fmt.Errorf("write series encoding table: %w", err)
	}
	if err := b.datasets.WriteEncodingTable(ctx, "character", characterTable.Codes()); err != nil {
		return nil, fmt.Errorf("write character encoding table: %w", err)
	}
	if err := b.datasets.WriteDataset(ctx, SplitTrain, rows[:trainEnd]); err != nil {
		return nil, fmt.Errorf("write train split: %w", err)
	}
	if err := b.datasets.WriteDataset(ctx, SplitValidation, rows[trainEnd:valEnd]); err != nil {
		return nil, fmt.Errorf("write validation split: %w", err)
	}
	if err := b.datasets.WriteDataset(ctx, SplitTest, rows[valEnd:]); err != nil {
		return nil, fmt.Errorf("write test split: %w", err)
	}

	report := &BuildReport{
		TotalRows:      n,
		TrainRows:      trainEnd,
		ValidationRows: valEnd - trainEnd,
		TestRows:       n - valEnd,
		DroppedRows:    dropped,
		SeriesVocab:    seriesTable.Len(),
		CharacterVocab: characterTable.Len(),
		BuiltAt:        time.Now(),
	}

	if b.events != nil {
		if err := b.events.PublishDatasetReady(ctx, map[string]interface{}{
			"total_rows":      report.TotalRows,
			"train_rows":      report.TrainRows,
			"validation_rows": report.ValidationRows,
			"test_rows":       report.TestRows,
			"series_vocab":    report.SeriesVocab,
			"character_vocab": report.CharacterVocab,
			"built_at":        report.BuiltAt.Format(time.RFC3339),
		}); err != nil {
			// The datasets are durable already; a lost event is re-derivable.
			b.logger.Warn("dataset ready event publish failed", xlogger.Error(err))
		}
	}

	b.logger.Info("training dataset build completed",
		xlogger.Int("rows", report.TotalRows),
		xlogger.Int("train", report.TrainRows),
		xlogger.Int("validation", report.ValidationRows),
		xlogger.Int("test", report.TestRows),
		xlogger.Int("dropped", report.DroppedRows),
		xlogger.Duration("duration_ms", time.Since(start)))
	return report, nil
}

func rowComplete(row domrepo.DatasetRow) bool {
	for _, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// groupByItem partitions sales per item, preserving chronological order.
func groupByItem(sales []models.SaleRecord) map[string][]models.SaleRecord {
	out := make(map[string][]models.SaleRecord)
	for _, s := range sales {
		out[s.ItemID] = append(out[s.ItemID], s)
	}
	for _, recs := range out {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].SoldAt.Before(recs[j].SoldAt) })
	}
	return out
}

func sortedItemIDs(perItem map[string][]models.SaleRecord) []string {
	out := make([]string, 0, len(perItem))
	for id := range perItem {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
