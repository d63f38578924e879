package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"PopPredict/internal/domain/models"
	"PopPredict/internal/services/features"
)

func trainingFixture(items, salesPerItem int) (*fakeCatalog, *fakeSales) {
	catalog := &fakeCatalog{items: map[string]models.Item{}}
	sales := &fakeSales{records: map[string][]models.SaleRecord{}}
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < items; i++ {
		id := fmt.Sprintf("pop-%03d", i)
		catalog.items[id] = models.Item{
			ID:          id,
			Name:        fmt.Sprintf("Figure %d", i),
			Series:      fmt.Sprintf("Series %d", i%3),
			Character:   fmt.Sprintf("Character %d", i),
			FunkoNumber: 100 + i,
			ReleaseDate: base.AddDate(-1, 0, 0),
		}
		for j := 0; j < salesPerItem; j++ {
			sales.records[id] = append(sales.records[id], models.SaleRecord{
				ItemID:      id,
				Price:       float64(10 + i + j),
				Marketplace: models.MarketplaceEbay,
				Condition:   models.ConditionMint,
				SoldAt:      base.AddDate(0, 0, j),
			})
		}
	}
	return catalog, sales
}

func TestBuildSplitSizes(t *testing.T) {
	catalog, sales := trainingFixture(10, 10)
	datasets := newFakeDatasets()
	events := &fakeEvents{}

	b := NewTrainingDataBuilder(catalog, sales, datasets, events, testLogger(t), TrainingConfig{
		ShuffleSeed: 42, TrainFraction: 0.7, ValFraction: 0.2,
	})

	report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if report.TotalRows != 100 {
		t.Fatalf("total = %d, want 100", report.TotalRows)
	}
	if report.TrainRows != 70 || report.ValidationRows != 20 || report.TestRows != 10 {
		t.Fatalf("splits = %d/%d/%d, want 70/20/10",
			report.TrainRows, report.ValidationRows, report.TestRows)
	}
	if report.DroppedRows != 0 {
		t.Fatalf("dropped = %d", report.DroppedRows)
	}

	if len(datasets.splits[SplitTrain]) != 70 ||
		len(datasets.splits[SplitValidation]) != 20 ||
		len(datasets.splits[SplitTest]) != 10 {
		t.Fatalf("persisted split sizes differ from report")
	}
	for _, row := range datasets.splits[SplitTrain] {
		if len(row) != 1+features.FeatureCount {
			t.Fatalf("row width = %d, want %d", len(row), 1+features.FeatureCount)
		}
	}
}

func TestBuildVocabulary(t *testing.T) {
	catalog, sales := trainingFixture(10, 2)
	datasets := newFakeDatasets()

	b := NewTrainingDataBuilder(catalog, sales, datasets, nil, testLogger(t), TrainingConfig{ShuffleSeed: 42})
	report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	// 10 items over 3 series names and 10 character names.
	if report.SeriesVocab != 3 || report.CharacterVocab != 10 {
		t.Fatalf("vocab = %d/%d, want 3/10", report.SeriesVocab, report.CharacterVocab)
	}
	if len(datasets.tables["series"]) != 3 || len(datasets.tables["character"]) != 10 {
		t.Fatalf("persisted vocab sizes differ from report")
	}

	// Sorted vocabulary: codes follow lexicographic order.
	if datasets.tables["series"]["Series 0"] != 0 ||
		datasets.tables["series"]["Series 1"] != 1 ||
		datasets.tables["series"]["Series 2"] != 2 {
		t.Fatalf("series codes not sorted: %v", datasets.tables["series"])
	}
}

func TestBuildDeterministicAcrossRuns(t *testing.T) {
	runBuild := func() map[string][]float64 {
		catalog, sales := trainingFixture(5, 8)
		datasets := newFakeDatasets()
		b := NewTrainingDataBuilder(catalog, sales, datasets, nil, testLogger(t), TrainingConfig{
			ShuffleSeed: 42, TrainFraction: 0.7, ValFraction: 0.2,
		})
		if _, err := b.Build(context.Background()); err != nil {
			t.Fatalf("build: %v", err)
		}
		out := map[string][]float64{}
		for split, rows := range datasets.splits {
			for _, row := range rows {
				out[split] = append(out[split], row...)
			}
		}
		return out
	}

	first := runBuild()
	second := runBuild()
	for split, vals := range first {
		if len(second[split]) != len(vals) {
			t.Fatalf("split %s size differs between runs", split)
		}
		for i := range vals {
			if second[split][i] != vals[i] {
				t.Fatalf("split %s diverges at %d", split, i)
			}
		}
	}
}

func TestBuildUnknownItemAborts(t *testing.T) {
	catalog, sales := trainingFixture(2, 2)
	sales.records["orphan"] = []models.SaleRecord{
		{ItemID: "orphan", Price: 5, SoldAt: time.Now()},
	}

	b := NewTrainingDataBuilder(catalog, sales, newFakeDatasets(), nil, testLogger(t), TrainingConfig{ShuffleSeed: 42})
	_, err := b.Build(context.Background())
	if !errors.Is(err, models.ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
}

func TestBuildNoSales(t *testing.T) {
	catalog, _ := trainingFixture(2, 0)
	b := NewTrainingDataBuilder(catalog, &fakeSales{records: map[string][]models.SaleRecord{}},
		newFakeDatasets(), nil, testLogger(t), TrainingConfig{ShuffleSeed: 42})
	if _, err := b.Build(context.Background()); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestBuildPublishesEvent(t *testing.T) {
	catalog, sales := trainingFixture(3, 4)
	events := &fakeEvents{}

	b := NewTrainingDataBuilder(catalog, sales, newFakeDatasets(), events, testLogger(t), TrainingConfig{ShuffleSeed: 42})
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(events.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.published))
	}
	if events.published[0]["total_rows"] != 12 {
		t.Fatalf("event total_rows = %v", events.published[0]["total_rows"])
	}
}

func TestBuildSurvivesEventFailure(t *testing.T) {
	catalog, sales := trainingFixture(2, 3)
	events := &fakeEvents{err: errors.New("broker down")}

	b := NewTrainingDataBuilder(catalog, sales, newFakeDatasets(), events, testLogger(t), TrainingConfig{ShuffleSeed: 42})
	report, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("build should not fail on event publish: %v", err)
	}
	if report.TotalRows != 6 {
		t.Fatalf("total = %d", report.TotalRows)
	}
}
