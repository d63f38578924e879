package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PopPredict/internal/di"
	"PopPredict/pkg/config"
	applogger "PopPredict/pkg/logger"
)

// One-shot training dataset build. Reads the catalog and sale records,
// encodes them, and writes the split datasets plus encoding tables. The same
// build also runs inside the service when triggered through the job queue;
// this command exists for operators and schedulers.
func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	l, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	chClient, err := di.ProvideClickHouseClient(cfg)
	if err != nil {
		log.Fatalf("clickhouse init failed: %v", err)
	}
	defer func() {
		if err := chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}()

	events, err := di.ProvideEvents(cfg)
	if err != nil {
		log.Fatalf("kafka init failed: %v", err)
	}
	if events != nil {
		defer func() {
			if err := events.Close(); err != nil {
				l.Warn("event publisher close error", applogger.Error(err))
			}
		}()
	}

	builder := di.ProvideTrainingBuilder(
		di.ProvideCatalog(chClient, cfg, l),
		di.ProvideSales(chClient, cfg, l),
		di.ProvideDatasets(chClient, cfg, l),
		events,
		l,
		cfg,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := builder.Build(ctx)
	if err != nil {
		l.Error("training build failed", applogger.Error(err))
		os.Exit(1)
	}

	l.Info("training build report",
		applogger.Int("total_rows", report.TotalRows),
		applogger.Int("train_rows", report.TrainRows),
		applogger.Int("validation_rows", report.ValidationRows),
		applogger.Int("test_rows", report.TestRows),
		applogger.Int("dropped_rows", report.DroppedRows),
		applogger.Int("series_vocab", report.SeriesVocab),
		applogger.Int("character_vocab", report.CharacterVocab))
}
