package di

import (
	"context"
	"fmt"
	"time"

	domrepo "PopPredict/internal/domain/repository"
	domsvc "PopPredict/internal/domain/service"
	"PopPredict/internal/handler/api"
	internalrepo "PopPredict/internal/repository"
	"PopPredict/internal/services/scoring"
	"PopPredict/internal/usecase"
	"PopPredict/pkg/cache"
	pkgch "PopPredict/pkg/clickhouse"
	"PopPredict/pkg/config"
	xhttp "PopPredict/pkg/http"
	pkgkafka "PopPredict/pkg/kafka"
	applogger "PopPredict/pkg/logger"
	"PopPredict/pkg/metrics"
	"PopPredict/pkg/queue"
	"PopPredict/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.items (
            id String, name String, series String, character String,
            funko_number Int32, release_date DateTime,
            is_chase UInt8, is_exclusive UInt8, is_vaulted UInt8,
            estimated_value Nullable(Float64), rarity String
        ) ENGINE=MergeTree ORDER BY id`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.sale_records (
            item_id String, price Float64, marketplace String,
            condition String, sold_at DateTime
        ) ENGINE=MergeTree ORDER BY (item_id, sold_at)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.dataset_rows (
            split String, row_index UInt32, label Float64,
            features Array(Float64), built_at DateTime
        ) ENGINE=MergeTree ORDER BY (split, built_at, row_index)`, db),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.encoding_tables (
            field String, value String, code Int32, built_at DateTime
        ) ENGINE=MergeTree ORDER BY (field, built_at, value)`, db),
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideCatalog creates the ClickHouse-backed item catalog.
func ProvideCatalog(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.Catalog {
	c := internalrepo.NewCHCatalog(chClient, cfg.ClickHouse.Database+".items")
	c.SetLogger(l)
	return c
}

// ProvideSales creates the ClickHouse-backed sales repository.
func ProvideSales(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.Sales {
	s := internalrepo.NewCHSales(chClient, cfg.ClickHouse.Database+".sale_records")
	s.SetLogger(l)
	return s
}

// ProvideDatasets creates the ClickHouse-backed dataset store.
func ProvideDatasets(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) domrepo.Datasets {
	d := internalrepo.NewCHDatasets(chClient,
		cfg.ClickHouse.Database+".dataset_rows",
		cfg.ClickHouse.Database+".encoding_tables")
	d.SetLogger(l)
	return d
}

// ProvideCache creates the Redis cache. Returns nil when Redis is disabled;
// the prediction service then serves uncached.
func ProvideCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideCacheService layers a small in-process cache over Redis, or serves
// purely from memory when Redis is disabled.
func ProvideCacheService(redisCache *cache.RedisCache) cache.Service {
	if redisCache == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(redisCache)
}

// ProvideEvents creates the Kafka dataset event publisher. Returns nil when
// Kafka is disabled; builds then skip event publishing.
func ProvideEvents(cfg *config.Config) (domrepo.Events, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEvents(producer, cfg.Kafka.Topic), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideScorer creates the HTTP client for the external scoring service.
func ProvideScorer(cfg *config.Config) domsvc.Scorer {
	return scoring.NewHTTPScorer(cfg)
}

// ProvideAdapter wraps the scorer with the fallback estimate.
func ProvideAdapter(scorer domsvc.Scorer, l *applogger.Logger, m domrepo.Metrics) *scoring.Adapter {
	return scoring.NewAdapter(scorer, l, m)
}

// ProvidePredictionService creates the prediction use case.
func ProvidePredictionService(
	catalog domrepo.Catalog,
	sales domrepo.Sales,
	datasets domrepo.Datasets,
	adapter *scoring.Adapter,
	l *applogger.Logger,
	m domrepo.Metrics,
	cacheSvc cache.Service,
	cfg *config.Config,
) *usecase.PredictionService {
	opts := []usecase.PredictionServiceOption{
		usecase.WithMetrics(m),
		usecase.WithCache(cacheSvc, cfg.Cache.PredictionTTL, cfg.Cache.HistoryTTL),
	}
	return usecase.NewPredictionService(catalog, sales, datasets, adapter, l,
		cfg.Scorer.ModelVersion, opts...)
}

// ProvideTrainingBuilder creates the training dataset builder.
func ProvideTrainingBuilder(
	catalog domrepo.Catalog,
	sales domrepo.Sales,
	datasets domrepo.Datasets,
	events domrepo.Events,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.TrainingDataBuilder {
	return usecase.NewTrainingDataBuilder(catalog, sales, datasets, events, l, usecase.TrainingConfig{
		ShuffleSeed:   cfg.Training.ShuffleSeed,
		TrainFraction: cfg.Training.TrainFraction,
		ValFraction:   cfg.Training.ValFraction,
	})
}

// ProvideQueueConsumer creates the Redis-backed retraining job consumer.
// Returns nil when Redis is disabled; builds then run only via the trainer CLI.
func ProvideQueueConsumer(
	cfg *config.Config,
	l *applogger.Logger,
	cacheSvc *cache.RedisCache,
	builder *usecase.TrainingDataBuilder,
) *queue.RedisQueue {
	if cacheSvc == nil {
		return nil
	}
	job := usecase.NewTrainingBuildJob(builder, l)
	return queue.NewRedisConsumer(l,
		&queue.QueueConfig{
			Workers:    cfg.Training.QueueWorkers,
			RetryLimit: cfg.Training.QueueRetryMax,
			RetryDelay: 30 * time.Second,
		},
		cacheSvc.Client(),
		[]queue.Job{job},
	)
}

// ProvideHandler creates the HTTP route handler.
func ProvideHandler(l *applogger.Logger, svc *usecase.PredictionService, catalog domrepo.Catalog) xhttp.Handler {
	return api.NewPredictionsEchoHandler(l, svc, catalog)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	svc *usecase.PredictionService,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
	consumer *queue.RedisQueue,
	events domrepo.Events,
) *server.App {
	app := server.New(cfg, l, svc, handler, chClient)
	if consumer != nil {
		app.SetQueueConsumer(consumer)
	}
	if events != nil {
		app.SetEvents(events)
	}
	app.SetCache(cacheSvc)
	return app
}
