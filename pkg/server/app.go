package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "PopPredict/internal/domain/repository"
	"PopPredict/internal/usecase"
	"PopPredict/pkg/cache"
	pkgch "PopPredict/pkg/clickhouse"
	"PopPredict/pkg/config"
	xhttp "PopPredict/pkg/http"
	applogger "PopPredict/pkg/logger"
	"PopPredict/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	predictor   *usecase.PredictionService
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	consumer    *queue.RedisQueue
	events      domrepo.Events
	chClient    *pkgch.Client
	cacheSvc    cache.Service
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	predictor *usecase.PredictionService,
	handler xhttp.Handler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		predictor:   predictor,
		httpHandler: handler,
		chClient:    chClient,
	}
}

// SetQueueConsumer allows DI to inject the retraining job consumer.
func (a *App) SetQueueConsumer(q *queue.RedisQueue) { a.consumer = q }

// SetEvents allows DI to inject the event publisher for shutdown.
func (a *App) SetEvents(e domrepo.Events) { a.events = e }

// SetCache allows DI to inject the cache for shutdown.
func (a *App) SetCache(c cache.Service) { a.cacheSvc = c }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Encoding tables may not exist before the first training build; serve
	// with default codes until a reload succeeds.
	loadCtx, loadCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := a.predictor.ReloadEncodings(loadCtx); err != nil {
		a.logger.Warn("encoding tables unavailable at startup", applogger.Error(err))
	}
	loadCancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.logger.Error("queue consumer start error", applogger.Error(err))
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("prediction service started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("scorer_url", a.cfg.Scorer.URL),
		applogger.String("model_version", a.cfg.Scorer.ModelVersion))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("queue consumer stop error", applogger.Error(err))
		}
	}

	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("event publisher close error", applogger.Error(err))
		}
	}

	if closer, ok := a.cacheSvc.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
