//go:build wireinject
// +build wireinject

package di

import (
	"PopPredict/pkg/config"
	"PopPredict/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideCacheService,
		ProvideEvents,

		// Repositories
		ProvideCatalog,
		ProvideSales,
		ProvideDatasets,

		// Scoring
		ProvideScorer,
		ProvideAdapter,

		// Use cases
		ProvidePredictionService,
		ProvideTrainingBuilder,
		ProvideQueueConsumer,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
