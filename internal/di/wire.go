//go:build wireinject
// +build wireinject

package di

import (
	"TrendWatch/pkg/config"
	"TrendWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideDatabase,
		ProvideCache,
		ProvideKafkaProducer,

		// Repositories and adapters
		ProvideEventPublisher,
		ProvideMarketData,
		ProvideUserRepository,
		ProvideWatchlistStore,
		ProvideSessionStore,

		// Domain
		ProvideEngine,
		ProvideAuthUseCase,
		ProvideForecastUseCase,
		ProvideWatchlistUseCase,

		// HTTP
		ProvideRateLimiter,
		ProvideCookieConfig,
		ProvideWebHandler,
		ProvideAPIHandler,
		ProvideHealthHandler,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}
