//go:build wireinject
// +build wireinject

package di

import (
	"SwingArrow/pkg/config"
	"SwingArrow/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideTracing,

		// Infrastructure clients
		ProvideCache,
		ProvideQuoteSource,
		ProvideKafkaProducer,
		ProvideScanPublisher,

		// Use cases
		ProvideBatchScanner,
		ProvideMarketAnalyzer,
		ProvideRefresher,

		// Transport and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
