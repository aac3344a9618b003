//go:build !wireinject
// +build !wireinject

// Injector kept in step with the provider set in wire.go. Running wire in this
// directory regenerates it.

package di

import (
	"SwingArrow/pkg/config"
	"SwingArrow/pkg/server"
)

// InitializeApp builds every provider in dependency order.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, err
	}
	bytesCache, err := ProvideCache(cfg)
	if err != nil {
		return nil, err
	}
	quoteSource := ProvideQuoteSource(cfg, bytesCache, logger)
	metrics := ProvideMetrics()
	batchScanner := ProvideBatchScanner(cfg, quoteSource, metrics, logger)
	marketAnalyzerUseCase := ProvideMarketAnalyzer(cfg, quoteSource, metrics, logger)
	handler := ProvideHTTPHandler(cfg, logger, batchScanner, marketAnalyzerUseCase, bytesCache)
	producer, err := ProvideKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	scanPublisher := ProvideScanPublisher(producer, cfg)
	refresher := ProvideRefresher(cfg, batchScanner, marketAnalyzerUseCase, bytesCache, scanPublisher, logger)
	provider, err := ProvideTracing(cfg)
	if err != nil {
		return nil, err
	}
	app := ProvideApp(cfg, logger, handler, refresher, scanPublisher, bytesCache, provider)
	return app, nil
}
