package di

import (
	"fmt"

	"SwingArrow/internal/domain/repository"
	"SwingArrow/internal/handler/api"
	internalrepo "SwingArrow/internal/repository"
	icache "SwingArrow/internal/service/cache"
	"SwingArrow/internal/service/yahoo"
	"SwingArrow/internal/usecase"
	"SwingArrow/pkg/config"
	xhttp "SwingArrow/pkg/http"
	pkgkafka "SwingArrow/pkg/kafka"
	applogger "SwingArrow/pkg/logger"
	"SwingArrow/pkg/metrics"
	"SwingArrow/pkg/server"
	"SwingArrow/pkg/tracing"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := cfg.Log.Format
	if format == "" {
		format = "json"
	}
	output := cfg.Log.Output
	if output == "" {
		output = "stdout"
	}
	l, err := applogger.New(&applogger.Config{Level: cfg.Log.Level, Format: format, Output: output, Service: "swingarrow"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideTracing installs the tracer provider when tracing is enabled.
func ProvideTracing(cfg *config.Config) (*tracing.Provider, error) {
	tp, err := tracing.Init(cfg.Tracing.Enabled, cfg.Tracing.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	return tp, nil
}

// ProvideCache creates the response cache backend.
func ProvideCache(cfg *config.Config) (icache.BytesCache, error) {
	c, err := icache.New(cfg.Cache.Backend, icache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
		Timeout:  cfg.Cache.Redis.Timeout,
		LocalTTL: cfg.Cache.Redis.LocalTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return c, nil
}

// ProvideQuoteSource creates the upstream market data client.
func ProvideQuoteSource(cfg *config.Config, cache icache.BytesCache, l *applogger.Logger) repository.QuoteSource {
	qs := cfg.QuoteSource
	opts := []yahoo.Option{
		yahoo.WithUserAgent(qs.UserAgent),
		yahoo.WithTimeout(qs.Timeout),
		yahoo.WithRateLimit(qs.RateLimitRPS, qs.Burst),
		yahoo.WithRetry(qs.RetryAttempts, qs.RetryBackoff),
		yahoo.WithCrumb(qs.Crumb),
		yahoo.WithLogger(l.With(applogger.Component("yahoo"))),
	}
	if qs.BaseURL != "" {
		opts = append(opts, yahoo.WithBaseURL(qs.BaseURL))
	}
	if qs.CookieURL != "" {
		opts = append(opts, yahoo.WithCookieURL(qs.CookieURL))
	}
	if qs.CacheTTL > 0 {
		opts = append(opts, yahoo.WithCache(cache, qs.CacheTTL))
	}
	return yahoo.New(opts...)
}

// ProvideBatchScanner creates the universe scanner.
func ProvideBatchScanner(cfg *config.Config, src repository.QuoteSource, m repository.Metrics, l *applogger.Logger) *usecase.BatchScanner {
	return usecase.NewBatchScanner(src, m, l.With(applogger.Component("scanner")),
		usecase.WithBenchmark(cfg.Market.Benchmark),
		usecase.WithUniverse(cfg.Market.Universe),
		usecase.WithStage(cfg.Market.Stage),
		usecase.WithTaskTimeout(cfg.Market.TaskTimeout),
		usecase.WithMaxConcurrency(cfg.Market.MaxConcurrency),
	)
}

// ProvideMarketAnalyzer creates the single-instrument and benchmark analyzer.
func ProvideMarketAnalyzer(cfg *config.Config, src repository.QuoteSource, m repository.Metrics, l *applogger.Logger) *usecase.MarketAnalyzerUseCase {
	return usecase.NewMarketAnalyzerUseCase(src, m, l.With(applogger.Component("analyzer")),
		usecase.WithAnalyzerBenchmark(cfg.Market.Benchmark),
		usecase.WithTrendLookback(cfg.Market.TrendLookback),
		usecase.WithNewsLimit(cfg.Market.NewsLimit),
		usecase.WithAnalyzerTimeout(cfg.Market.TaskTimeout),
	)
}

// ProvideKafkaProducer creates a Kafka producer. It returns nil when the event
// sink is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideScanPublisher wraps the producer as the scan event sink.
func ProvideScanPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ScanPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaScanPublisher(producer, cfg.Kafka.ScanTopic, cfg.Kafka.TrendTopic)
}

// ProvideRefresher creates the scheduled re-scan. It returns nil when
// refreshing is disabled.
func ProvideRefresher(
	cfg *config.Config,
	scanner *usecase.BatchScanner,
	analyzer *usecase.MarketAnalyzerUseCase,
	cache icache.BytesCache,
	pub repository.ScanPublisher,
	l *applogger.Logger,
) *usecase.Refresher {
	if !cfg.Refresh.Enabled {
		return nil
	}
	return usecase.NewRefresher(scanner, analyzer, cache, pub, l.With(applogger.Component("refresher")),
		usecase.WithSchedule(cfg.Refresh.Schedule),
		usecase.WithMarketHoursOnly(cfg.Refresh.MarketHoursOnly),
		usecase.WithBatchTTL(cfg.Cache.ScannerTTL),
	)
}

// ProvideHTTPHandler creates the market API handler.
func ProvideHTTPHandler(
	cfg *config.Config,
	l *applogger.Logger,
	scanner *usecase.BatchScanner,
	analyzer *usecase.MarketAnalyzerUseCase,
	cache icache.BytesCache,
) xhttp.Handler {
	return api.NewMarketEchoHandler(l.With(applogger.Component("api")), scanner, analyzer, cache,
		api.WithCacheTTL(cfg.Cache.ScannerTTL, cfg.Cache.ResponseTTL),
		api.WithScannerRateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.Refill),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	refresher *usecase.Refresher,
	pub repository.ScanPublisher,
	cache icache.BytesCache,
	tp *tracing.Provider,
) *server.App {
	return server.New(cfg, l, handler, refresher, pub, cache, tp)
}
