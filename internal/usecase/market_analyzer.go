package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"SwingArrow/internal/domain/models"
	domrepo "SwingArrow/internal/domain/repository"
	"SwingArrow/internal/domain/service"
	"SwingArrow/internal/services/analytics"
	"SwingArrow/internal/services/features"
	applogger "SwingArrow/pkg/logger"
	"SwingArrow/pkg/tracing"
	"SwingArrow/pkg/util"
)

// MarketAnalyzerUseCase serves the single-instrument and benchmark views.
type MarketAnalyzerUseCase struct {
	source  domrepo.QuoteSource
	metrics domrepo.Metrics
	logger  *applogger.Logger

	benchmark     string
	trendLookback int
	newsLimit     int
	timeout       time.Duration
	now           func() time.Time
}

var _ service.MarketAnalyzer = (*MarketAnalyzerUseCase)(nil)

type AnalyzerOption func(*MarketAnalyzerUseCase)

func WithAnalyzerBenchmark(symbol string) AnalyzerOption {
	return func(a *MarketAnalyzerUseCase) {
		if sym := util.NormalizeSymbol(symbol); sym != "" {
			a.benchmark = sym
		}
	}
}

// WithTrendLookback sets how many calendar days of daily bars feed the trend
// classifier. It must cover at least 200 sessions.
func WithTrendLookback(days int) AnalyzerOption {
	return func(a *MarketAnalyzerUseCase) {
		if days > 0 {
			a.trendLookback = days
		}
	}
}

func WithNewsLimit(n int) AnalyzerOption {
	return func(a *MarketAnalyzerUseCase) {
		if n > 0 {
			a.newsLimit = n
		}
	}
}

func WithAnalyzerTimeout(d time.Duration) AnalyzerOption {
	return func(a *MarketAnalyzerUseCase) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithAnalyzerClock(now func() time.Time) AnalyzerOption {
	return func(a *MarketAnalyzerUseCase) { a.now = now }
}

func NewMarketAnalyzerUseCase(source domrepo.QuoteSource, metrics domrepo.Metrics, logger *applogger.Logger, opts ...AnalyzerOption) *MarketAnalyzerUseCase {
	a := &MarketAnalyzerUseCase{
		source:        source,
		metrics:       metrics,
		logger:        logger,
		benchmark:     "SPY",
		trendLookback: 400,
		newsLimit:     5,
		timeout:       20 * time.Second,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = nopMetrics{}
	}
	if a.logger == nil {
		a.logger = applogger.Nop()
	}
	return a
}

// RelativeStrength rates symbol against the benchmark over the trailing year
// of weekly closes. Both series are fetched concurrently.
func (a *MarketAnalyzerUseCase) RelativeStrength(ctx context.Context, symbol string) (models.RSResult, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.RSResult{}, fmt.Errorf("symbol required")
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "analyze.rs", trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()
	defer a.observe("rs", time.Now())

	to := a.now()
	from := to.AddDate(-1, 0, 0)

	var (
		wg                 sync.WaitGroup
		instrBars, benBars []models.Bar
		instrErr, benchErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		instrBars, instrErr = a.source.History(ctx, symbol, from, to, domrepo.Interval1wk)
	}()
	go func() {
		defer wg.Done()
		benBars, benchErr = a.source.History(ctx, a.benchmark, from, to, domrepo.Interval1wk)
	}()
	wg.Wait()

	if instrErr != nil {
		a.metrics.RecordError("history")
		return models.RSResult{}, fmt.Errorf("history %s: %w", symbol, instrErr)
	}
	if benchErr != nil {
		a.metrics.RecordError("benchmark")
		return models.RSResult{}, fmt.Errorf("history %s: %w", a.benchmark, benchErr)
	}

	res := analytics.RelativeStrength(
		features.ReturnSampleFromBars(instrBars),
		features.ReturnSampleFromBars(benBars),
	)
	res.Symbol = symbol
	res.Benchmark = a.benchmark
	return res, nil
}

// MarketCondition classifies the benchmark from its daily series.
func (a *MarketAnalyzerUseCase) MarketCondition(ctx context.Context) (models.TrendState, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "analyze.trend", trace.WithAttributes(attribute.String("benchmark", a.benchmark)))
	defer span.End()
	defer a.observe("market_condition", time.Now())

	to := a.now()
	from := to.AddDate(0, 0, -a.trendLookback)
	bars, err := a.source.History(ctx, a.benchmark, from, to, domrepo.Interval1d)
	if err != nil {
		a.metrics.RecordError("benchmark")
		return models.TrendState{}, fmt.Errorf("history %s: %w", a.benchmark, err)
	}

	state := analytics.ClassifyTrend(features.Candles(bars))
	state.Benchmark = a.benchmark
	if state.Price != nil {
		a.metrics.RecordLastPrice(a.benchmark, *state.Price)
	}
	a.logger.Debug("market condition",
		applogger.String("benchmark", a.benchmark),
		applogger.String("condition", string(state.Condition)),
		applogger.Int("distribution_days", state.DistributionDays),
	)
	return state, nil
}

// History returns candles for the range ending now with SMA overlays.
func (a *MarketAnalyzerUseCase) History(ctx context.Context, symbol string, interval domrepo.Interval, rng domrepo.Range) (models.HistoryResult, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.HistoryResult{}, fmt.Errorf("symbol required")
	}
	if !domrepo.IsValidInterval(interval) {
		return models.HistoryResult{}, fmt.Errorf("unsupported interval %q", interval)
	}
	rng = domrepo.NormalizeRange(string(rng))

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	defer a.observe("history", time.Now())

	to := a.now()
	bars, err := a.source.History(ctx, symbol, rng.Start(to), to, interval)
	if err != nil {
		a.metrics.RecordError("history")
		return models.HistoryResult{}, fmt.Errorf("history %s: %w", symbol, err)
	}

	candles := features.Candles(bars)
	return models.HistoryResult{
		Symbol:   symbol,
		Interval: string(interval),
		Range:    string(rng),
		Candles:  candles,
		SMA50:    features.SMASeries(candles, analytics.ShortSMAPeriod),
		SMA200:   features.SMASeries(candles, analytics.LongSMAPeriod),
	}, nil
}

// Snapshot merges the quote with fundamentals. The quote is required;
// fundamentals are best effort.
func (a *MarketAnalyzerUseCase) Snapshot(ctx context.Context, symbol string) (models.InstrumentSnapshot, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.InstrumentSnapshot{}, fmt.Errorf("symbol required")
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	defer a.observe("snapshot", time.Now())

	var (
		wg           sync.WaitGroup
		quote        models.Quote
		fundamentals models.Fundamentals
		qErr, fErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		quote, qErr = a.source.Quote(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		fundamentals, fErr = a.source.Fundamentals(ctx, symbol)
	}()
	wg.Wait()

	if qErr != nil {
		a.metrics.RecordError("quote")
		return models.InstrumentSnapshot{}, fmt.Errorf("quote %s: %w", symbol, qErr)
	}
	if fErr != nil {
		a.metrics.RecordError("fundamentals")
		a.logger.Warn("fundamentals unavailable",
			applogger.Symbol(symbol),
			applogger.Error(fErr),
		)
		fundamentals = models.Fundamentals{}
	}
	return features.MergeSnapshot(symbol, quote, fundamentals), nil
}

// News returns the latest headlines for symbol.
func (a *MarketAnalyzerUseCase) News(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	defer a.observe("news", time.Now())

	items, err := a.source.News(ctx, symbol, a.newsLimit)
	if err != nil {
		a.metrics.RecordError("news")
		return nil, fmt.Errorf("news %s: %w", symbol, err)
	}
	if len(items) > a.newsLimit {
		items = items[:a.newsLimit]
	}
	return items, nil
}

func (a *MarketAnalyzerUseCase) observe(op string, start time.Time) {
	a.metrics.RecordLatency(op, time.Since(start).Seconds())
}
