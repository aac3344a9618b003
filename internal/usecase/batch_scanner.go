package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
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

// BatchScanner fans out one fetch-and-score task per symbol and waits for all
// of them. Rows come back in input order and a failed symbol still gets a row.
type BatchScanner struct {
	source  domrepo.QuoteSource
	metrics domrepo.Metrics
	logger  *applogger.Logger

	benchmark      string
	universe       []string
	stage          int
	taskTimeout    time.Duration
	maxConcurrency int
	now            func() time.Time
}

var _ service.Scanner = (*BatchScanner)(nil)

type ScannerOption func(*BatchScanner)

func WithBenchmark(symbol string) ScannerOption {
	return func(s *BatchScanner) {
		if sym := util.NormalizeSymbol(symbol); sym != "" {
			s.benchmark = sym
		}
	}
}

func WithUniverse(symbols []string) ScannerOption {
	return func(s *BatchScanner) { s.universe = util.NormalizeSymbols(symbols) }
}

func WithStage(stage int) ScannerOption {
	return func(s *BatchScanner) { s.stage = stage }
}

// WithTaskTimeout bounds each per-symbol task. Expiry yields a fallback row.
func WithTaskTimeout(d time.Duration) ScannerOption {
	return func(s *BatchScanner) {
		if d > 0 {
			s.taskTimeout = d
		}
	}
}

// WithMaxConcurrency caps in-flight symbol tasks. Zero means one per symbol.
func WithMaxConcurrency(n int) ScannerOption {
	return func(s *BatchScanner) { s.maxConcurrency = n }
}

func WithScannerClock(now func() time.Time) ScannerOption {
	return func(s *BatchScanner) { s.now = now }
}

func NewBatchScanner(source domrepo.QuoteSource, metrics domrepo.Metrics, logger *applogger.Logger, opts ...ScannerOption) *BatchScanner {
	s := &BatchScanner{
		source:      source,
		metrics:     metrics,
		logger:      logger,
		benchmark:   "SPY",
		stage:       2,
		taskTimeout: 20 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = nopMetrics{}
	}
	if s.logger == nil {
		s.logger = applogger.Nop()
	}
	return s
}

func (s *BatchScanner) Benchmark() string { return s.benchmark }

// RunBatch scans the configured universe.
func (s *BatchScanner) RunBatch(ctx context.Context) models.ScanBatch {
	rows := s.Scan(ctx, s.universe)
	return models.ScanBatch{
		ID:          uuid.NewString(),
		Benchmark:   s.benchmark,
		GeneratedAt: s.now().UTC(),
		Rows:        rows,
	}
}

// Scan returns exactly one row per input symbol, in input order.
func (s *BatchScanner) Scan(ctx context.Context, universe []string) []models.ScanRow {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "scan.batch", trace.WithAttributes(
		attribute.String("benchmark", s.benchmark),
		attribute.Int("symbols", len(universe)),
	))
	defer span.End()

	from, to := s.window()
	benchReturn := s.benchmarkReturn(ctx, from, to)
	if benchReturn == nil {
		span.AddEvent("benchmark return unavailable")
	}

	limit := s.maxConcurrency
	if limit <= 0 || limit > len(universe) {
		limit = len(universe)
	}
	sem := make(chan struct{}, max(limit, 1))

	rows := make([]models.ScanRow, len(universe))
	var wg sync.WaitGroup
	for i, raw := range universe {
		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			rows[i] = s.scanTask(ctx, symbol, benchReturn, from, to)
		}(i, util.NormalizeSymbol(raw))
	}
	wg.Wait()

	failed := 0
	for _, r := range rows {
		if r.Error != "" {
			failed++
		}
	}
	span.SetAttributes(attribute.Int("failed", failed))
	s.metrics.RecordLatency("scan_batch", time.Since(start).Seconds())
	s.logger.Info("scan batch complete",
		applogger.String("benchmark", s.benchmark),
		applogger.Int("rows", len(rows)),
		applogger.Int("failed", failed),
		applogger.Duration("elapsed", time.Since(start)),
	)
	return rows
}

// ScanSymbol scores one symbol and reports the failure instead of masking it.
func (s *BatchScanner) ScanSymbol(ctx context.Context, symbol string) (models.ScanRow, error) {
	symbol = util.NormalizeSymbol(symbol)
	if symbol == "" {
		return models.ScanRow{}, fmt.Errorf("symbol required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()

	from, to := s.window()
	benchReturn := s.benchmarkReturn(ctx, from, to)
	return s.fetchAndScore(ctx, symbol, benchReturn, from, to)
}

// window is the trailing year the weekly return samples cover.
func (s *BatchScanner) window() (time.Time, time.Time) {
	to := s.now()
	return to.AddDate(-1, 0, 0), to
}

// benchmarkReturn is bounded by the same timeout as a symbol task.
func (s *BatchScanner) benchmarkReturn(ctx context.Context, from, to time.Time) *float64 {
	ctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()
	bars, err := s.source.History(ctx, s.benchmark, from, to, domrepo.Interval1wk)
	if err != nil {
		s.metrics.RecordError("benchmark")
		s.logger.Warn("benchmark fetch failed",
			applogger.String("benchmark", s.benchmark),
			applogger.Error(err),
		)
		return nil
	}
	r, ok := features.PercentReturn(features.ReturnSampleFromBars(bars))
	if !ok {
		s.logger.Warn("benchmark series too short", applogger.String("benchmark", s.benchmark))
		return nil
	}
	return &r
}

func (s *BatchScanner) scanTask(ctx context.Context, symbol string, benchReturn *float64, from, to time.Time) (row models.ScanRow) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.taskTimeout)
	defer cancel()
	ctx, span := tracing.StartSpan(ctx, "scan.symbol", trace.WithAttributes(attribute.String("symbol", symbol)))
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic: %v", p)
			s.metrics.RecordError("panic")
			row = s.fail(span, symbol, err)
		}
		s.metrics.RecordLatency("scan_symbol", time.Since(start).Seconds())
	}()

	r, err := s.fetchAndScore(ctx, symbol, benchReturn, from, to)
	if err != nil {
		return s.fail(span, symbol, err)
	}
	s.metrics.RecordScanOutcome(symbol, true)
	if r.Price != nil {
		s.metrics.RecordLastPrice(symbol, *r.Price)
	}
	return r
}

func (s *BatchScanner) fail(span trace.Span, symbol string, err error) models.ScanRow {
	span.RecordError(err)
	span.SetStatus(codes.Error, "symbol scan failed")
	s.metrics.RecordScanOutcome(symbol, false)
	s.logger.Warn("symbol scan failed",
		applogger.Symbol(symbol),
		applogger.Error(err),
	)
	return fallbackRow(symbol, s.stage, err)
}

// fetchAndScore issues the quote, fundamentals and weekly history calls
// concurrently. Any failed call fails the symbol.
func (s *BatchScanner) fetchAndScore(ctx context.Context, symbol string, benchReturn *float64, from, to time.Time) (models.ScanRow, error) {
	var (
		wg           sync.WaitGroup
		quote        models.Quote
		fundamentals models.Fundamentals
		bars         []models.Bar
		errs         [3]error
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		defer recoverInto(&errs[0])
		quote, errs[0] = s.source.Quote(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		defer recoverInto(&errs[1])
		fundamentals, errs[1] = s.source.Fundamentals(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		defer recoverInto(&errs[2])
		bars, errs[2] = s.source.History(ctx, symbol, from, to, domrepo.Interval1wk)
	}()
	wg.Wait()

	for i, kind := range [3]string{"quote", "fundamentals", "history"} {
		if errs[i] != nil {
			s.metrics.RecordError(kind)
		}
	}
	if err := errors.Join(errs[:]...); err != nil {
		return models.ScanRow{}, err
	}

	snap := features.MergeSnapshot(symbol, quote, fundamentals)
	rs, _ := analytics.RatingAgainst(features.ReturnSampleFromBars(bars), benchReturn)
	return buildRow(snap, rs, analytics.Evaluate(snap, rs), s.stage), nil
}

// recoverInto turns a panic in a fetch goroutine into that call's error.
func recoverInto(err *error) {
	if p := recover(); p != nil {
		*err = fmt.Errorf("panic: %v", p)
	}
}

func buildRow(snap models.InstrumentSnapshot, rs *int, screen models.ScreenResult, stage int) models.ScanRow {
	return models.ScanRow{
		InstrumentSnapshot: snap,
		RSRating:           rs,
		WeekHighPercent:    features.WeekHighPercent(snap),
		VolumeRatio:        features.VolumeRatio(snap),
		Stage:              stage,
		Grade:              screen.Grade(),
		ScreenResult:       screen,
	}
}

// fallbackRow keeps the symbol and stage; every optional field stays nil and
// the screen result is zero.
func fallbackRow(symbol string, stage int, err error) models.ScanRow {
	r := models.ScanRow{Stage: stage}
	r.Symbol = symbol
	r.Grade = r.ScreenResult.Grade()
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

type nopMetrics struct{}

func (nopMetrics) RecordScanOutcome(string, bool)  {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordLastPrice(string, float64) {}
func (nopMetrics) RecordLatency(string, float64)   {}
