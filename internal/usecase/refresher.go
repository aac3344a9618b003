package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"SwingArrow/internal/domain/models"
	domrepo "SwingArrow/internal/domain/repository"
	"SwingArrow/internal/domain/service"
	icache "SwingArrow/internal/service/cache"
	"SwingArrow/internal/services/features"
	applogger "SwingArrow/pkg/logger"
)

// ScannerCacheKey holds the latest encoded ScanBatch.
const ScannerCacheKey = "scanner:batch"

// Refresher re-scans the universe on a cron schedule and hands each batch to
// the response cache and the event sink.
type Refresher struct {
	scanner   service.Scanner
	analyzer  service.MarketAnalyzer
	cache     icache.BytesCache
	publisher domrepo.ScanPublisher
	logger    *applogger.Logger

	schedule        string
	ttl             time.Duration
	marketHoursOnly bool
	now             func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	latest  *models.ScanBatch
	running bool
}

type RefresherOption func(*Refresher)

func WithSchedule(schedule string) RefresherOption {
	return func(r *Refresher) {
		if schedule != "" {
			r.schedule = schedule
		}
	}
}

func WithMarketHoursOnly(only bool) RefresherOption {
	return func(r *Refresher) { r.marketHoursOnly = only }
}

func WithBatchTTL(ttl time.Duration) RefresherOption {
	return func(r *Refresher) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithRefresherClock(now func() time.Time) RefresherOption {
	return func(r *Refresher) { r.now = now }
}

// NewRefresher wires a refresher. publisher may be nil when no event sink is
// configured.
func NewRefresher(scanner service.Scanner, analyzer service.MarketAnalyzer, cache icache.BytesCache, publisher domrepo.ScanPublisher, logger *applogger.Logger, opts ...RefresherOption) *Refresher {
	r := &Refresher{
		scanner:   scanner,
		analyzer:  analyzer,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
		schedule:  "@every 60s",
		ttl:       60 * time.Second,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = applogger.Nop()
	}
	return r
}

// Start registers the job and starts the scheduler. Overlapping runs are
// skipped.
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("refresher already running")
	}

	cl := cronLogger{r.logger}
	c := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	if _, err := c.AddFunc(r.schedule, func() {
		if err := r.RunOnce(context.Background()); err != nil {
			r.logger.Error("refresh failed", applogger.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("add refresh job %q: %w", r.schedule, err)
	}
	c.Start()
	r.cron = c
	r.running = true
	r.logger.Info("refresher started",
		applogger.String("schedule", r.schedule),
		applogger.Bool("market_hours_only", r.marketHoursOnly),
	)
	return nil
}

// Stop halts the scheduler and waits for a running job until ctx expires.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.running = false
	r.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		r.logger.Info("refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one refresh cycle. Outside market hours it is a no-op when
// the refresher is gated to the regular session.
func (r *Refresher) RunOnce(ctx context.Context) error {
	if r.marketHoursOnly && !features.IsMarketOpen(r.now()) {
		r.logger.Debug("refresh skipped outside market hours")
		return nil
	}

	batch := r.scanner.RunBatch(ctx)
	r.mu.Lock()
	r.latest = &batch
	r.mu.Unlock()

	var errs []error
	if r.cache != nil {
		b, err := json.Marshal(batch)
		if err != nil {
			return fmt.Errorf("encode batch: %w", err)
		}
		if err := r.cache.SetBytes(ScannerCacheKey, b, r.ttl); err != nil {
			errs = append(errs, fmt.Errorf("cache batch: %w", err))
		}
	}

	if r.publisher != nil {
		if err := r.publisher.PublishScan(ctx, batch); err != nil {
			errs = append(errs, fmt.Errorf("publish scan: %w", err))
		}
		if r.analyzer != nil {
			state, err := r.analyzer.MarketCondition(ctx)
			if err != nil {
				errs = append(errs, fmt.Errorf("market condition: %w", err))
			} else if err := r.publisher.PublishTrend(ctx, state); err != nil {
				errs = append(errs, fmt.Errorf("publish trend: %w", err))
			}
		}
	}

	r.logger.Info("refresh complete",
		applogger.String("batch_id", batch.ID),
		applogger.Int("rows", len(batch.Rows)),
		applogger.Int("errors", len(errs)),
	)
	if len(errs) > 0 {
		return fmt.Errorf("refresh %s: %w", batch.ID, errors.Join(errs...))
	}
	return nil
}

// Latest returns the most recent batch produced by this refresher.
func (r *Refresher) Latest() (models.ScanBatch, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.latest == nil {
		return models.ScanBatch{}, false
	}
	return *r.latest, true
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct {
	l *applogger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron "+msg, applogger.Any("kv", keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron "+msg, applogger.Error(err), applogger.Any("kv", keysAndValues))
}
