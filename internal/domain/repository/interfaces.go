package repository

import (
	"context"
	"errors"
	"time"

	"SwingArrow/internal/domain/models"
)

// ErrNotFound is returned (wrapped) by a QuoteSource for unknown symbols.
var ErrNotFound = errors.New("symbol not found")

// QuoteSource is the upstream market-data provider. Every call may fail
// independently.
type QuoteSource interface {
	Quote(ctx context.Context, symbol string) (models.Quote, error)
	Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error)
	History(ctx context.Context, symbol string, from, to time.Time, interval Interval) ([]models.Bar, error)
	News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// ScanPublisher forwards finished batches to an event sink.
type ScanPublisher interface {
	PublishScan(ctx context.Context, batch models.ScanBatch) error
	PublishTrend(ctx context.Context, state models.TrendState) error
	Close() error
}

type Metrics interface {
	RecordScanOutcome(symbol string, ok bool)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
