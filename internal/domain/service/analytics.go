package service

import (
	"context"

	"SwingArrow/internal/domain/models"
	domrepo "SwingArrow/internal/domain/repository"
)

// Scanner scores a universe of instruments. Scan never fails as a whole; a
// symbol that cannot be scored yields a fallback row at its position.
type Scanner interface {
	Scan(ctx context.Context, universe []string) []models.ScanRow
	RunBatch(ctx context.Context) models.ScanBatch
	ScanSymbol(ctx context.Context, symbol string) (models.ScanRow, error)
}

// MarketAnalyzer serves the single-instrument and benchmark views.
type MarketAnalyzer interface {
	RelativeStrength(ctx context.Context, symbol string) (models.RSResult, error)
	MarketCondition(ctx context.Context) (models.TrendState, error)
	History(ctx context.Context, symbol string, interval domrepo.Interval, rng domrepo.Range) (models.HistoryResult, error)
	Snapshot(ctx context.Context, symbol string) (models.InstrumentSnapshot, error)
	News(ctx context.Context, symbol string) ([]models.NewsItem, error)
}
