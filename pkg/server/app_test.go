package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingArrow/internal/domain/models"
	icache "SwingArrow/internal/service/cache"
	"SwingArrow/internal/usecase"
	"SwingArrow/pkg/config"
)

type closingPublisher struct {
	closed bool
}

func (p *closingPublisher) PublishScan(context.Context, models.ScanBatch) error   { return nil }
func (p *closingPublisher) PublishTrend(context.Context, models.TrendState) error { return nil }
func (p *closingPublisher) Close() error {
	p.closed = true
	return nil
}

type emptyScanner struct{}

func (emptyScanner) Scan(context.Context, []string) []models.ScanRow { return nil }
func (emptyScanner) RunBatch(context.Context) models.ScanBatch      { return models.ScanBatch{ID: "x"} }
func (emptyScanner) ScanSymbol(context.Context, string) (models.ScanRow, error) {
	return models.ScanRow{}, nil
}

func testConfig() *config.Config {
	cfg := &config.Config{Environment: "test"}
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = time.Second
	return cfg
}

func TestRunContextShutsDownCleanly(t *testing.T) {
	pub := &closingPublisher{}
	cache := icache.NewTTLCache()
	ref := usecase.NewRefresher(emptyScanner{}, nil, cache, pub, nil, usecase.WithSchedule("@every 1h"))
	app := New(testConfig(), nil, nil, ref, pub, cache, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, app.RunContext(ctx))
	assert.True(t, pub.closed)
}

func TestRunContextRejectsBadSchedule(t *testing.T) {
	ref := usecase.NewRefresher(emptyScanner{}, nil, nil, nil, nil, usecase.WithSchedule("not a schedule"))
	app := New(testConfig(), nil, nil, ref, nil, nil, nil)

	assert.Error(t, app.RunContext(context.Background()))
}
