package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingArrow/internal/domain/models"
	icache "SwingArrow/internal/service/cache"
)

type stubScanner struct {
	mu    sync.Mutex
	calls int
}

func (s *stubScanner) Scan(context.Context, []string) []models.ScanRow { return nil }

func (s *stubScanner) RunBatch(context.Context) models.ScanBatch {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	var r models.ScanRow
	r.Symbol = "NVDA"
	return models.ScanBatch{ID: "batch-1", Benchmark: "SPY", GeneratedAt: fixedNow, Rows: []models.ScanRow{r}}
}

func (s *stubScanner) ScanSymbol(context.Context, string) (models.ScanRow, error) {
	return models.ScanRow{}, nil
}

func (s *stubScanner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubAnalyzer struct {
	MarketAnalyzerUseCase
	err error
}

func (a *stubAnalyzer) MarketCondition(context.Context) (models.TrendState, error) {
	if a.err != nil {
		return models.TrendState{}, a.err
	}
	return models.TrendState{Benchmark: "SPY", Condition: models.ConditionConfirmedUptrend}, nil
}

type stubPublisher struct {
	scans  []models.ScanBatch
	trends []models.TrendState
	err    error
}

func (p *stubPublisher) PublishScan(_ context.Context, b models.ScanBatch) error {
	p.scans = append(p.scans, b)
	return p.err
}

func (p *stubPublisher) PublishTrend(_ context.Context, s models.TrendState) error {
	p.trends = append(p.trends, s)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func TestRefresherRunOnce(t *testing.T) {
	sc := &stubScanner{}
	cache := icache.NewTTLCache()
	pub := &stubPublisher{}
	r := NewRefresher(sc, &stubAnalyzer{}, cache, pub, nil,
		WithMarketHoursOnly(true),
		WithRefresherClock(func() time.Time { return fixedNow }),
	)

	require.NoError(t, r.RunOnce(context.Background()))

	b, ok, err := cache.GetBytes(ScannerCacheKey)
	require.NoError(t, err)
	require.True(t, ok)
	var batch models.ScanBatch
	require.NoError(t, json.Unmarshal(b, &batch))
	assert.Equal(t, "batch-1", batch.ID)

	latest, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, "batch-1", latest.ID)

	require.Len(t, pub.scans, 1)
	require.Len(t, pub.trends, 1)
	assert.Equal(t, models.ConditionConfirmedUptrend, pub.trends[0].Condition)
}

func TestRefresherSkipsOutsideMarketHours(t *testing.T) {
	sc := &stubScanner{}
	saturday := time.Date(2024, 6, 8, 15, 0, 0, 0, time.UTC)
	r := NewRefresher(sc, nil, icache.NewTTLCache(), nil, nil,
		WithMarketHoursOnly(true),
		WithRefresherClock(func() time.Time { return saturday }),
	)

	require.NoError(t, r.RunOnce(context.Background()))
	assert.Equal(t, 0, sc.Calls())
	_, ok := r.Latest()
	assert.False(t, ok)
}

func TestRefresherCollectsSinkErrors(t *testing.T) {
	sc := &stubScanner{}
	cache := icache.NewTTLCache()
	pub := &stubPublisher{err: errors.New("broker down")}
	r := NewRefresher(sc, &stubAnalyzer{err: errUpstream}, cache, pub, nil)

	err := r.RunOnce(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errUpstream)

	// The batch is still cached when the sink fails.
	_, ok, _ := cache.GetBytes(ScannerCacheKey)
	assert.True(t, ok)
}

func TestRefresherSchedule(t *testing.T) {
	sc := &stubScanner{}
	r := NewRefresher(sc, nil, icache.NewTTLCache(), nil, nil, WithSchedule("@every 1s"))

	require.NoError(t, r.Start())
	assert.Error(t, r.Start())

	require.Eventually(t, func() bool { return sc.Calls() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Stop(ctx))
	require.NoError(t, r.Stop(ctx))
}

func TestRefresherBadSchedule(t *testing.T) {
	r := NewRefresher(&stubScanner{}, nil, nil, nil, nil, WithSchedule("every now and then"))
	assert.Error(t, r.Start())
}
