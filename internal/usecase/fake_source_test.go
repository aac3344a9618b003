package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"SwingArrow/internal/domain/models"
	domrepo "SwingArrow/internal/domain/repository"
	"SwingArrow/pkg/util"
)

var errUpstream = errors.New("upstream unavailable")

type historyCall struct {
	symbol   string
	interval domrepo.Interval
	from, to time.Time
}

// fakeSource serves canned data per symbol. Unknown symbols fail every call.
type fakeSource struct {
	mu sync.Mutex

	quotes       map[string]models.Quote
	fundamentals map[string]models.Fundamentals
	history      map[string][]models.Bar
	news         map[string][]models.NewsItem

	failQuote        map[string]bool
	failFundamentals map[string]bool
	failHistory      map[string]bool
	panicQuote       map[string]bool
	delay            map[string]time.Duration

	historyCalls []historyCall
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		quotes:           map[string]models.Quote{},
		fundamentals:     map[string]models.Fundamentals{},
		history:          map[string][]models.Bar{},
		news:             map[string][]models.NewsItem{},
		failQuote:        map[string]bool{},
		failFundamentals: map[string]bool{},
		failHistory:      map[string]bool{},
		panicQuote:       map[string]bool{},
		delay:            map[string]time.Duration{},
	}
}

func (f *fakeSource) wait(ctx context.Context, symbol string) error {
	f.mu.Lock()
	d := f.delay[symbol]
	f.mu.Unlock()
	if d == 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeSource) Quote(ctx context.Context, symbol string) (models.Quote, error) {
	if err := f.wait(ctx, symbol); err != nil {
		return models.Quote{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicQuote[symbol] {
		panic("quote decoder blew up")
	}
	q, ok := f.quotes[symbol]
	if !ok || f.failQuote[symbol] {
		return models.Quote{}, errUpstream
	}
	return q, nil
}

func (f *fakeSource) Fundamentals(ctx context.Context, symbol string) (models.Fundamentals, error) {
	if err := f.wait(ctx, symbol); err != nil {
		return models.Fundamentals{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.fundamentals[symbol]
	if !ok || f.failFundamentals[symbol] {
		return models.Fundamentals{}, errUpstream
	}
	return v, nil
}

func (f *fakeSource) History(ctx context.Context, symbol string, from, to time.Time, interval domrepo.Interval) ([]models.Bar, error) {
	if err := f.wait(ctx, symbol); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyCalls = append(f.historyCalls, historyCall{symbol: symbol, interval: interval, from: from, to: to})
	v, ok := f.history[symbol]
	if !ok || f.failHistory[symbol] {
		return nil, errUpstream
	}
	return v, nil
}

func (f *fakeSource) News(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.news[symbol]
	if !ok {
		return nil, errUpstream
	}
	return v, nil
}

// addInstrument registers a fully populated symbol whose weekly closes go from
// first to last.
func (f *fakeSource) addInstrument(symbol string, first, last float64) {
	f.quotes[symbol] = models.Quote{
		Symbol:           symbol,
		Name:             symbol + " Inc",
		Price:            util.Ptr(last),
		Volume:           util.Ptr(2_000_000.0),
		AverageVolume:    util.Ptr(1_000_000.0),
		FiftyTwoWeekHigh: util.Ptr(last * 1.05),
		FiftyTwoWeekLow:  util.Ptr(first * 0.9),
	}
	f.fundamentals[symbol] = models.Fundamentals{
		EarningsGrowth:  util.Ptr(0.40),
		RevenueGrowth:   util.Ptr(0.30),
		OperatingMargin: util.Ptr(0.25),
		ForwardPE:       util.Ptr(30.0),
	}
	f.history[symbol] = weeklyBars(first, last)
}

func weeklyBars(first, last float64) []models.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []models.Bar{
		{Time: start, Open: util.Ptr(first), Close: util.Ptr(first)},
		{Time: start.AddDate(0, 0, 7), Close: nil},
		{Time: start.AddDate(0, 0, 14), Open: util.Ptr(last), Close: util.Ptr(last)},
	}
}

// dailyBars builds n sessions of steadily rising closes with flat volume.
func dailyBars(n int, start, step float64) []models.Bar {
	t0 := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, n)
	for i := range bars {
		c := start + float64(i)*step
		bars[i] = models.Bar{
			Time:   t0.AddDate(0, 0, i),
			Open:   util.Ptr(c - step/2),
			High:   util.Ptr(c + 1),
			Low:    util.Ptr(c - 1),
			Close:  util.Ptr(c),
			Volume: util.Ptr(1000.0),
		}
	}
	return bars
}

type recordingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]bool
	errors   map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{outcomes: map[string]bool{}, errors: map[string]int{}}
}

func (m *recordingMetrics) RecordScanOutcome(symbol string, ok bool) {
	m.mu.Lock()
	m.outcomes[symbol] = ok
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *recordingMetrics) RecordLastPrice(string, float64) {}
func (m *recordingMetrics) RecordLatency(string, float64)   {}
