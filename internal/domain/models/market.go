package models

import "time"

// Bar is one upstream OHLCV sample. The provider sends null for sessions it
// has no print for, so every numeric field is optional.
type Bar struct {
	Time   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *float64
}

// Candle is a Bar with open and close present.
type Candle struct {
	Time   time.Time `json:"-"`
	Unix   int64     `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// ReturnPoint is a (time, close) pair.
type ReturnPoint struct {
	Time  time.Time
	Close float64
}

// ReturnSample is an ascending close-only series. Entries without a close are
// dropped when the sample is built.
type ReturnSample []ReturnPoint

// Quote is the provider's current snapshot for one symbol.
type Quote struct {
	Symbol           string
	Name             string
	Price            *float64
	Change           *float64
	ChangePercent    *float64
	Volume           *float64
	AverageVolume    *float64
	FiftyTwoWeekHigh *float64
	FiftyTwoWeekLow  *float64
}

// Fundamentals holds the quoteSummary fields used by the screen.
type Fundamentals struct {
	CurrentPrice     *float64
	FiftyTwoWeekHigh *float64
	FiftyTwoWeekLow  *float64
	AverageVolume    *float64
	Volume           *float64
	ForwardPE        *float64
	EarningsGrowth   *float64
	RevenueGrowth    *float64
	OperatingMargin  *float64
}

// InstrumentSnapshot is one instrument's point-in-time view. Nil means the
// provider did not supply the value.
type InstrumentSnapshot struct {
	Symbol           string   `json:"ticker"`
	Name             string   `json:"company"`
	Price            *float64 `json:"price"`
	Change           *float64 `json:"change"`
	ChangePercent    *float64 `json:"changePercent"`
	Volume           *float64 `json:"volume"`
	AverageVolume    *float64 `json:"avgVolume"`
	FiftyTwoWeekHigh *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow  *float64 `json:"fiftyTwoWeekLow"`
	ForwardPE        *float64 `json:"forwardPE"`
	EPSGrowth        *float64 `json:"epsGrowth"`
	RevenueGrowth    *float64 `json:"revenueGrowth"`
	OperatingMargin  *float64 `json:"operatingMargin"`
}

// NewsItem is a single headline.
type NewsItem struct {
	Title       string  `json:"title"`
	Publisher   string  `json:"publisher"`
	Link        string  `json:"link"`
	PublishedAt int64   `json:"publishedAt"`
	Thumbnail   *string `json:"thumbnail"`
}
