package models

import "time"

// ScanRow is the per-instrument unit of a batch. A row whose fetch failed keeps
// its symbol and stage, has every optional field nil and carries Error.
type ScanRow struct {
	InstrumentSnapshot
	RSRating        *int     `json:"rsRating"`
	WeekHighPercent *float64 `json:"weekHighPercent"`
	VolumeRatio     *float64 `json:"volumeRatio"`
	Stage           int      `json:"stage"`
	Grade           string   `json:"grade"`
	ScreenResult
	Error string `json:"error,omitempty"`
}

// ScanBatch is one completed scan of the universe.
type ScanBatch struct {
	ID          string    `json:"id"`
	Benchmark   string    `json:"benchmark"`
	GeneratedAt time.Time `json:"generatedAt"`
	Rows        []ScanRow `json:"rows"`
}

// ScanSummary counts rows of an unfiltered batch.
type ScanSummary struct {
	Total        int `json:"total"`
	Stage2       int `json:"stage2"`
	HighPassRows int `json:"score7"`
}

// ScanView is what the scanner endpoint returns.
type ScanView struct {
	ID          string      `json:"id"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Summary     ScanSummary `json:"summary"`
	Rows        []ScanRow   `json:"rows"`
}

// HistoryResult is a candle series with moving-average overlays aligned to it.
type HistoryResult struct {
	Symbol   string     `json:"symbol"`
	Interval string     `json:"interval"`
	Range    string     `json:"range"`
	Candles  []Candle   `json:"candles"`
	SMA50    []*float64 `json:"sma50"`
	SMA200   []*float64 `json:"sma200"`
}

// PositionSize is the output of the sizing calculator.
type PositionSize struct {
	Shares        int64    `json:"shares"`
	RiskDollars   float64  `json:"riskDollars"`
	RiskPerShare  float64  `json:"riskPerShare"`
	PositionValue float64  `json:"positionValue"`
	StopPrice     float64  `json:"stopPrice"`
	RiskReward    *float64 `json:"riskReward"`
	RewardAmount  *float64 `json:"rewardAmount"`
}

// MarketSession labels the US regular session relative to now.
type MarketSession string

const (
	SessionOpen      MarketSession = "OPEN"
	SessionPreMarket MarketSession = "PRE_MARKET"
	SessionClosed    MarketSession = "CLOSED"
)
