package models

// RSResult is a relative-strength rating with the two returns behind it.
type RSResult struct {
	Symbol           string   `json:"symbol,omitempty"`
	Benchmark        string   `json:"benchmark,omitempty"`
	Rating           *int     `json:"rs"`
	InstrumentReturn *float64 `json:"tickerReturn"`
	BenchmarkReturn  *float64 `json:"benchmarkReturn"`
}

type CheckStatus string

const (
	CheckPass CheckStatus = "pass"
	CheckFail CheckStatus = "fail"
	CheckNA   CheckStatus = "n/a"
)

// CheckResult is the outcome of one screen criterion.
type CheckResult struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Status CheckStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// ScreenResult is a proportional pass count. Max counts only the criteria that
// had all of their inputs.
type ScreenResult struct {
	Passed int           `json:"setupPassed"`
	Max    int           `json:"setupMax"`
	Ratio  float64       `json:"setupScore"`
	Checks []CheckResult `json:"checks,omitempty"`
}

// Grade maps the ratio onto A-D.
func (s ScreenResult) Grade() string {
	switch {
	case s.Ratio >= 0.875:
		return "A"
	case s.Ratio >= 0.625:
		return "B"
	case s.Ratio >= 0.375:
		return "C"
	default:
		return "D"
	}
}

// MarketCondition labels the benchmark trend.
type MarketCondition string

const (
	ConditionConfirmedUptrend     MarketCondition = "CONFIRMED_UPTREND"
	ConditionUptrendUnderPressure MarketCondition = "UPTREND_UNDER_PRESSURE"
	ConditionInCorrection         MarketCondition = "MARKET_IN_CORRECTION"
	ConditionInsufficientData     MarketCondition = "INSUFFICIENT_DATA"
)

// TrendState is the benchmark classification for one cycle.
type TrendState struct {
	Benchmark        string          `json:"benchmark,omitempty"`
	Condition        MarketCondition `json:"condition"`
	Price            *float64        `json:"price"`
	SMA50            *float64        `json:"sma50"`
	SMA200           *float64        `json:"sma200"`
	PctFromSMA50     *float64        `json:"pctFromSma50"`
	PctFromSMA200    *float64        `json:"pctFromSma200"`
	Deviation50      string          `json:"deviation50,omitempty"`
	Deviation200     string          `json:"deviation200,omitempty"`
	DistributionDays int             `json:"distributionDays"`
}
