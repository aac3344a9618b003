package analytics

import (
	"SwingArrow/internal/domain/models"
	"SwingArrow/internal/services/features"
)

const (
	ShortSMAPeriod        = 50
	LongSMAPeriod         = 200
	DistributionDayWindow = 25
	MinTrendSessions      = LongSMAPeriod
)

// ClassifyTrend labels the benchmark from its daily candles. Fewer than 200
// sessions yields INSUFFICIENT_DATA with every derived field empty.
func ClassifyTrend(candles []models.Candle) models.TrendState {
	if len(candles) < MinTrendSessions {
		return models.TrendState{Condition: models.ConditionInsufficientData}
	}

	closes := features.Closes(candles)
	price := closes[len(closes)-1]
	sma50, _ := features.SMA(closes, ShortSMAPeriod)
	sma200, _ := features.SMA(closes, LongSMAPeriod)

	st := models.TrendState{
		Price:            &price,
		SMA50:            &sma50,
		SMA200:           &sma200,
		DistributionDays: features.DistributionDays(candles, DistributionDayWindow),
	}

	switch {
	case price > sma50 && price > sma200 && sma50 > sma200:
		st.Condition = models.ConditionConfirmedUptrend
	case price < sma50 && price > sma200:
		st.Condition = models.ConditionUptrendUnderPressure
	default:
		st.Condition = models.ConditionInCorrection
	}

	if sma50 != 0 {
		d := features.PercentFrom(price, sma50)
		st.PctFromSMA50 = &d
		st.Deviation50 = features.FormatSignedPercent(d)
	}
	if sma200 != 0 {
		d := features.PercentFrom(price, sma200)
		st.PctFromSMA200 = &d
		st.Deviation200 = features.FormatSignedPercent(d)
	}
	return st
}
