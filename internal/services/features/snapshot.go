package features

import "SwingArrow/internal/domain/models"

// MergeSnapshot builds an InstrumentSnapshot from the quote and fundamentals
// calls. Price prefers the live quote; range and volume prefer fundamentals.
func MergeSnapshot(symbol string, q models.Quote, f models.Fundamentals) models.InstrumentSnapshot {
	s := models.InstrumentSnapshot{
		Symbol:           symbol,
		Name:             q.Name,
		Price:            firstOf(q.Price, f.CurrentPrice),
		Change:           q.Change,
		ChangePercent:    q.ChangePercent,
		Volume:           firstOf(f.Volume, q.Volume),
		AverageVolume:    firstOf(f.AverageVolume, q.AverageVolume),
		FiftyTwoWeekHigh: firstOf(f.FiftyTwoWeekHigh, q.FiftyTwoWeekHigh),
		FiftyTwoWeekLow:  firstOf(f.FiftyTwoWeekLow, q.FiftyTwoWeekLow),
		ForwardPE:        f.ForwardPE,
		EPSGrowth:        f.EarningsGrowth,
		RevenueGrowth:    f.RevenueGrowth,
		OperatingMargin:  f.OperatingMargin,
	}
	if s.Name == "" {
		s.Name = symbol
	}
	return s
}

// WeekHighPercent is price divided by the 52-week high.
func WeekHighPercent(s models.InstrumentSnapshot) *float64 {
	return ratio(s.Price, s.FiftyTwoWeekHigh)
}

// VolumeRatio is volume divided by average volume.
func VolumeRatio(s models.InstrumentSnapshot) *float64 {
	return ratio(s.Volume, s.AverageVolume)
}

func ratio(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	v := *num / *den
	return &v
}

func firstOf(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
