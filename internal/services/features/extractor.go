package features

import (
	"fmt"
	"math"

	"SwingArrow/internal/domain/models"
)

// Candles keeps bars with both open and close present. Missing high/low fall
// back to the open/close envelope and missing volume becomes 0.
func Candles(bars []models.Bar) []models.Candle {
	out := make([]models.Candle, 0, len(bars))
	for _, b := range bars {
		if b.Open == nil || b.Close == nil {
			continue
		}
		c := models.Candle{
			Time:  b.Time,
			Unix:  b.Time.Unix(),
			Open:  *b.Open,
			Close: *b.Close,
			High:  math.Max(*b.Open, *b.Close),
			Low:   math.Min(*b.Open, *b.Close),
		}
		if b.High != nil {
			c.High = *b.High
		}
		if b.Low != nil {
			c.Low = *b.Low
		}
		if b.Volume != nil {
			c.Volume = *b.Volume
		}
		out = append(out, c)
	}
	return out
}

// ReturnSampleFromBars drops bars without a close.
func ReturnSampleFromBars(bars []models.Bar) models.ReturnSample {
	out := make(models.ReturnSample, 0, len(bars))
	for _, b := range bars {
		if b.Close == nil {
			continue
		}
		out = append(out, models.ReturnPoint{Time: b.Time, Close: *b.Close})
	}
	return out
}

// PercentReturn is (last-first)/first as a fraction. ok is false with fewer
// than two points or a zero first close.
func PercentReturn(s models.ReturnSample) (float64, bool) {
	if len(s) < 2 {
		return 0, false
	}
	first := s[0].Close
	if first == 0 {
		return 0, false
	}
	return (s[len(s)-1].Close - first) / first, true
}

// Closes extracts close prices.
func Closes(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

// SMA averages the trailing period values.
func SMA(values []float64, period int) (float64, bool) {
	if period <= 0 || len(values) < period {
		return 0, false
	}
	sum := 0.0
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return sum / float64(period), true
}

// SMASeries returns a moving average aligned with candles: nil until period-1,
// then the running mean rounded to 4 decimals.
func SMASeries(candles []models.Candle, period int) []*float64 {
	out := make([]*float64, len(candles))
	if period <= 0 || len(candles) < period {
		return out
	}
	sum := 0.0
	for i, c := range candles {
		sum += c.Close
		if i >= period {
			sum -= candles[i-period].Close
		}
		if i >= period-1 {
			v := math.Round(sum/float64(period)*1e4) / 1e4
			out[i] = &v
		}
	}
	return out
}

// DistributionDays counts sessions in the trailing window that closed below
// the prior session on higher volume. The prior session of the first window
// entry may lie outside the window.
func DistributionDays(candles []models.Candle, window int) int {
	start := len(candles) - window
	if start < 1 {
		start = 1
	}
	n := 0
	for i := start; i < len(candles); i++ {
		prev, cur := candles[i-1], candles[i]
		if cur.Close < prev.Close && cur.Volume > prev.Volume {
			n++
		}
	}
	return n
}

// PercentFrom is (value-ref)/ref*100.
func PercentFrom(value, ref float64) float64 {
	return (value - ref) / ref * 100
}

// FormatSignedPercent renders v (already in percent) as "+1.23%" or "-1.23%".
func FormatSignedPercent(v float64) string {
	sign := ""
	if v >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, v)
}
