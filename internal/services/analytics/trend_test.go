package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingArrow/internal/domain/models"
)

func daily(closes []float64) []models.Candle {
	t0 := time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{Time: t0.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1_000_000}
	}
	return out
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

func TestClassifyTrendInsufficientData(t *testing.T) {
	st := ClassifyTrend(daily(ramp(199, 100, 1)))
	assert.Equal(t, models.ConditionInsufficientData, st.Condition)
	assert.Nil(t, st.Price)
	assert.Nil(t, st.SMA50)
	assert.Nil(t, st.SMA200)
	assert.Nil(t, st.PctFromSMA50)
	assert.Empty(t, st.Deviation50)
	assert.Equal(t, 0, st.DistributionDays)

	st = ClassifyTrend(daily(ramp(200, 100, 1)))
	assert.NotEqual(t, models.ConditionInsufficientData, st.Condition)
}

func TestClassifyTrendConfirmedUptrend(t *testing.T) {
	st := ClassifyTrend(daily(ramp(250, 100, 1)))
	require.NotNil(t, st.Price)
	assert.Equal(t, models.ConditionConfirmedUptrend, st.Condition)
	assert.Equal(t, 349.0, *st.Price)
	assert.InDelta(t, 324.5, *st.SMA50, 1e-9)
	assert.InDelta(t, 249.5, *st.SMA200, 1e-9)
	assert.Equal(t, "+7.55%", st.Deviation50)
	assert.Equal(t, "+39.88%", st.Deviation200)
}

func TestClassifyTrendUnderPressure(t *testing.T) {
	closes := ramp(250, 100, 1)
	// Last close dips under the 50-day but stays above the 200-day.
	closes[len(closes)-1] = 300
	st := ClassifyTrend(daily(closes))
	assert.Equal(t, models.ConditionUptrendUnderPressure, st.Condition)
	require.NotNil(t, st.PctFromSMA50)
	assert.Less(t, *st.PctFromSMA50, 0.0)
	assert.Equal(t, "-", st.Deviation50[:1])
}

func TestClassifyTrendCorrection(t *testing.T) {
	st := ClassifyTrend(daily(ramp(250, 400, -1)))
	assert.Equal(t, models.ConditionInCorrection, st.Condition)
}

func TestClassifyTrendFallthroughAboveBothButInverted(t *testing.T) {
	// Long decline then a sharp rebound: price above both averages while the
	// 50-day is still below the 200-day. Not a confirmed uptrend.
	closes := append(ramp(240, 400, -1), ramp(10, 400, 5)...)
	st := ClassifyTrend(daily(closes))
	require.NotNil(t, st.SMA50)
	require.Less(t, *st.SMA50, *st.SMA200)
	require.Greater(t, *st.Price, *st.SMA200)
	assert.Equal(t, models.ConditionInCorrection, st.Condition)
}

func TestClassifyTrendDistributionDays(t *testing.T) {
	cs := daily(ramp(220, 100, 1))
	for _, i := range []int{200, 207, 215} {
		cs[i].Close = cs[i-1].Close - 2
		cs[i].Volume = cs[i-1].Volume * 1.5
	}
	st := ClassifyTrend(cs)
	assert.Equal(t, 3, st.DistributionDays)
}
