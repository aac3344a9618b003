package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SwingArrow/internal/domain/models"
	"SwingArrow/pkg/util"
)

func passingSnapshot() models.InstrumentSnapshot {
	return models.InstrumentSnapshot{
		Symbol:           "NVDA",
		Price:            util.Ptr(140.0),
		Volume:           util.Ptr(50_000_000.0),
		AverageVolume:    util.Ptr(40_000_000.0),
		FiftyTwoWeekHigh: util.Ptr(150.0),
		FiftyTwoWeekLow:  util.Ptr(60.0),
		ForwardPE:        util.Ptr(35.0),
		EPSGrowth:        util.Ptr(0.9),
		RevenueGrowth:    util.Ptr(0.6),
		OperatingMargin:  util.Ptr(0.55),
	}
}

func TestEvaluateAllPassing(t *testing.T) {
	res := Evaluate(passingSnapshot(), util.Ptr(92))
	assert.Equal(t, 8, res.Passed)
	assert.Equal(t, 8, res.Max)
	assert.Equal(t, 1.0, res.Ratio)
	assert.Equal(t, "A", res.Grade())
	require.Len(t, res.Checks, CriteriaCount)
	for _, c := range res.Checks {
		assert.Equal(t, models.CheckPass, c.Status, c.Key)
	}
}

func TestEvaluateEmptySnapshot(t *testing.T) {
	res := Evaluate(models.InstrumentSnapshot{Symbol: "X"}, nil)
	assert.Equal(t, 0, res.Passed)
	assert.Equal(t, 0, res.Max)
	assert.Equal(t, 0.0, res.Ratio)
	assert.Equal(t, "D", res.Grade())
	for _, c := range res.Checks {
		assert.Equal(t, models.CheckNA, c.Status)
	}
}

func TestEvaluateSkipsCriteriaWithMissingInputs(t *testing.T) {
	// Each case nils one input and expects exactly the listed criteria to
	// drop out of Max while the rest still pass.
	tests := []struct {
		name    string
		mutate  func(s *models.InstrumentSnapshot)
		rs      *int
		dropped []string
	}{
		{"no rs", func(*models.InstrumentSnapshot) {}, nil, []string{"rs"}},
		{"no eps", func(s *models.InstrumentSnapshot) { s.EPSGrowth = nil }, util.Ptr(80), []string{"eps_growth"}},
		{"no revenue", func(s *models.InstrumentSnapshot) { s.RevenueGrowth = nil }, util.Ptr(80), []string{"revenue_growth"}},
		{"no margin", func(s *models.InstrumentSnapshot) { s.OperatingMargin = nil }, util.Ptr(80), []string{"operating_margin"}},
		{"no price", func(s *models.InstrumentSnapshot) { s.Price = nil }, util.Ptr(80), []string{"near_high", "above_midpoint"}},
		{"no high", func(s *models.InstrumentSnapshot) { s.FiftyTwoWeekHigh = nil }, util.Ptr(80), []string{"near_high", "above_midpoint"}},
		{"no low", func(s *models.InstrumentSnapshot) { s.FiftyTwoWeekLow = nil }, util.Ptr(80), []string{"above_midpoint"}},
		{"no volume", func(s *models.InstrumentSnapshot) { s.Volume = nil }, util.Ptr(80), []string{"volume"}},
		{"no avg volume", func(s *models.InstrumentSnapshot) { s.AverageVolume = nil }, util.Ptr(80), []string{"volume"}},
		{"no forward pe", func(s *models.InstrumentSnapshot) { s.ForwardPE = nil }, util.Ptr(80), []string{"forward_pe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := passingSnapshot()
			tt.mutate(&s)
			res := Evaluate(s, tt.rs)

			want := CriteriaCount - len(tt.dropped)
			assert.Equal(t, want, res.Max)
			assert.Equal(t, want, res.Passed)
			assert.Equal(t, 1.0, res.Ratio)

			na := map[string]bool{}
			for _, c := range res.Checks {
				if c.Status == models.CheckNA {
					na[c.Key] = true
				}
			}
			for _, k := range tt.dropped {
				assert.True(t, na[k], k)
			}
			assert.Len(t, na, len(tt.dropped))
		})
	}
}

func TestEvaluateThresholds(t *testing.T) {
	s := models.InstrumentSnapshot{
		Price:            util.Ptr(75.0),
		FiftyTwoWeekHigh: util.Ptr(100.0),
		FiftyTwoWeekLow:  util.Ptr(50.0),
		EPSGrowth:        util.Ptr(0.25),
		RevenueGrowth:    util.Ptr(0.199),
		OperatingMargin:  util.Ptr(0.0),
		Volume:           util.Ptr(100.0),
		AverageVolume:    util.Ptr(100.0),
		ForwardPE:        util.Ptr(50.0),
	}
	res := Evaluate(s, util.Ptr(70))

	status := map[string]models.CheckStatus{}
	for _, c := range res.Checks {
		status[c.Key] = c.Status
	}
	assert.Equal(t, models.CheckPass, status["rs"])
	assert.Equal(t, models.CheckPass, status["eps_growth"])
	assert.Equal(t, models.CheckFail, status["revenue_growth"])
	assert.Equal(t, models.CheckFail, status["operating_margin"])
	assert.Equal(t, models.CheckPass, status["near_high"])
	assert.Equal(t, models.CheckFail, status["above_midpoint"])
	assert.Equal(t, models.CheckPass, status["volume"])
	assert.Equal(t, models.CheckFail, status["forward_pe"])

	assert.Equal(t, 4, res.Passed)
	assert.Equal(t, 8, res.Max)
	assert.Equal(t, 0.5, res.Ratio)
	assert.Equal(t, "C", res.Grade())
}

func TestEvaluateInvariant(t *testing.T) {
	vals := []*float64{nil, util.Ptr(-1.0), util.Ptr(0.0), util.Ptr(0.3), util.Ptr(80.0)}
	for i, v := range vals {
		for j, w := range vals {
			s := models.InstrumentSnapshot{
				Price: v, FiftyTwoWeekHigh: w, FiftyTwoWeekLow: vals[(i+j)%len(vals)],
				EPSGrowth: w, RevenueGrowth: v, OperatingMargin: w,
				Volume: v, AverageVolume: w, ForwardPE: v,
			}
			var rs *int
			if i%2 == 0 {
				rs = util.Ptr(10 * j)
			}
			res := Evaluate(s, rs)
			if res.Passed < 0 || res.Passed > res.Max || res.Max > CriteriaCount {
				t.Fatalf("invariant broken: passed=%d max=%d", res.Passed, res.Max)
			}
		}
	}
}

func TestGradeBoundaries(t *testing.T) {
	assert.Equal(t, "A", models.ScreenResult{Ratio: 0.875}.Grade())
	assert.Equal(t, "B", models.ScreenResult{Ratio: 0.625}.Grade())
	assert.Equal(t, "C", models.ScreenResult{Ratio: 0.375}.Grade())
	assert.Equal(t, "D", models.ScreenResult{Ratio: 0.374}.Grade())
}
