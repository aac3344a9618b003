package analytics

import (
	"fmt"

	"SwingArrow/internal/domain/models"
)

// CriteriaCount is the size of the fixed screen catalog.
const CriteriaCount = 8

// criterion returns ok=false when any of its inputs is missing.
type criterion struct {
	key   string
	label string
	eval  func(s models.InstrumentSnapshot, rs *int) (pass bool, detail string, ok bool)
}

var catalog = [CriteriaCount]criterion{
	{
		key:   "rs",
		label: "RS Rating ≥ 70",
		eval: func(_ models.InstrumentSnapshot, rs *int) (bool, string, bool) {
			if rs == nil {
				return false, "", false
			}
			return *rs >= 70, fmt.Sprintf("RS %d", *rs), true
		},
	},
	{
		key:   "eps_growth",
		label: "EPS Growth ≥ 25%",
		eval: func(s models.InstrumentSnapshot, _ *int) (bool, string, bool) {
			if s.EPSGrowth == nil {
				return false, "", false
			}
			p := *s.EPSGrowth * 100
			return p >= 25, fmt.Sprintf("%.1f%%", p), true
		},
	},
	{
		key:   "revenue_growth",
		label: "Revenue Growth ≥ 20%",
		eval: func(s models.InstrumentSnapshot, _ *int) (bool, string, bool) {
			if s.RevenueGrowth == nil {
				return false, "", false
			}
			p := *s.RevenueGrowth * 100
			return p >= 20, fmt.Sprintf("%.1f%%", p), true
		},
	},
	{
		key:   "operating_margin",
		label: "Operating Margin > 0%",
		eval: func(s models.InstrumentSnapshot, _ *int) (bool, string, bool) {
			if s.OperatingMargin == nil {
				return false, "", false
			}
			p := *s.OperatingMargin * 100
			return p > 0, fmt.Sprintf("%.1f%%", p), true
		},
	},
	{
		key:   "near_high",
		label: "Within 25% of 52w High",
		eval: func(s models.InstrumentSnapshot, _ *int) (bool, string, bool) {
			if s.Price == nil || s.FiftyTwoWeekHigh == nil {
				return false, "", false
			}
			return *s.Price >= *s.FiftyTwoWeekHigh*0.75, fmt.Sprintf("Hi $%.2f", *s.FiftyTwoWeekHigh), true
		},
	},
	{
		key:   "above_midpoint",
		label: "Above 52w Midpoint",
		eval: func(s models.InstrumentSnapshot, _ *int) (bool, string, bool) {
			if s.Price == nil || s.FiftyTwoWeekHigh == nil || s.FiftyTwoWeekLow == nil {
				return false, "", false
			}
			mid := (*s.FiftyTwoWeekHigh + *s.FiftyTwoWeekLow) / 2
			return *s.Price > mid, fmt.Sprintf("Mid $%.2f", mid), true
		},
	},
	{
		key:   "volume",
		label: "Volume ≥ Average",
		eval: func(s models.InstrumentSnapshot, _ *int) (bool, string, bool) {
			if s.Volume == nil || s.AverageVolume == nil {
				return false, "", false
			}
			return *s.Volume >= *s.AverageVolume, fmt.Sprintf("%.1fM", *s.Volume/1_000_000), true
		},
	},
	{
		key:   "forward_pe",
		label: "Forward PE < 50",
		eval: func(s models.InstrumentSnapshot, _ *int) (bool, string, bool) {
			if s.ForwardPE == nil {
				return false, "", false
			}
			return *s.ForwardPE < 50, fmt.Sprintf("PE %.1f", *s.ForwardPE), true
		},
	},
}

// Evaluate runs the catalog. A criterion with missing inputs counts toward
// neither Passed nor Max and is reported as n/a.
func Evaluate(s models.InstrumentSnapshot, rs *int) models.ScreenResult {
	res := models.ScreenResult{Checks: make([]models.CheckResult, 0, CriteriaCount)}
	for _, c := range catalog {
		check := models.CheckResult{Key: c.key, Label: c.label, Status: models.CheckNA}
		pass, detail, ok := c.eval(s, rs)
		if ok {
			res.Max++
			check.Detail = detail
			check.Status = models.CheckFail
			if pass {
				res.Passed++
				check.Status = models.CheckPass
			}
		}
		res.Checks = append(res.Checks, check)
	}
	if res.Max > 0 {
		res.Ratio = float64(res.Passed) / float64(res.Max)
	}
	return res
}
