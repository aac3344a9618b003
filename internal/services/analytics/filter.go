package analytics

import (
	"sort"
	"strings"

	"SwingArrow/internal/domain/models"
)

// VolumeSurgeRatio is the volume ratio a row needs to pass the surge filter.
const VolumeSurgeRatio = 1.25

// ScanFilter narrows a batch for display. Zero values disable a filter.
type ScanFilter struct {
	MinRS    int
	MinEPS   float64
	MinScore int
	Stage    int
	VolSurge bool
	SortKey  string
	Desc     bool
}

// Summarize counts rows of the whole batch.
func Summarize(rows []models.ScanRow) models.ScanSummary {
	s := models.ScanSummary{Total: len(rows)}
	for _, r := range rows {
		if r.Stage == 2 {
			s.Stage2++
		}
		if r.Passed >= 7 {
			s.HighPassRows++
		}
	}
	return s
}

// Apply returns a filtered, sorted copy. A nil RS rating fails any minimum;
// a nil EPS growth passes the EPS minimum. Nil sort values go last in both
// directions.
func (f ScanFilter) Apply(rows []models.ScanRow) []models.ScanRow {
	out := make([]models.ScanRow, 0, len(rows))
	for _, r := range rows {
		if f.MinRS > 0 && (r.RSRating == nil || *r.RSRating < f.MinRS) {
			continue
		}
		if f.MinEPS != 0 && r.EPSGrowth != nil && *r.EPSGrowth*100 < f.MinEPS {
			continue
		}
		if r.Passed < f.MinScore {
			continue
		}
		if f.Stage != 0 && r.Stage != f.Stage {
			continue
		}
		if f.VolSurge && (r.VolumeRatio == nil || *r.VolumeRatio < VolumeSurgeRatio) {
			continue
		}
		out = append(out, r)
	}

	if f.SortKey == "" {
		return out
	}
	sort.SliceStable(out, func(i, j int) bool {
		return f.less(out[i], out[j])
	})
	return out
}

func (f ScanFilter) less(a, b models.ScanRow) bool {
	if sa, sb, ok := stringKey(f.SortKey, a, b); ok {
		if f.Desc {
			return strings.Compare(sa, sb) > 0
		}
		return strings.Compare(sa, sb) < 0
	}
	va, vb := numericKey(f.SortKey, a), numericKey(f.SortKey, b)
	switch {
	case va == nil && vb == nil:
		return false
	case va == nil:
		return false
	case vb == nil:
		return true
	case f.Desc:
		return *va > *vb
	default:
		return *va < *vb
	}
}

func stringKey(key string, a, b models.ScanRow) (string, string, bool) {
	switch key {
	case "ticker":
		return a.Symbol, b.Symbol, true
	case "company":
		return a.Name, b.Name, true
	}
	return "", "", false
}

func numericKey(key string, r models.ScanRow) *float64 {
	switch key {
	case "price":
		return r.Price
	case "changePercent":
		return r.ChangePercent
	case "rsRating":
		if r.RSRating == nil {
			return nil
		}
		v := float64(*r.RSRating)
		return &v
	case "epsGrowth":
		return r.EPSGrowth
	case "revenueGrowth":
		return r.RevenueGrowth
	case "operatingMargin":
		return r.OperatingMargin
	case "weekHighPercent":
		return r.WeekHighPercent
	case "volumeRatio":
		return r.VolumeRatio
	case "setupPassed":
		v := float64(r.Passed)
		return &v
	case "stage":
		v := float64(r.Stage)
		return &v
	default:
		v := r.Ratio
		return &v
	}
}
