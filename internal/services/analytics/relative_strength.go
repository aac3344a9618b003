package analytics

import (
	"math"

	"SwingArrow/internal/domain/models"
	"SwingArrow/internal/services/features"
)

const (
	MinRSRating = 1
	MaxRSRating = 99
)

// Rating maps an instrument return and a benchmark return onto 1..99 as
// round(ir/br*50+50). A flat benchmark saturates on the sign of the instrument
// return. Halves round up.
func Rating(instrumentReturn, benchmarkReturn float64) int {
	if benchmarkReturn == 0 {
		if instrumentReturn >= 0 {
			return MaxRSRating
		}
		return MinRSRating
	}
	raw := math.Floor((instrumentReturn/benchmarkReturn)*50 + 50 + 0.5)
	switch {
	case math.IsNaN(raw), raw < MinRSRating:
		return MinRSRating
	case raw > MaxRSRating:
		return MaxRSRating
	}
	return int(raw)
}

// RelativeStrength rates instrument against benchmark. Rating is nil when
// either sample has fewer than two closes.
func RelativeStrength(instrument, benchmark models.ReturnSample) models.RSResult {
	var res models.RSResult
	ir, iok := features.PercentReturn(instrument)
	if iok {
		res.InstrumentReturn = &ir
	}
	br, bok := features.PercentReturn(benchmark)
	if bok {
		res.BenchmarkReturn = &br
	}
	if iok && bok {
		r := Rating(ir, br)
		res.Rating = &r
	}
	return res
}

// RatingAgainst rates a sample against an already computed benchmark return.
// A nil benchmark return yields a nil rating.
func RatingAgainst(instrument models.ReturnSample, benchmarkReturn *float64) (*int, *float64) {
	ir, ok := features.PercentReturn(instrument)
	if !ok {
		return nil, nil
	}
	if benchmarkReturn == nil {
		return nil, &ir
	}
	r := Rating(ir, *benchmarkReturn)
	return &r, &ir
}
