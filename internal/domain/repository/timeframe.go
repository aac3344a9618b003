package repository

import "time"

// Interval is the provider's sampling interval.
type Interval string

const (
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval60m Interval = "60m"
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval5m, Interval15m, Interval60m, Interval1d, Interval1wk, Interval1mo:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the default interval.
func DefaultInterval() Interval { return Interval1d }

// NormalizeInterval converts raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}

// Range is a look-back window for chart history.
type Range string

const (
	Range1d  Range = "1d"
	Range5d  Range = "5d"
	Range1mo Range = "1mo"
	Range3mo Range = "3mo"
	Range1y  Range = "1y"
)

// DefaultRange returns the default range.
func DefaultRange() Range { return Range3mo }

// NormalizeRange converts raw string to a known range; anything else is 3mo.
func NormalizeRange(s string) Range {
	switch r := Range(s); r {
	case Range1d, Range5d, Range1mo, Range3mo, Range1y:
		return r
	default:
		return DefaultRange()
	}
}

// Start returns the beginning of the window ending at end.
func (r Range) Start(end time.Time) time.Time {
	switch r {
	case Range1d:
		return end.AddDate(0, 0, -1)
	case Range5d:
		return end.AddDate(0, 0, -5)
	case Range1mo:
		return end.AddDate(0, -1, 0)
	case Range1y:
		return end.AddDate(-1, 0, 0)
	default:
		return end.AddDate(0, -3, 0)
	}
}
