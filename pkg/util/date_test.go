package util

import (
	"testing"
	"time"
)

func TestIsWeekday(t *testing.T) {
	sat := time.Date(2024, 10, 12, 15, 0, 0, 0, time.UTC)
	if IsWeekday(sat) {
		t.Fatalf("saturday reported as weekday")
	}
	mon := time.Date(2024, 10, 14, 15, 0, 0, 0, time.UTC)
	if !IsWeekday(mon) {
		t.Fatalf("monday reported as weekend")
	}
	// Friday evening in New York is already Saturday in UTC.
	fri := time.Date(2024, 10, 11, 21, 0, 0, 0, time.FixedZone("ET", -4*3600))
	if IsWeekday(fri) {
		t.Fatalf("late friday ET reported as weekday")
	}
}

func TestMinuteOfDayUTC(t *testing.T) {
	loc := time.FixedZone("ET", -4*3600)
	ts := time.Date(2024, 10, 14, 10, 30, 0, 0, loc)
	if got := MinuteOfDayUTC(ts); got != 14*60+30 {
		t.Fatalf("unexpected minute %d", got)
	}
}

func TestNormalizeSymbols(t *testing.T) {
	got := NormalizeSymbols([]string{" nvda", "META", "", "nvda", "aapl "})
	want := []string{"NVDA", "META", "AAPL"}
	if len(got) != len(want) {
		t.Fatalf("unexpected len %d", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %s want %s", i, got[i], want[i])
		}
	}
}
