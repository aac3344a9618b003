package features

import (
	"time"

	"SwingArrow/internal/domain/models"
	"SwingArrow/pkg/util"
)

// US regular session in UTC minutes.
const (
	preMarketOpenMinute = 9 * 60
	regularOpenMinute   = 14*60 + 30
	regularCloseMinute  = 21 * 60
)

// SessionAt classifies t against the US session. Exchange holidays are not
// modelled.
func SessionAt(t time.Time) models.MarketSession {
	if !util.IsWeekday(t) {
		return models.SessionClosed
	}
	m := util.MinuteOfDayUTC(t)
	switch {
	case m >= regularOpenMinute && m < regularCloseMinute:
		return models.SessionOpen
	case m >= preMarketOpenMinute && m < regularOpenMinute:
		return models.SessionPreMarket
	default:
		return models.SessionClosed
	}
}

// IsMarketOpen reports whether t is inside the regular session.
func IsMarketOpen(t time.Time) bool {
	return SessionAt(t) == models.SessionOpen
}
