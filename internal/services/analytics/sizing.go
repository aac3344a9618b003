package analytics

import (
	"github.com/shopspring/decimal"

	"SwingArrow/internal/domain/models"
)

// DefaultStopPct is the stop distance below entry used when none is given.
const DefaultStopPct = 0.075

// StopLoss returns entry*(1-pct).
func StopLoss(entry, pct float64) float64 {
	e := decimal.NewFromFloat(entry)
	return e.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(pct))).InexactFloat64()
}

// PositionSize sizes a position so that hitting stop loses riskPct of the
// account. A stop at or above entry yields zero shares.
func PositionSize(accountSize, riskPct, entry, stop float64) models.PositionSize {
	acct := decimal.NewFromFloat(accountSize)
	e := decimal.NewFromFloat(entry)
	s := decimal.NewFromFloat(stop)

	riskDollars := acct.Mul(decimal.NewFromFloat(riskPct))
	perShare := e.Sub(s)

	out := models.PositionSize{
		RiskDollars:  riskDollars.InexactFloat64(),
		RiskPerShare: perShare.InexactFloat64(),
		StopPrice:    stop,
	}
	if !perShare.IsPositive() {
		return out
	}
	shares := riskDollars.Div(perShare).Floor()
	out.Shares = shares.IntPart()
	out.PositionValue = shares.Mul(e).InexactFloat64()
	return out
}

// RiskReward returns reward/risk and the reward amount. A non-positive risk
// gives a ratio of 0.
func RiskReward(entry, stop, target float64) (ratio, reward float64) {
	e := decimal.NewFromFloat(entry)
	risk := e.Sub(decimal.NewFromFloat(stop))
	rew := decimal.NewFromFloat(target).Sub(e)
	if !risk.IsPositive() {
		return 0, rew.InexactFloat64()
	}
	return rew.Div(risk).InexactFloat64(), rew.InexactFloat64()
}
