package strategy

import "trading-monitor/internal/model"

// ClassifyCycle maps the current and previous EMA snapshots to a market
// cycle. It needs all six values; otherwise the cycle is unknown.
//
// Checks run in priority order and the first match wins. Strong-trend
// labels deliberately outrank the cross labels: a tick where EMA10 crosses
// EMA20 while the full stack is already trending is reported as the trend,
// not the cross.
func ClassifyCycle(cur, prev model.IndicatorSnapshot) model.MarketCycle {
	if !cur.Complete() || !prev.Complete() {
		return model.CycleUnknown
	}

	ema10, ema20, ema50 := cur.EMA10.Value, cur.EMA20.Value, cur.EMA50.Value
	prev10, prev20, prev50 := prev.EMA10.Value, prev.EMA20.Value, prev.EMA50.Value

	rising := ema10 > prev10 && ema20 > prev20 && ema50 > prev50
	falling := ema10 < prev10 && ema20 < prev20 && ema50 < prev50

	switch {
	case ema10 > ema20 && ema20 > ema50 && rising:
		return model.CycleBullish
	case ema10 < ema20 && ema20 < ema50 && falling:
		return model.CycleBearish
	case ema10 > ema20 && prev10 <= prev20:
		return model.CycleEarlyBullish
	case ema10 < ema20 && prev10 >= prev20:
		return model.CycleEarlyBearish
	default:
		return model.CycleNeutral
	}
}
