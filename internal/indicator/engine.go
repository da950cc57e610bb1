package indicator

import "trading-monitor/internal/model"

// Result bundles the aligned snapshot series and the support/resistance
// band computed from one candle window.
type Result struct {
	Snapshots []model.IndicatorSnapshot
	SR        model.SupportResistance
}

// ComputeAll runs the fast/medium/slow EMAs and the support/resistance band
// over the window, producing one snapshot per candle index.
func ComputeAll(candles []model.Candle, cfg Config) Result {
	fast := ComputeEMA(candles, cfg.FastPeriod)
	medium := ComputeEMA(candles, cfg.MediumPeriod)
	slow := ComputeEMA(candles, cfg.SlowPeriod)

	snapshots := make([]model.IndicatorSnapshot, len(candles))
	for i := range candles {
		snapshots[i] = model.IndicatorSnapshot{
			EMA10: fast[i],
			EMA20: medium[i],
			EMA50: slow[i],
		}
	}

	return Result{
		Snapshots: snapshots,
		SR:        ComputeSupportResistance(candles, cfg.SRLookback),
	}
}
