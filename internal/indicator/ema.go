package indicator

import "trading-monitor/internal/model"

// ComputeEMA returns the exponential moving average series for the given
// candles. The result has one entry per input candle; entries before index
// period-1 are absent. The value at period-1 is seeded with the simple mean
// of the first period closes, and each later value follows
//
//	ema[i] = (close[i] - ema[i-1]) * (2/(period+1)) + ema[i-1]
//
// The recursion runs on unrounded values; only the published series is
// rounded to two decimals.
func ComputeEMA(candles []model.Candle, period int) []model.OptFloat {
	out := make([]model.OptFloat, len(candles))
	if period <= 0 || len(candles) < period {
		return out
	}

	raw := make([]float64, len(candles))
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += candles[i].Close
	}
	raw[period-1] = sum / float64(period)

	multiplier := 2.0 / float64(period+1)
	for i := period; i < len(candles); i++ {
		raw[i] = (candles[i].Close-raw[i-1])*multiplier + raw[i-1]
	}

	for i := period - 1; i < len(candles); i++ {
		out[i] = model.Some(round2(raw[i]))
	}
	return out
}
