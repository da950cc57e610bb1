package indicator

import "trading-monitor/internal/model"

// ComputeSupportResistance scans the last lookback candles (or fewer if the
// window is shorter) for the lowest low and highest high. Both values are
// absent for an empty window. The band is recomputed wholesale on every
// call, not maintained incrementally.
func ComputeSupportResistance(candles []model.Candle, lookback int) model.SupportResistance {
	if len(candles) == 0 || lookback <= 0 {
		return model.SupportResistance{}
	}

	start := len(candles) - lookback
	if start < 0 {
		start = 0
	}
	window := candles[start:]

	support := window[0].Low
	resistance := window[0].High
	for _, c := range window[1:] {
		if c.Low < support {
			support = c.Low
		}
		if c.High > resistance {
			resistance = c.High
		}
	}

	return model.SupportResistance{
		Support:    model.Some(round2(support)),
		Resistance: model.Some(round2(resistance)),
	}
}
