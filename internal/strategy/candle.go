package strategy

import "trading-monitor/internal/model"

// averageBody returns the mean body size of the last lookback candles, or 0
// when fewer are available. Callers guard the length before trusting the 0.
func averageBody(candles []model.Candle, lookback int) float64 {
	if len(candles) < lookback {
		return 0
	}
	window := candles[len(candles)-lookback:]
	total := 0.0
	for _, c := range window {
		total += c.Body()
	}
	return total / float64(len(window))
}

// averageVolume returns the mean volume of the last lookback candles, or 0
// when fewer are available.
func averageVolume(candles []model.Candle, lookback int) float64 {
	if len(candles) < lookback {
		return 0
	}
	window := candles[len(candles)-lookback:]
	total := 0.0
	for _, c := range window {
		total += c.Volume
	}
	return total / float64(len(window))
}

// IsStrongBullishBody reports whether the candle closed up with a body more
// than factor times the mean body of the prior lookback candles. False when
// fewer than lookback prior candles exist.
func IsStrongBullishBody(cur model.Candle, prev []model.Candle, lookback int, factor float64) bool {
	if len(prev) < lookback {
		return false
	}
	if !cur.Bullish() {
		return false
	}
	return cur.Body() > averageBody(prev, lookback)*factor
}

// IsStrongBearishBody is the bearish mirror of IsStrongBullishBody.
func IsStrongBearishBody(cur model.Candle, prev []model.Candle, lookback int, factor float64) bool {
	if len(prev) < lookback {
		return false
	}
	if !cur.Bearish() {
		return false
	}
	return cur.Body() > averageBody(prev, lookback)*factor
}

// touches reports whether the candle's high/low range brackets the level.
func touches(c model.Candle, level float64) bool {
	return c.Low <= level && c.High >= level
}

// HasBullishPullback reports a pullback-and-bounce: the immediately
// preceding candle's range touched EMA10 or EMA20 (at the current or the
// previous snapshot's value) and the current candle closed above the
// preceding close. Requires both EMAs present in both snapshots and at
// least lookback prior candles.
func HasBullishPullback(cur model.Candle, prev []model.Candle, ind, prevInd model.IndicatorSnapshot, lookback int) bool {
	if len(prev) < lookback {
		return false
	}
	if !ind.EMA10.Valid || !ind.EMA20.Valid || !prevInd.EMA10.Valid || !prevInd.EMA20.Valid {
		return false
	}
	prevCandle := prev[len(prev)-1]
	touched := touches(prevCandle, ind.EMA10.Value) || touches(prevCandle, prevInd.EMA10.Value) ||
		touches(prevCandle, ind.EMA20.Value) || touches(prevCandle, prevInd.EMA20.Value)
	return touched && cur.Close > prevCandle.Close
}

// HasBearishPullback is the bearish mirror: same touch detection, with the
// current candle closing below the preceding close.
func HasBearishPullback(cur model.Candle, prev []model.Candle, ind, prevInd model.IndicatorSnapshot, lookback int) bool {
	if len(prev) < lookback {
		return false
	}
	if !ind.EMA10.Valid || !ind.EMA20.Valid || !prevInd.EMA10.Valid || !prevInd.EMA20.Valid {
		return false
	}
	prevCandle := prev[len(prev)-1]
	touched := touches(prevCandle, ind.EMA10.Value) || touches(prevCandle, prevInd.EMA10.Value) ||
		touches(prevCandle, ind.EMA20.Value) || touches(prevCandle, prevInd.EMA20.Value)
	return touched && cur.Close < prevCandle.Close
}
