// Package indicator computes technical indicators over a candle window.
//
// Unlike a streaming indicator that carries state across updates, every
// function here recomputes from the full window it is given. The monitor's
// window shifts as old candles are evicted, so per-tick recomputation is
// the only way to keep the series aligned with the visible candles.
package indicator

import "math"

// Config holds the indicator periods and lookbacks.
type Config struct {
	FastPeriod   int // EMA10
	MediumPeriod int // EMA20
	SlowPeriod   int // EMA50
	SRLookback   int // support/resistance window
}

// DefaultConfig returns the standard 10/20/50 EMA stack with a 20-bar
// support/resistance lookback.
func DefaultConfig() Config {
	return Config{
		FastPeriod:   10,
		MediumPeriod: 20,
		SlowPeriod:   50,
		SRLookback:   20,
	}
}

// round2 rounds to two decimal places. Published indicator values are
// rounded so downstream threshold comparisons see the same numbers the
// presentation layer shows.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
