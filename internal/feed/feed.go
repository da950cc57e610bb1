// Package feed provides a synthetic random-walk candle source. It stands in
// for a real market-data feed: each asset gets its own Source producing one
// candle per timeframe tick with strictly increasing timestamps.
package feed

import (
	"math"
	"math/rand"

	"trading-monitor/internal/model"
)

const (
	initialPriceMin = 100.0
	initialPriceMax = 200.0
	priceVolatility = 0.01 // ±1% jitter per sample
)

// Source generates candles for one asset. Not safe for concurrent use; each
// asset pipeline owns exactly one Source.
type Source struct {
	rng       *rand.Rand
	lastClose float64
}

// NewSource creates a source seeded for reproducibility. The starting price
// is drawn from the upper half of the initial range, matching how a fresh
// instrument is priced.
func NewSource(seed int64) *Source {
	rng := rand.New(rand.NewSource(seed))
	start := (initialPriceMin+initialPriceMax)/2 + rng.Float64()*(initialPriceMax-initialPriceMin)/2
	return &Source{rng: rng, lastClose: start}
}

// jitter applies a ±volatility random walk step to base.
func (s *Source) jitter(base float64) float64 {
	return base * (1 + (s.rng.Float64()-0.5)*priceVolatility*2)
}

// Next produces the candle for the given timestamp. Open equals the
// previous close; high and low are fixed up so that high is the max and low
// the min of all four prices; volume scales with the candle's range.
func (s *Source) Next(timestamp int64) model.Candle {
	open := s.lastClose
	high := s.jitter(open * 1.005)
	low := s.jitter(open * 0.995)
	close := s.jitter(open)

	finalHigh := math.Max(math.Max(open, high), math.Max(low, close))
	finalLow := math.Min(math.Min(open, high), math.Min(low, close))

	baseVolume := float64(s.rng.Intn(500) + 100)
	rangeVolume := math.Floor((finalHigh - finalLow) * 500)

	c := model.Candle{
		Timestamp: timestamp,
		Open:      round2(open),
		High:      round2(finalHigh),
		Low:       round2(finalLow),
		Close:     round2(close),
		Volume:    baseVolume + rangeVolume,
	}
	s.lastClose = c.Close
	return c
}

// History back-fills count candles at timeframeMs spacing, ending one
// interval before endMs. The source's walk continues from the last
// historical close, so Next picks up seamlessly.
func (s *Source) History(count int, timeframeMs, endMs int64) []model.Candle {
	out := make([]model.Candle, 0, count)
	ts := endMs - int64(count)*timeframeMs
	for i := 0; i < count; i++ {
		out = append(out, s.Next(ts))
		ts += timeframeMs
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
