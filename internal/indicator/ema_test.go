package indicator

import (
	"math"
	"testing"

	"trading-monitor/internal/model"
)

func candlesFromCloses(closes ...float64) []model.Candle {
	out := make([]model.Candle, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{
			Timestamp: int64(i) * 60_000,
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    100,
		}
	}
	return out
}

func TestComputeEMA_WarmupAbsent(t *testing.T) {
	candles := candlesFromCloses(10, 11, 12, 13, 14)

	out := ComputeEMA(candles, 10)
	for i, v := range out {
		if v.Valid {
			t.Errorf("index %d: expected absent with period > len, got %.2f", i, v.Value)
		}
	}

	out = ComputeEMA(candles, 3)
	for i := 0; i < 2; i++ {
		if out[i].Valid {
			t.Errorf("index %d: expected absent during warmup, got %.2f", i, out[i].Value)
		}
	}
	for i := 2; i < len(out); i++ {
		if !out[i].Valid {
			t.Errorf("index %d: expected present after warmup", i)
		}
	}
}

func TestComputeEMA_SeedIsSimpleMean(t *testing.T) {
	candles := candlesFromCloses(10, 8, 9)
	out := ComputeEMA(candles, 3)

	if !out[2].Valid {
		t.Fatal("expected value at seed index")
	}
	if math.Abs(out[2].Value-9.0) > 1e-9 {
		t.Errorf("seed: expected mean 9.0, got %.4f", out[2].Value)
	}
}

func TestComputeEMA_Recursion(t *testing.T) {
	// Seed = mean(10,8,9) = 9; multiplier = 2/4 = 0.5
	// ema[3] = (12-9)*0.5 + 9 = 10.5
	candles := candlesFromCloses(10, 8, 9, 12)
	out := ComputeEMA(candles, 3)

	if math.Abs(out[3].Value-10.5) > 1e-9 {
		t.Errorf("expected 10.5, got %.4f", out[3].Value)
	}
}

func TestComputeEMA_BoundedByCloses(t *testing.T) {
	closes := make([]float64, 40)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range closes {
		closes[i] = 100 + 3*math.Sin(float64(i)/3)
		lo = math.Min(lo, closes[i])
		hi = math.Max(hi, closes[i])
	}
	out := ComputeEMA(candlesFromCloses(closes...), 10)

	for i, v := range out {
		if !v.Valid {
			continue
		}
		if v.Value < lo-0.01 || v.Value > hi+0.01 {
			t.Errorf("index %d: ema %.4f outside close range [%.4f, %.4f]", i, v.Value, lo, hi)
		}
	}
}

func TestComputeEMA_PublishedValuesRounded(t *testing.T) {
	candles := candlesFromCloses(10.111, 10.222, 10.333, 10.444)
	out := ComputeEMA(candles, 3)

	for i, v := range out {
		if !v.Valid {
			continue
		}
		rounded := math.Round(v.Value*100) / 100
		if v.Value != rounded {
			t.Errorf("index %d: value %.6f not rounded to 2dp", i, v.Value)
		}
	}
}
