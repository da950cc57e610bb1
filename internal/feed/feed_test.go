package feed

import (
	"testing"
)

func TestSource_CandleInvariants(t *testing.T) {
	s := NewSource(42)

	prevClose := 0.0
	for i := 0; i < 200; i++ {
		c := s.Next(int64(i) * 60_000)

		if c.High < c.Open || c.High < c.Close || c.High < c.Low {
			t.Fatalf("candle %d: high %.2f below another price: %+v", i, c.High, c)
		}
		if c.Low > c.Open || c.Low > c.Close {
			t.Fatalf("candle %d: low %.2f above open/close: %+v", i, c.Low, c)
		}
		if c.Volume <= 0 {
			t.Fatalf("candle %d: non-positive volume %.2f", i, c.Volume)
		}
		if i > 0 && c.Open != prevClose {
			t.Fatalf("candle %d: open %.2f does not continue previous close %.2f", i, c.Open, prevClose)
		}
		prevClose = c.Close
	}
}

func TestSource_Deterministic(t *testing.T) {
	a, b := NewSource(7), NewSource(7)
	for i := 0; i < 50; i++ {
		ts := int64(i) * 60_000
		ca, cb := a.Next(ts), b.Next(ts)
		if ca != cb {
			t.Fatalf("candle %d: same seed diverged: %+v vs %+v", i, ca, cb)
		}
	}

	other := NewSource(8)
	if c := other.Next(0); c == NewSource(7).Next(0) {
		t.Error("different seeds should produce different candles")
	}
}

func TestSource_History(t *testing.T) {
	s := NewSource(3)
	const tfMs = 60_000
	endMs := int64(100) * tfMs

	hist := s.History(20, tfMs, endMs)
	if len(hist) != 20 {
		t.Fatalf("expected 20 candles, got %d", len(hist))
	}
	for i := 1; i < len(hist); i++ {
		if hist[i].Timestamp-hist[i-1].Timestamp != tfMs {
			t.Errorf("candle %d: expected %dms spacing, got %d", i, tfMs, hist[i].Timestamp-hist[i-1].Timestamp)
		}
	}
	if last := hist[len(hist)-1].Timestamp; last != endMs-tfMs {
		t.Errorf("expected history to end one interval before %d, got %d", endMs, last)
	}

	// Live generation continues the walk from the seeded history.
	next := s.Next(endMs)
	if next.Open != hist[len(hist)-1].Close {
		t.Errorf("expected live open %.2f to continue history close %.2f",
			next.Open, hist[len(hist)-1].Close)
	}
}
