package strategy

import (
	"testing"

	"trading-monitor/internal/model"
)

// buyCallContext builds a tick where every BuyCall precondition holds:
// ascending EMA stack, close above EMA50, prior-candle EMA touch with a
// bounce, strong body, breakout over the previous high, elevated volume.
func buyCallContext(p Params) TickContext {
	history := flatHistory(p.MinHistory(), 104, 100)
	last := &history[len(history)-1]
	last.Low, last.High = 102, 106 // brackets EMA10 and EMA20

	ind := fullSnap(105, 103, 100)
	prevInd := fullSnap(104.5, 102.5, 99.5)

	return TickContext{
		Asset: "AAPL",
		Candle: model.Candle{
			Timestamp: 999_000,
			Open:      104.2,
			High:      110.5,
			Low:       104,
			Close:     110,
			Volume:    500,
		},
		History: history,
		Ind:     ind,
		PrevInd: &prevInd,
	}
}

func TestBuyCall_Fires(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	a := e.BuyCall(buyCallContext(p))
	if a == nil {
		t.Fatal("expected BuyCall to fire")
	}
	if a.Kind != model.AlertBuyCall {
		t.Errorf("expected kind %s, got %s", model.AlertBuyCall, a.Kind)
	}
	if a.Asset != "AAPL" || a.Timestamp != 999_000 {
		t.Errorf("alert identity mismatch: %+v", a)
	}
	if a.ID == "" {
		t.Error("expected non-empty alert id")
	}
}

func TestBuyCall_RequiresMinHistory(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	tc := buyCallContext(p)
	tc.History = tc.History[:p.MinHistory()-1]
	if e.BuyCall(tc) != nil {
		t.Error("BuyCall must stay silent below the minimum history")
	}
}

func TestBuyCall_RequiresPrevSnapshot(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	tc := buyCallContext(p)
	tc.PrevInd = nil
	if e.BuyCall(tc) != nil {
		t.Error("BuyCall must stay silent without a previous snapshot")
	}
}

func TestBuyCall_RequiresVolume(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	tc := buyCallContext(p)
	tc.Candle.Volume = 100 // equal to the average, need > 1.2x
	if e.BuyCall(tc) != nil {
		t.Error("BuyCall must require elevated volume")
	}
}

func TestBuyCall_RequiresCompleteStack(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	tc := buyCallContext(p)
	tc.Ind.EMA50 = model.None()
	if e.BuyCall(tc) != nil {
		t.Error("BuyCall must require all three EMAs")
	}
}

func TestSellPut_Fires(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	history := flatHistory(p.MinHistory(), 96, 100)
	last := &history[len(history)-1]
	last.Low, last.High = 94, 98 // brackets EMA10=95 and EMA20=97

	prevInd := fullSnap(95.5, 97.5, 100.5)
	tc := TickContext{
		Asset: "TSLA",
		Candle: model.Candle{
			Timestamp: 1_000_000,
			Open:      95.8,
			High:      96,
			Low:       89.5,
			Close:     90,
			Volume:    500,
		},
		History: history,
		Ind:     fullSnap(95, 97, 100),
		PrevInd: &prevInd,
	}

	a := e.SellPut(tc)
	if a == nil {
		t.Fatal("expected SellPut to fire")
	}
	if a.Kind != model.AlertSellPut {
		t.Errorf("expected kind %s, got %s", model.AlertSellPut, a.Kind)
	}
}

func TestEarlyPullback_FlagGated(t *testing.T) {
	p := DefaultParams()
	history := flatHistory(5, 100, 100)
	tc := TickContext{
		Asset: "AAPL",
		Candle: model.Candle{
			Timestamp: 5_000,
			Open:      99.9,
			High:      100.4,
			Low:       99.85,
			Close:     100.3,
			Volume:    100,
		},
		History: history,
		Ind:     model.IndicatorSnapshot{EMA20: model.Some(100)},
	}

	disabled := NewEvaluator(p)
	for _, a := range disabled.Evaluate(tc) {
		if a.Kind == model.AlertEarlyPullbackBullish || a.Kind == model.AlertEarlyPullbackBearish {
			t.Fatal("early pullback fired while disabled")
		}
	}

	p.EarlyPullback = true
	a := NewEvaluator(p).EarlyPullbackAlert(tc)
	if a == nil {
		t.Fatal("expected bullish early pullback")
	}
	if a.Kind != model.AlertEarlyPullbackBullish {
		t.Errorf("expected bullish kind, got %s", a.Kind)
	}
}

func TestEarlyPullback_Bearish(t *testing.T) {
	p := DefaultParams()
	p.EarlyPullback = true
	e := NewEvaluator(p)

	tc := TickContext{
		Asset: "AAPL",
		Candle: model.Candle{
			Timestamp: 5_000,
			Open:      100.1,
			High:      100.2,
			Low:       99.6,
			Close:     99.7,
			Volume:    100,
		},
		History: flatHistory(5, 100, 100),
		Ind:     model.IndicatorSnapshot{EMA20: model.Some(100)},
	}

	a := e.EarlyPullbackAlert(tc)
	if a == nil {
		t.Fatal("expected bearish early pullback")
	}
	if a.Kind != model.AlertEarlyPullbackBearish {
		t.Errorf("expected bearish kind, got %s", a.Kind)
	}
}

func TestEarlyPullback_NoTouchNoAlert(t *testing.T) {
	p := DefaultParams()
	p.EarlyPullback = true
	e := NewEvaluator(p)

	tc := TickContext{
		Asset: "AAPL",
		Candle: model.Candle{
			Timestamp: 5_000,
			Open:      104,
			High:      105,
			Low:       103.5,
			Close:     104.8,
			Volume:    100,
		},
		History: flatHistory(5, 104, 100),
		Ind:     model.IndicatorSnapshot{EMA20: model.Some(100)},
	}

	if e.EarlyPullbackAlert(tc) != nil {
		t.Error("range far from EMA20 must not alert")
	}
}

func TestTargetLineConfirmation_BullishWithRegion(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	history := flatHistory(5, 99, 100) // prior closes below target
	tc := TickContext{
		Asset: "MSFT",
		Candle: model.Candle{
			Timestamp: 7_000,
			Open:      99.2,
			High:      103.5,
			Low:       99,
			Close:     103,
			Volume:    100,
		},
		History: history,
		Pivot:   model.Some(100.0),
	}

	a := e.TargetLineConfirmation(tc)
	if a == nil {
		t.Fatal("expected bullish confirmation")
	}
	if a.Kind != model.AlertTargetConfirmBullish {
		t.Errorf("expected bullish kind, got %s", a.Kind)
	}
	if a.Region == nil {
		t.Fatal("expected a break region on the alert")
	}
	if a.Region.Low != 100 || a.Region.High != 103 || a.Region.Target != 100 {
		t.Errorf("region mismatch: %+v", a.Region)
	}
}

func TestTargetLineConfirmation_NeedsPivot(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	tc := TickContext{
		Asset:   "MSFT",
		Candle:  model.Candle{Open: 99.2, Close: 103, Volume: 100},
		History: flatHistory(5, 99, 100),
	}
	if e.TargetLineConfirmation(tc) != nil {
		t.Error("no pivot level means no confirmation")
	}
}

func TestTargetLineConfirmation_NeedsCross(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	// Previous close already above the target: no cross, no alert.
	tc := TickContext{
		Asset: "MSFT",
		Candle: model.Candle{
			Timestamp: 7_000,
			Open:      101,
			Close:     105,
			Volume:    100,
		},
		History: flatHistory(5, 101, 100),
		Pivot:   model.Some(100.0),
	}
	if e.TargetLineConfirmation(tc) != nil {
		t.Error("close already past target must not re-confirm")
	}
}

func TestFollowThrough(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	history := flatHistory(5, 100, 100)
	strongUp := model.Candle{Timestamp: 8_000, Open: 100.2, High: 102.5, Low: 100, Close: 102, Volume: 100}

	tc := TickContext{Asset: "AMZN", Candle: strongUp, History: history}
	if e.FollowThrough(tc) != nil {
		t.Error("no confirmed direction means no follow-through")
	}

	tc.Confirmed = model.DirectionBullish
	a := e.FollowThrough(tc)
	if a == nil {
		t.Fatal("expected bullish follow-through")
	}
	if a.Kind != model.AlertFollowThroughBullish {
		t.Errorf("expected bullish kind, got %s", a.Kind)
	}

	tc.Confirmed = model.DirectionBearish
	if e.FollowThrough(tc) != nil {
		t.Error("bullish candle must not follow through a bearish confirmation")
	}

	strongDown := model.Candle{Timestamp: 8_000, Open: 100, High: 100.1, Low: 97.5, Close: 98, Volume: 100}
	tc.Candle = strongDown
	a = e.FollowThrough(tc)
	if a == nil {
		t.Fatal("expected bearish follow-through")
	}
	if a.Kind != model.AlertFollowThroughBearish {
		t.Errorf("expected bearish kind, got %s", a.Kind)
	}
}

func TestEvaluate_Order(t *testing.T) {
	p := DefaultParams()
	e := NewEvaluator(p)

	// A tick engineered to fire BuyCall and a bullish target confirmation
	// together: the collection order is fixed.
	tc := buyCallContext(p)
	tc.Pivot = model.Some(105.0) // prior closes at 104 are below, 110 is above

	fired := e.Evaluate(tc)
	if len(fired) != 2 {
		t.Fatalf("expected 2 alerts, got %d: %+v", len(fired), fired)
	}
	if fired[0].Kind != model.AlertBuyCall || fired[1].Kind != model.AlertTargetConfirmBullish {
		t.Errorf("unexpected order: %s then %s", fired[0].Kind, fired[1].Kind)
	}
}
