package strategy

import "trading-monitor/internal/model"

// TickContext carries everything the rule evaluators need for one tick:
// the new candle, the prior-candle history excluding it, the aligned
// indicator snapshots, and the per-asset auxiliary state.
type TickContext struct {
	Asset     string
	Candle    model.Candle
	History   []model.Candle           // prior candles, oldest first
	Ind       model.IndicatorSnapshot  // snapshot aligned to Candle
	PrevInd   *model.IndicatorSnapshot // snapshot from the previous tick, nil on the first
	Pivot     model.OptFloat           // current pivot target line
	Confirmed model.Direction          // confirmed breakout direction, if any
}

// prevCandle returns the immediately preceding candle; ok is false when the
// history is empty.
func (tc TickContext) prevCandle() (model.Candle, bool) {
	if len(tc.History) == 0 {
		return model.Candle{}, false
	}
	return tc.History[len(tc.History)-1], true
}

// Evaluator runs the alert rules against a tick.
type Evaluator struct {
	params Params
}

// NewEvaluator creates an evaluator with the given thresholds.
func NewEvaluator(p Params) *Evaluator {
	return &Evaluator{params: p}
}

// Params returns the evaluator's thresholds.
func (e *Evaluator) Params() Params { return e.params }

// Evaluate runs every applicable rule in a fixed order and collects the
// alerts that fired. Order matters for downstream consumers: BuyCall,
// SellPut, EarlyPullback (when enabled), TargetLineConfirmation,
// FollowThrough.
func (e *Evaluator) Evaluate(tc TickContext) []model.AlertEvent {
	var out []model.AlertEvent
	if a := e.BuyCall(tc); a != nil {
		out = append(out, *a)
	}
	if a := e.SellPut(tc); a != nil {
		out = append(out, *a)
	}
	if e.params.EarlyPullback {
		if a := e.EarlyPullbackAlert(tc); a != nil {
			out = append(out, *a)
		}
	}
	if a := e.TargetLineConfirmation(tc); a != nil {
		out = append(out, *a)
	}
	if a := e.FollowThrough(tc); a != nil {
		out = append(out, *a)
	}
	return out
}

// BuyCall fires on a confirmed bullish continuation: ascending EMA stack,
// close above EMA50, a pullback-and-bounce off the fast EMAs, a strong
// bullish body, a close above the previous high, and elevated volume.
func (e *Evaluator) BuyCall(tc TickContext) *model.AlertEvent {
	p := e.params
	if !tc.Ind.Complete() || tc.PrevInd == nil || len(tc.History) < p.MinHistory() {
		return nil
	}
	prev, _ := tc.prevCandle()

	stacked := tc.Ind.EMA10.Value > tc.Ind.EMA20.Value && tc.Ind.EMA20.Value > tc.Ind.EMA50.Value
	aboveSlow := tc.Candle.Close > tc.Ind.EMA50.Value
	pullback := HasBullishPullback(tc.Candle, tc.History, tc.Ind, *tc.PrevInd, p.PullbackLookback)
	strong := IsStrongBullishBody(tc.Candle, tc.History, p.BodyLookback, p.BodyFactor)
	breakout := tc.Candle.Close > prev.High
	highVolume := tc.Candle.Volume > averageVolume(tc.History, p.VolumeLookback)*p.VolumeFactor

	if stacked && aboveSlow && pullback && strong && breakout && highVolume {
		a := model.NewAlert(model.AlertBuyCall, tc.Asset, tc.Candle.Timestamp)
		return &a
	}
	return nil
}

// SellPut is the bearish mirror of BuyCall.
func (e *Evaluator) SellPut(tc TickContext) *model.AlertEvent {
	p := e.params
	if !tc.Ind.Complete() || tc.PrevInd == nil || len(tc.History) < p.MinHistory() {
		return nil
	}
	prev, _ := tc.prevCandle()

	stacked := tc.Ind.EMA10.Value < tc.Ind.EMA20.Value && tc.Ind.EMA20.Value < tc.Ind.EMA50.Value
	belowSlow := tc.Candle.Close < tc.Ind.EMA50.Value
	pullback := HasBearishPullback(tc.Candle, tc.History, tc.Ind, *tc.PrevInd, p.PullbackLookback)
	strong := IsStrongBearishBody(tc.Candle, tc.History, p.BodyLookback, p.BodyFactor)
	breakdown := tc.Candle.Close < prev.Low
	highVolume := tc.Candle.Volume > averageVolume(tc.History, p.VolumeLookback)*p.VolumeFactor

	if stacked && belowSlow && pullback && strong && breakdown && highVolume {
		a := model.NewAlert(model.AlertSellPut, tc.Asset, tc.Candle.Timestamp)
		return &a
	}
	return nil
}

// EarlyPullbackAlert fires when the candle's range brackets EMA20 within
// the touch tolerance and the close diverges from the prior close in the
// direction of the EMA: above it and rising is bullish, below and falling
// is bearish.
func (e *Evaluator) EarlyPullbackAlert(tc TickContext) *model.AlertEvent {
	if !tc.Ind.EMA20.Valid {
		return nil
	}
	prev, ok := tc.prevCandle()
	if !ok {
		return nil
	}

	ema20 := tc.Ind.EMA20.Value
	tol := e.params.TouchTolerance
	touched := tc.Candle.Low <= ema20*(1+tol) && tc.Candle.High >= ema20*(1-tol)
	if !touched {
		return nil
	}

	switch {
	case tc.Candle.Close > ema20 && tc.Candle.Close > prev.Close:
		a := model.NewAlert(model.AlertEarlyPullbackBullish, tc.Asset, tc.Candle.Timestamp)
		return &a
	case tc.Candle.Close < ema20 && tc.Candle.Close < prev.Close:
		a := model.NewAlert(model.AlertEarlyPullbackBearish, tc.Asset, tc.Candle.Timestamp)
		return &a
	}
	return nil
}

// TargetLineConfirmation fires when the close crosses the pivot target line
// relative to the previous close with a strong body in the crossing
// direction, and attaches the break-price region between close and target.
func (e *Evaluator) TargetLineConfirmation(tc TickContext) *model.AlertEvent {
	p := e.params
	if !tc.Pivot.Valid || len(tc.History) < p.BodyLookback {
		return nil
	}
	prev, _ := tc.prevCandle()
	target := tc.Pivot.Value

	region := &model.BreakRegion{
		Target: target,
		Low:    min(tc.Candle.Close, target),
		High:   max(tc.Candle.Close, target),
	}

	if tc.Candle.Close > target && prev.Close < target &&
		IsStrongBullishBody(tc.Candle, tc.History, p.BodyLookback, p.BodyFactor) {
		a := model.NewAlert(model.AlertTargetConfirmBullish, tc.Asset, tc.Candle.Timestamp)
		a.Region = region
		return &a
	}
	if tc.Candle.Close < target && prev.Close > target &&
		IsStrongBearishBody(tc.Candle, tc.History, p.BodyLookback, p.BodyFactor) {
		a := model.NewAlert(model.AlertTargetConfirmBearish, tc.Asset, tc.Candle.Timestamp)
		a.Region = region
		return &a
	}
	return nil
}

// FollowThrough fires while a confirmed direction is set: confirmed bullish
// needs a strong bullish close above the previous high, confirmed bearish a
// strong bearish close below the previous low. The confirmation is cleared
// on the next pivot recompute, which bounds how long this rule can keep
// firing after a single break.
func (e *Evaluator) FollowThrough(tc TickContext) *model.AlertEvent {
	p := e.params
	if tc.Confirmed == model.DirectionNone || len(tc.History) < p.BodyLookback {
		return nil
	}
	prev, _ := tc.prevCandle()

	if tc.Confirmed == model.DirectionBullish && tc.Candle.Close > prev.High &&
		IsStrongBullishBody(tc.Candle, tc.History, p.BodyLookback, p.BodyFactor) {
		a := model.NewAlert(model.AlertFollowThroughBullish, tc.Asset, tc.Candle.Timestamp)
		return &a
	}
	if tc.Confirmed == model.DirectionBearish && tc.Candle.Close < prev.Low &&
		IsStrongBearishBody(tc.Candle, tc.History, p.BodyLookback, p.BodyFactor) {
		a := model.NewAlert(model.AlertFollowThroughBearish, tc.Asset, tc.Candle.Timestamp)
		return &a
	}
	return nil
}
