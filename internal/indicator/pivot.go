package indicator

import "trading-monitor/internal/model"

// ComputePivot derives classic pivot-point levels from a single reference
// candle: pivot = (high+low+close)/3, r1 = 2*pivot - low, s1 = 2*pivot - high.
// Whenever high >= low this gives r1 >= pivot >= s1.
func ComputePivot(c model.Candle) model.TargetLevels {
	pivot := (c.High + c.Low + c.Close) / 3
	r1 := 2*pivot - c.Low
	s1 := 2*pivot - c.High
	return model.TargetLevels{
		Pivot: model.Some(round2(pivot)),
		R1:    model.Some(round2(r1)),
		S1:    model.Some(round2(s1)),
	}
}
