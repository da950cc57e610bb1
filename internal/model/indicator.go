package model

// IndicatorSnapshot holds the EMA values aligned to one candle index.
// Each value stays absent until its period's worth of candles has been seen.
type IndicatorSnapshot struct {
	EMA10 OptFloat `json:"ema10"`
	EMA20 OptFloat `json:"ema20"`
	EMA50 OptFloat `json:"ema50"`
}

// Complete reports whether all three EMA values are present.
func (s IndicatorSnapshot) Complete() bool {
	return s.EMA10.Valid && s.EMA20.Valid && s.EMA50.Valid
}

// SupportResistance is the rolling min-low/max-high band over the last
// N candles. Both values are absent for an empty window.
type SupportResistance struct {
	Support    OptFloat `json:"support"`
	Resistance OptFloat `json:"resistance"`
}

// TargetLevels holds pivot-point derived price levels from one reference
// candle. All three are absent until the first pivot recompute runs.
type TargetLevels struct {
	Pivot OptFloat `json:"pivot"`
	R1    OptFloat `json:"r1"`
	S1    OptFloat `json:"s1"`
}
