package model

import (
	"encoding/json"
	"fmt"
)

// MarketCycle is the discrete trend-phase classification derived from
// EMA stacking and slope. CycleUnknown means not enough indicator data.
type MarketCycle int8

const (
	CycleUnknown MarketCycle = iota
	CycleBullish
	CycleBearish
	CycleNeutral
	CycleEarlyBullish
	CycleEarlyBearish
)

func (c MarketCycle) String() string {
	switch c {
	case CycleBullish:
		return "BULLISH"
	case CycleBearish:
		return "BEARISH"
	case CycleNeutral:
		return "NEUTRAL"
	case CycleEarlyBullish:
		return "EARLY_BULLISH"
	case CycleEarlyBearish:
		return "EARLY_BEARISH"
	default:
		return ""
	}
}

// MarshalJSON encodes CycleUnknown as null and every other cycle as its
// string label.
func (c MarketCycle) MarshalJSON() ([]byte, error) {
	if c == CycleUnknown {
		return []byte("null"), nil
	}
	return []byte(`"` + c.String() + `"`), nil
}

// UnmarshalJSON decodes null as CycleUnknown and a label as its cycle.
func (c *MarketCycle) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = CycleUnknown
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, cand := range []MarketCycle{CycleBullish, CycleBearish, CycleNeutral, CycleEarlyBullish, CycleEarlyBearish} {
		if cand.String() == s {
			*c = cand
			return nil
		}
	}
	return fmt.Errorf("unknown market cycle %q", s)
}

// Direction is a confirmed breakout direction. The zero value means no
// direction is currently confirmed.
type Direction int8

const (
	DirectionNone Direction = iota
	DirectionBullish
	DirectionBearish
)

func (d Direction) String() string {
	switch d {
	case DirectionBullish:
		return "bullish"
	case DirectionBearish:
		return "bearish"
	default:
		return ""
	}
}

// MarshalJSON encodes DirectionNone as null.
func (d Direction) MarshalJSON() ([]byte, error) {
	if d == DirectionNone {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes null as DirectionNone.
func (d *Direction) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = DirectionNone
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "bullish":
		*d = DirectionBullish
	case "bearish":
		*d = DirectionBearish
	default:
		return fmt.Errorf("unknown direction %q", s)
	}
	return nil
}
