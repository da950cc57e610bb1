package model

import "strconv"

// OptFloat is a float64 that may be absent. Indicators use it to keep
// "not enough data yet" distinguishable from a real zero value; a sentinel
// number would conflate the two. The zero value is absent.
type OptFloat struct {
	Value float64
	Valid bool
}

// Some wraps a present value.
func Some(v float64) OptFloat { return OptFloat{Value: v, Valid: true} }

// None is the absent value.
func None() OptFloat { return OptFloat{} }

// MarshalJSON encodes an absent value as null, matching the presentation
// contract for not-yet-computed indicators.
func (f OptFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f.Value, 'f', -1, 64), nil
}

// UnmarshalJSON decodes null as absent and a number as present.
func (f *OptFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = OptFloat{}
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = Some(v)
	return nil
}
