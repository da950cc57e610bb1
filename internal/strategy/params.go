// Package strategy holds the stateless analytical predicates of the system:
// candle-shape classification, market-cycle classification, and the alert
// rule evaluators.
//
// Every function is a pure function of its inputs. A lookback requirement
// that is not met means the predicate is false or the rule does not fire;
// insufficient data is never an error.
package strategy

// Params holds the rule thresholds and lookbacks. The multipliers and the
// touch tolerance come from the trading playbook this system encodes; they
// are parameters rather than literals so operators can tune them without
// a rebuild.
type Params struct {
	BodyLookback     int     // prior candles averaged for the strong-body test
	PullbackLookback int     // prior candles required for pullback detection
	VolumeLookback   int     // prior candles averaged for the volume test
	BodyFactor       float64 // strong body = body > factor * average body
	VolumeFactor     float64 // high volume = volume > factor * average volume
	TouchTolerance   float64 // early-pullback EMA20 touch band, as a fraction
	EarlyPullback    bool    // enables the early-pullback rule
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{
		BodyLookback:     3,
		PullbackLookback: 2,
		VolumeLookback:   10,
		BodyFactor:       1.5,
		VolumeFactor:     1.2,
		TouchTolerance:   0.0005,
		EarlyPullback:    false,
	}
}

// MinHistory returns the shortest prior-candle history that lets every
// always-on rule evaluate. Below this the monitor is still warming up.
func (p Params) MinHistory() int {
	return p.BodyLookback + p.PullbackLookback + p.VolumeLookback
}
