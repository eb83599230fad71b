// Package ratefn provides hazard ("rate") functions over elapsed time since
// a triggering event, the Scaled view used to forecast from an arbitrary
// point in an infection, and the per-entity Registry that stores assigned
// instances by kind.
//
// All times are simulation time units elapsed since the start of the
// function's support (for infectiousness: time since infection).
package ratefn

// RateFn is a hazard function over elapsed time.
//
// Implementations must satisfy:
//   - Rate(t) >= 0, and Rate(t) == 0 for t > InfectiousDuration()
//   - CumRate is the integral of Rate from 0 to t: continuous and non-decreasing
//   - InverseCumRate is the generalized inverse of CumRate
type RateFn interface {
	// Rate returns the instantaneous hazard at elapsed time t (events per unit time).
	Rate(t float64) float64

	// CumRate returns the expected number of events in [0, t].
	CumRate(t float64) float64

	// InverseCumRate returns the smallest t with CumRate(t) == events.
	// ok is false when events exceeds the function's total capacity.
	InverseCumRate(events float64) (t float64, ok bool)

	// InfectiousDuration returns the elapsed time beyond which Rate is 0.
	InfectiousDuration() float64
}

// Scaled is a non-owning view over a base RateFn: the base shifted forward by
// Elapsed, with its output multiplied by Scale.
//
// For example, to forecast the next event for a person infected 2.1 time
// units ago whose infectiousness is at most doubled by their surroundings,
// use NewScaled(base, 2.0, 2.1).InverseCumRate(e).
type Scaled struct {
	Base    RateFn
	Scale   float64 // amplitude multiplier, >= 0
	Elapsed float64 // shift into the base function, >= 0
}

// NewScaled wraps base with the given scale and elapsed shift.
func NewScaled(base RateFn, scale, elapsed float64) Scaled {
	return Scaled{Base: base, Scale: scale, Elapsed: elapsed}
}

func (s Scaled) Rate(t float64) float64 {
	return s.Base.Rate(t+s.Elapsed) * s.Scale
}

func (s Scaled) CumRate(t float64) float64 {
	return (s.Base.CumRate(t+s.Elapsed) - s.Base.CumRate(s.Elapsed)) * s.Scale
}

// InverseCumRate solves in the base's cumulative space, offset by the
// cumulative rate already spent before Elapsed, then shifts back.
func (s Scaled) InverseCumRate(events float64) (float64, bool) {
	if events < 0 {
		return 0, false
	}
	if s.Scale <= 0 {
		if events == 0 {
			return 0, true
		}
		return 0, false
	}
	spent := s.Base.CumRate(s.Elapsed)
	t, ok := s.Base.InverseCumRate(events/s.Scale + spent)
	if !ok {
		return 0, false
	}
	t -= s.Elapsed
	if t < 0 {
		// Rounding in the base inverse can land a hair before Elapsed.
		t = 0
	}
	return t, true
}

// InfectiousDuration is the remaining support; <= 0 means already expired.
func (s Scaled) InfectiousDuration() float64 {
	return s.Base.InfectiousDuration() - s.Elapsed
}
