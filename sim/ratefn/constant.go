package ratefn

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNegativeRate is returned when constructing a rate function with a negative hazard.
	ErrNegativeRate = errors.New("the rate of infection must be non-negative")
	// ErrNegativeDuration is returned when constructing a rate function with a negative duration.
	ErrNegativeDuration = errors.New("the duration of infection must be non-negative")
)

// ConstantRate holds a fixed hazard r for a fixed duration, then drops to 0.
// Waiting times under a constant hazard are exponential.
type ConstantRate struct {
	r        float64 // events per unit time
	duration float64 // time after which the rate becomes 0
}

// NewConstantRate validates the parameters and builds a ConstantRate.
func NewConstantRate(rate, duration float64) (*ConstantRate, error) {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, fmt.Errorf("%w, got %v", ErrNegativeRate, rate)
	}
	if duration < 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w, got %v", ErrNegativeDuration, duration)
	}
	return &ConstantRate{r: rate, duration: duration}, nil
}

func (c *ConstantRate) Rate(t float64) float64 {
	if t > c.duration {
		return 0
	}
	return c.r
}

func (c *ConstantRate) CumRate(t float64) float64 {
	return c.r * math.Min(t, c.duration)
}

func (c *ConstantRate) InverseCumRate(events float64) (float64, bool) {
	if events < 0 {
		return 0, false
	}
	if events == 0 {
		return 0, true
	}
	if c.r == 0 {
		return 0, false
	}
	t := events / c.r
	if t > c.duration {
		return 0, false
	}
	return t, true
}

func (c *ConstantRate) InfectiousDuration() float64 {
	return c.duration
}

func (c *ConstantRate) String() string {
	return fmt.Sprintf("ConstantRate(r=%g, duration=%g)", c.r, c.duration)
}
