// Package trace provides forecast decision recording for thinning analysis.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// ForecastRecord captures one forecast evaluation: the hazard the forecast was
// drawn against, the actual hazard when it fired, and the thinning outcome.
type ForecastRecord struct {
	Person       int
	Clock        float64
	ForecastRate float64
	CurrentRate  float64
	Accepted     bool
}

// AcceptanceProbability is CurrentRate/ForecastRate, the probability the
// record had of being accepted.
func (r ForecastRecord) AcceptanceProbability() float64 {
	if r.ForecastRate <= 0 {
		return 0
	}
	if r.CurrentRate >= r.ForecastRate {
		return 1
	}
	return r.CurrentRate / r.ForecastRate
}
