package sim

// InfectiousnessModifier scales a person's intrinsic infectiousness hazard,
// e.g. for interventions or the composition of their surroundings.
//
// ForecastMaximum is evaluated when a forecast is drawn and must bound Actual
// from above for the whole forecast window; Actual is evaluated when the
// forecast fires. A bound that is too low is detected by EvaluateForecast and
// aborts the run.
type InfectiousnessModifier interface {
	ForecastMaximum(sim *Simulator, person PersonID) float64
	Actual(sim *Simulator, person PersonID) float64
}

// Unmodified leaves every hazard at its intrinsic value.
type Unmodified struct{}

func (Unmodified) ForecastMaximum(*Simulator, PersonID) float64 { return 1.0 }
func (Unmodified) Actual(*Simulator, PersonID) float64          { return 1.0 }
