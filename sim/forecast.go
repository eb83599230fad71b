package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/transmission-sim/transmission-sim/sim/ratefn"
	"github.com/transmission-sim/transmission-sim/sim/trace"
)

// ForecastTolerance absorbs floating-point drift between the hazard a
// forecast was drawn against and the hazard recomputed when it fires.
const ForecastTolerance = 1e-10

// Forecast is a provisional next transmission: Delay after now, drawn against
// hazard Rate.
type Forecast struct {
	Delay float64
	Rate  float64
}

// GetForecast draws the next candidate transmission for an infectious person.
//
// The person's hazard is shifted by the time they have already been
// infectious and scaled by the modifier's forecast maximum; the delay is the
// inverse cumulative hazard of an Exp(1) draw. ok is false when the remaining
// hazard cannot produce another event.
func (sim *Simulator) GetForecast(person PersonID) (f Forecast, ok bool, err error) {
	elapsed, err := sim.ElapsedInfectiousTime(person)
	if err != nil {
		return Forecast{}, false, err
	}
	scale := sim.modifier.ForecastMaximum(sim, person)
	scaled := ratefn.NewScaled(sim.infectiousness(person), scale, elapsed)

	e := sim.RNG.SampleExponential(StreamForecast, 1.0)
	delay, ok := scaled.InverseCumRate(e)
	if !ok {
		return Forecast{}, false, nil
	}
	rate := scaled.Rate(delay)
	if rate <= 0 {
		return Forecast{}, false, nil
	}
	return Forecast{Delay: delay, Rate: rate}, true, nil
}

// ScheduleForecastLoop schedules the person's next ForecastEvent, or does
// nothing if they are no longer infectious or their hazard is exhausted. The
// loop continues because every ForecastEvent calls back in here.
func (sim *Simulator) ScheduleForecastLoop(person PersonID) {
	f, ok, err := sim.GetForecast(person)
	if err != nil {
		logrus.Debugf("[t=%.4f] Forecast loop for person %d ended: %v", sim.Clock, person, err)
		return
	}
	if !ok {
		logrus.Debugf("[t=%.4f] Forecast loop for person %d ended: hazard exhausted", sim.Clock, person)
		return
	}
	sim.Schedule(&ForecastEvent{time: sim.Clock + f.Delay, Person: person, ForecastRate: f.Rate})
}

// EvaluateForecast decides whether a forecast drawn against forecastRate
// becomes a transmission, by comparing it with the person's actual hazard now.
//
// The actual hazard is the intrinsic hazard at the elapsed infectious time,
// re-derived from the infection time, multiplied by the modifier's actual
// value. Equal rates always accept; otherwise the forecast is accepted with
// probability current/forecastRate. An actual hazard above forecastRate +
// ForecastTolerance means the forecast bound was wrong and panics.
func (sim *Simulator) EvaluateForecast(person PersonID, forecastRate float64) bool {
	elapsed, err := sim.ElapsedInfectiousTime(person)
	if err != nil {
		panic(fmt.Sprintf("sim: evaluating forecast: %v", err))
	}
	actual := sim.modifier.Actual(sim, person)
	current := ratefn.NewScaled(sim.infectiousness(person), actual, 0).Rate(elapsed)

	if current > forecastRate+ForecastTolerance {
		panic(fmt.Sprintf("sim: person %d actual hazard %v exceeds forecast hazard %v at t=%v",
			person, current, forecastRate, sim.Clock))
	}

	accepted := current == forecastRate || sim.RNG.SampleBernoulli(StreamForecast, current/forecastRate)

	if sim.Trace != nil {
		sim.Trace.RecordForecast(trace.ForecastRecord{
			Person:       int(person),
			Clock:        sim.Clock,
			ForecastRate: forecastRate,
			CurrentRate:  current,
			Accepted:     accepted,
		})
	}
	if !accepted {
		logrus.Debugf("[t=%.4f] Forecast for person %d rejected (%.4g / %.4g)", sim.Clock, person, current, forecastRate)
		sim.Emit(SimulationEvent{Type: EventForecastRejected, Time: sim.Clock, PersonID: person})
	}
	return accepted
}
