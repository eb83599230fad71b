package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp in simulation time units and an Execute method
// that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator)
}

// ScheduledFunc runs an arbitrary callback at a fixed time. It backs
// Simulator.ScheduleFunc for code outside the kernel that needs the scheduler.
type ScheduledFunc struct {
	time float64
	fn   func(*Simulator)
}

// Timestamp returns the scheduled time.
func (e *ScheduledFunc) Timestamp() float64 {
	return e.time
}

// Execute invokes the callback.
func (e *ScheduledFunc) Execute(sim *Simulator) {
	e.fn(sim)
}

// ForecastEvent fires at a forecast transmission time. It carries the hazard
// the forecast was drawn against so the actual hazard can be thinned to it.
type ForecastEvent struct {
	time         float64
	Person       PersonID
	ForecastRate float64
}

// Timestamp returns the forecast time.
func (e *ForecastEvent) Timestamp() float64 {
	return e.time
}

// Execute evaluates the forecast, attempts a transmission if it is accepted,
// and continues the person's forecast loop. A person who recovered before the
// forecast fired ends the loop here.
func (e *ForecastEvent) Execute(sim *Simulator) {
	status := GetProperty(sim.Population, e.Person, InfectionStatusProperty)
	if !status.IsInfectious() {
		logrus.Debugf("<< Forecast for person %d at t=%.4f dropped: %s", e.Person, e.time, status.State)
		return
	}
	if sim.EvaluateForecast(e.Person, e.ForecastRate) {
		sim.InfectionAttempt(e.Person)
	}
	sim.ScheduleForecastLoop(e.Person)
}

// RecoveryEvent moves an infectious person to Recovered at the end of their
// infectious period.
type RecoveryEvent struct {
	time   float64
	Person PersonID
}

// Timestamp returns the recovery time.
func (e *RecoveryEvent) Timestamp() float64 {
	return e.time
}

// Execute recovers the person. Recovery is scheduled exactly once per
// infection, so any failure here is a state-machine defect.
func (e *RecoveryEvent) Execute(sim *Simulator) {
	logrus.Debugf("<< Recovery: person %d at t=%.4f", e.Person, e.time)
	t := e.time
	if err := sim.Recover(e.Person, &t); err != nil {
		panic(fmt.Sprintf("sim: scheduled recovery failed: %v", err))
	}
}

// StopEvent halts the run at the horizon.
type StopEvent struct {
	time float64
}

// Timestamp returns the horizon.
func (e *StopEvent) Timestamp() float64 {
	return e.time
}

// Execute stops the simulator; pending events are left unexecuted.
func (e *StopEvent) Execute(sim *Simulator) {
	logrus.Infof("<< Horizon reached at t=%.4f with %d events pending", e.time, sim.Pending())
	sim.Stop()
}
