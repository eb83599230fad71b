package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/transmission-sim/transmission-sim/sim/ratefn"
)

// Infect makes a susceptible target infectious at infectionTime.
//
// It assigns the target a fresh infectiousness hazard from the configured
// generator, records the new status (raising the change notification that
// emits the Infection event), starts the forecast loop, and schedules recovery
// at infectionTime + the hazard's infectious duration. infector is nil for
// seeded infections. A backdated infection whose recovery would already lie
// before now is rejected and leaves the target untouched.
func (sim *Simulator) Infect(target PersonID, infector *PersonID, infectionTime float64) error {
	status := GetProperty(sim.Population, target, InfectionStatusProperty)
	if !status.IsSusceptible() {
		return fmt.Errorf("%w: person %d is %s", ErrNotSusceptible, target, status.State)
	}
	if infectionTime > sim.Clock {
		return fmt.Errorf("infection time %v for person %d is after now t=%v", infectionTime, target, sim.Clock)
	}
	fn, err := sim.generator.Generate(sim.RNG.ForStream(StreamRateFn))
	if err != nil {
		return fmt.Errorf("generating infectiousness for person %d: %w", target, err)
	}
	recoveryTime := infectionTime + fn.InfectiousDuration()
	if recoveryTime < sim.Clock {
		return fmt.Errorf("infection of person %d at t=%v would recover at t=%v before now t=%v",
			target, infectionTime, recoveryTime, sim.Clock)
	}
	sim.RateFns.Assign(target, ratefn.Infectiousness, fn)

	SetProperty(sim.Population, target, InfectionStatusProperty, NewInfectious(&infectionTime, infector))
	logrus.Debugf("[t=%.4f] Person %d infected (infectious for %.4f)", infectionTime, target, fn.InfectiousDuration())

	sim.ScheduleForecastLoop(target)
	sim.Schedule(&RecoveryEvent{time: recoveryTime, Person: target})
	return nil
}

// Recover moves person to Recovered.
//
// With a recoveryTime the person must be Infectious; infection metadata is
// carried forward. A nil recoveryTime forces Recovered with no metadata and no
// checks: it exists for seeding people who start the run immune.
func (sim *Simulator) Recover(person PersonID, recoveryTime *float64) error {
	if recoveryTime == nil {
		SetProperty(sim.Population, person, InfectionStatusProperty, SeededRecovered())
		return nil
	}
	status := GetProperty(sim.Population, person, InfectionStatusProperty)
	next, err := status.ToRecovered(*recoveryTime)
	if err != nil {
		return fmt.Errorf("recovering person %d: %w", person, err)
	}
	SetProperty(sim.Population, person, InfectionStatusProperty, next)
	return nil
}

// ElapsedInfectiousTime returns how long person has been infectious as of now.
func (sim *Simulator) ElapsedInfectiousTime(person PersonID) (float64, error) {
	status := GetProperty(sim.Population, person, InfectionStatusProperty)
	if !status.IsInfectious() {
		return 0, fmt.Errorf("%w: person %d is %s", ErrNotInfectious, person, status.State)
	}
	if status.InfectionTime == nil {
		return 0, fmt.Errorf("%w: person %d has no infection time", ErrNotInfectious, person)
	}
	return sim.Clock - *status.InfectionTime, nil
}

// infectiousness returns person's assigned hazard. Every infectious person was
// assigned one in Infect, so a miss is a kernel defect.
func (sim *Simulator) infectiousness(person PersonID) ratefn.RateFn {
	fn, err := sim.RateFns.Lookup(person, ratefn.Infectiousness)
	if err != nil {
		panic(fmt.Sprintf("sim: %v", err))
	}
	return fn
}
