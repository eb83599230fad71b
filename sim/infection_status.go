package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInfectious is returned when an operation needs an infectious person.
	ErrNotInfectious = errors.New("person is not infectious")
	// ErrAlreadyRecovered is returned when recovering a person who already recovered.
	ErrAlreadyRecovered = errors.New("person has already recovered")
	// ErrNotSusceptible is returned when infecting a person who is not susceptible.
	ErrNotSusceptible = errors.New("person is not susceptible")
)

// InfectionState is the tag of an InfectionStatus.
type InfectionState int

const (
	Susceptible InfectionState = iota
	Infectious
	Recovered
)

func (s InfectionState) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Infectious:
		return "infectious"
	case Recovered:
		return "recovered"
	default:
		return fmt.Sprintf("InfectionState(%d)", int(s))
	}
}

// InfectionStatus is a person's position in the susceptible → infectious →
// recovered lifecycle. Optional metadata is nil when unknown: people seeded as
// recovered carry none.
//
// People never return to Susceptible. The only transitions are NewInfectious
// (from Susceptible, via Simulator.Infect) and ToRecovered (from Infectious).
type InfectionStatus struct {
	State         InfectionState
	InfectionTime *float64
	InfectedBy    *PersonID
	RecoveryTime  *float64
}

// InfectionStatusProperty holds every person's InfectionStatus. The zero
// value is Susceptible.
var InfectionStatusProperty = NewProperty("infection-status", InfectionStatus{State: Susceptible})

// NewInfectious returns an Infectious status.
func NewInfectious(infectionTime *float64, infectedBy *PersonID) InfectionStatus {
	return InfectionStatus{State: Infectious, InfectionTime: infectionTime, InfectedBy: infectedBy}
}

// SeededRecovered returns a Recovered status with no infection metadata, for
// people who start a run already immune.
func SeededRecovered() InfectionStatus {
	return InfectionStatus{State: Recovered}
}

// ToRecovered transitions Infectious → Recovered, carrying infection metadata
// forward.
func (s InfectionStatus) ToRecovered(recoveryTime float64) (InfectionStatus, error) {
	switch s.State {
	case Infectious:
		return InfectionStatus{
			State:         Recovered,
			InfectionTime: s.InfectionTime,
			InfectedBy:    s.InfectedBy,
			RecoveryTime:  &recoveryTime,
		}, nil
	case Recovered:
		return s, ErrAlreadyRecovered
	default:
		return s, fmt.Errorf("%w: cannot recover a %s person", ErrNotInfectious, s.State)
	}
}

// State predicates.
func (s InfectionStatus) IsSusceptible() bool { return s.State == Susceptible }
func (s InfectionStatus) IsInfectious() bool  { return s.State == Infectious }
func (s InfectionStatus) IsRecovered() bool   { return s.State == Recovered }

// InState is a Query constraint on the infection state tag.
func InState(state InfectionState) Constraint {
	return MatchFunc(InfectionStatusProperty, state.String(), func(s InfectionStatus) bool {
		return s.State == state
	})
}
