package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// InfectionAttempt is what an accepted forecast turns into: the infector
// contacts a uniformly chosen other person, and a susceptible contact is
// infected with probability relative_transmission. It returns the contact
// and whether they were infected.
func (sim *Simulator) InfectionAttempt(infector PersonID) (PersonID, bool) {
	contact, ok := sim.Population.SampleOther(sim.RNG.ForStream(StreamContact), infector)
	if !ok {
		return 0, false
	}
	sim.Emit(SimulationEvent{Type: EventContact, Time: sim.Clock, PersonID: infector, ContactID: &contact})

	if !GetProperty(sim.Population, contact, InfectionStatusProperty).IsSusceptible() {
		return contact, false
	}
	if !sim.RNG.SampleBernoulli(StreamTransmission, sim.relativeTransmission) {
		return contact, false
	}
	by := infector
	if err := sim.Infect(contact, &by, sim.Clock); err != nil {
		panic(fmt.Sprintf("sim: transmission to susceptible contact failed: %v", err))
	}
	logrus.Debugf("[t=%.4f] Person %d infected person %d", sim.Clock, infector, contact)
	return contact, true
}
