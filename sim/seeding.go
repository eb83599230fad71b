package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// SeedPopulation adds size people and assigns each an initial state by a
// weighted draw on the population stream: recovered with probability
// pRecovered, infectious with probability pIncidence, susceptible otherwise.
// Seeded infections happen at the current time with no infector.
func (sim *Simulator) SeedPopulation(size int, pIncidence, pRecovered float64) error {
	if size < 0 {
		return fmt.Errorf("population size must be non-negative, got %d", size)
	}
	if pIncidence < 0 || pRecovered < 0 || pIncidence+pRecovered > 1 {
		return fmt.Errorf("initial proportions must be non-negative and sum to at most 1, got incidence %v recovered %v",
			pIncidence, pRecovered)
	}
	weights := []float64{pRecovered, pIncidence, math.Max(0, 1-pIncidence-pRecovered)}

	people := make([]PersonID, size)
	for i := range people {
		people[i] = sim.Population.AddPerson()
	}
	if pIncidence+pRecovered == 0 {
		return nil
	}

	var infected, recovered int
	for _, person := range people {
		switch sim.RNG.SampleWeighted(StreamPopulation, weights) {
		case 0:
			if err := sim.Recover(person, nil); err != nil {
				return err
			}
			recovered++
		case 1:
			if err := sim.Infect(person, nil, sim.Clock); err != nil {
				return fmt.Errorf("seeding infection: %w", err)
			}
			infected++
		}
	}
	logrus.Infof("Seeded %d people: %d infectious, %d recovered", size, infected, recovered)
	return nil
}
