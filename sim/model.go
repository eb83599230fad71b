package sim

import (
	"fmt"

	"github.com/transmission-sim/transmission-sim/sim/params"
	"github.com/transmission-sim/transmission-sim/sim/ratefn"
	"github.com/transmission-sim/transmission-sim/sim/trace"
)

// NewFromParams builds a seeded Simulator ready to Run: the infectiousness
// generator from p.Infectiousness, a StopEvent at p.MaxTime, and a population
// of p.PopulationSize with its initial infections already started.
// tr may be nil to disable forecast tracing.
func NewFromParams(p *params.Params, sink EventSink, tr *trace.SimulationTrace) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	gen, err := ratefn.NewGenerator(p.Infectiousness)
	if err != nil {
		return nil, fmt.Errorf("building infectiousness generator: %w", err)
	}
	sim, err := NewSimulator(Config{
		Horizon:              p.MaxTime,
		Seed:                 p.Seed,
		Generator:            gen,
		RelativeTransmission: p.RelativeTransmission,
		Sink:                 sink,
		Trace:                tr,
	})
	if err != nil {
		return nil, err
	}
	if err := sim.SeedPopulation(p.PopulationSize, p.PInitialIncidence, p.PInitialRecovered); err != nil {
		return nil, err
	}
	return sim, nil
}
