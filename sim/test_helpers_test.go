package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/transmission-sim/transmission-sim/sim/ratefn"
)

// fixedModifier returns the same forecast bound and actual multiplier for everyone.
type fixedModifier struct {
	maximum, actual float64
}

func (m fixedModifier) ForecastMaximum(*Simulator, PersonID) float64 { return m.maximum }
func (m fixedModifier) Actual(*Simulator, PersonID) float64          { return m.actual }

// recordingSink keeps every emitted event in memory.
type recordingSink struct {
	events []SimulationEvent
	closed bool
}

func (s *recordingSink) Emit(ev SimulationEvent) error {
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed = true
	return nil
}

func (s *recordingSink) ofType(typ EventType) []SimulationEvent {
	var out []SimulationEvent
	for _, ev := range s.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func constantGenerator(t *testing.T, rate, duration float64) ratefn.Generator {
	t.Helper()
	gen, err := ratefn.NewConstantGenerator(rate, duration)
	require.NoError(t, err)
	return gen
}

// newTestSimulator builds a Simulator with no horizon and the given people,
// all susceptible.
func newTestSimulator(t *testing.T, cfg Config, people int) (*Simulator, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	if cfg.Sink == nil {
		cfg.Sink = sink
	}
	if cfg.Generator == nil {
		cfg.Generator = constantGenerator(t, 1.0, 5.0)
	}
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	if cfg.Horizon == 0 {
		cfg.NoHorizon = true
	}
	sim, err := NewSimulator(cfg)
	require.NoError(t, err)
	for i := 0; i < people; i++ {
		sim.Population.AddPerson()
	}
	return sim, sink
}

func statusOf(sim *Simulator, person PersonID) InfectionStatus {
	return GetProperty(sim.Population, person, InfectionStatusProperty)
}
