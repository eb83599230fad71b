package output

import (
	"errors"

	"github.com/transmission-sim/transmission-sim/sim"
)

// MemorySink keeps every event in memory, in emission order.
type MemorySink struct {
	Events []sim.SimulationEvent
	closed bool
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(ev sim.SimulationEvent) error {
	if s.closed {
		return errors.New("memory sink is closed")
	}
	s.Events = append(s.Events, ev)
	return nil
}

func (s *MemorySink) Close() error {
	s.closed = true
	return nil
}

// OfType returns the buffered events of one type.
func (s *MemorySink) OfType(typ sim.EventType) []sim.SimulationEvent {
	var out []sim.SimulationEvent
	for _, ev := range s.Events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// MultiSink forwards every event to each sink in order.
type MultiSink []sim.EventSink

// Emit stops at the first failing sink.
func (m MultiSink) Emit(ev sim.SimulationEvent) error {
	for _, s := range m {
		if err := s.Emit(ev); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
