package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_RunsEventsInTimeOrderWithFIFOTies(t *testing.T) {
	// GIVEN callbacks scheduled out of order, two of them at the same time
	sim, _ := newTestSimulator(t, Config{}, 0)
	var order []string
	record := func(name string) func(*Simulator) {
		return func(*Simulator) { order = append(order, name) }
	}
	sim.ScheduleFunc(3.0, record("c"))
	sim.ScheduleFunc(1.0, record("a1"))
	sim.ScheduleFunc(2.0, record("b"))
	sim.ScheduleFunc(1.0, record("a2"))

	// WHEN run
	sim.Run()

	// THEN they execute by time, ties in insertion order
	assert.Equal(t, []string{"a1", "a2", "b", "c"}, order)
	assert.Equal(t, 3.0, sim.Now())
	assert.Equal(t, 0, sim.Pending())
}

func TestSimulator_CallbacksCanScheduleFollowUps(t *testing.T) {
	sim, _ := newTestSimulator(t, Config{}, 0)
	var times []float64
	var tick func(*Simulator)
	tick = func(s *Simulator) {
		times = append(times, s.Now())
		if s.Now() < 3 {
			s.ScheduleFunc(s.Now()+1, tick)
		}
	}
	sim.ScheduleFunc(0, tick)
	sim.Run()
	assert.Equal(t, []float64{0, 1, 2, 3}, times)
}

func TestSimulator_StopHaltsRun(t *testing.T) {
	sim, _ := newTestSimulator(t, Config{}, 0)
	ran := false
	sim.ScheduleFunc(1, func(s *Simulator) { s.Stop() })
	sim.ScheduleFunc(2, func(*Simulator) { ran = true })

	sim.Run()

	assert.False(t, ran)
	assert.True(t, sim.Stopped())
	assert.Equal(t, 1, sim.Pending())
	assert.Equal(t, 1.0, sim.Now())
}

func TestSimulator_HorizonStopsPendingWork(t *testing.T) {
	// GIVEN a horizon at t=10 and work scheduled beyond it
	sim, _ := newTestSimulator(t, Config{Horizon: 10}, 0)
	var ran []float64
	for _, at := range []float64{5, 10, 15} {
		sim.ScheduleFunc(at, func(s *Simulator) { ran = append(ran, s.Now()) })
	}

	// WHEN run
	sim.Run()

	// THEN work before the stop event runs; the equal-time callback was
	// scheduled after the stop event and does not
	assert.Equal(t, []float64{5}, ran)
	assert.Equal(t, 10.0, sim.Now())
	assert.Equal(t, 10.0, sim.Stats.EndTime)
}

func TestSimulator_ScheduleInPastPanics(t *testing.T) {
	sim, _ := newTestSimulator(t, Config{}, 0)
	sim.Clock = 5
	assert.Panics(t, func() { sim.ScheduleFunc(4.9, func(*Simulator) {}) })
	assert.NotPanics(t, func() { sim.ScheduleFunc(5, func(*Simulator) {}) })
}

func TestNewSimulator_Validation(t *testing.T) {
	gen := constantGenerator(t, 1, 1)
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing generator", Config{Seed: 1, NoHorizon: true}},
		{"transmission above one", Config{Seed: 1, Generator: gen, RelativeTransmission: 1.5, NoHorizon: true}},
		{"negative horizon", Config{Seed: 1, Generator: gen, Horizon: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSimulator(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestSimulator_CloseClosesSink(t *testing.T) {
	sim, sink := newTestSimulator(t, Config{}, 0)
	require.NoError(t, sim.Close())
	assert.True(t, sink.closed)
}

type failingSink struct{ emits int }

func (s *failingSink) Emit(SimulationEvent) error {
	s.emits++
	return assert.AnError
}
func (s *failingSink) Close() error { return nil }

func TestSimulator_SinkErrorKeptButStatsStillCount(t *testing.T) {
	sink := &failingSink{}
	sim, _ := newTestSimulator(t, Config{Sink: sink}, 0)

	sim.Emit(SimulationEvent{Type: EventContact, Time: 1})
	sim.Emit(SimulationEvent{Type: EventContact, Time: 2})

	assert.ErrorIs(t, sim.Err(), assert.AnError)
	assert.ErrorIs(t, sim.Close(), assert.AnError)
	assert.Equal(t, 1, sink.emits, "sink is not retried after failing")
	assert.Equal(t, 2, sim.Stats.Contacts)
}
