// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/transmission-sim/transmission-sim/sim/ratefn"
	"github.com/transmission-sim/transmission-sim/sim/trace"
)

// queuedEvent pairs an event with its insertion sequence number.
type queuedEvent struct {
	event Event
	seqID int64
}

// EventQueue is a min-heap ordered by (Timestamp, seqID): events at equal
// times run in the order they were scheduled.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type EventQueue []queuedEvent

func (eq EventQueue) Len() int { return len(eq) }
func (eq EventQueue) Less(i, j int) bool {
	if ti, tj := eq[i].event.Timestamp(), eq[j].event.Timestamp(); ti != tj {
		return ti < tj
	}
	return eq[i].seqID < eq[j].seqID
}
func (eq EventQueue) Swap(i, j int) { eq[i], eq[j] = eq[j], eq[i] }

func (eq *EventQueue) Push(x any) {
	*eq = append(*eq, x.(queuedEvent))
}

func (eq *EventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// Config configures a Simulator. Zero-valued optional fields fall back to
// defaults: no horizon, unmodified infectiousness, discarded events.
type Config struct {
	// Horizon is the time of the StopEvent. +Inf or NoHorizon disables it.
	Horizon   float64
	NoHorizon bool
	Seed      int64
	// Generator builds each newly infected person's infectiousness hazard.
	Generator ratefn.Generator
	Modifier  InfectiousnessModifier
	// RelativeTransmission is the probability that contact with a susceptible person infects.
	RelativeTransmission float64
	Sink                 EventSink
	// Trace, when non-nil, records every forecast decision.
	Trace *trace.SimulationTrace
}

// Simulator is the core object that holds simulation time, population state,
// and the event loop.
type Simulator struct {
	Clock   float64
	Horizon float64
	// EventQueue has all pending events: forecasts, recoveries, the horizon stop.
	EventQueue EventQueue
	nextSeqID  int64
	stopped    bool

	Population *Population
	RateFns    *ratefn.Registry[PersonID]
	RNG        *PartitionedRNG
	Stats      *RunStats
	Trace      *trace.SimulationTrace

	generator            ratefn.Generator
	modifier             InfectiousnessModifier
	relativeTransmission float64
	sink                 EventSink
	sinkErr              error
}

// NewSimulator builds an empty Simulator at t=0. A Generator is required.
func NewSimulator(cfg Config) (*Simulator, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("simulator requires an infectiousness generator")
	}
	if cfg.RelativeTransmission < 0 || cfg.RelativeTransmission > 1 || math.IsNaN(cfg.RelativeTransmission) {
		return nil, fmt.Errorf("relative transmission must be between 0 and 1, got %v", cfg.RelativeTransmission)
	}
	horizon := cfg.Horizon
	if cfg.NoHorizon {
		horizon = math.Inf(1)
	}
	if horizon < 0 || math.IsNaN(horizon) {
		return nil, fmt.Errorf("horizon must be non-negative, got %v", horizon)
	}
	modifier := cfg.Modifier
	if modifier == nil {
		modifier = Unmodified{}
	}
	sink := cfg.Sink
	if sink == nil {
		sink = DiscardSink{}
	}

	sim := &Simulator{
		Clock:                0,
		Horizon:              horizon,
		EventQueue:           make(EventQueue, 0),
		Population:           NewPopulation(),
		RateFns:              ratefn.NewRegistry[PersonID](),
		RNG:                  NewPartitionedRNG(NewSimulationKey(cfg.Seed)),
		Stats:                NewRunStats(0),
		Trace:                cfg.Trace,
		generator:            cfg.Generator,
		modifier:             modifier,
		relativeTransmission: cfg.RelativeTransmission,
		sink:                 sink,
	}
	SubscribeToProperty(sim.Population, InfectionStatusProperty, sim.onInfectionStatusChange)
	if !math.IsInf(horizon, 1) {
		sim.Schedule(&StopEvent{time: horizon})
	}
	return sim, nil
}

// Now returns the current simulation time.
func (sim *Simulator) Now() float64 {
	return sim.Clock
}

// Schedule pushes an event into the EventQueue. Events may not be scheduled
// in the past.
func (sim *Simulator) Schedule(ev Event) {
	if ev.Timestamp() < sim.Clock {
		panic(fmt.Sprintf("sim: cannot schedule %T at t=%v before now t=%v", ev, ev.Timestamp(), sim.Clock))
	}
	heap.Push(&sim.EventQueue, queuedEvent{event: ev, seqID: sim.nextSeqID})
	sim.nextSeqID++
}

// ScheduleFunc schedules fn to run at time t.
func (sim *Simulator) ScheduleFunc(t float64, fn func(*Simulator)) {
	sim.Schedule(&ScheduledFunc{time: t, fn: fn})
}

// Pending returns the number of queued events.
func (sim *Simulator) Pending() int {
	return len(sim.EventQueue)
}

// Stop ends the run after the current event.
func (sim *Simulator) Stop() {
	sim.stopped = true
}

// Stopped reports whether Stop was called.
func (sim *Simulator) Stopped() bool {
	return sim.stopped
}

// Run executes events in time order until the queue drains or Stop is called.
func (sim *Simulator) Run() {
	sim.Stats.PopulationSize = sim.Population.Size()
	logrus.Infof("[t=%.4f] Simulation started: %d people, %d events pending", sim.Clock, sim.Population.Size(), sim.Pending())
	for len(sim.EventQueue) > 0 && !sim.stopped {
		qe := heap.Pop(&sim.EventQueue).(queuedEvent)
		sim.Clock = qe.event.Timestamp()
		logrus.Debugf("[t=%.4f] Executing %T", sim.Clock, qe.event)
		qe.event.Execute(sim)
	}
	sim.Stats.EndTime = sim.Clock
	logrus.Infof("[t=%.4f] Simulation ended", sim.Clock)
}

// Emit records ev in Stats and forwards it to the sink. The first sink error
// is kept for Err; later events are still counted.
func (sim *Simulator) Emit(ev SimulationEvent) {
	sim.Stats.Record(ev)
	if sim.sinkErr != nil {
		return
	}
	if err := sim.sink.Emit(ev); err != nil {
		logrus.Errorf("event sink failed at t=%.4f: %v", ev.Time, err)
		sim.sinkErr = fmt.Errorf("emitting %s event: %w", ev.Type, err)
	}
}

// Err returns the first sink error, if any.
func (sim *Simulator) Err() error {
	return sim.sinkErr
}

// Close closes the sink and returns the first error seen during the run or on close.
func (sim *Simulator) Close() error {
	err := sim.sink.Close()
	if sim.sinkErr != nil {
		return sim.sinkErr
	}
	return err
}

// onInfectionStatusChange turns status transitions into output events.
func (sim *Simulator) onInfectionStatusChange(ev PropertyChangeEvent[InfectionStatus]) {
	switch {
	case ev.Current.IsInfectious() && !ev.Previous.IsInfectious():
		t := sim.Clock
		if ev.Current.InfectionTime != nil {
			t = *ev.Current.InfectionTime
		}
		sim.Emit(SimulationEvent{Type: EventInfection, Time: t, PersonID: ev.Person, InfectedBy: ev.Current.InfectedBy})
	case ev.Current.IsRecovered() && ev.Current.RecoveryTime != nil:
		sim.Emit(SimulationEvent{Type: EventRecovery, Time: *ev.Current.RecoveryTime, PersonID: ev.Person})
	}
}
