package output

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/transmission-sim/transmission-sim/sim"
)

// MetricsSink counts events into Prometheus collectors. Written once at the
// end of a run in the node-exporter textfile format.
type MetricsSink struct {
	gatherer prometheus.Gatherer

	Events     *prometheus.CounterVec
	Infections *prometheus.CounterVec
	SimTime    prometheus.Gauge
}

// NewMetricsSink registers the collectors against reg, defaulting to the
// global registry when nil.
func NewMetricsSink(reg prometheus.Registerer) (*MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	events, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transmission_sim_events_total",
		Help: "Simulation events emitted, labeled by event type.",
	}, []string{"type"}), "transmission_sim_events_total")
	if err != nil {
		return nil, err
	}
	infections, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transmission_sim_infections_total",
		Help: "Infections, labeled by origin: seeded or transmitted.",
	}, []string{"origin"}), "transmission_sim_infections_total")
	if err != nil {
		return nil, err
	}
	simTime, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "transmission_sim_time",
		Help: "Simulated time of the latest emitted event.",
	}), "transmission_sim_time")
	if err != nil {
		return nil, err
	}

	return &MetricsSink{
		gatherer:   gatherer,
		Events:     events,
		Infections: infections,
		SimTime:    simTime,
	}, nil
}

func (m *MetricsSink) Emit(ev sim.SimulationEvent) error {
	m.Events.WithLabelValues(string(ev.Type)).Inc()
	if ev.Type == sim.EventInfection {
		origin := "transmitted"
		if ev.InfectedBy == nil {
			origin = "seeded"
		}
		m.Infections.WithLabelValues(origin).Inc()
	}
	m.SimTime.Set(ev.Time)
	return nil
}

func (m *MetricsSink) Close() error { return nil }

// WriteTextfile writes every gathered metric to path.
func (m *MetricsSink) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
