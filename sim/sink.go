package sim

// EventType names a kind of SimulationEvent.
type EventType string

const (
	// EventInfection: PersonID became infectious; InfectedBy is nil for seeded infections.
	EventInfection EventType = "infection"
	// EventContact: PersonID (infectious) contacted ContactID.
	EventContact EventType = "contact"
	// EventForecastRejected: a forecast for PersonID was thinned away.
	EventForecastRejected EventType = "forecast_rejected"
	// EventRecovery: PersonID recovered.
	EventRecovery EventType = "recovery"
)

// SimulationEvent is one timestamped domain event, serialized one per line
// in events.jsonl.
type SimulationEvent struct {
	Type       EventType `json:"type"`
	Time       float64   `json:"t"`
	PersonID   PersonID  `json:"person_id"`
	ContactID  *PersonID `json:"contact_id,omitempty"`
	InfectedBy *PersonID `json:"infected_by,omitempty"`
}

// EventSink consumes emitted events. Implementations live in sim/output.
type EventSink interface {
	Emit(ev SimulationEvent) error
	Close() error
}

// DiscardSink drops every event.
type DiscardSink struct{}

func (DiscardSink) Emit(SimulationEvent) error { return nil }
func (DiscardSink) Close() error               { return nil }
