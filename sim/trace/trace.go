package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelForecasts captures every forecast evaluation.
	TraceLevelForecasts TraceLevel = "forecasts"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelForecasts: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// Enabled reports whether records should be collected.
func (c TraceConfig) Enabled() bool {
	return c.Level == TraceLevelForecasts
}

// SimulationTrace collects forecast records during a run.
type SimulationTrace struct {
	Config    TraceConfig
	Forecasts []ForecastRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:    config,
		Forecasts: make([]ForecastRecord, 0),
	}
}

// RecordForecast appends a forecast evaluation record.
func (st *SimulationTrace) RecordForecast(record ForecastRecord) {
	st.Forecasts = append(st.Forecasts, record)
}
