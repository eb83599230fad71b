// Package params defines the run parameters of a transmission simulation,
// their defaults and validators, and strict YAML loading.
//
// Every field is described once in a table of (name, default, validator)
// entries; Default and Validate walk that table, so adding a parameter means
// adding one entry.
package params

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Rate-function generator types accepted by RateFnSpec.Type.
const (
	RateFnConstant  = "constant"
	RateFnGamma     = "gamma"
	RateFnEmpirical = "empirical"
)

// Trace levels accepted by Params.TraceLevel.
const (
	TraceLevelNone      = "none"
	TraceLevelForecasts = "forecasts"
)

var (
	validRateFnTypes = map[string]bool{RateFnConstant: true, RateFnGamma: true, RateFnEmpirical: true}
	validTraceLevels = map[string]bool{"": true, TraceLevelNone: true, TraceLevelForecasts: true}
)

// RateFnSpec selects how each newly infected person's infectiousness hazard is built.
type RateFnSpec struct {
	// Type is one of "constant", "gamma", "empirical".
	Type string `yaml:"type"`

	// constant: fixed hazard and duration shared by everyone.
	Rate     float64 `yaml:"rate,omitempty"`
	Duration float64 `yaml:"duration,omitempty"`

	// gamma: per-person constant hazard with rate and duration drawn from Gamma distributions.
	InfectionRate     *GammaSpec `yaml:"infection_rate,omitempty"`
	InfectionDuration *GammaSpec `yaml:"infection_duration,omitempty"`

	// empirical: library of relative hazard curves (CSV columns id,time,value)
	// converted to absolute rates by Scale.
	File  string  `yaml:"file,omitempty"`
	Scale float64 `yaml:"scale,omitempty"`
}

// Validate checks the fields relevant to Type.
func (s *RateFnSpec) Validate() error {
	if !validRateFnTypes[s.Type] {
		return fmt.Errorf("unknown rate function type %q; valid: constant, gamma, empirical", s.Type)
	}
	switch s.Type {
	case RateFnConstant:
		if err := validateFiniteNonNegative("rate", s.Rate); err != nil {
			return err
		}
		return validateFiniteNonNegative("duration", s.Duration)
	case RateFnGamma:
		if s.InfectionRate == nil || s.InfectionDuration == nil {
			return fmt.Errorf("gamma rate function requires infection_rate and infection_duration")
		}
		if err := s.InfectionRate.Validate(); err != nil {
			return fmt.Errorf("infection_rate: %w", err)
		}
		if err := s.InfectionDuration.Validate(); err != nil {
			return fmt.Errorf("infection_duration: %w", err)
		}
	case RateFnEmpirical:
		if s.File == "" {
			return fmt.Errorf("empirical rate function requires a file")
		}
		return validateFiniteNonNegative("scale", s.Scale)
	}
	return nil
}

// Params holds everything a run needs.
type Params struct {
	// The number of people in the population.
	PopulationSize int `yaml:"population_size"`
	// Proportion of the population infectious at t=0, e.g. 0.1 means 10%.
	PInitialIncidence float64 `yaml:"p_initial_incidence"`
	// Proportion of the population recovered (fully immune) at t=0.
	PInitialRecovered float64 `yaml:"p_initial_recovered"`
	// Simulation stops at this time even if events are still pending.
	MaxTime float64 `yaml:"max_time"`
	// Master seed for every RNG stream. Must be non-zero.
	Seed int64 `yaml:"seed"`
	// How infectiousness hazards are generated.
	Infectiousness RateFnSpec `yaml:"infectiousness"`
	// Probability that a contact with a susceptible person results in infection.
	RelativeTransmission float64 `yaml:"relative_transmission"`
	// Directory for events.jsonl.
	OutputDir string `yaml:"output_dir"`
	// "none" (default) or "forecasts" to record every forecast decision.
	TraceLevel string `yaml:"trace_level"`
}

type field struct {
	name       string
	setDefault func(p *Params)
	validate   func(p *Params) error
}

var fields = []field{
	{
		name:       "population_size",
		setDefault: func(p *Params) { p.PopulationSize = 1000 },
		validate: func(p *Params) error {
			if p.PopulationSize <= 0 {
				return fmt.Errorf("population_size must be greater than 0, got %d", p.PopulationSize)
			}
			return nil
		},
	},
	{
		name:       "p_initial_incidence",
		setDefault: func(p *Params) { p.PInitialIncidence = 0.01 },
		validate:   func(p *Params) error { return validateProportion("p_initial_incidence", p.PInitialIncidence) },
	},
	{
		name:       "p_initial_recovered",
		setDefault: func(p *Params) { p.PInitialRecovered = 0 },
		validate:   func(p *Params) error { return validateProportion("p_initial_recovered", p.PInitialRecovered) },
	},
	{
		name:       "max_time",
		setDefault: func(p *Params) { p.MaxTime = 100 },
		validate:   func(p *Params) error { return validateFiniteNonNegative("max_time", p.MaxTime) },
	},
	{
		name:       "seed",
		setDefault: func(p *Params) { p.Seed = 42 },
		validate: func(p *Params) error {
			if p.Seed == 0 {
				return fmt.Errorf("seed must be non-zero")
			}
			return nil
		},
	},
	{
		name: "infectiousness",
		setDefault: func(p *Params) {
			p.Infectiousness = RateFnSpec{Type: RateFnConstant, Rate: 1.0, Duration: 5.0}
		},
		validate: func(p *Params) error { return p.Infectiousness.Validate() },
	},
	{
		name:       "relative_transmission",
		setDefault: func(p *Params) { p.RelativeTransmission = 1.0 },
		validate: func(p *Params) error {
			return validateProportion("relative_transmission", p.RelativeTransmission)
		},
	},
	{
		name:       "output_dir",
		setDefault: func(p *Params) { p.OutputDir = "output" },
		validate:   func(p *Params) error { return nil },
	},
	{
		name:       "trace_level",
		setDefault: func(p *Params) { p.TraceLevel = TraceLevelNone },
		validate: func(p *Params) error {
			if !validTraceLevels[p.TraceLevel] {
				return fmt.Errorf("unknown trace_level %q; valid: none, forecasts", p.TraceLevel)
			}
			return nil
		},
	},
}

// FieldNames lists every parameter in declaration order.
func FieldNames() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// Default returns a Params with every field at its default value.
func Default() *Params {
	p := &Params{}
	for _, f := range fields {
		f.setDefault(p)
	}
	return p
}

// Validate runs every field validator, then the cross-field checks.
func (p *Params) Validate() error {
	for _, f := range fields {
		if err := f.validate(p); err != nil {
			return fmt.Errorf("validation failed for parameter %s: %w", f.name, err)
		}
	}
	if total := p.PInitialIncidence + p.PInitialRecovered; total > 1.0 {
		return fmt.Errorf("p_initial_incidence + p_initial_recovered must be at most 1, got %.3f", total)
	}
	return nil
}

// Parse decodes YAML onto the defaults and validates the result. Fields
// absent from the document keep their defaults; unknown keys are rejected.
func Parse(r io.Reader) (*Params, error) {
	p := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing parameters: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads and parses a YAML parameter file.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading parameters: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// String renders the parameters as YAML for logging.
func (p *Params) String() string {
	out, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Sprintf("%+v", *p)
	}
	return string(out)
}
