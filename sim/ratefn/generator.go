package ratefn

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/transmission-sim/transmission-sim/sim/params"
)

// Generator produces a fresh RateFn for a newly infected entity.
type Generator interface {
	// Generate returns a new instance, drawing any per-entity randomness from rng.
	Generate(rng *rand.Rand) (RateFn, error)
}

// ConstantGenerator hands every entity the same ConstantRate.
type ConstantGenerator struct {
	fn *ConstantRate
}

// NewConstantGenerator validates rate and duration once up front.
func NewConstantGenerator(rate, duration float64) (*ConstantGenerator, error) {
	fn, err := NewConstantRate(rate, duration)
	if err != nil {
		return nil, err
	}
	return &ConstantGenerator{fn: fn}, nil
}

func (g *ConstantGenerator) Generate(_ *rand.Rand) (RateFn, error) {
	return g.fn, nil
}

// GammaGenerator draws a per-entity constant hazard and duration from two
// Gamma distributions.
type GammaGenerator struct {
	rate     *params.Gamma
	duration *params.Gamma
}

func (g *GammaGenerator) Generate(rng *rand.Rand) (RateFn, error) {
	return NewConstantRate(g.rate.Sample(rng), g.duration.Sample(rng))
}

// LibraryGenerator picks one curve uniformly at random from a fixed library.
// Curves are immutable, so entities share them.
type LibraryGenerator struct {
	curves []*EmpiricalRate
}

// NewLibraryGenerator wraps a non-empty library.
func NewLibraryGenerator(curves []*EmpiricalRate) (*LibraryGenerator, error) {
	if len(curves) == 0 {
		return nil, fmt.Errorf("empirical library has no curves")
	}
	return &LibraryGenerator{curves: curves}, nil
}

func (g *LibraryGenerator) Generate(rng *rand.Rand) (RateFn, error) {
	return g.curves[rng.IntN(len(g.curves))], nil
}

// Len returns the number of curves in the library.
func (g *LibraryGenerator) Len() int { return len(g.curves) }

// NewGenerator builds the Generator selected by spec.Type. spec should
// already have passed RateFnSpec.Validate; construction errors are still
// returned.
func NewGenerator(spec params.RateFnSpec) (Generator, error) {
	switch spec.Type {
	case params.RateFnConstant:
		gen, err := NewConstantGenerator(spec.Rate, spec.Duration)
		if err != nil {
			return nil, err
		}
		return gen, nil
	case params.RateFnGamma:
		if spec.InfectionRate == nil || spec.InfectionDuration == nil {
			return nil, fmt.Errorf("gamma rate function requires infection_rate and infection_duration")
		}
		rate, err := params.NewGamma(*spec.InfectionRate)
		if err != nil {
			return nil, fmt.Errorf("infection_rate: %w", err)
		}
		duration, err := params.NewGamma(*spec.InfectionDuration)
		if err != nil {
			return nil, fmt.Errorf("infection_duration: %w", err)
		}
		return &GammaGenerator{rate: rate, duration: duration}, nil
	case params.RateFnEmpirical:
		f, err := os.Open(spec.File)
		if err != nil {
			return nil, fmt.Errorf("opening empirical library: %w", err)
		}
		defer f.Close()
		curves, err := LoadEmpiricalLibrary(f, spec.Scale)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", spec.File, err)
		}
		gen, err := NewLibraryGenerator(curves)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", spec.File, err)
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("unknown rate function type %q", spec.Type)
	}
}
