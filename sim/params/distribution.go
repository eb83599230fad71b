package params

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// GammaSpec parameterizes a Gamma distribution in YAML. Exactly one of Rate or
// Scale must be given alongside Shape.
type GammaSpec struct {
	Shape float64  `yaml:"shape"`
	Rate  *float64 `yaml:"rate,omitempty"`
	Scale *float64 `yaml:"scale,omitempty"`
}

// Validate checks the shape and that exactly one positive rate or scale is set.
func (g *GammaSpec) Validate() error {
	if err := validateFinitePositive("shape", g.Shape); err != nil {
		return err
	}
	switch {
	case g.Rate != nil && g.Scale != nil:
		return fmt.Errorf("exactly one of rate or scale must be set, got both")
	case g.Rate != nil:
		return validateFinitePositive("rate", *g.Rate)
	case g.Scale != nil:
		return validateFinitePositive("scale", *g.Scale)
	default:
		return fmt.Errorf("exactly one of rate or scale must be set, got neither")
	}
}

// Gamma samples positive values from a Gamma distribution.
type Gamma struct {
	spec  GammaSpec
	alpha float64 // shape
	beta  float64 // rate
}

// NewGamma validates spec and builds a Gamma.
func NewGamma(spec GammaSpec) (*Gamma, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	g := &Gamma{spec: spec, alpha: spec.Shape}
	if spec.Rate != nil {
		g.beta = *spec.Rate
	} else {
		g.beta = 1 / *spec.Scale
	}
	return g, nil
}

// GammaShapeRate is shorthand for a shape/rate GammaSpec.
func GammaShapeRate(shape, rate float64) GammaSpec {
	return GammaSpec{Shape: shape, Rate: &rate}
}

// GammaShapeScale is shorthand for a shape/scale GammaSpec.
func GammaShapeScale(shape, scale float64) GammaSpec {
	return GammaSpec{Shape: shape, Scale: &scale}
}

// Sample draws one value using rng as the entropy source.
func (g *Gamma) Sample(rng *rand.Rand) float64 {
	d := distuv.Gamma{Alpha: g.alpha, Beta: g.beta, Src: rng}
	return d.Rand()
}

// Shape returns the shape parameter.
func (g *Gamma) Shape() float64 { return g.alpha }

// Rate returns the rate parameter (1/scale).
func (g *Gamma) Rate() float64 { return g.beta }

// Scale returns the scale parameter (1/rate).
func (g *Gamma) Scale() float64 { return 1 / g.beta }

// Mean returns shape/rate.
func (g *Gamma) Mean() float64 {
	return distuv.Gamma{Alpha: g.alpha, Beta: g.beta}.Mean()
}

// Spec returns the spec the distribution was built from.
func (g *Gamma) Spec() GammaSpec { return g.spec }

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func validateProportion(name string, val float64) error {
	if math.IsNaN(val) || val < 0 || val > 1 {
		return fmt.Errorf("%s must be between 0 and 1, got %f", name, val)
	}
	return nil
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}
