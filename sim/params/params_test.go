package params

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	p := Default()
	require.NoError(t, p.Validate())
	assert.Equal(t, 1000, p.PopulationSize)
	assert.Equal(t, int64(42), p.Seed)
	assert.Equal(t, RateFnConstant, p.Infectiousness.Type)
	assert.Equal(t, 1.0, p.RelativeTransmission)
}

func TestFieldNames_CoverEveryParameter(t *testing.T) {
	names := FieldNames()
	assert.Equal(t, []string{
		"population_size", "p_initial_incidence", "p_initial_recovered", "max_time", "seed",
		"infectiousness", "relative_transmission", "output_dir", "trace_level",
	}, names)
}

func TestLoad_PartialFile_KeepsDefaults(t *testing.T) {
	// GIVEN a file that sets only two fields
	path := writeTempYAML(t, `
population_size: 250
max_time: 30
`)

	// WHEN loaded
	p, err := Load(path)
	require.NoError(t, err)

	// THEN the given fields are applied and the rest keep defaults
	assert.Equal(t, 250, p.PopulationSize)
	assert.Equal(t, 30.0, p.MaxTime)
	assert.Equal(t, 0.01, p.PInitialIncidence)
	assert.Equal(t, "output", p.OutputDir)
}

func TestLoad_ExplicitZeroIsDistinctFromUnset(t *testing.T) {
	path := writeTempYAML(t, "p_initial_incidence: 0\n")
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.PInitialIncidence)
}

func TestLoad_EmptyFile_ReturnsDefaults(t *testing.T) {
	path := writeTempYAML(t, "")
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
}

func TestLoad_UnknownField_Rejected(t *testing.T) {
	path := writeTempYAML(t, "populaton_size: 10\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "populaton_size")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading parameters")
}

func TestLoad_GammaInfectiousness(t *testing.T) {
	path := writeTempYAML(t, `
infectiousness:
  type: gamma
  infection_rate: {shape: 2.0, rate: 1.0}
  infection_duration: {shape: 3.0, scale: 2.0}
`)
	p, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, p.Infectiousness.InfectionRate)
	require.NotNil(t, p.Infectiousness.InfectionDuration)
	assert.Equal(t, 2.0, *p.Infectiousness.InfectionRate.Rate)
	assert.Equal(t, 2.0, *p.Infectiousness.InfectionDuration.Scale)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
		want   string
	}{
		{"zero population", func(p *Params) { p.PopulationSize = 0 }, "population_size"},
		{"incidence above one", func(p *Params) { p.PInitialIncidence = 1.5 }, "p_initial_incidence"},
		{"negative recovered", func(p *Params) { p.PInitialRecovered = -0.1 }, "p_initial_recovered"},
		{"negative max time", func(p *Params) { p.MaxTime = -1 }, "max_time"},
		{"zero seed", func(p *Params) { p.Seed = 0 }, "seed"},
		{"negative rate", func(p *Params) { p.Infectiousness.Rate = -1 }, "rate must be non-negative"},
		{"negative duration", func(p *Params) { p.Infectiousness.Duration = -1 }, "duration must be non-negative"},
		{"unknown rate type", func(p *Params) { p.Infectiousness.Type = "weibull" }, "unknown rate function type"},
		{"gamma without specs", func(p *Params) { p.Infectiousness = RateFnSpec{Type: RateFnGamma} }, "requires infection_rate"},
		{"empirical without file", func(p *Params) { p.Infectiousness = RateFnSpec{Type: RateFnEmpirical} }, "requires a file"},
		{"transmission above one", func(p *Params) { p.RelativeTransmission = 2 }, "relative_transmission"},
		{"bad trace level", func(p *Params) { p.TraceLevel = "all" }, "trace_level"},
		{"proportions above one", func(p *Params) { p.PInitialIncidence = 0.6; p.PInitialRecovered = 0.5 }, "at most 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestGammaSpec_Validate(t *testing.T) {
	one := 1.0
	assert.NoError(t, (&GammaSpec{Shape: 2, Rate: &one}).Validate())
	assert.Error(t, (&GammaSpec{Shape: 2}).Validate())
	assert.Error(t, (&GammaSpec{Shape: 2, Rate: &one, Scale: &one}).Validate())
	assert.Error(t, (&GammaSpec{Shape: 0, Rate: &one}).Validate())
	assert.Error(t, (&GammaSpec{Shape: math.NaN(), Rate: &one}).Validate())
}

func TestGamma_ShapeRateAndScaleAgree(t *testing.T) {
	g, err := NewGamma(GammaShapeRate(3.0, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 2.0, g.Scale())
	assert.Equal(t, 6.0, g.Mean())

	h, err := NewGamma(GammaShapeScale(3.0, 2.0))
	require.NoError(t, err)
	assert.Equal(t, 0.5, h.Rate())
	assert.Equal(t, g.Mean(), h.Mean())
}

func TestGamma_SampleMeanMatchesParams(t *testing.T) {
	g, err := NewGamma(GammaShapeRate(2.0, 1.0))
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(42, 7))
	n := 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		v := g.Sample(rng)
		require.Greater(t, v, 0.0)
		sum += v
	}
	mean := sum / float64(n)
	if math.Abs(mean-2.0)/2.0 > 0.05 {
		t.Errorf("gamma mean = %.3f, want ≈ 2.0 (within 5%%)", mean)
	}
}

func TestParams_String_IsYAML(t *testing.T) {
	s := Default().String()
	assert.True(t, strings.Contains(s, "population_size: 1000"), s)
}

func TestLoad_ExampleFiles(t *testing.T) {
	for _, name := range []string{"constant.yaml", "gamma.yaml", "empirical.yaml"} {
		t.Run(name, func(t *testing.T) {
			p, err := Load(filepath.Join("..", "..", "examples", name))
			require.NoError(t, err)
			assert.NoError(t, p.Validate())
		})
	}
}
