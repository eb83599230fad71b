package sim

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

// === SimulationKey Tests ===

func TestSimulationKey_Creation(t *testing.T) {
	tests := []struct {
		name string
		seed int64
	}{
		{"positive seed", 42},
		{"negative seed", -1},
		{"max int64", math.MaxInt64},
		{"min int64", math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewSimulationKey(tt.seed)
			if int64(key) != tt.seed {
				t.Errorf("NewSimulationKey(%d) = %d, want %d", tt.seed, key, tt.seed)
			}
		})
	}
}

// === PartitionedRNG Tests ===

func TestPartitionedRNG_DeterministicDerivation(t *testing.T) {
	// GIVEN two RNGs built from the same key
	rng1 := NewPartitionedRNG(NewSimulationKey(42))
	rng2 := NewPartitionedRNG(NewSimulationKey(42))

	// THEN the same stream yields the same sequence
	for i := 0; i < 3; i++ {
		a := rng1.ForStream(StreamForecast).Float64()
		b := rng2.ForStream(StreamForecast).Float64()
		if a != b {
			t.Errorf("value %d: got %v and %v, want identical", i, a, b)
		}
	}
}

func TestPartitionedRNG_StreamIsolation(t *testing.T) {
	// GIVEN one RNG that draws heavily from the contact stream first
	rngA := NewPartitionedRNG(NewSimulationKey(42))
	for i := 0; i < 10; i++ {
		rngA.ForStream(StreamContact).Float64()
	}
	fresh := NewPartitionedRNG(NewSimulationKey(42))

	// THEN the forecast stream is unaffected
	if got, want := rngA.ForStream(StreamForecast).Float64(), fresh.ForStream(StreamForecast).Float64(); got != want {
		t.Errorf("forecast stream shifted by contact draws: got %v, want %v", got, want)
	}
}

func TestPartitionedRNG_DifferentStreamsDiffer(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	if rng.ForStream(StreamForecast).Uint64() == rng.ForStream(StreamTransmission).Uint64() {
		t.Error("distinct streams produced the same first value")
	}
}

func TestPartitionedRNG_CachesInstance(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(7))
	if rng.ForStream(StreamContact) != rng.ForStream(StreamContact) {
		t.Error("ForStream returned a different instance for the same name")
	}
	if rng.Key() != 7 {
		t.Errorf("Key() = %d, want 7", rng.Key())
	}
}

func TestPartitionedRNG_SampleExponentialMean(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	n := 50000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += rng.SampleExponential(StreamForecast, 2.0)
	}
	mean := sum / float64(n)
	if math.Abs(mean-0.5) > 0.01 {
		t.Errorf("Exp(2) sample mean = %.4f, want ≈ 0.5", mean)
	}
}

func TestPartitionedRNG_SampleBernoulliEdges(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(42))
	for i := 0; i < 100; i++ {
		if !rng.SampleBernoulli(StreamForecast, 1.0) {
			t.Fatal("p=1 must always succeed")
		}
		if rng.SampleBernoulli(StreamForecast, 0.0) {
			t.Fatal("p=0 must never succeed")
		}
	}
}

func TestPartitionedRNG_SampleWeightedFrequencies(t *testing.T) {
	// GIVEN weights 0.2 / 0.3 / 0.5
	rng := NewPartitionedRNG(NewSimulationKey(11))
	weights := []float64{0.2, 0.3, 0.5}
	n := 30000
	counts := make([]float64, len(weights))
	for i := 0; i < n; i++ {
		counts[rng.SampleWeighted(StreamPopulation, weights)]++
	}

	// THEN the chi-square statistic is below the 99.9% quantile with 2 dof
	chi2 := 0.0
	for i, w := range weights {
		expected := w * float64(n)
		chi2 += (counts[i] - expected) * (counts[i] - expected) / expected
	}
	limit := distuv.ChiSquared{K: 2}.Quantile(0.999)
	if chi2 > limit {
		t.Errorf("chi-square %.2f exceeds %.2f; counts=%v", chi2, limit, counts)
	}
}

func TestPartitionedRNG_SampleWeightedSkipsZeroWeights(t *testing.T) {
	rng := NewPartitionedRNG(NewSimulationKey(3))
	for i := 0; i < 1000; i++ {
		if got := rng.SampleWeighted(StreamPopulation, []float64{0, 1, 0}); got != 1 {
			t.Fatalf("SampleWeighted chose zero-weight index %d", got)
		}
	}
}
