package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// === SimulationKey ===

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical parameters
// MUST produce bit-for-bit identical event streams.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// === Stream Constants ===

const (
	// StreamForecast draws Exp(1) forecast variates and thinning decisions.
	StreamForecast = "forecast"

	// StreamTransmission draws the relative_transmission Bernoulli on contact.
	StreamTransmission = "transmission"

	// StreamContact chooses whom an infectious person contacts.
	StreamContact = "contact"

	// StreamPopulation assigns initial infection states while seeding.
	StreamPopulation = "population"

	// StreamRateFn draws per-person hazard parameters at infection time.
	StreamRateFn = "rate-fn"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG streams.
//
// Each stream is a PCG generator seeded with (masterSeed XOR fnv1a64(name),
// fnv1a64(name)), so adding draws to one stream never shifts another.
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:     key,
		streams: make(map[string]*rand.Rand),
	}
}

// ForStream returns the deterministically-seeded RNG for the named stream.
// The same name always returns the same *rand.Rand instance. Never returns nil.
func (p *PartitionedRNG) ForStream(name string) *rand.Rand {
	if rng, ok := p.streams[name]; ok {
		return rng
	}
	h := fnv1a64(name)
	rng := rand.New(rand.NewPCG(uint64(int64(p.key)^int64(h)), h))
	p.streams[name] = rng
	return rng
}

// SampleExponential draws from Exponential(rate) on the named stream.
func (p *PartitionedRNG) SampleExponential(stream string, rate float64) float64 {
	return p.ForStream(stream).ExpFloat64() / rate
}

// SampleBernoulli returns true with the given probability on the named stream.
// Probabilities >= 1 always succeed; <= 0 never do.
func (p *PartitionedRNG) SampleBernoulli(stream string, probability float64) bool {
	return p.ForStream(stream).Float64() < probability
}

// SampleWeighted returns an index into weights chosen proportionally to its
// weight. Weights must be non-negative with a positive sum.
func (p *PartitionedRNG) SampleWeighted(stream string, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	u := p.ForStream(stream).Float64() * total
	for i, w := range weights {
		if u < w {
			return i
		}
		u -= w
	}
	// Rounding left u at the top edge; fall back to the last non-zero weight.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
