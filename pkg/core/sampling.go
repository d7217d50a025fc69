package core

import (
	"math/rand"
	randv2 "math/rand/v2"
)

// Sampler provides random sampling for ray generation
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic source
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// NewStreamSampler creates a sampler over a PCG source with a full 128-bit
// state. Distinct (hi, lo) pairs never share a starting state, unlike
// NewSeededSampler whose seeds collide modulo 2^31-1.
func NewStreamSampler(hi, lo uint64) *RandomSampler {
	return NewRandomSampler(rand.New(pcgSource{randv2.NewPCG(hi, lo)}))
}

// pcgSource adapts a PCG generator to the math/rand Source64 interface
type pcgSource struct {
	pcg *randv2.PCG
}

func (s pcgSource) Uint64() uint64  { return s.pcg.Uint64() }
func (s pcgSource) Int63() int64    { return int64(s.pcg.Uint64() >> 1) }
func (s pcgSource) Seed(seed int64) { s.pcg.Seed(uint64(seed), 0) }

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// UniformSymmetric maps a [0,1) sample to [-1, 1)
func UniformSymmetric(u float64) float64 {
	return 2*u - 1
}
