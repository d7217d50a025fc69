package tracer

import (
	"github.com/df07/go-sound-tracer/pkg/core"
)

// minDirectionLength is the shortest draw accepted before normalizing
const minDirectionLength = 1e-9

// RandomRayGenerator produces rays in random directions from a point.
// Direction components are drawn uniformly from [-1, 1] and normalized, so
// the distribution is biased toward the cube diagonals rather than uniform on
// the sphere. A generator is not safe for concurrent use; give each worker
// its own via Derive.
type RandomRayGenerator struct {
	seed    int64
	sampler core.Sampler
}

// NewRandomRayGenerator creates a deterministic generator for the given seed
func NewRandomRayGenerator(seed int64) *RandomRayGenerator {
	return &RandomRayGenerator{
		seed:    seed,
		sampler: core.NewSeededSampler(seed),
	}
}

// NewRandomRayGeneratorFromSampler wraps an existing sampler
func NewRandomRayGeneratorFromSampler(sampler core.Sampler) *RandomRayGenerator {
	return &RandomRayGenerator{sampler: sampler}
}

// RandomRay returns a unit-direction ray from origin
func (g *RandomRayGenerator) RandomRay(origin core.Vec3) core.Ray {
	for {
		s := g.sampler.Get3D()
		dir := core.NewVec3(
			core.UniformSymmetric(s.X),
			core.UniformSymmetric(s.Y),
			core.UniformSymmetric(s.Z),
		)
		if dir.Length() < minDirectionLength {
			continue
		}
		return core.NewRay(origin, dir.Normalize())
	}
}

// Derive returns an independent generator for stream i, reproducible from the
// parent seed alone. The seed and index are mixed separately into the two
// halves of the source state, so no two (seed, i) pairs share a stream.
func (g *RandomRayGenerator) Derive(i int) *RandomRayGenerator {
	hi := splitmix64(uint64(g.seed))
	lo := splitmix64(uint64(i) ^ 0x5851f42d4c957f2d)
	return &RandomRayGenerator{
		seed:    int64(splitmix64(hi ^ lo)),
		sampler: core.NewStreamSampler(hi, lo),
	}
}

// splitmix64 is a bijective 64-bit mix
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
