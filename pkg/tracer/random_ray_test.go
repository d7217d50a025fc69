package tracer

import (
	"fmt"
	"math"
	"testing"

	"github.com/df07/go-sound-tracer/pkg/core"
)

// scriptedSampler replays fixed 3D samples
type scriptedSampler struct {
	samples []core.Vec3
	next    int
}

func (s *scriptedSampler) Get1D() float64 { return s.Get3D().X }

func (s *scriptedSampler) Get3D() core.Vec3 {
	v := s.samples[s.next%len(s.samples)]
	s.next++
	return v
}

func TestRandomRay_UnitDirection(t *testing.T) {
	gen := NewRandomRayGenerator(42)
	origin := core.NewVec3(1, 2, 3)

	for i := 0; i < 1000; i++ {
		ray := gen.RandomRay(origin)
		if ray.Origin != origin {
			t.Fatalf("Expected origin %v, got %v", origin, ray.Origin)
		}
		if math.Abs(ray.Direction.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit direction, got length %f", ray.Direction.Length())
		}
	}
}

func TestRandomRay_Deterministic(t *testing.T) {
	a := NewRandomRayGenerator(99)
	b := NewRandomRayGenerator(99)
	c := NewRandomRayGenerator(100)

	differs := false
	for i := 0; i < 20; i++ {
		ra, rb, rc := a.RandomRay(core.Vec3{}), b.RandomRay(core.Vec3{}), c.RandomRay(core.Vec3{})
		if ra != rb {
			t.Fatalf("Ray %d differs for the same seed: %v vs %v", i, ra.Direction, rb.Direction)
		}
		if ra != rc {
			differs = true
		}
	}
	if !differs {
		t.Error("Expected different seeds to produce different rays")
	}
}

func TestRandomRay_RedrawsZeroDirection(t *testing.T) {
	sampler := &scriptedSampler{samples: []core.Vec3{
		core.NewVec3(0.5, 0.5, 0.5), // maps to the zero vector
		core.NewVec3(1, 0.5, 0.5),
	}}
	gen := NewRandomRayGeneratorFromSampler(sampler)

	ray := gen.RandomRay(core.Vec3{})
	if ray.Direction != core.NewVec3(1, 0, 0) {
		t.Errorf("Expected redrawn direction (1,0,0), got %v", ray.Direction)
	}
	if sampler.next != 2 {
		t.Errorf("Expected 2 draws, got %d", sampler.next)
	}
}

func TestRandomRay_Derive(t *testing.T) {
	parent := NewRandomRayGenerator(5)

	first := parent.Derive(3).RandomRay(core.Vec3{})
	again := NewRandomRayGenerator(5).Derive(3).RandomRay(core.Vec3{})
	if first != again {
		t.Errorf("Derived streams are not reproducible: %v vs %v", first.Direction, again.Direction)
	}

	other := parent.Derive(4).RandomRay(core.Vec3{})
	if first == other {
		t.Error("Expected derived streams to differ")
	}

	// Deriving does not advance the parent
	fresh := NewRandomRayGenerator(5).RandomRay(core.Vec3{})
	if parent.RandomRay(core.Vec3{}) != fresh {
		t.Error("Derive advanced the parent stream")
	}
}

func TestRandomRay_DeriveAcrossSeeds(t *testing.T) {
	// A linear seed*k+i mix would make these two the same stream
	a := NewRandomRayGenerator(1).Derive(1000003).RandomRay(core.Vec3{})
	b := NewRandomRayGenerator(2).Derive(0).RandomRay(core.Vec3{})
	if a == b {
		t.Error("Expected seed 1 stream 1000003 to differ from seed 2 stream 0")
	}

	seen := make(map[core.Vec3]string)
	for seed := int64(0); seed < 4; seed++ {
		parent := NewRandomRayGenerator(seed)
		for i := 0; i < 256; i++ {
			dir := parent.Derive(i).RandomRay(core.Vec3{}).Direction
			key := fmt.Sprintf("seed %d stream %d", seed, i)
			if prev, ok := seen[dir]; ok {
				t.Fatalf("%s repeats the first ray of %s", key, prev)
			}
			seen[dir] = key
		}
	}
}

func TestSplitmix64(t *testing.T) {
	seen := make(map[uint64]uint64)
	for x := uint64(0); x < 1000; x++ {
		y := splitmix64(x)
		if prev, ok := seen[y]; ok {
			t.Fatalf("splitmix64(%d) == splitmix64(%d)", x, prev)
		}
		seen[y] = x
	}
	if splitmix64(0) == 0 {
		t.Error("Expected zero to be mixed")
	}
}
