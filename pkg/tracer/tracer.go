package tracer

import (
	"fmt"
	"strings"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/geometry"
)

// ReflectionOffset moves each reflected ray off the surface it left so it
// does not immediately re-hit it
const ReflectionOffset = 1e-4

// Termination says why a chain stopped growing
type Termination int

const (
	Missed             Termination = iota // A ray left the scene without hitting anything
	HitSource                             // The last record is on a sound source
	BounceLimitReached                    // The bounce budget ran out
)

func (t Termination) String() string {
	switch t {
	case Missed:
		return "missed"
	case HitSource:
		return "hit-source"
	case BounceLimitReached:
		return "bounce-limit"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

// MarshalText lets terminations appear by name in JSON output
func (t Termination) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Weighting selects which absorption ordering a chain's records carry
type Weighting int

const (
	WeightForward Weighting = iota // Listener-to-source running product
	WeightReverse                  // Source-to-listener running product
)

func (w Weighting) String() string {
	if w == WeightReverse {
		return "reverse"
	}
	return "forward"
}

// ParseWeighting converts "forward" or "reverse" to a Weighting
func ParseWeighting(s string) (Weighting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward":
		return WeightForward, nil
	case "reverse":
		return WeightReverse, nil
	default:
		return WeightForward, fmt.Errorf("unknown weighting %q (want forward or reverse)", s)
	}
}

// Config controls the bounce loop
type Config struct {
	MaxBounces int       // Reflections traced after the first hit
	Weighting  Weighting // Ordering applied by callers that consume weights
}

// DefaultConfig returns the standard bounce budget of three reflections
func DefaultConfig() Config {
	return Config{
		MaxBounces: 3,
		Weighting:  WeightForward,
	}
}

// ReflectionRecord is one surface hit in a chain with its accumulated weight
type ReflectionRecord struct {
	Hit                geometry.HitInfo `json:"hit"`
	CumulativeRetained float64          `json:"cumulativeRetained"`
}

// Chain holds the ordered hits of one traced ray, nearest to the listener first
type Chain struct {
	Records     []ReflectionRecord `json:"records"`
	Termination Termination        `json:"termination"`
}

// ReflectionTracer follows a ray through mirror reflections until it misses,
// reaches a source, or runs out of bounces
type ReflectionTracer struct {
	intersector *Intersector
	config      Config
}

// NewReflectionTracer creates a tracer over a read-only intersector
func NewReflectionTracer(intersector *Intersector, config Config) *ReflectionTracer {
	if config.MaxBounces < 0 {
		config.MaxBounces = 0
	}
	return &ReflectionTracer{
		intersector: intersector,
		config:      config,
	}
}

// Config returns the tracer configuration
func (rt *ReflectionTracer) Config() Config {
	return rt.config
}

// Trace builds the reflection chain for a single ray.
// The chain holds at most MaxBounces+1 records and its forward weights never
// increase. A zero direction yields an empty Missed chain.
func (rt *ReflectionTracer) Trace(ray core.Ray) Chain {
	direction := ray.Direction.Normalize()
	if direction.IsZero() {
		return Chain{Termination: Missed}
	}
	current := core.NewRay(ray.Origin, direction)

	hit, isHit := rt.intersector.Intersect(current)
	if !isHit {
		return Chain{Termination: Missed}
	}

	records := make([]ReflectionRecord, 0, rt.config.MaxBounces+1)
	cumulative := hit.Material.Retained
	records = append(records, ReflectionRecord{Hit: hit, CumulativeRetained: cumulative})
	if hit.Material.IsSource {
		return Chain{Records: records, Termination: HitSource}
	}

	for bounce := 0; bounce < rt.config.MaxBounces; bounce++ {
		reflected := current.Direction.Reflect(hit.Normal).Normalize()
		current = core.NewRay(hit.Position.Add(reflected.Multiply(ReflectionOffset)), reflected)

		hit, isHit = rt.intersector.Intersect(current)
		if !isHit {
			return Chain{Records: records, Termination: Missed}
		}

		cumulative *= hit.Material.Retained
		records = append(records, ReflectionRecord{Hit: hit, CumulativeRetained: cumulative})
		if hit.Material.IsSource {
			return Chain{Records: records, Termination: HitSource}
		}
	}

	return Chain{Records: records, Termination: BounceLimitReached}
}
