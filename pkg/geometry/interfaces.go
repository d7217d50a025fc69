package geometry

import (
	"errors"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/material"
)

var (
	// ErrInvalidRadius is returned for spheres with a zero, negative or non-finite radius
	ErrInvalidRadius = errors.New("sphere radius must be positive and finite")

	// ErrDegenerateTriangle is returned for triangles whose vertices do not span a plane
	ErrDegenerateTriangle = errors.New("triangle is degenerate")
)

// NoHit is the initial search distance used before any primitive has been hit
const NoHit = 1e30

// HitInfo contains information about a ray-primitive intersection.
// It is a snapshot: the material is copied, not referenced.
type HitInfo struct {
	T        float64           `json:"t"`        // Distance along the ray, the nearest-hit selection key
	Position core.Vec3         `json:"position"` // Point of intersection
	Normal   core.Vec3         `json:"normal"`   // Unit surface normal at the intersection
	Material material.Material `json:"material"` // Material of the hit primitive
}

// Primitive is anything the intersector can test a ray against
type Primitive interface {
	// Hit returns the intersection with the smallest valid t not beyond tMax
	Hit(ray core.Ray, tMax float64) (HitInfo, bool)
	// Validate reports construction problems that would break intersection math
	Validate() error
}
