package geometry

import (
	"fmt"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/material"
)

// TriangleEpsilon is the parallel-ray and minimum-distance threshold for triangle hits
const TriangleEpsilon = 1e-7

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3         // The three vertices
	Material   material.Material // Material of the triangle
	normal     core.Vec3         // Cached normal vector
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, material material.Material) *Triangle {
	t := &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: material,
	}

	t.computeNormal()

	return t
}

// computeNormal calculates and caches the triangle's normal vector
func (t *Triangle) computeNormal() {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	// Flat normal from the winding order; not interpolated
	t.normal = edge1.Cross(edge2).Normalize()
}

// Validate rejects degenerate (zero-area) triangles and invalid materials
func (t *Triangle) Validate() error {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	if edge1.Cross(edge2).Length() < 1e-12 {
		return fmt.Errorf("%w: vertices %v %v %v", ErrDegenerateTriangle, t.V0, t.V1, t.V2)
	}
	if err := t.Material.Validate(); err != nil {
		return fmt.Errorf("triangle %v %v %v: %w", t.V0, t.V1, t.V2, err)
	}
	return nil
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMax float64) (HitInfo, bool) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// Ray lies in (or parallel to) the triangle's plane
	if a > -TriangleEpsilon && a < TriangleEpsilon {
		return HitInfo{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return HitInfo{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return HitInfo{}, false
	}

	tParam := f * edge2.Dot(q)
	if tParam <= TriangleEpsilon || tParam >= tMax {
		return HitInfo{}, false
	}

	return HitInfo{
		T:        tParam,
		Position: ray.At(tParam),
		Normal:   t.normal,
		Material: t.Material,
	}, true
}

// Normal returns the triangle's normal vector
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}
