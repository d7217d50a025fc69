package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material material.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Validate checks the radius and material
func (s *Sphere) Validate() error {
	if !(s.Radius > 0) || math.IsInf(s.Radius, 0) {
		return fmt.Errorf("%w: got %f", ErrInvalidRadius, s.Radius)
	}
	if err := s.Material.Validate(); err != nil {
		return fmt.Errorf("sphere at %v: %w", s.Center, err)
	}
	return nil
}

// Contains reports whether p lies inside or on the sphere
func (s *Sphere) Contains(p core.Vec3) bool {
	return p.Distance(s.Center) <= s.Radius
}

// Hit tests if a ray intersects with the sphere.
// From outside the sphere the near (facing) root is used; from inside the far
// root is used so rays cast from within a source sphere still leave it.
func (s *Sphere) Hit(ray core.Ray, tMax float64) (HitInfo, bool) {
	// Vector from sphere center to ray origin
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	b := ray.Direction.Dot(oc)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - a*c
	if discriminant < 0 || a == 0 {
		return HitInfo{}, false
	}

	sqrtD := math.Sqrt(discriminant)

	var root float64
	if oc.Length() > s.Radius {
		root = (-b - sqrtD) / a
	} else {
		root = (-b + sqrtD) / a
	}

	if root <= 0 || root > tMax {
		return HitInfo{}, false
	}

	position := ray.At(root)
	return HitInfo{
		T:        root,
		Position: position,
		Normal:   position.Subtract(s.Center).Multiply(1.0 / s.Radius).Normalize(),
		Material: s.Material,
	}, true
}
