package tracer

import (
	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/geometry"
)

// Intersector finds the nearest surface along a ray by testing every primitive.
// Scenes hold a handful of primitives so there is no acceleration structure.
type Intersector struct {
	Spheres   []*geometry.Sphere
	Triangles []*geometry.Triangle
}

// NewIntersector creates an intersector over the given primitives.
// A nil triangle slice gives sphere-only tracing.
func NewIntersector(spheres []*geometry.Sphere, triangles []*geometry.Triangle) *Intersector {
	return &Intersector{
		Spheres:   spheres,
		Triangles: triangles,
	}
}

// IntersectSpheres returns the nearest sphere hit no farther than tMax
func (in *Intersector) IntersectSpheres(ray core.Ray, tMax float64) (geometry.HitInfo, bool) {
	var closest geometry.HitInfo
	hitAnything := false
	closestSoFar := tMax

	for _, sphere := range in.Spheres {
		if hit, isHit := sphere.Hit(ray, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, hitAnything
}

// IntersectTriangles returns the nearest triangle hit closer than tMax
func (in *Intersector) IntersectTriangles(ray core.Ray, tMax float64) (geometry.HitInfo, bool) {
	var closest geometry.HitInfo
	hitAnything := false
	closestSoFar := tMax

	for _, triangle := range in.Triangles {
		if hit, isHit := triangle.Hit(ray, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, hitAnything
}

// Intersect returns the globally nearest hit over spheres and triangles.
// The best sphere distance bounds the triangle search, so a triangle only
// wins when it is strictly closer.
func (in *Intersector) Intersect(ray core.Ray) (geometry.HitInfo, bool) {
	best, found := in.IntersectSpheres(ray, geometry.NoHit)

	tMax := geometry.NoHit
	if found {
		tMax = best.T
	}
	if hit, isHit := in.IntersectTriangles(ray, tMax); isHit {
		return hit, true
	}

	return best, found
}

// Len returns the number of primitives tested per ray
func (in *Intersector) Len() int {
	return len(in.Spheres) + len(in.Triangles)
}
