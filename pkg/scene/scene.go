package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/geometry"
	"github.com/df07/go-sound-tracer/pkg/listener"
	"github.com/df07/go-sound-tracer/pkg/material"
	"github.com/df07/go-sound-tracer/pkg/tracer"
)

// Scene contains the surfaces sound can reflect from and where the listener
// starts. A scene is read-only once tracing begins.
type Scene struct {
	Name         string
	Spheres      []*geometry.Sphere   // Sphere primitives, sources included
	Triangles    []*geometry.Triangle // Triangle primitives; empty for sphere-only scenes
	Listener     listener.Pose        // Starting listener pose
	TracerConfig tracer.Config        // Bounce budget and weighting
}

// New creates a scene and validates every primitive
func New(name string, spheres []*geometry.Sphere, triangles []*geometry.Triangle, pose listener.Pose, config tracer.Config) (*Scene, error) {
	s := &Scene{
		Name:         name,
		Spheres:      spheres,
		Triangles:    triangles,
		Listener:     pose,
		TracerConfig: config,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// newEmpty creates an unvalidated scene with the default listener and tracer config
func newEmpty(name string) *Scene {
	return &Scene{
		Name:         name,
		Spheres:      make([]*geometry.Sphere, 0),
		Triangles:    make([]*geometry.Triangle, 0),
		Listener:     listener.Default(),
		TracerConfig: tracer.DefaultConfig(),
	}
}

// Validate reports every invalid primitive, joined into one error
func (s *Scene) Validate() error {
	var errs []error
	for i, sphere := range s.Spheres {
		if err := sphere.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sphere %d: %w", i, err))
		}
	}
	for i, triangle := range s.Triangles {
		if err := triangle.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("triangle %d: %w", i, err))
		}
	}
	if err := s.Listener.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("listener: %w", err))
	}
	if s.TracerConfig.MaxBounces < 0 {
		errs = append(errs, fmt.Errorf("max bounces must not be negative, got %d", s.TracerConfig.MaxBounces))
	}
	return errors.Join(errs...)
}

// AddSphere adds a reflecting or source sphere
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.Spheres = append(s.Spheres, geometry.NewSphere(center, radius, mat))
}

// AddSource adds a sound-emitting sphere
func (s *Scene) AddSource(center core.Vec3, radius, retained float64) {
	s.AddSphere(center, radius, material.NewSource(retained))
}

// AddTriangles adds already-built triangles such as a quad or room
func (s *Scene) AddTriangles(triangles ...*geometry.Triangle) {
	s.Triangles = append(s.Triangles, triangles...)
}

// Intersector returns an intersector over the scene's primitives
func (s *Scene) Intersector() *tracer.Intersector {
	return tracer.NewIntersector(s.Spheres, s.Triangles)
}

// Tracer returns a reflection tracer over the scene using its own config
func (s *Scene) Tracer() *tracer.ReflectionTracer {
	return tracer.NewReflectionTracer(s.Intersector(), s.TracerConfig)
}

// GetPrimitiveCount returns the total number of primitives in the scene
func (s *Scene) GetPrimitiveCount() int {
	return len(s.Spheres) + len(s.Triangles)
}

// SourceCount returns the number of sound-emitting spheres
func (s *Scene) SourceCount() int {
	count := 0
	for _, sphere := range s.Spheres {
		if sphere.Material.IsSource {
			count++
		}
	}
	return count
}
