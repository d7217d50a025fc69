package scene

import (
	"errors"
	"fmt"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/geometry"
	"github.com/df07/go-sound-tracer/pkg/material"
)

// ErrUnknownScene is returned when a scene id matches no built-in or file scene
var ErrUnknownScene = errors.New("unknown scene")

// NewTwoSpheresScene creates a sphere-only scene: a source at the origin and
// a larger reflecting sphere between it and the listener
func NewTwoSpheresScene() *Scene {
	s := newEmpty("two-spheres")

	s.AddSource(core.NewVec3(0, 0, 0), 1, 1.0)
	s.AddSphere(core.NewVec3(3, 0, 0), 2, material.New(0.6))

	// Facing the spheres down -X
	s.Listener.Position = core.NewVec3(10, 0, 0)
	s.Listener.Forward = core.NewVec3(-1, 0, 0)

	return s
}

// NewFloorScene creates a single two-triangle floor with a source hovering
// above it
func NewFloorScene() *Scene {
	s := newEmpty("floor")

	s.AddTriangles(geometry.NewGroundQuad(core.NewVec3(0, 0, 0), 20, material.Concrete)...)
	s.AddSource(core.NewVec3(0, 3, 4), 0.75, 1.0)

	s.Listener = s.Listener.MoveTo(core.NewVec3(0, 1.6, 0))

	return s
}

// NewCorridorScene creates two long parallel walls with a source at the far
// end, which produces long chains of wall-to-wall reflections
func NewCorridorScene() *Scene {
	s := newEmpty("corridor")
	s.TracerConfig.MaxBounces = 6

	length := 30.0
	height := 3.0
	halfWidth := 1.5

	// Left wall at x = -halfWidth facing +X
	s.AddTriangles(geometry.NewQuad(
		core.NewVec3(-halfWidth, 0, -length/2),
		core.NewVec3(0, height, 0),
		core.NewVec3(0, 0, length),
		material.Brick,
	)...)
	// Right wall at x = +halfWidth facing -X
	s.AddTriangles(geometry.NewQuad(
		core.NewVec3(halfWidth, 0, -length/2),
		core.NewVec3(0, 0, length),
		core.NewVec3(0, height, 0),
		material.Brick,
	)...)
	// Carpeted floor
	s.AddTriangles(geometry.NewQuad(
		core.NewVec3(-halfWidth, 0, -length/2),
		core.NewVec3(0, 0, length),
		core.NewVec3(2*halfWidth, 0, 0),
		material.Carpet,
	)...)

	s.AddSource(core.NewVec3(0, 1.5, length/2-1), 0.75, 1.0)
	s.Listener = s.Listener.MoveTo(core.NewVec3(0, 1.6, -length/2+2))

	return s
}

// builtinScenes maps built-in scene ids to their constructors
var builtinScenes = map[string]func() *Scene{
	"default":     NewDefaultScene,
	"two-spheres": NewTwoSpheresScene,
	"floor":       NewFloorScene,
	"corridor":    NewCorridorScene,
}

// NewBuiltinScene creates the built-in scene with the given id
func NewBuiltinScene(id string) (*Scene, error) {
	constructor, ok := builtinScenes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, id)
	}
	s := constructor()
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("built-in scene %q: %w", id, err)
	}
	return s, nil
}
