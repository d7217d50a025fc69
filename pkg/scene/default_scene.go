package scene

import (
	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/geometry"
	"github.com/df07/go-sound-tracer/pkg/material"
)

// NewDefaultScene creates a closed drywall room with a speaker sphere in one
// corner and the listener near the middle
func NewDefaultScene() *Scene {
	s := newEmpty("default")

	// 10 x 4 x 10 room with the floor at y=0
	room := geometry.NewRoom(core.NewVec3(0, 2, 0), core.NewVec3(5, 2, 5), material.New(0.7))
	s.AddTriangles(room...)

	// Speaker in the far corner
	s.AddSource(core.NewVec3(3, 1.5, 3), 0.5, 1.0)

	// A wooden crate and a carpeted pillar break up the reflections
	s.AddTriangles(geometry.NewBox(core.NewVec3(-2, 0.5, 2), core.NewVec3(0.75, 0.5, 0.75), material.Wood)...)
	s.AddSphere(core.NewVec3(-2.5, 1, -2.5), 0.8, material.Carpet)

	s.Listener = s.Listener.MoveTo(core.NewVec3(0, 1.6, 0))

	return s
}
