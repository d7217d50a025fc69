package geometry

import (
	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/material"
)

// NewQuad splits the parallelogram corner, corner+u, corner+u+v, corner+v into
// two triangles. Both halves share the winding, so both normals equal
// normalize(u × v).
func NewQuad(corner, u, v core.Vec3, material material.Material) []*Triangle {
	far := corner.Add(u).Add(v)
	return []*Triangle{
		NewTriangle(corner, corner.Add(u), far, material),
		NewTriangle(corner, far, corner.Add(v), material),
	}
}

// NewGroundQuad creates a horizontal square centered at the given point with
// normal pointing up (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, material material.Material) []*Triangle {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (0,0,size) × (size,0,0) = (0,size²,0) which normalizes to (0,1,0)
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return NewQuad(corner, u, v, material)
}
