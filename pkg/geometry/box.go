package geometry

import (
	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/material"
)

// NewRoom creates the six walls of an axis-aligned room as 12 triangles whose
// normals face into the room.
// halfSize holds half-extents, so a halfSize of (1,1,1) creates a 2x2x2 room.
func NewRoom(center, halfSize core.Vec3, material material.Material) []*Triangle {
	return boxFaces(center, halfSize, material, true)
}

// NewBox creates a closed axis-aligned box as 12 triangles whose normals face
// outward, for obstacles placed inside a room.
func NewBox(center, halfSize core.Vec3, material material.Material) []*Triangle {
	return boxFaces(center, halfSize, material, false)
}

// boxFaces generates the faces of a box; each face is a corner and two edge
// vectors ordered so that u × v points inward
func boxFaces(center, halfSize core.Vec3, material material.Material, inward bool) []*Triangle {
	lo := center.Subtract(halfSize)
	hi := center.Add(halfSize)
	size := halfSize.Multiply(2)

	x := core.NewVec3(size.X, 0, 0)
	y := core.NewVec3(0, size.Y, 0)
	z := core.NewVec3(0, 0, size.Z)

	faces := []struct {
		corner core.Vec3
		u, v   core.Vec3
	}{
		{lo, z, x},                             // Floor (y = lo.Y), inward +Y
		{core.NewVec3(lo.X, hi.Y, lo.Z), x, z}, // Ceiling (y = hi.Y), inward -Y
		{lo, y, z},                             // Left (x = lo.X), inward +X
		{core.NewVec3(hi.X, lo.Y, lo.Z), z, y}, // Right (x = hi.X), inward -X
		{lo, x, y},                             // Back (z = lo.Z), inward +Z
		{core.NewVec3(lo.X, lo.Y, hi.Z), y, x}, // Front (z = hi.Z), inward -Z
	}

	triangles := make([]*Triangle, 0, 12)
	for _, f := range faces {
		u, v := f.u, f.v
		if !inward {
			u, v = v, u
		}
		triangles = append(triangles, NewQuad(f.corner, u, v, material)...)
	}
	return triangles
}
