package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/material"
)

func TestNewGroundQuad_ConsistentNormals(t *testing.T) {
	floor := NewGroundQuad(core.NewVec3(0, 0, 0), 10, material.New(0.9))
	if len(floor) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(floor))
	}

	up := core.NewVec3(0, 1, 0)
	for i, tri := range floor {
		if tri.Normal().Subtract(up).Length() > 1e-9 {
			t.Errorf("Triangle %d: expected normal %v, got %v", i, up, tri.Normal())
		}
		if err := tri.Validate(); err != nil {
			t.Errorf("Triangle %d: unexpected error: %v", i, err)
		}
	}

	// Points on either side of the diagonal hit exactly one half each
	for _, p := range []core.Vec3{core.NewVec3(2, 5, -3), core.NewVec3(-2, 5, 3)} {
		ray := core.NewRay(p, core.NewVec3(0, -1, 0))
		hits := 0
		for _, tri := range floor {
			if hit, ok := tri.Hit(ray, NoHit); ok {
				hits++
				if math.Abs(hit.T-5) > 1e-9 {
					t.Errorf("Expected t=5 from %v, got %f", p, hit.T)
				}
			}
		}
		if hits != 1 {
			t.Errorf("Expected exactly one half to be hit from %v, got %d", p, hits)
		}
	}
}

func TestNewRoom_InwardNormals(t *testing.T) {
	center := core.NewVec3(1, 2, 3)
	room := NewRoom(center, core.NewVec3(4, 2, 5), material.Drywall)
	if len(room) != 12 {
		t.Fatalf("Expected 12 triangles, got %d", len(room))
	}

	for i, tri := range room {
		toCenter := center.Subtract(tri.V0)
		if tri.Normal().Dot(toCenter) <= 0 {
			t.Errorf("Triangle %d: normal %v does not face the room center", i, tri.Normal())
		}
		if err := tri.Validate(); err != nil {
			t.Errorf("Triangle %d: unexpected error: %v", i, err)
		}
	}
}

func TestNewBox_OutwardNormals(t *testing.T) {
	center := core.NewVec3(0, 0, 0)
	box := NewBox(center, core.NewVec3(1, 1, 1), material.Wood)

	for i, tri := range box {
		toCenter := center.Subtract(tri.V0)
		if tri.Normal().Dot(toCenter) >= 0 {
			t.Errorf("Triangle %d: normal %v faces the box center", i, tri.Normal())
		}
	}
}

func TestNewRoom_ClosedFromInside(t *testing.T) {
	room := NewRoom(core.Vec3{}, core.NewVec3(2, 2, 2), material.Concrete)
	directions := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(-1, 0, 0),
		core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0),
		core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1),
		core.NewVec3(1, 1, 1).Normalize(),
	}

	for _, dir := range directions {
		ray := core.NewRay(core.NewVec3(0.1, 0.2, 0.3), dir)
		found := false
		for _, tri := range room {
			if _, ok := tri.Hit(ray, NoHit); ok {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Ray toward %v escaped the room", dir)
		}
	}
}
