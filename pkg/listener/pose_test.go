package listener

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sound-tracer/pkg/core"
)

func vecNear(a, b core.Vec3) bool {
	return a.Subtract(b).Length() < 1e-9
}

func TestDefault(t *testing.T) {
	p := Default()
	if err := p.Validate(); err != nil {
		t.Fatalf("Default pose is invalid: %v", err)
	}
	if !vecNear(p.Right(), core.NewVec3(-1, 0, 0)) {
		t.Errorf("Expected right (-1,0,0), got %v", p.Right())
	}
	expected := [6]float64{0, 0, 1, 0, 1, 0}
	if p.Orientation() != expected {
		t.Errorf("Expected orientation %v, got %v", expected, p.Orientation())
	}
}

func TestNew(t *testing.T) {
	p, err := New(core.NewVec3(1, 2, 3), core.NewVec3(0, 0, 5), core.NewVec3(0, 2, 0))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !vecNear(p.Forward, core.NewVec3(0, 0, 1)) || !vecNear(p.Up, core.NewVec3(0, 1, 0)) {
		t.Errorf("Expected normalized vectors, got forward %v up %v", p.Forward, p.Up)
	}

	tests := []struct {
		name        string
		forward, up core.Vec3
	}{
		{"zero forward", core.Vec3{}, core.NewVec3(0, 1, 0)},
		{"zero up", core.NewVec3(0, 0, 1), core.Vec3{}},
		{"parallel", core.NewVec3(0, 1, 0), core.NewVec3(0, 3, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(core.Vec3{}, tt.forward, tt.up)
			if !errors.Is(err, ErrInvalidOrientation) {
				t.Errorf("Expected ErrInvalidOrientation, got %v", err)
			}
		})
	}
}

func TestMoveTo_KeepsFacing(t *testing.T) {
	p := Default().Yaw(0.3)
	moved := p.MoveTo(core.NewVec3(4, -1, 2))

	if moved.Position != core.NewVec3(4, -1, 2) {
		t.Errorf("Expected position (4,-1,2), got %v", moved.Position)
	}
	if moved.Forward != p.Forward {
		t.Errorf("Expected forward to be unchanged, got %v", moved.Forward)
	}
	if !vecNear(moved.LookAt().Subtract(moved.Position), p.LookAt().Subtract(p.Position)) {
		t.Error("Expected the look-at offset to move with the listener")
	}
}

func TestTranslate(t *testing.T) {
	p := Default().Translate(core.NewVec3(1, 0, 0)).Translate(core.NewVec3(0, 0, -2))
	if p.Position != core.NewVec3(1, 0, -2) {
		t.Errorf("Expected (1,0,-2), got %v", p.Position)
	}
}

func TestYaw(t *testing.T) {
	tests := []struct {
		name     string
		angle    float64
		expected core.Vec3
	}{
		{"zero", 0, core.NewVec3(0, 0, 1)},
		{"quarter turn right", math.Pi / 2, core.NewVec3(-1, 0, 0)},
		{"quarter turn left", -math.Pi / 2, core.NewVec3(1, 0, 0)},
		{"half turn", math.Pi, core.NewVec3(0, 0, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default().Yaw(tt.angle)
			if !vecNear(p.Forward, tt.expected) {
				t.Errorf("Expected forward %v, got %v", tt.expected, p.Forward)
			}
			if p.Up != Default().Up {
				t.Errorf("Expected up to be unchanged, got %v", p.Up)
			}
		})
	}

	// A quarter turn right faces what used to be the right-hand side
	p := Default()
	if !vecNear(p.Yaw(math.Pi/2).Forward, p.Right()) {
		t.Errorf("Expected positive yaw to turn toward %v", p.Right())
	}
}

func TestRelative(t *testing.T) {
	p := Default().MoveTo(core.NewVec3(1, 1, 1))

	rel := p.Relative(core.NewVec3(1, 1, 4))
	if !vecNear(rel, core.NewVec3(0, 0, 3)) {
		t.Errorf("Expected point straight ahead at (0,0,3), got %v", rel)
	}

	rel = p.Relative(core.NewVec3(-1, 1, 1))
	if !vecNear(rel, core.NewVec3(2, 0, 0)) {
		t.Errorf("Expected point to the right at (2,0,0), got %v", rel)
	}
}
