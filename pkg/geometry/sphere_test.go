package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/material"
)

func TestSphere_Hit_Miss(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.New(0.5))
	ray := core.NewRay(core.NewVec3(2, 0, 0), core.NewVec3(0, 1, 0))

	hit, isHit := sphere.Hit(ray, NoHit)
	if isHit {
		t.Errorf("Expected miss, but got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_OutsideAndInside(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.New(0.5))

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedNormal core.Vec3
	}{
		{
			name:           "outside aimed at center hits at d - r",
			rayOrigin:      core.NewVec3(0, 0, 5),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      4.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "inside at center exits at far root",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "inside off center through the center exits at r + dist",
			rayOrigin:      core.NewVec3(0.25, 0, 0),
			rayDirection:   core.NewVec3(-1, 0, 0),
			expectedT:      1.25,
			expectedNormal: core.NewVec3(-1, 0, 0),
		},
		{
			name:           "unnormalized direction still reports parametric t",
			rayOrigin:      core.NewVec3(0, 0, 5),
			rayDirection:   core.NewVec3(0, 0, -2),
			expectedT:      2.0,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(tt.rayOrigin, tt.rayDirection)
			hit, isHit := sphere.Hit(ray, NoHit)

			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}

			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}

			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}

			if math.Abs(hit.Position.Distance(sphere.Center)-sphere.Radius) > 1e-9 {
				t.Errorf("Expected hit position on surface, got %v", hit.Position)
			}
		})
	}
}

func TestSphere_Hit_BehindOrigin(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.New(0.5))
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1))

	if hit, isHit := sphere.Hit(ray, NoHit); isHit {
		t.Errorf("Expected miss for sphere behind the ray, got hit at t=%f", hit.T)
	}
}

func TestSphere_Hit_Bounds(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.New(0.5))
	ray := core.NewRay(core.NewVec3(0, 0, 2), core.NewVec3(0, 0, -1))

	if hit, isHit := sphere.Hit(ray, 0.5); isHit {
		t.Errorf("Expected miss due to tMax bound, but got hit at t=%f", hit.T)
	}

	// The bound is inclusive
	hit, isHit := sphere.Hit(ray, 1.0)
	if !isHit || hit.T != 1.0 {
		t.Errorf("Expected hit at the tMax bound, got hit=%t t=%f", isHit, hit.T)
	}
}

func TestSphere_Hit_Tangent(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.New(0.5))
	ray := core.NewRay(core.NewVec3(1, 0, 2), core.NewVec3(0, 0, -1))

	first, firstHit := sphere.Hit(ray, NoHit)
	second, secondHit := sphere.Hit(ray, NoHit)
	if firstHit != secondHit || first != second {
		t.Errorf("Expected tangent result to be stable, got %v/%t then %v/%t", first, firstHit, second, secondHit)
	}
	if firstHit && first.Position.Subtract(core.NewVec3(1, 0, 0)).Length() > 1e-6 {
		t.Errorf("Expected tangent point (1,0,0), got %v", first.Position)
	}
}

func TestSphere_Hit_MaterialIsCopied(t *testing.T) {
	sphere := NewSphere(core.NewVec3(0, 0, 0), 1.0, material.NewSource(0.8))
	ray := core.NewRay(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1))

	hit, isHit := sphere.Hit(ray, NoHit)
	if !isHit {
		t.Fatal("Expected hit")
	}
	sphere.Material.Retained = 0.1
	if hit.Material.Retained != 0.8 || !hit.Material.IsSource {
		t.Errorf("Expected hit to keep a snapshot of the material, got %+v", hit.Material)
	}
}

func TestSphere_Validate(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		ok     bool
	}{
		{"positive", 1.5, true},
		{"zero", 0, false},
		{"negative", -1, false},
		{"infinite", math.Inf(1), false},
		{"NaN", math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSphere(core.Vec3{}, tt.radius, material.New(1)).Validate()
			if tt.ok && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidRadius) {
				t.Errorf("Expected ErrInvalidRadius, got %v", err)
			}
		})
	}

	err := NewSphere(core.Vec3{}, 1, material.New(2)).Validate()
	if !errors.Is(err, material.ErrRetainedOutOfRange) {
		t.Errorf("Expected material error to be wrapped, got %v", err)
	}
}
