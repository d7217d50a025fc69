// Package listener holds the listener's position and orientation in the scene.
package listener

import (
	"errors"
	"fmt"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidOrientation is returned when forward and up cannot form a basis
var ErrInvalidOrientation = errors.New("forward and up must be non-zero and not parallel")

// Pose is where the listener stands and which way it faces.
// Forward and Up are unit directions; the look-at point is Position+Forward.
type Pose struct {
	Position core.Vec3 `json:"position"`
	Forward  core.Vec3 `json:"forward"`
	Up       core.Vec3 `json:"up"`
}

// Default returns a listener at the origin facing +Z with +Y up
func Default() Pose {
	return Pose{
		Position: core.NewVec3(0, 0, 0),
		Forward:  core.NewVec3(0, 0, 1),
		Up:       core.NewVec3(0, 1, 0),
	}
}

// New creates a pose, normalizing forward and up
func New(position, forward, up core.Vec3) (Pose, error) {
	p := Pose{
		Position: position,
		Forward:  forward.Normalize(),
		Up:       up.Normalize(),
	}
	if err := p.Validate(); err != nil {
		return Pose{}, err
	}
	return p, nil
}

// Validate checks that the orientation vectors span a frame
func (p Pose) Validate() error {
	if p.Forward.IsZero() || p.Up.IsZero() || p.Forward.Cross(p.Up).Length() < 1e-9 {
		return fmt.Errorf("%w: forward %v, up %v", ErrInvalidOrientation, p.Forward, p.Up)
	}
	return nil
}

// MoveTo places the listener at position, keeping the direction it faces
func (p Pose) MoveTo(position core.Vec3) Pose {
	p.Position = position
	return p
}

// Translate moves the listener by offset in world space
func (p Pose) Translate(offset core.Vec3) Pose {
	return p.MoveTo(p.Position.Add(offset))
}

// Yaw turns the listener about its up axis by angle radians.
// Positive angles turn toward the listener's right.
func (p Pose) Yaw(angle float64) Pose {
	q := mgl64.QuatRotate(-angle, toMgl(p.Up).Normalize())
	p.Forward = fromMgl(q.Rotate(toMgl(p.Forward))).Normalize()
	return p
}

// LookAt returns the point one unit in front of the listener
func (p Pose) LookAt() core.Vec3 {
	return p.Position.Add(p.Forward)
}

// Right returns the unit vector to the listener's right
func (p Pose) Right() core.Vec3 {
	return fromMgl(toMgl(p.Forward).Cross(toMgl(p.Up))).Normalize()
}

// Relative expresses a world-space point in the listener's frame as
// (right, up, forward) components
func (p Pose) Relative(point core.Vec3) core.Vec3 {
	d := point.Subtract(p.Position)
	return core.NewVec3(d.Dot(p.Right()), d.Dot(p.Up), d.Dot(p.Forward))
}

// Orientation returns forward followed by up, the layout audio listeners expect
func (p Pose) Orientation() [6]float64 {
	return [6]float64{p.Forward.X, p.Forward.Y, p.Forward.Z, p.Up.X, p.Up.Y, p.Up.Z}
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
