package material

import (
	"errors"
	"fmt"
)

// ErrRetainedOutOfRange is returned when a retained fraction lies outside [0, 1]
var ErrRetainedOutOfRange = errors.New("retained fraction must be within [0, 1]")

// Material describes how a surface treats sound that reaches it
type Material struct {
	Retained float64 `json:"retained"` // Fraction of energy NOT absorbed on reflection (dampen multiplier)
	IsSource bool    `json:"isSource"` // Surface is an originating sound emitter; hitting it ends a chain
}

// New creates a reflecting (non-source) material
func New(retained float64) Material {
	return Material{Retained: retained}
}

// NewSource creates a material that marks its surface as a sound emitter
func NewSource(retained float64) Material {
	return Material{Retained: retained, IsSource: true}
}

// Validate checks the retained fraction is a usable energy multiplier
func (m Material) Validate() error {
	if m.Retained < 0 || m.Retained > 1 || m.Retained != m.Retained {
		return fmt.Errorf("%w: got %f", ErrRetainedOutOfRange, m.Retained)
	}
	return nil
}

// Absorbed returns the fraction of energy the surface removes
func (m Material) Absorbed() float64 {
	return 1 - m.Retained
}

// Common surface presets, retained fractions at mid frequencies
var (
	Concrete = New(0.98)
	Brick    = New(0.97)
	Wood     = New(0.9)
	Glass    = New(0.95)
	Drywall  = New(0.7)
	Carpet   = New(0.4)
	Curtain  = New(0.5)
	Absorber = New(0.05)
	Speaker  = NewSource(1.0)
)

// Presets maps preset names to their materials, used by scene files
var Presets = map[string]Material{
	"concrete": Concrete,
	"brick":    Brick,
	"wood":     Wood,
	"glass":    Glass,
	"drywall":  Drywall,
	"carpet":   Carpet,
	"curtain":  Curtain,
	"absorber": Absorber,
	"speaker":  Speaker,
}

// Lookup returns the named preset
func Lookup(name string) (Material, bool) {
	m, ok := Presets[name]
	return m, ok
}
