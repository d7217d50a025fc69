package material

import (
	"errors"
	"math"
	"testing"
)

func TestMaterial_Validate(t *testing.T) {
	tests := []struct {
		name      string
		material  Material
		expectErr bool
	}{
		{"Fully reflective", New(1.0), false},
		{"Fully absorbing", New(0.0), false},
		{"Partial source", NewSource(0.5), false},
		{"Above one", New(1.01), true},
		{"Negative", New(-0.1), true},
		{"NaN", New(math.NaN()), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.material.Validate()
			if tt.expectErr {
				if !errors.Is(err, ErrRetainedOutOfRange) {
					t.Errorf("Expected ErrRetainedOutOfRange, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestMaterial_Constructors(t *testing.T) {
	m := New(0.6)
	if m.IsSource {
		t.Error("Expected New to create a non-source material")
	}
	if math.Abs(m.Absorbed()-0.4) > 1e-12 {
		t.Errorf("Expected absorbed 0.4, got %f", m.Absorbed())
	}

	s := NewSource(1)
	if !s.IsSource || s.Retained != 1 {
		t.Errorf("Expected source with retained 1, got %+v", s)
	}
}

func TestPresets(t *testing.T) {
	for name, m := range Presets {
		if err := m.Validate(); err != nil {
			t.Errorf("Preset %s invalid: %v", name, err)
		}
	}

	speaker, ok := Lookup("speaker")
	if !ok || !speaker.IsSource {
		t.Errorf("Expected speaker preset to be a source, got %+v (found=%t)", speaker, ok)
	}
	if _, ok := Lookup("velvet"); ok {
		t.Error("Expected unknown preset lookup to fail")
	}
}
