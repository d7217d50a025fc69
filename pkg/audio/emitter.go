package audio

import (
	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
)

// Emitter is a transient voice placed at one reflection point for one frame.
// It owns a private copy of the frame's samples; Close releases that copy
// and must be called exactly once the frame is mixed.
type Emitter struct {
	Position core.Vec3
	Weight   float64 // Absorption weight of the reflection
	Gain     float64 // Weight times distance attenuation
	Pan      float64 // -1 full left, +1 full right

	samples [][2]float64
	pos     int
	out     beep.Streamer
	release func()
}

// NewEmitter creates an emitter playing a copy of dry at the given gain and
// pan. release, if non-nil, runs once when the emitter is closed.
func NewEmitter(position core.Vec3, weight, gain, pan float64, dry [][2]float64, release func()) *Emitter {
	e := &Emitter{
		Position: position,
		Weight:   weight,
		Gain:     gain,
		Pan:      pan,
		samples:  make([][2]float64, len(dry)),
		release:  release,
	}
	copy(e.samples, dry)

	// effects.Gain scales by 1+Gain
	e.out = &effects.Pan{
		Streamer: &effects.Gain{Streamer: beep.StreamerFunc(e.read), Gain: gain - 1},
		Pan:      pan,
	}
	return e
}

func (e *Emitter) read(samples [][2]float64) (int, bool) {
	if e.samples == nil || e.pos >= len(e.samples) {
		return 0, false
	}
	n := copy(samples, e.samples[e.pos:])
	e.pos += n
	return n, true
}

// Stream implements beep.Streamer; a closed emitter is drained
func (e *Emitter) Stream(samples [][2]float64) (int, bool) {
	return e.out.Stream(samples)
}

// Err implements beep.Streamer
func (e *Emitter) Err() error {
	return nil
}

// Close releases the sample buffer. Closing twice is a no-op.
func (e *Emitter) Close() error {
	if e.samples == nil {
		return nil
	}
	e.samples = nil
	if e.release != nil {
		e.release()
	}
	return nil
}

// Closed reports whether the emitter has been released
func (e *Emitter) Closed() bool {
	return e.samples == nil
}
