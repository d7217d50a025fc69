package audio

import (
	"math"
	"testing"

	"github.com/faiface/beep"
)

// constant returns an endless streamer of one stereo value
func constant(v float64) beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})
}

// ramp returns n samples valued 0, step, 2*step, ...
func ramp(n int, step float64) [][2]float64 {
	samples := make([][2]float64, n)
	for i := range samples {
		v := float64(i) * step
		samples[i] = [2]float64{v, v}
	}
	return samples
}

func streamN(t *testing.T, s beep.Streamer, n int) [][2]float64 {
	t.Helper()
	out := make([][2]float64, n)
	got, _ := s.Stream(out)
	if got != n {
		t.Fatalf("Expected %d samples, got %d", n, got)
	}
	return out
}

func assertAll(t *testing.T, samples [][2]float64, left, right, tolerance float64) {
	t.Helper()
	for i, s := range samples {
		if math.Abs(s[0]-left) > tolerance || math.Abs(s[1]-right) > tolerance {
			t.Fatalf("Sample %d: expected (%f, %f), got (%f, %f)", i, left, right, s[0], s[1])
		}
	}
}
