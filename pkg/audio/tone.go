package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

const (
	sweepStartHz   = 100.0
	sweepMinHz     = 100.0
	sweepMaxHz     = 5000.0
	sweepStepHz    = 0.1             // Frequency change per sample
	sweepAmplitude = 32760.0 / 32768 // Just under 16-bit full scale
)

// NewSineSweep returns an endless mono tone duplicated on both channels.
// The frequency starts at 100 Hz and drifts 0.1 Hz per sample, reversing
// direction whenever it leaves [100, 5000] Hz. Phase is taken from the
// current frequency, which gives the sweep its warbling character.
func NewSineSweep(sr beep.SampleRate) beep.Streamer {
	freq := sweepStartHz
	step := sweepStepHz
	i := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			v := sweepAmplitude * math.Sin(2*math.Pi*freq/float64(sr)*float64(i))
			samples[j][0] = v
			samples[j][1] = v

			i++
			freq += step
			if freq < sweepMinHz || freq > sweepMaxHz {
				step = -step
			}
		}
		return len(samples), true
	})
}

// NewSineSweepClip buffers d of the sweep as a clip
func NewSineSweepClip(format beep.Format, d time.Duration) *Clip {
	return NewClip("sine-sweep", format, beep.Take(format.SampleRate.N(d), NewSineSweep(format.SampleRate)))
}
