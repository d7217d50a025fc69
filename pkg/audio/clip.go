// Package audio turns reflection records into positioned sound. Clips are
// decoded into memory once; every frame the Spatializer plays a short slice of
// the current sound from each reflection point and releases it again.
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// DefaultFormat is CD-quality stereo, the format every sink is opened with
var DefaultFormat = beep.Format{
	SampleRate:  44100,
	NumChannels: 2,
	Precision:   2,
}

// ErrEmptyClip is returned for sounds with no samples
var ErrEmptyClip = errors.New("clip has no samples")

// Clip is a sound decoded fully into memory
type Clip struct {
	Name   string
	Format beep.Format
	buffer *beep.Buffer
}

// NewClip drains s into a new in-memory clip. s must end.
func NewClip(name string, format beep.Format, s beep.Streamer) *Clip {
	buffer := beep.NewBuffer(format)
	buffer.Append(s)
	return &Clip{
		Name:   name,
		Format: format,
		buffer: buffer,
	}
}

// LoadWAV decodes a RIFF/WAVE file into a clip named after the file
func LoadWAV(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	defer streamer.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	clip := NewClip(name, format, rescale(streamer, decodeGain(format.Precision)))
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if clip.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyClip)
	}
	return clip, nil
}

// decodeGain undoes the wav decoder's scaling of 16 and 24 bit samples,
// which divides by 2^n-1 instead of 2^(n-1)-1 and so loads at half level
func decodeGain(precision int) float64 {
	switch precision {
	case 2:
		return float64(1<<16-1) / float64(1<<15-1)
	case 3:
		return float64(1<<24-1) / float64(1<<23-1)
	default:
		return 1
	}
}

// rescale multiplies every sample by gain, clamped to [-1, 1]
func rescale(s beep.Streamer, gain float64) beep.Streamer {
	if gain == 1 {
		return s
	}
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := s.Stream(samples)
		for i := range samples[:n] {
			for c := range samples[i] {
				samples[i][c] = math.Max(-1, math.Min(1, samples[i][c]*gain))
			}
		}
		return n, ok
	})
}

// Len returns the clip length in samples per channel
func (c *Clip) Len() int {
	return c.buffer.Len()
}

// Duration returns the playing time of the clip
func (c *Clip) Duration() time.Duration {
	return c.Format.SampleRate.D(c.Len())
}

// Channels returns the channel count of the source data
func (c *Clip) Channels() int {
	return c.Format.NumChannels
}

// SampleRate returns the sample rate of the source data
func (c *Clip) SampleRate() beep.SampleRate {
	return c.Format.SampleRate
}

// BitDepth returns the bits per sample of the source data
func (c *Clip) BitDepth() int {
	return c.Format.Precision * 8
}

// Streamer returns a fresh seekable reader over the whole clip
func (c *Clip) Streamer() beep.StreamSeeker {
	return c.buffer.Streamer(0, c.buffer.Len())
}

func (c *Clip) String() string {
	return fmt.Sprintf("%s (%d ch, %d Hz, %d bit, %v)", c.Name, c.Channels(), c.SampleRate(), c.BitDepth(), c.Duration().Round(time.Millisecond))
}

// samplesStreamer streams a fixed slice of samples once
func samplesStreamer(samples [][2]float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(out [][2]float64) (int, bool) {
		if pos >= len(samples) {
			return 0, false
		}
		n := copy(out, samples[pos:])
		pos += n
		return n, true
	})
}
