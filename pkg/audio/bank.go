package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/faiface/beep"
)

const (
	// MaxClips is the number of keybinds, '1' through '9'
	MaxClips = 9

	// StopAllKey silences every clip
	StopAllKey = '"'

	resampleQuality = 4
)

var (
	// ErrBankFull is returned when every keybind is taken
	ErrBankFull = errors.New("clip bank is full")

	// ErrUnboundKey is returned for keys with no clip
	ErrUnboundKey = errors.New("no clip bound to key")
)

// Bank holds the clips bound to number keys and mixes whichever are playing.
// A triggered clip loops until StopAll. Bank is a beep.Streamer and is safe
// to trigger from another goroutine while it streams.
type Bank struct {
	mu     sync.Mutex
	format beep.Format
	clips  []*Clip
	voices []*beep.Ctrl
	mixer  *beep.Mixer
}

// NewBank creates an empty bank that streams in format
func NewBank(format beep.Format) *Bank {
	return &Bank{
		format: format,
		mixer:  &beep.Mixer{},
	}
}

// KeyFor returns the keybind of clip i
func KeyFor(i int) rune {
	return rune('1' + i)
}

// Add binds clip to the next free key and returns that key
func (b *Bank) Add(clip *Clip) (rune, error) {
	if clip.Len() == 0 {
		return 0, fmt.Errorf("%s: %w", clip.Name, ErrEmptyClip)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.clips) >= MaxClips {
		return 0, ErrBankFull
	}

	voice := &beep.Ctrl{Streamer: b.loop(clip), Paused: true}
	b.clips = append(b.clips, clip)
	b.voices = append(b.voices, voice)
	b.mixer.Add(voice)

	return KeyFor(len(b.clips) - 1), nil
}

// loop returns an endless stream of clip converted to the bank's sample rate
func (b *Bank) loop(clip *Clip) beep.Streamer {
	looped := beep.Loop(-1, clip.Streamer())
	if clip.SampleRate() == b.format.SampleRate {
		return looped
	}
	return beep.Resample(resampleQuality, clip.SampleRate(), b.format.SampleRate, looped)
}

// Press handles a keybind: '1'..'9' start their clip from the beginning and
// StopAllKey silences everything
func (b *Bank) Press(key rune) error {
	if key == StopAllKey {
		b.StopAll()
		return nil
	}
	if key < '1' || key > '9' {
		return fmt.Errorf("%w: %q", ErrUnboundKey, key)
	}
	return b.Trigger(int(key - '1'))
}

// Trigger starts clip i from the beginning, restarting it if already playing
func (b *Bank) Trigger(i int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.clips) {
		return fmt.Errorf("%w: %q", ErrUnboundKey, KeyFor(i))
	}
	b.voices[i].Streamer = b.loop(b.clips[i])
	b.voices[i].Paused = false
	return nil
}

// StopAll pauses every clip; the next trigger starts from the beginning
func (b *Bank) StopAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, voice := range b.voices {
		voice.Paused = true
	}
}

// IsPlaying reports whether clip i is playing
func (b *Bank) IsPlaying(i int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return i >= 0 && i < len(b.voices) && !b.voices[i].Paused
}

// Len returns the number of bound clips
func (b *Bank) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.clips)
}

// Clip returns the clip bound to index i
func (b *Bank) Clip(i int) *Clip {
	b.mu.Lock()
	defer b.mu.Unlock()

	if i < 0 || i >= len(b.clips) {
		return nil
	}
	return b.clips[i]
}

// Stream mixes the playing clips; silence when none are playing
func (b *Bank) Stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.mixer.Stream(samples)
}

// Err implements beep.Streamer
func (b *Bank) Err() error {
	return nil
}
