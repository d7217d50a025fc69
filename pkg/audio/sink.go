package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
)

// Sink receives mixed stereo frames
type Sink interface {
	Write(samples [][2]float64) error
	Close() error
}

// DiscardSink drops audio but counts what it was given
type DiscardSink struct {
	Frames  int
	Samples int
}

func (d *DiscardSink) Write(samples [][2]float64) error {
	d.Frames++
	d.Samples += len(samples)
	return nil
}

func (d *DiscardSink) Close() error { return nil }

// MemorySink keeps every frame in memory
type MemorySink struct {
	mu     sync.Mutex
	frames [][][2]float64
	closed bool
}

func (m *MemorySink) Write(samples [][2]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("write to closed memory sink")
	}
	frame := make([][2]float64, len(samples))
	copy(frame, samples)
	m.frames = append(m.frames, frame)
	return nil
}

func (m *MemorySink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// Frames returns the frames written so far
func (m *MemorySink) Frames() [][][2]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.frames
}

// Samples returns every written sample in order
func (m *MemorySink) Samples() [][2]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	var all [][2]float64
	for _, frame := range m.frames {
		all = append(all, frame...)
	}
	return all
}

// WAVSink records the mix and encodes it to a WAV file on Close
type WAVSink struct {
	path   string
	format beep.Format
	buffer *beep.Buffer
}

// NewWAVSink creates a sink that writes path when closed
func NewWAVSink(path string, format beep.Format) *WAVSink {
	return &WAVSink{
		path:   path,
		format: format,
		buffer: beep.NewBuffer(format),
	}
}

func (w *WAVSink) Write(samples [][2]float64) error {
	w.buffer.Append(samplesStreamer(samples))
	return nil
}

// Len returns the number of samples recorded
func (w *WAVSink) Len() int {
	return w.buffer.Len()
}

func (w *WAVSink) Close() error {
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	if err := wav.Encode(f, w.buffer.Streamer(0, w.buffer.Len()), w.format); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", w.path, err)
	}
	return f.Close()
}

// MultiSink writes every frame to each of its sinks in order
type MultiSink []Sink

func (m MultiSink) Write(samples [][2]float64) error {
	for _, sink := range m {
		if err := sink.Write(samples); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and returns their joined errors
func (m MultiSink) Close() error {
	var errs []error
	for _, sink := range m {
		errs = append(errs, sink.Close())
	}
	return errors.Join(errs...)
}
