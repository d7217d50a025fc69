package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestDiscardSink(t *testing.T) {
	sink := &DiscardSink{}
	sink.Write(make([][2]float64, 10))
	sink.Write(make([][2]float64, 5))

	if sink.Frames != 2 || sink.Samples != 15 {
		t.Errorf("Expected 2 frames and 15 samples, got %d and %d", sink.Frames, sink.Samples)
	}
}

func TestMemorySink(t *testing.T) {
	sink := &MemorySink{}
	frame := ramp(3, 0.5)
	if err := sink.Write(frame); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	frame[0] = [2]float64{7, 7}
	sink.Write(ramp(2, 0.1))

	if len(sink.Frames()) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(sink.Frames()))
	}
	if sink.Frames()[0][0][0] != 0 {
		t.Error("Expected the sink to copy written frames")
	}
	if len(sink.Samples()) != 5 {
		t.Errorf("Expected 5 samples, got %d", len(sink.Samples()))
	}

	sink.Close()
	if err := sink.Write(frame); err == nil {
		t.Error("Expected an error writing to a closed sink")
	}
}

func TestWAVSink_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mix.wav")
	sink := NewWAVSink(path, DefaultFormat)

	sink.Write(ramp(100, 0.005))
	sink.Write(ramp(50, -0.01))
	if sink.Len() != 150 {
		t.Errorf("Expected 150 buffered samples, got %d", sink.Len())
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	clip, err := LoadWAV(path)
	if err != nil {
		t.Fatalf("LoadWAV() error: %v", err)
	}
	if clip.Len() != 150 || clip.SampleRate() != DefaultFormat.SampleRate || clip.Channels() != 2 {
		t.Fatalf("Unexpected recording: %s", clip)
	}

	got := streamN(t, clip.Streamer(), 150)
	if math.Abs(got[50][0]-0.25) > 1e-3 {
		t.Errorf("Expected sample 50 to be 0.25, got %f", got[50][0])
	}
	if math.Abs(got[140][1]+0.4) > 1e-3 {
		t.Errorf("Expected sample 140 to be -0.4, got %f", got[140][1])
	}
}

func TestPutStereoF32(t *testing.T) {
	buf := make([]byte, 16)
	putStereoF32(buf, 1, 0.25, -1)

	left := math.Float32frombits(binary.LittleEndian.Uint32(buf[8:]))
	right := math.Float32frombits(binary.LittleEndian.Uint32(buf[12:]))
	if left != 0.25 || right != -1 {
		t.Errorf("Expected (0.25, -1), got (%f, %f)", left, right)
	}
	for i := 0; i < 8; i++ {
		if buf[i] != 0 {
			t.Fatalf("Frame 0 was overwritten at byte %d", i)
		}
	}
}

type closeErrSink struct{ DiscardSink }

func (c *closeErrSink) Close() error { return errors.New("close failed") }

func TestMultiSink(t *testing.T) {
	discard := &DiscardSink{}
	memory := &MemorySink{}
	sink := MultiSink{discard, memory}

	if err := sink.Write(ramp(4, 0.1)); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if discard.Samples != 4 || len(memory.Samples()) != 4 {
		t.Errorf("Expected both sinks to receive 4 samples, got %d and %d", discard.Samples, len(memory.Samples()))
	}

	if err := sink.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	if err := sink.Write(ramp(1, 0)); err == nil {
		t.Error("Expected the closed memory sink to fail the write")
	}

	if err := (MultiSink{&closeErrSink{}, &DiscardSink{}}).Close(); err == nil {
		t.Error("Expected a close error to be reported")
	}
}
