package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/faiface/beep"
	"github.com/hajimehoshi/oto/v2"
)

const deviceChannels = 2

// DeviceSink plays frames on the default audio device. Write blocks while
// the device is behind, which paces the caller to real time.
type DeviceSink struct {
	ctx    *oto.Context
	player oto.Player
	pipe   *io.PipeWriter
	buf    []byte
}

// NewDeviceSink opens the default output device at the given sample rate
func NewDeviceSink(sampleRate beep.SampleRate, volume float64) (*DeviceSink, error) {
	ctx, ready, err := oto.NewContext(int(sampleRate), deviceChannels, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	reader, writer := io.Pipe()
	player := ctx.NewPlayer(reader)
	player.SetVolume(math.Max(0, math.Min(1, volume)))
	player.Play()

	return &DeviceSink{
		ctx:    ctx,
		player: player,
		pipe:   writer,
	}, nil
}

func (d *DeviceSink) Write(samples [][2]float64) error {
	need := len(samples) * 8
	if cap(d.buf) < need {
		d.buf = make([]byte, need)
	}
	d.buf = d.buf[:need]
	for i, s := range samples {
		putStereoF32(d.buf, i, s[0], s[1])
	}
	if _, err := d.pipe.Write(d.buf); err != nil {
		return err
	}
	return d.player.Err()
}

func (d *DeviceSink) Close() error {
	d.pipe.Close()
	return d.player.Close()
}

// putStereoF32 writes left/right samples in [-1,1] as float32 LE at frame i
func putStereoF32(buf []byte, i int, left, right float64) {
	lv := math.Float32bits(float32(left))
	rv := math.Float32bits(float32(right))
	buf[i*8] = byte(lv)
	buf[i*8+1] = byte(lv >> 8)
	buf[i*8+2] = byte(lv >> 16)
	buf[i*8+3] = byte(lv >> 24)
	buf[i*8+4] = byte(rv)
	buf[i*8+5] = byte(rv >> 8)
	buf[i*8+6] = byte(rv >> 16)
	buf[i*8+7] = byte(rv >> 24)
}
