package audio

import (
	"math"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/listener"
	"github.com/df07/go-sound-tracer/pkg/tracer"
	"github.com/faiface/beep"
)

// SpatialConfig controls how reflection points are rendered
type SpatialConfig struct {
	FrameRate         int     // Frames per second; each frame mixes 1/FrameRate seconds
	ReferenceDistance float64 // Distance with no attenuation
	Rolloff           float64 // Inverse-distance rolloff factor
}

// DefaultSpatialConfig returns 30 frames per second with unit inverse-distance rolloff
func DefaultSpatialConfig() SpatialConfig {
	return SpatialConfig{
		FrameRate:         30,
		ReferenceDistance: 1,
		Rolloff:           1,
	}
}

// FrameMix summarizes one mixed frame
type FrameMix struct {
	Emitters int     `json:"emitters"`
	Ambient  bool    `json:"ambient"`
	Peak     float64 `json:"peak"`
}

// Spatializer renders one frame of audio per call: the next slice of the
// source sound is played from every reflection point of the frame, weighted
// by absorption and distance and panned relative to the listener.
type Spatializer struct {
	format   beep.Format
	config   SpatialConfig
	source   beep.Streamer
	ambient  beep.Streamer
	sink     Sink
	logger   core.Logger
	frameLen int
	open     int
	drained  bool
}

// NewSpatializer creates a spatializer reading from source (usually a Bank)
// and writing mixed frames to sink
func NewSpatializer(format beep.Format, config SpatialConfig, source beep.Streamer, sink Sink, logger core.Logger) *Spatializer {
	if config.FrameRate <= 0 {
		config.FrameRate = DefaultSpatialConfig().FrameRate
	}
	if config.ReferenceDistance <= 0 {
		config.ReferenceDistance = DefaultSpatialConfig().ReferenceDistance
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &Spatializer{
		format:   format,
		config:   config,
		source:   source,
		sink:     sink,
		logger:   logger,
		frameLen: int(format.SampleRate) / config.FrameRate,
	}
}

// SetAmbient sets the clip looped at unit gain on frames without reflections
func (s *Spatializer) SetAmbient(clip *Clip) {
	if clip == nil {
		s.ambient = nil
		return
	}
	s.ambient = beep.Loop(-1, clip.Streamer())
}

// FrameLen returns the number of samples mixed per frame
func (s *Spatializer) FrameLen() int {
	return s.frameLen
}

// OpenEmitters returns the number of emitters not yet released
func (s *Spatializer) OpenEmitters() int {
	return s.open
}

// Attenuation returns the clamped inverse-distance gain for a distance
func (s *Spatializer) Attenuation(distance float64) float64 {
	ref := s.config.ReferenceDistance
	d := math.Max(distance, ref)
	return ref / (ref + s.config.Rolloff*(d-ref))
}

// Pan returns the stereo position of a point relative to the listener
func Pan(pose listener.Pose, point core.Vec3) float64 {
	rel := pose.Relative(point)
	distance := rel.Length()
	if distance < 1e-9 {
		return 0
	}
	return math.Max(-1, math.Min(1, rel.X/distance))
}

// EmitFrame mixes one frame from the given reflection records and writes it
// to the sink. Every emitter created for the frame is closed before return,
// including when the sink fails.
func (s *Spatializer) EmitFrame(records []tracer.ReflectionRecord, pose listener.Pose) (FrameMix, error) {
	dry := make([][2]float64, s.frameLen)
	if s.source != nil {
		n, ok := s.source.Stream(dry)
		if !ok && !s.drained {
			s.logger.Printf("Audio source ended\n")
			s.drained = true
		}
		for i := n; i < len(dry); i++ {
			dry[i] = [2]float64{}
		}
	}

	out := make([][2]float64, s.frameLen)
	var mix FrameMix

	if len(records) == 0 {
		if s.ambient != nil {
			s.ambient.Stream(out)
			mix.Ambient = true
		}
		mix.Peak = peak(out)
		return mix, s.write(out)
	}

	emitters := make([]*Emitter, 0, len(records))
	defer func() {
		for _, e := range emitters {
			e.Close()
		}
	}()

	mixer := &beep.Mixer{}
	for _, rec := range records {
		position := rec.Hit.Position
		gain := rec.CumulativeRetained * s.Attenuation(position.Distance(pose.Position))
		s.open++
		e := NewEmitter(position, rec.CumulativeRetained, gain, Pan(pose, position), dry, s.releaseEmitter)
		emitters = append(emitters, e)
		mixer.Add(e)
	}
	mixer.Stream(out)

	mix.Emitters = len(emitters)
	mix.Peak = peak(out)
	return mix, s.write(out)
}

func (s *Spatializer) releaseEmitter() {
	s.open--
}

func (s *Spatializer) write(samples [][2]float64) error {
	if s.sink == nil {
		return nil
	}
	return s.sink.Write(samples)
}

func peak(samples [][2]float64) float64 {
	p := 0.0
	for _, sample := range samples {
		p = math.Max(p, math.Max(math.Abs(sample[0]), math.Abs(sample[1])))
	}
	return p
}
