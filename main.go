package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/faiface/beep"

	"github.com/df07/go-sound-tracer/pkg/audio"
	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/frame"
	"github.com/df07/go-sound-tracer/pkg/scene"
	"github.com/df07/go-sound-tracer/pkg/tracer"
	"github.com/df07/go-sound-tracer/web/server"
)

type cli struct {
	Trace  TraceCmd  `cmd:"" help:"Trace one frame and print every reflection point"`
	Run    RunCmd    `cmd:"" help:"Run the frame loop and play the reflections"`
	Serve  ServeCmd  `cmd:"" help:"Start the web API"`
	Scenes ScenesCmd `cmd:"" help:"List built-in and file scenes"`
}

var CLI cli

// SceneFlags select a scene and override parts of it
type SceneFlags struct {
	Scene      string `short:"s" default:"default" help:"Scene id, json:<name> or path to a .json scene file"`
	Rays       int    `short:"n" default:"10" help:"Rays traced per frame"`
	Seed       int64  `default:"1" help:"Seed for the random rays"`
	MaxBounces int    `default:"-1" help:"Reflection budget per ray (-1 keeps the scene's)"`
	Weighting  string `default:"" help:"Absorption ordering: forward or reverse (empty keeps the scene's)"`
	At         string `default:"" help:"Listener position as x,y,z (empty keeps the scene's)"`
	Workers    int    `default:"0" help:"Tracing workers (0 = CPU count)"`
}

// load builds the scene and applies the overrides
func (f SceneFlags) load() (*scene.Scene, error) {
	s, err := scene.LoadScene(f.Scene)
	if err != nil {
		return nil, err
	}
	if f.MaxBounces >= 0 {
		s.TracerConfig.MaxBounces = f.MaxBounces
	}
	if f.Weighting != "" {
		weighting, err := tracer.ParseWeighting(f.Weighting)
		if err != nil {
			return nil, err
		}
		s.TracerConfig.Weighting = weighting
	}
	if f.At != "" {
		position, err := parsePosition(f.At)
		if err != nil {
			return nil, err
		}
		s.Listener = s.Listener.MoveTo(position)
	}
	return s, nil
}

func (f SceneFlags) frameConfig(frameRate int) frame.Config {
	return frame.Config{
		RayCount:   f.Rays,
		FrameRate:  frameRate,
		NumWorkers: f.Workers,
		Seed:       f.Seed,
	}
}

// parsePosition parses "x,y,z"
func parsePosition(s string) (core.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return core.Vec3{}, fmt.Errorf("position must be x,y,z, got %q", s)
	}
	var xyz [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid position %q: %w", s, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return core.Vec3{}, fmt.Errorf("invalid position %q: coordinates must be finite", s)
		}
		xyz[i] = v
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

type TraceCmd struct {
	SceneFlags `embed:""`
}

func (c TraceCmd) Run() error {
	s, err := c.load()
	if err != nil {
		return err
	}
	return traceFrame(os.Stdout, s, c.frameConfig(0))
}

// traceFrame traces one frame and writes one line per reflection point
func traceFrame(w io.Writer, s *scene.Scene, config frame.Config) error {
	driver := frame.NewDriver(s, config, nil)
	defer driver.Close()

	fmt.Fprintf(w, "Scene %s: %d primitives, %d sources, max %d bounces, %s weighting\n",
		s.Name, s.GetPrimitiveCount(), s.SourceCount(), s.TracerConfig.MaxBounces, s.TracerConfig.Weighting)

	f, err := driver.RenderFrame(s.Listener)
	if err != nil {
		return err
	}

	for ray, chain := range f.Chains {
		for _, rec := range chain.Records {
			fmt.Fprintln(w, formatRecord(ray, rec))
		}
	}

	stats := f.Stats
	fmt.Fprintf(w, "Frame %d: %d rays, %d records (hit-source %d, missed %d, bounce-limit %d) in %v\n",
		f.Number, stats.Rays, stats.Records, stats.HitSource, stats.Missed, stats.BounceLimit, stats.Duration)
	return nil
}

// formatRecord prints a reflection point and its weight
func formatRecord(ray int, rec tracer.ReflectionRecord) string {
	p := rec.Hit.Position
	return fmt.Sprintf("ray %d: %.3f %.3f %.3f sound multiplier %.4f", ray, p.X, p.Y, p.Z, rec.CumulativeRetained)
}

type RunCmd struct {
	SceneFlags `embed:""`

	Clips    []string      `arg:"" optional:"" help:"WAV clips bound to keys 1-9 (a sine sweep when none)"`
	Play     string        `default:"1" help:"Keys pressed at start, each 1-9 starts its clip"`
	Ambient  string        `help:"WAV clip played on frames without reflections"`
	Duration time.Duration `short:"d" default:"5s" help:"How long to run"`
	FPS      int           `default:"30" help:"Frames per second"`
	YawDeg   float64       `default:"0" help:"Listener turn per frame in degrees"`
	Device   bool          `help:"Play on the default audio device"`
	Volume   float64       `default:"1" help:"Device volume in [0,1]"`
	WAV      string        `name:"wav" help:"Record the mix to this WAV file"`
}

func (c RunCmd) Run() error {
	s, err := c.load()
	if err != nil {
		return err
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be > 0, got %d", c.FPS)
	}
	logger := frame.NewDefaultLogger()
	format := audio.DefaultFormat

	bank, err := loadBank(format, c.Clips, logger)
	if err != nil {
		return err
	}
	for _, key := range c.Play {
		if err := bank.Press(key); err != nil {
			return err
		}
	}

	sink, err := c.openSink(format)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sink.Close(); closeErr != nil {
			log.Printf("Error closing audio output: %v", closeErr)
		}
	}()

	spatializer := audio.NewSpatializer(format, audio.SpatialConfig{
		FrameRate:         c.FPS,
		ReferenceDistance: 1,
		Rolloff:           1,
	}, bank, sink, logger)
	if c.Ambient != "" {
		ambient, err := audio.LoadWAV(c.Ambient)
		if err != nil {
			return err
		}
		spatializer.SetAmbient(ambient)
	}

	driver := frame.NewDriver(s, c.frameConfig(c.FPS), logger)
	defer driver.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frames := frameCount(c.Duration, c.FPS)
	logger.Printf("Running scene %s for %v (%d frames)\n", s.Name, c.Duration, frames)

	pose := frame.Turning(s.Listener, c.YawDeg*math.Pi/180)
	err = driver.Run(ctx, frames, pose, func(f frame.Frame) error {
		mix, err := spatializer.EmitFrame(f.Records, f.Listener)
		if err != nil {
			return err
		}
		if f.Number%c.FPS == 0 {
			logger.Printf("Frame %d: %d emitters, peak %.3f, %d/%d rays reached a source\n",
				f.Number, mix.Emitters, mix.Peak, f.Stats.HitSource, f.Stats.Rays)
		}
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openSink combines the requested outputs; audio is discarded when none is
func (c RunCmd) openSink(format beep.Format) (audio.Sink, error) {
	var sinks audio.MultiSink
	if c.Device {
		device, err := audio.NewDeviceSink(format.SampleRate, c.Volume)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, device)
	}
	if c.WAV != "" {
		sinks = append(sinks, audio.NewWAVSink(c.WAV, format))
	}
	if len(sinks) == 0 {
		return &audio.DiscardSink{}, nil
	}
	return sinks, nil
}

// loadBank binds the clips to keys, or a ten second sine sweep when there are none
func loadBank(format beep.Format, paths []string, logger core.Logger) (*audio.Bank, error) {
	bank := audio.NewBank(format)
	if len(paths) == 0 {
		if _, err := bank.Add(audio.NewSineSweepClip(format, 10*time.Second)); err != nil {
			return nil, err
		}
		logger.Printf("Bound sine sweep to key 1\n")
		return bank, nil
	}

	for _, path := range paths {
		clip, err := audio.LoadWAV(path)
		if err != nil {
			return nil, err
		}
		key, err := bank.Add(clip)
		if err != nil {
			return nil, err
		}
		logger.Printf("Bound %s to key %c\n", clip, key)
	}
	return bank, nil
}

// frameCount returns the number of frames in d at fps, at least one
func frameCount(d time.Duration, fps int) int {
	return max(1, int(math.Round(d.Seconds()*float64(fps))))
}

type ServeCmd struct {
	Port int `short:"p" default:"8080" help:"Port to serve on"`
}

func (c ServeCmd) Run() error {
	webServer := server.NewServer(c.Port)

	log.Printf("Sound Tracer Web Server")
	log.Printf("Visit http://localhost:%d/api/scenes to list scenes", c.Port)

	return webServer.Start()
}

type ScenesCmd struct{}

func (ScenesCmd) Run() error {
	return listScenes(os.Stdout)
}

func listScenes(w io.Writer) error {
	response, err := scene.ListAllScenes()
	if err != nil {
		return err
	}
	for _, group := range response.Groups {
		fmt.Fprintf(w, "%s:\n", group.Name)
		for _, info := range group.Scenes {
			fmt.Fprintf(w, "  %-24s %s\n", info.ID, info.Description)
		}
	}
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sound-tracer"),
		kong.Description("Acoustic reflection tracer for positional audio"),
	)
	err := ctx.Run()
	if err != nil {
		log.Fatal(err)
	}
}
