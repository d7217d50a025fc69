// Package frame drives the per-frame reflection trace: a fixed number of
// random rays from the listener are traced in parallel and their records are
// concatenated in ray order, ready for the audio spatializer.
package frame

import (
	"context"
	"fmt"
	"time"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/listener"
	"github.com/df07/go-sound-tracer/pkg/scene"
	"github.com/df07/go-sound-tracer/pkg/tracer"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Config contains configuration for the frame loop
type Config struct {
	RayCount   int   // Rays traced per frame
	FrameRate  int   // Frames per second for Run (0 = unpaced)
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed for the per-ray generators
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		RayCount:   10,
		FrameRate:  30,
		NumWorkers: 0, // Auto-detect CPU count
		Seed:       1,
	}
}

// Frame is the result of tracing one frame
type Frame struct {
	Number   int                       `json:"frame"`
	Listener listener.Pose             `json:"listener"`
	Chains   []tracer.Chain            `json:"chains"`  // One per ray, in ray order
	Records  []tracer.ReflectionRecord `json:"records"` // Every chain's records, concatenated
	Stats    Stats                     `json:"stats"`
}

// PoseFunc returns the listener pose for frame n
type PoseFunc func(n int) listener.Pose

// Driver traces frames of a scene. It is not safe for concurrent use.
type Driver struct {
	scene      *scene.Scene
	config     Config
	weighting  tracer.Weighting
	generator  *tracer.RandomRayGenerator
	workerPool *WorkerPool
	logger     core.Logger
	frame      int
	closed     bool
}

// NewDriver creates a frame driver for s. Close releases its workers.
func NewDriver(s *scene.Scene, config Config, logger core.Logger) *Driver {
	if config.RayCount < 0 {
		config.RayCount = 0
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	return &Driver{
		scene:      s,
		config:     config,
		weighting:  s.TracerConfig.Weighting,
		generator:  tracer.NewRandomRayGenerator(config.Seed),
		workerPool: NewWorkerPool(s.Tracer(), config.RayCount, config.NumWorkers),
		logger:     logger,
	}
}

// Config returns the driver configuration
func (d *Driver) Config() Config {
	return d.config
}

// NumWorkers returns the number of tracing workers
func (d *Driver) NumWorkers() int {
	return d.workerPool.GetNumWorkers()
}

// RenderFrame traces RayCount rays from the pose's position. Ray i of frame n
// always uses the same generator, so the frame does not depend on how many
// workers ran it.
func (d *Driver) RenderFrame(pose listener.Pose) (Frame, error) {
	if d.closed {
		return Frame{}, fmt.Errorf("frame driver is closed")
	}
	startTime := time.Now()
	d.workerPool.Start()

	n := d.frame
	d.frame++

	for i := 0; i < d.config.RayCount; i++ {
		d.workerPool.SubmitTask(RayTask{
			Origin:    pose.Position,
			Generator: d.generator.Derive(n*d.config.RayCount + i),
			TaskID:    i,
		})
	}

	chains := make([]tracer.Chain, d.config.RayCount)
	for i := 0; i < d.config.RayCount; i++ {
		result, ok := d.workerPool.GetResult()
		if !ok {
			return Frame{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		chains[result.TaskID] = result.Chain
	}

	f := Frame{
		Number:   n,
		Listener: pose,
		Chains:   chains,
		Records:  []tracer.ReflectionRecord{},
	}
	for i, chain := range chains {
		chain = chain.Weighted(d.weighting)
		f.Chains[i] = chain
		f.Records = append(f.Records, chain.Records...)
		f.Stats.AddChain(chain)
	}
	f.Stats.Finish(time.Since(startTime))

	return f, nil
}

// Run renders frames at the configured frame rate until frames have been
// rendered (frames <= 0 runs until ctx is done), the context is cancelled or
// the callback returns an error.
func (d *Driver) Run(ctx context.Context, frames int, pose PoseFunc, callback func(Frame) error) error {
	var tick <-chan time.Time
	if d.config.FrameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(d.config.FrameRate))
		defer ticker.Stop()
		tick = ticker.C
	}

	d.logger.Printf("Tracing %d rays per frame at %d fps (using %d workers)...\n",
		d.config.RayCount, d.config.FrameRate, d.NumWorkers())

	for i := 0; frames <= 0 || i < frames; i++ {
		select {
		case <-ctx.Done():
			d.logger.Printf("Frame loop cancelled after %d frames\n", i)
			return ctx.Err()
		default:
		}

		f, err := d.RenderFrame(pose(i))
		if err != nil {
			return err
		}
		if err := callback(f); err != nil {
			return fmt.Errorf("frame %d: %w", f.Number, err)
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				d.logger.Printf("Frame loop cancelled after %d frames\n", i+1)
				return ctx.Err()
			case <-tick:
			}
		}
	}

	d.logger.Printf("Completed %d frames\n", frames)
	return nil
}

// Close stops the workers; the driver cannot render afterwards
func (d *Driver) Close() {
	if d.closed {
		return
	}
	d.closed = true
	d.workerPool.Stop()
}

// FixedPose returns a PoseFunc that always returns p
func FixedPose(p listener.Pose) PoseFunc {
	return func(int) listener.Pose { return p }
}

// Turning returns a PoseFunc that yaws p by step radians every frame
func Turning(p listener.Pose, step float64) PoseFunc {
	return func(n int) listener.Pose {
		return p.Yaw(step * float64(n))
	}
}
