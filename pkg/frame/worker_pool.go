package frame

import (
	"runtime"
	"sync"

	"github.com/df07/go-sound-tracer/pkg/core"
	"github.com/df07/go-sound-tracer/pkg/tracer"
)

// RayTask represents one ray of a frame for the worker pool
type RayTask struct {
	Origin    core.Vec3
	Generator *tracer.RandomRayGenerator // Owned by this task only
	TaskID    int                        // Ray index, for deterministic ordering
}

// RayResult contains the chain traced for a task
type RayResult struct {
	TaskID int
	Chain  tracer.Chain
}

// WorkerPool manages parallel ray tracing
type WorkerPool struct {
	taskQueue   chan RayTask
	resultQueue chan RayResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	started     bool
	stopped     bool
}

// Worker traces individual ray tasks
type Worker struct {
	ID          int
	tracer      *tracer.ReflectionTracer
	taskQueue   chan RayTask
	resultQueue chan RayResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// queueSize bounds the tasks in flight; a frame never submits more than that.
func NewWorkerPool(rt *tracer.ReflectionTracer, queueSize, numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize < 1 {
		queueSize = 1
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RayTask, queueSize),
		resultQueue: make(chan RayResult, queueSize),
		numWorkers:  numWorkers,
	}

	// The scene is read-only while tracing, so workers share one tracer
	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			tracer:      rt,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers. It does nothing if the pool is running or stopped.
func (wp *WorkerPool) Start() {
	if wp.started || wp.stopped {
		return
	}
	wp.started = true
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers. Later calls do nothing, and a
// stopped pool cannot be started again.
func (wp *WorkerPool) Stop() {
	if wp.stopped {
		return
	}
	wp.stopped = true
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a ray task to the worker pool
func (wp *WorkerPool) SubmitTask(task RayTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed ray result
func (wp *WorkerPool) GetResult() (RayResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		ray := task.Generator.RandomRay(task.Origin)
		w.resultQueue <- RayResult{
			TaskID: task.TaskID,
			Chain:  w.tracer.Trace(ray),
		}
	}
}
