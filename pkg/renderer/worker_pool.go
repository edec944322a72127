package renderer

import (
	"runtime"
	"sync"
	"time"
)

// RegionTask represents a region tracing task for the worker pool
type RegionTask struct {
	Region *Region
	Frame  int
	TaskID int // For deterministic ordering
}

// RegionResult contains the result from tracing a region
type RegionResult struct {
	TaskID   int
	WorkerID int
	Pixels   int
	Duration time.Duration
}

// WorkerPool manages parallel region tracing
type WorkerPool struct {
	taskQueue   chan RegionTask
	resultQueue chan RegionResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker handles individual region tracing tasks
type Worker struct {
	ID          int
	tracer      *Tracer
	taskQueue   chan RegionTask
	resultQueue chan RegionResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
// and room for maxTasks queued tasks
func NewWorkerPool(tracer *Tracer, numWorkers, maxTasks int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RegionTask, maxTasks),   // Buffer for all regions of a frame
		resultQueue: make(chan RegionResult, maxTasks), // Buffer for all results of a frame
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			tracer:      tracer,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a region task to the worker pool
func (wp *WorkerPool) SubmitTask(task RegionTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed region result
func (wp *WorkerPool) GetResult() (RegionResult, bool) {
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
		start := time.Now()

		// Regions are disjoint so workers write the accumulator without locking
		w.tracer.traceRegion(task.Region, task.Frame)

		w.resultQueue <- RegionResult{
			TaskID:   task.TaskID,
			WorkerID: w.ID,
			Pixels:   len(task.Region.Pixels),
			Duration: time.Since(start),
		}
	}
}
