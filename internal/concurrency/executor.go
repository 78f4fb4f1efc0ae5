// File: internal/concurrency/executor.go
// Package concurrency implements the context-carrying task executor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across worker goroutines, using lock-free local
// queues with an unbounded overflow queue as fallback. Every worker owns one
// exec.Context; tasks always run against the executing worker's context.

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"github.com/rsms/go-log"

	"github.com/momentics/hioload-local/api"
	"github.com/momentics/hioload-local/exec"
)

// Executor manages a pool of worker goroutines, each bound to its own
// execution context.
type Executor struct {
	Logger *log.Logger // optional; nil means silent

	overflowMu  sync.Mutex                      // guards overflow
	overflow    *queue.Queue                    // unbounded spill when local rings are full
	localQueues []*lockFreeQueue[api.TaskFunc]  // per-worker lock-free queues
	workers     []*worker                       // worker instances
	closeCh     chan struct{}                   // signals executor shutdown
	closed      int32                           // atomic flag: 1 if closed
	numWorkers  int32                           // current number of workers
	mu          sync.Mutex                      // protects shutdown

	// statistics
	totalTasks     int64
	completedTasks int64
}

// Ensure compliance with the api.Executor contract.
var _ api.Executor = (*Executor)(nil)

// NewExecutor creates a new Executor with the given number of workers.
// If numWorkers <= 0, defaults to runtime.NumCPU(). When pin is set, each
// worker thread is pinned to a CPU on supported platforms.
func NewExecutor(numWorkers int, pin bool) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	e := &Executor{
		overflow:   queue.New(),
		closeCh:    make(chan struct{}),
		numWorkers: int32(numWorkers),
	}
	e.localQueues = make([]*lockFreeQueue[api.TaskFunc], numWorkers)
	e.workers = make([]*worker, numWorkers)
	for i := 0; i < numWorkers; i++ {
		e.localQueues[i] = newLockFreeQueue[api.TaskFunc](1024)
	}
	for i := 0; i < numWorkers; i++ {
		w := &worker{
			id:         i,
			executor:   e,
			localQueue: e.localQueues[i],
			stopCh:     make(chan struct{}),
			ctx:        exec.NewContext(),
		}
		e.workers[i] = w
		go w.run(pin)
	}
	return e
}

// Submit enqueues a task for execution on some worker's context. Returns
// ErrExecutorClosed if the executor is closed.
func (e *Executor) Submit(task api.TaskFunc) error {
	if task == nil {
		return ErrNilTask
	}
	if atomic.LoadInt32(&e.closed) == 1 {
		return ErrExecutorClosed
	}
	// round-robin across the per-worker rings; the rings tolerate
	// concurrent producers, so two submitters landing on the same index
	// is fine
	n := atomic.AddInt64(&e.totalTasks, 1)
	idx := int(n % int64(e.NumWorkers()))
	if e.localQueues[idx].Enqueue(task) {
		return nil
	}
	// spill to the unbounded overflow queue
	e.overflowMu.Lock()
	e.overflow.Add(task)
	e.overflowMu.Unlock()
	return nil
}

// SubmitFrom enqueues a task wrapped with from's inheritable values: the
// executing worker sees them for the duration of the task and its own values
// are restored afterward.
func (e *Executor) SubmitFrom(from *exec.Context, task api.TaskFunc) error {
	if task == nil {
		return ErrNilTask
	}
	return e.Submit(exec.Wrap(from, task))
}

// NumWorkers returns the current number of active workers.
func (e *Executor) NumWorkers() int {
	return int(atomic.LoadInt32(&e.numWorkers))
}

// Close gracefully shuts down the executor and signals workers to exit.
func (e *Executor) Close() {
	if atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		close(e.closeCh)
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, w := range e.workers {
			close(w.stopCh)
		}
		if e.Logger != nil {
			e.Logger.Debug("executor closed after %d tasks", atomic.LoadInt64(&e.completedTasks))
		}
	}
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	e.overflowMu.Lock()
	overflowLen := int64(e.overflow.Length())
	e.overflowMu.Unlock()
	return map[string]int64{
		"total_tasks":     atomic.LoadInt64(&e.totalTasks),
		"completed_tasks": atomic.LoadInt64(&e.completedTasks),
		"pending_tasks":   atomic.LoadInt64(&e.totalTasks) - atomic.LoadInt64(&e.completedTasks),
		"overflow_len":    overflowLen,
		"num_workers":     int64(e.NumWorkers()),
	}
}

// popOverflow takes one spilled task, if any.
func (e *Executor) popOverflow() (api.TaskFunc, bool) {
	e.overflowMu.Lock()
	defer e.overflowMu.Unlock()
	if e.overflow.Length() == 0 {
		return nil, false
	}
	return e.overflow.Remove().(api.TaskFunc), true
}

// worker represents a single executor goroutine with its own context.
type worker struct {
	id         int
	executor   *Executor
	localQueue *lockFreeQueue[api.TaskFunc]
	stopCh     chan struct{}
	stopped    int32
	ctx        *exec.Context
}

// run is the main loop for a worker, optionally pinning its OS thread.
func (w *worker) run(pin bool) {
	defer atomic.StoreInt32(&w.stopped, 1)
	defer w.ctx.Cancel()
	if pin {
		if err := PinCurrentThread(w.id % runtime.NumCPU()); err != nil && w.executor.Logger != nil {
			w.executor.Logger.Warn("worker %d: pin failed: %v", w.id, err)
		}
	}
	for {
		select {
		case <-w.stopCh:
			return
		default:
			// try local queue
			if task, ok := w.localQueue.Dequeue(); ok {
				w.executeTask(task)
				continue
			}
			// try overflow queue
			if task, ok := w.executor.popOverflow(); ok {
				w.executeTask(task)
				continue
			}
			select {
			case <-w.stopCh:
				return
			default:
				// backoff to reduce CPU spinning
				time.Sleep(time.Millisecond)
			}
		}
	}
}

// executeTask runs the task against the worker's context, recovering from
// panics to keep the worker alive.
func (w *worker) executeTask(task api.TaskFunc) {
	defer func() {
		if r := recover(); r != nil && w.executor.Logger != nil {
			w.executor.Logger.Warn("worker %d: task panic recovered: %v", w.id, r)
		}
		atomic.AddInt64(&w.executor.completedTasks, 1)
	}()
	task(w.ctx)
}
