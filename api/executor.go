// File: api/executor.go
// Author: momentics <momentics@gmail.com>
//
// Executor contract for parallel task dispatch with context-carrying workers.

package api

// Executor abstracts parallel task execution. Every worker owns one
// execution Context for the whole of its lifetime and passes it to each
// task it runs.
type Executor interface {
	// Submit schedules task for execution.
	Submit(task TaskFunc) error

	// NumWorkers returns current number of active worker routines.
	NumWorkers() int
}
