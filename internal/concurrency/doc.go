// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker-pool executor for hioload-local. Each worker goroutine owns one
// execution context for its whole lifetime; submitted tasks run against the
// executing worker's context, and SubmitFrom carries the submitter's
// inheritable values across the pool boundary.
//
// Dispatch uses per-worker multi-producer rings with an unbounded mutex-guarded
// overflow queue behind them. Optional CPU pinning is build-tag-partitioned
// (Linux via sched_setaffinity, no-op elsewhere).
package concurrency
