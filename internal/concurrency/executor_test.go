// File: internal/concurrency/executor_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/momentics/hioload-local/api"
	"github.com/momentics/hioload-local/exec"
	"github.com/momentics/hioload-local/local"
)

func TestExecutorRunsTasks(t *testing.T) {
	e := NewExecutor(2, false)
	defer e.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := make(map[string]bool)

	const n = 50
	wg.Add(n)
	for i := 0; i < n; i++ {
		err := e.Submit(func(ctx api.Context) {
			mu.Lock()
			seen[ctx.ID()] = true
			mu.Unlock()
			wg.Done()
		})
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()

	// Every task ran against a worker-owned context.
	if len(seen) == 0 || len(seen) > e.NumWorkers() {
		t.Errorf("tasks ran on %d contexts, want 1..%d", len(seen), e.NumWorkers())
	}
}

func TestExecutorWorkerContextPersists(t *testing.T) {
	e := NewExecutor(1, false)
	defer e.Close()

	tok := local.NewToken(nil)
	done := make(chan any, 1)

	if err := e.Submit(func(ctx api.Context) { ctx.Set(tok, "sticky") }); err != nil {
		t.Fatal(err)
	}
	if err := e.Submit(func(ctx api.Context) { done <- ctx.Get(tok) }); err != nil {
		t.Fatal(err)
	}
	select {
	case v := <-done:
		if v != "sticky" {
			t.Errorf("worker context value = %v, want sticky", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("task did not run")
	}
}

func TestExecutorSubmitFrom(t *testing.T) {
	e := NewExecutor(2, false)
	defer e.Close()

	user := local.NewInheritableToken(nil, nil)
	submitter := exec.NewContext()
	submitter.Set(user, "alice")

	during := make(chan any, 1)
	after := make(chan any, 1)

	if err := e.SubmitFrom(submitter, func(ctx api.Context) {
		during <- ctx.Get(user)
	}); err != nil {
		t.Fatal(err)
	}
	select {
	case v := <-during:
		if v != "alice" {
			t.Errorf("task saw %v, want alice", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("wrapped task did not run")
	}

	// The worker's own values must be restored after the wrapped task.
	if err := e.Submit(func(ctx api.Context) {
		v, ok := ctx.Lookup(user)
		if ok {
			after <- v
		} else {
			after <- nil
		}
	}); err != nil {
		t.Fatal(err)
	}
	select {
	case v := <-after:
		if v != nil {
			t.Errorf("worker retained carried value %v", v)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow-up task did not run")
	}
}

func TestExecutorConcurrentSubmit(t *testing.T) {
	// One worker, many submitters: every accepted task must run even when
	// submissions race on the same ring.
	e := NewExecutor(1, false)
	defer e.Close()

	const (
		submitters   = 16
		perSubmitter = 500
	)
	var executed int64
	var wg sync.WaitGroup
	wg.Add(submitters)
	for g := 0; g < submitters; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perSubmitter; i++ {
				err := e.Submit(func(ctx api.Context) {
					atomic.AddInt64(&executed, 1)
				})
				if err != nil {
					t.Errorf("Submit: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	want := int64(submitters * perSubmitter)
	deadline := time.Now().Add(10 * time.Second)
	for atomic.LoadInt64(&executed) < want {
		if time.Now().After(deadline) {
			t.Fatalf("executed %d of %d submitted tasks", atomic.LoadInt64(&executed), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestExecutorClosed(t *testing.T) {
	e := NewExecutor(1, false)
	e.Close()
	if err := e.Submit(func(ctx api.Context) {}); err != ErrExecutorClosed {
		t.Errorf("Submit after Close = %v, want ErrExecutorClosed", err)
	}
}

func TestExecutorNilTask(t *testing.T) {
	e := NewExecutor(1, false)
	defer e.Close()
	if err := e.Submit(nil); err != ErrNilTask {
		t.Errorf("Submit(nil) = %v, want ErrNilTask", err)
	}
	if err := e.SubmitFrom(nil, nil); err != ErrNilTask {
		t.Errorf("SubmitFrom(nil, nil) = %v, want ErrNilTask", err)
	}
}

func TestExecutorPanicIsolation(t *testing.T) {
	e := NewExecutor(1, false)
	defer e.Close()

	if err := e.Submit(func(ctx api.Context) { panic("boom") }); err != nil {
		t.Fatal(err)
	}
	done := make(chan struct{})
	if err := e.Submit(func(ctx api.Context) { close(done) }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker died after task panic")
	}
}

func TestExecutorStats(t *testing.T) {
	e := NewExecutor(2, false)
	defer e.Close()

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		if err := e.Submit(func(ctx api.Context) { wg.Done() }); err != nil {
			t.Fatal(err)
		}
	}
	wg.Wait()

	stats := e.Stats()
	if stats["total_tasks"] != 10 {
		t.Errorf("total_tasks = %d, want 10", stats["total_tasks"])
	}
	if stats["num_workers"] != 2 {
		t.Errorf("num_workers = %d, want 2", stats["num_workers"])
	}
}

func TestLockFreeQueue(t *testing.T) {
	q := newLockFreeQueue[int](4)
	for i := 0; i < 4; i++ {
		if !q.Enqueue(i) {
			t.Fatalf("enqueue %d failed", i)
		}
	}
	if q.Enqueue(99) {
		t.Error("enqueue succeeded on full ring")
	}
	for i := 0; i < 4; i++ {
		v, ok := q.Dequeue()
		if !ok || v != i {
			t.Fatalf("dequeue = %d,%v want %d", v, ok, i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("dequeue succeeded on empty ring")
	}
}

func TestLockFreeQueueConcurrentProducers(t *testing.T) {
	q := newLockFreeQueue[int](256)

	const (
		producers   = 8
		perProducer = 10000
	)
	var sentSum, receivedSum int64

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				val := pid*perProducer + i + 1
				for !q.Enqueue(val) {
					runtime.Gosched()
				}
				atomic.AddInt64(&sentSum, int64(val))
			}
		}(p)
	}

	drained := make(chan struct{})
	var received int64
	go func() {
		defer close(drained)
		for atomic.LoadInt64(&received) < producers*perProducer {
			if val, ok := q.Dequeue(); ok {
				receivedSum += int64(val)
				atomic.AddInt64(&received, 1)
			} else {
				runtime.Gosched()
			}
		}
	}()

	wg.Wait()
	select {
	case <-drained:
	case <-time.After(10 * time.Second):
		t.Fatalf("consumer drained %d of %d items",
			atomic.LoadInt64(&received), producers*perProducer)
	}
	if receivedSum != atomic.LoadInt64(&sentSum) {
		t.Errorf("checksum mismatch: sent %d, received %d", sentSum, receivedSum)
	}
}
