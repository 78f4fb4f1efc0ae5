// File: internal/concurrency/lock_free_queue.go
// Package concurrency provides a lock-free queue for the executor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded multi-producer ring buffer using per-slot sequence numbers, after
// Dmitry Vyukov's MPMC queue. Submit runs on arbitrary goroutines, so the
// producer side must tolerate concurrent enqueuers: a slot claimed by CAS on
// tail stays invisible to the consumer until its sequence number is published
// after the write.

package concurrency

import "sync/atomic"

const cacheLinePad = 64

// ringSlot pairs an element with the sequence number that gates its
// visibility between producers and the consumer.
type ringSlot[T any] struct {
	seq  uint64
	data T
}

// lockFreeQueue is a bounded ring buffer safe for any number of producers
// and consumers.
type lockFreeQueue[T any] struct {
	head  uint64
	_     [cacheLinePad]byte
	tail  uint64
	_     [cacheLinePad]byte
	mask  uint64
	slots []ringSlot[T]
}

// newLockFreeQueue creates a new queue with capacity rounded to power of two.
func newLockFreeQueue[T any](capacity int) *lockFreeQueue[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}
	q := &lockFreeQueue[T]{mask: uint64(size - 1), slots: make([]ringSlot[T], size)}
	for i := range q.slots {
		q.slots[i].seq = uint64(i)
	}
	return q
}

// Enqueue adds val; returns false if full. Safe to call concurrently.
func (q *lockFreeQueue[T]) Enqueue(val T) bool {
	for {
		tail := atomic.LoadUint64(&q.tail)
		s := &q.slots[tail&q.mask]
		seq := atomic.LoadUint64(&s.seq)
		dif := int64(seq) - int64(tail)
		if dif == 0 {
			if atomic.CompareAndSwapUint64(&q.tail, tail, tail+1) {
				s.data = val
				atomic.StoreUint64(&s.seq, tail+1)
				return true
			}
		} else if dif < 0 {
			return false // full
		}
		// tail moved under us; retry
	}
}

// Dequeue removes and returns an item; ok false if empty.
func (q *lockFreeQueue[T]) Dequeue() (item T, ok bool) {
	for {
		head := atomic.LoadUint64(&q.head)
		s := &q.slots[head&q.mask]
		seq := atomic.LoadUint64(&s.seq)
		dif := int64(seq) - int64(head+1)
		if dif == 0 {
			if atomic.CompareAndSwapUint64(&q.head, head, head+1) {
				item = s.data
				var zero T
				s.data = zero
				atomic.StoreUint64(&s.seq, head+q.mask+1)
				return item, true
			}
		} else if dif < 0 {
			return item, false // empty
		}
	}
}
