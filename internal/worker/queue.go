/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package worker provides the serialized execution side of the command
// pipeline: a single-goroutine FIFO task queue and the command slot that
// gates every document mutation through it. Exactly one queued item runs at
// a time, which is what makes the document's history safe without the
// document taking part in any locking protocol.
package worker

import (
	"log/slog"
	"runtime/debug"
	"sync"

	applog "pdfslicer/internal/log"
)

// Queue runs submitted work items strictly in submission order on one
// dedicated goroutine. Submit never blocks; the queue is unbounded.
// A panic inside one item is recovered and logged, and the worker moves on
// to the next item. Deliberately one goroutine, not a pool: callers rely on
// the single-writer guarantee.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []func()
	closed  bool
	done    chan struct{}
	onFault func(recovered any)
	log     *slog.Logger
}

// NewQueue creates the queue and starts its worker goroutine.
func NewQueue() *Queue {
	q := &Queue{
		done: make(chan struct{}),
		log:  applog.WithComponent("worker"),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// OnFault installs a hook invoked (on the worker goroutine) with the
// recovered value whenever a work item panics. Must be set before the first
// Submit that can fault; a nil hook leaves logging as the only side effect.
func (q *Queue) OnFault(fn func(recovered any)) {
	q.mu.Lock()
	q.onFault = fn
	q.mu.Unlock()
}

// Submit appends work to the queue and returns immediately. It reports
// false if the queue has been closed, in which case work is discarded.
func (q *Queue) Submit(work func()) bool {
	if work == nil {
		return false
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, work)
	q.mu.Unlock()
	q.cond.Signal()
	return true
}

// Close stops accepting new work. Items already queued still run; Close
// does not wait for them (use Wait for that).
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.cond.Signal()
}

// Wait blocks until the queue is closed and fully drained.
func (q *Queue) Wait() {
	<-q.done
}

// Len returns the number of items not yet started.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 && q.closed {
			q.mu.Unlock()
			return
		}
		work := q.items[0]
		q.items = q.items[1:]
		fault := q.onFault
		q.mu.Unlock()

		q.exec(work, fault)
	}
}

// exec isolates a single item so a panic cannot take the worker down.
func (q *Queue) exec(work func(), fault func(any)) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("work item panicked",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			if fault != nil {
				fault(r)
			}
		}
	}()
	work()
}
