/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package worker

import (
	"sync"
	"testing"
	"time"
)

func TestQueueFIFOOrdering(t *testing.T) {
	q := NewQueue()
	var mu sync.Mutex
	var got []int
	for i := 1; i <= 50; i++ {
		i := i
		if !q.Submit(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		}) {
			t.Fatalf("submit %d rejected", i)
		}
	}
	q.Close()
	q.Wait()
	if len(got) != 50 {
		t.Fatalf("expected 50 executed items, got %d", len(got))
	}
	for i, v := range got {
		if v != i+1 {
			t.Fatalf("item %d executed out of order: got %d", i, v)
		}
	}
}

func TestQueueSubmitDoesNotBlock(t *testing.T) {
	q := NewQueue()
	block := make(chan struct{})
	q.Submit(func() { <-block })

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			q.Submit(func() {})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Submit blocked while a work item was running")
	}
	close(block)
	q.Close()
	q.Wait()
}

func TestQueuePanicIsolation(t *testing.T) {
	q := NewQueue()
	var faults []any
	var mu sync.Mutex
	q.OnFault(func(r any) {
		mu.Lock()
		faults = append(faults, r)
		mu.Unlock()
	})

	ran := make(chan struct{})
	q.Submit(func() { panic("first item exploded") })
	q.Submit(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker did not survive a panicking item")
	}
	q.Close()
	q.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(faults) != 1 {
		t.Fatalf("expected 1 fault, got %d", len(faults))
	}
	if faults[0] != "first item exploded" {
		t.Fatalf("unexpected fault value: %v", faults[0])
	}
}

func TestQueueCloseRejectsNewWork(t *testing.T) {
	q := NewQueue()
	q.Close()
	if q.Submit(func() { t.Error("work ran after close") }) {
		t.Fatalf("Submit accepted work after Close")
	}
	q.Wait()
}

func TestQueueCloseDrainsPending(t *testing.T) {
	q := NewQueue()
	gate := make(chan struct{})
	var mu sync.Mutex
	count := 0
	q.Submit(func() { <-gate })
	for i := 0; i < 10; i++ {
		q.Submit(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}
	q.Close()
	close(gate)
	q.Wait()
	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Fatalf("expected pending work to drain after Close, ran %d of 10", count)
	}
}

func TestQueueCloseIdempotent(t *testing.T) {
	q := NewQueue()
	q.Close()
	q.Close()
	q.Wait()
}
