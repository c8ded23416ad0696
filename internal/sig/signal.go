/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package sig provides small publish/subscribe primitives used to notify
// observers of document and command-pipeline events. Handlers are invoked
// synchronously on the emitting goroutine, in connection order; observers
// that need a different execution context re-dispatch themselves.
package sig

import "sync"

// Signal is an ordered list of parameterless observers.
// The zero value is ready to use. Safe for concurrent use.
type Signal struct {
	mu       sync.Mutex
	handlers []func()
}

// Connect registers fn to be called on every Emit. fn must not be nil.
func (s *Signal) Connect(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.handlers = append(s.handlers, fn)
	s.mu.Unlock()
}

// Emit calls every connected handler once, in connection order.
// Handlers connected during an Emit are not called until the next one.
func (s *Signal) Emit() {
	s.mu.Lock()
	hs := make([]func(), len(s.handlers))
	copy(hs, s.handlers)
	s.mu.Unlock()
	for _, fn := range hs {
		fn()
	}
}

// ErrorSignal is an ordered list of observers carrying an error value.
type ErrorSignal struct {
	mu       sync.Mutex
	handlers []func(error)
}

// Connect registers fn to be called on every Emit. fn must not be nil.
func (s *ErrorSignal) Connect(fn func(error)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.handlers = append(s.handlers, fn)
	s.mu.Unlock()
}

// Emit calls every connected handler with err, in connection order.
func (s *ErrorSignal) Emit(err error) {
	s.mu.Lock()
	hs := make([]func(error), len(s.handlers))
	copy(hs, s.handlers)
	s.mu.Unlock()
	for _, fn := range hs {
		fn(err)
	}
}
