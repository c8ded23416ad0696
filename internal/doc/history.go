/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package doc

import "sync"

// History is the undo/redo stack pair of a document. Stacks are only ever
// mutated from the serialized worker context, but CanUndo/CanRedo are read
// from the interactive context after each completion notification, so all
// access is guarded by a mutex.
type History struct {
	mu       sync.Mutex
	undo     []Command
	redo     []Command
	maxDepth int
}

// NewHistory creates a history. maxDepth caps the undo stack; oldest entries
// are pruned when it is exceeded. maxDepth <= 0 means unlimited.
func NewHistory(maxDepth int) *History {
	return &History{maxDepth: maxDepth}
}

// Push records a newly executed command. Any pending redo branch is
// discarded: a new edit starts a new line of history.
func (h *History) Push(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undo = append(h.undo, cmd)
	h.redo = nil
	if h.maxDepth > 0 && len(h.undo) > h.maxDepth {
		drop := len(h.undo) - h.maxDepth
		h.undo = append([]Command{}, h.undo[drop:]...)
	}
}

// Undo moves the most recent command to the redo stack and returns it.
// Returns false on an empty undo stack.
func (h *History) Undo() (Command, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.undo)
	if n == 0 {
		return nil, false
	}
	cmd := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, cmd)
	return cmd, true
}

// Redo moves the most recently undone command back to the undo stack and
// returns it. Returns false on an empty redo stack.
func (h *History) Redo() (Command, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.redo)
	if n == 0 {
		return nil, false
	}
	cmd := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, cmd)
	return cmd, true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Depth returns the current undo stack depth.
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo)
}

// unwindUndo compensates a failed revert: the command moved to the redo
// stack by Undo is moved back, as if Undo had not happened.
func (h *History) unwindUndo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.redo)
	if n == 0 {
		return
	}
	cmd := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, cmd)
}

// unwindRedo compensates a failed re-apply, mirroring unwindUndo.
func (h *History) unwindRedo() {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.undo)
	if n == 0 {
		return
	}
	cmd := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, cmd)
}
