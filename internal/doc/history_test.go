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

import (
	"fmt"
	"testing"
)

// nopCommand is a history-only stand-in; it never touches the document.
type nopCommand struct{ id int }

func (c *nopCommand) Apply(*Document) error  { return nil }
func (c *nopCommand) Revert(*Document) error { return nil }
func (c *nopCommand) String() string         { return fmt.Sprintf("nop %d", c.id) }

func TestHistoryPushDepth(t *testing.T) {
	h := NewHistory(0)
	const n = 5
	for i := 0; i < n; i++ {
		h.Push(&nopCommand{id: i})
	}
	if h.Depth() != n {
		t.Fatalf("depth = %d, want %d", h.Depth(), n)
	}
	if !h.CanUndo() || h.CanRedo() {
		t.Fatalf("after %d pushes: canUndo=%v canRedo=%v", n, h.CanUndo(), h.CanRedo())
	}
}

func TestHistoryUndoRedoMoves(t *testing.T) {
	h := NewHistory(0)
	c1 := &nopCommand{id: 1}
	h.Push(c1)
	cmd, ok := h.Undo()
	if !ok || cmd != c1 {
		t.Fatalf("undo returned %v ok=%v", cmd, ok)
	}
	if h.CanUndo() || !h.CanRedo() {
		t.Fatalf("after undo: canUndo=%v canRedo=%v", h.CanUndo(), h.CanRedo())
	}
	cmd, ok = h.Redo()
	if !ok || cmd != c1 {
		t.Fatalf("redo returned %v ok=%v", cmd, ok)
	}
	if !h.CanUndo() || h.CanRedo() {
		t.Fatalf("after redo: canUndo=%v canRedo=%v", h.CanUndo(), h.CanRedo())
	}
}

func TestHistoryPushClearsRedo(t *testing.T) {
	h := NewHistory(0)
	h.Push(&nopCommand{id: 1})
	h.Undo()
	if !h.CanRedo() {
		t.Fatalf("expected redo available after undo")
	}
	h.Push(&nopCommand{id: 2})
	if h.CanRedo() {
		t.Fatalf("new push must discard the redo branch")
	}
}

func TestHistoryEmptyStacksNoOp(t *testing.T) {
	h := NewHistory(0)
	if _, ok := h.Undo(); ok {
		t.Fatalf("undo on empty stack returned ok")
	}
	if _, ok := h.Redo(); ok {
		t.Fatalf("redo on empty stack returned ok")
	}
}

func TestHistoryMaxDepthPrunesOldest(t *testing.T) {
	h := NewHistory(3)
	var cmds []*nopCommand
	for i := 0; i < 5; i++ {
		c := &nopCommand{id: i}
		cmds = append(cmds, c)
		h.Push(c)
	}
	if h.Depth() != 3 {
		t.Fatalf("depth = %d, want 3", h.Depth())
	}
	// the survivors are the most recent three, newest first on undo
	for want := 4; want >= 2; want-- {
		cmd, ok := h.Undo()
		if !ok || cmd != cmds[want] {
			t.Fatalf("expected command %d, got %v", want, cmd)
		}
	}
	if h.CanUndo() {
		t.Fatalf("pruned entries still present")
	}
}

func TestHistoryUnwindUndo(t *testing.T) {
	h := NewHistory(0)
	c := &nopCommand{id: 1}
	h.Push(c)
	h.Undo()
	h.unwindUndo()
	if !h.CanUndo() || h.CanRedo() {
		t.Fatalf("unwindUndo did not restore stacks: canUndo=%v canRedo=%v", h.CanUndo(), h.CanRedo())
	}
}

func TestHistoryUnwindRedo(t *testing.T) {
	h := NewHistory(0)
	c := &nopCommand{id: 1}
	h.Push(c)
	h.Undo()
	h.Redo()
	h.unwindRedo()
	if h.CanUndo() || !h.CanRedo() {
		t.Fatalf("unwindRedo did not restore stacks: canUndo=%v canRedo=%v", h.CanUndo(), h.CanRedo())
	}
}
