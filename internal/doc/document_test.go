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
	"errors"
	"testing"
)

func mustRemove(t *testing.T, positions ...int) *RemovePagesCommand {
	t.Helper()
	cmd, err := NewRemovePagesCommand(positions)
	if err != nil {
		t.Fatalf("new remove command: %v", err)
	}
	return cmd
}

func TestExecutePushesHistoryAndModifies(t *testing.T) {
	d := newTestDoc(5)
	if d.Modified() {
		t.Fatalf("fresh document reported modified")
	}
	const n = 3
	for i := 0; i < n; i++ {
		if err := d.Execute(mustRemove(t, 1)); err != nil {
			t.Fatalf("execute %d: %v", i, err)
		}
	}
	if !d.CanUndo() || d.CanRedo() {
		t.Fatalf("after %d executes: canUndo=%v canRedo=%v", n, d.CanUndo(), d.CanRedo())
	}
	if depth := d.History().Depth(); depth != n {
		t.Fatalf("undo depth = %d, want %d", depth, n)
	}
	if !d.Modified() {
		t.Fatalf("document not marked modified after execute")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	d := newTestDoc(5)
	if err := d.Execute(mustRemove(t, 2, 3)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := pageNumbers(d)

	d.UndoCommand()
	if got := pageNumbers(d); !equalInts(got, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("after undo: %v", got)
	}
	d.RedoCommand()
	if got := pageNumbers(d); !equalInts(got, want) {
		t.Fatalf("redo did not restore post-execute state: got %v want %v", got, want)
	}
}

func TestExecuteInvalidatesRedoBranch(t *testing.T) {
	d := newTestDoc(5)
	if err := d.Execute(mustRemove(t, 1)); err != nil {
		t.Fatalf("execute c1: %v", err)
	}
	d.UndoCommand()
	if !d.CanRedo() {
		t.Fatalf("redo should be available after undo")
	}
	if err := d.Execute(mustRemove(t, 5)); err != nil {
		t.Fatalf("execute c2: %v", err)
	}
	if d.CanRedo() {
		t.Fatalf("c1 redo branch must be discarded by c2")
	}
}

func TestEmptyHistoryNoOps(t *testing.T) {
	d := newTestDoc(3)
	notified := 0
	d.CommandExecuted().Connect(func() { notified++ })

	d.UndoCommand()
	d.RedoCommand()

	if got := pageNumbers(d); !equalInts(got, []int{1, 2, 3}) {
		t.Fatalf("no-op undo/redo mutated pages: %v", got)
	}
	if d.CanUndo() || d.CanRedo() {
		t.Fatalf("empty stacks reported available: canUndo=%v canRedo=%v", d.CanUndo(), d.CanRedo())
	}
	if d.Modified() {
		t.Fatalf("no-op undo/redo marked document modified")
	}
	if notified != 2 {
		t.Fatalf("expected a completion per call, got %d", notified)
	}
}

func TestNotificationFiresAfterStateSettled(t *testing.T) {
	d := newTestDoc(5)
	type snapshot struct {
		canUndo, canRedo bool
		pages            int
	}
	var seen []snapshot
	d.CommandExecuted().Connect(func() {
		seen = append(seen, snapshot{d.CanUndo(), d.CanRedo(), d.PageCount()})
	})

	if err := d.Execute(mustRemove(t, 2, 3)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	d.UndoCommand()

	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if got := seen[0]; !got.canUndo || got.canRedo || got.pages != 3 {
		t.Fatalf("post-execute observer view inconsistent: %+v", got)
	}
	if got := seen[1]; got.canUndo || !got.canRedo || got.pages != 5 {
		t.Fatalf("post-undo observer view inconsistent: %+v", got)
	}
}

// failingCommand fails on Apply without touching the document.
type failingCommand struct{}

func (failingCommand) Apply(*Document) error  { return errors.New("refused") }
func (failingCommand) Revert(*Document) error { return nil }
func (failingCommand) String() string         { return "failing" }

func TestFailedExecuteLeavesHistoryAlone(t *testing.T) {
	d := newTestDoc(3)
	notified := 0
	d.CommandExecuted().Connect(func() { notified++ })

	if err := d.Execute(failingCommand{}); err == nil {
		t.Fatalf("expected execute error")
	}
	if d.CanUndo() || d.Modified() {
		t.Fatalf("failed execute changed history or modified flag")
	}
	if notified != 1 {
		t.Fatalf("completion must still fire on failure, got %d", notified)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	d := newTestDoc(4)
	if err := d.Execute(mustRemove(t, 4)); err != nil {
		t.Fatalf("execute: %v", err)
	}
	m := d.Manifest()
	if m.FormatVersion != FormatVersion || m.Source != "test.pdf" {
		t.Fatalf("manifest header wrong: %+v", m)
	}
	if len(m.Pages) != 3 {
		t.Fatalf("manifest pages = %d, want 3", len(m.Pages))
	}
	// the manifest is a snapshot, not a view
	d.UndoCommand()
	if len(m.Pages) != 3 {
		t.Fatalf("manifest snapshot changed after undo")
	}
}
