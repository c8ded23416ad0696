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
	"log/slog"
	"sync"

	applog "pdfslicer/internal/log"
	"pdfslicer/internal/sig"
)

// Document is one open file session: the current page list plus its
// undo/redo history. All mutating calls (Execute, UndoCommand, RedoCommand)
// must be routed through the command slot so they run one at a time on the
// worker context; the page list and history are additionally mutex-guarded
// so the interactive context can read them after a completion notification.
type Document struct {
	mu       sync.Mutex
	title    string
	source   string
	pages    []Page
	modified bool

	history  *History
	executed sig.Signal
}

// New creates a document from a manifest. The manifest is not retained;
// its page list is copied.
func New(m Manifest, maxHistoryDepth int) *Document {
	return &Document{
		title:   m.Title,
		source:  m.Source,
		pages:   append([]Page(nil), m.Pages...),
		history: NewHistory(maxHistoryDepth),
	}
}

// CommandExecuted is emitted exactly once per completed Execute,
// UndoCommand or RedoCommand call, after the page list and both history
// stacks are fully updated. Observers may trust CanUndo/CanRedo when it
// fires. Delivery is synchronous with the worker context; observers hop to
// the interactive context themselves.
func (d *Document) CommandExecuted() *sig.Signal { return &d.executed }

// Execute applies cmd and, on success, records it in the history and
// discards any pending redo branch. It must only be called from the
// serialized worker context. The completion signal fires whether or not
// cmd failed, so observers always re-sync.
func (d *Document) Execute(cmd Command) error {
	defer d.executed.Emit()
	if err := cmd.Apply(d); err != nil {
		return fmt.Errorf("execute %s: %w", cmd, err)
	}
	d.history.Push(cmd)
	d.markModified()
	return nil
}

// UndoCommand reverts the most recent command. A no-op on an empty undo
// stack; the completion signal fires either way.
func (d *Document) UndoCommand() {
	defer d.executed.Emit()
	cmd, ok := d.history.Undo()
	if !ok {
		return
	}
	if err := cmd.Revert(d); err != nil {
		// Shipped commands cannot fail to revert after a successful apply;
		// if one does, put the stacks back the way they were.
		d.history.unwindUndo()
		applog.WithComponent("doc").Error("revert failed",
			slog.String("cmd", cmd.String()), slog.Any("err", err))
	}
}

// RedoCommand re-applies the most recently undone command. A no-op on an
// empty redo stack; the completion signal fires either way.
func (d *Document) RedoCommand() {
	defer d.executed.Emit()
	cmd, ok := d.history.Redo()
	if !ok {
		return
	}
	if err := cmd.Apply(d); err != nil {
		d.history.unwindRedo()
		applog.WithComponent("doc").Error("redo failed",
			slog.String("cmd", cmd.String()), slog.Any("err", err))
	}
}

// CanUndo reports whether there is a command to undo. Pure read; intended
// to be called from the interactive context in response to the completion
// signal.
func (d *Document) CanUndo() bool { return d.history.CanUndo() }

// CanRedo reports whether there is a command to redo.
func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// History exposes the document's history for depth queries.
func (d *Document) History() *History { return d.history }

// Modified reports whether any command has executed in this session. The
// flag is sticky: saving does not reset it.
func (d *Document) Modified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.modified
}

// Title returns the document title (may be empty).
func (d *Document) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

// Source returns the path of the source file the pages refer to.
func (d *Document) Source() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.source
}

// Pages returns a copy of the current page list.
func (d *Document) Pages() []Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Page(nil), d.pages...)
}

// PageCount returns the current number of pages.
func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pages)
}

// Manifest captures the current state for serialization.
func (d *Document) Manifest() Manifest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Manifest{
		FormatVersion: FormatVersion,
		Title:         d.title,
		Source:        d.source,
		Pages:         append([]Page(nil), d.pages...),
	}
}

func (d *Document) markModified() {
	d.mu.Lock()
	d.modified = true
	d.mu.Unlock()
}

// Page-list mutations below are the primitives commands are built from.
// Each validates its inputs completely before touching the slice, so a
// failed call leaves the document untouched.

// removePagesAt removes the pages at the given sorted, de-duplicated
// 1-based positions and returns them in position order.
func (d *Document) removePagesAt(positions []int) ([]Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range positions {
		if p < 1 || p > len(d.pages) {
			return nil, fmt.Errorf("page position %d out of range 1..%d", p, len(d.pages))
		}
	}
	if len(positions) == len(d.pages) {
		return nil, fmt.Errorf("cannot remove all %d pages", len(d.pages))
	}
	removed := make([]Page, len(positions))
	for i := len(positions) - 1; i >= 0; i-- {
		idx := positions[i] - 1
		removed[i] = d.pages[idx]
		d.pages = append(d.pages[:idx], d.pages[idx+1:]...)
	}
	return removed, nil
}

// insertPagesAt reinserts pages at their original sorted 1-based positions.
func (d *Document) insertPagesAt(positions []int, pages []Page) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(positions) != len(pages) {
		return fmt.Errorf("position/page count mismatch: %d vs %d", len(positions), len(pages))
	}
	final := len(d.pages) + len(pages)
	for _, p := range positions {
		if p < 1 || p > final {
			return fmt.Errorf("insert position %d out of range 1..%d", p, final)
		}
	}
	for i, p := range positions {
		idx := p - 1
		d.pages = append(d.pages, Page{})
		copy(d.pages[idx+1:], d.pages[idx:])
		d.pages[idx] = pages[i]
	}
	return nil
}

// movePage moves the page at 1-based position from to position to.
func (d *Document) movePage(from, to int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.pages)
	if from < 1 || from > n {
		return fmt.Errorf("source position %d out of range 1..%d", from, n)
	}
	if to < 1 || to > n {
		return fmt.Errorf("target position %d out of range 1..%d", to, n)
	}
	pg := d.pages[from-1]
	d.pages = append(d.pages[:from-1], d.pages[from:]...)
	rest := append([]Page(nil), d.pages[to-1:]...)
	d.pages = append(d.pages[:to-1], pg)
	d.pages = append(d.pages, rest...)
	return nil
}

// rotatePagesAt adds deg (a multiple of 90) to the rotation of the pages at
// the given sorted 1-based positions.
func (d *Document) rotatePagesAt(positions []int, deg int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range positions {
		if p < 1 || p > len(d.pages) {
			return fmt.Errorf("page position %d out of range 1..%d", p, len(d.pages))
		}
	}
	for _, p := range positions {
		d.pages[p-1].Rotation = normalizeRotation(d.pages[p-1].Rotation + deg)
	}
	return nil
}
