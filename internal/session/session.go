/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package session ties one open document to its command pipeline: the
// worker queue, the command slot in front of it, and the persistence and
// export collaborators. A Session is what the UI and the CLI both drive.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"pdfslicer/internal/doc"
	"pdfslicer/internal/export"
	applog "pdfslicer/internal/log"
	"pdfslicer/internal/storage"
	"pdfslicer/internal/telemetry"
	"pdfslicer/internal/worker"
)

// ErrNoDocument is returned by operations that need an open document.
var ErrNoDocument = errors.New("no document open")

// Session owns the command pipeline for at most one open document. All
// document mutations go through QueueX methods, which funnel into a single
// worker goroutine; opening, saving and exporting run on the caller's
// goroutine against a settled snapshot.
type Session struct {
	mu      sync.Mutex
	doc     *doc.Document
	docPath string

	queue *worker.Queue
	slot  *worker.CommandSlot

	historyDepth int
	index        *storage.Index
	log          *slog.Logger
}

// New creates a session with an empty document slot and a running worker.
// index may be nil (recents tracking is then skipped).
func New(historyDepth int, index *storage.Index) *Session {
	q := worker.NewQueue()
	return &Session{
		queue:        q,
		slot:         worker.NewCommandSlot(q),
		historyDepth: historyDepth,
		index:        index,
		log:          applog.WithComponent("session"),
	}
}

// Slot exposes the command slot so collaborators can observe CommandQueued
// and CommandFault.
func (s *Session) Slot() *worker.CommandSlot { return s.slot }

// Document returns the currently open document, or nil.
func (s *Session) Document() *doc.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Path returns the manifest path of the open document ("" for none).
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docPath
}

// Open loads the manifest at path and installs it as the session's
// document. On failure the previously open document (if any) stays in
// place untouched.
func (s *Session) Open(path string) error {
	d, err := storage.OpenDocument(path, s.historyDepth)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	s.mu.Lock()
	s.doc = d
	s.docPath = path
	s.mu.Unlock()
	s.log.Info("document opened", slog.String("path", path), slog.Int("pages", d.PageCount()))
	if s.index != nil {
		if err := s.index.TouchRecent(context.Background(), path, d.PageCount()); err != nil {
			s.log.Warn("recents update failed", slog.Any("err", err))
		}
	}
	telemetry.Event("document_opened", map[string]any{"pages": d.PageCount()})
	return nil
}

// Save writes the open document back to the path it was opened from.
func (s *Session) Save() error {
	s.mu.Lock()
	d, path := s.doc, s.docPath
	s.mu.Unlock()
	if d == nil {
		return ErrNoDocument
	}
	if path == "" {
		return errors.New("document has no path, use SaveAs")
	}
	return storage.SaveDocument(d, path)
}

// SaveAs writes the open document to dest and makes dest the session path.
func (s *Session) SaveAs(dest string) error {
	s.mu.Lock()
	d := s.doc
	s.mu.Unlock()
	if d == nil {
		return ErrNoDocument
	}
	if err := storage.SaveDocument(d, dest); err != nil {
		return err
	}
	s.mu.Lock()
	s.docPath = dest
	s.mu.Unlock()
	return nil
}

// Export renders the open document's current page list to a PDF at outPath.
func (s *Session) Export(outPath string, opt export.PDFOptions) error {
	d := s.Document()
	if d == nil {
		return ErrNoDocument
	}
	if err := export.ExportPDF(d, outPath, opt); err != nil {
		return err
	}
	telemetry.Event("document_exported", map[string]any{"pages": d.PageCount()})
	return nil
}

// QueueRemovePages queues removal of the pages at the given 1-based
// positions. The command is validated here; enqueueing never blocks.
func (s *Session) QueueRemovePages(positions []int) error {
	d := s.Document()
	if d == nil {
		return ErrNoDocument
	}
	cmd, err := doc.NewRemovePagesCommand(positions)
	if err != nil {
		return err
	}
	return s.queueExecute(d, cmd)
}

// QueueRemovePrevious queues removal of all pages before position.
func (s *Session) QueueRemovePrevious(position int) error {
	d := s.Document()
	if d == nil {
		return ErrNoDocument
	}
	cmd, err := doc.NewRemovePreviousCommand(position)
	if err != nil {
		return err
	}
	return s.queueExecute(d, cmd)
}

// QueueRemoveNext queues removal of all pages after position.
func (s *Session) QueueRemoveNext(position int) error {
	d := s.Document()
	if d == nil {
		return ErrNoDocument
	}
	cmd, err := doc.NewRemoveNextCommand(position, d.PageCount())
	if err != nil {
		return err
	}
	return s.queueExecute(d, cmd)
}

// QueueMovePage queues moving the page at from to position to.
func (s *Session) QueueMovePage(from, to int) error {
	d := s.Document()
	if d == nil {
		return ErrNoDocument
	}
	cmd, err := doc.NewMovePageCommand(from, to)
	if err != nil {
		return err
	}
	return s.queueExecute(d, cmd)
}

// QueueRotatePages queues rotating the pages at the given positions by
// quarterTurns clockwise quarter turns.
func (s *Session) QueueRotatePages(positions []int, quarterTurns int) error {
	d := s.Document()
	if d == nil {
		return ErrNoDocument
	}
	cmd, err := doc.NewRotatePagesCommand(positions, quarterTurns)
	if err != nil {
		return err
	}
	return s.queueExecute(d, cmd)
}

// QueueUndo queues an undo of the most recent command.
func (s *Session) QueueUndo() error {
	d := s.Document()
	if d == nil {
		return ErrNoDocument
	}
	if !s.slot.QueueCommand(d.UndoCommand) {
		return errors.New("session closed")
	}
	return nil
}

// QueueRedo queues a redo of the most recently undone command.
func (s *Session) QueueRedo() error {
	d := s.Document()
	if d == nil {
		return ErrNoDocument
	}
	if !s.slot.QueueCommand(d.RedoCommand) {
		return errors.New("session closed")
	}
	return nil
}

func (s *Session) queueExecute(d *doc.Document, cmd doc.Command) error {
	ok := s.slot.QueueCommand(func() {
		if err := d.Execute(cmd); err != nil {
			s.log.Error("command failed", slog.String("cmd", cmd.String()), slog.Any("err", err))
			return
		}
		s.log.Debug("command executed", slog.String("cmd", cmd.String()))
		telemetry.Event("command_executed", map[string]any{"kind": cmd.String()})
	})
	if !ok {
		return errors.New("session closed")
	}
	return nil
}

// Barrier submits a marker and returns a channel that is closed once every
// previously queued item has finished. Useful before saving or exporting
// while mutations may still be in flight.
func (s *Session) Barrier() <-chan struct{} {
	ch := make(chan struct{})
	if !s.queue.Submit(func() { close(ch) }) {
		close(ch)
	}
	return ch
}

// Close shuts the pipeline down. Queued commands still run; Close returns
// after the queue has drained. The session owns the index it was given and
// closes it here.
func (s *Session) Close() {
	s.queue.Close()
	s.queue.Wait()
	if s.index != nil {
		if err := s.index.Close(); err != nil {
			s.log.Warn("index close failed", slog.Any("err", err))
		}
	}
}
