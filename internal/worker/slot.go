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
	"fmt"

	"pdfslicer/internal/sig"
)

// CommandSlot is the single path by which the interactive context enqueues
// a document mutation. Because all work funnels into one Queue, at most one
// mutation is ever in flight; a second QueueCommand while one runs is
// simply ordered behind it.
type CommandSlot struct {
	queue *Queue

	// CommandQueued fires synchronously on the caller's goroutine before
	// the work is submitted, so the collaborator can disable its controls
	// and show a busy indicator immediately.
	CommandQueued sig.Signal

	// CommandFault fires on the worker goroutine when queued work panics.
	// The worker itself survives and continues with the next item.
	CommandFault sig.ErrorSignal
}

// NewCommandSlot wires a slot to its queue.
func NewCommandSlot(queue *Queue) *CommandSlot {
	s := &CommandSlot{queue: queue}
	queue.OnFault(func(recovered any) {
		s.CommandFault.Emit(fmt.Errorf("command fault: %v", recovered))
	})
	return s
}

// QueueCommand emits CommandQueued synchronously on the caller's goroutine
// and forwards work to the queue. It never blocks. If the queue has already
// been closed the work is discarded and false is returned; CommandFault
// fires so observers that reacted to CommandQueued do not stay busy.
func (s *CommandSlot) QueueCommand(work func()) bool {
	if work == nil {
		return false
	}
	s.CommandQueued.Emit()
	if !s.queue.Submit(work) {
		s.CommandFault.Emit(errSlotClosed)
		return false
	}
	return true
}

var errSlotClosed = fmt.Errorf("command slot: queue is closed")
