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
	"fmt"
	"sort"
)

// Command is a reversible unit of document mutation. Apply must be
// all-or-nothing: it either completes or returns an error leaving the
// document untouched. Revert of a successfully applied command restores the
// exact prior page list. Commands are executed only from the serialized
// worker context and are owned by the history after a successful Apply.
type Command interface {
	Apply(d *Document) error
	Revert(d *Document) error
	String() string
}

var errNoPositions = errors.New("no page positions given")

// RemovePagesCommand removes the pages at the given 1-based positions.
// The removed pages and their positions are captured on Apply so Revert can
// reinsert them in place.
type RemovePagesCommand struct {
	positions []int
	removed   []Page
}

// NewRemovePagesCommand builds a removal of the given 1-based positions.
// Positions are sorted and de-duplicated; range checks happen on Apply,
// when the document is known.
func NewRemovePagesCommand(positions []int) (*RemovePagesCommand, error) {
	if len(positions) == 0 {
		return nil, errNoPositions
	}
	ps := append([]int(nil), positions...)
	sort.Ints(ps)
	uniq := ps[:1]
	for _, p := range ps[1:] {
		if p != uniq[len(uniq)-1] {
			uniq = append(uniq, p)
		}
	}
	return &RemovePagesCommand{positions: uniq}, nil
}

// NewRemovePreviousCommand removes every page before the given 1-based
// position.
func NewRemovePreviousCommand(position int) (*RemovePagesCommand, error) {
	if position <= 1 {
		return nil, fmt.Errorf("no pages before position %d", position)
	}
	ps := make([]int, position-1)
	for i := range ps {
		ps[i] = i + 1
	}
	return NewRemovePagesCommand(ps)
}

// NewRemoveNextCommand removes every page after the given 1-based position,
// up to pageCount.
func NewRemoveNextCommand(position, pageCount int) (*RemovePagesCommand, error) {
	if position >= pageCount {
		return nil, fmt.Errorf("no pages after position %d of %d", position, pageCount)
	}
	var ps []int
	for p := position + 1; p <= pageCount; p++ {
		ps = append(ps, p)
	}
	return NewRemovePagesCommand(ps)
}

func (c *RemovePagesCommand) Apply(d *Document) error {
	removed, err := d.removePagesAt(c.positions)
	if err != nil {
		return err
	}
	c.removed = removed
	return nil
}

func (c *RemovePagesCommand) Revert(d *Document) error {
	return d.insertPagesAt(c.positions, c.removed)
}

func (c *RemovePagesCommand) String() string {
	return fmt.Sprintf("remove %d page(s)", len(c.positions))
}

// MovePageCommand moves the page at position From to position To (1-based).
type MovePageCommand struct {
	From, To int
}

// NewMovePageCommand builds a page move. Range checks happen on Apply.
func NewMovePageCommand(from, to int) (*MovePageCommand, error) {
	if from == to {
		return nil, fmt.Errorf("move from %d to %d is a no-op", from, to)
	}
	return &MovePageCommand{From: from, To: to}, nil
}

func (c *MovePageCommand) Apply(d *Document) error {
	return d.movePage(c.From, c.To)
}

func (c *MovePageCommand) Revert(d *Document) error {
	return d.movePage(c.To, c.From)
}

func (c *MovePageCommand) String() string {
	return fmt.Sprintf("move page %d to %d", c.From, c.To)
}

// RotatePagesCommand rotates the pages at the given 1-based positions by a
// number of clockwise quarter turns.
type RotatePagesCommand struct {
	positions    []int
	quarterTurns int
}

// NewRotatePagesCommand builds a rotation. quarterTurns may be negative for
// counter-clockwise rotation; a multiple of 4 is rejected as a no-op.
func NewRotatePagesCommand(positions []int, quarterTurns int) (*RotatePagesCommand, error) {
	if len(positions) == 0 {
		return nil, errNoPositions
	}
	if quarterTurns%4 == 0 {
		return nil, fmt.Errorf("rotation by %d quarter turns is a no-op", quarterTurns)
	}
	ps := append([]int(nil), positions...)
	sort.Ints(ps)
	return &RotatePagesCommand{positions: ps, quarterTurns: quarterTurns}, nil
}

func (c *RotatePagesCommand) Apply(d *Document) error {
	return d.rotatePagesAt(c.positions, c.quarterTurns*90)
}

func (c *RotatePagesCommand) Revert(d *Document) error {
	return d.rotatePagesAt(c.positions, -c.quarterTurns*90)
}

func (c *RotatePagesCommand) String() string {
	return fmt.Sprintf("rotate %d page(s) by %d°", len(c.positions), c.quarterTurns*90)
}
