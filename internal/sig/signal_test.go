/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package sig

import (
	"errors"
	"testing"
)

func TestSignalConnectionOrder(t *testing.T) {
	var s Signal
	var got []int
	s.Connect(func() { got = append(got, 1) })
	s.Connect(func() { got = append(got, 2) })
	s.Connect(func() { got = append(got, 3) })
	s.Emit()
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("handlers ran out of order: %v", got)
	}
}

func TestSignalEmitWithNoHandlers(t *testing.T) {
	var s Signal
	s.Emit() // must not panic
}

func TestSignalOncePerEmit(t *testing.T) {
	var s Signal
	count := 0
	s.Connect(func() { count++ })
	s.Emit()
	s.Emit()
	if count != 2 {
		t.Fatalf("expected 2 invocations, got %d", count)
	}
}

func TestSignalConnectDuringEmitDeferred(t *testing.T) {
	var s Signal
	count := 0
	s.Connect(func() {
		s.Connect(func() { count += 10 })
		count++
	})
	s.Emit()
	if count != 1 {
		t.Fatalf("handler connected during emit ran too early, count=%d", count)
	}
	s.Emit()
	if count != 12 {
		t.Fatalf("expected late handler on second emit, count=%d", count)
	}
}

func TestErrorSignalCarriesValue(t *testing.T) {
	var s ErrorSignal
	want := errors.New("boom")
	var got error
	s.Connect(func(err error) { got = err })
	s.Emit(want)
	if !errors.Is(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNilHandlerIgnored(t *testing.T) {
	var s Signal
	s.Connect(nil)
	s.Emit() // must not panic
}
