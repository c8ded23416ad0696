/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"testing"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(t.TempDir())
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestIndexRecentsNewestFirst(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := ix.TouchRecent(ctx, fmt.Sprintf("/tmp/doc%d.json", i), i*5); err != nil {
			t.Fatalf("touch %d: %v", i, err)
		}
	}
	got, err := ix.Recents(ctx, 10)
	if err != nil {
		t.Fatalf("recents: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 recents, got %d", len(got))
	}
	if got[0].Path != "/tmp/doc3.json" || got[0].PageCount != 15 {
		t.Fatalf("newest entry wrong: %+v", got[0])
	}
}

func TestIndexTouchRecentUpserts(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	if err := ix.TouchRecent(ctx, "/tmp/a.json", 5); err != nil {
		t.Fatal(err)
	}
	if err := ix.TouchRecent(ctx, "/tmp/a.json", 3); err != nil {
		t.Fatal(err)
	}
	got, err := ix.Recents(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].PageCount != 3 {
		t.Fatalf("upsert failed: %+v", got)
	}
}

func TestIndexRecentsPruned(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	for i := 0; i < maxRecents+5; i++ {
		if err := ix.TouchRecent(ctx, fmt.Sprintf("/tmp/doc%03d.json", i), 1); err != nil {
			t.Fatal(err)
		}
	}
	got, err := ix.Recents(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) > maxRecents {
		t.Fatalf("recents not pruned: %d entries", len(got))
	}
}

func TestIndexCrashSnapshots(t *testing.T) {
	ix := openTestIndex(t)
	ctx := context.Background()
	if p, err := ix.LatestCrashSnapshot(ctx, "/tmp/doc.json"); err != nil || p != "" {
		t.Fatalf("expected no snapshot, got %q err=%v", p, err)
	}
	if err := ix.RecordCrashSnapshot(ctx, "/tmp/doc.json", "/tmp/bak/one.json"); err != nil {
		t.Fatal(err)
	}
	if err := ix.RecordCrashSnapshot(ctx, "/tmp/doc.json", "/tmp/bak/two.json"); err != nil {
		t.Fatal(err)
	}
	p, err := ix.LatestCrashSnapshot(ctx, "/tmp/doc.json")
	if err != nil {
		t.Fatal(err)
	}
	if p != "/tmp/bak/two.json" {
		t.Fatalf("expected latest snapshot, got %q", p)
	}
}

func TestIndexReopen(t *testing.T) {
	dir := t.TempDir()
	ix, err := OpenIndex(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := ix.TouchRecent(context.Background(), "/tmp/a.json", 2); err != nil {
		t.Fatal(err)
	}
	if err := ix.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	ix2, err := OpenIndex(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = ix2.Close() }()
	got, err := ix2.Recents(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("data lost across reopen: %+v", got)
	}
}
