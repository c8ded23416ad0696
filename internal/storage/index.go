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
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "pdfslicer/internal/log"
	"pdfslicer/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump on breaking schema changes and add migrations.
	schemaVersion = 1

	// maxRecents caps the recent-documents list.
	maxRecents = 20
)

// Index is the per-user embedded database: the recent-documents list and
// crash snapshot records. It is derived data and safe to delete.
type Index struct {
	db *sql.DB
}

// RecentDocument is one entry of the recent-documents list.
type RecentDocument struct {
	Path      string
	PageCount int
	OpenedAt  time.Time
}

// IndexPath returns the index database path under dir.
func IndexPath(dir string) string {
	return filepath.Join(dir, IndexFileName)
}

// OpenIndex opens (creating if needed) the index database under dir,
// enables WAL mode and ensures the schema exists.
func OpenIndex(dir string) (*Index, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_init").With(
		slog.String("dir", dir),
	)
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("index dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(IndexPath(dir)))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Debug("index ready")
	return &Index{db: db}, nil
}

// Close releases the database handle.
func (ix *Index) Close() error {
	if ix == nil || ix.db == nil {
		return nil
	}
	return ix.db.Close()
}

func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS recents (
			path       TEXT PRIMARY KEY,
			page_count INTEGER NOT NULL,
			opened_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS crash_snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			document_path TEXT NOT NULL,
			snapshot_path TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	meta := `INSERT INTO meta(key, value) VALUES ('schema', ?), ('app', ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`
	if _, err := db.ExecContext(ctx, meta, fmt.Sprint(schemaVersion), "pdfslicer "+version.String()); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

// language=SQL
// dialect=SQLite
const upsertRecentSQL = `INSERT INTO recents(path, page_count, opened_at) VALUES (?, ?, ?)
	ON CONFLICT(path) DO UPDATE SET page_count=excluded.page_count, opened_at=excluded.opened_at`

// language=SQL
// dialect=SQLite
const pruneRecentsSQL = `DELETE FROM recents WHERE path NOT IN (
	SELECT path FROM recents ORDER BY opened_at DESC LIMIT ?
)`

// language=SQL
// dialect=SQLite
const listRecentsSQL = `SELECT path, page_count, opened_at FROM recents ORDER BY opened_at DESC LIMIT ?`

// TouchRecent records that path was opened now, pruning the list to its cap.
func (ix *Index) TouchRecent(ctx context.Context, path string, pageCount int) error {
	if ix == nil {
		return errors.New("nil index")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := ix.db.ExecContext(ctx, upsertRecentSQL, path, pageCount, now); err != nil {
		return err
	}
	_, err := ix.db.ExecContext(ctx, pruneRecentsSQL, maxRecents)
	return err
}

// Recents returns up to limit most recently opened documents, newest first.
func (ix *Index) Recents(ctx context.Context, limit int) ([]RecentDocument, error) {
	if ix == nil {
		return nil, errors.New("nil index")
	}
	if limit <= 0 || limit > maxRecents {
		limit = maxRecents
	}
	rows, err := ix.db.QueryContext(ctx, listRecentsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []RecentDocument
	for rows.Next() {
		var r RecentDocument
		var tsStr string
		if err := rows.Scan(&r.Path, &r.PageCount, &tsStr); err != nil {
			return nil, err
		}
		if ts, perr := time.Parse(time.RFC3339Nano, tsStr); perr == nil {
			r.OpenedAt = ts
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordCrashSnapshot notes where a crash autosave was written so the next
// start can offer recovery.
func (ix *Index) RecordCrashSnapshot(ctx context.Context, documentPath, snapshotPath string) error {
	if ix == nil {
		return errors.New("nil index")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := ix.db.ExecContext(ctx,
		`INSERT INTO crash_snapshots(document_path, snapshot_path, created_at) VALUES (?, ?, ?)`,
		documentPath, snapshotPath, now)
	return err
}

// LatestCrashSnapshot returns the most recent crash snapshot path for a
// document, or "" if none is recorded.
func (ix *Index) LatestCrashSnapshot(ctx context.Context, documentPath string) (string, error) {
	if ix == nil {
		return "", errors.New("nil index")
	}
	var p string
	err := ix.db.QueryRowContext(ctx,
		`SELECT snapshot_path FROM crash_snapshots WHERE document_path = ? ORDER BY id DESC LIMIT 1`,
		documentPath).Scan(&p)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return p, err
}
