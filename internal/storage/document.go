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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"pdfslicer/internal/doc"
)

// BackupsDirName is the hidden directory next to a manifest holding its
// timestamped backups.
const BackupsDirName = ".psl-backups"

// manifestSchema validates a manifest before it is trusted. Rejecting bad
// input here is what guarantees open never installs a partial document.
const manifestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["formatVersion", "source", "pages"],
  "properties": {
    "formatVersion": {"type": "integer", "minimum": 1},
    "title": {"type": "string"},
    "source": {"type": "string", "minLength": 1},
    "pages": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["number"],
        "properties": {
          "number": {"type": "integer", "minimum": 1},
          "rotation": {"type": "integer", "enum": [0, 90, 180, 270]},
          "label": {"type": "string"}
        }
      }
    }
  }
}`

// OpenDocument loads a document manifest from path. The manifest is
// schema-validated; if the current file is unreadable or invalid, the
// latest timestamped backup is tried before giving up. On error no document
// is returned, so a previously open document stays untouched.
func OpenDocument(path string, historyDepth int) (*doc.Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		m, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return doc.New(*m, historyDepth), nil
	}
	m, err := parseManifest(b)
	if err != nil {
		bm, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", err, berr)
		}
		return doc.New(*bm, historyDepth), nil
	}
	return doc.New(*m, historyDepth), nil
}

// SaveDocument writes the document's current state to dest with
// transactional semantics and a timestamped backup of the previous file
// (if present). The document's history is untouched by saving.
func SaveDocument(d *doc.Document, dest string) error {
	if d == nil {
		return errors.New("nil document")
	}
	if strings.TrimSpace(dest) == "" {
		return errors.New("destination path is required")
	}
	data, err := json.MarshalIndent(d.Manifest(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	if _, statErr := os.Stat(dest); statErr == nil {
		if err := backupManifest(dest); err != nil {
			return fmt.Errorf("backup current manifest: %w", err)
		}
	}

	// Transactional write: temp file in the same directory, then rename.
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure destination dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(dest), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp manifest: %w", err)
	}
	// On Windows, replace by removing the destination first if needed.
	if _, err := os.Stat(dest); err == nil {
		_ = os.Remove(dest)
	}
	if err := os.Rename(temp, dest); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// AutosaveCrashSnapshot writes the document's current manifest into the
// backups directory without disturbing the document file itself. Used by
// the crash handler; returns the snapshot path.
func AutosaveCrashSnapshot(d *doc.Document, documentPath string) (string, error) {
	if d == nil {
		return "", errors.New("nil document")
	}
	dir := os.TempDir()
	if strings.TrimSpace(documentPath) != "" {
		dir = backupsDirFor(documentPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(d.Manifest(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-autosave-%s.json", stamp))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

func parseManifest(b []byte) (*doc.Manifest, error) {
	res, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(b),
	)
	if err != nil {
		return nil, fmt.Errorf("validate manifest: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("manifest invalid: %s", strings.Join(msgs, "; "))
	}
	var m doc.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.FormatVersion > doc.FormatVersion {
		return nil, fmt.Errorf("manifest format %d is newer than supported %d", m.FormatVersion, doc.FormatVersion)
	}
	return &m, nil
}

func backupsDirFor(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), BackupsDirName)
}

func backupManifest(manifestPath string) error {
	bdir := backupsDirFor(manifestPath)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return err
	}
	stamp := time.Now().Format("20060102-150405")
	bname := fmt.Sprintf("%s.%s.bak", filepath.Base(manifestPath), stamp)
	return copyFile(manifestPath, filepath.Join(bdir, bname))
}

func openFromLatestBackup(manifestPath string) (*doc.Manifest, error) {
	bdir := backupsDirFor(manifestPath)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	base := filepath.Base(manifestPath)
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	m, err := parseManifest(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return m, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if it exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
