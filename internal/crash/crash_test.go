package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pdfslicer/internal/doc"
	"pdfslicer/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport("", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "PDF Slicer Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
}

func TestWriteReportCreatesFileNextToDocument(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "scan.pslice")

	path, err := writeReport(docPath, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if !strings.Contains(path, filepath.Join(dir, storage.BackupsDirName)) {
		t.Fatalf("expected crash report under backups dir, got %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("report file missing: %v", err)
	}
}

func TestRecoverWritesSnapshotAndExits(t *testing.T) {
	exitCode := -1
	orig := exitFn
	exitFn = func(code int) { exitCode = code }
	defer func() { exitFn = orig }()

	dir := t.TempDir()
	docPath := filepath.Join(dir, "scan.pslice")
	d := doc.New(doc.Manifest{
		FormatVersion: doc.FormatVersion,
		Source:        "scan.pdf",
		Pages:         []doc.Page{{Number: 1}, {Number: 2}},
	}, 0)

	func() {
		defer Recover(d, docPath)
		panic("test panic")
	}()

	if exitCode != 2 {
		t.Fatalf("expected exit code 2, got %d", exitCode)
	}
	ents, err := os.ReadDir(filepath.Join(dir, storage.BackupsDirName))
	if err != nil {
		t.Fatalf("backups dir missing: %v", err)
	}
	var haveReport, haveSnapshot bool
	for _, e := range ents {
		if strings.HasPrefix(e.Name(), "crash-") && strings.HasSuffix(e.Name(), ".log") {
			haveReport = true
		}
		if strings.HasPrefix(e.Name(), "crash-autosave-") && strings.HasSuffix(e.Name(), ".json") {
			haveSnapshot = true
		}
	}
	if !haveReport {
		t.Fatalf("crash report not written: %v", ents)
	}
	if !haveSnapshot {
		t.Fatalf("crash autosave snapshot not written: %v", ents)
	}
}
