/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pdfslicer/internal/config"
	"pdfslicer/internal/crash"
	"pdfslicer/internal/doc"
	"pdfslicer/internal/export"
	applog "pdfslicer/internal/log"
	"pdfslicer/internal/session"
	"pdfslicer/internal/storage"
	"pdfslicer/internal/ui"
	"pdfslicer/internal/version"
)

func usage() {
	fmt.Println("PDF Slicer — page composition for PDF documents")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pdfslicer version|-v|--version                  Show version")
	fmt.Println("  pdfslicer init <file> <source> <pages>          Create a new document manifest")
	fmt.Println("  pdfslicer open <file>                           Open a document and print a summary")
	fmt.Println("  pdfslicer remove <file> <pos>[,<pos>...]        Remove pages and save")
	fmt.Println("  pdfslicer move <file> <from> <to>               Move a page and save")
	fmt.Println("  pdfslicer rotate <file> <turns> <pos>[,...]     Rotate pages by quarter turns and save")
	fmt.Println("  pdfslicer export <file> <out.pdf>               Export the page list as a PDF")
	fmt.Println("  pdfslicer recents                               List recently opened documents")
	fmt.Println("  pdfslicer ui [<file>]                           Launch desktop UI (build with -tags fyne)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")

	var sess *session.Session
	defer func() {
		var d *doc.Document
		var path string
		if sess != nil {
			d, path = sess.Document(), sess.Path()
		}
		crash.Recover(d, path)
	}()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("PDF Slicer — page composition for PDF documents")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 5 {
				fmt.Println("init requires <file>, <source> and <pages>")
				usage()
				os.Exit(2)
			}
			file, source := args[2], args[3]
			n, err := strconv.Atoi(args[4])
			if err != nil || n < 1 {
				fmt.Println("pages must be a positive number")
				os.Exit(2)
			}
			pages := make([]doc.Page, n)
			for i := range pages {
				pages[i] = doc.Page{Number: i + 1}
			}
			d := doc.New(doc.Manifest{FormatVersion: doc.FormatVersion, Source: source, Pages: pages}, 0)
			abs, _ := filepath.Abs(file)
			l.Info("init document", slog.String("path", abs), slog.Int("pages", n))
			if err := storage.SaveDocument(d, abs); err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Created document at", abs)
			return
		case "open":
			requireArgs(args, 3, "open requires <file>")
			sess = openSession(l, args[2])
			d := sess.Document()
			fmt.Printf("Opened document: %s\n", displayTitle(d))
			fmt.Printf("Source: %s\n", d.Source())
			fmt.Printf("Pages: %d\n", d.PageCount())
			sess.Close()
			return
		case "remove":
			requireArgs(args, 4, "remove requires <file> and page positions")
			positions := parsePositions(args[3])
			sess = openSession(l, args[2])
			if err := sess.QueueRemovePages(positions); err != nil {
				fail(l, sess, "remove", err)
			}
			flushAndSave(l, sess)
			fmt.Printf("Removed %d page(s); %d remain.\n", len(positions), sess.Document().PageCount())
			return
		case "move":
			requireArgs(args, 5, "move requires <file>, <from> and <to>")
			from, to := parseInt(args[3], "from"), parseInt(args[4], "to")
			sess = openSession(l, args[2])
			if err := sess.QueueMovePage(from, to); err != nil {
				fail(l, sess, "move", err)
			}
			flushAndSave(l, sess)
			fmt.Printf("Moved page %d to position %d.\n", from, to)
			return
		case "rotate":
			requireArgs(args, 5, "rotate requires <file>, <turns> and page positions")
			turns := parseInt(args[3], "turns")
			positions := parsePositions(args[4])
			sess = openSession(l, args[2])
			if err := sess.QueueRotatePages(positions, turns); err != nil {
				fail(l, sess, "rotate", err)
			}
			flushAndSave(l, sess)
			fmt.Printf("Rotated %d page(s) by %d quarter turn(s).\n", len(positions), turns)
			return
		case "export":
			requireArgs(args, 4, "export requires <file> and <out.pdf>")
			sess = openSession(l, args[2])
			out, _ := filepath.Abs(args[3])
			if err := sess.Export(out, export.PDFOptions{}); err != nil {
				fail(l, sess, "export", err)
			}
			sess.Close()
			fmt.Println("Exported to", out)
			return
		case "recents":
			ix := openIndex(l)
			if ix == nil {
				fmt.Println("No recents index available.")
				os.Exit(1)
			}
			rs, err := ix.Recents(context.Background(), 10)
			if cerr := ix.Close(); cerr != nil {
				l.Warn("index close failed", slog.Any("err", cerr))
			}
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			if len(rs) == 0 {
				fmt.Println("No recent documents.")
				return
			}
			for _, r := range rs {
				fmt.Printf("%s  %4d pages  %s\n", r.OpenedAt.Format("2006-01-02 15:04"), r.PageCount, r.Path)
			}
			return
		case "ui":
			var file string
			if len(args) >= 3 {
				file = args[2]
			}
			if err := ui.Run(file); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func openSession(l *slog.Logger, file string) *session.Session {
	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	s := session.New(cfg.History.MaxDepth, openIndex(l))
	abs, _ := filepath.Abs(file)
	if err := s.Open(abs); err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		s.Close()
		os.Exit(1)
	}
	return s
}

// openIndex opens the per-user index next to the config file; best effort,
// nil disables recents tracking.
func openIndex(l *slog.Logger) *storage.Index {
	path, err := config.ConfigPath()
	if err != nil {
		return nil
	}
	ix, err := storage.OpenIndex(filepath.Dir(path))
	if err != nil {
		l.Debug("index unavailable", slog.Any("err", err))
		return nil
	}
	return ix
}

// flushAndSave waits for queued commands to finish, then saves and shuts
// the session down.
func flushAndSave(l *slog.Logger, s *session.Session) {
	<-s.Barrier()
	if err := s.Save(); err != nil {
		fail(l, s, "save", err)
	}
	s.Close()
}

func fail(l *slog.Logger, s *session.Session, op string, err error) {
	l.Error(op+" failed", slog.Any("err", err))
	fmt.Println("Error:", err)
	if s != nil {
		s.Close()
	}
	os.Exit(1)
}

func requireArgs(args []string, n int, msg string) {
	if len(args) < n {
		fmt.Println(msg)
		usage()
		os.Exit(2)
	}
}

func parseInt(s, what string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		fmt.Printf("%s must be a number, got %q\n", what, s)
		os.Exit(2)
	}
	return v
}

// parsePositions parses a comma-separated list of 1-based page positions.
func parsePositions(s string) []int {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			fmt.Printf("invalid page position %q\n", p)
			os.Exit(2)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		fmt.Println("no page positions given")
		os.Exit(2)
	}
	return out
}

func displayTitle(d *doc.Document) string {
	if t := d.Title(); t != "" {
		return t
	}
	return filepath.Base(d.Source())
}
