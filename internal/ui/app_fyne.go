//go:build fyne && cgo

/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"pdfslicer/internal/config"
	"pdfslicer/internal/crash"
	"pdfslicer/internal/doc"
	"pdfslicer/internal/export"
	applog "pdfslicer/internal/log"
	"pdfslicer/internal/session"
	"pdfslicer/internal/storage"
	"pdfslicer/internal/version"
)

// Run starts the Fyne-based desktop shell around a session. All widget
// state is derived from the document and refreshed when the completion
// signal fires; the queued signal disables the editing controls first, so
// the window never issues two overlapping mutations.
func Run(docPath string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	cfg, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	var index *storage.Index
	if cfgPath, perr := config.ConfigPath(); perr == nil {
		if ix, ierr := storage.OpenIndex(filepath.Dir(cfgPath)); ierr == nil {
			index = ix
		} else {
			l.Debug("index unavailable", slog.Any("err", ierr))
		}
	}
	sess := session.New(cfg.History.MaxDepth, index)
	defer sess.Close()
	defer func() { crash.Recover(sess.Document(), sess.Path()) }()

	fyneApp := app.NewWithID("pdfslicer")
	w := fyneApp.NewWindow("PDF Slicer " + version.String())
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1000)
	winH := prefs.IntWithFallback("window.height", 700)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	busy := widget.NewProgressBarInfinite()
	busy.Hide()

	var previews *storage.PreviewCache
	if cacheRoot, cerr := os.UserCacheDir(); cerr == nil {
		if pc, perr := storage.NewPreviewCache(filepath.Join(cacheRoot, "pdfslicer", "previews")); perr == nil {
			previews = pc
		} else {
			l.Debug("preview cache unavailable", slog.Any("err", perr))
		}
	}
	previewImg := canvas.NewImageFromResource(nil)
	previewImg.FillMode = canvas.ImageFillContain
	previewImg.SetMinSize(fyne.NewSize(210, 297))

	showPreview := func(pos int) {
		if previews == nil {
			return
		}
		d := sess.Document()
		if d == nil {
			return
		}
		pages := d.Pages()
		if pos < 1 || pos > len(pages) {
			return
		}
		go func(p doc.Page) {
			path, err := previews.Ensure(p, 280)
			if err != nil {
				l.Debug("preview render failed", slog.Any("err", err))
				return
			}
			fyne.Do(func() {
				previewImg.File = path
				previewImg.Refresh()
			})
		}(pages[pos-1])
	}

	pageDisplay := []string{}
	selectedPage := -1
	pagesList := widget.NewList(
		func() int { return len(pageDisplay) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			if i >= 0 && int(i) < len(pageDisplay) {
				o.(*widget.Label).SetText(pageDisplay[i])
			}
		},
	)
	pagesList.OnSelected = func(i widget.ListItemID) {
		selectedPage = int(i) + 1
		showPreview(selectedPage)
	}
	pagesList.OnUnselected = func(widget.ListItemID) { selectedPage = -1 }

	refreshPages := func() {
		d := sess.Document()
		pageDisplay = pageDisplay[:0]
		if d != nil {
			for i, p := range d.Pages() {
				label := p.Label
				if label == "" {
					label = fmt.Sprintf("Page %d", p.Number)
				}
				if p.Rotation != 0 {
					label = fmt.Sprintf("%s (%d°)", label, p.Rotation)
				}
				pageDisplay = append(pageDisplay, fmt.Sprintf("%3d  %s", i+1, label))
			}
		}
		pagesList.Refresh()
	}

	var undoBtn, redoBtn, removeBtn, rotateBtn *widget.Button

	refreshControls := func() {
		d := sess.Document()
		if d == nil {
			undoBtn.Disable()
			redoBtn.Disable()
			removeBtn.Disable()
			rotateBtn.Disable()
			return
		}
		if d.CanUndo() {
			undoBtn.Enable()
		} else {
			undoBtn.Disable()
		}
		if d.CanRedo() {
			redoBtn.Enable()
		} else {
			redoBtn.Disable()
		}
		removeBtn.Enable()
		rotateBtn.Enable()
	}

	setBusy := func(b bool) {
		if b {
			busy.Show()
			undoBtn.Disable()
			redoBtn.Disable()
			removeBtn.Disable()
			rotateBtn.Disable()
			status.SetText("Working…")
		} else {
			busy.Hide()
			refreshControls()
			status.SetText("Ready")
		}
	}

	// Signals arrive on arbitrary goroutines; hop to the UI loop.
	sess.Slot().CommandQueued.Connect(func() {
		fyne.Do(func() { setBusy(true) })
	})
	sess.Slot().CommandFault.Connect(func(err error) {
		fyne.Do(func() {
			setBusy(false)
			status.SetText("Command failed: " + err.Error())
		})
	})
	connectDocument := func() {
		d := sess.Document()
		if d == nil {
			return
		}
		d.CommandExecuted().Connect(func() {
			fyne.Do(func() {
				refreshPages()
				setBusy(false)
				if selectedPage >= 1 {
					showPreview(selectedPage)
				}
			})
		})
	}

	openDoc := func(path string) {
		if err := sess.Open(path); err != nil {
			dialog.ShowError(err, w)
			return
		}
		connectDocument()
		refreshPages()
		refreshControls()
		w.SetTitle(fmt.Sprintf("PDF Slicer %s — %s", version.String(), filepath.Base(path)))
		status.SetText(fmt.Sprintf("Opened %s (%d pages)", filepath.Base(path), sess.Document().PageCount()))
	}

	openBtn := widget.NewButton("Open", func() {
		fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil || rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			openDoc(path)
		}, w)
		fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".pslice", ".json"}))
		fd.Show()
	})

	saveBtn := widget.NewButton("Save", func() {
		go func() {
			<-sess.Barrier()
			err := sess.Save()
			fyne.Do(func() {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				status.SetText("Saved")
			})
		}()
	})

	exportBtn := widget.NewButton("Export PDF", func() {
		fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			out := wc.URI().Path()
			_ = wc.Close()
			go func() {
				<-sess.Barrier()
				eerr := sess.Export(out, export.PDFOptions{})
				fyne.Do(func() {
					if eerr != nil {
						dialog.ShowError(eerr, w)
						return
					}
					status.SetText("Exported " + filepath.Base(out))
				})
			}()
		}, w)
		fd.SetFileName(strings.TrimSuffix(filepath.Base(sess.Path()), filepath.Ext(sess.Path())) + ".pdf")
		fd.Show()
	})

	removeBtn = widget.NewButton("Remove", func() {
		if selectedPage < 1 {
			status.SetText("Select a page first")
			return
		}
		if err := sess.QueueRemovePages([]int{selectedPage}); err != nil {
			dialog.ShowError(err, w)
		}
	})

	rotateBtn = widget.NewButton("Rotate 90°", func() {
		if selectedPage < 1 {
			status.SetText("Select a page first")
			return
		}
		if err := sess.QueueRotatePages([]int{selectedPage}, 1); err != nil {
			dialog.ShowError(err, w)
		}
	})

	undoBtn = widget.NewButton("Undo", func() {
		if err := sess.QueueUndo(); err != nil {
			dialog.ShowError(err, w)
		}
	})
	redoBtn = widget.NewButton("Redo", func() {
		if err := sess.QueueRedo(); err != nil {
			dialog.ShowError(err, w)
		}
	})

	moveEntry := widget.NewEntry()
	moveEntry.SetPlaceHolder("to position")
	moveBtn := widget.NewButton("Move", func() {
		if selectedPage < 1 {
			status.SetText("Select a page first")
			return
		}
		to, err := strconv.Atoi(strings.TrimSpace(moveEntry.Text))
		if err != nil {
			status.SetText("Enter a target position")
			return
		}
		if err := sess.QueueMovePage(selectedPage, to); err != nil {
			dialog.ShowError(err, w)
		}
	})

	toolbar := container.NewHBox(
		openBtn, saveBtn, exportBtn,
		widget.NewSeparator(),
		undoBtn, redoBtn,
		widget.NewSeparator(),
		removeBtn, rotateBtn, moveEntry, moveBtn,
	)
	refreshControls()

	w.SetContent(container.NewBorder(
		toolbar,
		container.NewVBox(busy, status),
		nil,
		container.NewPadded(previewImg),
		pagesList,
	))
	w.SetOnClosed(func() {
		prefs.SetInt("window.width", int(w.Canvas().Size().Width))
		prefs.SetInt("window.height", int(w.Canvas().Size().Height))
	})

	if docPath != "" {
		if _, err := os.Stat(docPath); err == nil {
			openDoc(docPath)
		} else {
			l.Warn("document not found", slog.String("path", docPath))
		}
	}

	w.ShowAndRun()
	return nil
}
