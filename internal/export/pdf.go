/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders the current page list of a document to output
// formats. Page bodies are placeholders (page number, source reference);
// content-faithful rendering is a collaborator concern.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"pdfslicer/internal/doc"
)

// PDFOptions controls PDF export behavior. Units are points (pt).
//
// PageWidth/PageHeight describe the unrotated sheet; pages rotated by
// 90/270 degrees are emitted with swapped dimensions.
type PDFOptions struct {
	PageWidth  float64
	PageHeight float64
	// IncludeGuides draws a hairline border on every page.
	IncludeGuides bool
}

// ExportPDF writes the document's current page list as a multi-page PDF at
// outPath. One PDF page per document page, in document order, honoring
// rotation.
func ExportPDF(d *doc.Document, outPath string, opt PDFOptions) error {
	if d == nil {
		return fmt.Errorf("document is nil")
	}
	pages := d.Pages()
	if len(pages) == 0 {
		return fmt.Errorf("document has no pages")
	}
	w := opt.PageWidth
	h := opt.PageHeight
	if w <= 0 || h <= 0 {
		w, h = 595.28, 841.89 // A4
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
		OrientationStr: "",
	})
	title := d.Title()
	if title == "" {
		title = filepath.Base(d.Source())
	}
	pdf.SetTitle(title, true)
	pdf.SetAuthor("pdfslicer", false)
	// Built-in Helvetica keeps text vector without embedding.
	pdf.SetFont("Helvetica", "", 12)

	for i, pg := range pages {
		pw, ph := w, h
		if pg.Rotation == 90 || pg.Rotation == 270 {
			pw, ph = ph, pw
		}
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pw, Ht: ph})

		if opt.IncludeGuides {
			pdf.SetDrawColor(180, 180, 180)
			pdf.SetLineWidth(0.2)
			pdf.Rect(18, 18, pw-36, ph-36, "D")
		}

		label := pg.Label
		if label == "" {
			label = fmt.Sprintf("Page %d", pg.Number)
		}
		pdf.SetTextColor(40, 40, 40)
		pdf.SetFont("Helvetica", "B", 24)
		pdf.Text(pw/2-float64(len(label))*6, ph/2, label)

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(120, 120, 120)
		footer := fmt.Sprintf("%d/%d — %s", i+1, len(pages), filepath.Base(d.Source()))
		if pg.Rotation != 0 {
			footer = fmt.Sprintf("%s (rotated %d°)", footer, pg.Rotation)
		}
		pdf.Text(36, ph-24, footer)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
