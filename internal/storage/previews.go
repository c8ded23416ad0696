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
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pdfslicer/internal/doc"
)

// Page proportions of the rendered placeholder, ISO A paper.
const (
	previewBaseW = 420
	previewBaseH = 594
)

// PreviewCache renders and caches placeholder page thumbnails as PNG files.
// Page content rendering is out of scope; previews show the page number and
// orientation so the UI has something honest to display.
type PreviewCache struct {
	dir string
}

// NewPreviewCache creates the cache directory if needed.
func NewPreviewCache(dir string) (*PreviewCache, error) {
	if dir == "" {
		return nil, errors.New("preview cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preview cache dir: %w", err)
	}
	return &PreviewCache{dir: dir}, nil
}

// PathFor returns the cache file for a page at the given thumbnail size.
// The key covers everything the rendering depends on.
func (c *PreviewCache) PathFor(p doc.Page, maxDim int) string {
	name := fmt.Sprintf("p%04d-r%03d-s%d.png", p.Number, p.Rotation, maxDim)
	return filepath.Join(c.dir, name)
}

// Ensure renders and stores the thumbnail if it is not cached yet, and
// returns its path.
func (c *PreviewCache) Ensure(p doc.Page, maxDim int) (string, error) {
	if maxDim <= 0 {
		return "", fmt.Errorf("invalid thumbnail size %d", maxDim)
	}
	path := c.PathFor(p, maxDim)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	img := scaleTo(RenderPlaceholder(p), maxDim)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("encode preview: %w", err)
	}
	return path, nil
}

// RenderPlaceholder draws a page stand-in: white sheet, gray border and the
// page number, with the sheet turned sideways for 90/270 rotations.
func RenderPlaceholder(p doc.Page) *image.RGBA {
	w, h := previewBaseW, previewBaseH
	if p.Rotation == 90 || p.Rotation == 270 {
		w, h = h, w
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	border := color.RGBA{R: 120, G: 120, B: 120, A: 255}
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	for x := 0; x < w; x++ {
		img.SetRGBA(x, 0, border)
		img.SetRGBA(x, h-1, border)
	}
	for y := 0; y < h; y++ {
		img.SetRGBA(0, y, border)
		img.SetRGBA(w-1, y, border)
	}

	label := strconv.Itoa(p.Number)
	if p.Label != "" {
		label = p.Label
	}
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{R: 60, G: 60, B: 60, A: 255}),
		Face: face,
	}
	tw := d.MeasureString(label)
	d.Dot = fixed.Point26_6{
		X: fixed.I(w)/2 - tw/2,
		Y: fixed.I(h / 2),
	}
	d.DrawString(label)
	return img
}

// scaleTo fits img into a maxDim square, preserving aspect ratio.
func scaleTo(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}
	var tw, th int
	if w >= h {
		tw = maxDim
		th = h * maxDim / w
	} else {
		th = maxDim
		tw = w * maxDim / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
