/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package doc holds the document model of the slicer: the page list, the
// reversible page commands and the undo/redo history. The binary content of
// pages is out of scope here; a Page is a reference into the source file
// plus the edits applied to it.
package doc

// FormatVersion is bumped when the manifest structure changes in a
// backward-incompatible way.
const FormatVersion = 1

// Page is one page of an open document. Number is the 1-based page number
// in the original source file and never changes; the page's current position
// in the document is its index in the page list.
type Page struct {
	Number   int    `json:"number"`
	Rotation int    `json:"rotation,omitempty"` // degrees clockwise, multiple of 90
	Label    string `json:"label,omitempty"`
}

// Manifest is the on-disk representation of a document: a page list over a
// source file. It serializes to a human-readable JSON file.
type Manifest struct {
	FormatVersion int    `json:"formatVersion"`
	Title         string `json:"title,omitempty"`
	Source        string `json:"source"`
	Pages         []Page `json:"pages"`
}

// normalizeRotation maps any multiple of 90 into [0, 360).
func normalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
