/*
 * Copyright (c) 2026 by the pdfslicer authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage implements document persistence and indexing.
// It handles open/save for the canonical JSON page manifest with schema
// validation, transactional writes and timestamped backups. It also manages
// the per-user embedded SQLite index (recent documents, crash snapshots)
// and a preview-thumbnail cache. The index and cache are derived data;
// deleting them only loses the recents list and cached thumbnails.
package storage
