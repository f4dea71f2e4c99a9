// Copyright 2026 Aldeia Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ingest builds the vector index from recovery documents on disk.
//
// The Pipeline recursively discovers text documents under per-jurisdiction
// directories, splits each on blank-line boundaries into trimmed chunks,
// embeds the chunks in batches, and upserts them into the vector index under
// "<documentName>_<chunkIndex>" identifiers. Documents are processed
// concurrently on a worker pool; a document that fails to embed or index is
// counted and logged but does not abort the run.
package ingest
