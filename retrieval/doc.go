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


// Package retrieval turns nearest-neighbor results into a grounded answer.
//
// The Ranker implements a multi-stage pipeline over the vector index:
//   - Context-aware query composition from recent conversation turns
//   - A grounding guard that rejects results beyond a distance threshold
//   - Keyword reranking that prefers matches containing every query word
//   - Merging of adjacent chunks from the same source document
//   - Collection of alternative citations from other sources
//
// Chat turns and standalone searches use different result counts and
// grounding thresholds; both sets are named constants in this package.
package retrieval
