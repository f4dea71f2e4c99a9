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


// Package session owns per-conversation state for the advisor.
//
// The Store keeps one Session per conversation identifier: a bounded history
// of turns, the merged user profile, and the last page context. Mutations on
// the same identifier are serialized through a per-session lock so that
// concurrent turns cannot interleave and corrupt history ordering, while
// different identifiers proceed in parallel. The store is bounded by an LRU
// eviction policy rather than growing with every identifier ever seen.
package session
