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


// Package classify implements message classification for the advisor:
//   - Intent classification against an ordered list of topic pattern rules
//   - Bias detection against a fixed vocabulary of charged terms
//   - Ambiguity detection for short, vague, or multi-topic messages
//
// All functions are pure and deterministic; the rule tables are data, not
// branching logic, so rules can be inspected and extended in one place.
package classify
