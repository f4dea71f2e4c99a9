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


package auditlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultTailLimit bounds how many entries a tail read returns.
const DefaultTailLimit = 100

// entrySeparator precedes every record so the file can be split back into
// entries regardless of payload content.
const entrySeparator = "\n["

var (
	// ErrMarshalFailed is returned when a payload cannot be encoded.
	ErrMarshalFailed = errors.New("failed to marshal audit entry")
)

// Entry is one timestamped record read back from an audit log.
type Entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Log is an append-only, line-delimited audit log backed by a single file.
// Appends are serialized; a failed append never corrupts prior entries.
type Log struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewLog creates a log writing to the given file path. The file is created
// on first append.
func NewLog(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Append encodes payload as JSON and appends it with an RFC 3339 timestamp.
func (l *Log) Append(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMarshalFailed, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	record := fmt.Sprintf("%s%s]\n%s\n", entrySeparator, l.now().UTC().Format(time.RFC3339), data)
	_, err = f.WriteString(record)
	return err
}

// Tail returns up to limit most recent entries, oldest first. A missing file
// yields an empty slice. Entries that fail to parse are skipped.
func (l *Log) Tail(limit int) ([]Entry, error) {
	if limit < 1 {
		limit = DefaultTailLimit
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, err
	}

	raw := strings.Split(string(data), entrySeparator)
	entries := make([]Entry, 0, limit)
	for _, block := range raw {
		entry, ok := parseEntry(block)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// parseEntry decodes one "<timestamp>]\n<json>" block.
func parseEntry(block string) (Entry, bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return Entry{}, false
	}

	sep := strings.Index(block, "]\n")
	if sep < 0 {
		return Entry{}, false
	}

	ts, err := time.Parse(time.RFC3339, block[:sep])
	if err != nil {
		return Entry{}, false
	}

	payload := strings.TrimSpace(block[sep+2:])
	if !json.Valid([]byte(payload)) {
		return Entry{}, false
	}
	return Entry{Timestamp: ts, Payload: json.RawMessage(payload)}, true
}
