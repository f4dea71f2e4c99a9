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


package storage

import (
	"encoding/json"
	"fmt"

	"github.com/aldeia/advisor/core"
)

// StoredChunk is the persisted form of an indexed document chunk.
type StoredChunk struct {
	Id         string    `json:"id"`
	Vector     []float32 `json:"vector"`
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	ChunkIndex int       `json:"chunk_index"`
}

// MarshalChunk serializes a StoredChunk to bytes.
func MarshalChunk(chunk *StoredChunk) ([]byte, error) {
	data, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a StoredChunk from bytes.
func UnmarshalChunk(data []byte) (*StoredChunk, error) {
	var chunk StoredChunk
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &chunk, nil
}

// MarshalUserRecord serializes a UserRecord to bytes.
func MarshalUserRecord(record *core.UserRecord) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalUserRecord deserializes a UserRecord from bytes.
func UnmarshalUserRecord(data []byte) (*core.UserRecord, error) {
	var record core.UserRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &record, nil
}

// MarshalAnalyticsEvent serializes an AnalyticsEvent to bytes.
func MarshalAnalyticsEvent(event *core.AnalyticsEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalAnalyticsEvent deserializes an AnalyticsEvent from bytes.
func UnmarshalAnalyticsEvent(data []byte) (*core.AnalyticsEvent, error) {
	var event core.AnalyticsEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &event, nil
}
