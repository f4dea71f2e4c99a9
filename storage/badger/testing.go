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


package badger

import "github.com/aldeia/advisor/storage"

// NewMemoryStores creates an in-memory vector index, user repository, and
// analytics repository for testing.
// Caller must close the repositories and backend when done.
func NewMemoryStores() (storage.VectorIndex, storage.UserRepository, storage.AnalyticsRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	index, err := NewVectorIndex(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	users, err := NewUserRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	analytics, err := NewAnalyticsRepository(backend)
	if err != nil {
		users.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return index, users, analytics, backend, nil
}
