// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package plancache

import (
	"sync"

	"golang.org/x/exp/slices"
)

// DefaultMaxEntries is the size of a
// MemoryStore when none is given.
const DefaultMaxEntries = 4096

// MemoryStore is an in-process Store
// that holds at most a fixed number of entries;
// the oldest entry is evicted first.
type MemoryStore struct {
	lock    sync.Mutex
	max     int
	entries map[string][]byte
	// insertion order
	order []string
}

// NewMemoryStore constructs a MemoryStore
// holding at most max entries. If max is
// not positive, DefaultMaxEntries is used.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &MemoryStore{max: max, entries: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, bool, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	val, ok := m.entries[key]
	return val, ok, nil
}

func (m *MemoryStore) Set(key string, val []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.entries[key]; ok {
		m.entries[key] = slices.Clone(val)
		return nil
	}
	for len(m.order) >= m.max {
		delete(m.entries, m.order[0])
		m.order = m.order[1:]
	}
	m.entries[key] = slices.Clone(val)
	m.order = append(m.order, key)
	return nil
}

// Len returns the number of entries.
func (m *MemoryStore) Len() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return len(m.entries)
}
