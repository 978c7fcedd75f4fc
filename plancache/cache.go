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

// Package plancache stores serialized
// expression trees keyed by their structural hash,
// so that a tree seen by one query can be reused
// by later queries without being rebuilt.
//
// Entries are encoded with expr.MarshalBinary and
// compressed with zstd. Because the positional
// encoding is tied to fieldio.Version, the schema
// version is part of every key.
package plancache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/SnellerInc/pexpr/expr"
	"github.com/SnellerInc/pexpr/fieldio"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

// Store is the storage backend of a Cache.
type Store interface {
	// Get returns the value stored for key.
	// A missing key is not an error; Get
	// returns false instead.
	Get(key string) ([]byte, bool, error)
	// Set stores val under key.
	Set(key string, val []byte) error
}

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	decoder, err = zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
}

// Cache is a cache of expression trees.
// It is safe to use from multiple goroutines.
type Cache struct {
	store Store
	// Logf, if non-nil, is used
	// to log cache events.
	Logf func(f string, args ...interface{})

	lock sync.Mutex
	gen  uuid.UUID

	hits, misses, collisions atomic.Int64
}

// Stats are the counters of a Cache.
type Stats struct {
	Hits, Misses, Collisions int64
}

// New constructs a Cache on top of store.
func New(store Store) *Cache {
	return &Cache{store: store, gen: uuid.New()}
}

func (c *Cache) logf(f string, args ...interface{}) {
	if c.Logf != nil {
		c.Logf(f, args...)
	}
}

func (c *Cache) generation() uuid.UUID {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.gen
}

// Invalidate makes every entry stored so far
// unreachable by rotating the generation
// that is part of each key.
func (c *Cache) Invalidate() {
	gen := uuid.New()
	c.lock.Lock()
	c.gen = gen
	c.lock.Unlock()
	c.logf("plancache: invalidated; new generation %s", gen)
}

// Key returns the key under which n
// would be stored.
func (c *Cache) Key(n expr.Node) string {
	return fmt.Sprintf("%016x.v%d.%s", expr.Hash(n), fieldio.Version, c.generation())
}

// Put stores n and returns its key.
func (c *Cache) Put(n expr.Node) (string, error) {
	buf, err := expr.MarshalBinary(n)
	if err != nil {
		return "", fmt.Errorf("plancache.Put: %w", err)
	}
	key := c.Key(n)
	val := encoder.EncodeAll(buf, make([]byte, 0, len(buf)))
	if err := c.store.Set(key, val); err != nil {
		return "", fmt.Errorf("plancache.Put: %w", err)
	}
	return key, nil
}

func (c *Cache) load(key string) (expr.Node, bool, error) {
	val, ok, err := c.store.Get(key)
	if err != nil || !ok {
		return nil, false, err
	}
	buf, err := decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", key, err)
	}
	n, err := expr.UnmarshalBinary(buf)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", key, err)
	}
	return n, true, nil
}

// Lookup returns the tree stored under key.
// The returned tree belongs to the caller.
func (c *Cache) Lookup(key string) (expr.Node, bool, error) {
	n, ok, err := c.load(key)
	if err != nil {
		return nil, false, fmt.Errorf("plancache.Lookup: %w", err)
	}
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return n, true, nil
}

// Get returns the stored tree equal to n.
// A stored tree with the same hash that is
// not equal to n is reported as a miss.
func (c *Cache) Get(n expr.Node) (expr.Node, bool, error) {
	key := c.Key(n)
	out, ok, err := c.load(key)
	if err != nil {
		return nil, false, fmt.Errorf("plancache.Get: %w", err)
	}
	if ok && !expr.Equal(n, out) {
		c.collisions.Add(1)
		c.logf("plancache: hash collision on %s: %s", key, expr.ToString(n))
		ok = false
	}
	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	c.hits.Add(1)
	return out, true, nil
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Collisions: c.collisions.Load(),
	}
}
