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
	"fmt"
	"os"

	"github.com/bradfitz/gomemcache/memcache"
	"sigs.k8s.io/yaml"
)

// Config describes a Cache.
type Config struct {
	// MaxEntries is the size of the in-process
	// store; it is ignored if Memcache is set.
	MaxEntries int `json:"max_entries,omitempty"`
	// Memcache is a list of memcached servers;
	// if it is empty, entries are kept in-process.
	Memcache []string `json:"memcache,omitempty"`
	// Expiration is the lifetime of
	// memcached entries in seconds.
	Expiration int `json:"expiration,omitempty"`
	// Secret is the key material used
	// to seal memcached entries.
	Secret string `json:"secret,omitempty"`

	// Logf, if non-nil, is used
	// to log cache events.
	Logf func(f string, args ...interface{}) `json:"-"`
}

// ParseConfig decodes a YAML (or JSON) config.
func ParseConfig(buf []byte) (*Config, error) {
	c := new(Config)
	if err := yaml.UnmarshalStrict(buf, c); err != nil {
		return nil, fmt.Errorf("plancache.ParseConfig: %w", err)
	}
	if c.MaxEntries < 0 || c.Expiration < 0 {
		return nil, fmt.Errorf("plancache.ParseConfig: negative max_entries or expiration")
	}
	if len(c.Memcache) > 0 && c.Secret == "" {
		return nil, fmt.Errorf("plancache.ParseConfig: memcache requires a secret")
	}
	return c, nil
}

// LoadConfig reads and decodes a config file.
func LoadConfig(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(buf)
}

// Open constructs the Cache described by c.
func (c *Config) Open() *Cache {
	var store Store
	if len(c.Memcache) > 0 {
		store = NewMemcacheStore(memcache.New(c.Memcache...), c.Secret, c.Expiration)
	} else {
		store = NewMemoryStore(c.MaxEntries)
	}
	cache := New(store)
	cache.Logf = c.Logf
	return cache
}
