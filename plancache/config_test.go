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
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte("max_entries: 10\nexpiration: 60\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxEntries != 10 || c.Expiration != 60 || len(c.Memcache) != 0 {
		t.Fatalf("got %+v", c)
	}
	cache := c.Open()
	if _, ok := cache.store.(*MemoryStore); !ok {
		t.Fatalf("store is %T", cache.store)
	}

	c, err = ParseConfig([]byte("memcache: [\"127.0.0.1:11211\"]\nsecret: s3cret\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Open().store.(*MemcacheStore); !ok {
		t.Fatal("expected a memcache store")
	}

	for _, bad := range []string{
		"max_entries: -1",
		"memcache: [\"127.0.0.1:11211\"]",
		"no_such_field: 1",
		"max_entries: [",
	} {
		if _, err := ParseConfig([]byte(bad)); err == nil {
			t.Errorf("%q: no error", bad)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("max_entries: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.MaxEntries != 3 {
		t.Fatalf("got %+v", c)
	}
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("no error for missing file")
	}
}
