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
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"github.com/bradfitz/gomemcache/memcache"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// MemcacheStore is a Store backed by memcached.
//
// Values are sealed with a key derived from
// the store secret, so that processes that do
// not share the secret cannot read (or forge)
// each other's entries.
type MemcacheStore struct {
	client     *memcache.Client
	secret     []byte // input entropy for key creation
	expiration int32  // see memcache.Item.Expiration
}

// NewMemcacheStore creates a MemcacheStore.
// Entries expire after expiration seconds,
// or never if expiration is zero.
func NewMemcacheStore(client *memcache.Client, secret string, expiration int) *MemcacheStore {
	return &MemcacheStore{
		client:     client,
		secret:     []byte(secret),
		expiration: int32(expiration),
	}
}

// key calculates value for use as memcache.Item.Key
func (m *MemcacheStore) key(k string) string {
	hash := sha512.Sum512([]byte(k))
	return fmt.Sprintf("pexpr:plan:%x", hash)
}

func (m *MemcacheStore) aead() cipher.AEAD {
	key := make([]byte, chacha20poly1305.KeySize)
	_, err := io.ReadFull(hkdf.New(sha512.New, m.secret, nil, []byte("pexpr plan cache")), key)
	if err != nil {
		panic(err) // should never happen
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		panic(err)
	}
	return aead
}

// seal produces nonce followed by the
// sealed value; the memcache key is
// bound to the value as additional data
func (m *MemcacheStore) seal(key string, val []byte) ([]byte, error) {
	aead := m.aead()
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(val)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, val, []byte(key)), nil
}

func (m *MemcacheStore) open(key string, box []byte) ([]byte, error) {
	aead := m.aead()
	if len(box) < aead.NonceSize() {
		return nil, fmt.Errorf("plancache: sealed value of %d bytes too short", len(box))
	}
	nonce, payload := box[:aead.NonceSize()], box[aead.NonceSize():]
	return aead.Open(payload[:0], nonce, payload, []byte(key))
}

func (m *MemcacheStore) Get(key string) ([]byte, bool, error) {
	mkey := m.key(key)
	item, err := m.client.Get(mkey)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	val, err := m.open(mkey, item.Value)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (m *MemcacheStore) Set(key string, val []byte) error {
	mkey := m.key(key)
	box, err := m.seal(mkey, val)
	if err != nil {
		return err
	}
	return m.client.Set(&memcache.Item{
		Key:        mkey,
		Value:      box,
		Expiration: m.expiration,
	})
}
