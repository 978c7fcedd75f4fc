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

package expr

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/dchest/siphash"
)

// fixed keys; hashes are used for
// cache keys, so they must be stable
// across processes
const (
	hashk0 = 0x0706050403020100
	hashk1 = 0x0f0e0d0c0b0a0908
)

// hasher accumulates a canonical byte image
// of one node: its own discriminants and
// scalar attributes followed by the hashes
// of its children.
type hasher struct {
	buf []byte
}

func newHasher(n Node) hasher {
	h := hasher{buf: make([]byte, 0, 64)}
	h.buf = append(h.buf, byte(n.Class()), byte(n.Type()))
	return h
}

func (h *hasher) byte(b byte) { h.buf = append(h.buf, b) }

func (h *hasher) bool(b bool) {
	if b {
		h.byte(1)
	} else {
		h.byte(0)
	}
}

func (h *hasher) uint(u uint64) {
	h.buf = binary.LittleEndian.AppendUint64(h.buf, u)
}

func (h *hasher) float(f float64) { h.uint(math.Float64bits(f)) }

func (h *hasher) string(s string) {
	h.uint(uint64(len(s)))
	h.buf = append(h.buf, s...)
}

// ident hashes an identifier; identifiers
// compare case-insensitively
func (h *hasher) ident(s string) { h.string(strings.ToLower(s)) }

func (h *hasher) child(n Node) {
	if n == nil {
		h.byte(0)
		return
	}
	h.byte(1)
	h.uint(n.Hash())
}

func (h *hasher) children(lst []Node) {
	h.uint(uint64(len(lst)))
	for i := range lst {
		h.child(lst[i])
	}
}

func (h *hasher) sum() uint64 {
	return siphash.Hash(hashk0, hashk1, h.buf)
}

// Hash returns the structural hash of n.
// Nodes that are Equal have the same Hash.
// Hash(nil) is 0.
func Hash(n Node) uint64 {
	if n == nil {
		return 0
	}
	return n.Hash()
}
