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

package fieldio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Writer accumulates the fields of one object.
//
// Fields must be written in strictly ascending
// index order; writing a field out of order is
// a programming error and panics.
//
// The zero value of Writer is ready to use.
type Writer struct {
	body  []byte
	count int
	last  int
	used  bool
	tmp   []byte
}

// Reset clears the fields written so far.
func (w *Writer) Reset() {
	w.body = w.body[:0]
	w.count = 0
	w.last = 0
	w.used = false
}

// Len returns the number of fields written.
func (w *Writer) Len() int { return w.count }

func (w *Writer) field(idx int, payload []byte) {
	if idx < 0 || (w.used && idx <= w.last) {
		panic(fmt.Sprintf("fieldio: field %d written after field %d", idx, w.last))
	}
	w.used = true
	w.last = idx
	w.count++
	w.body = appendUvarint(w.body, uint64(idx))
	w.body = appendUvarint(w.body, uint64(len(payload)))
	w.body = append(w.body, payload...)
}

// WriteUint writes an unsigned integer field.
func (w *Writer) WriteUint(idx int, v uint64) {
	w.tmp = appendUvarint(w.tmp[:0], v)
	w.field(idx, w.tmp)
}

// WriteInt writes a signed integer field.
func (w *Writer) WriteInt(idx int, v int64) {
	w.tmp = binary.AppendVarint(w.tmp[:0], v)
	w.field(idx, w.tmp)
}

// WriteFloat writes a float64 field.
func (w *Writer) WriteFloat(idx int, f float64) {
	w.tmp = binary.LittleEndian.AppendUint64(w.tmp[:0], math.Float64bits(f))
	w.field(idx, w.tmp)
}

// WriteBool writes a boolean field.
func (w *Writer) WriteBool(idx int, b bool) {
	v := byte(0)
	if b {
		v = 1
	}
	w.tmp = append(w.tmp[:0], v)
	w.field(idx, w.tmp)
}

// WriteString writes a string field.
func (w *Writer) WriteString(idx int, s string) {
	w.tmp = append(w.tmp[:0], s...)
	w.field(idx, w.tmp)
}

// WriteStrings writes a list of strings as one field.
func (w *Writer) WriteStrings(idx int, lst []string) {
	tmp := appendUvarint(nil, uint64(len(lst)))
	for i := range lst {
		tmp = appendUvarint(tmp, uint64(len(lst[i])))
		tmp = append(tmp, lst[i]...)
	}
	w.field(idx, tmp)
}

// WriteObject writes a nested object field
// whose contents are produced by fn.
func (w *Writer) WriteObject(idx int, fn func(w *Writer)) {
	var sub Writer
	fn(&sub)
	w.field(idx, sub.appendObject(nil))
}

// WriteList writes a list of n nested objects
// as one field; fn is called once per element
// with a fresh Writer.
func (w *Writer) WriteList(idx int, n int, fn func(i int, w *Writer)) {
	tmp := appendUvarint(nil, uint64(n))
	var sub Writer
	for i := 0; i < n; i++ {
		sub.Reset()
		fn(i, &sub)
		obj := sub.appendObject(nil)
		tmp = appendUvarint(tmp, uint64(len(obj)))
		tmp = append(tmp, obj...)
	}
	w.field(idx, tmp)
}

func (w *Writer) appendObject(dst []byte) []byte {
	dst = appendUvarint(dst, uint64(w.count))
	return append(dst, w.body...)
}

func appendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}
