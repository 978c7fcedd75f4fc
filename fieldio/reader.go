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

// Reader consumes the fields of one object
// in ascending index order.
//
// Every accessor takes the index of the field
// the caller expects next. Required accessors fail
// with ErrMissing when the field is absent;
// Optional accessors report absence and return
// the supplied default. A field whose index is
// lower than the requested one was never asked
// for by the reader, which means the writer used
// a different layout, and yields ErrSchema.
type Reader struct {
	body   []byte
	remain int
	last   int
	used   bool
}

func newReader(buf []byte) (*Reader, []byte, error) {
	n, buf, err := readUvarint(buf)
	if err != nil {
		return nil, nil, err
	}
	r := &Reader{remain: int(n)}
	// find the end of the object so that
	// the caller gets the trailing bytes
	rest := buf
	for i := uint64(0); i < n; i++ {
		_, _, tail, err := splitField(rest)
		if err != nil {
			return nil, nil, err
		}
		rest = tail
	}
	r.body = buf[:len(buf)-len(rest)]
	return r, rest, nil
}

func splitField(buf []byte) (idx uint64, payload, rest []byte, err error) {
	idx, buf, err = readUvarint(buf)
	if err != nil {
		return 0, nil, nil, err
	}
	size, buf, err := readUvarint(buf)
	if err != nil {
		return 0, nil, nil, err
	}
	if uint64(len(buf)) < size {
		return 0, nil, nil, ErrTruncated
	}
	return idx, buf[:size], buf[size:], nil
}

// take returns the payload of field idx if it
// is the next field in the object.
func (r *Reader) take(idx int) ([]byte, bool, error) {
	if r.used && idx <= r.last {
		panic(fmt.Sprintf("fieldio: field %d requested after field %d", idx, r.last))
	}
	r.used = true
	r.last = idx
	if r.remain == 0 {
		return nil, false, nil
	}
	got, payload, rest, err := splitField(r.body)
	if err != nil {
		return nil, false, err
	}
	switch {
	case got == uint64(idx):
		r.body = rest
		r.remain--
		return payload, true, nil
	case got > uint64(idx):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("%w: unexpected field %d before field %d", ErrSchema, got, idx)
	}
}

func (r *Reader) required(idx int) ([]byte, error) {
	buf, ok, err := r.take(idx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: field %d", ErrMissing, idx)
	}
	return buf, nil
}

// Has reports whether the next unread field has index idx,
// without consuming it.
func (r *Reader) Has(idx int) bool {
	if r.remain == 0 {
		return false
	}
	got, _, _, err := splitField(r.body)
	return err == nil && got == uint64(idx)
}

// Finish returns an error if any fields remain unread.
func (r *Reader) Finish() error {
	if r.remain != 0 {
		got, _, _, _ := splitField(r.body)
		return fmt.Errorf("%w: %d unread field(s) starting at field %d", ErrSchema, r.remain, got)
	}
	return nil
}

func decodeUint(buf []byte) (uint64, error) {
	u, rest, err := readUvarint(buf)
	if err != nil {
		return 0, err
	}
	if len(rest) != 0 {
		return 0, fmt.Errorf("%w: oversized integer field", ErrSchema)
	}
	return u, nil
}

// Uint reads a required unsigned integer field.
func (r *Reader) Uint(idx int) (uint64, error) {
	buf, err := r.required(idx)
	if err != nil {
		return 0, err
	}
	return decodeUint(buf)
}

// OptionalUint reads an optional unsigned integer field.
func (r *Reader) OptionalUint(idx int, def uint64) (uint64, error) {
	buf, ok, err := r.take(idx)
	if err != nil || !ok {
		return def, err
	}
	return decodeUint(buf)
}

func decodeInt(buf []byte) (int64, error) {
	i, n := binary.Varint(buf)
	if n <= 0 {
		return 0, ErrTruncated
	}
	if n != len(buf) {
		return 0, fmt.Errorf("%w: oversized integer field", ErrSchema)
	}
	return i, nil
}

// Int reads a required signed integer field.
func (r *Reader) Int(idx int) (int64, error) {
	buf, err := r.required(idx)
	if err != nil {
		return 0, err
	}
	return decodeInt(buf)
}

// OptionalInt reads an optional signed integer field.
func (r *Reader) OptionalInt(idx int, def int64) (int64, error) {
	buf, ok, err := r.take(idx)
	if err != nil || !ok {
		return def, err
	}
	return decodeInt(buf)
}

// Float reads a required float64 field.
func (r *Reader) Float(idx int) (float64, error) {
	buf, err := r.required(idx)
	if err != nil {
		return 0, err
	}
	if len(buf) != 8 {
		return 0, fmt.Errorf("%w: float field of %d bytes", ErrSchema, len(buf))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

func decodeBool(buf []byte) (bool, error) {
	if len(buf) != 1 || buf[0] > 1 {
		return false, fmt.Errorf("%w: bad boolean field", ErrSchema)
	}
	return buf[0] == 1, nil
}

// Bool reads a required boolean field.
func (r *Reader) Bool(idx int) (bool, error) {
	buf, err := r.required(idx)
	if err != nil {
		return false, err
	}
	return decodeBool(buf)
}

// OptionalBool reads an optional boolean field.
func (r *Reader) OptionalBool(idx int, def bool) (bool, error) {
	buf, ok, err := r.take(idx)
	if err != nil || !ok {
		return def, err
	}
	return decodeBool(buf)
}

// String reads a required string field.
func (r *Reader) String(idx int) (string, error) {
	buf, err := r.required(idx)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// OptionalString reads an optional string field.
func (r *Reader) OptionalString(idx int, def string) (string, error) {
	buf, ok, err := r.take(idx)
	if err != nil || !ok {
		return def, err
	}
	return string(buf), nil
}

// OptionalStrings reads an optional list of strings.
// An absent field yields a nil slice.
func (r *Reader) OptionalStrings(idx int) ([]string, error) {
	buf, ok, err := r.take(idx)
	if err != nil || !ok {
		return nil, err
	}
	n, buf, err := readUvarint(buf)
	if err != nil {
		return nil, err
	}
	if n > uint64(len(buf)) {
		return nil, ErrTruncated
	}
	out := make([]string, 0, n)
	for i := uint64(0); i < n; i++ {
		var size uint64
		size, buf, err = readUvarint(buf)
		if err != nil {
			return nil, err
		}
		if uint64(len(buf)) < size {
			return nil, ErrTruncated
		}
		out = append(out, string(buf[:size]))
		buf = buf[size:]
	}
	if len(buf) != 0 {
		return nil, fmt.Errorf("%w: trailing bytes in string list", ErrSchema)
	}
	return out, nil
}

func readObject(buf []byte, fn func(r *Reader) error) error {
	sub, rest, err := newReader(buf)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: trailing bytes after object", ErrSchema)
	}
	if err := fn(sub); err != nil {
		return err
	}
	return sub.Finish()
}

// Object reads a required nested object,
// calling fn with a Reader for its fields.
func (r *Reader) Object(idx int, fn func(r *Reader) error) error {
	buf, err := r.required(idx)
	if err != nil {
		return err
	}
	return readObject(buf, fn)
}

// OptionalObject reads an optional nested object.
// It reports whether the object was present.
func (r *Reader) OptionalObject(idx int, fn func(r *Reader) error) (bool, error) {
	buf, ok, err := r.take(idx)
	if err != nil || !ok {
		return false, err
	}
	return true, readObject(buf, fn)
}

// OptionalList reads an optional list of nested objects,
// calling fn once per element. It reports whether
// the list field was present.
func (r *Reader) OptionalList(idx int, fn func(i int, r *Reader) error) (bool, error) {
	buf, ok, err := r.take(idx)
	if err != nil || !ok {
		return false, err
	}
	n, buf, err := readUvarint(buf)
	if err != nil {
		return true, err
	}
	if n > uint64(len(buf)) {
		return true, ErrTruncated
	}
	for i := 0; i < int(n); i++ {
		var size uint64
		size, buf, err = readUvarint(buf)
		if err != nil {
			return true, err
		}
		if uint64(len(buf)) < size {
			return true, ErrTruncated
		}
		elem := buf[:size]
		buf = buf[size:]
		if err := readObject(elem, func(r *Reader) error { return fn(i, r) }); err != nil {
			return true, err
		}
	}
	if len(buf) != 0 {
		return true, fmt.Errorf("%w: trailing bytes in list", ErrSchema)
	}
	return true, nil
}

func readUvarint(buf []byte) (uint64, []byte, error) {
	u, n := binary.Uvarint(buf)
	if n == 0 {
		return 0, nil, ErrTruncated
	}
	if n < 0 {
		return 0, nil, fmt.Errorf("%w: varint overflow", ErrSchema)
	}
	return u, buf[n:], nil
}
