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

// Package fieldio implements a positional,
// fixed-schema binary field encoding.
//
// An encoded stream starts with a short header
// (magic bytes followed by the schema version)
// and contains exactly one object. An object is
// a field count followed by that many fields in
// strictly ascending field-index order; each field
// is its index, the length of its payload, and
// the payload itself. Objects nest as field payloads.
//
// Both ends of the encoding must agree on the
// schema version and the field layout. Readers
// do not skip fields they do not know about;
// an unexpected field is a hard error.
package fieldio

import (
	"errors"
	"fmt"
)

// Version is the schema version written
// into every stream by Marshal. Readers reject
// streams carrying any other version.
const Version = 1

var magic = [3]byte{'P', 'X', 'F'}

var (
	// ErrVersionMismatch is returned when a stream
	// was produced with a different schema version.
	ErrVersionMismatch = errors.New("fieldio: schema version mismatch")
	// ErrSchema is returned when the fields in a stream
	// do not match the layout expected by the reader.
	ErrSchema = errors.New("fieldio: unexpected field layout")
	// ErrMissing is returned when a required field is absent.
	ErrMissing = errors.New("fieldio: missing required field")
	// ErrTruncated is returned when the input ends
	// in the middle of a header, field, or value.
	ErrTruncated = errors.New("fieldio: truncated input")
)

// Marshal produces a complete stream containing
// the object written by fn.
func Marshal(fn func(w *Writer)) []byte {
	var w Writer
	fn(&w)
	return AppendStream(nil, Version, &w)
}

// AppendStream appends the header for the given
// schema version followed by the object in w to dst.
//
// Most callers should use Marshal; AppendStream
// exists so that streams for other schema versions
// can be produced.
func AppendStream(dst []byte, version uint64, w *Writer) []byte {
	dst = append(dst, magic[:]...)
	dst = appendUvarint(dst, version)
	return w.appendObject(dst)
}

// Unmarshal checks the stream header in buf
// and calls fn with a Reader positioned at the
// root object. Once fn returns, Unmarshal checks
// that every field of the root object was consumed
// and that no trailing bytes remain.
func Unmarshal(buf []byte, fn func(r *Reader) error) error {
	if len(buf) < len(magic) {
		return ErrTruncated
	}
	if [3]byte{buf[0], buf[1], buf[2]} != magic {
		return fmt.Errorf("%w: bad magic %q", ErrSchema, buf[:len(magic)])
	}
	buf = buf[len(magic):]
	version, buf, err := readUvarint(buf)
	if err != nil {
		return err
	}
	if version != Version {
		return fmt.Errorf("%w: got version %d, want %d", ErrVersionMismatch, version, Version)
	}
	r, rest, err := newReader(buf)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrSchema, len(rest))
	}
	if err := fn(r); err != nil {
		return err
	}
	return r.Finish()
}
