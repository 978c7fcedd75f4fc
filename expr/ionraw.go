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
	"bytes"
	"errors"
	"fmt"

	"github.com/amazon-ion/ion-go/ion"
)

var ionBVM = []byte{0xe0, 0x01, 0x00, 0xea}

type ionFrame struct {
	end    int
	fields bool
}

// checkBinaryIon walks the type descriptors of a
// binary Ion stream and confirms that every declared
// length fits inside its container. The binary reader
// allocates a top-level scalar by its declared length
// before reading it, so a lying header must be caught
// here. Text input is left to the reader.
func checkBinaryIon(buf []byte) error {
	if !bytes.HasPrefix(buf, ionBVM) {
		return nil
	}
	stack := []ionFrame{{end: len(buf)}}
	pos := 0
	for {
		cur := stack[len(stack)-1]
		if pos == cur.end {
			if len(stack) == 1 {
				return nil
			}
			stack = stack[:len(stack)-1]
			continue
		}
		if cur.fields {
			_, n, err := ionVarUint(buf[pos:cur.end])
			if err != nil {
				return err
			}
			pos += n
			if pos == cur.end {
				return malformed("ion field name at offset %d has no value", pos)
			}
		}
		start := pos
		tag := buf[pos]
		pos++
		code, low := tag>>4, tag&0x0f
		length := uint64(low)
		switch {
		case code == 0x0f:
			return malformed("invalid ion type descriptor %#x at offset %d", tag, start)
		case code == 0x0e && low == 0:
			// version marker
			if len(stack) != 1 {
				return malformed("ion version marker inside a container at offset %d", start)
			}
			length = 3
		case low == 0x0f || code == 0x01:
			// null, or a bool held in the descriptor
			continue
		case low == 0x0e || (code == 0x0d && low == 1):
			v, n, err := ionVarUint(buf[pos:cur.end])
			if err != nil {
				return err
			}
			pos += n
			length = v
		}
		if length > uint64(cur.end-pos) {
			return malformed("ion value at offset %d declares %d bytes but %d remain", start, length, cur.end-pos)
		}
		end := pos + int(length)
		switch {
		case code >= 0x0b && code <= 0x0d:
			stack = append(stack, ionFrame{end: end, fields: code == 0x0d})
		case code == 0x0e && low != 0:
			// annotation wrapper: skip the
			// annotation symbols, then check
			// the wrapped value as a container
			alen, n, err := ionVarUint(buf[pos:end])
			if err != nil {
				return err
			}
			pos += n
			if alen > uint64(end-pos) {
				return malformed("ion annotations at offset %d declare %d bytes but %d remain", start, alen, end-pos)
			}
			pos += int(alen)
			stack = append(stack, ionFrame{end: end})
		default:
			pos = end
		}
	}
}

// ionVarUint decodes a binary Ion VarUInt
// (big-endian groups of seven bits, with the
// high bit set on the final byte)
func ionVarUint(buf []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < len(buf) && i < 10; i++ {
		if v > (1<<57)-1 {
			return 0, 0, malformed("ion VarUInt overflows 64 bits")
		}
		v = v<<7 | uint64(buf[i]&0x7f)
		if buf[i]&0x80 != 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, malformed("truncated ion VarUInt")
}

// ionField is a struct field that was read
// before the node it belongs to was allocated
type ionField struct {
	name string
	raw  []byte
}

func (f *ionField) apply(n Node) error {
	r := ion.NewReaderBytes(f.raw)
	if !r.Next() {
		if err := r.Err(); err != nil {
			return err
		}
		return malformed("field %q: lost buffered value", f.name)
	}
	err := n.setfield(f.name, &ionReader{r: r})
	if errors.Is(err, errUnexpectedField) {
		return nil
	}
	return err
}

// captureIon re-encodes the value r is
// positioned on as a standalone binary Ion stream
func captureIon(r ion.Reader) ([]byte, error) {
	var buf bytes.Buffer
	w := ion.NewBinaryWriter(&buf)
	if err := copyIon(r, w); err != nil {
		return nil, err
	}
	if err := w.Finish(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// symbol tokens are copied by text; symbol IDs
// belong to the symbol table of the source stream
func textToken(tok *ion.SymbolToken) (ion.SymbolToken, error) {
	if tok == nil || tok.Text == nil {
		return ion.SymbolToken{}, malformed("symbol without text")
	}
	return ion.NewSymbolTokenFromString(*tok.Text), nil
}

func copyIon(r ion.Reader, w ion.Writer) error {
	ann, err := r.Annotations()
	if err != nil {
		return err
	}
	if len(ann) > 0 {
		toks := make([]ion.SymbolToken, len(ann))
		for i := range ann {
			if toks[i], err = textToken(&ann[i]); err != nil {
				return err
			}
		}
		if err := w.Annotations(toks...); err != nil {
			return err
		}
	}
	t := r.Type()
	if r.IsNull() {
		return w.WriteNullType(t)
	}
	switch t {
	case ion.BoolType:
		b, err := r.BoolValue()
		if err != nil {
			return err
		}
		return w.WriteBool(*b)
	case ion.IntType:
		i, err := r.BigIntValue()
		if err != nil {
			return err
		}
		return w.WriteBigInt(i)
	case ion.FloatType:
		f, err := r.FloatValue()
		if err != nil {
			return err
		}
		return w.WriteFloat(*f)
	case ion.DecimalType:
		d, err := r.DecimalValue()
		if err != nil {
			return err
		}
		return w.WriteDecimal(d)
	case ion.TimestampType:
		ts, err := r.TimestampValue()
		if err != nil {
			return err
		}
		return w.WriteTimestamp(*ts)
	case ion.SymbolType:
		tok, err := r.SymbolValue()
		if err != nil {
			return err
		}
		sym, err := textToken(tok)
		if err != nil {
			return err
		}
		return w.WriteSymbol(sym)
	case ion.StringType:
		s, err := r.StringValue()
		if err != nil {
			return err
		}
		return w.WriteString(*s)
	case ion.ClobType, ion.BlobType:
		b, err := r.ByteValue()
		if err != nil {
			return err
		}
		if t == ion.ClobType {
			return w.WriteClob(b)
		}
		return w.WriteBlob(b)
	case ion.ListType:
		return copyContainer(r, w, w.BeginList, w.EndList, false)
	case ion.SexpType:
		return copyContainer(r, w, w.BeginSexp, w.EndSexp, false)
	case ion.StructType:
		return copyContainer(r, w, w.BeginStruct, w.EndStruct, true)
	}
	return malformed("cannot copy ion value of type %s", t)
}

func copyContainer(r ion.Reader, w ion.Writer, begin, end func() error, fields bool) error {
	if err := r.StepIn(); err != nil {
		return err
	}
	if err := begin(); err != nil {
		return err
	}
	for r.Next() {
		if fields {
			name, err := r.FieldName()
			if err != nil {
				return err
			}
			tok, err := textToken(name)
			if err != nil {
				return fmt.Errorf("field name: %w", err)
			}
			if err := w.FieldName(tok); err != nil {
				return err
			}
		}
		if err := copyIon(r, w); err != nil {
			return err
		}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if err := end(); err != nil {
		return err
	}
	return r.StepOut()
}
