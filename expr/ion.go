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

// The self-describing encoding represents
// every node as an Ion struct:
//
//	{class: LAMBDA, type: LAMBDA, alias: "a", lhs: {...}, expr: {...}}
//
// Fields may appear in any order; node fields
// that precede "class" are buffered and applied
// once the node has been allocated.
// Fields that a reader does not know are skipped,
// and optional fields that are absent take their
// zero value, so new optional fields can be added
// without breaking older readers.

// MarshalIon encodes n as binary Ion.
func MarshalIon(n Node) ([]byte, error) {
	var buf bytes.Buffer
	w := ion.NewBinaryWriter(&buf)
	if err := EncodeIon(w, n); err != nil {
		return nil, err
	}
	if err := w.Finish(); err != nil {
		return nil, fmt.Errorf("expr.MarshalIon: %w", err)
	}
	return buf.Bytes(), nil
}

// ToIonText returns the text Ion representation of n.
func ToIonText(n Node) (string, error) {
	var buf bytes.Buffer
	w := ion.NewTextWriter(&buf)
	if err := EncodeIon(w, n); err != nil {
		return "", err
	}
	if err := w.Finish(); err != nil {
		return "", fmt.Errorf("expr.ToIonText: %w", err)
	}
	return buf.String(), nil
}

// EncodeIon writes n as one Ion value to w.
// The caller is responsible for calling w.Finish.
func EncodeIon(w ion.Writer, n Node) error {
	if n == nil {
		return fmt.Errorf("expr.EncodeIon: nil node")
	}
	iw := &ionWriter{w: w}
	encodeNode(iw, n)
	if iw.err != nil {
		return fmt.Errorf("expr.EncodeIon: %w", iw.err)
	}
	return nil
}

// UnmarshalIon decodes the first value in buf,
// which may be binary or text Ion.
func UnmarshalIon(buf []byte) (Node, error) {
	if err := checkBinaryIon(buf); err != nil {
		return nil, fmt.Errorf("expr.UnmarshalIon: %w", err)
	}
	r := ion.NewReaderBytes(buf)
	if !r.Next() {
		err := r.Err()
		if err == nil {
			err = malformed("no input data")
		} else {
			err = fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return nil, fmt.Errorf("expr.UnmarshalIon: %w", err)
	}
	return DecodeIon(r)
}

// DecodeIon decodes the value r is positioned on.
// Binary readers created over untrusted bytes should
// only be handed to DecodeIon after the input has been
// bounds-checked; UnmarshalIon does that itself.
func DecodeIon(r ion.Reader) (Node, error) {
	n, err := decodeNode(&ionReader{r: r})
	if err != nil {
		if !errors.Is(err, ErrMalformed) {
			err = fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return nil, fmt.Errorf("expr.DecodeIon: %w", err)
	}
	return n, nil
}

// ionWriter wraps an ion.Writer and
// keeps the first error it returns
type ionWriter struct {
	w   ion.Writer
	err error
}

func (w *ionWriter) field(name string) {
	if w.err == nil {
		w.err = w.w.FieldName(ion.NewSymbolTokenFromString(name))
	}
}

func (w *ionWriter) symbol(name, sym string) {
	w.field(name)
	if w.err == nil {
		w.err = w.w.WriteSymbolFromString(sym)
	}
}

func (w *ionWriter) string(name, s string) {
	w.field(name)
	if w.err == nil {
		w.err = w.w.WriteString(s)
	}
}

func (w *ionWriter) int(name string, i int64) {
	w.field(name)
	if w.err == nil {
		w.err = w.w.WriteInt(i)
	}
}

func (w *ionWriter) float(name string, f float64) {
	w.field(name)
	if w.err == nil {
		w.err = w.w.WriteFloat(f)
	}
}

func (w *ionWriter) null(name string) {
	w.field(name)
	if w.err == nil {
		w.err = w.w.WriteNull()
	}
}

func (w *ionWriter) bool(name string, b bool) {
	w.field(name)
	if w.err == nil {
		w.err = w.w.WriteBool(b)
	}
}

func (w *ionWriter) strings(name string, lst []string) {
	w.field(name)
	w.beginList()
	for i := range lst {
		if w.err == nil {
			w.err = w.w.WriteString(lst[i])
		}
	}
	w.endList()
}

func (w *ionWriter) node(name string, n Node) {
	if n == nil {
		return
	}
	w.field(name)
	encodeNode(w, n)
}

func (w *ionWriter) nodes(name string, lst []Node) {
	if len(lst) == 0 {
		return
	}
	w.field(name)
	w.beginList()
	for i := range lst {
		encodeNode(w, lst[i])
	}
	w.endList()
}

func (w *ionWriter) beginStruct() {
	if w.err == nil {
		w.err = w.w.BeginStruct()
	}
}

func (w *ionWriter) endStruct() {
	if w.err == nil {
		w.err = w.w.EndStruct()
	}
}

func (w *ionWriter) beginList() {
	if w.err == nil {
		w.err = w.w.BeginList()
	}
}

func (w *ionWriter) endList() {
	if w.err == nil {
		w.err = w.w.EndList()
	}
}

func encodeNode(w *ionWriter, n Node) {
	w.beginStruct()
	w.symbol("class", n.Class().String())
	w.symbol("type", n.Type().String())
	if a := n.Alias(); a != "" {
		w.string("alias", a)
	}
	n.encode(w)
	w.endStruct()
}

// ionReader wraps an ion.Reader positioned
// on the value of a struct field
type ionReader struct {
	r ion.Reader
}

func (r *ionReader) fieldName() (string, bool, error) {
	tok, err := r.r.FieldName()
	if err != nil {
		return "", false, err
	}
	if tok == nil || tok.Text == nil {
		return "", false, nil
	}
	return *tok.Text, true, nil
}

func (r *ionReader) notNull(want ion.Type) error {
	if r.r.IsNull() {
		return malformed("unexpected null %s", want)
	}
	if got := r.r.Type(); got != want {
		return malformed("expected %s, found %s", want, got)
	}
	return nil
}

func (r *ionReader) string() (string, error) {
	if err := r.notNull(ion.StringType); err != nil {
		return "", err
	}
	s, err := r.r.StringValue()
	if err != nil {
		return "", err
	}
	return *s, nil
}

// symbol reads a symbol, or a string
// standing in for one
func (r *ionReader) symbol() (string, error) {
	if r.r.Type() == ion.StringType {
		return r.string()
	}
	if err := r.notNull(ion.SymbolType); err != nil {
		return "", err
	}
	tok, err := r.r.SymbolValue()
	if err != nil {
		return "", err
	}
	if tok == nil || tok.Text == nil {
		return "", malformed("symbol without text")
	}
	return *tok.Text, nil
}

func (r *ionReader) int() (int64, error) {
	if err := r.notNull(ion.IntType); err != nil {
		return 0, err
	}
	i, err := r.r.Int64Value()
	if err != nil {
		return 0, err
	}
	return *i, nil
}

func (r *ionReader) float() (float64, error) {
	if err := r.notNull(ion.FloatType); err != nil {
		return 0, err
	}
	f, err := r.r.FloatValue()
	if err != nil {
		return 0, err
	}
	return *f, nil
}

func (r *ionReader) bool() (bool, error) {
	if err := r.notNull(ion.BoolType); err != nil {
		return false, err
	}
	b, err := r.r.BoolValue()
	if err != nil {
		return false, err
	}
	return *b, nil
}

// each steps into the list at the current
// position and calls fn for each element
func (r *ionReader) each(fn func() error) error {
	if err := r.notNull(ion.ListType); err != nil {
		return err
	}
	if err := r.r.StepIn(); err != nil {
		return err
	}
	for r.r.Next() {
		if err := fn(); err != nil {
			return err
		}
	}
	if err := r.r.Err(); err != nil {
		return err
	}
	return r.r.StepOut()
}

func (r *ionReader) strings() ([]string, error) {
	var out []string
	err := r.each(func() error {
		s, err := r.string()
		out = append(out, s)
		return err
	})
	return out, err
}

func (r *ionReader) node() (Node, error) {
	return decodeNode(r)
}

func (r *ionReader) nodes() ([]Node, error) {
	var out []Node
	err := r.each(func() error {
		n, err := decodeNode(r)
		if err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, err
}

func decodeNode(r *ionReader) (Node, error) {
	if err := r.notNull(ion.StructType); err != nil {
		return nil, err
	}
	if err := r.r.StepIn(); err != nil {
		return nil, err
	}
	var (
		n       Node
		typ     ExprType
		hasType bool
		alias   string
		early   []ionField
	)
	for r.r.Next() {
		name, ok, err := r.fieldName()
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		switch name {
		case "class":
			if n != nil {
				return nil, malformed("duplicate class field")
			}
			s, err := r.symbol()
			if err != nil {
				return nil, err
			}
			c, ok := ParseClass(s)
			if !ok {
				return nil, fmt.Errorf("%w: %w: %q", ErrMalformed, ErrUnknownClass, s)
			}
			n, ok = newEmpty(c)
			if !ok {
				return nil, fmt.Errorf("%w: %w: %s", ErrMalformed, ErrUnknownClass, c)
			}
		case "type":
			s, err := r.symbol()
			if err != nil {
				return nil, err
			}
			typ, hasType = ParseExprType(s)
			if !hasType {
				return nil, malformed("unknown expression type %q", s)
			}
		case "alias":
			alias, err = r.string()
			if err != nil {
				return nil, err
			}
		default:
			if n == nil {
				raw, err := captureIon(r.r)
				if err != nil {
					return nil, err
				}
				early = append(early, ionField{name: name, raw: raw})
				continue
			}
			err := n.setfield(name, r)
			if errors.Is(err, errUnexpectedField) {
				// written by a newer schema;
				// the value is skipped by Next
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}
	if err := r.r.Err(); err != nil {
		return nil, err
	}
	if err := r.r.StepOut(); err != nil {
		return nil, err
	}
	if n == nil {
		return nil, malformed("missing class field")
	}
	for i := range early {
		if err := early[i].apply(n); err != nil {
			return nil, err
		}
	}
	if !hasType {
		return nil, missing(n.Class(), "type")
	}
	if err := n.setType(typ); err != nil {
		return nil, err
	}
	n.SetAlias(alias)
	if err := n.check(); err != nil {
		return nil, err
	}
	return n, nil
}
