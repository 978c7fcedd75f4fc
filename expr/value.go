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
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the type of a Value.
// Values are persisted; append only.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "BOOLEAN"
	case KindInteger:
		return "BIGINT"
	case KindFloat:
		return "DOUBLE"
	case KindString:
		return "VARCHAR"
	default:
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the literal held by a *Constant.
// It is one of Null, Bool, Integer, Float, or String.
type Value interface {
	Kind() ValueKind
	text(dst *strings.Builder)
	// equal compares values of the same kind
	// exactly; 1 and 1.0 are different values
	equal(Value) bool
	hash(h *hasher)
}

// Null is the SQL NULL literal.
type Null struct{}

// Bool is a boolean literal.
type Bool bool

// Integer is an integer literal.
type Integer int64

// Float is a floating-point literal.
type Float float64

// String is a string literal.
type String string

func (Null) Kind() ValueKind    { return KindNull }
func (Bool) Kind() ValueKind    { return KindBool }
func (Integer) Kind() ValueKind { return KindInteger }
func (Float) Kind() ValueKind   { return KindFloat }
func (String) Kind() ValueKind  { return KindString }

func (Null) text(dst *strings.Builder) { dst.WriteString("NULL") }

func (b Bool) text(dst *strings.Builder) {
	if b {
		dst.WriteString("TRUE")
	} else {
		dst.WriteString("FALSE")
	}
}

func (i Integer) text(dst *strings.Builder) {
	var buf [24]byte
	dst.Write(strconv.AppendInt(buf[:0], int64(i), 10))
}

func (f Float) text(dst *strings.Builder) {
	var buf [32]byte
	out := strconv.AppendFloat(buf[:0], float64(f), 'g', -1, 64)
	dst.Write(out)
	// keep the literal a float when it is re-parsed
	if !strings.ContainsAny(string(out), ".eEnN") {
		dst.WriteString(".0")
	}
}

func (s String) text(dst *strings.Builder) { quote(dst, string(s)) }

func (Null) equal(v Value) bool { _, ok := v.(Null); return ok }

func (b Bool) equal(v Value) bool {
	o, ok := v.(Bool)
	return ok && o == b
}

func (i Integer) equal(v Value) bool {
	o, ok := v.(Integer)
	return ok && o == i
}

// floats compare by bit pattern so that
// equality stays reflexive for NaN
func (f Float) equal(v Value) bool {
	o, ok := v.(Float)
	return ok && math.Float64bits(float64(o)) == math.Float64bits(float64(f))
}

func (s String) equal(v Value) bool {
	o, ok := v.(String)
	return ok && o == s
}

func (Null) hash(h *hasher)      { h.byte(byte(KindNull)) }
func (b Bool) hash(h *hasher)    { h.byte(byte(KindBool)); h.bool(bool(b)) }
func (i Integer) hash(h *hasher) { h.byte(byte(KindInteger)); h.uint(uint64(i)) }
func (f Float) hash(h *hasher)   { h.byte(byte(KindFloat)); h.float(float64(f)) }
func (s String) hash(h *hasher)  { h.byte(byte(KindString)); h.string(string(s)) }
