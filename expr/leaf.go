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
	"strconv"
	"strings"

	"github.com/SnellerInc/pexpr/fieldio"
	"github.com/amazon-ion/ion-go/ion"

	"golang.org/x/exp/slices"
)

// ColumnRef is a (possibly qualified)
// reference to a column, e.g. t.x
//
// Lambda parameters are also represented
// as unqualified column references.
type ColumnRef struct {
	aliased
	// Names holds the path components;
	// it is never empty
	Names []string
}

// Column produces a column reference
// from its path components.
func Column(names ...string) *ColumnRef {
	return &ColumnRef{Names: names}
}

func (c *ColumnRef) Class() Class   { return ClassColumnRef }
func (c *ColumnRef) Type() ExprType { return TypeColumnRef }

// IsQualified returns whether the reference
// has more than one path component.
func (c *ColumnRef) IsQualified() bool { return len(c.Names) > 1 }

// Name returns the last path component.
func (c *ColumnRef) Name() string { return c.Names[len(c.Names)-1] }

func (c *ColumnRef) text(dst *strings.Builder) {
	for i := range c.Names {
		if i > 0 {
			dst.WriteByte('.')
		}
		quoteID(dst, c.Names[i])
	}
}

func (c *ColumnRef) Equals(x Node) bool {
	xc, ok := x.(*ColumnRef)
	return ok && identsEqual(c.Names, xc.Names)
}

func (c *ColumnRef) Hash() uint64 {
	h := newHasher(c)
	h.uint(uint64(len(c.Names)))
	for i := range c.Names {
		h.ident(c.Names[i])
	}
	return h.sum()
}

func (c *ColumnRef) Copy() Node {
	return &ColumnRef{aliased: c.aliased, Names: slices.Clone(c.Names)}
}

func (c *ColumnRef) setType(t ExprType) error { return checkFixedType(c, t) }

func (c *ColumnRef) writeFields(w *fieldio.Writer) {
	w.WriteStrings(fieldBase, c.Names)
}

func (c *ColumnRef) readFields(r *fieldio.Reader) (err error) {
	c.Names, err = r.OptionalStrings(fieldBase)
	return err
}

func (c *ColumnRef) encode(w *ionWriter) {
	w.strings("names", c.Names)
}

func (c *ColumnRef) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "names":
		c.Names, err = r.strings()
	default:
		return errUnexpectedField
	}
	return err
}

func (c *ColumnRef) check() error {
	if len(c.Names) == 0 {
		return missing(c.Class(), "names")
	}
	for i := range c.Names {
		if c.Names[i] == "" {
			return malformed("%s: empty name component", c.Class())
		}
	}
	return nil
}

func (c *ColumnRef) walk(v Visitor) {}

// Constant is a literal value.
type Constant struct {
	aliased
	Value Value
}

// Lit produces a literal from a Value.
func Lit(v Value) *Constant { return &Constant{Value: v} }

// Int produces an integer literal.
func Int(i int64) *Constant { return Lit(Integer(i)) }

// Str produces a string literal.
func Str(s string) *Constant { return Lit(String(s)) }

func (c *Constant) Class() Class   { return ClassConstant }
func (c *Constant) Type() ExprType { return TypeConstant }

func (c *Constant) text(dst *strings.Builder) { c.Value.text(dst) }

func (c *Constant) Equals(x Node) bool {
	xc, ok := x.(*Constant)
	return ok && c.Value.equal(xc.Value)
}

func (c *Constant) Hash() uint64 {
	h := newHasher(c)
	c.Value.hash(&h)
	return h.sum()
}

func (c *Constant) Copy() Node {
	// values are immutable
	return &Constant{aliased: c.aliased, Value: c.Value}
}

func (c *Constant) setType(t ExprType) error { return checkFixedType(c, t) }

func (c *Constant) writeFields(w *fieldio.Writer) {
	w.WriteUint(fieldBase, uint64(c.Value.Kind()))
	switch v := c.Value.(type) {
	case Bool:
		w.WriteBool(fieldBase+1, bool(v))
	case Integer:
		w.WriteInt(fieldBase+2, int64(v))
	case Float:
		w.WriteFloat(fieldBase+3, float64(v))
	case String:
		w.WriteString(fieldBase+4, string(v))
	}
}

func (c *Constant) readFields(r *fieldio.Reader) error {
	k, err := r.Uint(fieldBase)
	if err != nil {
		return err
	}
	switch ValueKind(k) {
	case KindNull:
		c.Value = Null{}
	case KindBool:
		b, err := r.Bool(fieldBase + 1)
		if err != nil {
			return err
		}
		c.Value = Bool(b)
	case KindInteger:
		i, err := r.Int(fieldBase + 2)
		if err != nil {
			return err
		}
		c.Value = Integer(i)
	case KindFloat:
		f, err := r.Float(fieldBase + 3)
		if err != nil {
			return err
		}
		c.Value = Float(f)
	case KindString:
		s, err := r.String(fieldBase + 4)
		if err != nil {
			return err
		}
		c.Value = String(s)
	default:
		return malformed("%s: unknown value kind %d", c.Class(), k)
	}
	return nil
}

func (c *Constant) encode(w *ionWriter) {
	switch v := c.Value.(type) {
	case Null:
		w.null("value")
	case Bool:
		w.bool("value", bool(v))
	case Integer:
		w.int("value", int64(v))
	case Float:
		w.float("value", float64(v))
	case String:
		w.string("value", string(v))
	}
}

func (c *Constant) setfield(name string, r *ionReader) error {
	if name != "value" {
		return errUnexpectedField
	}
	if r.r.IsNull() {
		c.Value = Null{}
		return nil
	}
	switch r.r.Type() {
	case ion.BoolType:
		b, err := r.bool()
		c.Value = Bool(b)
		return err
	case ion.IntType:
		i, err := r.int()
		c.Value = Integer(i)
		return err
	case ion.FloatType:
		f, err := r.float()
		c.Value = Float(f)
		return err
	case ion.StringType:
		s, err := r.string()
		c.Value = String(s)
		return err
	default:
		return malformed("%s: unsupported value type %s", c.Class(), r.r.Type())
	}
}

func (c *Constant) check() error {
	if c.Value == nil {
		return missing(c.Class(), "value")
	}
	return nil
}

func (c *Constant) walk(v Visitor) {}

// Star is the '*' projection, optionally
// qualified by a relation and with a
// list of excluded columns.
type Star struct {
	aliased
	Relation string
	Exclude  []string
}

func (s *Star) Class() Class   { return ClassStar }
func (s *Star) Type() ExprType { return TypeStar }

func (s *Star) text(dst *strings.Builder) {
	if s.Relation != "" {
		quoteID(dst, s.Relation)
		dst.WriteByte('.')
	}
	dst.WriteByte('*')
	if len(s.Exclude) > 0 {
		dst.WriteString(" EXCLUDE (")
		for i := range s.Exclude {
			if i > 0 {
				dst.WriteString(", ")
			}
			quoteID(dst, s.Exclude[i])
		}
		dst.WriteByte(')')
	}
}

func (s *Star) Equals(x Node) bool {
	xs, ok := x.(*Star)
	return ok && identEqual(s.Relation, xs.Relation) && identsEqual(s.Exclude, xs.Exclude)
}

func (s *Star) Hash() uint64 {
	h := newHasher(s)
	h.ident(s.Relation)
	h.uint(uint64(len(s.Exclude)))
	for i := range s.Exclude {
		h.ident(s.Exclude[i])
	}
	return h.sum()
}

func (s *Star) Copy() Node {
	return &Star{aliased: s.aliased, Relation: s.Relation, Exclude: slices.Clone(s.Exclude)}
}

func (s *Star) setType(t ExprType) error { return checkFixedType(s, t) }

func (s *Star) writeFields(w *fieldio.Writer) {
	if s.Relation != "" {
		w.WriteString(fieldBase, s.Relation)
	}
	if len(s.Exclude) > 0 {
		w.WriteStrings(fieldBase+1, s.Exclude)
	}
}

func (s *Star) readFields(r *fieldio.Reader) (err error) {
	if s.Relation, err = r.OptionalString(fieldBase, ""); err != nil {
		return err
	}
	s.Exclude, err = r.OptionalStrings(fieldBase + 1)
	return err
}

func (s *Star) encode(w *ionWriter) {
	if s.Relation != "" {
		w.string("relation", s.Relation)
	}
	if len(s.Exclude) > 0 {
		w.strings("exclude", s.Exclude)
	}
}

func (s *Star) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "relation":
		s.Relation, err = r.string()
	case "exclude":
		s.Exclude, err = r.strings()
	default:
		return errUnexpectedField
	}
	return err
}

func (s *Star) check() error   { return nil }
func (s *Star) walk(v Visitor) {}

// Parameter is a prepared-statement
// parameter placeholder ($1, $2, ...).
type Parameter struct {
	aliased
	// Index is the 1-based parameter number.
	Index int
}

func (p *Parameter) Class() Class   { return ClassParameter }
func (p *Parameter) Type() ExprType { return TypeParameter }

func (p *Parameter) text(dst *strings.Builder) {
	dst.WriteByte('$')
	dst.WriteString(strconv.Itoa(p.Index))
}

func (p *Parameter) Equals(x Node) bool {
	xp, ok := x.(*Parameter)
	return ok && xp.Index == p.Index
}

func (p *Parameter) Hash() uint64 {
	h := newHasher(p)
	h.uint(uint64(p.Index))
	return h.sum()
}

func (p *Parameter) Copy() Node {
	c := *p
	return &c
}

func (p *Parameter) setType(t ExprType) error { return checkFixedType(p, t) }

func (p *Parameter) writeFields(w *fieldio.Writer) {
	w.WriteUint(fieldBase, uint64(p.Index))
}

func (p *Parameter) readFields(r *fieldio.Reader) error {
	u, err := r.Uint(fieldBase)
	p.Index = int(u)
	return err
}

func (p *Parameter) encode(w *ionWriter) { w.int("index", int64(p.Index)) }

func (p *Parameter) setfield(name string, r *ionReader) error {
	if name != "index" {
		return errUnexpectedField
	}
	i, err := r.int()
	p.Index = int(i)
	return err
}

func (p *Parameter) check() error {
	if p.Index < 1 {
		return malformed("%s: invalid index %d", p.Class(), p.Index)
	}
	return nil
}

func (p *Parameter) walk(v Visitor) {}

// PositionalRef is a reference to a column
// by its 1-based position (#1, #2, ...).
type PositionalRef struct {
	aliased
	Index int
}

func (p *PositionalRef) Class() Class   { return ClassPositionalRef }
func (p *PositionalRef) Type() ExprType { return TypePositionalRef }

func (p *PositionalRef) text(dst *strings.Builder) {
	dst.WriteByte('#')
	dst.WriteString(strconv.Itoa(p.Index))
}

func (p *PositionalRef) Equals(x Node) bool {
	xp, ok := x.(*PositionalRef)
	return ok && xp.Index == p.Index
}

func (p *PositionalRef) Hash() uint64 {
	h := newHasher(p)
	h.uint(uint64(p.Index))
	return h.sum()
}

func (p *PositionalRef) Copy() Node {
	c := *p
	return &c
}

func (p *PositionalRef) setType(t ExprType) error { return checkFixedType(p, t) }

func (p *PositionalRef) writeFields(w *fieldio.Writer) {
	w.WriteUint(fieldBase, uint64(p.Index))
}

func (p *PositionalRef) readFields(r *fieldio.Reader) error {
	u, err := r.Uint(fieldBase)
	p.Index = int(u)
	return err
}

func (p *PositionalRef) encode(w *ionWriter) { w.int("index", int64(p.Index)) }

func (p *PositionalRef) setfield(name string, r *ionReader) error {
	if name != "index" {
		return errUnexpectedField
	}
	i, err := r.int()
	p.Index = int(i)
	return err
}

func (p *PositionalRef) check() error {
	if p.Index < 1 {
		return malformed("%s: invalid index %d", p.Class(), p.Index)
	}
	return nil
}

func (p *PositionalRef) walk(v Visitor) {}

// Default is the DEFAULT keyword
// in a VALUES list or SET clause.
type Default struct {
	aliased
}

func (d *Default) Class() Class   { return ClassDefault }
func (d *Default) Type() ExprType { return TypeDefault }

func (d *Default) text(dst *strings.Builder) { dst.WriteString("DEFAULT") }

func (d *Default) Equals(x Node) bool {
	_, ok := x.(*Default)
	return ok
}

func (d *Default) Hash() uint64 {
	h := newHasher(d)
	return h.sum()
}

func (d *Default) Copy() Node {
	c := *d
	return &c
}

func (d *Default) setType(t ExprType) error { return checkFixedType(d, t) }

func (d *Default) writeFields(w *fieldio.Writer) {}
func (d *Default) readFields(r *fieldio.Reader) error { return nil }
func (d *Default) encode(w *ionWriter) {}
func (d *Default) setfield(name string, r *ionReader) error { return errUnexpectedField }
func (d *Default) check() error { return nil }
func (d *Default) walk(v Visitor) {}
