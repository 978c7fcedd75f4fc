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
	"strings"

	"github.com/SnellerInc/pexpr/fieldio"
	"github.com/amazon-ion/ion-go/ion"

	"golang.org/x/exp/slices"
)

// RowFunction is the name of the function
// the grammar uses for a parenthesized list
// of two or more expressions, e.g. (a, b)
const RowFunction = "row"

// Function is a call of a named function.
type Function struct {
	aliased
	Schema   string
	Name     string
	Args     []Node
	Distinct bool
	// Filter, if non-nil, is the
	// FILTER (WHERE ...) clause
	Filter Node
}

// Call yields name(args...).
func Call(name string, args ...Node) *Function {
	return &Function{Name: name, Args: args}
}

// Row yields the parenthesized list (args...).
func Row(args ...Node) *Function { return Call(RowFunction, args...) }

// IsRow returns whether f is a parenthesized
// list of expressions rather than a call.
func (f *Function) IsRow() bool {
	return f.Schema == "" && !f.Distinct && f.Filter == nil && strings.EqualFold(f.Name, RowFunction)
}

func (f *Function) Class() Class   { return ClassFunction }
func (f *Function) Type() ExprType { return TypeFunction }

func (f *Function) text(dst *strings.Builder) {
	if f.IsRow() && len(f.Args) > 1 {
		dst.WriteByte('(')
		textList(dst, f.Args)
		dst.WriteByte(')')
		return
	}
	if f.Schema != "" {
		quoteID(dst, f.Schema)
		dst.WriteByte('.')
	}
	quoteID(dst, f.Name)
	dst.WriteByte('(')
	if f.Distinct {
		dst.WriteString("DISTINCT ")
	}
	textList(dst, f.Args)
	dst.WriteByte(')')
	if f.Filter != nil {
		dst.WriteString(" FILTER (WHERE ")
		f.Filter.text(dst)
		dst.WriteByte(')')
	}
}

func (f *Function) Equals(x Node) bool {
	xf, ok := x.(*Function)
	if !ok {
		return false
	}
	return identEqual(f.Schema, xf.Schema) &&
		identEqual(f.Name, xf.Name) &&
		f.Distinct == xf.Distinct &&
		slices.EqualFunc(f.Args, xf.Args, Equal) &&
		Equal(f.Filter, xf.Filter)
}

func (f *Function) Hash() uint64 {
	h := newHasher(f)
	h.ident(f.Schema)
	h.ident(f.Name)
	h.bool(f.Distinct)
	h.children(f.Args)
	h.child(f.Filter)
	return h.sum()
}

func (f *Function) Copy() Node {
	return &Function{
		aliased:  f.aliased,
		Schema:   f.Schema,
		Name:     f.Name,
		Args:     copyAll(f.Args),
		Distinct: f.Distinct,
		Filter:   Copy(f.Filter),
	}
}

func (f *Function) setType(t ExprType) error { return checkFixedType(f, t) }

func (f *Function) writeFields(w *fieldio.Writer) {
	if f.Schema != "" {
		w.WriteString(fieldBase, f.Schema)
	}
	w.WriteString(fieldBase+1, f.Name)
	writeChildren(w, fieldBase+2, f.Args)
	if f.Distinct {
		w.WriteBool(fieldBase+3, true)
	}
	writeChild(w, fieldBase+4, f.Filter)
}

func (f *Function) readFields(r *fieldio.Reader) (err error) {
	if f.Schema, err = r.OptionalString(fieldBase, ""); err != nil {
		return err
	}
	if f.Name, err = r.String(fieldBase + 1); err != nil {
		return err
	}
	if f.Args, err = readChildren(r, fieldBase+2); err != nil {
		return err
	}
	if f.Distinct, err = r.OptionalBool(fieldBase+3, false); err != nil {
		return err
	}
	f.Filter, err = readChild(r, fieldBase+4)
	return err
}

func (f *Function) encode(w *ionWriter) {
	if f.Schema != "" {
		w.string("schema", f.Schema)
	}
	w.string("name", f.Name)
	w.nodes("args", f.Args)
	if f.Distinct {
		w.bool("distinct", true)
	}
	w.node("filter", f.Filter)
}

func (f *Function) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "schema":
		f.Schema, err = r.string()
	case "name":
		f.Name, err = r.string()
	case "args":
		f.Args, err = r.nodes()
	case "distinct":
		f.Distinct, err = r.bool()
	case "filter":
		f.Filter, err = r.node()
	default:
		return errUnexpectedField
	}
	return err
}

func (f *Function) check() error {
	if f.Name == "" {
		return missing(f.Class(), "name")
	}
	return nil
}

func (f *Function) walk(v Visitor) {
	walkAll(v, f.Args)
	if f.Filter != nil {
		Walk(v, f.Filter)
	}
}

func (f *Function) rewrite(r Rewriter) Node {
	rewriteAll(r, f.Args)
	f.Filter = Rewrite(r, f.Filter)
	return f
}

// Cast is CAST(child AS target) or
// TRY_CAST(child AS target).
type Cast struct {
	aliased
	Child Node
	// Target is the name of the target type
	Target string
	Try    bool
}

func (c *Cast) Class() Class   { return ClassCast }
func (c *Cast) Type() ExprType { return TypeCast }

func (c *Cast) text(dst *strings.Builder) {
	if c.Try {
		dst.WriteString("TRY_")
	}
	dst.WriteString("CAST(")
	c.Child.text(dst)
	dst.WriteString(" AS ")
	dst.WriteString(c.Target)
	dst.WriteByte(')')
}

func (c *Cast) Equals(x Node) bool {
	xc, ok := x.(*Cast)
	return ok && c.Try == xc.Try && identEqual(c.Target, xc.Target) && Equal(c.Child, xc.Child)
}

func (c *Cast) Hash() uint64 {
	h := newHasher(c)
	h.bool(c.Try)
	h.ident(c.Target)
	h.child(c.Child)
	return h.sum()
}

func (c *Cast) Copy() Node {
	return &Cast{aliased: c.aliased, Child: Copy(c.Child), Target: c.Target, Try: c.Try}
}

func (c *Cast) setType(t ExprType) error { return checkFixedType(c, t) }

func (c *Cast) writeFields(w *fieldio.Writer) {
	writeChild(w, fieldBase, c.Child)
	w.WriteString(fieldBase+1, c.Target)
	if c.Try {
		w.WriteBool(fieldBase+2, true)
	}
}

func (c *Cast) readFields(r *fieldio.Reader) (err error) {
	if c.Child, err = readChild(r, fieldBase); err != nil {
		return err
	}
	if c.Target, err = r.String(fieldBase + 1); err != nil {
		return err
	}
	c.Try, err = r.OptionalBool(fieldBase+2, false)
	return err
}

func (c *Cast) encode(w *ionWriter) {
	w.node("child", c.Child)
	w.string("target", c.Target)
	if c.Try {
		w.bool("try", true)
	}
}

func (c *Cast) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "child":
		c.Child, err = r.node()
	case "target":
		c.Target, err = r.string()
	case "try":
		c.Try, err = r.bool()
	default:
		return errUnexpectedField
	}
	return err
}

func (c *Cast) check() error {
	if c.Child == nil {
		return missing(c.Class(), "child")
	}
	if c.Target == "" {
		return missing(c.Class(), "target")
	}
	return nil
}

func (c *Cast) walk(v Visitor) { Walk(v, c.Child) }

func (c *Cast) rewrite(r Rewriter) Node {
	c.Child = Rewrite(r, c.Child)
	return c
}

// CaseCheck is one 'WHEN expr THEN expr'
// limb of a CASE expression.
type CaseCheck struct {
	When, Then Node
}

// Case is a CASE expression.
//
// A searched CASE has a nil Operand and each
// When is a condition. A simple CASE
// ('CASE x WHEN 1 THEN ...') compares Operand
// against each When in turn.
type Case struct {
	aliased
	Operand Node
	Checks  []CaseCheck
	// Else is nil if there is no ELSE limb
	Else Node
}

func (c *Case) Class() Class   { return ClassCase }
func (c *Case) Type() ExprType { return TypeCase }

func (c *Case) text(dst *strings.Builder) {
	dst.WriteString("CASE")
	if c.Operand != nil {
		dst.WriteByte(' ')
		c.Operand.text(dst)
	}
	for i := range c.Checks {
		dst.WriteString(" WHEN ")
		c.Checks[i].When.text(dst)
		dst.WriteString(" THEN ")
		c.Checks[i].Then.text(dst)
	}
	if c.Else != nil {
		dst.WriteString(" ELSE ")
		c.Else.text(dst)
	}
	dst.WriteString(" END")
}

func (c *Case) Equals(x Node) bool {
	xc, ok := x.(*Case)
	if !ok {
		return false
	}
	return slices.EqualFunc(c.Checks, xc.Checks, func(a, b CaseCheck) bool {
		return Equal(a.When, b.When) && Equal(a.Then, b.Then)
	}) && Equal(c.Else, xc.Else) && Equal(c.Operand, xc.Operand)
}

func (c *Case) Hash() uint64 {
	h := newHasher(c)
	h.uint(uint64(len(c.Checks)))
	for i := range c.Checks {
		h.child(c.Checks[i].When)
		h.child(c.Checks[i].Then)
	}
	h.child(c.Else)
	h.child(c.Operand)
	return h.sum()
}

func (c *Case) Copy() Node {
	out := &Case{aliased: c.aliased, Operand: Copy(c.Operand), Else: Copy(c.Else)}
	if c.Checks != nil {
		out.Checks = make([]CaseCheck, len(c.Checks))
		for i := range c.Checks {
			out.Checks[i] = CaseCheck{When: Copy(c.Checks[i].When), Then: Copy(c.Checks[i].Then)}
		}
	}
	return out
}

func (c *Case) setType(t ExprType) error { return checkFixedType(c, t) }

func (c *Case) writeFields(w *fieldio.Writer) {
	w.WriteList(fieldBase, len(c.Checks), func(i int, w *fieldio.Writer) {
		writeChild(w, 0, c.Checks[i].When)
		writeChild(w, 1, c.Checks[i].Then)
	})
	writeChild(w, fieldBase+1, c.Else)
	writeChild(w, fieldBase+2, c.Operand)
}

func (c *Case) readFields(r *fieldio.Reader) error {
	_, err := r.OptionalList(fieldBase, func(_ int, r *fieldio.Reader) error {
		var check CaseCheck
		var err error
		if check.When, err = readChild(r, 0); err != nil {
			return err
		}
		if check.Then, err = readChild(r, 1); err != nil {
			return err
		}
		c.Checks = append(c.Checks, check)
		return nil
	})
	if err != nil {
		return err
	}
	if c.Else, err = readChild(r, fieldBase+1); err != nil {
		return err
	}
	c.Operand, err = readChild(r, fieldBase+2)
	return err
}

func (c *Case) encode(w *ionWriter) {
	w.node("operand", c.Operand)
	w.field("checks")
	w.beginList()
	for i := range c.Checks {
		w.beginStruct()
		w.node("when", c.Checks[i].When)
		w.node("then", c.Checks[i].Then)
		w.endStruct()
	}
	w.endList()
	w.node("else", c.Else)
}

func (c *Case) setfield(name string, r *ionReader) error {
	switch name {
	case "checks":
		return r.each(func() error {
			check, err := decodeCaseCheck(r)
			c.Checks = append(c.Checks, check)
			return err
		})
	case "else":
		var err error
		c.Else, err = r.node()
		return err
	case "operand":
		var err error
		c.Operand, err = r.node()
		return err
	default:
		return errUnexpectedField
	}
}

func decodeCaseCheck(r *ionReader) (CaseCheck, error) {
	var out CaseCheck
	if err := r.notNull(ion.StructType); err != nil {
		return out, err
	}
	if err := r.r.StepIn(); err != nil {
		return out, err
	}
	for r.r.Next() {
		name, ok, err := r.fieldName()
		if err != nil {
			return out, err
		}
		switch {
		case !ok:
		case name == "when":
			out.When, err = r.node()
		case name == "then":
			out.Then, err = r.node()
		}
		if err != nil {
			return out, err
		}
	}
	if err := r.r.Err(); err != nil {
		return out, err
	}
	return out, r.r.StepOut()
}

func (c *Case) check() error {
	if len(c.Checks) == 0 {
		return missing(c.Class(), "checks")
	}
	for i := range c.Checks {
		if c.Checks[i].When == nil {
			return missing(c.Class(), "when")
		}
		if c.Checks[i].Then == nil {
			return missing(c.Class(), "then")
		}
	}
	return nil
}

func (c *Case) walk(v Visitor) {
	if c.Operand != nil {
		Walk(v, c.Operand)
	}
	for i := range c.Checks {
		Walk(v, c.Checks[i].When)
		Walk(v, c.Checks[i].Then)
	}
	if c.Else != nil {
		Walk(v, c.Else)
	}
}

func (c *Case) rewrite(r Rewriter) Node {
	c.Operand = Rewrite(r, c.Operand)
	for i := range c.Checks {
		c.Checks[i].When = Rewrite(r, c.Checks[i].When)
		c.Checks[i].Then = Rewrite(r, c.Checks[i].Then)
	}
	c.Else = Rewrite(r, c.Else)
	return c
}

// Collate is 'child COLLATE collation'.
type Collate struct {
	aliased
	Child     Node
	Collation string
}

func (c *Collate) Class() Class   { return ClassCollate }
func (c *Collate) Type() ExprType { return TypeCollate }

func (c *Collate) text(dst *strings.Builder) {
	dst.WriteByte('(')
	c.Child.text(dst)
	dst.WriteString(" COLLATE ")
	quoteID(dst, c.Collation)
	dst.WriteByte(')')
}

func (c *Collate) Equals(x Node) bool {
	xc, ok := x.(*Collate)
	return ok && identEqual(c.Collation, xc.Collation) && Equal(c.Child, xc.Child)
}

func (c *Collate) Hash() uint64 {
	h := newHasher(c)
	h.ident(c.Collation)
	h.child(c.Child)
	return h.sum()
}

func (c *Collate) Copy() Node {
	return &Collate{aliased: c.aliased, Child: Copy(c.Child), Collation: c.Collation}
}

func (c *Collate) setType(t ExprType) error { return checkFixedType(c, t) }

func (c *Collate) writeFields(w *fieldio.Writer) {
	writeChild(w, fieldBase, c.Child)
	w.WriteString(fieldBase+1, c.Collation)
}

func (c *Collate) readFields(r *fieldio.Reader) (err error) {
	if c.Child, err = readChild(r, fieldBase); err != nil {
		return err
	}
	c.Collation, err = r.String(fieldBase + 1)
	return err
}

func (c *Collate) encode(w *ionWriter) {
	w.node("child", c.Child)
	w.string("collation", c.Collation)
}

func (c *Collate) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "child":
		c.Child, err = r.node()
	case "collation":
		c.Collation, err = r.string()
	default:
		return errUnexpectedField
	}
	return err
}

func (c *Collate) check() error {
	if c.Child == nil {
		return missing(c.Class(), "child")
	}
	if c.Collation == "" {
		return missing(c.Class(), "collation")
	}
	return nil
}

func (c *Collate) walk(v Visitor) { Walk(v, c.Child) }

func (c *Collate) rewrite(r Rewriter) Node {
	c.Child = Rewrite(r, c.Child)
	return c
}
