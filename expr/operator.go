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

	"golang.org/x/exp/slices"
)

// Operator is the application of a built-in
// operator (arithmetic, NOT, IS [NOT] NULL,
// or the '->' accessor) to its arguments.
type Operator struct {
	aliased
	Op   ExprType
	Args []Node
}

// NewOperator produces op(args...).
func NewOperator(op ExprType, args ...Node) *Operator {
	return &Operator{Op: op, Args: args}
}

func Add(left, right Node) *Operator { return NewOperator(TypeAdd, left, right) }
func Sub(left, right Node) *Operator { return NewOperator(TypeSubtract, left, right) }
func Mul(left, right Node) *Operator { return NewOperator(TypeMultiply, left, right) }
func Div(left, right Node) *Operator { return NewOperator(TypeDivide, left, right) }
func Mod(left, right Node) *Operator { return NewOperator(TypeModulo, left, right) }
func Neg(child Node) *Operator       { return NewOperator(TypeNegate, child) }
func Not(child Node) *Operator       { return NewOperator(TypeNot, child) }

// Arrow produces the JSON-style 'left -> right'
// accessor; see also Lambda.
func Arrow(left, right Node) *Operator { return NewOperator(TypeArrow, left, right) }

// IsNull produces 'e IS NULL'.
func IsNull(e Node) *Operator { return NewOperator(TypeIsNull, e) }

// IsNotNull produces 'e IS NOT NULL'.
func IsNotNull(e Node) *Operator { return NewOperator(TypeIsNotNull, e) }

func (o *Operator) Class() Class   { return ClassOperator }
func (o *Operator) Type() ExprType { return o.Op }

func (o *Operator) arity() int {
	switch o.Op {
	case TypeNegate, TypeNot, TypeIsNull, TypeIsNotNull:
		return 1
	default:
		return 2
	}
}

func (o *Operator) text(dst *strings.Builder) {
	if len(o.Args) != o.arity() {
		// not a well-formed operator;
		// render it like a function call
		dst.WriteString(o.Op.String())
		dst.WriteByte('(')
		textList(dst, o.Args)
		dst.WriteByte(')')
		return
	}
	dst.WriteByte('(')
	switch o.Op {
	case TypeNegate:
		dst.WriteByte('-')
		o.Args[0].text(dst)
	case TypeNot:
		dst.WriteString("NOT ")
		o.Args[0].text(dst)
	case TypeIsNull, TypeIsNotNull:
		o.Args[0].text(dst)
		dst.WriteByte(' ')
		dst.WriteString(o.Op.Symbol())
	default:
		o.Args[0].text(dst)
		dst.WriteByte(' ')
		dst.WriteString(o.Op.Symbol())
		dst.WriteByte(' ')
		o.Args[1].text(dst)
	}
	dst.WriteByte(')')
}

func (o *Operator) Equals(x Node) bool {
	xo, ok := x.(*Operator)
	return ok && xo.Op == o.Op && slices.EqualFunc(o.Args, xo.Args, Equal)
}

func (o *Operator) Hash() uint64 {
	h := newHasher(o)
	h.children(o.Args)
	return h.sum()
}

func (o *Operator) Copy() Node {
	return &Operator{aliased: o.aliased, Op: o.Op, Args: copyAll(o.Args)}
}

func (o *Operator) setType(t ExprType) error {
	if t.Class() != ClassOperator {
		return malformed("%s: unexpected expression type %s", o.Class(), t)
	}
	o.Op = t
	return nil
}

func (o *Operator) writeFields(w *fieldio.Writer) {
	writeChildren(w, fieldBase, o.Args)
}

func (o *Operator) readFields(r *fieldio.Reader) (err error) {
	o.Args, err = readChildren(r, fieldBase)
	return err
}

func (o *Operator) encode(w *ionWriter) { w.nodes("args", o.Args) }

func (o *Operator) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "args":
		o.Args, err = r.nodes()
	default:
		return errUnexpectedField
	}
	return err
}

func (o *Operator) check() error {
	if len(o.Args) != o.arity() {
		return malformed("%s %s: expected %d arguments, found %d", o.Class(), o.Op, o.arity(), len(o.Args))
	}
	return nil
}

func (o *Operator) walk(v Visitor) { walkAll(v, o.Args) }

func (o *Operator) rewrite(r Rewriter) Node {
	rewriteAll(r, o.Args)
	return o
}

// Comparison is a binary comparison.
type Comparison struct {
	aliased
	Op          ExprType
	Left, Right Node
}

// Compare produces 'left op right'.
func Compare(op ExprType, left, right Node) *Comparison {
	return &Comparison{Op: op, Left: left, Right: right}
}

func (c *Comparison) Class() Class   { return ClassComparison }
func (c *Comparison) Type() ExprType { return c.Op }

func (c *Comparison) text(dst *strings.Builder) {
	dst.WriteByte('(')
	c.Left.text(dst)
	dst.WriteByte(' ')
	dst.WriteString(c.Op.Symbol())
	dst.WriteByte(' ')
	c.Right.text(dst)
	dst.WriteByte(')')
}

func (c *Comparison) Equals(x Node) bool {
	xc, ok := x.(*Comparison)
	return ok && xc.Op == c.Op && Equal(c.Left, xc.Left) && Equal(c.Right, xc.Right)
}

func (c *Comparison) Hash() uint64 {
	h := newHasher(c)
	h.child(c.Left)
	h.child(c.Right)
	return h.sum()
}

func (c *Comparison) Copy() Node {
	return &Comparison{aliased: c.aliased, Op: c.Op, Left: Copy(c.Left), Right: Copy(c.Right)}
}

func (c *Comparison) setType(t ExprType) error {
	if t.Class() != ClassComparison {
		return malformed("%s: unexpected expression type %s", c.Class(), t)
	}
	c.Op = t
	return nil
}

func (c *Comparison) writeFields(w *fieldio.Writer) {
	writeChild(w, fieldBase, c.Left)
	writeChild(w, fieldBase+1, c.Right)
}

func (c *Comparison) readFields(r *fieldio.Reader) (err error) {
	if c.Left, err = readChild(r, fieldBase); err != nil {
		return err
	}
	c.Right, err = readChild(r, fieldBase+1)
	return err
}

func (c *Comparison) encode(w *ionWriter) {
	w.node("left", c.Left)
	w.node("right", c.Right)
}

func (c *Comparison) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "left":
		c.Left, err = r.node()
	case "right":
		c.Right, err = r.node()
	default:
		return errUnexpectedField
	}
	return err
}

func (c *Comparison) check() error {
	if c.Left == nil {
		return missing(c.Class(), "left")
	}
	if c.Right == nil {
		return missing(c.Class(), "right")
	}
	return nil
}

func (c *Comparison) walk(v Visitor) {
	Walk(v, c.Left)
	Walk(v, c.Right)
}

func (c *Comparison) rewrite(r Rewriter) Node {
	c.Left = Rewrite(r, c.Left)
	c.Right = Rewrite(r, c.Right)
	return c
}

// Conjunction is an AND or OR of
// two or more children.
type Conjunction struct {
	aliased
	Op       ExprType
	Children []Node
}

// And yields '<left> AND <right>', flattening
// nested ANDs into one conjunction.
func And(left, right Node) *Conjunction { return conjoin(TypeAnd, left, right) }

// Or yields '<left> OR <right>', flattening
// nested ORs into one conjunction.
func Or(left, right Node) *Conjunction { return conjoin(TypeOr, left, right) }

func conjoin(op ExprType, left, right Node) *Conjunction {
	c := &Conjunction{Op: op}
	for _, n := range []Node{left, right} {
		if inner, ok := n.(*Conjunction); ok && inner.Op == op && inner.alias == "" {
			c.Children = append(c.Children, inner.Children...)
		} else {
			c.Children = append(c.Children, n)
		}
	}
	return c
}

func (c *Conjunction) Class() Class   { return ClassConjunction }
func (c *Conjunction) Type() ExprType { return c.Op }

func (c *Conjunction) text(dst *strings.Builder) {
	dst.WriteByte('(')
	for i := range c.Children {
		if i > 0 {
			dst.WriteByte(' ')
			dst.WriteString(c.Op.Symbol())
			dst.WriteByte(' ')
		}
		c.Children[i].text(dst)
	}
	dst.WriteByte(')')
}

func (c *Conjunction) Equals(x Node) bool {
	xc, ok := x.(*Conjunction)
	return ok && xc.Op == c.Op && slices.EqualFunc(c.Children, xc.Children, Equal)
}

func (c *Conjunction) Hash() uint64 {
	h := newHasher(c)
	h.children(c.Children)
	return h.sum()
}

func (c *Conjunction) Copy() Node {
	return &Conjunction{aliased: c.aliased, Op: c.Op, Children: copyAll(c.Children)}
}

func (c *Conjunction) setType(t ExprType) error {
	if t.Class() != ClassConjunction {
		return malformed("%s: unexpected expression type %s", c.Class(), t)
	}
	c.Op = t
	return nil
}

func (c *Conjunction) writeFields(w *fieldio.Writer) {
	writeChildren(w, fieldBase, c.Children)
}

func (c *Conjunction) readFields(r *fieldio.Reader) (err error) {
	c.Children, err = readChildren(r, fieldBase)
	return err
}

func (c *Conjunction) encode(w *ionWriter) { w.nodes("children", c.Children) }

func (c *Conjunction) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "children":
		c.Children, err = r.nodes()
	default:
		return errUnexpectedField
	}
	return err
}

func (c *Conjunction) check() error {
	if len(c.Children) < 2 {
		return malformed("%s: expected at least 2 children, found %d", c.Class(), len(c.Children))
	}
	return nil
}

func (c *Conjunction) walk(v Visitor) { walkAll(v, c.Children) }

func (c *Conjunction) rewrite(r Rewriter) Node {
	rewriteAll(r, c.Children)
	return c
}

// Between is 'input BETWEEN lower AND upper'.
type Between struct {
	aliased
	Input, Lower, Upper Node
}

func (b *Between) Class() Class   { return ClassBetween }
func (b *Between) Type() ExprType { return TypeBetween }

func (b *Between) text(dst *strings.Builder) {
	dst.WriteByte('(')
	b.Input.text(dst)
	dst.WriteString(" BETWEEN ")
	b.Lower.text(dst)
	dst.WriteString(" AND ")
	b.Upper.text(dst)
	dst.WriteByte(')')
}

func (b *Between) Equals(x Node) bool {
	xb, ok := x.(*Between)
	return ok && Equal(b.Input, xb.Input) && Equal(b.Lower, xb.Lower) && Equal(b.Upper, xb.Upper)
}

func (b *Between) Hash() uint64 {
	h := newHasher(b)
	h.child(b.Input)
	h.child(b.Lower)
	h.child(b.Upper)
	return h.sum()
}

func (b *Between) Copy() Node {
	return &Between{aliased: b.aliased, Input: Copy(b.Input), Lower: Copy(b.Lower), Upper: Copy(b.Upper)}
}

func (b *Between) setType(t ExprType) error { return checkFixedType(b, t) }

func (b *Between) writeFields(w *fieldio.Writer) {
	writeChild(w, fieldBase, b.Input)
	writeChild(w, fieldBase+1, b.Lower)
	writeChild(w, fieldBase+2, b.Upper)
}

func (b *Between) readFields(r *fieldio.Reader) (err error) {
	if b.Input, err = readChild(r, fieldBase); err != nil {
		return err
	}
	if b.Lower, err = readChild(r, fieldBase+1); err != nil {
		return err
	}
	b.Upper, err = readChild(r, fieldBase+2)
	return err
}

func (b *Between) encode(w *ionWriter) {
	w.node("input", b.Input)
	w.node("lower", b.Lower)
	w.node("upper", b.Upper)
}

func (b *Between) setfield(name string, r *ionReader) (err error) {
	switch name {
	case "input":
		b.Input, err = r.node()
	case "lower":
		b.Lower, err = r.node()
	case "upper":
		b.Upper, err = r.node()
	default:
		return errUnexpectedField
	}
	return err
}

func (b *Between) check() error {
	switch {
	case b.Input == nil:
		return missing(b.Class(), "input")
	case b.Lower == nil:
		return missing(b.Class(), "lower")
	case b.Upper == nil:
		return missing(b.Class(), "upper")
	}
	return nil
}

func (b *Between) walk(v Visitor) {
	Walk(v, b.Input)
	Walk(v, b.Lower)
	Walk(v, b.Upper)
}

func (b *Between) rewrite(r Rewriter) Node {
	b.Input = Rewrite(r, b.Input)
	b.Lower = Rewrite(r, b.Lower)
	b.Upper = Rewrite(r, b.Upper)
	return b
}

func textList(dst *strings.Builder, lst []Node) {
	for i := range lst {
		if i > 0 {
			dst.WriteString(", ")
		}
		if lst[i] == nil {
			dst.WriteString("<nil>")
			continue
		}
		lst[i].text(dst)
	}
}
