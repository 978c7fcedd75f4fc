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
	"fmt"
	"strings"

	"github.com/SnellerInc/pexpr/fieldio"

	"golang.org/x/exp/slices"
)

// Lambda is an expression of the form 'lhs -> expr'.
//
// When the grammar produces a Lambda it cannot
// tell whether the left-hand side is a list of
// parameter names (x -> x + 1) or an arbitrary
// expression ('->' is also the JSON accessor
// operator, as in j -> '$.field'). The node holds
// the raw left-hand side until a binder decides:
// either it calls Resolve with the parameter list,
// or it reinterprets the node as an Arrow operator.
// The Class of a Lambda is always ClassLambda.
type Lambda struct {
	aliased
	side lambdaSide
	expr Node
}

// lambdaSide is either lambdaLHS or lambdaParams
type lambdaSide interface {
	lambdaSide()
}

type lambdaLHS struct{ node Node }

type lambdaParams []Node

func (lambdaLHS) lambdaSide()    {}
func (lambdaParams) lambdaSide() {}

// NewLambda produces 'lhs -> body' with an
// unresolved left-hand side. It takes
// ownership of lhs and body, which must not be nil.
func NewLambda(lhs, body Node) *Lambda {
	if lhs == nil || body == nil {
		panic("expr.NewLambda: nil argument")
	}
	return &Lambda{side: lambdaLHS{lhs}, expr: body}
}

// NewLambdaParams produces '(params...) -> body'
// with the parameter list already resolved.
// It takes ownership of params and body;
// params must be non-empty and body non-nil.
func NewLambdaParams(params []Node, body Node) *Lambda {
	if body == nil {
		panic("expr.NewLambdaParams: nil body")
	}
	if err := checkParams(params); err != nil {
		panic("expr.NewLambdaParams: " + err.Error())
	}
	return &Lambda{side: lambdaParams(params), expr: body}
}

func checkParams(params []Node) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: empty parameter list", ErrLambdaState)
	}
	for i := range params {
		if params[i] == nil {
			return fmt.Errorf("%w: nil parameter %d", ErrLambdaState, i)
		}
	}
	return nil
}

func (l *Lambda) Class() Class   { return ClassLambda }
func (l *Lambda) Type() ExprType { return TypeLambda }

// Resolved returns whether the parameter
// list has been populated.
func (l *Lambda) Resolved() bool {
	_, ok := l.side.(lambdaParams)
	return ok
}

// LHS returns the unresolved left-hand side.
// It returns ErrLambdaState if the lambda
// has already been resolved.
func (l *Lambda) LHS() (Node, error) {
	lhs, ok := l.side.(lambdaLHS)
	if !ok {
		return nil, fmt.Errorf("%w: left-hand side requested from resolved lambda", ErrLambdaState)
	}
	return lhs.node, nil
}

// Params returns the resolved parameter list.
// It returns ErrLambdaState if the lambda
// has not been resolved.
func (l *Lambda) Params() ([]Node, error) {
	params, ok := l.side.(lambdaParams)
	if !ok {
		return nil, fmt.Errorf("%w: parameters requested from unresolved lambda", ErrLambdaState)
	}
	return params, nil
}

// Body returns the expression on the
// right-hand side of the arrow.
func (l *Lambda) Body() Node { return l.expr }

// Resolve replaces the left-hand side
// with the given parameter list. The lambda
// takes ownership of params and drops its
// left-hand side. Resolve may only be
// called once; later calls, an empty list,
// or a nil parameter yield ErrLambdaState.
func (l *Lambda) Resolve(params []Node) error {
	if l.Resolved() {
		return fmt.Errorf("%w: lambda resolved twice", ErrLambdaState)
	}
	if err := checkParams(params); err != nil {
		return err
	}
	l.side = lambdaParams(params)
	return nil
}

func (l *Lambda) text(dst *strings.Builder) {
	switch s := l.side.(type) {
	case lambdaLHS:
		s.node.text(dst)
	case lambdaParams:
		if len(s) == 1 {
			s[0].text(dst)
		} else {
			dst.WriteByte('(')
			textList(dst, s)
			dst.WriteByte(')')
		}
	default:
		dst.WriteString("<nil>")
	}
	dst.WriteString(" -> ")
	if l.expr == nil {
		dst.WriteString("<nil>")
		return
	}
	l.expr.text(dst)
}

func (l *Lambda) Equals(x Node) bool {
	xl, ok := x.(*Lambda)
	if !ok || !Equal(l.expr, xl.expr) {
		return false
	}
	switch s := l.side.(type) {
	case lambdaLHS:
		xs, ok := xl.side.(lambdaLHS)
		return ok && Equal(s.node, xs.node)
	case lambdaParams:
		xs, ok := xl.side.(lambdaParams)
		return ok && slices.EqualFunc(s, xs, Equal)
	default:
		return xl.side == nil
	}
}

func (l *Lambda) Hash() uint64 {
	h := newHasher(l)
	switch s := l.side.(type) {
	case lambdaLHS:
		h.byte(1)
		h.child(s.node)
	case lambdaParams:
		h.byte(2)
		h.children(s)
	default:
		h.byte(0)
	}
	h.child(l.expr)
	return h.sum()
}

func (l *Lambda) Copy() Node {
	out := &Lambda{aliased: l.aliased, expr: Copy(l.expr)}
	switch s := l.side.(type) {
	case lambdaLHS:
		out.side = lambdaLHS{Copy(s.node)}
	case lambdaParams:
		out.side = lambdaParams(copyAll(s))
	}
	return out
}

func (l *Lambda) setType(t ExprType) error { return checkFixedType(l, t) }

// positional fields
const (
	lambdaFieldLHS    = fieldBase
	lambdaFieldParams = fieldBase + 1
	lambdaFieldExpr   = fieldBase + 2
)

func (l *Lambda) writeFields(w *fieldio.Writer) {
	switch s := l.side.(type) {
	case lambdaLHS:
		writeChild(w, lambdaFieldLHS, s.node)
	case lambdaParams:
		writeChildren(w, lambdaFieldParams, s)
	}
	writeChild(w, lambdaFieldExpr, l.expr)
}

func (l *Lambda) readFields(r *fieldio.Reader) error {
	lhs, err := readChild(r, lambdaFieldLHS)
	if err != nil {
		return err
	}
	params, err := readChildren(r, lambdaFieldParams)
	if err != nil {
		return err
	}
	if lhs != nil && params != nil {
		return malformed("%s: both lhs and params are present", l.Class())
	}
	if lhs != nil {
		l.side = lambdaLHS{lhs}
	} else if params != nil {
		l.side = lambdaParams(params)
	}
	l.expr, err = readChild(r, lambdaFieldExpr)
	return err
}

func (l *Lambda) encode(w *ionWriter) {
	switch s := l.side.(type) {
	case lambdaLHS:
		w.node("lhs", s.node)
	case lambdaParams:
		w.nodes("params", s)
	}
	w.node("expr", l.expr)
}

func (l *Lambda) setfield(name string, r *ionReader) error {
	switch name {
	case "lhs", "params":
		if l.side != nil {
			return malformed("%s: both lhs and params are present", l.Class())
		}
		if name == "lhs" {
			lhs, err := r.node()
			if err != nil {
				return err
			}
			l.side = lambdaLHS{lhs}
			return nil
		}
		params, err := r.nodes()
		if err != nil {
			return err
		}
		if len(params) > 0 {
			l.side = lambdaParams(params)
		}
		return nil
	case "expr":
		var err error
		l.expr, err = r.node()
		return err
	default:
		return errUnexpectedField
	}
}

func (l *Lambda) check() error {
	if l.side == nil {
		return malformed("%s: neither lhs nor params is present", l.Class())
	}
	if l.expr == nil {
		return missing(l.Class(), "expr")
	}
	return nil
}

func (l *Lambda) walk(v Visitor) {
	switch s := l.side.(type) {
	case lambdaLHS:
		Walk(v, s.node)
	case lambdaParams:
		walkAll(v, s)
	}
	Walk(v, l.expr)
}

func (l *Lambda) rewrite(r Rewriter) Node {
	switch s := l.side.(type) {
	case lambdaLHS:
		l.side = lambdaLHS{Rewrite(r, s.node)}
	case lambdaParams:
		rewriteAll(r, s)
	}
	l.expr = Rewrite(r, l.expr)
	return l
}
