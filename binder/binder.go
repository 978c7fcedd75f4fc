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

// Package binder implements the lambda
// resolution step that follows parsing.
//
// The grammar produces every 'lhs -> expr'
// as an *expr.Lambda whose left-hand side
// has not been interpreted. The binder decides
// whether the left-hand side is a parameter
// list (a bare name, or a parenthesized list of
// bare names) and, depending on the Mode, either
// resolves the lambda or rewrites it into the
// JSON-style '->' accessor operator.
package binder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SnellerInc/pexpr/expr"
)

var (
	// ErrNotParamList is returned when a lambda
	// must be resolved but its left-hand side
	// is not a list of parameter names.
	ErrNotParamList = errors.New("lambda left-hand side is not a parameter list")
	// ErrDuplicateParam is returned when a
	// parameter name appears twice in one lambda.
	ErrDuplicateParam = errors.New("duplicate lambda parameter")
)

// Mode determines how Bind treats '->'.
type Mode int

const (
	// LambdaParams requires every lambda
	// to have a parameter list.
	LambdaParams Mode = iota
	// ArrowAccessor keeps a lambda only where
	// it is a direct argument of a function call
	// and its left-hand side is a parameter list;
	// every other unresolved lambda becomes the
	// '->' accessor operator. Lambdas the parser
	// already resolved, such as '(a, b) -> e',
	// are kept wherever they appear.
	ArrowAccessor
)

func (m Mode) String() string {
	switch m {
	case LambdaParams:
		return "lambda"
	case ArrowAccessor:
		return "arrow"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "lambda":
		return LambdaParams, true
	case "arrow":
		return ArrowAccessor, true
	}
	return 0, false
}

// params returns the parameter list
// represented by lhs, if it is one
func params(lhs expr.Node) ([]expr.Node, bool) {
	switch n := lhs.(type) {
	case *expr.ColumnRef:
		if n.IsQualified() {
			return nil, false
		}
		return []expr.Node{n}, true
	case *expr.Function:
		if !n.IsRow() || len(n.Args) == 0 {
			return nil, false
		}
		for _, arg := range n.Args {
			if c, ok := arg.(*expr.ColumnRef); !ok || c.IsQualified() {
				return nil, false
			}
		}
		return n.Args, true
	}
	return nil, false
}

func checkDuplicates(lst []expr.Node) error {
	seen := make(map[string]struct{}, len(lst))
	for _, p := range lst {
		c, ok := p.(*expr.ColumnRef)
		if !ok {
			continue
		}
		name := strings.ToLower(c.Name())
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w %q", ErrDuplicateParam, c.Name())
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ResolveLambda populates the parameter list of l
// from its left-hand side. It returns ErrNotParamList
// if the left-hand side is not a bare name or a
// parenthesized list of bare names, and
// expr.ErrLambdaState if l is already resolved.
func ResolveLambda(l *expr.Lambda) error {
	lhs, err := l.LHS()
	if err != nil {
		return err
	}
	lst, ok := params(lhs)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotParamList, expr.ToString(lhs))
	}
	if err := checkDuplicates(lst); err != nil {
		return err
	}
	return l.Resolve(lst)
}

// bindState is shared by every
// binder created during one Bind call
type bindState struct {
	mode Mode
	err  error
}

// binder rewrites the children of one node;
// call is that node when it is a function
// call, so that its arguments can be told
// apart from other positions
type binder struct {
	st   *bindState
	call *expr.Function
}

func (b *binder) Walk(n expr.Node) expr.Rewriter {
	if b.st.err != nil {
		return nil
	}
	child := &binder{st: b.st}
	if f, ok := n.(*expr.Function); ok && !f.IsRow() {
		child.call = f
	}
	return child
}

func (b *binder) isArg(n expr.Node) bool {
	if b.call == nil {
		return false
	}
	for _, arg := range b.call.Args {
		if arg == n {
			return true
		}
	}
	return false
}

func (b *binder) fail(l *expr.Lambda, err error) {
	b.st.err = fmt.Errorf("%s: %w", expr.ToString(l), err)
}

func (b *binder) Rewrite(n expr.Node) expr.Node {
	l, ok := n.(*expr.Lambda)
	if !ok || b.st.err != nil {
		return n
	}
	if l.Resolved() {
		lst, err := l.Params()
		if err == nil {
			err = checkDuplicates(lst)
		}
		if err != nil {
			b.fail(l, err)
		}
		return l
	}
	lhs, err := l.LHS()
	if err != nil {
		b.fail(l, err)
		return l
	}
	// only a function argument can be a lambda
	// when '->' is also the accessor operator
	if b.st.mode == ArrowAccessor {
		if _, ok := params(lhs); !ok || !b.isArg(l) {
			op := expr.Arrow(lhs, l.Body())
			op.SetAlias(l.Alias())
			return op
		}
	}
	if err := ResolveLambda(l); err != nil {
		b.fail(l, err)
	}
	return l
}

// Bind resolves every lambda in the tree rooted
// at n according to mode and returns the new root.
// The tree is modified in place; on error it may
// be left partially bound.
func Bind(n expr.Node, mode Mode) (expr.Node, error) {
	st := &bindState{mode: mode}
	out := expr.Rewrite(&binder{st: st}, n)
	if st.err != nil {
		return nil, fmt.Errorf("binder.Bind: %w", st.err)
	}
	return out, nil
}
