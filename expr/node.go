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
)

// Visitor is an interface that must
// be satisfied by the argument to Visit.
//
// A Visitor's Visit method is invoked for each node encountered by Walk. If
// the result visitor w is not nil, Walk visits each of the children of node
// with the visitor w, followed by a call of w.Visit(nil).
//
// (see also: ast.Visitor)
type Visitor interface {
	Visit(Node) Visitor
}

// Rewriter accepts a Node and returns
// a new node (or just its argument)
type Rewriter interface {
	// Rewrite is applied to nodes
	// in depth-first order, and each
	// node is re-written to use the
	// returned value.
	Rewrite(Node) Node

	// Walk is called during node traversal
	// and the returned Rewriter is used for
	// all the children of Node.
	// If the returned rewriter is nil,
	// then traversal does not proceed past Node.
	Walk(Node) Rewriter
}

type nonleaf interface {
	rewrite(r Rewriter) Node
}

// Rewrite recursively applies a Rewriter in depth-first order
func Rewrite(r Rewriter, n Node) Node {
	if n == nil {
		return nil
	}
	nl, ok := n.(nonleaf)
	if ok {
		rc := r.Walk(n)
		if rc != nil {
			n = nl.rewrite(rc)
		}
	}
	n = r.Rewrite(n)
	return n
}

// Walk traverses an AST in depth-first order: It starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w for
// each of the non-nil children of node, followed by a call of w.Visit(nil).
//
// (see also: ast.Walk)
func Walk(v Visitor, n Node) {
	w := v.Visit(n)
	if w != nil {
		n.walk(w)
		w.Visit(nil)
	}
}

// WalkFunc is a Visitor that calls
// itself on every node until it returns false.
type WalkFunc func(Node) bool

func (w WalkFunc) Visit(n Node) Visitor {
	if n == nil || !w(n) {
		return nil
	}
	return w
}

type Printable interface {
	// text should write the textual representation
	// of this node to dst
	text(dst *strings.Builder)
}

// ToString returns the string
// representation of this AST node
// and its children in approximately
// SQL syntax
func ToString(p Printable) string {
	if p == nil {
		return "<nil>"
	}
	var dst strings.Builder
	p.text(&dst)
	return dst.String()
}

// Node is a parsed expression AST node.
//
// A tree of Nodes is strictly owned: every
// node owns its children and no node appears
// twice in the same tree. Constructors take
// ownership of the nodes passed to them.
type Node interface {
	Printable

	// Class returns the kind of this node.
	Class() Class
	// Type returns the refinement of Class,
	// e.g. which operator an *Operator applies.
	Type() ExprType

	// Alias returns the alias given to this
	// expression in the source, if any.
	Alias() string
	SetAlias(string)

	// Equals returns whether this node
	// is structurally equal to another node.
	// The alias is not part of the comparison.
	Equals(Node) bool
	// Hash returns a hash of exactly the
	// attributes compared by Equals.
	Hash() uint64
	// Copy returns a deep copy of the node
	// that shares nothing with the original.
	Copy() Node

	// setType is called by the decoders with
	// the persisted ExprType before any fields are set
	setType(ExprType) error
	// writeFields and readFields implement the
	// positional encoding of the node-specific fields;
	// see binary.go for the field numbering
	writeFields(w *fieldio.Writer)
	readFields(r *fieldio.Reader) error
	// encode and setfield implement the
	// self-describing encoding; see ion.go
	encode(w *ionWriter)
	setfield(name string, r *ionReader) error
	// check validates a freshly-decoded node
	check() error

	walk(Visitor)
}

// Equal returns whether a and b are equivalent.
// a or b may be nil.
func Equal(a, b Node) bool {
	if a == nil {
		return b == nil
	}
	return b != nil && a.Equals(b)
}

// Copy returns a deep copy of e.
// Copy(nil) returns nil.
func Copy(e Node) Node {
	if e == nil {
		return nil
	}
	return e.Copy()
}

func copyAll(lst []Node) []Node {
	if lst == nil {
		return nil
	}
	out := make([]Node, len(lst))
	for i := range lst {
		out[i] = Copy(lst[i])
	}
	return out
}

func walkAll(v Visitor, lst []Node) {
	for i := range lst {
		if lst[i] != nil {
			Walk(v, lst[i])
		}
	}
}

func rewriteAll(r Rewriter, lst []Node) {
	for i := range lst {
		lst[i] = Rewrite(r, lst[i])
	}
}

// aliased is embedded in every node
// to carry the optional source alias
type aliased struct {
	alias string
}

func (a *aliased) Alias() string     { return a.alias }
func (a *aliased) SetAlias(s string) { a.alias = s }

// checkFixedType is the setType implementation
// for nodes whose ExprType is implied by their Class
func checkFixedType(n Node, t ExprType) error {
	if t != n.Type() {
		return malformed("%s: unexpected expression type %s", n.Class(), t)
	}
	return nil
}

// identEqual compares SQL identifiers,
// which are case-insensitive
func identEqual(a, b string) bool {
	return a == b || strings.ToLower(a) == strings.ToLower(b)
}

func identsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !identEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
