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
	"errors"
	"testing"
)

func TestLambdaState(t *testing.T) {
	body := Add(Column("x"), Int(1))
	l := NewLambda(Column("x"), body)
	if l.Resolved() {
		t.Fatal("new lambda is resolved")
	}
	if l.Class() != ClassLambda || l.Type() != TypeLambda {
		t.Fatalf("class %s type %s", l.Class(), l.Type())
	}
	lhs, err := l.LHS()
	if err != nil {
		t.Fatal(err)
	}
	if !lhs.Equals(Column("x")) {
		t.Fatalf("lhs is %s", ToString(lhs))
	}
	if _, err := l.Params(); !errors.Is(err, ErrLambdaState) {
		t.Fatalf("Params on unresolved lambda: %v", err)
	}
	if l.Body() != body {
		t.Fatal("body changed identity")
	}

	if err := l.Resolve(nil); !errors.Is(err, ErrLambdaState) {
		t.Fatalf("Resolve(nil): %v", err)
	}
	if err := l.Resolve([]Node{Column("x"), nil}); !errors.Is(err, ErrLambdaState) {
		t.Fatalf("Resolve with nil param: %v", err)
	}
	if l.Resolved() {
		t.Fatal("failed Resolve changed state")
	}
	if err := l.Resolve([]Node{lhs}); err != nil {
		t.Fatal(err)
	}
	if !l.Resolved() {
		t.Fatal("not resolved after Resolve")
	}
	params, err := l.Params()
	if err != nil {
		t.Fatal(err)
	}
	if len(params) != 1 || !params[0].Equals(Column("x")) {
		t.Fatalf("unexpected params %v", params)
	}
	if _, err := l.LHS(); !errors.Is(err, ErrLambdaState) {
		t.Fatalf("LHS on resolved lambda: %v", err)
	}
	if err := l.Resolve([]Node{Column("y")}); !errors.Is(err, ErrLambdaState) {
		t.Fatalf("second Resolve: %v", err)
	}
	if got := ToString(l); got != "x -> (x + 1)" {
		t.Fatalf("got %q", got)
	}
	want := NewLambdaParams([]Node{Column("x")}, Add(Column("x"), Int(1)))
	if !l.Equals(want) || l.Hash() != want.Hash() {
		t.Fatal("resolved lambda not equal to one built resolved")
	}
}

func TestLambdaConstructorPanics(t *testing.T) {
	testcases := []struct {
		name string
		fn   func()
	}{
		{"nil lhs", func() { NewLambda(nil, Int(1)) }},
		{"nil body", func() { NewLambda(Column("x"), nil) }},
		{"nil params body", func() { NewLambdaParams([]Node{Column("x")}, nil) }},
		{"empty params", func() { NewLambdaParams(nil, Int(1)) }},
	}
	for i := range testcases {
		tc := &testcases[i]
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("no panic")
				}
			}()
			tc.fn()
		})
	}
}

func TestLambdaCopyState(t *testing.T) {
	l := NewLambda(Column("x"), Column("x"))
	c := l.Copy().(*Lambda)
	if err := c.Resolve([]Node{Column("x")}); err != nil {
		t.Fatal(err)
	}
	if l.Resolved() {
		t.Fatal("resolving a copy resolved the original")
	}
	if l.Equals(c) {
		t.Fatal("lambdas in different states compare equal")
	}
}

type renamer struct {
	from, to string
}

func (r *renamer) Walk(n Node) Rewriter { return r }

func (r *renamer) Rewrite(n Node) Node {
	if c, ok := n.(*ColumnRef); ok && !c.IsQualified() && identEqual(c.Name(), r.from) {
		return Column(r.to)
	}
	return n
}

func TestLambdaRewrite(t *testing.T) {
	testcases := []struct {
		in   Node
		want string
	}{
		{NewLambda(Column("x"), Add(Column("x"), Int(1))), "y -> (y + 1)"},
		{NewLambdaParams([]Node{Column("a"), Column("x")}, Column("x")), "(a, y) -> y"},
		{Call("f", NewLambda(Row(Column("X"), Column("b")), Column("b"))), "f((y, b) -> b)"},
	}
	for i := range testcases {
		out := Rewrite(&renamer{from: "x", to: "y"}, testcases[i].in)
		if got := ToString(out); got != testcases[i].want {
			t.Errorf("case %d: got %q, want %q", i, got, testcases[i].want)
		}
	}
}

func TestLambdaWalk(t *testing.T) {
	l := NewLambdaParams([]Node{Column("a"), Column("b")}, Add(Column("a"), Column("b")))
	var classes []Class
	Walk(WalkFunc(func(n Node) bool {
		classes = append(classes, n.Class())
		return true
	}), l)
	want := []Class{ClassLambda, ClassColumnRef, ClassColumnRef, ClassOperator, ClassColumnRef, ClassColumnRef}
	if len(classes) != len(want) {
		t.Fatalf("visited %v", classes)
	}
	for i := range want {
		if classes[i] != want[i] {
			t.Fatalf("visited %v", classes)
		}
	}
}
