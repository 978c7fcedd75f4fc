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
	"testing"
)

func TestEquals(t *testing.T) {
	aliased := Column("x")
	aliased.SetAlias("y")
	tests := []struct {
		in, out Node
	}{
		{Int(1), Int(1)},
		{Lit(Float(math.NaN())), Lit(Float(math.NaN()))},
		{Lit(Null{}), Lit(Null{})},
		{Str("foo"), Str("foo")},
		{Column("t", "x"), Column("T", "X")},
		{Column("x"), aliased},
		{Add(Column("x"), Int(1)), Add(Column("x"), Int(1))},
		{And(Column("x"), Column("y")), And(Column("x"), Column("y"))},
		{Call("SUM", Column("x")), Call("sum", Column("x"))},
		{Row(Column("a"), Column("b")), Row(Column("a"), Column("b"))},
		{
			NewLambda(Column("x"), Add(Column("x"), Int(1))),
			NewLambda(Column("x"), Add(Column("x"), Int(1))),
		},
		{
			NewLambdaParams([]Node{Column("a"), Column("b")}, Add(Column("a"), Column("b"))),
			NewLambdaParams([]Node{Column("a"), Column("b")}, Add(Column("a"), Column("b"))),
		},
		{&Case{Checks: []CaseCheck{{Column("x"), Int(1)}}}, &Case{Checks: []CaseCheck{{Column("x"), Int(1)}}}},
		{
			&Case{Operand: Column("y"), Checks: []CaseCheck{{Int(1), Int(2)}}},
			&Case{Operand: Column("Y"), Checks: []CaseCheck{{Int(1), Int(2)}}},
		},
		{&Star{}, &Star{}},
		{&Default{}, &Default{}},
	}

	for i := range tests {
		if !tests[i].in.Equals(tests[i].out) {
			t.Errorf("case %d: %s != %s", i, ToString(tests[i].in), ToString(tests[i].out))
		}
		// test symmetry
		if !tests[i].out.Equals(tests[i].in) {
			t.Errorf("case %d: %s != %s", i, ToString(tests[i].out), ToString(tests[i].in))
		}
		// test reflexivity
		if !tests[i].in.Equals(tests[i].in) {
			t.Errorf("case %d: %s not equal to itself", i, ToString(tests[i].in))
		}
		if tests[i].in.Hash() != tests[i].out.Hash() {
			t.Errorf("case %d: equal nodes %s and %s hash differently", i, ToString(tests[i].in), ToString(tests[i].out))
		}
	}
}

func TestNotEquals(t *testing.T) {
	body := func() Node { return Add(Column("x"), Int(1)) }
	tests := []struct {
		in, out Node
	}{
		{Int(1), Lit(Float(1))},
		{Int(1), Str("1")},
		{Lit(Null{}), Lit(Bool(false))},
		{Str("foo"), Str("FOO")},
		{Column("t", "x"), Column("x")},
		{Add(Column("x"), Int(1)), Sub(Column("x"), Int(1))},
		{Add(Column("x"), Int(1)), Add(Int(1), Column("x"))},
		{And(Column("x"), Column("y")), Or(Column("x"), Column("y"))},
		{Compare(TypeLess, Column("x"), Int(1)), Compare(TypeLessEqual, Column("x"), Int(1))},
		{Call("f", Column("x")), &Function{Name: "f", Args: []Node{Column("x")}, Distinct: true}},
		// the same text, but one side is resolved
		{NewLambda(Column("x"), body()), NewLambdaParams([]Node{Column("x")}, body())},
		{NewLambda(Column("x"), body()), NewLambda(Column("y"), body())},
		{NewLambda(Column("x"), body()), Arrow(Column("x"), body())},
		{&Cast{Child: Int(1), Target: "INTEGER"}, &Cast{Child: Int(1), Target: "INTEGER", Try: true}},
		{&Parameter{Index: 1}, &PositionalRef{Index: 1}},
		{&Star{}, &Star{Relation: "t"}},
		{
			&Case{Checks: []CaseCheck{{Int(1), Int(2)}}},
			&Case{Operand: Column("x"), Checks: []CaseCheck{{Int(1), Int(2)}}},
		},
	}
	for i := range tests {
		if tests[i].in.Equals(tests[i].out) {
			t.Errorf("case %d: %s == %s", i, ToString(tests[i].in), ToString(tests[i].out))
		}
		if tests[i].out.Equals(tests[i].in) {
			t.Errorf("case %d: %s == %s", i, ToString(tests[i].out), ToString(tests[i].in))
		}
	}
}

func TestEqualNil(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("nil != nil")
	}
	if Equal(Int(1), nil) || Equal(nil, Int(1)) {
		t.Error("nil == 1")
	}
	if Hash(nil) != 0 {
		t.Error("non-zero hash of nil")
	}
}

// Equals is an equivalence relation on
// random trees, and equal trees hash equally.
// Shallow trees are used so that distinct
// trees frequently compare equal.
func TestEqualsEquivalence(t *testing.T) {
	trees := genTrees(t, 1, 400, 1)
	equal := 0
	for i := range trees {
		a := trees[i]
		if !a.Equals(a) {
			t.Fatalf("%s not equal to itself", ToString(a))
		}
		for j := range trees {
			b := trees[j]
			if a.Equals(b) != b.Equals(a) {
				t.Fatalf("asymmetric equality: %s, %s", ToString(a), ToString(b))
			}
			if !a.Equals(b) {
				continue
			}
			equal++
			if a.Hash() != b.Hash() {
				t.Fatalf("%s == %s but hashes differ", ToString(a), ToString(b))
			}
			for k := range trees {
				c := trees[k]
				if b.Equals(c) && !a.Equals(c) {
					t.Fatalf("intransitive equality: %s, %s, %s", ToString(a), ToString(b), ToString(c))
				}
			}
		}
	}
	if equal <= len(trees) {
		t.Logf("only %d equal pairs among %d trees", equal, len(trees))
	}
}

func TestCopyIndependence(t *testing.T) {
	for _, n := range genTrees(t, 2, 200, 4) {
		before := ToString(n)
		c := Copy(n)
		if !n.Equals(c) || !c.Equals(n) {
			t.Fatalf("copy of %s not equal to original", before)
		}
		if n.Hash() != c.Hash() {
			t.Fatalf("copy of %s hashes differently", before)
		}
		if c.Alias() != n.Alias() {
			t.Fatalf("copy of %s: alias %q != %q", before, c.Alias(), n.Alias())
		}
		// scribble over every node of the copy
		Walk(WalkFunc(func(e Node) bool {
			e.SetAlias("scribbled")
			switch e := e.(type) {
			case *ColumnRef:
				e.Names[0] = "zzz"
			case *Constant:
				e.Value = String("zzz")
			case *Operator:
				e.Args = append(e.Args, Int(0))
			case *Lambda:
				if e.Resolved() {
					params, _ := e.Params()
					params[0] = Column("zzz")
				}
			}
			return true
		}), c)
		if after := ToString(n); after != before {
			t.Fatalf("mutating a copy changed the original: %s -> %s", before, after)
		}
	}
}
