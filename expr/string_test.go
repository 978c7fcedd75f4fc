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

func TestString(t *testing.T) {
	testcases := []struct {
		in   Node
		want string
	}{
		{Column("t", "foo"), "t.foo"},
		{Column("a b"), "\"a b\""},
		{Column("x\"y"), "\"x\"\"y\""},
		{Str("it's"), "'it''s'"},
		{Int(-3), "-3"},
		{Lit(Float(2)), "2.0"},
		{Lit(Float(1.5)), "1.5"},
		{Lit(Float(math.Inf(1))), "+Inf"},
		{Lit(Bool(true)), "TRUE"},
		{Lit(Null{}), "NULL"},
		{Add(Column("x"), Mul(Column("y"), Int(2))), "(x + (y * 2))"},
		{Neg(Column("x")), "(-x)"},
		{Not(Column("x")), "(NOT x)"},
		{IsNull(Column("x")), "(x IS NULL)"},
		{IsNotNull(Column("x")), "(x IS NOT NULL)"},
		{Arrow(Column("j"), Str("$.a")), "(j -> '$.a')"},
		{Compare(TypeLessEqual, Column("x"), Int(3)), "(x <= 3)"},
		{And(And(Column("a"), Column("b")), Column("c")), "(a AND b AND c)"},
		{Or(Column("a"), And(Column("b"), Column("c"))), "(a OR (b AND c))"},
		{&Between{Input: Column("x"), Lower: Int(0), Upper: Int(5)}, "(x BETWEEN 0 AND 5)"},
		{Call("sum", Column("x")), "sum(x)"},
		{&Function{Name: "count", Args: []Node{Column("x")}, Distinct: true}, "count(DISTINCT x)"},
		{&Function{Name: "count", Args: []Node{Column("x")}, Filter: Compare(TypeGreater, Column("x"), Int(0))}, "count(x) FILTER (WHERE (x > 0))"},
		{Row(Column("a"), Column("b")), "(a, b)"},
		{&Cast{Child: Column("x"), Target: "INTEGER"}, "CAST(x AS INTEGER)"},
		{&Cast{Child: Column("x"), Target: "VARCHAR", Try: true}, "TRY_CAST(x AS VARCHAR)"},
		{
			&Case{Checks: []CaseCheck{{Column("x"), Int(1)}}, Else: Int(0)},
			"CASE WHEN x THEN 1 ELSE 0 END",
		},
		{
			&Case{Operand: Column("x"), Checks: []CaseCheck{{Int(1), Str("a")}, {Int(2), Str("b")}}},
			"CASE x WHEN 1 THEN 'a' WHEN 2 THEN 'b' END",
		},
		{&Collate{Child: Column("s"), Collation: "nocase"}, "(s COLLATE nocase)"},
		{&Star{}, "*"},
		{&Star{Relation: "t", Exclude: []string{"a", "b"}}, "t.* EXCLUDE (a, b)"},
		{&Parameter{Index: 2}, "$2"},
		{&PositionalRef{Index: 1}, "#1"},
		{&Default{}, "DEFAULT"},
		{
			NewLambda(Column("x"), Add(Column("x"), Int(1))),
			"x -> (x + 1)",
		},
		{
			NewLambdaParams([]Node{Column("x")}, Add(Column("x"), Int(1))),
			"x -> (x + 1)",
		},
		{
			NewLambdaParams([]Node{Column("a"), Column("b")}, Add(Column("a"), Column("b"))),
			"(a, b) -> (a + b)",
		},
		{
			NewLambda(Row(Column("a"), Column("b")), Add(Column("a"), Column("b"))),
			"(a, b) -> (a + b)",
		},
		{
			Call("list_transform", Column("l"), NewLambda(Column("x"), Mul(Column("x"), Int(2)))),
			"list_transform(l, x -> (x * 2))",
		},
	}
	for i := range testcases {
		want := testcases[i].want
		if got := ToString(testcases[i].in); got != want {
			t.Errorf("case %d: got %q, want %q", i, got, want)
		}
	}
}

func TestStringKeyword(t *testing.T) {
	saved := IsKeyword
	defer func() { IsKeyword = saved }()
	IsKeyword = func(s string) bool { return s == "select" }
	if got := ToString(Column("select")); got != "\"select\"" {
		t.Errorf("got %s", got)
	}
	if got := ToString(Column("selected")); got != "selected" {
		t.Errorf("got %s", got)
	}
}

// the textual form does not include the alias
func TestStringAlias(t *testing.T) {
	n := Add(Column("x"), Int(1))
	n.SetAlias("y")
	if got := ToString(n); got != "(x + 1)" {
		t.Errorf("got %s", got)
	}
}
