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

package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/SnellerInc/pexpr/expr"
)

func TestParseString(t *testing.T) {
	testcases := []struct {
		in, want string
	}{
		{"x", "x"},
		{"t.x", "t.x"},
		{"\"select\".\"a b\"", "select.\"a b\""},
		{"\"end\"", "\"end\""},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"-x", "(-x)"},
		{"-3", "-3"},
		{"- 1.5", "-1.5"},
		{"1e3", "1000.0"},
		{"'it''s'", "'it''s'"},
		{"NULL", "NULL"},
		{"true AND false", "(TRUE AND FALSE)"},
		{"a OR b AND c", "(a OR (b AND c))"},
		{"a AND b AND c", "(a AND b AND c)"},
		{"NOT a = b", "(NOT (a = b))"},
		{"x <> 1", "(x <> 1)"},
		{"x != 1", "(x <> 1)"},
		{"x >= 1 AND y < 2", "((x >= 1) AND (y < 2))"},
		{"x IS NULL", "(x IS NULL)"},
		{"x IS NOT NULL", "(x IS NOT NULL)"},
		{"x BETWEEN 1 AND 2 AND y", "((x BETWEEN 1 AND 2) AND y)"},
		{"sum(x)", "sum(x)"},
		{"main.f(x, 1)", "main.f(x, 1)"},
		{"count(*)", "count(*)"},
		{"count(DISTINCT x) FILTER (WHERE x > 0)", "count(DISTINCT x) FILTER (WHERE (x > 0))"},
		{"now()", "now()"},
		{"(a, b)", "(a, b)"},
		{"CAST(x AS integer)", "CAST(x AS INTEGER)"},
		{"TRY_CAST(x AS decimal(10, 2))", "TRY_CAST(x AS DECIMAL(10,2))"},
		{"CASE WHEN x THEN 1 ELSE 0 END", "CASE WHEN x THEN 1 ELSE 0 END"},
		{"CASE x WHEN 1 THEN 'a' WHEN 2 THEN 'b' END", "CASE x WHEN 1 THEN 'a' WHEN 2 THEN 'b' END"},
		{"CASE x + 1 WHEN y THEN 1 END", "CASE (x + 1) WHEN y THEN 1 END"},
		{"s COLLATE nocase = t", "((s COLLATE nocase) = t)"},
		{"*", "*"},
		{"t.* EXCLUDE (a, b)", "t.* EXCLUDE (a, b)"},
		{"$1 + #2", "($1 + #2)"},
		{"DEFAULT", "DEFAULT"},
		{"x -- comment\n + 1", "(x + 1)"},
		{"x -> x + 1", "x -> (x + 1)"},
		{"(a, b) -> a + b", "(a, b) -> (a + b)"},
		{"x -> y -> x + y", "x -> y -> (x + y)"},
		{"j -> '$.field'", "j -> '$.field'"},
		{"list_transform(l, x -> x * 2)", "list_transform(l, x -> (x * 2))"},
	}
	for i := range testcases {
		in, want := testcases[i].in, testcases[i].want
		n, err := Parse(in)
		if err != nil {
			t.Errorf("case %d: Parse(%q): %s", i, in, err)
			continue
		}
		if got := expr.ToString(n); got != want {
			t.Errorf("case %d: Parse(%q) = %q, want %q", i, in, got, want)
		}
	}
}

func TestParseLambda(t *testing.T) {
	n, err := Parse("x -> x + 1")
	if err != nil {
		t.Fatal(err)
	}
	l, ok := n.(*expr.Lambda)
	if !ok {
		t.Fatalf("got %T", n)
	}
	if l.Resolved() {
		t.Fatal("single-name lambda should not be resolved by the parser")
	}
	lhs, err := l.LHS()
	if err != nil {
		t.Fatal(err)
	}
	if !lhs.Equals(expr.Column("x")) {
		t.Fatalf("lhs = %s", expr.ToString(lhs))
	}
	if !l.Body().Equals(expr.Add(expr.Column("x"), expr.Int(1))) {
		t.Fatalf("body = %s", expr.ToString(l.Body()))
	}

	n, err = Parse("(a, b) -> a + b")
	if err != nil {
		t.Fatal(err)
	}
	l = n.(*expr.Lambda)
	params, err := l.Params()
	if err != nil {
		t.Fatal(err)
	}
	if len(params) != 2 || !params[0].Equals(expr.Column("a")) || !params[1].Equals(expr.Column("b")) {
		t.Fatalf("params = %v", params)
	}

	// anything else on the left stays unresolved
	for _, text := range []string{"(t.a, b) -> a", "(a, 1) -> a", "f(x) -> '$.a'", "j.k -> 'x'"} {
		n, err := Parse(text)
		if err != nil {
			t.Fatal(err)
		}
		if l, ok := n.(*expr.Lambda); !ok || l.Resolved() {
			t.Errorf("%s: expected unresolved lambda, got %s", text, expr.ToString(n))
		}
	}
}

func TestParseAlias(t *testing.T) {
	n, err := Parse("x + 1 AS total")
	if err != nil {
		t.Fatal(err)
	}
	if n.Alias() != "total" {
		t.Fatalf("alias = %q", n.Alias())
	}
	n, err = Parse("x AS \"case\"")
	if err != nil {
		t.Fatal(err)
	}
	if n.Alias() != "case" {
		t.Fatalf("alias = %q", n.Alias())
	}
}

func TestParseErrors(t *testing.T) {
	testcases := []struct {
		in  string
		pos int
	}{
		{"", 0},
		{"x +", 3},
		{"(x", 2},
		{"x y", 2},
		{"'abc", 0},
		{"\"\"", 0},
		{"1abc", 0},
		{"x ? y", 2},
		{"CASE END", 5},
		{"CAST(x)", 6},
		{"x IS 1", 5},
		{"a.b.c(x)", 5},
		{"$0", 0},
		{"x ->", 4},
		{"x AS", 4},
		{"99999999999999999999999e999999", 0},
	}
	for i := range testcases {
		in := testcases[i].in
		n, err := Parse(in)
		if err == nil {
			t.Errorf("case %d: Parse(%q) = %s", i, in, expr.ToString(n))
			continue
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("case %d: error %T is not *Error", i, err)
			continue
		}
		if perr.Pos != testcases[i].pos {
			t.Errorf("case %d: Parse(%q): error at %d, want %d (%s)", i, in, perr.Pos, testcases[i].pos, err)
		}
	}
}

// printing a parsed expression and parsing
// it again yields an equal expression
func TestParsePrintRoundTrip(t *testing.T) {
	inputs := []string{
		"a.b + 3 * c",
		"(a, b) -> a + b",
		"x -> x + 1",
		"NOT (x AND y OR z)",
		"CASE x WHEN 1 THEN 'a' ELSE b END",
		"count(DISTINCT \"Weird Name\") FILTER (WHERE x IS NOT NULL)",
		"TRY_CAST(x AS varchar) COLLATE nocase",
		"x BETWEEN -1 AND 1.5",
		"t.* EXCLUDE (\"select\")",
		"f(l, (a, b) -> a * b, x -> x)",
	}
	for _, in := range inputs {
		n, err := Parse(in)
		if err != nil {
			t.Fatalf("%s: %s", in, err)
		}
		text := expr.ToString(n)
		n2, err := Parse(text)
		if err != nil {
			t.Fatalf("re-parsing %q: %s", text, err)
		}
		if !n.Equals(n2) {
			t.Errorf("%q -> %q -> %q", in, text, expr.ToString(n2))
		}
	}
}

func TestIsKeyword(t *testing.T) {
	for _, kw := range []string{"and", "Case", "TRY_CAST", "between"} {
		if !expr.IsKeyword(kw) {
			t.Errorf("%s is not a keyword", kw)
		}
	}
	for _, id := range []string{"x", "select", "ands", ""} {
		if expr.IsKeyword(id) {
			t.Errorf("%s is a keyword", id)
		}
	}
	if got := expr.ToString(expr.Column("end")); got != "\"end\"" {
		t.Errorf("got %s", got)
	}
}

// the operand of a simple CASE appears
// once in the tree no matter how many
// WHEN limbs compare against it
func TestParseNestedCase(t *testing.T) {
	const depth = 20
	text := "x"
	for i := 0; i < depth; i++ {
		text = "CASE " + text + " WHEN 1 THEN 1 WHEN 2 THEN 2 END"
	}
	n, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	nodes := 0
	expr.Walk(expr.WalkFunc(func(expr.Node) bool {
		nodes++
		return true
	}), n)
	// each level is a Case and four constants
	if want := 5*depth + 1; nodes != want {
		t.Fatalf("got %d nodes, want %d", nodes, want)
	}
	if got := expr.ToString(n); got != text {
		t.Fatalf("got %q", got)
	}
	if c, ok := n.(*expr.Case); !ok || c.Operand == nil || strings.Count(expr.ToString(c.Operand), "CASE") != depth-1 {
		t.Fatalf("unexpected root %s", expr.ToString(n))
	}
}
