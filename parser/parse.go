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

// Package parser implements a small SQL
// expression grammar that produces expr trees.
//
// The grammar does not decide what the left-hand
// side of '->' means: 'x -> x + 1' and the JSON
// accessor 'j -> path' both produce an unresolved
// *expr.Lambda, except that a parenthesized list
// of plain column names is always a parameter list.
// See package binder for the resolution step.
package parser

import (
	"strings"

	"github.com/SnellerInc/pexpr/expr"
)

type parser struct {
	s   scanner
	tok int
	val lval
	// position of tok
	pos int
}

// Parse parses a single expression, optionally
// followed by 'AS alias', and returns the
// result or an *Error describing the first
// syntax error.
func Parse(text string) (expr.Node, error) {
	p := &parser{s: scanner{from: []byte(text)}}
	p.next()
	n := p.expr()
	if p.tok == AS {
		p.next()
		alias := p.ident()
		if n != nil && p.s.err == nil {
			n.SetAlias(alias)
		}
	}
	if p.tok != eof {
		p.fail("unexpected %s", p.describe())
	}
	if p.s.err != nil {
		return nil, p.s.err
	}
	return n, nil
}

func (p *parser) next() {
	p.val = lval{}
	p.tok = p.s.lex(&p.val)
	p.pos = p.s.start
}

// fail records an error at the current
// token; only the first error is kept
func (p *parser) fail(f string, args ...any) {
	p.s.errorf(p.pos, f, args...)
	p.tok = ERROR
}

func (p *parser) failed() bool { return p.s.err != nil }

func (p *parser) describe() string {
	switch p.tok {
	case eof:
		return "end of input"
	case ERROR:
		return "invalid input"
	}
	end := p.s.pos
	if end > len(p.s.from) {
		end = len(p.s.from)
	}
	return "'" + string(p.s.from[p.pos:end]) + "'"
}

func (p *parser) expect(tok int, what string) bool {
	if p.tok != tok {
		p.fail("expected %s, found %s", what, p.describe())
		return false
	}
	p.next()
	return true
}

func (p *parser) ident() string {
	if p.tok != ID {
		p.fail("expected identifier, found %s", p.describe())
		return ""
	}
	s := p.val.str
	p.next()
	return s
}

// expr parses an expression at the
// lowest precedence level: 'a -> b' is
// right-associative and binds loosest
func (p *parser) expr() expr.Node {
	lhs := p.or()
	if p.tok != ARROW || p.failed() {
		return lhs
	}
	p.next()
	body := p.expr()
	if p.failed() {
		return nil
	}
	if params, ok := paramList(lhs); ok {
		return expr.NewLambdaParams(params, body)
	}
	return expr.NewLambda(lhs, body)
}

// paramList returns the arguments of a
// parenthesized list of two or more plain
// column names
func paramList(n expr.Node) ([]expr.Node, bool) {
	f, ok := n.(*expr.Function)
	if !ok || !f.IsRow() || len(f.Args) < 2 || f.Alias() != "" {
		return nil, false
	}
	for _, arg := range f.Args {
		c, ok := arg.(*expr.ColumnRef)
		if !ok || c.IsQualified() || c.Alias() != "" {
			return nil, false
		}
	}
	return f.Args, true
}

func (p *parser) or() expr.Node {
	n := p.and()
	for p.tok == OR && !p.failed() {
		p.next()
		n = expr.Or(n, p.and())
	}
	return n
}

func (p *parser) and() expr.Node {
	n := p.not()
	for p.tok == AND && !p.failed() {
		p.next()
		n = expr.And(n, p.not())
	}
	return n
}

func (p *parser) not() expr.Node {
	if p.tok == NOT {
		p.next()
		return expr.Not(p.not())
	}
	return p.comparison()
}

var cmpops = map[int]expr.ExprType{
	EQ: expr.TypeEqual,
	NE: expr.TypeNotEqual,
	LT: expr.TypeLess,
	LE: expr.TypeLessEqual,
	GT: expr.TypeGreater,
	GE: expr.TypeGreaterEqual,
}

func (p *parser) comparison() expr.Node {
	n := p.additive()
	for !p.failed() {
		if op, ok := cmpops[p.tok]; ok {
			p.next()
			n = expr.Compare(op, n, p.additive())
			continue
		}
		switch p.tok {
		case IS:
			p.next()
			negated := p.tok == NOT
			if negated {
				p.next()
			}
			if !p.expect(NULL, "NULL") {
				return nil
			}
			if negated {
				n = expr.IsNotNull(n)
			} else {
				n = expr.IsNull(n)
			}
		case BETWEEN:
			p.next()
			lo := p.additive()
			if !p.expect(AND, "AND") {
				return nil
			}
			n = &expr.Between{Input: n, Lower: lo, Upper: p.additive()}
		default:
			return n
		}
	}
	return n
}

func (p *parser) additive() expr.Node {
	n := p.multiplicative()
	for !p.failed() {
		switch p.tok {
		case '+':
			p.next()
			n = expr.Add(n, p.multiplicative())
		case '-':
			p.next()
			n = expr.Sub(n, p.multiplicative())
		default:
			return n
		}
	}
	return n
}

func (p *parser) multiplicative() expr.Node {
	n := p.unary()
	for !p.failed() {
		switch p.tok {
		case '*':
			p.next()
			n = expr.Mul(n, p.unary())
		case '/':
			p.next()
			n = expr.Div(n, p.unary())
		case '%':
			p.next()
			n = expr.Mod(n, p.unary())
		default:
			return n
		}
	}
	return n
}

func (p *parser) unary() expr.Node {
	if p.tok != '-' {
		return p.postfix()
	}
	p.next()
	n := p.unary()
	// fold negative literals
	if c, ok := n.(*expr.Constant); ok {
		switch v := c.Value.(type) {
		case expr.Integer:
			return expr.Int(-int64(v))
		case expr.Float:
			return expr.Lit(-v)
		}
	}
	return expr.Neg(n)
}

func (p *parser) postfix() expr.Node {
	n := p.primary()
	for p.tok == COLLATE && !p.failed() {
		p.next()
		n = &expr.Collate{Child: n, Collation: p.ident()}
	}
	return n
}

func (p *parser) primary() expr.Node {
	if p.failed() {
		return nil
	}
	switch p.tok {
	case NUMBER:
		v := p.val.value
		p.next()
		return expr.Lit(v)
	case STRING:
		s := p.val.str
		p.next()
		return expr.Str(s)
	case NULL:
		p.next()
		return expr.Lit(expr.Null{})
	case TRUE, FALSE:
		b := p.tok == TRUE
		p.next()
		return expr.Lit(expr.Bool(b))
	case PARAM:
		i := p.val.integer
		p.next()
		return &expr.Parameter{Index: i}
	case POSITIONAL:
		i := p.val.integer
		p.next()
		return &expr.PositionalRef{Index: i}
	case DEFAULT:
		p.next()
		return &expr.Default{}
	case '*':
		p.next()
		return p.star("")
	case CASE:
		return p.caseExpr()
	case CAST, TRY_CAST:
		return p.cast()
	case '(':
		return p.parens()
	case ID:
		return p.path()
	}
	p.fail("unexpected %s", p.describe())
	return nil
}

// star parses the optional EXCLUDE list
// following '*' or 'relation.*'
func (p *parser) star(relation string) expr.Node {
	s := &expr.Star{Relation: relation}
	if p.tok != EXCLUDE {
		return s
	}
	p.next()
	if !p.expect('(', "'('") {
		return nil
	}
	for !p.failed() {
		s.Exclude = append(s.Exclude, p.ident())
		if p.tok != ',' {
			break
		}
		p.next()
	}
	p.expect(')', "')'")
	return s
}

// parens parses '(' expr ')' or the
// list '(' expr, expr, ... ')'
func (p *parser) parens() expr.Node {
	p.next()
	lst := p.exprList()
	if !p.expect(')', "')'") {
		return nil
	}
	if len(lst) == 1 {
		return lst[0]
	}
	return expr.Row(lst...)
}

func (p *parser) exprList() []expr.Node {
	var lst []expr.Node
	for !p.failed() {
		lst = append(lst, p.expr())
		if p.tok != ',' {
			break
		}
		p.next()
	}
	return lst
}

// path parses a column reference,
// 'relation.*', or a function call
func (p *parser) path() expr.Node {
	names := []string{p.ident()}
	for p.tok == '.' && !p.failed() {
		p.next()
		if p.tok == '*' {
			p.next()
			if len(names) != 1 {
				p.fail("qualified relation in %s.*", strings.Join(names, "."))
				return nil
			}
			return p.star(names[0])
		}
		names = append(names, p.ident())
	}
	if p.tok != '(' {
		return expr.Column(names...)
	}
	f := &expr.Function{}
	switch len(names) {
	case 1:
		f.Name = names[0]
	case 2:
		f.Schema, f.Name = names[0], names[1]
	default:
		p.fail("invalid function name %s", strings.Join(names, "."))
		return nil
	}
	p.next()
	if p.tok == DISTINCT {
		p.next()
		f.Distinct = true
	}
	switch p.tok {
	case ')':
	case '*':
		p.next()
		f.Args = []expr.Node{p.star("")}
	default:
		f.Args = p.exprList()
	}
	if !p.expect(')', "')'") {
		return nil
	}
	if p.tok == FILTER {
		p.next()
		if !p.expect('(', "'('") || !p.expect(WHERE, "WHERE") {
			return nil
		}
		f.Filter = p.expr()
		if !p.expect(')', "')'") {
			return nil
		}
	}
	return f
}

// cast parses [TRY_]CAST(expr AS type);
// the type name is kept as text
func (p *parser) cast() expr.Node {
	c := &expr.Cast{Try: p.tok == TRY_CAST}
	p.next()
	if !p.expect('(', "'('") {
		return nil
	}
	c.Child = p.expr()
	if !p.expect(AS, "AS") {
		return nil
	}
	c.Target = p.typeName()
	if !p.expect(')', "')'") {
		return nil
	}
	return c
}

// typeName parses 'name' or 'name(n, ...)'
func (p *parser) typeName() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(p.ident()))
	if p.tok != '(' || p.failed() {
		return b.String()
	}
	p.next()
	b.WriteByte('(')
	for !p.failed() {
		i, ok := p.val.value.(expr.Integer)
		if p.tok != NUMBER || !ok {
			p.fail("expected integer type modifier, found %s", p.describe())
			return ""
		}
		b.WriteString(expr.ToString(expr.Int(int64(i))))
		p.next()
		if p.tok != ',' {
			break
		}
		b.WriteByte(',')
		p.next()
	}
	p.expect(')', "')'")
	b.WriteByte(')')
	return b.String()
}

// caseExpr parses a searched or simple CASE;
// a simple CASE is rewritten into a searched
// one comparing the operand to each WHEN value
func (p *parser) caseExpr() expr.Node {
	p.next()
	c := &expr.Case{}
	if p.tok != WHEN {
		c.Operand = p.expr()
	}
	for p.tok == WHEN && !p.failed() {
		p.next()
		when := p.expr()
		if !p.expect(THEN, "THEN") {
			return nil
		}
		c.Checks = append(c.Checks, expr.CaseCheck{When: when, Then: p.expr()})
	}
	if len(c.Checks) == 0 {
		p.fail("expected WHEN, found %s", p.describe())
		return nil
	}
	if p.tok == ELSE {
		p.next()
		c.Else = p.expr()
	}
	if !p.expect(END, "END") {
		return nil
	}
	return c
}
