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
	"math/rand"
	"testing"
)

var genNames = []string{"x", "y", "Foo", "select", "a b", "t"}

func genName(rnd *rand.Rand) string {
	return genNames[rnd.Intn(len(genNames))]
}

func genValue(rnd *rand.Rand) Value {
	switch rnd.Intn(5) {
	case 0:
		return Null{}
	case 1:
		return Bool(rnd.Intn(2) == 0)
	case 2:
		return Integer(rnd.Int63() - rnd.Int63())
	case 3:
		return Float(rnd.NormFloat64() * 1000)
	default:
		return String(genName(rnd) + "'s")
	}
}

// genLeaf produces a random node without children
func genLeaf(rnd *rand.Rand) Node {
	switch rnd.Intn(6) {
	case 0:
		if rnd.Intn(2) == 0 {
			return Column(genName(rnd))
		}
		return Column(genName(rnd), genName(rnd))
	case 1:
		return &Star{Relation: genName(rnd), Exclude: []string{genName(rnd)}}
	case 2:
		return &Parameter{Index: 1 + rnd.Intn(10)}
	case 3:
		return &PositionalRef{Index: 1 + rnd.Intn(10)}
	case 4:
		return &Default{}
	default:
		return Lit(genValue(rnd))
	}
}

func genParams(rnd *rand.Rand) []Node {
	out := make([]Node, 1+rnd.Intn(3))
	for i := range out {
		out[i] = Column(genName(rnd))
	}
	return out
}

// genTree produces a random well-formed tree
// of at most the given depth; every registered
// class can appear, and lambdas are produced
// in both the resolved and unresolved state
func genTree(rnd *rand.Rand, depth int) Node {
	n := genNode(rnd, depth)
	if rnd.Intn(8) == 0 {
		n.SetAlias(genName(rnd))
	}
	return n
}

func genNode(rnd *rand.Rand, depth int) Node {
	if depth <= 0 {
		return genLeaf(rnd)
	}
	sub := func() Node { return genTree(rnd, depth-1) }
	switch rnd.Intn(12) {
	case 0:
		ops := []ExprType{TypeAdd, TypeSubtract, TypeMultiply, TypeDivide, TypeModulo, TypeArrow}
		return NewOperator(ops[rnd.Intn(len(ops))], sub(), sub())
	case 1:
		ops := []ExprType{TypeNegate, TypeNot, TypeIsNull, TypeIsNotNull}
		return NewOperator(ops[rnd.Intn(len(ops))], sub())
	case 2:
		return Compare(TypeEqual+ExprType(rnd.Intn(int(TypeGreaterEqual-TypeEqual)+1)), sub(), sub())
	case 3:
		c := &Conjunction{Op: TypeAnd, Children: []Node{sub(), sub()}}
		if rnd.Intn(2) == 0 {
			c.Op = TypeOr
			c.Children = append(c.Children, sub())
		}
		return c
	case 4:
		f := Call(genName(rnd), sub())
		if rnd.Intn(3) == 0 {
			f.Schema = "main"
			f.Distinct = true
			f.Filter = sub()
		}
		return f
	case 5:
		return Row(sub(), sub())
	case 6:
		return &Cast{Child: sub(), Target: "INTEGER", Try: rnd.Intn(2) == 0}
	case 7:
		c := &Case{Checks: []CaseCheck{{When: sub(), Then: sub()}}}
		if rnd.Intn(2) == 0 {
			c.Else = sub()
		}
		if rnd.Intn(2) == 0 {
			c.Operand = sub()
		}
		return c
	case 8:
		return &Collate{Child: sub(), Collation: "nocase"}
	case 9:
		return &Between{Input: sub(), Lower: sub(), Upper: sub()}
	case 10:
		return NewLambda(sub(), sub())
	default:
		return NewLambdaParams(genParams(rnd), sub())
	}
}

// genTrees produces n random trees
// from a fixed seed
func genTrees(t testing.TB, seed int64, n, depth int) []Node {
	rnd := rand.New(rand.NewSource(seed))
	out := make([]Node, n)
	for i := range out {
		out[i] = genTree(rnd, depth)
	}
	return out
}
