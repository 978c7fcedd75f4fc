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
)

// ExprType refines a Class; for example
// every *Comparison has ClassComparison
// but the ExprType tells which comparison
// it performs.
//
// Like Class, ExprType values are persisted
// and may only be appended.
type ExprType uint8

const (
	TypeInvalid ExprType = iota

	TypeAdd
	TypeSubtract
	TypeMultiply
	TypeDivide
	TypeModulo
	TypeNegate
	TypeNot
	TypeIsNull
	TypeIsNotNull
	// TypeArrow is the '->' accessor operator
	// used for JSON-style path access; it is
	// what a lambda becomes when its left-hand
	// side turns out not to be a parameter list.
	TypeArrow

	TypeEqual
	TypeNotEqual
	TypeLess
	TypeLessEqual
	TypeGreater
	TypeGreaterEqual

	TypeAnd
	TypeOr

	TypeConstant
	TypeColumnRef
	TypeFunction
	TypeCast
	TypeStar
	TypeCase
	TypeBetween
	TypeParameter
	TypeLambda
	TypeCollate
	TypePositionalRef
	TypeDefault

	numTypes
)

type typeInfo struct {
	name   string
	symbol string // operator text, if any
	class  Class
}

var typeInfos = [numTypes]typeInfo{
	TypeInvalid:       {"INVALID", "", ClassInvalid},
	TypeAdd:           {"ADD", "+", ClassOperator},
	TypeSubtract:      {"SUBTRACT", "-", ClassOperator},
	TypeMultiply:      {"MULTIPLY", "*", ClassOperator},
	TypeDivide:        {"DIVIDE", "/", ClassOperator},
	TypeModulo:        {"MODULO", "%", ClassOperator},
	TypeNegate:        {"NEGATE", "-", ClassOperator},
	TypeNot:           {"NOT", "NOT", ClassOperator},
	TypeIsNull:        {"IS_NULL", "IS NULL", ClassOperator},
	TypeIsNotNull:     {"IS_NOT_NULL", "IS NOT NULL", ClassOperator},
	TypeArrow:         {"ARROW", "->", ClassOperator},
	TypeEqual:         {"EQUAL", "=", ClassComparison},
	TypeNotEqual:      {"NOT_EQUAL", "<>", ClassComparison},
	TypeLess:          {"LESS", "<", ClassComparison},
	TypeLessEqual:     {"LESS_EQUAL", "<=", ClassComparison},
	TypeGreater:       {"GREATER", ">", ClassComparison},
	TypeGreaterEqual:  {"GREATER_EQUAL", ">=", ClassComparison},
	TypeAnd:           {"AND", "AND", ClassConjunction},
	TypeOr:            {"OR", "OR", ClassConjunction},
	TypeConstant:      {"VALUE_CONSTANT", "", ClassConstant},
	TypeColumnRef:     {"COLUMN_REF", "", ClassColumnRef},
	TypeFunction:      {"FUNCTION", "", ClassFunction},
	TypeCast:          {"CAST", "", ClassCast},
	TypeStar:          {"STAR", "*", ClassStar},
	TypeCase:          {"CASE", "", ClassCase},
	TypeBetween:       {"BETWEEN", "BETWEEN", ClassBetween},
	TypeParameter:     {"PARAMETER", "", ClassParameter},
	TypeLambda:        {"LAMBDA", "->", ClassLambda},
	TypeCollate:       {"COLLATE", "COLLATE", ClassCollate},
	TypePositionalRef: {"POSITIONAL_REFERENCE", "", ClassPositionalRef},
	TypeDefault:       {"DEFAULT", "DEFAULT", ClassDefault},
}

func (t ExprType) String() string {
	if t < numTypes {
		return typeInfos[t].name
	}
	return fmt.Sprintf("ExprType(%d)", uint8(t))
}

// Symbol returns the SQL operator text for t,
// or the empty string if t is not an operator.
func (t ExprType) Symbol() string {
	if t < numTypes {
		return typeInfos[t].symbol
	}
	return ""
}

// Class returns the Class of the nodes
// that may carry t.
func (t ExprType) Class() Class {
	if t < numTypes {
		return typeInfos[t].class
	}
	return ClassInvalid
}

// ParseExprType is the inverse of ExprType.String.
func ParseExprType(s string) (ExprType, bool) {
	for i := range typeInfos {
		if typeInfos[i].name == s {
			return ExprType(i), true
		}
	}
	return TypeInvalid, false
}
