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

// Class is the closed set of expression kinds.
// Every concrete Node reports exactly one Class,
// and the class of a node never changes.
//
// Class values are written by both encodings,
// so new classes may only be appended.
type Class uint8

const (
	ClassInvalid Class = iota
	ClassAggregate
	ClassCase
	ClassCast
	ClassColumnRef
	ClassComparison
	ClassConjunction
	ClassConstant
	ClassDefault
	ClassFunction
	ClassOperator
	ClassStar
	ClassSubquery
	ClassWindow
	ClassParameter
	ClassCollate
	ClassLambda
	ClassPositionalRef
	ClassBetween

	numClasses
)

var classNames = [numClasses]string{
	ClassInvalid:       "INVALID",
	ClassAggregate:     "AGGREGATE",
	ClassCase:          "CASE",
	ClassCast:          "CAST",
	ClassColumnRef:     "COLUMN_REF",
	ClassComparison:    "COMPARISON",
	ClassConjunction:   "CONJUNCTION",
	ClassConstant:      "CONSTANT",
	ClassDefault:       "DEFAULT",
	ClassFunction:      "FUNCTION",
	ClassOperator:      "OPERATOR",
	ClassStar:          "STAR",
	ClassSubquery:      "SUBQUERY",
	ClassWindow:        "WINDOW",
	ClassParameter:     "PARAMETER",
	ClassCollate:       "COLLATE",
	ClassLambda:        "LAMBDA",
	ClassPositionalRef: "POSITIONAL_REFERENCE",
	ClassBetween:       "BETWEEN",
}

func (c Class) String() string {
	if c < numClasses {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", uint8(c))
}

// ParseClass is the inverse of Class.String.
func ParseClass(s string) (Class, bool) {
	for i := range classNames {
		if classNames[i] == s {
			return Class(i), true
		}
	}
	return ClassInvalid, false
}
