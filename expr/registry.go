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

// registry maps each Class to a constructor for
// an empty node of that class; the decoders use it
// to dispatch on the persisted class tag.
// Classes without an entry (aggregates, subqueries,
// window expressions) are produced by other layers
// and cannot be decoded here.
var registry = [numClasses]func() Node{
	ClassCase:          func() Node { return &Case{} },
	ClassCast:          func() Node { return &Cast{} },
	ClassColumnRef:     func() Node { return &ColumnRef{} },
	ClassComparison:    func() Node { return &Comparison{} },
	ClassConjunction:   func() Node { return &Conjunction{} },
	ClassConstant:      func() Node { return &Constant{} },
	ClassDefault:       func() Node { return &Default{} },
	ClassFunction:      func() Node { return &Function{} },
	ClassOperator:      func() Node { return &Operator{} },
	ClassStar:          func() Node { return &Star{} },
	ClassParameter:     func() Node { return &Parameter{} },
	ClassCollate:       func() Node { return &Collate{} },
	ClassLambda:        func() Node { return &Lambda{} },
	ClassPositionalRef: func() Node { return &PositionalRef{} },
	ClassBetween:       func() Node { return &Between{} },
}

func newEmpty(c Class) (Node, bool) {
	if c >= numClasses || registry[c] == nil {
		return nil, false
	}
	return registry[c](), true
}

// Registered returns whether nodes of
// class c can be decoded.
func Registered(c Class) bool {
	return c < numClasses && registry[c] != nil
}
