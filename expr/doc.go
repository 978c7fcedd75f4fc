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

// Package expr implements the
// AST representation of parsed expressions.
//
// Each of the AST node types satisfies
// the Node interface, and each reports one
// Class from a closed set. Nodes can be
// compared structurally (Equal), hashed
// consistently with that comparison (Hash),
// deep-copied (Copy), rendered as SQL-like
// text (ToString), and serialized with either
// a fixed-schema positional encoding
// (MarshalBinary) or self-describing Ion
// (MarshalIon).
//
// The Lambda node deserves special mention:
// the grammar cannot distinguish 'x -> x + 1'
// from the JSON accessor 'j -> path', so a
// Lambda holds its raw left-hand side until
// a binder resolves it into a parameter list
// or rewrites it into an Arrow operator.
package expr
