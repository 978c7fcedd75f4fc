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
	"fmt"
)

var (
	// ErrMalformed is returned by the decoders
	// when the input does not describe a valid
	// expression tree: a mandatory field is
	// missing, a tag is not registered, or
	// the fields are inconsistent with each other.
	ErrMalformed = errors.New("malformed expression")

	// ErrUnknownClass is returned (wrapped in
	// ErrMalformed) when a decoder encounters
	// a class tag with no registered node type.
	ErrUnknownClass = errors.New("unregistered expression class")

	// ErrLambdaState is returned when a Lambda is
	// asked for the side of its left-hand side that
	// is not populated, or when it is resolved twice.
	ErrLambdaState = errors.New("invalid lambda state")

	errUnexpectedField = errors.New("unexpected field")
)

func malformed(f string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(f, args...))
}

func missing(c Class, field string) error {
	return malformed("%s: missing mandatory field %q", c, field)
}
