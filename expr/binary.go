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
	"math"

	"github.com/SnellerInc/pexpr/fieldio"
)

// Field numbers shared by every node in the
// positional encoding. Node-specific fields
// are numbered from fieldBase; see the
// writeFields method of each node.
const (
	fieldClass = 0
	fieldType  = 1
	fieldAlias = 2
	fieldBase  = 100
)

// MarshalBinary encodes n with the fixed-schema
// positional encoding. The result can only be
// decoded by a reader built for the same
// fieldio.Version.
func MarshalBinary(n Node) ([]byte, error) {
	if n == nil {
		return nil, fmt.Errorf("expr.MarshalBinary: nil node")
	}
	return fieldio.Marshal(func(w *fieldio.Writer) {
		writeNode(w, n)
	}), nil
}

// UnmarshalBinary decodes a tree produced by MarshalBinary.
//
// Errors wrap fieldio.ErrVersionMismatch if the
// input was written for another schema version,
// and ErrMalformed for every other kind of bad input.
// UnmarshalBinary never returns a partial tree.
func UnmarshalBinary(buf []byte) (Node, error) {
	var out Node
	err := fieldio.Unmarshal(buf, func(r *fieldio.Reader) error {
		var err error
		out, err = readNode(r)
		return err
	})
	if err != nil {
		if !errors.Is(err, fieldio.ErrVersionMismatch) && !errors.Is(err, ErrMalformed) {
			err = fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		return nil, fmt.Errorf("expr.UnmarshalBinary: %w", err)
	}
	return out, nil
}

func writeNode(w *fieldio.Writer, n Node) {
	w.WriteUint(fieldClass, uint64(n.Class()))
	w.WriteUint(fieldType, uint64(n.Type()))
	if a := n.Alias(); a != "" {
		w.WriteString(fieldAlias, a)
	}
	n.writeFields(w)
}

func readNode(r *fieldio.Reader) (Node, error) {
	c, err := r.Uint(fieldClass)
	if err != nil {
		return nil, err
	}
	if c > math.MaxUint8 {
		return nil, fmt.Errorf("%w: %w: %d", ErrMalformed, ErrUnknownClass, c)
	}
	n, ok := newEmpty(Class(c))
	if !ok {
		return nil, fmt.Errorf("%w: %w: %s", ErrMalformed, ErrUnknownClass, Class(c))
	}
	t, err := r.Uint(fieldType)
	if err != nil {
		return nil, err
	}
	if t >= uint64(numTypes) {
		return nil, malformed("%s: unknown expression type %d", n.Class(), t)
	}
	if err := n.setType(ExprType(t)); err != nil {
		return nil, err
	}
	alias, err := r.OptionalString(fieldAlias, "")
	if err != nil {
		return nil, err
	}
	n.SetAlias(alias)
	if err := n.readFields(r); err != nil {
		return nil, err
	}
	if err := n.check(); err != nil {
		return nil, err
	}
	return n, nil
}

func writeChild(w *fieldio.Writer, idx int, n Node) {
	if n == nil {
		return
	}
	w.WriteObject(idx, func(w *fieldio.Writer) {
		writeNode(w, n)
	})
}

func writeChildren(w *fieldio.Writer, idx int, lst []Node) {
	if len(lst) == 0 {
		return
	}
	w.WriteList(idx, len(lst), func(i int, w *fieldio.Writer) {
		writeNode(w, lst[i])
	})
}

// readChild reads an optional child node
func readChild(r *fieldio.Reader, idx int) (Node, error) {
	var out Node
	_, err := r.OptionalObject(idx, func(r *fieldio.Reader) error {
		var err error
		out, err = readNode(r)
		return err
	})
	return out, err
}

func readChildren(r *fieldio.Reader, idx int) ([]Node, error) {
	var out []Node
	_, err := r.OptionalList(idx, func(_ int, r *fieldio.Reader) error {
		n, err := readNode(r)
		if err != nil {
			return err
		}
		out = append(out, n)
		return nil
	})
	return out, err
}
