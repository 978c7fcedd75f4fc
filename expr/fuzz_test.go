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

func addTrees(f *testing.F, marshal func(Node) ([]byte, error)) {
	for _, n := range genTrees(f, 5, 30, 3) {
		buf, err := marshal(n)
		if err != nil {
			f.Fatal(err)
		}
		f.Add(buf)
	}
}

// confirm that the decoders do not panic
// on arbitrary input, and that anything they
// accept survives another round-trip
func fuzzDecode(t *testing.T, c codec, buf []byte) {
	n, err := c.unmarshal(buf)
	if err != nil {
		if n != nil {
			t.Fatal("partial result returned with error")
		}
		return
	}
	out, err := c.marshal(n)
	if err != nil {
		t.Fatalf("re-encoding %s: %s", ToString(n), err)
	}
	n2, err := c.unmarshal(out)
	if err != nil {
		t.Fatalf("decoding re-encoded %s: %s", ToString(n), err)
	}
	if !n.Equals(n2) {
		t.Fatalf("%s not equal to %s", ToString(n), ToString(n2))
	}
}

func FuzzUnmarshalBinary(f *testing.F) {
	addTrees(f, MarshalBinary)
	f.Add(rawStream(1 << 40))
	f.Add(rawStream(1, fieldBase, 1<<40))
	f.Fuzz(func(t *testing.T, buf []byte) {
		fuzzDecode(t, codecs[0], buf)
	})
}

func FuzzUnmarshalIon(f *testing.F) {
	addTrees(f, MarshalIon)
	// values whose declared length
	// exceeds the input
	f.Add(ionBytes(0x4e, 0x20, 0x00, 0x00, 0x00, 0x00, 0x80))
	f.Add(ionBytes(0xd6, 0x84, 0x4e, 0x7f, 0x7f, 0x7f, 0xff))
	f.Add(ionBytes(0xe4, 0x81, 0x84, 0x8e, 0xff))
	f.Add([]byte(`{type: PARAMETER, index: 2, class: PARAMETER}`))
	f.Fuzz(func(t *testing.T, buf []byte) {
		fuzzDecode(t, codecs[1], buf)
	})
}

// FuzzRoundTrip generates a tree from the
// fuzzer's seed and pushes it through every codec
func FuzzRoundTrip(f *testing.F) {
	for seed := int64(0); seed < 16; seed++ {
		f.Add(seed, uint8(3))
	}
	f.Fuzz(func(t *testing.T, seed int64, depth uint8) {
		rnd := rand.New(rand.NewSource(seed))
		n := genTree(rnd, int(depth%6))
		for _, c := range codecs {
			testRoundTrip(t, c, n)
		}
	})
}
