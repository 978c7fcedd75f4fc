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

package main

import (
	"strings"
	"testing"

	"github.com/SnellerInc/pexpr/binder"
	"github.com/SnellerInc/pexpr/plancache"
)

func TestProcess(t *testing.T) {
	cache := plancache.New(plancache.NewMemoryStore(0))
	testcases := []struct {
		in   string
		opts options
		want []string
	}{
		{
			in:   "x -> x + 1",
			opts: options{format: "text"},
			want: []string{"expr:   x -> (x + 1)", "class:  LAMBDA", "text:   "},
		},
		{
			in:   "j.k -> 'a'",
			opts: options{format: "binary", bind: true, mode: binder.ArrowAccessor},
			want: []string{"expr:   (j.k -> 'a')", "class:  OPERATOR", "binary: 505846"},
		},
		{
			in:   "(a, b) -> a + b",
			opts: options{format: "ion", cache: cache},
			want: []string{"ion:    e00100ea", "cache:  stored"},
		},
		{
			in:   "(a, b) -> a + b",
			opts: options{format: "ion", cache: cache},
			want: []string{"cache:  hit"},
		},
	}
	for i := range testcases {
		var out strings.Builder
		if err := process(&out, testcases[i].in, &testcases[i].opts); err != nil {
			t.Fatalf("case %d: %s", i, err)
		}
		for _, want := range testcases[i].want {
			if !strings.Contains(out.String(), want) {
				t.Errorf("case %d: output %q does not contain %q", i, out.String(), want)
			}
		}
	}
}

func TestProcessErrors(t *testing.T) {
	testcases := []struct {
		in   string
		opts options
	}{
		{"x +", options{format: "text"}},
		{"j.k -> 'a'", options{format: "text", bind: true, mode: binder.LambdaParams}},
		{"x", options{format: "xml"}},
	}
	for i := range testcases {
		var out strings.Builder
		if err := process(&out, testcases[i].in, &testcases[i].opts); err == nil {
			t.Errorf("case %d: no error; output %q", i, out.String())
		}
	}
}
