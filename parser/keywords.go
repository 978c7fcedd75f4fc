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

package parser

import (
	"github.com/SnellerInc/pexpr/expr"
)

// keywords, indexed by length so that
// lookupKeyword only compares words that
// could possibly match
var keywords = [][]struct {
	word string
	tok  int
}{
	2: {{"AS", AS}, {"IS", IS}, {"OR", OR}},
	3: {{"AND", AND}, {"END", END}, {"NOT", NOT}},
	4: {{"CASE", CASE}, {"CAST", CAST}, {"ELSE", ELSE}, {"NULL", NULL}, {"THEN", THEN}, {"TRUE", TRUE}, {"WHEN", WHEN}},
	5: {{"FALSE", FALSE}, {"WHERE", WHERE}},
	6: {{"FILTER", FILTER}},
	7: {{"BETWEEN", BETWEEN}, {"COLLATE", COLLATE}, {"DEFAULT", DEFAULT}, {"EXCLUDE", EXCLUDE}},
	8: {{"DISTINCT", DISTINCT}, {"TRY_CAST", TRY_CAST}},
}

// lookupKeyword returns the token for word,
// or -1 if word is not a keyword
func lookupKeyword(word []byte) int {
	if len(word) >= len(keywords) {
		return -1
	}
	for _, kw := range keywords[len(word)] {
		if equalASCII(word, []byte(kw.word)) {
			return kw.tok
		}
	}
	return -1
}

func init() {
	expr.IsKeyword = func(s string) bool {
		return lookupKeyword([]byte(s)) != -1
	}
}
