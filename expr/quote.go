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
	"strings"
)

// Quote produces SQL single-quoted strings;
// embedded single quotes are doubled
func Quote(s string) string {
	var buf strings.Builder
	quote(&buf, s)
	return buf.String()
}

func quote(out *strings.Builder, s string) {
	out.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out.WriteByte('\'')
		}
		out.WriteByte(s[i])
	}
	out.WriteByte('\'')
}

// IsKeyword is the function that the expr library
// uses to determine if a string would match as
// a SQL keyword.
//
// (Please don't set this yourself; it is set by
// the parser package so that they can share keyword tables.)
var IsKeyword func(s string) bool

func plainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// QuoteID produces a textual SQL identifier;
// the returned string will be double-quoted
// (with embedded double quotes doubled) if it
// is not a plain identifier or it is a keyword.
func QuoteID(s string) string {
	var buf strings.Builder
	quoteID(&buf, s)
	return buf.String()
}

func quoteID(out *strings.Builder, s string) {
	if plainIdent(s) && (IsKeyword == nil || !IsKeyword(s)) {
		out.WriteString(s)
		return
	}
	out.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			out.WriteByte('"')
		}
		out.WriteByte(s[i])
	}
	out.WriteByte('"')
}
