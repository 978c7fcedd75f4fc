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
	"fmt"
	"strconv"
	"strings"

	"github.com/SnellerInc/pexpr/expr"
)

const eof = -1

// tokens; single-character operators
// are returned as their own byte value
const (
	ERROR = iota + 256
	ID
	NUMBER
	STRING
	PARAM
	POSITIONAL
	ARROW
	EQ
	NE
	LT
	LE
	GT
	GE

	AND
	AS
	BETWEEN
	CASE
	CAST
	COLLATE
	DEFAULT
	DISTINCT
	ELSE
	END
	EXCLUDE
	FALSE
	FILTER
	IS
	NOT
	NULL
	OR
	THEN
	TRUE
	TRY_CAST
	WHEN
	WHERE
)

// lval holds the value of the last token
type lval struct {
	str     string
	value   expr.Value
	integer int
}

type scanner struct {
	from []byte
	pos  int
	// start of the last token
	start int

	err error
	// notkw is set when
	// we are not in keyword context
	notkw bool
}

// chomp whitespace from input
func (s *scanner) chompws() {
	for s.pos < len(s.from) {
		if isspace(s.from[s.pos]) {
			s.notkw = false
			s.pos++
		} else if s.from[s.pos] == '-' && s.peekat(1) == '-' {
			// comment to end of line
			s.pos += 2
			for s.pos < len(s.from) && s.from[s.pos] != '\n' {
				s.pos++
			}
		} else {
			break
		}
	}
}

func (s *scanner) peekat(i int) byte {
	if s.pos+i < len(s.from) {
		return s.from[s.pos+i]
	}
	return 0
}

func isdigit(x byte) bool {
	return x >= '0' && x <= '9'
}

func isalpha(x byte) bool {
	return (x >= 'a' && x <= 'z') || (x >= 'A' && x <= 'Z')
}

func isident(x byte) bool {
	return isalpha(x) || isdigit(x) || x == '_'
}

func isspace(x byte) bool {
	return x == ' ' || x == '\n' || x == '\t' || x == '\r' || x == '\f' || x == '\v'
}

func (s *scanner) errorf(pos int, f string, args ...any) int {
	if s.err == nil {
		s.err = &Error{Pos: pos, Msg: fmt.Sprintf(f, args...)}
	}
	return ERROR
}

func (s *scanner) lex(l *lval) int {
	if s.err != nil {
		return ERROR
	}
	s.chompws()
	s.start = s.pos
	if s.pos >= len(s.from) {
		return eof
	}
	b := s.from[s.pos]
	if isdigit(b) || (b == '.' && isdigit(s.peekat(1))) {
		return s.lexNumber(l)
	}
	switch b {
	case '\'':
		return s.lexString(l)
	case '"':
		return s.lexQuotedIdent(l)
	case '$':
		return s.lexIndex(l, PARAM)
	case '#':
		return s.lexIndex(l, POSITIONAL)
	}
	if isident(b) {
		return s.lexIdent(l)
	}
	switch b {
	case '=':
		s.pos++
		return EQ
	case '!':
		if s.peekat(1) == '=' {
			s.pos += 2
			return NE
		}
	case '<':
		if s.peekat(1) == '=' {
			s.pos += 2
			return LE
		}
		if s.peekat(1) == '>' {
			s.pos += 2
			return NE
		}
		s.pos++
		return LT
	case '>':
		if s.peekat(1) == '=' {
			s.pos += 2
			return GE
		}
		s.pos++
		return GT
	case '-':
		if s.peekat(1) == '>' {
			s.pos += 2
			return ARROW
		}
		s.notkw = false
		s.pos++
		return int(b)
	case '.':
		// if we encounter a dot,
		// the text *immediately* following this
		// cannot be a keyword
		s.pos++
		s.notkw = true
		return int(b)
	case ',', '*', '+', '/', '%', '(', ')':
		s.notkw = false
		s.pos++
		return int(b)
	}
	return s.errorf(s.pos, "unexpected character %q", b)
}

// lex an identifier and either return it
// as an identifier or a keyword (if it matches one)
func (s *scanner) lexIdent(l *lval) int {
	startpos := s.pos
	s.pos++
	for s.pos < len(s.from) && isident(s.from[s.pos]) {
		s.pos++
	}
	if !s.notkw {
		// don't perform string allocation if we have a keyword
		term := lookupKeyword(s.from[startpos:s.pos])
		if term != -1 {
			if term == AS {
				// the word following AS is
				// always an identifier
				s.chompws()
				s.notkw = true
			}
			return term
		}
	}
	s.notkw = false
	l.str = string(s.from[startpos:s.pos])
	return ID
}

// lexNumber lexes an integer or
// floating-point literal
func (s *scanner) lexNumber(l *lval) int {
	startpos := s.pos
	floatnum := false
	for s.pos < len(s.from) && isdigit(s.from[s.pos]) {
		s.pos++
	}
	if s.pos < len(s.from) && s.from[s.pos] == '.' {
		floatnum = true
		s.pos++
		for s.pos < len(s.from) && isdigit(s.from[s.pos]) {
			s.pos++
		}
	}
	if c := s.peekat(0); c == 'e' || c == 'E' {
		floatnum = true
		s.pos++
		if c := s.peekat(0); c == '+' || c == '-' {
			s.pos++
		}
		if !isdigit(s.peekat(0)) {
			return s.errorf(startpos, "malformed number %q", s.from[startpos:s.pos])
		}
		for s.pos < len(s.from) && isdigit(s.from[s.pos]) {
			s.pos++
		}
	}
	if isident(s.peekat(0)) {
		return s.errorf(startpos, "malformed number %q", s.from[startpos:s.pos+1])
	}
	str := string(s.from[startpos:s.pos])
	if !floatnum {
		i, err := strconv.ParseInt(str, 10, 64)
		if err == nil {
			l.value = expr.Integer(i)
			return NUMBER
		}
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return s.errorf(startpos, "number %q out of range", str)
	}
	l.value = expr.Float(f)
	return NUMBER
}

// lexQuoted lexes text delimited by q,
// where a doubled q stands for itself
func (s *scanner) lexQuoted(q byte) (string, bool) {
	startpos := s.pos
	s.pos++ // skip the opening quote
	var out strings.Builder
	for s.pos < len(s.from) {
		c := s.from[s.pos]
		s.pos++
		if c != q {
			out.WriteByte(c)
			continue
		}
		if s.peekat(0) != q {
			return out.String(), true
		}
		out.WriteByte(q)
		s.pos++
	}
	s.errorf(startpos, "unterminated quoted text")
	return "", false
}

func (s *scanner) lexString(l *lval) int {
	str, ok := s.lexQuoted('\'')
	if !ok {
		return ERROR
	}
	l.str = str
	return STRING
}

func (s *scanner) lexQuotedIdent(l *lval) int {
	str, ok := s.lexQuoted('"')
	if !ok {
		return ERROR
	}
	if str == "" {
		return s.errorf(s.start, "empty quoted identifier")
	}
	s.notkw = false
	l.str = str
	return ID
}

// lexIndex lexes $n and #n
func (s *scanner) lexIndex(l *lval, tok int) int {
	startpos := s.pos
	s.pos++
	for s.pos < len(s.from) && isdigit(s.from[s.pos]) {
		s.pos++
	}
	i, err := strconv.Atoi(string(s.from[startpos+1 : s.pos]))
	if err != nil || i < 1 {
		return s.errorf(startpos, "invalid index %q", s.from[startpos:s.pos])
	}
	l.integer = i
	return tok
}

// Error describes a syntax error
type Error struct {
	Pos int    // offset in the input string
	Msg string // textual description of the error
}

func (e *Error) Error() string {
	return fmt.Sprintf("at position %d: %s", e.Pos, e.Msg)
}
