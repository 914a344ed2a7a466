// Copyright 2020-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lexer turns source bytes into a stream of tokens with source
// positions.
package lexer

import (
	"fmt"

	"github.com/exlang/exc/ast"
)

type Kind int

const (
	Colon Kind = iota
	Def
	Equals
	Fn
	Import
	IntKeyword
	Integer
	Minus
	Name
	Plus
	Print
	RightArrow
	ParenLeft
	ParenRight
	Unexpected
	EOF
)

// Token is a tagged variant: Name and Unexpected carry a string/rune payload,
// Integer carries an int64 value, all others carry no payload.
type Token struct {
	Kind     Kind
	Text     string // set for Name and Unexpected (one rune, or the digits of an integer too large for int64)
	IntValue int64  // set for Integer
	Loc      ast.Location
}

func (t Token) String() string {
	switch t.Kind {
	case Name:
		return fmt.Sprintf("identifier %q", t.Text)
	case Integer:
		return fmt.Sprintf("integer %d", t.IntValue)
	case Unexpected:
		return fmt.Sprintf("unexpected character %q", t.Text)
	case EOF:
		return "end of file"
	default:
		return kindNames[t.Kind]
	}
}

var kindNames = map[Kind]string{
	Colon:      "':'",
	Def:        "'def'",
	Equals:     "'='",
	Fn:         "'fn'",
	Import:     "'import'",
	IntKeyword: "'Int'",
	Minus:      "'-'",
	Plus:       "'+'",
	Print:      "'print'",
	RightArrow: "'->'",
	ParenLeft:  "'('",
	ParenRight: "')'",
	Name:       "an identifier",
	Integer:    "an integer literal",
}

// Describe names a token kind for "expected ..." diagnostics, independent of
// any particular token's payload.
func Describe(k Kind) string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "end of file"
}

var keywords = map[string]Kind{
	"def":    Def,
	"fn":     Fn,
	"import": Import,
	"Int":    IntKeyword,
	"print":  Print,
}
