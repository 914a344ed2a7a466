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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestLexDefinition(t *testing.T) {
	tokens := Lex("input.ex", []byte("def id = fn x -> x"))
	require.Equal(t, []Kind{Def, Name, Equals, Fn, Name, RightArrow, Name, EOF}, kinds(tokens))
	assert.Equal(t, "id", tokens[1].Text)
	assert.Equal(t, "x", tokens[4].Text)
}

func TestLexIntegerAndOperators(t *testing.T) {
	tokens := Lex("input.ex", []byte("print add 2 3"))
	require.Equal(t, []Kind{Print, Name, Integer, Integer, EOF}, kinds(tokens))
	assert.EqualValues(t, 2, tokens[2].IntValue)
	assert.EqualValues(t, 3, tokens[3].IntValue)
}

func TestLexCommentsAreSkipped(t *testing.T) {
	tokens := Lex("input.ex", []byte("def x = 1 // a comment\nprint x"))
	require.Equal(t, []Kind{Def, Name, Equals, Integer, Print, Name, EOF}, kinds(tokens))
}

func TestLexUnexpectedCharacter(t *testing.T) {
	tokens := Lex("input.ex", []byte("def x = 1 @"))
	require.Equal(t, []Kind{Def, Name, Equals, Integer, Unexpected, EOF}, kinds(tokens))
	assert.Equal(t, "@", tokens[4].Text)
}

func TestLexAnnotationArrow(t *testing.T) {
	tokens := Lex("input.ex", []byte("def add: Int -> Int -> Int = fn x y -> x + y"))
	require.Equal(t, []Kind{
		Def, Name, Colon, IntKeyword, RightArrow, IntKeyword, RightArrow, IntKeyword,
		Equals, Fn, Name, Name, RightArrow, Name, Plus, Name, EOF,
	}, kinds(tokens))
}

func TestLocationsTrackLineAndColumn(t *testing.T) {
	tokens := Lex("input.ex", []byte("def x = 1\nprint x"))
	// "print" starts on line 2, column 1.
	var printTok Token
	for _, tok := range tokens {
		if tok.Kind == Print {
			printTok = tok
		}
	}
	assert.Equal(t, 2, printTok.Loc.Start.Line)
	assert.Equal(t, 1, printTok.Loc.Start.Column)
}
