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

package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/db"
	"github.com/exlang/exc/parser"
	"github.com/exlang/exc/tables"
)

func newResolveTestEngine() *db.Engine {
	e := newTestEngine()
	e.RegisterDerived(tables.GetStatement, parser.GetStatementImpl)
	e.RegisterDerived(tables.Resolve, Impl)
	return e
}

func TestResolveBindsParameterBeforeGlobal(t *testing.T) {
	e := newResolveTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex", "def x = 1\ndef f = fn x -> x"))

	id := ast.NewDefinitionId("input.ex", "f", 0)
	res := e.Query(context.Background()).Get(tables.Resolve, id).(*Result)
	assert.Empty(t, res.Errors)

	var sawParameter bool
	for _, origin := range res.Origins {
		if origin.Kind == OriginParameter {
			sawParameter = true
		}
	}
	assert.True(t, sawParameter, "the lambda's own x must shadow the global def x")
}

func TestResolveReportsNameNotInScope(t *testing.T) {
	e := newResolveTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex", "def y = z"))

	id := ast.NewDefinitionId("input.ex", "y", 0)
	res := e.Query(context.Background()).Get(tables.Resolve, id).(*Result)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "NameNotInScope", string(res.Errors[0].Kind()))
}

func TestResolveIgnoresBuiltinOperators(t *testing.T) {
	e := newResolveTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex", "def add = fn x y -> x + y"))

	id := ast.NewDefinitionId("input.ex", "add", 0)
	res := e.Query(context.Background()).Get(tables.Resolve, id).(*Result)
	assert.Empty(t, res.Errors)
}

func TestResolveRestoresShadowingAfterLambda(t *testing.T) {
	// (fn x -> x) plus a later reference to a global x must see the global,
	// not a stale parameter binding left over from the lambda.
	e := newResolveTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex",
		"def x = 1\ndef f = (fn x -> x) x"))

	id := ast.NewDefinitionId("input.ex", "f", 0)
	res := e.Query(context.Background()).Get(tables.Resolve, id).(*Result)
	assert.Empty(t, res.Errors)

	var sawTopLevel bool
	for _, origin := range res.Origins {
		if origin.Kind == OriginTopLevel {
			sawTopLevel = true
		}
	}
	assert.True(t, sawTopLevel, "the outer argument x must resolve to the top-level def, not the lambda's parameter")
}
