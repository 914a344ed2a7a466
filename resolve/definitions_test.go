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

// newTestEngine wires just enough of the query pipeline (SourceFile, Parse,
// ExportedDefinitions, VisibleDefinitions, GetImports) to exercise this
// package's queries in isolation, without the resolver/inferencer/emitter
// layers above it.
func newTestEngine() *db.Engine {
	e := db.NewEngine()
	e.RegisterInput(tables.SourceFile)
	e.RegisterDerived(tables.Parse, parser.ParseImpl)
	e.RegisterDerived(tables.ExportedDefinitions, ExportedDefinitionsImpl)
	e.RegisterDerived(tables.VisibleDefinitions, VisibleDefinitionsImpl)
	e.RegisterDerived(tables.GetImports, GetImportsImpl)
	return e
}

func TestExportedDefinitionsKeepsFirstOfDuplicateName(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex", "def x = 1\ndef x = 2"))

	res := e.Query(context.Background()).Get(tables.ExportedDefinitions, "input.ex").(*DefinitionsResult)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "NameAlreadyInScope", string(res.Errors[0].Kind()))
	assert.Equal(t, 1, res.Names.Len())
}

func TestExportedDefinitionsOrderedDeterministically(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex", "def zebra = 1\ndef apple = 2\ndef mango = 3"))

	res := e.Query(context.Background()).Get(tables.ExportedDefinitions, "input.ex").(*DefinitionsResult)
	var out []string
	res.Names.ForEach(func(name string, _ ast.TopLevelId) { out = append(out, name) })
	assert.Equal(t, []string{"apple", "mango", "zebra"}, out)
}

func TestVisibleDefinitionsMergesImports(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "lib.ex", "def helper = 1"))
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex", "import lib\ndef main = helper"))

	res := e.Query(context.Background()).Get(tables.VisibleDefinitions, "input.ex").(*DefinitionsResult)
	assert.Empty(t, res.Errors)
	_, ok := res.Names.Get("helper")
	assert.True(t, ok)
	_, ok = res.Names.Get("main")
	assert.True(t, ok)
}

func TestVisibleDefinitionsReportsImportCollision(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "lib.ex", "def shared = 1"))
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex", "import lib\ndef shared = 2"))

	res := e.Query(context.Background()).Get(tables.VisibleDefinitions, "input.ex").(*DefinitionsResult)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "ImportedNameAlreadyInScope", string(res.Errors[0].Kind()))
}

func TestGetImportsDoesNotDeduplicate(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.SetInput(tables.SourceFile, "lib.ex", "def x = 1"))
	require.NoError(t, e.SetInput(tables.SourceFile, "input.ex", "import lib\nimport lib\ndef y = 1"))

	imports := e.Query(context.Background()).Get(tables.GetImports, "input.ex").([]Import)
	assert.Len(t, imports, 2)
}
