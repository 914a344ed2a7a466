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

// Package exc is an incremental, query-driven compiler for a tiny
// purely-functional language of integers, named definitions, lambdas,
// application, and cross-file imports.
//
// Compiler wires every pass package's query into one db.Engine: a single
// struct that owns the engine and exposes the handful of operations (set a
// file's text, compile a file, read back diagnostics) external callers need,
// while every pass-to-pass dependency is recorded automatically by the
// engine itself.
package exc

import (
	"context"

	"github.com/exlang/exc/db"
	"github.com/exlang/exc/emit"
	"github.com/exlang/exc/parser"
	"github.com/exlang/exc/reporter"
	"github.com/exlang/exc/resolve"
	"github.com/exlang/exc/tables"
	"github.com/exlang/exc/types"
)

// Compiler owns one query engine instance and the SourceFile inputs fed
// into it. It is the only type most callers of this module need.
type Compiler struct {
	engine *db.Engine
}

// New builds a Compiler with every query kind registered but no source
// files set yet.
func New() *Compiler {
	e := db.NewEngine()

	e.RegisterInput(tables.SourceFile)

	e.RegisterDerived(tables.Parse, parser.ParseImpl)
	e.RegisterDerived(tables.GetStatement, parser.GetStatementImpl)
	e.RegisterDerived(tables.ExportedDefinitions, resolve.ExportedDefinitionsImpl)
	e.RegisterDerived(tables.VisibleDefinitions, resolve.VisibleDefinitionsImpl)
	e.RegisterDerived(tables.GetImports, resolve.GetImportsImpl)
	e.RegisterDerived(tables.Resolve, resolve.Impl)
	e.RegisterDerived(tables.GetType, types.GetTypeImpl)
	e.RegisterDerived(tables.TypeCheck, types.TypeCheckImpl)
	e.RegisterDerived(tables.CompileFile, emit.CompileFileImpl)

	return &Compiler{engine: e}
}

// Engine exposes the underlying query engine, for the crawler and for
// persist.go, both of which need to drive it directly rather than through
// one of the typed helpers below.
func (c *Compiler) Engine() *db.Engine { return c.engine }

// SetSourceFile records (or updates) the text of file. Per db.Engine's
// contract this fails if called while any query is executing anywhere on
// the engine; the crawler is responsible for sequencing its mutation phases
// around its concurrent read phases.
func (c *Compiler) SetSourceFile(file, text string) error {
	return c.engine.SetInput(tables.SourceFile, file, text)
}

// CompileFile renders file's own statements (not its imports') to text,
// returning every diagnostic reachable from them.
func (c *Compiler) CompileFile(ctx context.Context, file string) (string, reporter.Errors) {
	qc := c.engine.Query(ctx)
	result := qc.Get(tables.CompileFile, file).(*emit.Result)
	return result.Text, result.Errors
}

// Revision returns the engine's current global revision counter, mostly
// useful for tests asserting on minimal recomputation.
func (c *Compiler) Revision() uint64 { return c.engine.Revision() }
