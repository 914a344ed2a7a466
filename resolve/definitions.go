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

// Package resolve computes, per file, which definitions it exports and
// which it can see (its own plus its imports'), and binds every identifier
// use in a statement to the definition or parameter that introduces it.
package resolve

import (
	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/db"
	"github.com/exlang/exc/parser"
	"github.com/exlang/exc/reporter"
	"github.com/exlang/exc/tables"
)

// DefinitionsResult is the value of both the ExportedDefinitions and
// VisibleDefinitions queries: a deterministic name table plus the
// diagnostics encountered while building it.
type DefinitionsResult struct {
	Names  *Definitions
	Errors reporter.Errors
}

// Import is one entry of the GetImports query's result: the file named by
// an `import` statement and the location of that statement.
type Import struct {
	File string
	Loc  ast.Location
}

// ExportedDefinitionsImpl is the ComputeFunc for tables.ExportedDefinitions.
// It collects every `def` in file, keeping the first of any duplicate name
// and reporting the rest.
func ExportedDefinitionsImpl(qc *db.QueryCtx, key any) any {
	file := key.(string)
	res := qc.Get(tables.Parse, file).(*parser.Result)

	names := NewDefinitions()
	var errs reporter.Errors
	for _, stmt := range res.Statements {
		def, ok := stmt.(*ast.Definition)
		if !ok {
			continue
		}
		if prev, exists := names.Get(def.Name); exists {
			errs = append(errs, reporter.NameAlreadyInScope(res.Location(def.ID), def.Name, res.Location(prev)))
			continue
		}
		names.Insert(def.Name, def.ID)
	}
	return &DefinitionsResult{Names: names, Errors: errs}
}

// VisibleDefinitionsImpl is the ComputeFunc for tables.VisibleDefinitions.
// It starts from the file's own exports, then merges in each import's
// exports, reporting a collision for any name that an import shadows
// (whether the existing binding was local or from an earlier import).
func VisibleDefinitionsImpl(qc *db.QueryCtx, key any) any {
	file := key.(string)
	exported := qc.Get(tables.ExportedDefinitions, file).(*DefinitionsResult)

	names := NewDefinitions()
	errs := append(reporter.Errors{}, exported.Errors...)
	exported.Names.ForEach(func(name string, id ast.TopLevelId) {
		names.Insert(name, id)
	})

	imports := qc.Get(tables.GetImports, file).([]Import)
	for _, imp := range imports {
		imported := qc.Get(tables.ExportedDefinitions, imp.File).(*DefinitionsResult)
		imported.Names.ForEach(func(name string, id ast.TopLevelId) {
			if prev, exists := names.Get(name); exists {
				errs = append(errs, reporter.ImportedNameAlreadyInScope(imp.Loc, name, locationOf(qc, prev)))
				return
			}
			names.Insert(name, id)
		})
	}
	return &DefinitionsResult{Names: names, Errors: errs}
}

// GetImportsImpl is the ComputeFunc for tables.GetImports. Duplicate
// imports of the same file are permitted and left undeduplicated here; the
// dependency crawler deduplicates by file name.
func GetImportsImpl(qc *db.QueryCtx, key any) any {
	file := key.(string)
	res := qc.Get(tables.Parse, file).(*parser.Result)

	var out []Import
	for _, stmt := range res.Statements {
		imp, ok := stmt.(*ast.Import)
		if !ok {
			continue
		}
		out = append(out, Import{File: imp.FileName + ".ex", Loc: res.Location(imp.ID)})
	}
	return out
}

// locationOf finds the defining location of a TopLevelId by re-parsing its
// owning file through the query engine (cheap: it's memoized).
func locationOf(qc *db.QueryCtx, id ast.TopLevelId) ast.Location {
	res := qc.Get(tables.Parse, id.File()).(*parser.Result)
	return res.Location(id)
}
