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

// Package emit renders a compiled file's statements to the target textual
// form, one line per top-level statement.
package emit

import (
	"fmt"
	"strings"

	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/db"
	"github.com/exlang/exc/parser"
	"github.com/exlang/exc/reporter"
	"github.com/exlang/exc/resolve"
	"github.com/exlang/exc/tables"
	"github.com/exlang/exc/types"
)

// Result is the value of the CompileFile query: the rendered text of file's
// own statements (not its imports'), plus every diagnostic reachable from
// them (parse errors, name resolution errors, type errors).
type Result struct {
	Text   string
	Errors reporter.Errors
}

// CompileFileImpl is the ComputeFunc for tables.CompileFile. For each
// statement it gets Resolve and TypeCheck, not because the rendered text
// needs a type, but so that a later edit changing only a statement's
// resolved names or inferred types still invalidates this file's compiled
// output, and so that those diagnostics surface from a single top-level
// query.
func CompileFileImpl(qc *db.QueryCtx, key any) any {
	file := key.(string)
	res := qc.Get(tables.Parse, file).(*parser.Result)

	var out strings.Builder
	errs := append(reporter.Errors{}, res.Errors...)

	// VisibleDefinitions carries ExportedDefinitions' errors already, so one
	// fetch surfaces both the duplicate-name and the import-collision
	// diagnostics exactly once.
	visible := qc.Get(tables.VisibleDefinitions, file).(*resolve.DefinitionsResult)
	errs = append(errs, visible.Errors...)

	for _, stmt := range res.Statements {
		id := stmt.Id()

		// Resolve(id)'s own errors are already folded into TypeCheck(id)'s
		// Errors (TypeCheckImpl seeds its error list from the same Resolve
		// result); fetching it here too would double-report them. The Get
		// call is kept anyway so this statement's compiled output still
		// depends on, and is invalidated by, its own resolution result even
		// in the Import case, where TypeCheck never touches Resolve at all.
		qc.Get(tables.Resolve, id)

		typeResult := qc.Get(tables.TypeCheck, id).(*types.TypeCheckResult)
		errs = append(errs, typeResult.Errors...)

		renderStatement(&out, stmt)
	}

	return &Result{Text: out.String(), Errors: errs}
}

func renderStatement(out *strings.Builder, stmt ast.TopLevelStatement) {
	switch s := stmt.(type) {
	case *ast.Import:
		fmt.Fprintf(out, "export * from %q\n", s.FileName)
	case *ast.Definition:
		out.WriteString(s.Name)
		out.WriteString(" = ")
		renderExpr(out, s.Body)
		out.WriteString("\n")
	case *ast.Print:
		out.WriteString("print ")
		renderExpr(out, s.Body)
		out.WriteString("\n")
	}
}

// renderExpr renders literals and most variables verbatim; "+"/"-" render as
// curried two-argument closures; an application parenthesizes its function
// side when that side is itself a lambda; lambdas render as single-parameter
// anonymous functions.
func renderExpr(out *strings.Builder, e ast.Expression) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		fmt.Fprintf(out, "%d", e.Value)

	case *ast.Variable:
		switch e.Name {
		case "+":
			out.WriteString("(fn a b -> a + b)")
		case "-":
			out.WriteString("(fn a b -> a - b)")
		default:
			out.WriteString(e.Name)
		}

	case *ast.Lambda:
		fmt.Fprintf(out, "fn %s -> ", e.Parameter)
		renderExpr(out, e.Body)

	case *ast.FunctionCall:
		if _, isLambda := e.Function.(*ast.Lambda); isLambda {
			out.WriteString("(")
			renderExpr(out, e.Function)
			out.WriteString(")")
		} else {
			renderExpr(out, e.Function)
		}
		out.WriteString(" ")
		renderExpr(out, e.Argument)
	}
}
