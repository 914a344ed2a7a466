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
	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/db"
	"github.com/exlang/exc/parser"
	"github.com/exlang/exc/reporter"
	"github.com/exlang/exc/tables"
)

// OriginKind distinguishes a free variable bound to a top-level definition
// from one bound to an enclosing lambda's parameter.
type OriginKind int

const (
	OriginTopLevel OriginKind = iota
	OriginParameter
)

// Origin records where a single identifier use resolves to.
type Origin struct {
	Kind      OriginKind
	TopLevel  ast.TopLevelId // set when Kind == OriginTopLevel
	Parameter ast.ExprId     // set when Kind == OriginParameter: the Lambda node that introduced it
}

// Result is the value of the Resolve query: one Origin per free variable use
// inside the statement, plus any NameNotInScope diagnostics.
type Result struct {
	Origins map[ast.ExprId]Origin
	Errors  reporter.Errors
}

type paramFrame struct {
	name string
	id   ast.ExprId
}

// Impl is the ComputeFunc for tables.Resolve.
func Impl(qc *db.QueryCtx, key any) any {
	id := key.(ast.TopLevelId)
	stmt := qc.Get(tables.GetStatement, id).(ast.TopLevelStatement)
	file := id.File()
	res := qc.Get(tables.Parse, file).(*parser.Result)
	visible := qc.Get(tables.VisibleDefinitions, file).(*DefinitionsResult)

	r := &resolver{id: id, parsed: res, visible: visible.Names, origins: map[ast.ExprId]Origin{}}

	switch s := stmt.(type) {
	case *ast.Definition:
		r.walk(s.Body)
	case *ast.Print:
		r.walk(s.Body)
	case *ast.Import:
		// no expression to resolve
	}

	return &Result{Origins: r.origins, Errors: r.errors}
}

type resolver struct {
	id      ast.TopLevelId
	parsed  *parser.Result
	visible *Definitions
	stack   []paramFrame
	origins map[ast.ExprId]Origin
	errors  reporter.Errors
}

func (r *resolver) walk(e ast.Expression) {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		// leaf, nothing to resolve

	case *ast.Variable:
		r.resolveVariable(e)

	case *ast.FunctionCall:
		r.walk(e.Function)
		r.walk(e.Argument)

	case *ast.Lambda:
		r.stack = append(r.stack, paramFrame{name: e.Parameter, id: e.ExprId()})
		r.walk(e.Body)
		r.stack = r.stack[:len(r.stack)-1] // save-and-restore shadowing
	}
}

func (r *resolver) resolveVariable(v *ast.Variable) {
	if v.Name == "+" || v.Name == "-" {
		// built-in operators are not required to resolve to a definition
		return
	}
	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].name == v.Name {
			r.origins[v.ID] = Origin{Kind: OriginParameter, Parameter: r.stack[i].id}
			return
		}
	}
	if id, ok := r.visible.Get(v.Name); ok {
		r.origins[v.ID] = Origin{Kind: OriginTopLevel, TopLevel: id}
		return
	}
	r.errors = append(r.errors, reporter.NameNotInScope(r.parsed.ExprLocation(r.id, v.ID), v.Name))
}
