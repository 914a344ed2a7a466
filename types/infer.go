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

package types

import (
	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/db"
	"github.com/exlang/exc/parser"
	"github.com/exlang/exc/reporter"
	"github.com/exlang/exc/resolve"
	"github.com/exlang/exc/tables"
)

// binOpType is the type of the built-in + and - operators: Int -> Int ->
// Int, curried the same way the parser desugars arithmetic.
func binOpType() Type {
	ret := Type{Kind: KindInt}
	inner := Type{Kind: KindFunction, Param: &ret, Ret: &ret}
	outer := Type{Kind: KindInt}
	return Type{Kind: KindFunction, Param: &outer, Ret: &inner}
}

// TypeCheckResult is the value of the TypeCheck query: a fully-substituted
// type for every expression in the statement's body, plus any ExpectedType
// or RecursiveType diagnostics found while unifying.
type TypeCheckResult struct {
	Types     map[ast.ExprId]Type
	FinalType Type
	Errors    reporter.Errors
}

// TypeCheckImpl is the ComputeFunc for tables.TypeCheck.
func TypeCheckImpl(qc *db.QueryCtx, key any) any {
	id := key.(ast.TopLevelId)
	stmt := qc.Get(tables.GetStatement, id).(ast.TopLevelStatement)

	var body ast.Expression
	switch s := stmt.(type) {
	case *ast.Definition:
		body = s.Body
	case *ast.Print:
		body = s.Body
	case *ast.Import:
		return &TypeCheckResult{Types: map[ast.ExprId]Type{}}
	}

	res := qc.Get(tables.Parse, id.File()).(*parser.Result)
	origins := qc.Get(tables.Resolve, id).(*resolve.Result)

	inf := &inferencer{
		qc:       qc,
		bindings: NewBindings(),
		types:    map[ast.ExprId]Type{},
		origins:  origins.Origins,
		params:   map[ast.ExprId]Type{},
		parsed:   res,
		stmtId:   id,
		errors:   append(reporter.Errors{}, origins.Errors...),
	}

	final := inf.infer(body)

	if def, ok := stmt.(*ast.Definition); ok && def.Annotation != nil {
		inf.unify(final, FromAnnotation(def.Annotation), inf.locate(body.ExprId()))
	}

	finalTypes := make(map[ast.ExprId]Type, len(inf.types))
	for exprId, t := range inf.types {
		finalTypes[exprId] = inf.bindings.ResolveDeep(t)
	}

	return &TypeCheckResult{
		Types:     finalTypes,
		FinalType: inf.bindings.ResolveDeep(final),
		Errors:    inf.errors,
	}
}

// GetTypeImpl is the ComputeFunc for tables.GetType: the externally visible,
// possibly-generalized type of a top-level statement.
//
// Generalization closes over every type variable still free in a
// definition's inferred body type, since a top-level definition has no
// enclosing monomorphic context to exclude variables from. Polymorphic
// recursion is unsupported: a definition that refers to itself blocks on its
// own in-flight GetType or TypeCheck query, the same way an unconditional
// infinite loop would.
func GetTypeImpl(qc *db.QueryCtx, key any) any {
	id := key.(ast.TopLevelId)
	stmt := qc.Get(tables.GetStatement, id).(ast.TopLevelStatement)

	def, ok := stmt.(*ast.Definition)
	if !ok {
		return Scheme{Body: Type{Kind: KindUnit}}
	}

	if def.Annotation != nil {
		return generalizeClosed(FromAnnotation(def.Annotation))
	}

	tc := qc.Get(tables.TypeCheck, id).(*TypeCheckResult)
	return generalize(tc.FinalType)
}

// generalizeClosed quantifies over every named generic appearing in an
// explicit annotation (annotations never contain fresh inference variables):
// each distinct name becomes one quantified variable.
func generalizeClosed(t Type) Scheme {
	names := map[string]TypeVariableID{}
	var sub func(Type) Type
	sub = func(t Type) Type {
		switch t.Kind {
		case KindGeneric:
			if _, ok := names[t.Name]; !ok {
				names[t.Name] = TypeVariableID(len(names))
			}
			return Type{Kind: KindVar, Var: names[t.Name]}
		case KindFunction:
			p, r := sub(*t.Param), sub(*t.Ret)
			return Type{Kind: KindFunction, Param: &p, Ret: &r}
		}
		return t
	}
	return generalize(sub(t))
}

// generalize quantifies over every inference variable still free in t.
func generalize(t Type) Scheme {
	seen := map[TypeVariableID]bool{}
	var quantified []TypeVariableID
	var walk func(Type)
	walk = func(t Type) {
		switch t.Kind {
		case KindVar:
			if !seen[t.Var] {
				seen[t.Var] = true
				quantified = append(quantified, t.Var)
			}
		case KindFunction:
			walk(*t.Param)
			walk(*t.Ret)
		}
	}
	walk(t)
	return Scheme{Quantified: quantified, Body: t}
}

type inferencer struct {
	qc       *db.QueryCtx
	bindings *Bindings
	types    map[ast.ExprId]Type
	origins  map[ast.ExprId]resolve.Origin
	params   map[ast.ExprId]Type // Lambda ExprId -> the fresh var standing for its parameter
	parsed   *parser.Result
	stmtId   ast.TopLevelId
	nextVar  uint32
	errors   reporter.Errors
}

func (inf *inferencer) fresh() Type {
	v := TypeVariableID(inf.nextVar)
	inf.nextVar++
	return Type{Kind: KindVar, Var: v}
}

func (inf *inferencer) locate(id ast.ExprId) ast.Location {
	return inf.parsed.ExprLocation(inf.stmtId, id)
}

func (inf *inferencer) infer(e ast.Expression) Type {
	switch e := e.(type) {
	case *ast.IntegerLiteral:
		t := Type{Kind: KindInt}
		inf.types[e.ID] = t
		return t

	case *ast.Variable:
		return inf.inferVariable(e)

	case *ast.Lambda:
		paramType := inf.fresh()
		inf.params[e.ID] = paramType
		bodyType := inf.infer(e.Body)
		t := Type{Kind: KindFunction, Param: &paramType, Ret: &bodyType}
		inf.types[e.ID] = t
		return t

	case *ast.FunctionCall:
		fnType := inf.infer(e.Function)
		argType := inf.infer(e.Argument)
		retType := inf.fresh()
		expected := Type{Kind: KindFunction, Param: &argType, Ret: &retType}
		inf.unify(fnType, expected, inf.locate(e.ID))
		inf.types[e.ID] = retType
		return retType
	}
	t := Type{Kind: KindError}
	inf.types[e.ExprId()] = t
	return t
}

func (inf *inferencer) inferVariable(v *ast.Variable) Type {
	if v.Name == "+" || v.Name == "-" {
		t := binOpType()
		inf.types[v.ID] = t
		return t
	}

	origin, ok := inf.origins[v.ID]
	if !ok {
		// Already reported as NameNotInScope by name resolution; suppress
		// cascading type errors at this use.
		t := Type{Kind: KindError}
		inf.types[v.ID] = t
		return t
	}

	var t Type
	switch origin.Kind {
	case resolve.OriginParameter:
		t = inf.params[origin.Parameter]
	case resolve.OriginTopLevel:
		scheme := inf.qc.Get(tables.GetType, origin.TopLevel).(Scheme)
		t = inf.instantiate(scheme)
	}
	inf.types[v.ID] = t
	return t
}

// instantiate replaces every quantified variable of scheme with a fresh one,
// leaving unrelated (already-concrete) parts untouched.
func (inf *inferencer) instantiate(scheme Scheme) Type {
	if len(scheme.Quantified) == 0 {
		return scheme.Body
	}
	subst := make(map[TypeVariableID]Type, len(scheme.Quantified))
	for _, v := range scheme.Quantified {
		subst[v] = inf.fresh()
	}
	var sub func(Type) Type
	sub = func(t Type) Type {
		switch t.Kind {
		case KindVar:
			if fresh, ok := subst[t.Var]; ok {
				return fresh
			}
			return t
		case KindFunction:
			p := sub(*t.Param)
			r := sub(*t.Ret)
			return Type{Kind: KindFunction, Param: &p, Ret: &r}
		default:
			return t
		}
	}
	return sub(scheme.Body)
}

// unify makes a and b equal under inf.bindings, reporting ExpectedType on a
// shape mismatch and RecursiveType on a failed occurs check. Either side
// being KindError suppresses further diagnostics at this call, so one bad
// name doesn't cascade into unrelated errors.
func (inf *inferencer) unify(a, b Type, loc ast.Location) {
	a = inf.bindings.Resolve(a)
	b = inf.bindings.Resolve(b)

	if a.Kind == KindError || b.Kind == KindError {
		return
	}

	if a.Kind == KindVar {
		inf.bindVar(a.Var, b, loc)
		return
	}
	if b.Kind == KindVar {
		inf.bindVar(b.Var, a, loc)
		return
	}

	switch {
	case a.Kind == KindInt && b.Kind == KindInt:
		return
	case a.Kind == KindUnit && b.Kind == KindUnit:
		return
	case a.Kind == KindGeneric && b.Kind == KindGeneric && a.Name == b.Name:
		return
	case a.Kind == KindFunction && b.Kind == KindFunction:
		inf.unify(*a.Param, *b.Param, loc)
		inf.unify(*a.Ret, *b.Ret, loc)
		return
	default:
		inf.errors = append(inf.errors, reporter.ExpectedType(loc, b.String(), a.String()))
	}
}

func (inf *inferencer) bindVar(v TypeVariableID, t Type, loc ast.Location) {
	t = inf.bindings.Resolve(t)
	if t.Kind == KindVar && t.Var == v {
		return // unifying a variable with itself
	}
	if inf.occurs(v, t) {
		inf.errors = append(inf.errors, reporter.RecursiveType(loc, Type{Kind: KindVar, Var: v}.String(), t.String()))
		return
	}
	inf.bindings.bind(v, t)
}

func (inf *inferencer) occurs(v TypeVariableID, t Type) bool {
	t = inf.bindings.Resolve(t)
	switch t.Kind {
	case KindVar:
		return t.Var == v
	case KindFunction:
		return inf.occurs(v, *t.Param) || inf.occurs(v, *t.Ret)
	default:
		return false
	}
}
