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

// Package types implements Hindley-Milner style type inference: a richer,
// inference-internal Type (adding Error, Unit, and TypeVariable to the
// surface ast.Type), unification over an externalized bindings map, and the
// GetType/TypeCheck queries. Bindings live in an external map keyed by
// TypeVariableID rather than inside mutable cells, so Type stays a plain,
// comparable, serializable value.
package types

import (
	"fmt"

	"github.com/exlang/exc/ast"
)

type Kind int

const (
	KindInt Kind = iota
	KindGeneric
	KindFunction
	KindError
	KindUnit
	KindVar
)

// Type is the inference-internal representation. Only one of Name, Param/Ret,
// or Var is meaningful, depending on Kind.
type Type struct {
	Kind  Kind
	Name  string         // KindGeneric
	Param *Type          // KindFunction
	Ret   *Type          // KindFunction
	Var   TypeVariableID // KindVar
}

func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return "Int"
	case KindGeneric:
		return t.Name
	case KindFunction:
		return fmt.Sprintf("(%s -> %s)", t.Param, t.Ret)
	case KindError:
		return "<error>"
	case KindUnit:
		return "Unit"
	case KindVar:
		return fmt.Sprintf("_%d", t.Var)
	default:
		return "<unknown>"
	}
}

// TypeVariableID identifies an unbound (or since-bound) type variable. Fresh
// ids are drawn from a per-statement counter, mirroring ExprId's scoping:
// changing one statement's body never perturbs another statement's
// variable ids.
type TypeVariableID uint32

// FromAnnotation lifts a surface-syntax ast.Type (as written in a `: type`
// annotation) into the inference-internal Type. Annotations never contain
// type variables; any bare name becomes a (to-be-generalized) Generic.
func FromAnnotation(t *ast.Type) Type {
	switch t.Kind {
	case ast.TypeInt:
		return Type{Kind: KindInt}
	case ast.TypeGeneric:
		return Type{Kind: KindGeneric, Name: t.Name}
	case ast.TypeFunction:
		p := FromAnnotation(t.Parameter)
		r := FromAnnotation(t.ReturnType)
		return Type{Kind: KindFunction, Param: &p, Ret: &r}
	default:
		return Type{Kind: KindError}
	}
}

// Scheme is a (possibly) polymorphic type: a set of quantified type
// variables closed over by Body. An empty Quantified list means the type is
// monomorphic.
type Scheme struct {
	Quantified []TypeVariableID
	Body       Type
}

// Bindings is the externalized substitution built by one run of inference:
// TypeVariableID -> Type. A type variable, once bound, is never re-bound
// (Unbound -> Bound(Type) is monotone).
type Bindings struct {
	m map[TypeVariableID]Type
}

func NewBindings() *Bindings { return &Bindings{m: map[TypeVariableID]Type{}} }

func (b *Bindings) bind(v TypeVariableID, t Type) { b.m[v] = t }

func (b *Bindings) lookup(v TypeVariableID) (Type, bool) {
	t, ok := b.m[v]
	return t, ok
}

// Resolve follows variable bindings one level at a time until it reaches an
// unbound variable or a non-variable type.
func (b *Bindings) Resolve(t Type) Type {
	for t.Kind == KindVar {
		bound, ok := b.lookup(t.Var)
		if !ok {
			return t
		}
		t = bound
	}
	return t
}

// ResolveDeep fully substitutes t and its children, producing a type with no
// bound variables remaining (only unbound ones, if any).
func (b *Bindings) ResolveDeep(t Type) Type {
	t = b.Resolve(t)
	if t.Kind == KindFunction {
		p := b.ResolveDeep(*t.Param)
		r := b.ResolveDeep(*t.Ret)
		return Type{Kind: KindFunction, Param: &p, Ret: &r}
	}
	return t
}
