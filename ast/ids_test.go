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

package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefinitionIdStableAcrossBodyEdits(t *testing.T) {
	// A TopLevelId is derived from (file, kind, name, collision), never from
	// the body, so editing a definition's body without touching its name
	// must leave its id unchanged.
	before := NewDefinitionId("input.ex", "add", 0)
	after := NewDefinitionId("input.ex", "add", 0)
	assert.Equal(t, before, after)
}

func TestDefinitionIdChangesWithName(t *testing.T) {
	a := NewDefinitionId("input.ex", "add", 0)
	b := NewDefinitionId("input.ex", "addOne", 0)
	assert.NotEqual(t, a, b)
}

func TestCollisionCounterDisambiguatesDuplicates(t *testing.T) {
	first := NewDefinitionId("input.ex", "x", 0)
	second := NewDefinitionId("input.ex", "x", 1)
	assert.NotEqual(t, first, second)
}

func TestPrintIdIsStructuralHashOfExpression(t *testing.T) {
	e1 := &FunctionCall{Function: &Variable{Name: "f", ID: 0}, Argument: &IntegerLiteral{Value: 5, ID: 1}, ID: 2}
	e2 := &FunctionCall{Function: &Variable{Name: "f", ID: 0}, Argument: &IntegerLiteral{Value: 5, ID: 1}, ID: 2}
	assert.Equal(t, HashExpression(e1), HashExpression(e2))

	e3 := &FunctionCall{Function: &Variable{Name: "f", ID: 0}, Argument: &IntegerLiteral{Value: 6, ID: 1}, ID: 2}
	assert.NotEqual(t, HashExpression(e1), HashExpression(e3))
}

func TestPrintIdIgnoresExprIdsOnlyStructure(t *testing.T) {
	// ExprIds are positional within a statement and reset per-statement;
	// they must not affect a print statement's structural identity.
	e1 := &Variable{Name: "x", ID: 0}
	e2 := &Variable{Name: "x", ID: 17}
	assert.Equal(t, HashExpression(e1), HashExpression(e2))
}

func TestExprIdAllocatorIsMonotonicPerStatement(t *testing.T) {
	a := &ExprIdAllocator{}
	first := a.Next()
	second := a.Next()
	assert.Equal(t, ExprId(0), first)
	assert.Equal(t, ExprId(1), second)

	// A fresh allocator for the next statement starts over at zero.
	b := &ExprIdAllocator{}
	assert.Equal(t, ExprId(0), b.Next())
}
