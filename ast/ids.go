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
	"fmt"
	"hash/fnv"
)

// TopLevelId is a stable identity for a TopLevelStatement. It is derived
// from the file it appears in, the kind of statement, and (for definitions
// and imports) the name involved, plus a collision counter that disambiguates
// duplicate names within one file. Editing a statement's body without
// changing its name leaves its TopLevelId unchanged; renaming it produces a
// new id and the old one becomes stale.
//
// Print statements have no name, so their identity instead hashes the
// structure of the printed expression (see NewPrintId): editing what is
// printed re-identifies the statement, which is acceptable because prints
// are effectful leaves with no dependents.
type TopLevelId struct {
	file string
	hash uint64
}

// File returns the file this id was derived from.
func (id TopLevelId) File() string { return id.file }

func (id TopLevelId) String() string {
	return fmt.Sprintf("%s#%x", id.file, id.hash)
}

// NewDefinitionId derives a TopLevelId for a `def` statement with the given
// name. collision disambiguates multiple defs with the same name in one file.
func NewDefinitionId(file, name string, collision uint32) TopLevelId {
	return hashId(file, "def", name, collision)
}

// NewImportId derives a TopLevelId for an `import` statement naming the
// given imported file. collision disambiguates duplicate imports.
func NewImportId(file, importedName string, collision uint32) TopLevelId {
	return hashId(file, "import", importedName, collision)
}

// NewPrintId derives a TopLevelId for a `print` statement from a structural
// hash of its expression, since print statements have no name of their own.
func NewPrintId(file string, structuralHash uint64, collision uint32) TopLevelId {
	return hashId(file, "print", fmt.Sprintf("%x", structuralHash), collision)
}

// HashExpression computes a structural hash of an expression tree, ignoring
// ExprIds (which are positional, not structural). It is used to derive
// TopLevelIds for print statements, which have no name of their own.
func HashExpression(e Expression) uint64 {
	h := fnv.New64a()
	hashExprInto(h, e)
	return h.Sum64()
}

func hashExprInto(h interface{ Write([]byte) (int, error) }, e Expression) {
	write := func(b []byte) { _, _ = h.Write(b) }
	switch e := e.(type) {
	case *IntegerLiteral:
		write([]byte("int"))
		write([]byte(fmt.Sprintf("%d", e.Value)))
	case *Variable:
		write([]byte("var"))
		write([]byte(e.Name))
	case *FunctionCall:
		write([]byte("call("))
		hashExprInto(h, e.Function)
		write([]byte(","))
		hashExprInto(h, e.Argument)
		write([]byte(")"))
	case *Lambda:
		write([]byte("fn("))
		write([]byte(e.Parameter))
		write([]byte(")->"))
		hashExprInto(h, e.Body)
	}
}

func hashId(file, kind, key string, collision uint32) TopLevelId {
	h := fnv.New64a()
	_, _ = h.Write([]byte(kind))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key))
	_, _ = h.Write([]byte{0, byte(collision), byte(collision >> 8), byte(collision >> 16), byte(collision >> 24)})
	return TopLevelId{file: file, hash: h.Sum64()}
}

// ExprId is a statement-local identity for an expression node. It is a
// monotonic counter that is reset to zero at the start of every top-level
// statement, so editing one statement never perturbs ExprIds in another.
type ExprId uint32

func (id ExprId) String() string { return fmt.Sprintf("%d", id) }

// ExprIdAllocator hands out successive ExprIds within a single top-level
// statement. A fresh allocator must be created for each statement.
type ExprIdAllocator struct {
	next uint32
}

func (a *ExprIdAllocator) Next() ExprId {
	id := ExprId(a.next)
	a.next++
	return id
}
