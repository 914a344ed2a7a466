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
	art "github.com/plar/go-adaptive-radix-tree"

	"github.com/exlang/exc/ast"
)

// Definitions is a deterministic, name-ordered map from a definition's name
// to its TopLevelId. It is backed by an adaptive radix tree so that
// iteration (and therefore every diagnostic derived from iterating it) is
// always in the same byte order for the same set of names, regardless of
// insertion order.
type Definitions struct {
	tree art.Tree
}

// NewDefinitions returns an empty, ordered name table.
func NewDefinitions() *Definitions {
	return &Definitions{tree: art.New()}
}

// Get looks up name, reporting whether it is present.
func (d *Definitions) Get(name string) (ast.TopLevelId, bool) {
	v, found := d.tree.Search(art.Key(name))
	if !found {
		return ast.TopLevelId{}, false
	}
	return v.(ast.TopLevelId), true
}

// Insert binds name to id, returning the previous id bound to name (if any).
func (d *Definitions) Insert(name string, id ast.TopLevelId) (ast.TopLevelId, bool) {
	old, replaced := d.tree.Insert(art.Key(name), id)
	if !replaced {
		return ast.TopLevelId{}, false
	}
	return old.(ast.TopLevelId), true
}

// ForEach visits every (name, id) pair in ascending name order.
func (d *Definitions) ForEach(fn func(name string, id ast.TopLevelId)) {
	d.tree.ForEach(func(node art.Node) bool {
		fn(string(node.Key()), node.Value().(ast.TopLevelId))
		return true
	})
}

// Len reports the number of distinct names bound.
func (d *Definitions) Len() int { return d.tree.Size() }
