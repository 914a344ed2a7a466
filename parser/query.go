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

package parser

import (
	"fmt"

	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/db"
	"github.com/exlang/exc/tables"
)

// ParseImpl is the ComputeFunc for tables.Parse. key is a file name; its
// text is fetched from tables.SourceFile, so editing a file's text
// automatically invalidates its Parse result (and nothing else directly).
func ParseImpl(qc *db.QueryCtx, key any) any {
	file := key.(string)
	text := qc.Get(tables.SourceFile, file).(string)
	return Parse(file, []byte(text))
}

// GetStatementImpl is the ComputeFunc for tables.GetStatement. It looks the
// id up in its owning file's (memoized) parse result.
func GetStatementImpl(qc *db.QueryCtx, key any) any {
	id := key.(ast.TopLevelId)
	res := qc.Get(tables.Parse, id.File()).(*Result)
	stmt, ok := res.Statement(id)
	if !ok {
		panic(fmt.Sprintf("parser: no statement for id %v in file %q", id, id.File()))
	}
	return stmt
}
