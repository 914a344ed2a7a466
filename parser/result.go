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

// Package parser turns a token stream into an AST with per-statement
// metadata, recovering from errors at statement boundaries.
package parser

import (
	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/reporter"
)

// StatementData is per-TopLevelId metadata recorded while parsing: the
// statement's own location, plus a location for every ExprId that appears
// within it.
type StatementData struct {
	Location      ast.Location
	ExprLocations map[ast.ExprId]ast.Location
}

// Result is the output of parsing one file.
type Result struct {
	FileName     string
	Statements   []ast.TopLevelStatement
	Errors       reporter.Errors
	TopLevelData map[ast.TopLevelId]StatementData
}

// Location returns the location recorded for id, or an unknown location if
// id is not present (which should not happen for an id obtained from this
// same Result).
func (r *Result) Location(id ast.TopLevelId) ast.Location {
	if d, ok := r.TopLevelData[id]; ok {
		return d.Location
	}
	return ast.Unknown(r.FileName)
}

// ExprLocation returns the location of a given expression within the given
// top-level statement.
func (r *Result) ExprLocation(id ast.TopLevelId, expr ast.ExprId) ast.Location {
	if d, ok := r.TopLevelData[id]; ok {
		if loc, ok := d.ExprLocations[expr]; ok {
			return loc
		}
	}
	return ast.Unknown(r.FileName)
}

// Statement returns the single statement with the given id, if present.
func (r *Result) Statement(id ast.TopLevelId) (ast.TopLevelStatement, bool) {
	for _, s := range r.Statements {
		if s.Id() == id {
			return s, true
		}
	}
	return nil, false
}
