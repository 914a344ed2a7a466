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

// Package ast defines the abstract syntax tree produced by the parser, the
// stable-identity scheme used to key incremental queries, and the source
// position information attached to every node.
package ast

import "fmt"

// Position is a single point in a source file.
type Position struct {
	Offset int // byte offset, 0-based
	Line   int // 1-based
	Column int // 1-based, counted in runes
}

// Location is a half-open span [Start, End) within File.
type Location struct {
	File  string
	Start Position
	End   Position
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Start.Line, l.Start.Column)
}

// Unknown returns a placeholder location for a file when no more precise
// span is available.
func Unknown(file string) Location {
	return Location{File: file}
}
