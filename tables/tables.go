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

// Package tables assigns every query kind its stable numeric id, used to tag
// query tables in the serialized cache, and nothing else. It exists as a
// dependency-free leaf so that every pass package (resolve, types, emit) can
// issue qc.Get calls against the other passes' query kinds without importing
// the root wiring package (which imports all of them), avoiding an import
// cycle.
package tables

import "github.com/exlang/exc/db"

const (
	SourceFile db.TableID = iota
	Parse
	VisibleDefinitions
	ExportedDefinitions
	GetImports
	Resolve
	GetStatement
	GetType
	TypeCheck
	CompileFile
)
