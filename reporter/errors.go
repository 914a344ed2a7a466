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

// Package reporter collects and reports diagnostics produced while running
// the compiler pipeline. Every pass returns its diagnostics as values
// alongside its result rather than raising them; this package only defines
// the common shape those values share and a Handler that accumulates them
// for a single compile session.
package reporter

import (
	"errors"
	"fmt"

	"github.com/exlang/exc/ast"
)

// ErrInvalidSource is a sentinel error returned by a compile session when
// one or more diagnostics (of any kind) were reported.
var ErrInvalidSource = errors.New("compile failed: invalid source")

// Kind identifies one of the seven diagnostic kinds from the error taxonomy.
type Kind string

const (
	KindParserExpected             Kind = "ParserExpected"
	KindNameAlreadyInScope         Kind = "NameAlreadyInScope"
	KindImportedNameAlreadyInScope Kind = "ImportedNameAlreadyInScope"
	KindUnknownImportFile          Kind = "UnknownImportFile"
	KindNameNotInScope             Kind = "NameNotInScope"
	KindExpectedType               Kind = "ExpectedType"
	KindRecursiveType              Kind = "RecursiveType"
)

// Diagnostic is an error carrying a diagnostic Kind and the Location that
// caused it. All compiler-produced errors implement this interface.
type Diagnostic interface {
	error
	Kind() Kind
	Loc() ast.Location
	Unwrap() error
}

type diagnostic struct {
	kind       Kind
	loc        ast.Location
	underlying error
}

func (d diagnostic) Error() string {
	return fmt.Sprintf("%s: %v", d.loc, d.underlying)
}

func (d diagnostic) Kind() Kind        { return d.kind }
func (d diagnostic) Loc() ast.Location { return d.loc }
func (d diagnostic) Unwrap() error     { return d.underlying }

var _ Diagnostic = diagnostic{}

// New builds a Diagnostic of the given kind at the given location.
func New(kind Kind, loc ast.Location, format string, args ...interface{}) Diagnostic {
	return diagnostic{kind: kind, loc: loc, underlying: fmt.Errorf(format, args...)}
}

// ParserExpected reports that the parser could not satisfy a grammar rule.
func ParserExpected(loc ast.Location, expected, found string) Diagnostic {
	return New(KindParserExpected, loc, "expected %s, found %s", expected, found)
}

// NameAlreadyInScope reports two `def`s with the same name in one file.
func NameAlreadyInScope(loc ast.Location, name string, previous ast.Location) Diagnostic {
	return New(KindNameAlreadyInScope, loc, "%q is already defined at %s", name, previous)
}

// ImportedNameAlreadyInScope reports an import colliding with an existing binding.
func ImportedNameAlreadyInScope(loc ast.Location, name string, previous ast.Location) Diagnostic {
	return New(KindImportedNameAlreadyInScope, loc, "imported name %q is already defined at %s", name, previous)
}

// UnknownImportFile reports that an imported file could not be read.
func UnknownImportFile(loc ast.Location, fileName string) Diagnostic {
	return New(KindUnknownImportFile, loc, "could not read imported file %q", fileName)
}

// NameNotInScope reports a free variable that is bound nowhere.
func NameNotInScope(loc ast.Location, name string) Diagnostic {
	return New(KindNameNotInScope, loc, "%q is not in scope", name)
}

// ExpectedType reports a unification mismatch.
func ExpectedType(loc ast.Location, expected, actual string) Diagnostic {
	return New(KindExpectedType, loc, "expected type %s but found %s", expected, actual)
}

// RecursiveType reports an occurs-check failure.
func RecursiveType(loc ast.Location, typeVar, other string) Diagnostic {
	return New(KindRecursiveType, loc, "recursive type: %s occurs in %s", typeVar, other)
}

// Errors is an ordered list of diagnostics, in the canonical order they were
// produced. Two runs over the same input always produce the same Errors
// slice in the same order.
type Errors []Diagnostic

// Err returns ErrInvalidSource if the list is non-empty, else nil. This lets
// a caller treat "any diagnostics reported" as a single Go error via errors.Is.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return ErrInvalidSource
}
