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
	"io"
)

// PrintStatement writes a debug rendering of a single top-level statement. It
// exists for tests and troubleshooting; it is not part of the compiled output
// and is not reachable from the CLI.
func PrintStatement(w io.Writer, stmt TopLevelStatement) {
	switch s := stmt.(type) {
	case *Import:
		fmt.Fprintf(w, "import %s", s.FileName)
	case *Definition:
		fmt.Fprintf(w, "def %s", s.Name)
		if s.Annotation != nil {
			fmt.Fprint(w, ": ")
			printType(w, s.Annotation)
		}
		fmt.Fprint(w, " = ")
		printExpr(w, s.Body)
	case *Print:
		fmt.Fprint(w, "print ")
		printExpr(w, s.Body)
	}
}

func printExpr(w io.Writer, e Expression) {
	switch e := e.(type) {
	case *IntegerLiteral:
		fmt.Fprintf(w, "%d", e.Value)
	case *Variable:
		fmt.Fprint(w, e.Name)
	case *FunctionCall:
		printExpr(w, e.Function)
		fmt.Fprint(w, " ")
		printExpr(w, e.Argument)
	case *Lambda:
		fmt.Fprintf(w, "fn %s -> ", e.Parameter)
		printExpr(w, e.Body)
	}
}

func printType(w io.Writer, t *Type) {
	switch t.Kind {
	case TypeInt:
		fmt.Fprint(w, "Int")
	case TypeGeneric:
		fmt.Fprint(w, t.Name)
	case TypeFunction:
		printType(w, t.Parameter)
		fmt.Fprint(w, " -> ")
		printType(w, t.ReturnType)
	}
}
