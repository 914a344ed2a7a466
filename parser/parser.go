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
	"github.com/exlang/exc/ast"
	"github.com/exlang/exc/lexer"
	"github.com/exlang/exc/reporter"
)

// Parse lexes and parses a full file, recovering at statement boundaries so
// a single malformed statement does not abort the whole parse.
func Parse(file string, text []byte) *Result {
	p := &parser{
		file:   file,
		tokens: lexer.Lex(file, text),
		data:   map[ast.TopLevelId]StatementData{},
	}
	return p.parseProgram()
}

type parser struct {
	file   string
	tokens []lexer.Token
	pos    int

	errors reporter.Errors
	data   map[ast.TopLevelId]StatementData

	// collision counters for identity disambiguation, keyed by name (or, for
	// prints, by the expression's structural hash).
	defCollisions    map[string]uint32
	importCollisions map[string]uint32
	printCollisions  map[uint64]uint32

	// per-statement state, reset by withStatement.
	ids  *ast.ExprIdAllocator
	locs map[ast.ExprId]ast.Location
}

func (p *parser) peek() lexer.Token { return p.tokens[p.pos] }

func (p *parser) advance() lexer.Token {
	t := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *parser) at(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *parser) expect(k lexer.Kind) (lexer.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.errors = append(p.errors, reporter.ParserExpected(p.peek().Loc, lexer.Describe(k), p.peek().String()))
	return lexer.Token{}, false
}

// canStartTopLevel reports whether k can begin a new top-level statement,
// used both for recovery and for rejecting stray tokens between statements.
func canStartTopLevel(k lexer.Kind) bool {
	return k == lexer.Def || k == lexer.Import || k == lexer.Print
}

func (p *parser) recover() {
	for !p.at(lexer.EOF) && !canStartTopLevel(p.peek().Kind) {
		p.advance()
	}
}

func (p *parser) parseProgram() *Result {
	if p.defCollisions == nil {
		p.defCollisions = map[string]uint32{}
		p.importCollisions = map[string]uint32{}
		p.printCollisions = map[uint64]uint32{}
	}
	var stmts []ast.TopLevelStatement
	for !p.at(lexer.EOF) {
		if !canStartTopLevel(p.peek().Kind) {
			p.errors = append(p.errors, reporter.ParserExpected(p.peek().Loc, "'def', 'import', or 'print'", p.peek().String()))
			p.recover()
			continue
		}
		if s := p.parseTopLevelStatement(); s != nil {
			stmts = append(stmts, s)
		}
	}
	return &Result{FileName: p.file, Statements: stmts, Errors: p.errors, TopLevelData: p.data}
}

// withStatement resets per-statement ExprId allocation, runs fn, and records
// the resulting location/expr-location metadata under id.
func (p *parser) withStatement(id ast.TopLevelId, start lexer.Token, fn func()) {
	p.ids = &ast.ExprIdAllocator{}
	p.locs = map[ast.ExprId]ast.Location{}
	fn()
	end := p.tokens[p.pos]
	p.data[id] = StatementData{
		Location:      ast.Location{File: p.file, Start: start.Loc.Start, End: end.Loc.Start},
		ExprLocations: p.locs,
	}
}

func (p *parser) newExprId(loc ast.Location) ast.ExprId {
	id := p.ids.Next()
	p.locs[id] = loc
	return id
}

func (p *parser) parseTopLevelStatement() ast.TopLevelStatement {
	switch p.peek().Kind {
	case lexer.Import:
		return p.parseImport()
	case lexer.Print:
		return p.parsePrint()
	case lexer.Def:
		return p.parseDefinition()
	default:
		return nil
	}
}

func (p *parser) parseImport() ast.TopLevelStatement {
	start := p.advance() // 'import'
	nameTok, ok := p.expect(lexer.Name)
	if !ok {
		p.recover()
		return nil
	}
	collision := p.importCollisions[nameTok.Text]
	p.importCollisions[nameTok.Text]++
	id := ast.NewImportId(p.file, nameTok.Text, collision)
	imp := &ast.Import{FileName: nameTok.Text, ID: id}
	p.withStatement(id, start, func() {})
	return imp
}

func (p *parser) parsePrint() ast.TopLevelStatement {
	start := p.advance() // 'print'
	var body ast.Expression
	var stmt *ast.Print
	// Expression parsing needs an id allocator, so we allocate one up front,
	// before the statement id is known; the id is derived afterwards from
	// the structural hash of the parsed body.
	p.ids = &ast.ExprIdAllocator{}
	p.locs = map[ast.ExprId]ast.Location{}
	body = p.parseExpr()
	if body == nil {
		p.recover()
		return nil
	}
	h := ast.HashExpression(body)
	collision := p.printCollisions[h]
	p.printCollisions[h]++
	id := ast.NewPrintId(p.file, h, collision)
	stmt = &ast.Print{Body: body, ID: id}
	end := p.tokens[p.pos]
	p.data[id] = StatementData{
		Location:      ast.Location{File: p.file, Start: start.Loc.Start, End: end.Loc.Start},
		ExprLocations: p.locs,
	}
	return stmt
}

func (p *parser) parseDefinition() ast.TopLevelStatement {
	start := p.advance() // 'def'
	nameTok, ok := p.expect(lexer.Name)
	if !ok {
		p.recover()
		return nil
	}

	collision := p.defCollisions[nameTok.Text]
	p.defCollisions[nameTok.Text]++
	id := ast.NewDefinitionId(p.file, nameTok.Text, collision)

	var def *ast.Definition
	p.withStatement(id, start, func() {
		var annotation *ast.Type
		if p.at(lexer.Colon) {
			p.advance()
			annotation = p.parseType()
		}
		if _, ok := p.expect(lexer.Equals); !ok {
			return
		}
		body := p.parseExpr()
		if body == nil {
			return
		}
		def = &ast.Definition{Name: nameTok.Text, Annotation: annotation, Body: body, ID: id}
	})
	if def == nil {
		p.recover()
		return nil
	}
	return def
}

// expr := lambda | infix
func (p *parser) parseExpr() ast.Expression {
	if p.at(lexer.Fn) {
		return p.parseLambda()
	}
	return p.parseInfix()
}

// lambda := "fn" name+ "->" expr, curried into nested single-param lambdas.
func (p *parser) parseLambda() ast.Expression {
	start := p.peek().Loc
	p.advance() // 'fn'
	var params []string
	for p.at(lexer.Name) {
		params = append(params, p.advance().Text)
	}
	if len(params) == 0 {
		p.errors = append(p.errors, reporter.ParserExpected(p.peek().Loc, "a parameter name", p.peek().String()))
		return nil
	}
	if _, ok := p.expect(lexer.RightArrow); !ok {
		return nil
	}
	body := p.parseExpr()
	if body == nil {
		return nil
	}
	for i := len(params) - 1; i >= 0; i-- {
		end := p.tokens[p.pos].Loc
		id := p.newExprId(ast.Location{File: p.file, Start: start.Start, End: end.Start})
		body = &ast.Lambda{Parameter: params[i], Body: body, ID: id}
	}
	return body
}

// infix := call (("+" | "-") call)*    (left-assoc)
func (p *parser) parseInfix() ast.Expression {
	start := p.peek().Loc
	left := p.parseCall()
	if left == nil {
		return nil
	}
	for p.at(lexer.Plus) || p.at(lexer.Minus) {
		opName := "+"
		opLoc := p.peek().Loc
		if p.at(lexer.Minus) {
			opName = "-"
		}
		p.advance()
		right := p.parseCall()
		if right == nil {
			return nil
		}
		end := p.tokens[p.pos].Loc
		opId := p.newExprId(opLoc)
		op := &ast.Variable{Name: opName, ID: opId}
		applyLeftId := p.newExprId(ast.Location{File: p.file, Start: start.Start, End: end.Start})
		applyLeft := &ast.FunctionCall{Function: op, Argument: left, ID: applyLeftId}
		applyRightId := p.newExprId(ast.Location{File: p.file, Start: start.Start, End: end.Start})
		left = &ast.FunctionCall{Function: applyLeft, Argument: right, ID: applyRightId}
	}
	return left
}

// call := atom atom*    (left-assoc application)
func (p *parser) parseCall() ast.Expression {
	start := p.peek().Loc
	fn := p.parseAtom()
	if fn == nil {
		return nil
	}
	for p.startsAtom() {
		arg := p.parseAtom()
		if arg == nil {
			return nil
		}
		end := p.tokens[p.pos].Loc
		id := p.newExprId(ast.Location{File: p.file, Start: start.Start, End: end.Start})
		fn = &ast.FunctionCall{Function: fn, Argument: arg, ID: id}
	}
	return fn
}

func (p *parser) startsAtom() bool {
	switch p.peek().Kind {
	case lexer.Name, lexer.Integer, lexer.ParenLeft:
		return true
	default:
		return false
	}
}

// atom := name | integer | "(" expr ")"
func (p *parser) parseAtom() ast.Expression {
	tok := p.peek()
	switch tok.Kind {
	case lexer.Name:
		p.advance()
		id := p.newExprId(tok.Loc)
		return &ast.Variable{Name: tok.Text, ID: id}
	case lexer.Integer:
		p.advance()
		id := p.newExprId(tok.Loc)
		return &ast.IntegerLiteral{Value: tok.IntValue, ID: id}
	case lexer.ParenLeft:
		p.advance()
		e := p.parseExpr()
		if e == nil {
			return nil
		}
		if _, ok := p.expect(lexer.ParenRight); !ok {
			return nil
		}
		return e
	default:
		p.errors = append(p.errors, reporter.ParserExpected(tok.Loc, "an expression", tok.String()))
		return nil
	}
}

// type := basic ("->" type)?    (right-assoc)
// basic := "Int" | name | "(" type ")"
func (p *parser) parseType() *ast.Type {
	base := p.parseBasicType()
	if base == nil {
		return nil
	}
	if p.at(lexer.RightArrow) {
		p.advance()
		ret := p.parseType()
		if ret == nil {
			return nil
		}
		return &ast.Type{Kind: ast.TypeFunction, Parameter: base, ReturnType: ret}
	}
	return base
}

func (p *parser) parseBasicType() *ast.Type {
	tok := p.peek()
	switch tok.Kind {
	case lexer.IntKeyword:
		p.advance()
		return &ast.Type{Kind: ast.TypeInt}
	case lexer.Name:
		p.advance()
		return &ast.Type{Kind: ast.TypeGeneric, Name: tok.Text}
	case lexer.ParenLeft:
		p.advance()
		t := p.parseType()
		if t == nil {
			return nil
		}
		if _, ok := p.expect(lexer.ParenRight); !ok {
			return nil
		}
		return t
	default:
		p.errors = append(p.errors, reporter.ParserExpected(tok.Loc, "a type", tok.String()))
		return nil
	}
}
