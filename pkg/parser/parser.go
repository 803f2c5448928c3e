// Package parser implements the Jyro language parser.
package parser

import (
	"strconv"
	"strings"

	"github.com/meschsystems/jyro/pkg/ast"
	"github.com/meschsystems/jyro/pkg/diagnostics"
	"github.com/meschsystems/jyro/pkg/lexer"
)

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  []diagnostics.Diagnostic
}

// Parse tokenizes source and parses it into an AST. On any error the
// accumulated diagnostics are returned and the program is nil.
func Parse(source string) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return nil, []diagnostics.Diagnostic{le.Diag}
		}
		return nil, []diagnostics.Diagnostic{diagnostics.NewError(diagnostics.UnexpectedCharacter, nil, err.Error())}
	}

	p := &parser{tokens: tokens, pos: 0}
	prog := p.parseProgram()
	if len(p.diags) > 0 {
		return nil, p.diags
	}
	return prog, nil
}

func (p *parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[p.pos]
}

func (p *parser) peek() lexer.TokenType {
	return p.current().Type
}

func (p *parser) peekAt(offset int) lexer.TokenType {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return lexer.TokEOF
	}
	return p.tokens[idx].Type
}

func (p *parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) expect(typ lexer.TokenType, what string) (lexer.Token, bool) {
	if p.peek() == typ {
		return p.advance(), true
	}
	p.addError(diagnostics.ExpectedToken, p.current().Span, what, describe(p.current()))
	return p.current(), false
}

func (p *parser) addError(code diagnostics.Code, span ast.Span, args ...any) {
	p.diags = append(p.diags, diagnostics.NewError(code, diagnostics.LocationFromSpan(span), args...))
}

func (p *parser) spanFrom(start ast.Span) ast.Span {
	end := start
	if p.pos > 0 {
		end = p.tokens[p.pos-1].Span
	}
	return ast.Span{
		StartLine: start.StartLine,
		StartCol:  start.StartCol,
		EndLine:   end.EndLine,
		EndCol:    end.EndCol,
	}
}

func describe(tok lexer.Token) string {
	if tok.Type == lexer.TokEOF {
		return "end of script"
	}
	return tok.Value
}

// --- Program & statements ---

func (p *parser) parseProgram() *ast.Program {
	start := p.current().Span
	var stmts []ast.Stmt
	for p.peek() != lexer.TokEOF {
		before := p.pos
		stmt := p.parseStmt()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.pos == before {
			// Could not make progress; skip the offending token.
			p.advance()
		}
		if len(p.diags) > 0 {
			break
		}
	}
	return &ast.Program{Span: p.spanFrom(start), Statements: stmts}
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.peek() {
	case lexer.TokSemicolon:
		p.advance()
		return nil
	case lexer.TokVar:
		return p.parseVarDecl()
	case lexer.TokIf:
		return p.parseIf()
	case lexer.TokSwitch:
		return p.parseSwitch()
	case lexer.TokWhile:
		return p.parseWhile()
	case lexer.TokFor:
		return p.parseFor()
	case lexer.TokForEach:
		return p.parseForEach()
	case lexer.TokBreak:
		tok := p.advance()
		return &ast.BreakStmt{Span: tok.Span}
	case lexer.TokContinue:
		tok := p.advance()
		return &ast.ContinueStmt{Span: tok.Span}
	case lexer.TokReturn:
		return p.parseReturn()
	case lexer.TokFail:
		return p.parseFail()
	case lexer.TokIdent, lexer.TokLParen:
		return p.parseSimpleStmt()
	}
	p.addError(diagnostics.ExpectedStatement, p.current().Span, describe(p.current()))
	return nil
}

func (p *parser) parseVarDecl() ast.Stmt {
	start := p.advance().Span // consume 'var'

	nameTok, ok := p.expect(lexer.TokIdent, "a variable name")
	if !ok {
		return nil
	}

	var hint ast.TypeHint
	if p.peek() == lexer.TokColon {
		p.advance()
		hintTok := p.current()
		if hintTok.Type != lexer.TokIdent && hintTok.Type != lexer.TokNull {
			p.addError(diagnostics.ExpectedToken, hintTok.Span, "a type name", describe(hintTok))
			return nil
		}
		p.advance()
		name := strings.ToLower(hintTok.Value)
		if !ast.KnownHint(name) {
			p.addError(diagnostics.UnknownTypeName, hintTok.Span, hintTok.Value)
			return nil
		}
		hint = ast.TypeHint(name)
	}

	var init ast.Expr
	if p.peek() == lexer.TokAssign {
		p.advance()
		init = p.parseExpr()
		if init == nil {
			return nil
		}
	}

	return &ast.VarDeclStmt{
		Span: p.spanFrom(start),
		Name: nameTok.Value,
		Hint: hint,
		Init: init,
	}
}

func (p *parser) parseIf() ast.Stmt {
	start := p.advance().Span // consume 'if'

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	then := p.parseBlock()
	if then == nil {
		return nil
	}

	stmt := &ast.IfStmt{Cond: cond, Then: then}
	for p.peek() == lexer.TokElse {
		p.advance()
		if p.peek() == lexer.TokIf {
			elifStart := p.advance().Span
			elifCond := p.parseExpr()
			if elifCond == nil {
				return nil
			}
			elifBody := p.parseBlock()
			if elifBody == nil {
				return nil
			}
			stmt.ElseIfs = append(stmt.ElseIfs, &ast.ElseIf{
				Span: p.spanFrom(elifStart),
				Cond: elifCond,
				Body: elifBody,
			})
			continue
		}
		stmt.Else = p.parseBlock()
		if stmt.Else == nil {
			return nil
		}
		break
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

func (p *parser) parseSwitch() ast.Stmt {
	start := p.advance().Span // consume 'switch'

	subject := p.parseExpr()
	if subject == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokLBrace, "'{'"); !ok {
		return nil
	}

	stmt := &ast.SwitchStmt{Subject: subject}
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		switch p.peek() {
		case lexer.TokCase:
			caseStart := p.advance().Span
			var values []ast.Expr
			for {
				v := p.parseExpr()
				if v == nil {
					return nil
				}
				values = append(values, v)
				if p.peek() != lexer.TokComma {
					break
				}
				p.advance()
			}
			if _, ok := p.expect(lexer.TokColon, "':'"); !ok {
				return nil
			}
			body := p.parseCaseBody()
			stmt.Cases = append(stmt.Cases, &ast.SwitchCase{
				Span:   p.spanFrom(caseStart),
				Values: values,
				Body:   body,
			})
		case lexer.TokDefault:
			defStart := p.advance().Span
			if _, ok := p.expect(lexer.TokColon, "':'"); !ok {
				return nil
			}
			body := p.parseCaseBody()
			body.Span = p.spanFrom(defStart)
			stmt.Default = body
		default:
			p.addError(diagnostics.ExpectedToken, p.current().Span, "'case' or 'default'", describe(p.current()))
			return nil
		}
		if len(p.diags) > 0 {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokRBrace, "'}'"); !ok {
		return nil
	}

	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseCaseBody gathers statements until the next case, default, or the
// closing brace of the switch.
func (p *parser) parseCaseBody() *ast.Block {
	start := p.current().Span
	var stmts []ast.Stmt
	for {
		switch p.peek() {
		case lexer.TokCase, lexer.TokDefault, lexer.TokRBrace, lexer.TokEOF:
			return &ast.Block{Span: p.spanFrom(start), Statements: stmts}
		}
		before := p.pos
		stmt := p.parseStmt()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.pos == before {
			p.advance()
		}
		if len(p.diags) > 0 {
			return &ast.Block{Span: p.spanFrom(start), Statements: stmts}
		}
	}
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.advance().Span // consume 'while'

	cond := p.parseExpr()
	if cond == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.WhileStmt{Span: p.spanFrom(start), Cond: cond, Body: body}
}

func (p *parser) parseFor() ast.Stmt {
	start := p.advance().Span // consume 'for'

	nameTok, ok := p.expect(lexer.TokIdent, "a loop variable name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokFrom, "'from'"); !ok {
		return nil
	}
	from := p.parseExpr()
	if from == nil {
		return nil
	}
	if _, ok := p.expect(lexer.TokTo, "'to'"); !ok {
		return nil
	}
	to := p.parseExpr()
	if to == nil {
		return nil
	}

	var step ast.Expr
	if p.peek() == lexer.TokStep {
		p.advance()
		step = p.parseExpr()
		if step == nil {
			return nil
		}
	}

	descending := false
	switch p.peek() {
	case lexer.TokAscending:
		p.advance()
	case lexer.TokDescending:
		p.advance()
		descending = true
	}

	body := p.parseBlock()
	if body == nil {
		return nil
	}

	return &ast.ForStmt{
		Span:       p.spanFrom(start),
		Var:        nameTok.Value,
		From:       from,
		To:         to,
		Step:       step,
		Descending: descending,
		Body:       body,
	}
}

func (p *parser) parseForEach() ast.Stmt {
	start := p.advance().Span // consume 'foreach'

	nameTok, ok := p.expect(lexer.TokIdent, "a loop variable name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(lexer.TokIn, "'in'"); !ok {
		return nil
	}
	coll := p.parseExpr()
	if coll == nil {
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.ForEachStmt{
		Span:       p.spanFrom(start),
		Var:        nameTok.Value,
		Collection: coll,
		Body:       body,
	}
}

func (p *parser) parseReturn() ast.Stmt {
	tok := p.advance() // consume 'return'
	stmt := &ast.ReturnStmt{Span: tok.Span}
	if p.startsExprOnLine(tok.Span.EndLine) {
		stmt.Message = p.parseExpr()
		if stmt.Message == nil {
			return nil
		}
		stmt.Span = p.spanFrom(tok.Span)
	}
	return stmt
}

func (p *parser) parseFail() ast.Stmt {
	tok := p.advance() // consume 'fail'
	stmt := &ast.FailStmt{Span: tok.Span}
	if p.startsExprOnLine(tok.Span.EndLine) {
		stmt.Message = p.parseExpr()
		if stmt.Message == nil {
			return nil
		}
		stmt.Span = p.spanFrom(tok.Span)
	}
	return stmt
}

// startsExprOnLine reports whether the current token can begin an expression
// and sits on the given line. Return and fail messages must start on the
// same line as the keyword.
func (p *parser) startsExprOnLine(line int) bool {
	tok := p.current()
	if tok.Span.StartLine != line {
		return false
	}
	switch tok.Type {
	case lexer.TokNumberLit, lexer.TokStringLit, lexer.TokTrue, lexer.TokFalse, lexer.TokNull,
		lexer.TokIdent, lexer.TokLParen, lexer.TokLBracket, lexer.TokLBrace,
		lexer.TokMinus, lexer.TokNot:
		return true
	}
	return false
}

// parseSimpleStmt parses an assignment, increment/decrement, or expression
// statement beginning with the current token.
func (p *parser) parseSimpleStmt() ast.Stmt {
	start := p.current().Span
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}

	switch p.peek() {
	case lexer.TokAssign, lexer.TokPlusEq, lexer.TokMinusEq, lexer.TokStarEq, lexer.TokSlashEq, lexer.TokPercentEq:
		opTok := p.advance()
		if !isAssignable(expr) {
			p.addError(diagnostics.InvalidAssignTarget, expr.NodeSpan())
			return nil
		}
		val := p.parseExpr()
		if val == nil {
			return nil
		}
		return &ast.AssignStmt{
			Span:   p.spanFrom(start),
			Target: expr,
			Op:     assignOp(opTok.Type),
			Value:  val,
		}

	case lexer.TokPlusPlus, lexer.TokMinusMinus:
		opTok := p.advance()
		if !isAssignable(expr) {
			p.addError(diagnostics.InvalidAssignTarget, expr.NodeSpan())
			return nil
		}
		return &ast.IncDecStmt{
			Span:      p.spanFrom(start),
			Target:    expr,
			Decrement: opTok.Type == lexer.TokMinusMinus,
		}
	}

	return &ast.ExprStmt{Span: p.spanFrom(start), Expr: expr}
}

func isAssignable(expr ast.Expr) bool {
	switch expr.(type) {
	case *ast.Identifier, *ast.PropertyExpr, *ast.IndexExpr:
		return true
	}
	return false
}

func assignOp(t lexer.TokenType) ast.AssignOp {
	switch t {
	case lexer.TokPlusEq:
		return ast.AssignAdd
	case lexer.TokMinusEq:
		return ast.AssignSub
	case lexer.TokStarEq:
		return ast.AssignMul
	case lexer.TokSlashEq:
		return ast.AssignDiv
	case lexer.TokPercentEq:
		return ast.AssignMod
	}
	return ast.AssignSet
}

func (p *parser) parseBlock() *ast.Block {
	start := p.current().Span
	if _, ok := p.expect(lexer.TokLBrace, "'{'"); !ok {
		return nil
	}
	var stmts []ast.Stmt
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		before := p.pos
		stmt := p.parseStmt()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		if p.pos == before {
			p.advance()
		}
		if len(p.diags) > 0 {
			return nil
		}
	}
	if _, ok := p.expect(lexer.TokRBrace, "'}'"); !ok {
		return nil
	}
	return &ast.Block{Span: p.spanFrom(start), Statements: stmts}
}

// --- Expressions ---

func (p *parser) parseExpr() ast.Expr {
	return p.parseOr()
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokOr {
		p.advance()
		right := p.parseAnd()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFrom(left.NodeSpan()),
			Op:    ast.OpOr,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokAnd {
		p.advance()
		right := p.parseEquality()
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFrom(left.NodeSpan()),
			Op:    ast.OpAnd,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokEqEq || p.peek() == lexer.TokNeq {
		opTok := p.advance()
		right := p.parseComparison()
		if right == nil {
			return nil
		}
		op := ast.OpEqEq
		if opTok.Type == lexer.TokNeq {
			op = ast.OpNeq
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFrom(left.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}
	for {
		switch p.peek() {
		case lexer.TokLt, lexer.TokLtEq, lexer.TokGt, lexer.TokGtEq:
			opTok := p.advance()
			right := p.parseAdditive()
			if right == nil {
				return nil
			}
			left = &ast.BinaryExpr{
				Span:  p.spanFrom(left.NodeSpan()),
				Op:    comparisonOp(opTok.Type),
				Left:  left,
				Right: right,
			}
		case lexer.TokIs:
			p.advance()
			hintTok := p.current()
			if hintTok.Type != lexer.TokIdent && hintTok.Type != lexer.TokNull {
				p.addError(diagnostics.ExpectedToken, hintTok.Span, "a type name", describe(hintTok))
				return nil
			}
			p.advance()
			name := strings.ToLower(hintTok.Value)
			if !ast.KnownHint(name) {
				p.addError(diagnostics.UnknownTypeName, hintTok.Span, hintTok.Value)
				return nil
			}
			left = &ast.TypeTestExpr{
				Span:  p.spanFrom(left.NodeSpan()),
				Value: left,
				Hint:  ast.TypeHint(name),
			}
		default:
			return left
		}
	}
}

func comparisonOp(t lexer.TokenType) ast.BinaryOp {
	switch t {
	case lexer.TokLt:
		return ast.OpLt
	case lexer.TokLtEq:
		return ast.OpLtEq
	case lexer.TokGt:
		return ast.OpGt
	}
	return ast.OpGtEq
}

func (p *parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokPlus || p.peek() == lexer.TokMinus {
		opTok := p.advance()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		op := ast.OpAdd
		if opTok.Type == lexer.TokMinus {
			op = ast.OpSub
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFrom(left.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.peek() == lexer.TokStar || p.peek() == lexer.TokSlash || p.peek() == lexer.TokPercent {
		opTok := p.advance()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		var op ast.BinaryOp
		switch opTok.Type {
		case lexer.TokStar:
			op = ast.OpMul
		case lexer.TokSlash:
			op = ast.OpDiv
		default:
			op = ast.OpMod
		}
		left = &ast.BinaryExpr{
			Span:  p.spanFrom(left.NodeSpan()),
			Op:    op,
			Left:  left,
			Right: right,
		}
	}
	return left
}

func (p *parser) parseUnary() ast.Expr {
	switch p.peek() {
	case lexer.TokMinus:
		tok := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{Span: p.spanFrom(tok.Span), Op: ast.OpNeg, Operand: operand}
	case lexer.TokNot:
		tok := p.advance()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.UnaryExpr{Span: p.spanFrom(tok.Span), Op: ast.OpNot, Operand: operand}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()
	if expr == nil {
		return nil
	}
	for {
		switch p.peek() {
		case lexer.TokDot:
			p.advance()
			nameTok, ok := p.expect(lexer.TokIdent, "a property name")
			if !ok {
				return nil
			}
			expr = &ast.PropertyExpr{
				Span:   p.spanFrom(expr.NodeSpan()),
				Object: expr,
				Name:   nameTok.Value,
			}
		case lexer.TokLBracket:
			p.advance()
			idx := p.parseExpr()
			if idx == nil {
				return nil
			}
			if _, ok := p.expect(lexer.TokRBracket, "']'"); !ok {
				return nil
			}
			expr = &ast.IndexExpr{
				Span:   p.spanFrom(expr.NodeSpan()),
				Target: expr,
				Index:  idx,
			}
		default:
			return expr
		}
	}
}

func (p *parser) parsePrimary() ast.Expr {
	tok := p.current()

	switch tok.Type {
	case lexer.TokNumberLit:
		p.advance()
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.addError(diagnostics.MalformedNumber, tok.Span, tok.Value)
			return nil
		}
		return &ast.NumberLiteral{Span: tok.Span, Value: f}

	case lexer.TokStringLit:
		p.advance()
		return &ast.StringLiteral{Span: tok.Span, Value: tok.Value}

	case lexer.TokTrue:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: true}

	case lexer.TokFalse:
		p.advance()
		return &ast.BoolLiteral{Span: tok.Span, Value: false}

	case lexer.TokNull:
		p.advance()
		return &ast.NullLiteral{Span: tok.Span}

	case lexer.TokIdent:
		// Single-parameter lambda: x => expr
		if p.peekAt(1) == lexer.TokArrow {
			return p.parseLambda()
		}
		p.advance()
		if p.peek() == lexer.TokLParen {
			return p.parseCallArgs(tok)
		}
		return &ast.Identifier{Span: tok.Span, Name: tok.Value}

	case lexer.TokLParen:
		if p.isParenLambda() {
			return p.parseLambda()
		}
		p.advance()
		expr := p.parseExpr()
		if expr == nil {
			return nil
		}
		if _, ok := p.expect(lexer.TokRParen, "')'"); !ok {
			return nil
		}
		return expr

	case lexer.TokLBracket:
		return p.parseArrayLiteral()

	case lexer.TokLBrace:
		return p.parseObjectLiteral()
	}

	p.addError(diagnostics.ExpectedExpression, tok.Span, describe(tok))
	return nil
}

// isParenLambda looks ahead for '(' [IDENT (',' IDENT)*] ')' '=>'.
func (p *parser) isParenLambda() bool {
	i := 1
	if p.peekAt(i) == lexer.TokRParen {
		return p.peekAt(i+1) == lexer.TokArrow
	}
	for {
		if p.peekAt(i) != lexer.TokIdent {
			return false
		}
		i++
		if p.peekAt(i) == lexer.TokComma {
			i++
			continue
		}
		break
	}
	return p.peekAt(i) == lexer.TokRParen && p.peekAt(i+1) == lexer.TokArrow
}

func (p *parser) parseLambda() ast.Expr {
	start := p.current().Span
	var params []string

	if p.peek() == lexer.TokLParen {
		p.advance()
		for p.peek() != lexer.TokRParen {
			nameTok, ok := p.expect(lexer.TokIdent, "a parameter name")
			if !ok {
				return nil
			}
			params = append(params, nameTok.Value)
			if p.peek() == lexer.TokComma {
				p.advance()
			}
		}
		p.advance() // consume ')'
	} else {
		nameTok, ok := p.expect(lexer.TokIdent, "a parameter name")
		if !ok {
			return nil
		}
		params = append(params, nameTok.Value)
	}

	if _, ok := p.expect(lexer.TokArrow, "'=>'"); !ok {
		return nil
	}
	body := p.parseExpr()
	if body == nil {
		return nil
	}
	return &ast.LambdaExpr{Span: p.spanFrom(start), Params: params, Body: body}
}

func (p *parser) parseCallArgs(nameTok lexer.Token) ast.Expr {
	p.advance() // consume '('
	var args []ast.Expr
	for p.peek() != lexer.TokRParen && p.peek() != lexer.TokEOF {
		arg := p.parseExpr()
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.peek() == lexer.TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.TokRParen, "')'"); !ok {
		return nil
	}
	return &ast.CallExpr{
		Span:     p.spanFrom(nameTok.Span),
		Name:     nameTok.Value,
		NameSpan: nameTok.Span,
		Args:     args,
	}
}

func (p *parser) parseArrayLiteral() ast.Expr {
	start := p.advance().Span // consume '['
	var elements []ast.Expr
	for p.peek() != lexer.TokRBracket && p.peek() != lexer.TokEOF {
		elem := p.parseExpr()
		if elem == nil {
			return nil
		}
		elements = append(elements, elem)
		if p.peek() == lexer.TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.TokRBracket, "']'"); !ok {
		return nil
	}
	return &ast.ArrayLiteral{Span: p.spanFrom(start), Elements: elements}
}

func (p *parser) parseObjectLiteral() ast.Expr {
	start := p.advance().Span // consume '{'
	var entries []*ast.ObjectEntry
	for p.peek() != lexer.TokRBrace && p.peek() != lexer.TokEOF {
		keyTok := p.current()
		if keyTok.Type != lexer.TokIdent && keyTok.Type != lexer.TokStringLit {
			p.addError(diagnostics.ExpectedToken, keyTok.Span, "an object key", describe(keyTok))
			return nil
		}
		p.advance()
		if _, ok := p.expect(lexer.TokColon, "':'"); !ok {
			return nil
		}
		val := p.parseExpr()
		if val == nil {
			return nil
		}
		entries = append(entries, &ast.ObjectEntry{
			Span:  p.spanFrom(keyTok.Span),
			Key:   keyTok.Value,
			Value: val,
		})
		if p.peek() == lexer.TokComma {
			p.advance()
			continue
		}
		break
	}
	if _, ok := p.expect(lexer.TokRBrace, "'}'"); !ok {
		return nil
	}
	return &ast.ObjectLiteral{Span: p.spanFrom(start), Entries: entries}
}
