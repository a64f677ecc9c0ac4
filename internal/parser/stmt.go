package parser

import (
	"banana/internal/ast"
	"banana/internal/lexer"
	"banana/internal/value"
)

// statement parses one production of the `statement` grammar rule.
func (p *Parser) statement() ast.Stmt {
	switch {
	case p.match(lexer.TokenPrint):
		return p.printStatement()
	case p.match(lexer.TokenIf):
		return p.ifStatement()
	case p.match(lexer.TokenWhile):
		return p.whileStatement()
	case p.match(lexer.TokenFor):
		return p.forStatement()
	case p.match(lexer.TokenReturn):
		return p.returnStatement()
	case p.match(lexer.TokenNative):
		return p.nativeDecl()
	case p.isTypeToken() && p.checkNext(lexer.TokenIdentifier) && p.checkAt(2, lexer.TokenLParen):
		return p.fundecl()
	case p.isTypeToken() && p.checkNext(lexer.TokenIdentifier):
		return p.declStatement()
	case p.check(lexer.TokenIdentifier) && p.isAssignAhead():
		return p.assignStatement(true)
	default:
		return p.exprStatement()
	}
}

func (p *Parser) block() *ast.Block {
	p.consume(lexer.TokenLBrace, "Expect '{' before block")
	p.pushScope()
	var stmts []ast.Stmt
	for !p.check(lexer.TokenRBrace) && !p.isAtEnd() {
		stmts = append(stmts, p.statement())
	}
	p.consume(lexer.TokenRBrace, "Expect '}' after block")
	p.popScope()
	return &ast.Block{Stmts: stmts}
}

func (p *Parser) printStatement() ast.Stmt {
	e := p.expressionAsType(sentinelAny)
	p.match(lexer.TokenSemicolon)
	return &ast.Print{Value: e}
}

// declStatement parses `vardecl := TYPE IDENT '=' expression ';'`.
func (p *Parser) declStatement() ast.Stmt {
	typeTok := p.advance()
	if typeTok.Kind == lexer.TokenVoid {
		p.fail(typeTok.Line, "Variables cannot be declared 'void'")
	}
	kind := tokenToKind(typeTok.Kind)
	nameTok := p.consume(lexer.TokenIdentifier, "Expect variable name")
	p.consume(lexer.TokenEqual, "Expect '=' after variable name")
	value := p.expressionAsType(kind)
	p.consume(lexer.TokenSemicolon, "Expect ';' after variable declaration")
	v := p.declare(nameTok.Value, kind, nameTok.Line)
	return &ast.Assign{Target: v, Value: value}
}

func (p *Parser) ifStatement() ast.Stmt {
	p.consume(lexer.TokenLParen, "Expect '(' after 'if'")
	cond := p.expressionAsType(sentinelAny)
	p.consume(lexer.TokenRParen, "Expect ')' after if condition")
	then := p.block()
	var elseBlock *ast.Block
	if p.match(lexer.TokenElse) {
		elseBlock = p.block()
	}
	return &ast.If{Cond: cond, Then: then, Else: elseBlock}
}

func (p *Parser) whileStatement() ast.Stmt {
	p.consume(lexer.TokenLParen, "Expect '(' after 'while'")
	cond := p.expressionAsType(sentinelAny)
	p.consume(lexer.TokenRParen, "Expect ')' after while condition")
	body := p.block()
	return &ast.While{Cond: cond, Body: body}
}

// forStatement parses `for (init; cond; step) block`. init and step
// share the while-body's scope so a loop variable declared in init is
// visible in cond/step/body (a single extra scope wrapping all four).
func (p *Parser) forStatement() ast.Stmt {
	p.consume(lexer.TokenLParen, "Expect '(' after 'for'")
	p.pushScope()
	init := p.statement()
	cond := p.expressionAsType(sentinelAny)
	p.consume(lexer.TokenSemicolon, "Expect ';' after for condition")
	step := p.assignStatement(false)
	p.consume(lexer.TokenRParen, "Expect ')' after for clauses")
	body := p.block()
	p.popScope()
	return &ast.For{Init: init, Cond: cond, Step: step, Body: body}
}

func (p *Parser) returnStatement() ast.Stmt {
	line := p.previous().Line
	fn := p.enclosingFunction
	if fn == nil {
		p.fail(line, "'return' outside of a function")
	}
	if fn.Void {
		p.consume(lexer.TokenSemicolon, "Expect ';' after return")
		return &ast.Return{}
	}
	e := p.expressionAsType(fn.ReturnType)
	p.consume(lexer.TokenSemicolon, "Expect ';' after return value")
	return &ast.Return{Values: []ast.Expr{e}}
}

// isAssignAhead reports whether the upcoming IDENT begins an `assign`
// production rather than a bare expression statement (a call or
// standalone expression).
func (p *Parser) isAssignAhead() bool {
	switch p.tokens[p.current+1].Kind {
	case lexer.TokenEqual, lexer.TokenPlusEqual, lexer.TokenMinusEqual,
		lexer.TokenStarEqual, lexer.TokenSlashEqual, lexer.TokenPercentEqual,
		lexer.TokenCaretEqual, lexer.TokenAmpEqual, lexer.TokenPipeEqual,
		lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		return true
	}
	return false
}

// assignStatement parses `assign := IDENT assignOp expression`,
// desugaring compound forms into `x = x OP e` and increment/decrement
// into `x = x ± 1`, per §4.D.
func (p *Parser) assignStatement(consumeSemicolon bool) ast.Stmt {
	nameTok := p.consume(lexer.TokenIdentifier, "Expect identifier")
	target := p.resolve(nameTok.Value, nameTok.Line)
	op := p.advance()

	var rhs ast.Expr
	switch op.Kind {
	case lexer.TokenEqual:
		rhs = p.expressionAsType(target.Type)
	case lexer.TokenPlusPlus, lexer.TokenMinusMinus:
		binOp := ast.OpAdd
		if op.Kind == lexer.TokenMinusMinus {
			binOp = ast.OpSub
		}
		one := &ast.Literal{Value: coerceLiteral(1, target.Type)}
		rhs = &ast.BinaryOp{Left: &ast.Variable{FrameID: target.FrameID, LocalIndex: target.LocalIndex, Type: target.Type}, Right: one, Op: binOp}
	default:
		binOp, ok := compoundOps[op.Kind]
		if !ok {
			p.fail(op.Line, "Expect assignment operator")
		}
		operand := p.expressionAsType(target.Type)
		rhs = &ast.BinaryOp{Left: &ast.Variable{FrameID: target.FrameID, LocalIndex: target.LocalIndex, Type: target.Type}, Right: operand, Op: binOp}
	}
	if consumeSemicolon {
		p.consume(lexer.TokenSemicolon, "Expect ';' after assignment")
	}
	return &ast.Assign{Target: target, Value: rhs}
}

var compoundOps = map[lexer.TokenKind]ast.BinOp{
	lexer.TokenPlusEqual:    ast.OpAdd,
	lexer.TokenMinusEqual:   ast.OpSub,
	lexer.TokenStarEqual:    ast.OpMul,
	lexer.TokenSlashEqual:   ast.OpDiv,
	lexer.TokenPercentEqual: ast.OpMod,
	lexer.TokenCaretEqual:   ast.OpXor,
	lexer.TokenAmpEqual:     ast.OpBinAnd,
	lexer.TokenPipeEqual:    ast.OpBinOr,
}

func coerceLiteral(n int64, k value.Kind) value.Value {
	switch k {
	case value.KindBool:
		return value.NewBool(n != 0)
	case value.KindChar:
		return value.NewChar(int8(n))
	case value.KindInt:
		return value.NewInt(int32(n))
	default:
		return value.NewLong(n)
	}
}

// exprStatement parses `callstmt` and any other bare expression used
// as a statement. The grammar's only legal bare expressions are calls;
// the parser does not otherwise restrict this, matching the original
// compiler's permissiveness here.
func (p *Parser) exprStatement() ast.Stmt {
	e := p.expressionAsType(sentinelAny)
	p.match(lexer.TokenSemicolon)
	return &ast.ExprStmt{Value: e}
}
