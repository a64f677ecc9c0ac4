package parser

import (
	"banana/internal/ast"
	"banana/internal/lexer"
	"banana/internal/value"
)

// fundecl parses `RET_TYPE IDENT '(' params? ')' block`. It is
// dispatched from declStatement's caller only when a following '('
// distinguishes it from a vardecl — see statement()'s lookahead.
func (p *Parser) fundecl() ast.Stmt {
	retTok := p.advance()
	nameTok := p.consume(lexer.TokenIdentifier, "Expect function name")
	if _, exists := p.functions[nameTok.Value]; exists {
		p.fail(nameTok.Line, "Function '%s' already declared", nameTok.Value)
	}

	isVoid := retTok.Kind == lexer.TokenVoid
	var retKind value.Kind
	if !isVoid {
		retKind = tokenToKind(retTok.Kind)
	}

	fn := &ast.Function{Name: nameTok.Value, ReturnType: retKind, Void: isVoid}
	p.functions[nameTok.Value] = fn

	p.consume(lexer.TokenLParen, "Expect '(' after function name")
	p.pushFrame()
	p.pushScope()
	fn.Params = p.paramList()
	p.consume(lexer.TokenRParen, "Expect ')' after parameters")

	prevFn := p.enclosingFunction
	p.enclosingFunction = fn
	fn.Body = p.block()
	p.enclosingFunction = prevFn

	p.popScope()
	p.popFrame()
	return fn
}

// paramList parses `params := TYPE IDENT (',' TYPE IDENT)*`, declaring
// each parameter in the just-pushed function frame so the body can
// reference them by name.
func (p *Parser) paramList() []*ast.Variable {
	var params []*ast.Variable
	if !p.check(lexer.TokenRParen) {
		for {
			if !p.isTypeToken() {
				p.fail(p.peek().Line, "Expect parameter type")
			}
			typeTok := p.advance()
			kind := tokenToKind(typeTok.Kind)
			nameTok := p.consume(lexer.TokenIdentifier, "Expect parameter name")
			v := p.declare(nameTok.Value, kind, nameTok.Line)
			params = append(params, v)
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	return params
}

// nativeDecl parses `'@native' '(' STRING ')' RET_TYPE IDENT '(' params? ')' ';'`,
// registering a function whose body is Native(name, params) followed
// by Return(result). It checks the declared signature against the
// native registry passed to the parser, when one was supplied.
func (p *Parser) nativeDecl() ast.Stmt {
	line := p.previous().Line
	p.consume(lexer.TokenLParen, "Expect '(' after '@native'")
	qualTok := p.consume(lexer.TokenString, "Expect qualified native name string")
	p.consume(lexer.TokenRParen, "Expect ')' after native name")

	if !p.isTypeToken() {
		p.fail(p.peek().Line, "Expect return type for native declaration")
	}
	retTok := p.advance()
	isVoid := retTok.Kind == lexer.TokenVoid
	var retKind value.Kind
	if !isVoid {
		retKind = tokenToKind(retTok.Kind)
	}

	nameTok := p.consume(lexer.TokenIdentifier, "Expect function name")
	if _, exists := p.functions[nameTok.Value]; exists {
		p.fail(nameTok.Line, "Function '%s' already declared", nameTok.Value)
	}

	p.consume(lexer.TokenLParen, "Expect '(' after function name")
	p.pushFrame()
	p.pushScope()
	params := p.paramList()
	p.consume(lexer.TokenRParen, "Expect ')' after parameters")
	p.consume(lexer.TokenSemicolon, "Expect ';' after native declaration")
	p.popScope()
	p.popFrame()

	if p.natives != nil {
		wantRet, wantParams, ok := p.natives.Lookup(qualTok.Value)
		if !ok {
			p.fail(line, "No native routine registered for '%s'", qualTok.Value)
		}
		if !isVoid && wantRet != retKind {
			p.fail(line, "Native '%s' declared to return %s but library exports %s", qualTok.Value, retKind, wantRet)
		}
		if len(wantParams) != len(params) {
			p.fail(line, "Native '%s' declared with %d parameter(s) but library exports %d", qualTok.Value, len(params), len(wantParams))
		}
		for i, pv := range params {
			if pv.Type != wantParams[i] {
				p.fail(line, "Native '%s' parameter %d declared %s but library exports %s", qualTok.Value, i+1, pv.Type, wantParams[i])
			}
		}
	}

	native := &ast.Native{QualifiedName: qualTok.Value, Args: params}
	body := &ast.Block{Stmts: []ast.Stmt{wrapNativeCall(native, isVoid)}}

	fn := &ast.Function{Name: nameTok.Value, ReturnType: retKind, Void: isVoid, Params: params, Body: body}
	p.functions[nameTok.Value] = fn
	return fn
}

// wrapNativeCall builds the native function's single-statement body:
// Return(Native(...)) for a value-returning native. A void native has
// no value to return, but its call still must execute — the bridge is
// invoked for effect and Native's own Emit is the only place that
// happens, so a void native's body is the call wrapped as a bare
// statement followed by an empty Return.
func wrapNativeCall(n *ast.Native, isVoid bool) ast.Stmt {
	if isVoid {
		return &ast.Block{Stmts: []ast.Stmt{&ast.ExprStmt{Value: n}, &ast.Return{}}}
	}
	return &ast.Return{Values: []ast.Expr{n}}
}
