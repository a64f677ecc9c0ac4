package parser

import (
	"strconv"

	"banana/internal/ast"
	"banana/internal/lexer"
	"banana/internal/value"
)

// sentinelAny marks an expected-type context that accepts any kind
// without inserting a Convert — used for boolean contexts (if/while
// conditions, print, bare expression statements) per §4.D's "boolean
// contexts use a sentinel meaning accept any".
const sentinelAny value.Kind = 0xFF

// expressionAsType parses `expression` with expected threaded down so
// literals are typed in context and variable/call reads of a
// different kind are wrapped in Convert.
func (p *Parser) expressionAsType(expected value.Kind) ast.Expr {
	return p.orExpr(expected)
}

func (p *Parser) orExpr(expected value.Kind) ast.Expr {
	left := p.eqExpr(expected)
	for p.match(lexer.TokenAnd, lexer.TokenOr) {
		op := p.previous()
		right := p.eqExpr(expected)
		binOp := ast.OpBoolAnd
		if op.Kind == lexer.TokenOr {
			binOp = ast.OpBoolOr
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: binOp}
	}
	return left
}

func (p *Parser) eqExpr(expected value.Kind) ast.Expr {
	left := p.cmpExpr(expected)
	for p.match(lexer.TokenEqualEqual, lexer.TokenBangEqual) {
		op := p.previous()
		right := p.cmpExpr(expected)
		binOp := ast.OpEq
		if op.Kind == lexer.TokenBangEqual {
			binOp = ast.OpNotEq
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: binOp}
	}
	return left
}

var cmpOps = map[lexer.TokenKind]ast.BinOp{
	lexer.TokenLess:         ast.OpLt,
	lexer.TokenLessEqual:    ast.OpLte,
	lexer.TokenGreater:      ast.OpGt,
	lexer.TokenGreaterEqual: ast.OpGte,
}

func (p *Parser) cmpExpr(expected value.Kind) ast.Expr {
	left := p.addExpr(expected)
	for p.match(lexer.TokenLess, lexer.TokenLessEqual, lexer.TokenGreater, lexer.TokenGreaterEqual) {
		op := p.previous()
		right := p.addExpr(expected)
		left = &ast.BinaryOp{Left: left, Right: right, Op: cmpOps[op.Kind]}
	}
	return left
}

func (p *Parser) addExpr(expected value.Kind) ast.Expr {
	left := p.mulExpr(expected)
	for p.match(lexer.TokenPlus, lexer.TokenMinus) {
		op := p.previous()
		right := p.mulExpr(expected)
		binOp := ast.OpAdd
		if op.Kind == lexer.TokenMinus {
			binOp = ast.OpSub
		}
		left = &ast.BinaryOp{Left: left, Right: right, Op: binOp}
	}
	return left
}

var mulOps = map[lexer.TokenKind]ast.BinOp{
	lexer.TokenStar:    ast.OpMul,
	lexer.TokenSlash:   ast.OpDiv,
	lexer.TokenPercent: ast.OpMod,
	lexer.TokenCaret:   ast.OpXor,
	lexer.TokenAmp:     ast.OpBinAnd,
	lexer.TokenPipe:    ast.OpBinOr,
}

func (p *Parser) mulExpr(expected value.Kind) ast.Expr {
	left := p.unary(expected)
	for p.match(lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent, lexer.TokenCaret, lexer.TokenAmp, lexer.TokenPipe) {
		op := p.previous()
		right := p.unary(expected)
		left = &ast.BinaryOp{Left: left, Right: right, Op: mulOps[op.Kind]}
	}
	return left
}

// unary lowers `-e` to BinaryOp(Literal(0), e, Sub), typed in context,
// per §4.D.
func (p *Parser) unary(expected value.Kind) ast.Expr {
	switch {
	case p.match(lexer.TokenMinus):
		operand := p.unary(expected)
		zeroType := expected
		if zeroType == sentinelAny {
			zeroType = value.KindLong
		}
		zero := &ast.Literal{Value: coerceLiteral(0, zeroType)}
		return &ast.BinaryOp{Left: zero, Right: operand, Op: ast.OpSub}
	case p.match(lexer.TokenBang):
		return &ast.BooleanNot{Operand: p.unary(expected)}
	case p.match(lexer.TokenTilde):
		return &ast.BinaryNot{Operand: p.unary(expected)}
	default:
		return p.primary(expected)
	}
}

func (p *Parser) primary(expected value.Kind) ast.Expr {
	switch {
	case p.match(lexer.TokenNumber):
		return p.numberLiteral(expected)
	case p.match(lexer.TokenString):
		p.fail(p.previous().Line, "string literals are not valid expressions (value kinds are Bool/Char/Int/Long only)")
	case p.match(lexer.TokenTrue):
		return p.maybeConvert(&ast.Literal{Value: value.NewBool(true)}, value.KindBool, expected)
	case p.match(lexer.TokenFalse):
		return p.maybeConvert(&ast.Literal{Value: value.NewBool(false)}, value.KindBool, expected)
	case p.match(lexer.TokenLParen):
		e := p.expressionAsType(expected)
		p.consume(lexer.TokenRParen, "Expect ')' after expression")
		return e
	case p.check(lexer.TokenIdentifier):
		return p.identifierExpr(expected)
	}
	p.fail(p.peek().Line, "Unexpected token '%s'", p.peek().Value)
	panic("unreachable")
}

func (p *Parser) numberLiteral(expected value.Kind) ast.Expr {
	tok := p.previous()
	n, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		p.fail(tok.Line, "Invalid number literal '%s'", tok.Value)
	}
	kind := expected
	if kind == sentinelAny {
		kind = value.KindLong
	}
	return &ast.Literal{Value: coerceLiteral(n, kind)}
}

func (p *Parser) identifierExpr(expected value.Kind) ast.Expr {
	nameTok := p.advance()
	if p.check(lexer.TokenLParen) {
		return p.callExpr(nameTok, expected)
	}
	v := p.resolve(nameTok.Value, nameTok.Line)
	return p.maybeConvert(&ast.Variable{FrameID: v.FrameID, LocalIndex: v.LocalIndex, Type: v.Type}, v.Type, expected)
}

func (p *Parser) callExpr(nameTok lexer.Token, expected value.Kind) ast.Expr {
	fn, ok := p.functions[nameTok.Value]
	if !ok {
		p.fail(nameTok.Line, "Call to undeclared function '%s'", nameTok.Value)
	}
	p.consume(lexer.TokenLParen, "Expect '(' after function name")
	var args []ast.Expr
	if !p.check(lexer.TokenRParen) {
		for {
			idx := len(args)
			if idx >= len(fn.Params) {
				p.fail(nameTok.Line, "Too many arguments to '%s'", nameTok.Value)
			}
			args = append(args, p.expressionAsType(fn.Params[idx].Type))
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.consume(lexer.TokenRParen, "Expect ')' after arguments")
	if len(args) != len(fn.Params) {
		p.fail(nameTok.Line, "'%s' expects %d argument(s), got %d", nameTok.Value, len(fn.Params), len(args))
	}
	call := &ast.Call{Function: fn, Args: args}
	if fn.Void {
		return call
	}
	return p.maybeConvert(call, fn.ReturnType, expected)
}

// maybeConvert wraps e in Convert when its static kind differs from
// the context's expected kind, unless the context accepts any kind.
func (p *Parser) maybeConvert(e ast.Expr, actual value.Kind, expected value.Kind) ast.Expr {
	if expected == sentinelAny || expected == actual {
		return e
	}
	return &ast.Convert{Operand: e, Target: expected}
}
