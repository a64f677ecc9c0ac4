package lexer

import "testing"

func kinds(toks []Token) []TokenKind {
	out := make([]TokenKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, err := NewScanner("( ) { } , . ; ~ ! != = == < <= > >= - -- -= + ++ += * *= / /= % %= ^ ^= & &= | |=").ScanTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenKind{
		TokenLParen, TokenRParen, TokenLBrace, TokenRBrace, TokenComma, TokenDot, TokenSemicolon, TokenTilde,
		TokenBang, TokenBangEqual, TokenEqual, TokenEqualEqual, TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual,
		TokenMinus, TokenMinusMinus, TokenMinusEqual, TokenPlus, TokenPlusPlus, TokenPlusEqual,
		TokenStar, TokenStarEqual, TokenSlash, TokenSlashEqual, TokenPercent, TokenPercentEqual,
		TokenCaret, TokenCaretEqual, TokenAmp, TokenAmpEqual, TokenPipe, TokenPipeEqual, TokenEOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestKeywordNotPrefixOfIdentifier(t *testing.T) {
	toks, err := NewScanner("if ifx").ScanTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != TokenIf {
		t.Errorf("toks[0] = %s, want IF", toks[0].Kind)
	}
	if toks[1].Kind != TokenIdentifier || toks[1].Value != "ifx" {
		t.Errorf("toks[1] = %+v, want IDENT ifx", toks[1])
	}
}

func TestLineTracking(t *testing.T) {
	toks, err := NewScanner("x\ny\n\nz").ScanTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := []int{1, 2, 4, 4}
	for i, l := range lines {
		if toks[i].Line != l {
			t.Errorf("toks[%d].Line = %d, want %d", i, toks[i].Line, l)
		}
	}
}

func TestLineComment(t *testing.T) {
	toks, err := NewScanner("x // comment\ny").ScanTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(toks) != 3 || toks[0].Value != "x" || toks[1].Value != "y" {
		t.Fatalf("unexpected tokens: %v", toks)
	}
}

func TestStringEscape(t *testing.T) {
	toks, err := NewScanner(`"a\"b"`).ScanTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != TokenString || toks[0].Value != `a\"b` {
		t.Errorf("got %+v", toks[0])
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := NewScanner(`"abc`).ScanTokens()
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestUnrecognizedCharacter(t *testing.T) {
	_, err := NewScanner("x # y").ScanTokens()
	if err == nil {
		t.Fatal("expected error for unrecognized character")
	}
}

func TestNativeAnnotation(t *testing.T) {
	toks, err := NewScanner("@native(\"math::twice\")").ScanTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toks[0].Kind != TokenNative {
		t.Errorf("got %s, want @NATIVE", toks[0].Kind)
	}
}

func TestNumberLiteral(t *testing.T) {
	toks, err := NewScanner("123 0 99").ScanTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"123", "0", "99"} {
		if toks[i].Kind != TokenNumber || toks[i].Value != want {
			t.Errorf("toks[%d] = %+v, want NUMBER %s", i, toks[i], want)
		}
	}
}

func TestTokenLossless(t *testing.T) {
	src := "long fib ( long n ) { return n ; }"
	toks, err := NewScanner(src).ScanTokens()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reconstructed := ""
	for i, tok := range toks {
		if tok.Kind == TokenEOF {
			break
		}
		if i > 0 {
			reconstructed += " "
		}
		reconstructed += tok.Value
	}
	if reconstructed != src {
		t.Errorf("reconstructed = %q, want %q", reconstructed, src)
	}
}
