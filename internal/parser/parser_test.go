package parser

import (
	"banana/internal/ast"
	"banana/internal/lexer"
	"banana/internal/value"
	"testing"
)

func parseString(input string) (main *ast.Function, err error) {
	s := lexer.NewScanner(input)
	tokens, scanErr := s.ScanTokens()
	if scanErr != nil {
		return nil, scanErr
	}
	return Parse(tokens, nil)
}

func assertParseSuccess(t *testing.T, input, description string) *ast.Function {
	t.Helper()
	main, err := parseString(input)
	if err != nil {
		t.Errorf("%s: parsing failed: %v", description, err)
		return nil
	}
	if main == nil {
		t.Errorf("%s: parsing returned nil", description)
	}
	return main
}

func assertParseError(t *testing.T, input, description string) {
	t.Helper()
	_, err := parseString(input)
	if err == nil {
		t.Errorf("%s: expected parsing to fail but it succeeded", description)
	}
}

func TestVariableDeclarations(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldPass bool
	}{
		{"bool decl", "bool ok = true;", true},
		{"int decl", "int x = 5;", true},
		{"long decl", "long y = 5;", true},
		{"char decl", "char c = 5;", true},
		{"widening on read", "int x = 5; long y = x;", true},
		{"redeclaration", "int x = 1; int x = 2;", false},
		{"void variable", "void x = 1;", false},
		{"undeclared use", "int x = y;", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.shouldPass {
				assertParseSuccess(t, tc.input, tc.name)
			} else {
				assertParseError(t, tc.input, tc.name)
			}
		})
	}
}

func TestFunctionDeclarationAndCall(t *testing.T) {
	src := `
long fib(long n) {
  if (n == 1 or n == 2) { return n; }
  return fib(n - 1) + fib(n - 2);
}
for (long i = 1; i < 10; i = i + 1) { print fib(i); }
`
	main := assertParseSuccess(t, src, "fib program")
	if main == nil {
		return
	}
	if len(main.Body.Stmts) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(main.Body.Stmts))
	}
	fn, ok := main.Body.Stmts[0].(*ast.Function)
	if !ok {
		t.Fatalf("expected first top-level statement to be a Function, got %T", main.Body.Stmts[0])
	}
	if fn.Name != "fib" || len(fn.Params) != 1 {
		t.Fatalf("fib not parsed as expected: %+v", fn)
	}
}

func TestCallBeforeDeclarationFails(t *testing.T) {
	assertParseError(t, "void f() { g(); } void g() {}", "forward call")
}

func TestCompoundAssignmentDesugars(t *testing.T) {
	main := assertParseSuccess(t, "int x = 1; x += 2; x++; x--;", "compound assignment")
	if main == nil {
		return
	}
	if len(main.Body.Stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(main.Body.Stmts))
	}
	for _, s := range main.Body.Stmts[1:] {
		assign, ok := s.(*ast.Assign)
		if !ok {
			t.Fatalf("expected Assign, got %T", s)
		}
		if _, ok := assign.Value.(*ast.BinaryOp); !ok {
			t.Fatalf("expected compound assignment to desugar to BinaryOp, got %T", assign.Value)
		}
	}
}

func TestIfElseAndWhile(t *testing.T) {
	assertParseSuccess(t, `
int x = 0;
while (x < 10) { x = x + 1; }
if (x == 10) { print x; } else { print 0; }
`, "if/while")
}

func TestNativeSignatureMismatchFails(t *testing.T) {
	natives := fakeNatives{"math::twice": {ret: value.KindLong, params: []value.Kind{value.KindLong}}}
	_, err := Parse(tokensFor(t, `@native("math::twice") int twice(int x);`), natives)
	if err == nil {
		t.Fatal("expected native signature mismatch to fail")
	}
}

func TestNativeSignatureMatchSucceeds(t *testing.T) {
	natives := fakeNatives{"math::twice": {ret: value.KindInt, params: []value.Kind{value.KindInt}}}
	_, err := Parse(tokensFor(t, `@native("math::twice") int twice(int x);`), natives)
	if err != nil {
		t.Fatalf("expected matching native signature to succeed, got: %v", err)
	}
}

func tokensFor(t *testing.T, src string) []lexer.Token {
	t.Helper()
	s := lexer.NewScanner(src)
	toks, err := s.ScanTokens()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	return toks
}

type nativeSig struct {
	ret    value.Kind
	params []value.Kind
}

type fakeNatives map[string]nativeSig

func (f fakeNatives) Lookup(name string) (value.Kind, []value.Kind, bool) {
	sig, ok := f[name]
	return sig.ret, sig.params, ok
}
