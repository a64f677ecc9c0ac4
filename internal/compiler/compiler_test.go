package compiler

import (
	"testing"

	"banana/internal/bytecode"
	"banana/internal/lexer"
	"banana/internal/parser"
	"banana/internal/vm"
)

func compileSource(t *testing.T, src string) []byte {
	t.Helper()
	s := lexer.NewScanner(src)
	toks, err := s.ScanTokens()
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	main, err := parser.Parse(toks, nil)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return Compile(main)
}

func TestCompileDecodesCleanly(t *testing.T) {
	prog := compileSource(t, `int x = 1; print x;`)
	if _, err := bytecode.Decode(prog); err != nil {
		t.Fatalf("compiled program failed to decode: %v", err)
	}
}

func TestEndToEndFibonacci(t *testing.T) {
	src := `
long fib(long n) {
  if (n == 1 or n == 2) { return n; }
  return fib(n - 1) + fib(n - 2);
}
print fib(10);
`
	prog := compileSource(t, src)
	machine := vm.New(prog, nil)
	if err := machine.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestIfElseBranching(t *testing.T) {
	prog := compileSource(t, `
int x = 5;
if (x > 3) { print 1; } else { print 0; }
`)
	if err := vm.New(prog, nil).Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestForLoop(t *testing.T) {
	prog := compileSource(t, `
for (int i = 0; i < 5; i++) { print i; }
`)
	if err := vm.New(prog, nil).Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}
