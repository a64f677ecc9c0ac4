// Package diagnostics implements banana's fatal-error reporting: every
// scan/parse/codegen/runtime failure is a single line of the form
// "Line L: <message>" (or the bare message when no line is known) and
// the process terminates.
package diagnostics

import "fmt"

// Kind classifies the fatal per the §7 taxonomy.
type Kind string

const (
	ScanError    Kind = "scan error"
	ParseError   Kind = "parse error"
	CodegenError Kind = "codegen error"
	RuntimeError Kind = "runtime error"
)

// Fatal is the single error type every banana component returns on
// failure. Line is 0 when a location isn't meaningful (e.g. a codegen
// invariant violation).
type Fatal struct {
	Kind    Kind
	Line    int
	Message string
}

func New(kind Kind, line int, format string, args ...any) *Fatal {
	return &Fatal{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Error renders "Line L: <message>" per §4.D's error policy. Errors
// without a line number (codegen/runtime invariants that aren't tied
// to source text) omit the prefix.
func (f *Fatal) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("Line %d: %s", f.Line, f.Message)
	}
	return f.Message
}
