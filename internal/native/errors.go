package native

import "banana/internal/diagnostics"

func errNoSuchNative(name string) error {
	return diagnostics.New(diagnostics.RuntimeError, 0, "no native routine registered for '%s'", name)
}
