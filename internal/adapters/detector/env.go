// Package detector inspects the environment to pick output modes.
package detector

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// IsCI reports whether the process runs under a CI system.
func IsCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// Interactive reports whether output to f should be styled for a human:
// f is a terminal and the process does not run under CI.
func Interactive(f *os.File) bool {
	return IsTerminal(f) && !IsCI()
}
