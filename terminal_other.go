//go:build !linux && !darwin

package readline

import "os"

// NewTTYTerminal returns a line-reading terminal over stdin and stderr;
// raw mode is only supported on linux and darwin.
func NewTTYTerminal() Terminal {
	return newPipeTerminal(os.Stdin, os.Stderr)
}
