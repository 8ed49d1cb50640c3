package readline

import (
	"errors"

	"github.com/atotto/clipboard"
)

// clipboardMirror receives a copy of every cut. The editor's own clipboard
// slot stays authoritative; the mirror is best effort.
type clipboardMirror interface {
	Copy(text string) error
}

// systemClipboard mirrors cuts to the OS clipboard.
type systemClipboard struct{}

var errClipboardUnsupported = errors.New("system clipboard unsupported")

func (systemClipboard) Copy(text string) error {
	if clipboard.Unsupported {
		return errClipboardUnsupported
	}
	return clipboard.WriteAll(text)
}
