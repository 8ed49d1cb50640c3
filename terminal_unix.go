//go:build linux || darwin

package readline

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/alimpfard/readline/internal/log"
)

type ttyTerminal struct {
	in     *os.File
	reader *bufio.Reader
	out    *os.File

	original *unix.Termios
}

// NewTTYTerminal returns the process terminal: keys from stdin, drawing on
// stderr. When stdin is not a tty the result reads plain lines.
func NewTTYTerminal() Terminal {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return newPipeTerminal(os.Stdin, os.Stderr)
	}
	return &ttyTerminal{
		in:     os.Stdin,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stderr,
	}
}

func (t *ttyTerminal) ReadByte() (byte, error) {
	return t.reader.ReadByte()
}

func (t *ttyTerminal) Write(p []byte) (int, error) {
	return t.out.Write(p)
}

func (t *ttyTerminal) EnableRawMode() error {
	fd := int(t.in.Fd())
	termios, err := getTermios(fd)
	if err != nil {
		if errors.Is(err, unix.ENOTTY) {
			return ErrNotTerminal
		}
		return fmt.Errorf("getting terminal attributes: %w", err)
	}

	original := *termios
	t.original = &original

	termios.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Iflag &^= unix.IXON | unix.ICRNL
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := setTermios(fd, termios); err != nil {
		return fmt.Errorf("setting terminal attributes: %w", err)
	}
	log.Debug(log.CatTerm, "raw mode enabled")
	return nil
}

func (t *ttyTerminal) RestoreMode() error {
	if t.original == nil {
		return nil
	}
	if err := setTermios(int(t.in.Fd()), t.original); err != nil {
		return fmt.Errorf("restoring terminal attributes: %w", err)
	}
	t.original = nil
	log.Debug(log.CatTerm, "terminal mode restored")
	return nil
}

// Size asks stderr, then stdin, then the controlling tty.
func (t *ttyTerminal) Size() (uint32, uint32) {
	for _, fd := range []int{int(t.out.Fd()), int(t.in.Fd())} {
		if columns, rows, err := term.GetSize(fd); err == nil && columns > 0 {
			return uint32(columns), uint32(rows)
		}
	}
	if tty, err := os.Open("/dev/tty"); err == nil {
		defer tty.Close()
		if columns, rows, err := term.GetSize(int(tty.Fd())); err == nil && columns > 0 {
			return uint32(columns), uint32(rows)
		}
	}
	log.Warn(log.CatTerm, "terminal size unavailable, assuming default")
	return defaultColumns, defaultRows
}

func (t *ttyTerminal) IsTerminal() bool {
	return term.IsTerminal(int(t.in.Fd()))
}
