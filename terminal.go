package readline

import (
	"bufio"
	"io"
	"strings"
)

const (
	defaultColumns = 80
	defaultRows    = 24
)

// Terminal is the device an editor reads keys from and draws on.
type Terminal interface {
	io.ByteReader
	io.Writer

	// EnableRawMode switches off line buffering and echo until RestoreMode.
	EnableRawMode() error
	RestoreMode() error
	// Size reports the width and height in character cells.
	Size() (columns, rows uint32)
	// IsTerminal reports whether keys can be edited interactively. When it
	// is false the editor reads plain lines.
	IsTerminal() bool
}

type streamTerminal struct {
	in      *bufio.Reader
	out     io.Writer
	columns uint32
	rows    uint32
}

// NewStreamTerminal returns an interactive terminal over plain streams with
// a fixed size. A nil input ends immediately, a nil output discards.
func NewStreamTerminal(input io.Reader, output io.Writer, columns, rows uint32) Terminal {
	if input == nil {
		input = strings.NewReader("")
	}
	if output == nil {
		output = io.Discard
	}
	if columns == 0 {
		columns = defaultColumns
	}
	if rows == 0 {
		rows = defaultRows
	}
	return &streamTerminal{
		in:      bufio.NewReader(input),
		out:     output,
		columns: columns,
		rows:    rows,
	}
}

func (s *streamTerminal) ReadByte() (byte, error) {
	return s.in.ReadByte()
}

func (s *streamTerminal) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func (s *streamTerminal) EnableRawMode() error {
	return nil
}

func (s *streamTerminal) RestoreMode() error {
	return nil
}

func (s *streamTerminal) Size() (uint32, uint32) {
	return s.columns, s.rows
}

func (s *streamTerminal) IsTerminal() bool {
	return true
}

type pipeTerminal struct {
	streamTerminal
}

// newPipeTerminal wraps streams that are not a tty; editors on it read
// whole lines without editing.
func newPipeTerminal(input io.Reader, output io.Writer) Terminal {
	return &pipeTerminal{streamTerminal: *NewStreamTerminal(input, output, 0, 0).(*streamTerminal)}
}

func (p *pipeTerminal) IsTerminal() bool {
	return false
}
