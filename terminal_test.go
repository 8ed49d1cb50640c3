package readline

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamTerminalDefaults(t *testing.T) {
	term := NewStreamTerminal(nil, nil, 0, 0)

	_, err := term.ReadByte()
	require.ErrorIs(t, err, io.EOF)

	n, err := term.Write([]byte("discarded"))
	require.NoError(t, err)
	require.Equal(t, 9, n)

	columns, rows := term.Size()
	require.Equal(t, uint32(80), columns)
	require.Equal(t, uint32(24), rows)
	require.True(t, term.IsTerminal())
	require.NoError(t, term.EnableRawMode())
	require.NoError(t, term.RestoreMode())
}

func TestStreamTerminalPassesBytesThrough(t *testing.T) {
	var out bytes.Buffer
	term := NewStreamTerminal(strings.NewReader("ab"), &out, 120, 40)

	b, err := term.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte('a'), b)

	_, err = term.Write([]byte("xyz"))
	require.NoError(t, err)
	require.Equal(t, "xyz", out.String())

	columns, rows := term.Size()
	require.Equal(t, uint32(120), columns)
	require.Equal(t, uint32(40), rows)
}

func TestPipeTerminalIsNotInteractive(t *testing.T) {
	term := newPipeTerminal(strings.NewReader(""), nil)
	require.False(t, term.IsTerminal())
}
