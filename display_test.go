package readline

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestCursorPosition(t *testing.T) {
	line, column := cursorPosition(8, 15, 20)
	require.Equal(t, uint32(1), line)
	require.Equal(t, uint32(3), column)

	line, column = cursorPosition(8, 15, 0)
	require.Equal(t, uint32(0), line)
	require.Equal(t, uint32(23), column)
}

func TestLineCount(t *testing.T) {
	require.Equal(t, uint32(1), lineCount(0, 0, 20))
	require.Equal(t, uint32(1), lineCount(2, 18, 20))
	require.Equal(t, uint32(2), lineCount(2, 19, 20))
	require.Equal(t, uint32(1), lineCount(2, 500, 0))
}

func TestVisibleLengthIgnoresEscapes(t *testing.T) {
	require.Equal(t, uint32(2), visibleLength("\x1b[1;32m> \x1b[0m"))
	require.Equal(t, uint32(4), visibleLength("a\x01b"))
}

func newTestDisplay(columns uint32, prompt string) (*displayEngine, *bytes.Buffer) {
	var out bytes.Buffer
	d := newDisplayEngine(&out)
	d.setSize(columns, 24)
	d.begin(prompt, Style{}, termenv.Ascii)
	return d, &out
}

func TestRefreshWritesPromptAndPositionsCursor(t *testing.T) {
	d, out := newTestDisplay(80, "> ")
	b := bufferWith("abc")
	b.setCursor(1)

	d.refresh(b)
	require.Equal(t, "> abc\x1b[2D", out.String())

	out.Reset()
	d.refresh(b)
	require.Equal(t, "\r\x1b[2K> abc\x1b[2D", out.String())
}

func TestRefreshClearsPreviouslyWrappedRows(t *testing.T) {
	d, out := newTestDisplay(10, "> ")
	b := bufferWith("0123456789abc")
	d.refresh(b)
	require.Equal(t, "> 0123456789abc", out.String())
	require.Equal(t, uint32(1), d.cursorRow)
	require.Equal(t, uint32(5), d.cursorCol)

	// Shrinking to one row still clears the second row drawn before.
	out.Reset()
	b.set("x")
	d.refresh(b)
	require.Equal(t, "\x1b[1A\r\x1b[2K\x1b[B\x1b[2K\x1b[1A> x", out.String())
	require.Equal(t, uint32(1), d.usedRows)
}

func TestRefreshExactFillMovesToNextRow(t *testing.T) {
	d, out := newTestDisplay(10, "> ")
	b := bufferWith("01234567")
	d.refresh(b)
	require.Equal(t, "> 01234567\r\n", out.String())
	require.Equal(t, uint32(1), d.cursorRow)
	require.Equal(t, uint32(0), d.cursorCol)
	require.Equal(t, uint32(2), d.usedRows)
}

func TestTryAppendWritesOnlyNewCharacters(t *testing.T) {
	d, out := newTestDisplay(10, "> ")
	b := bufferWith("ab")
	d.refresh(b)

	out.Reset()
	b.insert('c', b.length())
	b.setCursor(b.length())
	require.True(t, d.tryAppend(b))
	require.Equal(t, "c", out.String())

	// A character landing on the last column needs the full path.
	b.set("abcdefgh")
	require.False(t, d.tryAppend(b))

	// Not at the end of the buffer.
	b.set("abcd")
	b.setCursor(1)
	require.False(t, d.tryAppend(b))
}

func TestMoveCursorAcrossRows(t *testing.T) {
	d, out := newTestDisplay(10, "> ")
	b := bufferWith("0123456789abc")
	d.refresh(b)

	out.Reset()
	b.setCursor(2)
	d.moveCursor(b)
	require.Equal(t, "\x1b[1A\x1b[1D", out.String())
	require.Equal(t, uint32(0), d.cursorRow)
	require.Equal(t, uint32(4), d.cursorCol)
}

func TestOffsetAtCountsCaretWidth(t *testing.T) {
	d, _ := newTestDisplay(10, "> ")
	b := bufferWith("abcd\x01efghijkl")

	require.Equal(t, uint32(4), d.offsetAt(b, 0, 6))
	require.Equal(t, uint32(4), d.offsetAt(b, 0, 7))
	require.Equal(t, uint32(9), d.offsetAt(b, 1, 2))
	require.Equal(t, uint32(13), d.offsetAt(b, 1, 99))
	require.Equal(t, uint32(0), d.offsetAt(b, 0, 0))
}

func TestFinishMovesBelowLine(t *testing.T) {
	d, out := newTestDisplay(80, "> ")
	b := bufferWith("hello")
	b.setCursor(0)
	d.refresh(b)

	out.Reset()
	d.finish(b)
	require.Equal(t, "\x1b[5C\r\n", out.String())
	require.False(t, d.drawn)
}

func TestMultiLinePromptLeadPrintedOnce(t *testing.T) {
	d, out := newTestDisplay(80, "status\n$ ")
	require.Equal(t, "status\r\n", out.String())
	require.Equal(t, uint32(2), d.promptLength)
}

func TestZeroWidthNeverWraps(t *testing.T) {
	d, out := newTestDisplay(0, "> ")
	b := bufferWith("0123456789")
	d.refresh(b)
	require.Equal(t, "> 0123456789", out.String())
	require.Equal(t, uint32(0), d.cursorRow)
	require.Equal(t, uint32(1), d.numLines(b))
}
