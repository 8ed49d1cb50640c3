package readline

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"

	"github.com/alimpfard/readline/internal/log"
)

// cursorPosition maps a visible column count (prompt plus text) onto the
// wrapped screen. A width of zero means the terminal never wraps.
func cursorPosition(promptLength, offset, columns uint32) (line, column uint32) {
	total := promptLength + offset
	if columns == 0 {
		return 0, total
	}
	return total / columns, total % columns
}

// lineCount is the number of wrapped rows prompt plus text occupy, at least one.
func lineCount(promptLength, length, columns uint32) uint32 {
	if columns == 0 {
		return 1
	}
	lines := (promptLength + length + columns - 1) / columns
	if lines == 0 {
		return 1
	}
	return lines
}

func runeWidth(r rune) uint32 {
	if r < 0x20 || r == 0x7f {
		return 2
	}
	return 1
}

func textWidth(text []rune) uint32 {
	width := uint32(0)
	for _, r := range text {
		width += runeWidth(r)
	}
	return width
}

func visibleLength(s string) uint32 {
	return textWidth([]rune(ansi.Strip(s)))
}

// displayEngine keeps the screen in sync with a lineBuffer. Every movement
// is relative to where it last left the terminal cursor.
type displayEngine struct {
	out     io.Writer
	columns uint32
	rows    uint32

	prompt       string
	promptLength uint32

	drawn     bool
	drawnLen  uint32
	cursorRow uint32
	cursorCol uint32
	usedRows  uint32
}

func newDisplayEngine(out io.Writer) *displayEngine {
	return &displayEngine{out: out}
}

func (d *displayEngine) setSize(columns, rows uint32) {
	d.columns = columns
	d.rows = rows
}

// begin starts a fresh line on the current terminal row. Every line of the
// prompt but the last is printed once here and never redrawn.
func (d *displayEngine) begin(prompt string, style Style, profile termenv.Profile) {
	d.drawn = false
	if i := strings.LastIndex(prompt, "\n"); i >= 0 {
		lead := strings.ReplaceAll(prompt[:i], "\n", "\r\n")
		d.write([]byte(style.render(lead, profile) + "\r\n"))
		prompt = prompt[i+1:]
	}
	d.setPrompt(style.render(prompt, profile))
}

// setPrompt swaps the redrawable prompt; the next refresh paints it.
func (d *displayEngine) setPrompt(rendered string) {
	d.prompt = rendered
	d.promptLength = visibleLength(rendered)
}

func (d *displayEngine) position(buf *lineBuffer, offset uint32) (uint32, uint32) {
	return cursorPosition(d.promptLength, textWidth(buf.text[:buf.clamp(offset)]), d.columns)
}

// offsetAt is the last buffer offset drawn at or before the given screen
// cell, counting wide caret-notation runes by their real width.
func (d *displayEngine) offsetAt(buf *lineBuffer, row, col uint32) uint32 {
	best := uint32(0)
	for offset := uint32(0); offset <= buf.length(); offset++ {
		r, c := d.position(buf, offset)
		if r > row || (r == row && c > col) {
			break
		}
		best = offset
	}
	return best
}

func (d *displayEngine) numLines(buf *lineBuffer) uint32 {
	return lineCount(d.promptLength, textWidth(buf.text), d.columns)
}

func (d *displayEngine) write(p []byte) {
	if len(p) == 0 {
		return
	}
	if _, err := d.out.Write(p); err != nil {
		log.ErrorErr(log.CatDisplay, "write failed", err)
	}
}

// refresh repaints prompt and buffer from the anchor row.
func (d *displayEngine) refresh(buf *lineBuffer) {
	outputBuffer := bytes.NewBuffer(nil)
	defer func() {
		d.write(outputBuffer.Bytes())
	}()

	d.returnToAnchor(outputBuffer)

	outputBuffer.WriteString(d.prompt)
	writeText(outputBuffer, buf.text)
	d.settleAtEnd(outputBuffer, buf)

	d.drawn = true
	d.moveTo(outputBuffer, buf, buf.cursor)
}

// tryAppend writes only the characters added at the end since the last
// draw. It reports false when a full refresh is needed instead.
func (d *displayEngine) tryAppend(buf *lineBuffer) bool {
	if !d.drawn || buf.cursor != buf.length() || buf.length() <= d.drawnLen {
		return false
	}
	endRow, endCol := d.position(buf, d.drawnLen)
	if endRow != d.cursorRow || endCol != d.cursorCol {
		return false
	}
	if _, col := d.position(buf, buf.length()); d.columns > 0 && col == 0 {
		return false
	}

	outputBuffer := bytes.NewBuffer(nil)
	writeText(outputBuffer, buf.text[d.drawnLen:])
	d.settleAtEnd(outputBuffer, buf)
	d.write(outputBuffer.Bytes())
	return true
}

// moveCursor repositions the terminal cursor after a cursor-only change.
func (d *displayEngine) moveCursor(buf *lineBuffer) {
	if !d.drawn {
		d.refresh(buf)
		return
	}
	outputBuffer := bytes.NewBuffer(nil)
	d.moveTo(outputBuffer, buf, buf.cursor)
	d.write(outputBuffer.Bytes())
}

// finish leaves the terminal cursor at the start of the row below the line.
func (d *displayEngine) finish(buf *lineBuffer) {
	outputBuffer := bytes.NewBuffer(nil)
	if d.drawn {
		d.moveTo(outputBuffer, buf, buf.length())
		if d.cursorCol != 0 || d.cursorRow == 0 {
			outputBuffer.WriteString("\r\n")
		}
	} else {
		outputBuffer.WriteString("\r\n")
	}
	d.drawn = false
	d.write(outputBuffer.Bytes())
}

// abort marks the line as abandoned with marker and moves below it.
func (d *displayEngine) abort(buf *lineBuffer, marker string) {
	outputBuffer := bytes.NewBuffer(nil)
	if d.drawn {
		d.moveTo(outputBuffer, buf, buf.length())
	}
	outputBuffer.WriteString(marker + "\r\n")
	d.drawn = false
	d.write(outputBuffer.Bytes())
}

// printBelow writes text under the line; the next refresh draws the prompt
// again after it.
func (d *displayEngine) printBelow(buf *lineBuffer, text string) {
	d.finish(buf)
	d.write([]byte(strings.ReplaceAll(text, "\n", "\r\n")))
}

func (d *displayEngine) clearScreen() {
	outputBuffer := bytes.NewBuffer(nil)
	_, _ = outputBuffer.WriteString("\x1b[3J\x1b[H\x1b[2J")
	d.drawn = false
	d.write(outputBuffer.Bytes())
}

func (d *displayEngine) returnToAnchor(w io.Writer) {
	if !d.drawn {
		return
	}
	vtMoveRelative(-int64(d.cursorRow), 0, w)
	_, _ = w.Write([]byte("\r"))
	vtClearLines(d.usedRows-1, w)
	d.cursorRow, d.cursorCol = 0, 0
}

// settleAtEnd records the cursor at the end of the text. A line filling the
// last column exactly leaves the terminal in its pending-wrap state, so the
// cursor is pushed onto the next row explicitly.
func (d *displayEngine) settleAtEnd(w io.Writer, buf *lineBuffer) {
	endRow, endCol := d.position(buf, buf.length())
	if d.columns > 0 && endCol == 0 && endRow > 0 {
		_, _ = w.Write([]byte("\r\n"))
	}
	d.cursorRow, d.cursorCol = endRow, endCol
	d.usedRows = endRow + 1
	d.drawnLen = buf.length()
}

func (d *displayEngine) moveTo(w io.Writer, buf *lineBuffer, offset uint32) {
	row, col := d.position(buf, offset)
	vtMoveRelative(int64(row)-int64(d.cursorRow), int64(col)-int64(d.cursorCol), w)
	d.cursorRow, d.cursorCol = row, col
}

func writeText(w io.Writer, text []rune) {
	var sb strings.Builder
	for _, c := range text {
		switch {
		case c == 0x7f:
			sb.WriteString("\x1b[7m^?\x1b[27m")
		case c < 0x20:
			sb.WriteString("\x1b[7m^" + string(c+64) + "\x1b[27m")
		default:
			sb.WriteRune(c)
		}
	}
	_, _ = io.WriteString(w, sb.String())
}

func vtMoveRelative(row, col int64, w io.Writer) {
	xOp := 'A'
	yOp := 'D'

	if row > 0 {
		xOp = 'B'
	} else {
		row = -row
	}

	if col > 0 {
		yOp = 'C'
	} else {
		col = -col
	}

	if row > 0 {
		_, _ = fmt.Fprintf(w, "\x1b[%d%c", row, xOp)
	}
	if col > 0 {
		_, _ = fmt.Fprintf(w, "\x1b[%d%c", col, yOp)
	}
}

// vtClearLines clears the current row and countBelow rows under it, leaving
// the cursor on the current row.
func vtClearLines(countBelow uint32, w io.Writer) {
	_, _ = w.Write([]byte("\x1b[2K"))
	for i := uint32(0); i < countBelow; i++ {
		_, _ = w.Write([]byte("\x1b[B\x1b[2K"))
	}
	vtMoveRelative(-int64(countBelow), 0, w)
}
