package readline

import (
	"io"
	"strings"

	"github.com/alimpfard/readline/internal/log"
)

func finish(editor *lineEditor) {
	editor.Finish()
}

// finishEdit ends input on an empty line and deletes forward otherwise.
func finishEdit(editor *lineEditor) {
	if editor.buffer.length() > 0 {
		eraseCharacterForwards(editor)
		return
	}
	log.Debug(log.CatInput, "end of input")
	editor.display.finish(editor.buffer)
	editor.returnedLine = ""
	editor.inputError = io.EOF
	editor.finish = true
}

func interrupt(editor *lineEditor) {
	log.Debug(log.CatInput, "interrupted")
	editor.display.abort(editor.buffer, "^C")

	if editor.onInterruptHandled != nil {
		editor.onInterruptHandled()
	}

	editor.buffer.reset()
	editor.returnedLine = ""
	editor.inputError = ErrInterrupted
	editor.finish = true
}

func cursorLeftWord(editor *lineEditor) {
	editor.buffer.setCursor(editor.buffer.wordStart(editor.buffer.cursor))
}
func cursorLeftCharacter(editor *lineEditor) {
	if editor.buffer.cursor > 0 {
		editor.buffer.cursor--
	}
}
func cursorRightWord(editor *lineEditor) {
	editor.buffer.setCursor(editor.buffer.wordEnd(editor.buffer.cursor))
}
func cursorRightCharacter(editor *lineEditor) {
	if editor.buffer.cursor < editor.buffer.length() {
		editor.buffer.cursor++
	}
}
func goHome(editor *lineEditor) {
	editor.buffer.cursor = 0
}
func goEnd(editor *lineEditor) {
	editor.buffer.cursor = editor.buffer.length()
}
func eraseCharacterBackwards(editor *lineEditor) {
	if editor.buffer.cursor == 0 {
		editor.bell()
		return
	}
	editor.buffer.remove(editor.buffer.cursor - 1)
	editor.refreshNeeded = true
}
func eraseCharacterForwards(editor *lineEditor) {
	if editor.buffer.cursor == editor.buffer.length() {
		editor.bell()
		return
	}
	editor.buffer.remove(editor.buffer.cursor)
	editor.refreshNeeded = true
}

// cutRange cuts [start, end) into the clipboard and leaves the cursor at
// start. An empty range still empties the clipboard.
func cutRange(editor *lineEditor, start, end uint32) {
	editor.buffer.setCursor(editor.buffer.cut(start, end))
	if start == end {
		editor.bell()
		return
	}
	editor.refreshNeeded = true
}
func eraseWordBackwards(editor *lineEditor) {
	b := editor.buffer
	if editor.config.WordEraseMode == WordEraseModeWord {
		cutRange(editor, b.wordStart(b.cursor), b.cursor)
		return
	}
	cutRange(editor, b.spaceStart(b.cursor), b.cursor)
}
func eraseAlnumWordBackwards(editor *lineEditor) {
	cutRange(editor, editor.buffer.wordStart(editor.buffer.cursor), editor.buffer.cursor)
}
func eraseAlnumWordForwards(editor *lineEditor) {
	cutRange(editor, editor.buffer.cursor, editor.buffer.wordEnd(editor.buffer.cursor))
}
func eraseToEnd(editor *lineEditor) {
	cutRange(editor, editor.buffer.cursor, editor.buffer.length())
}
func killLine(editor *lineEditor) {
	cutRange(editor, 0, editor.buffer.cursor)
}
func yank(editor *lineEditor) {
	if len(editor.buffer.clipboard) == 0 {
		editor.bell()
		return
	}
	atEnd := editor.buffer.cursor == editor.buffer.length()
	editor.buffer.setCursor(editor.buffer.paste(editor.buffer.cursor))
	if atEnd {
		editor.pendingAppend = true
	} else {
		editor.refreshNeeded = true
	}
}
func clearScreen(editor *lineEditor) {
	editor.display.clearScreen()
	editor.refreshNeeded = true
}
func transposeCharacters(editor *lineEditor) {
	if editor.buffer.cursor > 0 && editor.buffer.length() >= 2 {
		editor.buffer.setCursor(editor.buffer.transpose(editor.buffer.cursor))
		editor.refreshNeeded = true
	}
}

func caseChangeWord(editor *lineEditor, op caseChangeOp) {
	editor.buffer.setCursor(editor.buffer.transformWord(editor.buffer.cursor, op))
	editor.refreshNeeded = true
}

func capitalizeWord(editor *lineEditor) {
	caseChangeWord(editor, caseChangeOpCapital)
}
func lowercaseWord(editor *lineEditor) {
	caseChangeWord(editor, caseChangeOpLower)
}
func uppercaseWord(editor *lineEditor) {
	caseChangeWord(editor, caseChangeOpUpper)
}

func insertLastWords(editor *lineEditor) {
	newest, ok := editor.history.newest()
	if !ok {
		editor.bell()
		return
	}

	lastWords := strings.Fields(newest)
	if len(lastWords) != 0 {
		editor.InsertString(lastWords[len(lastWords)-1])
	}
}

func recallHistory(editor *lineEditor, line string, ok bool) {
	if !ok {
		editor.bell()
		return
	}
	editor.buffer.set(line)
	editor.refreshNeeded = true
}
func searchBackwards(editor *lineEditor) {
	line, ok := editor.history.previous(editor.buffer.String())
	recallHistory(editor, line, ok)
}
func searchForwards(editor *lineEditor) {
	line, ok := editor.history.next()
	recallHistory(editor, line, ok)
}
func historyFirst(editor *lineEditor) {
	line, ok := editor.history.first(editor.buffer.String())
	recallHistory(editor, line, ok)
}
func historyLast(editor *lineEditor) {
	line, ok := editor.history.last()
	recallHistory(editor, line, ok)
}

// cursorUpOrHistory recalls history unless the cursor sits below the first
// wrapped row of a multi-row line, where it moves up one row instead.
func cursorUpOrHistory(editor *lineEditor) {
	d, b := editor.display, editor.buffer
	row, col := d.position(b, b.cursor)
	if d.columns == 0 || d.numLines(b) <= 1 || row == 0 {
		searchBackwards(editor)
		return
	}
	b.setCursor(d.offsetAt(b, row-1, col))
}

// cursorDownOrHistory is the mirror of cursorUpOrHistory for the last row.
func cursorDownOrHistory(editor *lineEditor) {
	d, b := editor.display, editor.buffer
	row, col := d.position(b, b.cursor)
	lines := d.numLines(b)
	if d.columns == 0 || lines <= 1 || row >= lines-1 || b.cursor == b.length() {
		searchForwards(editor)
		return
	}
	b.setCursor(d.offsetAt(b, row+1, col))
}

func tabComplete(editor *lineEditor) {
	editor.complete()
}

func insertVerbatim(editor *lineEditor) {
	editor.verbatim = true
}

func ignoreKey(*lineEditor) {}
