package readline

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/alimpfard/readline/internal/log"
)

type lineEditor struct {
	terminal Terminal
	config   Config
	profile  termenv.Profile

	decoder    *keyDecoder
	buffer     *lineBuffer
	display    *displayEngine
	history    *historyStore
	completion *completionEngine

	keyCallbackMachine keyCallbackMachine

	renderedPrompt string

	finish        bool
	isEditing     bool
	inputError    error
	returnedLine  string
	refreshNeeded bool
	pendingAppend bool
	verbatim      bool

	onInterruptHandled   func()
	tabCompletionHandler TabCompletionHandler
	keyHook              KeyHook
}

func editorInternal(fn func(editor *lineEditor)) KeybindingCallback {
	return func(_ []Key, editor Editor) bool {
		fn(editor.(*lineEditor))
		return false
	}
}

func (l *lineEditor) setDefaultKeybinds() {
	l.RegisterKeybinding([]Key{CtrlKey('n')}, editorInternal(searchForwards))
	l.RegisterKeybinding([]Key{CtrlKey('p')}, editorInternal(searchBackwards))
	l.RegisterKeybinding([]Key{CtrlKey('a')}, editorInternal(goHome))
	l.RegisterKeybinding([]Key{CtrlKey('b')}, editorInternal(cursorLeftCharacter))
	l.RegisterKeybinding([]Key{CtrlKey('c')}, editorInternal(interrupt))
	l.RegisterKeybinding([]Key{CtrlKey('d')}, editorInternal(finishEdit))
	l.RegisterKeybinding([]Key{CtrlKey('e')}, editorInternal(goEnd))
	l.RegisterKeybinding([]Key{CtrlKey('f')}, editorInternal(cursorRightCharacter))
	l.RegisterKeybinding([]Key{CtrlKey('g')}, editorInternal(ignoreKey))
	l.RegisterKeybinding([]Key{CtrlKey('k')}, editorInternal(eraseToEnd))
	l.RegisterKeybinding([]Key{CtrlKey('l')}, editorInternal(clearScreen))
	l.RegisterKeybinding([]Key{CtrlKey('r')}, editorInternal(enterSearch))
	l.RegisterKeybinding([]Key{CtrlKey('t')}, editorInternal(transposeCharacters))
	l.RegisterKeybinding([]Key{CtrlKey('u')}, editorInternal(killLine))
	l.RegisterKeybinding([]Key{CtrlKey('v')}, editorInternal(insertVerbatim))
	l.RegisterKeybinding([]Key{CtrlKey('w')}, editorInternal(eraseWordBackwards))
	l.RegisterKeybinding([]Key{CtrlKey('y')}, editorInternal(yank))

	l.RegisterKeybinding([]Key{PlainKey(KeyEnter)}, editorInternal(finish))
	l.RegisterKeybinding([]Key{PlainKey(KeyBackspace)}, editorInternal(eraseCharacterBackwards))
	l.RegisterKeybinding([]Key{PlainKey(KeyDelete)}, editorInternal(eraseCharacterForwards))
	l.RegisterKeybinding([]Key{PlainKey(KeyHome)}, editorInternal(goHome))
	l.RegisterKeybinding([]Key{PlainKey(KeyEnd)}, editorInternal(goEnd))
	l.RegisterKeybinding([]Key{PlainKey(KeyLeft)}, editorInternal(cursorLeftCharacter))
	l.RegisterKeybinding([]Key{PlainKey(KeyRight)}, editorInternal(cursorRightCharacter))
	l.RegisterKeybinding([]Key{PlainKey(KeyUp)}, editorInternal(cursorUpOrHistory))
	l.RegisterKeybinding([]Key{PlainKey(KeyDown)}, editorInternal(cursorDownOrHistory))
	l.RegisterKeybinding([]Key{PlainKey(KeyPageUp)}, editorInternal(historyFirst))
	l.RegisterKeybinding([]Key{PlainKey(KeyPageDown)}, editorInternal(historyLast))
	l.RegisterKeybinding([]Key{PlainKey(KeyTab)}, editorInternal(tabComplete))
	l.RegisterKeybinding([]Key{PlainKey(KeyBacktab)}, editorInternal(tabComplete))
	l.RegisterKeybinding([]Key{PlainKey(KeyEscape)}, editorInternal(ignoreKey))

	// Ctrl+Arrow arrives as Alt+Arrow.
	l.RegisterKeybinding([]Key{AltKey(KeyLeft)}, editorInternal(cursorLeftWord))
	l.RegisterKeybinding([]Key{AltKey(KeyRight)}, editorInternal(cursorRightWord))
	l.RegisterKeybinding([]Key{AltKey(KeyUp)}, editorInternal(searchBackwards))
	l.RegisterKeybinding([]Key{AltKey(KeyDown)}, editorInternal(searchForwards))

	// ^[.: alt-.: insert last arg of previous command (similar to `!$` in shells)
	l.RegisterKeybinding([]Key{AltKey('.')}, editorInternal(insertLastWords))

	l.RegisterKeybinding([]Key{AltKey('b')}, editorInternal(cursorLeftWord))
	l.RegisterKeybinding([]Key{AltKey('f')}, editorInternal(cursorRightWord))
	// ^[^H: alt-backspace: backward delete word
	l.RegisterKeybinding([]Key{AltKey(KeyBackspace)}, editorInternal(eraseAlnumWordBackwards))
	l.RegisterKeybinding([]Key{AltKey('d')}, editorInternal(eraseAlnumWordForwards))
	l.RegisterKeybinding([]Key{AltKey('c')}, editorInternal(capitalizeWord))
	l.RegisterKeybinding([]Key{AltKey('l')}, editorInternal(lowercaseWord))
	l.RegisterKeybinding([]Key{AltKey('u')}, editorInternal(uppercaseWord))
}

func (l *lineEditor) GetLine(prompt string) (string, error) {
	if !l.terminal.IsTerminal() {
		return l.getLineDumb(prompt)
	}

	if err := l.terminal.EnableRawMode(); err != nil {
		log.ErrorErr(log.CatTerm, "enabling raw mode failed", err)
		return "", fmt.Errorf("enabling raw mode: %w", err)
	}
	defer func() {
		if err := l.terminal.RestoreMode(); err != nil {
			log.ErrorErr(log.CatTerm, "restoring terminal mode failed", err)
		}
	}()

	l.reset()
	l.isEditing = true
	defer func() {
		l.isEditing = false
	}()

	columns, rows := l.terminal.Size()
	l.display.setSize(columns, rows)
	l.display.begin(prompt, l.config.PromptStyle, l.profile)
	l.renderedPrompt = l.display.prompt
	l.display.refresh(l.buffer)

	for !l.finish {
		key, err := l.readKey()
		if err != nil {
			if errors.Is(err, ErrInputClosed) {
				return l.endOfStream()
			}
			l.display.finish(l.buffer)
			return "", err
		}
		l.handleKey(key)
	}

	return l.returnedLine, l.inputError
}

func (l *lineEditor) reset() {
	l.buffer.reset()
	l.completion.reset()
	l.keyCallbackMachine.reset()
	l.history.resetCursor()
	l.finish = false
	l.inputError = nil
	l.returnedLine = ""
	l.refreshNeeded = false
	l.pendingAppend = false
	l.verbatim = false
}

func (l *lineEditor) readKey() (Key, error) {
	if l.decoder == nil {
		l.decoder = newKeyDecoder(l.terminal)
	}
	return l.decoder.next()
}

// handleKey runs one key through the hook, the bindings and finally plain
// insertion, then brings the screen up to date.
func (l *lineEditor) handleKey(key Key) {
	defer l.refreshDisplay()
	l.syncSize()

	if l.verbatim {
		l.verbatim = false
		switch {
		case key.Modifiers != 0:
		case key.Code == KeyTab:
			l.InsertChar('\t')
		case key.Code == KeyEnter:
			l.InsertChar('\r')
		case !key.IsNamed():
			l.InsertChar(key.Rune())
		}
		return
	}

	if key.Code != KeyTab && key.Code != KeyBacktab {
		l.completion.reset()
	}

	if l.keyHook != nil && l.keyHook(key, l.buffer.String()) {
		l.refreshNeeded = true
		return
	}

	l.keyCallbackMachine.keyPressed(key, l)
	if !l.keyCallbackMachine.shouldProcessLastPressedKey() {
		return
	}

	if key.isPrintable(l.config.AllowUnicodeInput) {
		l.InsertChar(key.Rune())
		return
	}
	log.Debug(log.CatInput, "unbound key", "key", key)
}

// syncSize picks up a terminal resize; the next paint redraws in full.
func (l *lineEditor) syncSize() {
	columns, rows := l.terminal.Size()
	if columns == l.display.columns && rows == l.display.rows {
		return
	}
	log.Debug(log.CatDisplay, "terminal resized", "columns", columns, "rows", rows)
	l.display.setSize(columns, rows)
	l.refreshNeeded = true
}

func (l *lineEditor) refreshDisplay() {
	defer func() {
		l.refreshNeeded = false
		l.pendingAppend = false
	}()

	if l.finish || !l.isEditing {
		return
	}
	switch {
	case l.refreshNeeded:
		l.display.refresh(l.buffer)
	case l.pendingAppend:
		if !l.display.tryAppend(l.buffer) {
			l.display.refresh(l.buffer)
		}
	default:
		l.display.moveCursor(l.buffer)
	}
}

func (l *lineEditor) complete() {
	mode, matches := l.completion.attempt(l.buffer, l.tabCompletionHandler)
	switch mode {
	case completionModeCompletePrefix:
		l.refreshNeeded = true
	case completionModeShowSuggestions:
		l.showCompletions(matches)
	case completionModeDontComplete:
		l.bell()
	}
}

// endOfStream accepts a partially typed line when input ends; an empty one
// ends input.
func (l *lineEditor) endOfStream() (string, error) {
	if l.buffer.length() == 0 {
		l.display.finish(l.buffer)
		return "", io.EOF
	}
	l.Finish()
	return l.returnedLine, nil
}

// getLineDumb reads a plain line when there is no terminal to edit on.
func (l *lineEditor) getLineDumb(prompt string) (string, error) {
	l.terminalWrite(prompt)

	var line strings.Builder
	for {
		b, err := l.terminal.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line.Len() == 0 {
					return "", io.EOF
				}
				break
			}
			return "", fmt.Errorf("reading input: %w", err)
		}
		if b == '\n' {
			break
		}
		line.WriteByte(b)
	}

	result := strings.TrimSuffix(line.String(), "\r")
	l.history.add(result)
	return result, nil
}

func (l *lineEditor) terminalWrite(s string) {
	if _, err := l.terminal.Write([]byte(s)); err != nil {
		log.ErrorErr(log.CatTerm, "write failed", err)
	}
}

func (l *lineEditor) bell() {
	l.terminalWrite("\a")
}

func (l *lineEditor) AddToHistory(line string) {
	l.history.add(line)
}

func (l *lineEditor) History() []string {
	return l.history.lines()
}

func (l *lineEditor) ClearHistory() {
	l.history.clear()
}

func (l *lineEditor) SearchHistory(pattern string) []string {
	return l.history.search(pattern)
}

func (l *lineEditor) LoadHistory(persister HistoryPersister) error {
	return l.history.load(persister)
}

func (l *lineEditor) SaveHistory(persister HistoryPersister) error {
	return l.history.save(persister)
}

func (l *lineEditor) SetHistoryCapacity(capacity int) {
	l.config.HistoryCapacity = capacity
	l.history.setCapacity(capacity)
}

func (l *lineEditor) RegisterKeybinding(keys []Key, binding KeybindingCallback) {
	l.keyCallbackMachine.registerInputCallback(keys, binding)
}

func (l *lineEditor) SetTabCompletionHandler(handler TabCompletionHandler) {
	l.tabCompletionHandler = handler
}

func (l *lineEditor) SetKeyHook(hook KeyHook) {
	l.keyHook = hook
}

func (l *lineEditor) SetInterruptHandler(handler func()) {
	l.onInterruptHandled = handler
}

func (l *lineEditor) SetWordDelimiters(delimiters string) {
	l.config.WordDelimiters = delimiters
	l.buffer.setDelimiters(delimiters)
}

func (l *lineEditor) SetWordEraseMode(mode WordEraseMode) {
	l.config.WordEraseMode = mode
}

func (l *lineEditor) SetPromptStyle(style Style) {
	l.config.PromptStyle = style
}

func (l *lineEditor) SetLine(line string) {
	cursor := l.buffer.cursor
	l.buffer.set(line)
	l.buffer.setCursor(cursor)
	l.refreshNeeded = true
}

func (l *lineEditor) Line() string {
	return l.buffer.String()
}

func (l *lineEditor) LineUpTo(n uint32) string {
	return l.buffer.upTo(n)
}

func (l *lineEditor) Cursor() uint32 {
	return l.buffer.cursor
}

func (l *lineEditor) InsertString(str string) {
	for _, r := range str {
		l.InsertChar(r)
	}
}

func (l *lineEditor) InsertChar(ch rune) {
	if l.buffer.cursor == l.buffer.length() {
		l.pendingAppend = true
	} else {
		l.refreshNeeded = true
	}
	l.buffer.insert(ch, l.buffer.cursor)
	l.buffer.cursor++
}

func (l *lineEditor) TerminalSize() Winsize {
	columns, rows := l.terminal.Size()
	return Winsize{
		Row: uint16(rows),
		Col: uint16(columns),
	}
}

// Finish accepts the current line as if Enter had been pressed.
func (l *lineEditor) Finish() {
	if !l.isEditing || l.finish {
		return
	}
	line := l.buffer.String()
	l.history.add(line)
	l.returnedLine = line
	l.inputError = nil
	l.display.finish(l.buffer)
	l.finish = true
}

func (l *lineEditor) IsEditing() bool {
	return l.isEditing
}
