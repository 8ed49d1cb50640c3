package readline

import (
	"errors"

	"github.com/muesli/termenv"
)

var (
	// ErrInterrupted is returned by GetLine when the interrupt key was pressed.
	ErrInterrupted = errors.New("readline: interrupted")
	// ErrInputClosed is reported when the input stream ends while a key is read.
	ErrInputClosed = errors.New("readline: input closed")
	// ErrNotTerminal is returned when raw mode is requested on something that is not a tty.
	ErrNotTerminal = errors.New("readline: not a terminal")
)

// NewEditor returns an editor reading from stdin and drawing on stderr.
func NewEditor() Editor {
	return NewEditorWithConfig(NewTTYTerminal(), DefaultConfig())
}

// NewEditorWithTerminal returns an editor bound to term with the default configuration.
func NewEditorWithTerminal(term Terminal) Editor {
	return NewEditorWithConfig(term, DefaultConfig())
}

// NewEditorWithConfig returns an editor bound to term.
func NewEditorWithConfig(term Terminal, config Config) Editor {
	config = config.withDefaults()
	editor := &lineEditor{
		terminal:           term,
		config:             config,
		decoder:            newKeyDecoder(term),
		display:            newDisplayEngine(term),
		buffer:             newLineBuffer(config.WordDelimiters),
		history:            newHistoryStore(config.HistoryCapacity),
		completion:         newCompletionEngine(),
		keyCallbackMachine: newKeyCallbackMachine(),
		profile:            termenv.Ascii,
	}
	editor.history.searchLimit = config.HistorySearchLimit
	editor.history.caseInsensitive = config.HistoryCaseInsensitive
	if config.SystemClipboard {
		editor.buffer.mirror = systemClipboard{}
	}
	if term.IsTerminal() {
		editor.profile = termenv.EnvColorProfile()
	}
	editor.setDefaultKeybinds()
	return editor
}

// Completion is one candidate offered by a TabCompletionHandler.
type Completion struct {
	Text string
	Help string
}

// TabCompletionHandler produces candidates for the whole current line. It is
// called synchronously on every Tab press and must not block.
type TabCompletionHandler func(line string) []Completion

// KeyHook sees every key before the default dispatch; returning true marks
// the key as handled.
type KeyHook func(key Key, line string) bool

// KeybindingCallback runs when its key sequence is typed. Returning true lets
// the last key continue through the default processing.
type KeybindingCallback func(keys []Key, editor Editor) bool

// HistoryPersister loads and saves history lines, oldest first.
type HistoryPersister interface {
	Load() ([]string, error)
	Save(lines []string) error
}

type WordEraseMode string

const (
	// WordEraseModeSpace makes Ctrl-W cut back to the previous whitespace.
	WordEraseModeSpace WordEraseMode = "space"
	// WordEraseModeWord makes Ctrl-W cut back to the start of the word.
	WordEraseModeWord WordEraseMode = "word"
)

const DefaultWordDelimiters = " \t\n\"'`@$><=;|&{(),.:/\\-[]"

type Config struct {
	WordDelimiters         string        `mapstructure:"word_delimiters"`
	WordEraseMode          WordEraseMode `mapstructure:"word_erase_mode"`
	HistoryCapacity        int           `mapstructure:"history_capacity"`
	HistorySearchLimit     int           `mapstructure:"history_search_limit"`
	HistoryCaseInsensitive bool          `mapstructure:"history_case_insensitive"`
	CompletionQueryItems   int           `mapstructure:"completion_query_items"`
	PageCompletions        bool          `mapstructure:"page_completions"`
	AllowUnicodeInput      bool          `mapstructure:"allow_unicode_input"`
	SystemClipboard        bool          `mapstructure:"system_clipboard"`
	PromptStyle            Style         `mapstructure:"-"`
}

func DefaultConfig() Config {
	return Config{
		WordDelimiters:       DefaultWordDelimiters,
		WordEraseMode:        WordEraseModeSpace,
		HistoryCapacity:      1000,
		CompletionQueryItems: 100,
		PageCompletions:      true,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.WordDelimiters == "" {
		c.WordDelimiters = defaults.WordDelimiters
	}
	if c.WordEraseMode != WordEraseModeWord {
		c.WordEraseMode = WordEraseModeSpace
	}
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = defaults.HistoryCapacity
	}
	if c.HistorySearchLimit < 0 {
		c.HistorySearchLimit = 0
	}
	return c
}

type Winsize struct {
	Row uint16
	Col uint16
}

type Editor interface {
	// GetLine prompts and blocks until a line is accepted. It returns
	// ErrInterrupted on the interrupt key and io.EOF at end of input.
	GetLine(prompt string) (string, error)

	AddToHistory(line string)
	History() []string
	ClearHistory()
	SearchHistory(pattern string) []string
	LoadHistory(persister HistoryPersister) error
	SaveHistory(persister HistoryPersister) error
	SetHistoryCapacity(capacity int)

	RegisterKeybinding(keys []Key, binding KeybindingCallback)

	SetTabCompletionHandler(handler TabCompletionHandler)
	SetKeyHook(hook KeyHook)
	SetInterruptHandler(handler func())

	SetWordDelimiters(delimiters string)
	SetWordEraseMode(mode WordEraseMode)
	SetPromptStyle(style Style)

	Line() string
	LineUpTo(n uint32) string
	Cursor() uint32
	SetLine(line string)

	InsertString(str string)
	InsertChar(ch rune)

	TerminalSize() Winsize

	Finish()
	IsEditing() bool
}
