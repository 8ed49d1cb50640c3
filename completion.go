package readline

import (
	"strings"
	"unicode"

	"github.com/alimpfard/readline/internal/log"
)

type completionMode int

const (
	completionModeDontComplete completionMode = iota
	completionModeCompletePrefix
	completionModeWaiting
	completionModeShowSuggestions
)

// completionEngine tracks the double-Tab protocol. waiting is only set
// right after a Tab that found several candidates.
type completionEngine struct {
	waiting    bool
	lastPrefix string
	lastCursor uint32
}

func newCompletionEngine() *completionEngine {
	return &completionEngine{}
}

func (c *completionEngine) reset() {
	c.waiting = false
	c.lastPrefix = ""
	c.lastCursor = 0
}

// currentWord returns the text between the last whitespace before the
// cursor and the cursor, and where it starts.
func currentWord(buf *lineBuffer) (uint32, string) {
	start := buf.cursor
	for start > 0 && !unicode.IsSpace(buf.text[start-1]) {
		start--
	}
	return start, string(buf.text[start:buf.cursor])
}

// attempt runs one Tab press against handler. A single match is inserted
// with a trailing space; several matches wait for a second Tab on the same
// word and cursor, which asks for the listing.
func (c *completionEngine) attempt(buf *lineBuffer, handler TabCompletionHandler) (completionMode, []Completion) {
	if handler == nil {
		c.reset()
		return completionModeDontComplete, nil
	}

	_, word := currentWord(buf)
	var matches []Completion
	for _, candidate := range handler(buf.String()) {
		if strings.HasPrefix(candidate.Text, word) {
			matches = append(matches, candidate)
		}
	}
	log.Debug(log.CatCompletion, "tab", "word", word, "matches", len(matches), "waiting", c.waiting)

	switch len(matches) {
	case 0:
		c.reset()
		return completionModeDontComplete, nil
	case 1:
		c.reset()
		suffix := strings.TrimPrefix(matches[0].Text, word) + " "
		buf.setCursor(buf.insertString(suffix, buf.cursor))
		return completionModeCompletePrefix, matches
	}

	if c.waiting && c.lastPrefix == word && c.lastCursor == buf.cursor {
		c.reset()
		return completionModeShowSuggestions, matches
	}

	c.waiting = true
	c.lastPrefix = word
	c.lastCursor = buf.cursor
	return completionModeWaiting, matches
}
