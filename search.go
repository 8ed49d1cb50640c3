package readline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alimpfard/readline/internal/log"
)

// historySearch is the state of one Ctrl-R session. offset indexes the
// current match list, newest first.
type historySearch struct {
	pattern []rune
	offset  int
	failed  bool

	preSearchBuffer string
	preSearchCursor uint32
}

func (s *historySearch) prompt() string {
	if s.failed {
		return fmt.Sprintf("(failed reverse-i-search)`%s': ", string(s.pattern))
	}
	return fmt.Sprintf("(reverse-i-search)`%s': ", string(s.pattern))
}

// enterSearch runs the incremental search loop until the match is accepted
// or the search is cancelled. A key with no meaning in the search accepts
// the match and is then handled as usual.
func enterSearch(editor *lineEditor) {
	search := &historySearch{
		preSearchBuffer: editor.buffer.String(),
		preSearchCursor: editor.buffer.cursor,
	}
	defer func() {
		editor.display.setPrompt(editor.renderedPrompt)
		editor.refreshNeeded = true
	}()

	for {
		editor.showSearchMatch(search)

		key, err := editor.readKey()
		if err != nil {
			if !errors.Is(err, ErrInputClosed) {
				log.ErrorErr(log.CatInput, "search read failed", err)
			}
			editor.endSearch(search, true)
			return
		}

		switch {
		case key == CtrlKey('r'):
			search.offset++
		case key == CtrlKey('s'):
			if search.offset > 0 {
				search.offset--
			} else {
				editor.bell()
			}
		case key == PlainKey(KeyBackspace):
			if len(search.pattern) > 0 {
				search.pattern = search.pattern[:len(search.pattern)-1]
				search.offset = 0
			} else {
				editor.bell()
			}
		case key == PlainKey(KeyEnter):
			editor.endSearch(search, false)
			return
		case key == PlainKey(KeyEscape), key == CtrlKey('g'), key == CtrlKey('c'):
			editor.endSearch(search, true)
			return
		case key.isPrintable(editor.config.AllowUnicodeInput):
			search.pattern = append(search.pattern, key.Rune())
			search.offset = 0
		default:
			editor.endSearch(search, false)
			editor.display.setPrompt(editor.renderedPrompt)
			editor.handleKey(key)
			return
		}
	}
}

// showSearchMatch loads the match at the current offset into the buffer,
// with the cursor on the matched text, and repaints under the search prompt.
func (l *lineEditor) showSearchMatch(search *historySearch) {
	search.failed = false
	if len(search.pattern) > 0 {
		pattern := string(search.pattern)
		matches := l.history.search(pattern)
		if search.offset >= len(matches) {
			if len(matches) > 0 {
				l.bell()
			}
			search.offset = max(len(matches)-1, 0)
		}
		if len(matches) == 0 {
			search.failed = true
		} else {
			match := matches[search.offset]
			l.buffer.set(match)
			l.buffer.setCursor(matchOffset(match, pattern, l.history.caseInsensitive))
		}
	}

	l.display.setPrompt(search.prompt())
	l.display.refresh(l.buffer)
}

func matchOffset(entry, pattern string, caseInsensitive bool) uint32 {
	haystack := entry
	if caseInsensitive {
		haystack, pattern = strings.ToLower(entry), strings.ToLower(pattern)
	}
	i := strings.Index(haystack, pattern)
	if i < 0 || i > len(entry) {
		return uint32(len([]rune(entry)))
	}
	return uint32(len([]rune(entry[:i])))
}

// endSearch leaves the search, restoring the buffer exactly when cancelled.
func (l *lineEditor) endSearch(search *historySearch, cancel bool) {
	if cancel {
		l.buffer.set(search.preSearchBuffer)
		l.buffer.setCursor(search.preSearchCursor)
	}
	l.history.resetCursor()
	l.refreshNeeded = true
}
