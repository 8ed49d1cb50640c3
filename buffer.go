package readline

import (
	"unicode"

	"github.com/alimpfard/readline/internal/log"
)

type caseChangeOp int

const (
	caseChangeOpCapital caseChangeOp = iota
	caseChangeOpLower
	caseChangeOpUpper
)

// lineBuffer is the text being edited. Every position argument is clamped
// to the buffer, so no editing operation can fail.
type lineBuffer struct {
	text       []rune
	cursor     uint32
	delimiters map[rune]struct{}
	clipboard  []rune
	mirror     clipboardMirror
}

func newLineBuffer(delimiters string) *lineBuffer {
	b := &lineBuffer{}
	b.setDelimiters(delimiters)
	return b
}

func (b *lineBuffer) setDelimiters(delimiters string) {
	b.delimiters = make(map[rune]struct{}, len(delimiters))
	for _, r := range delimiters {
		b.delimiters[r] = struct{}{}
	}
}

func (b *lineBuffer) isDelimiter(r rune) bool {
	_, ok := b.delimiters[r]
	return ok
}

func (b *lineBuffer) length() uint32 {
	return uint32(len(b.text))
}

func (b *lineBuffer) clamp(pos uint32) uint32 {
	if pos > b.length() {
		return b.length()
	}
	return pos
}

func (b *lineBuffer) String() string {
	return string(b.text)
}

func (b *lineBuffer) setCursor(pos uint32) {
	b.cursor = b.clamp(pos)
}

func (b *lineBuffer) reset() {
	b.text = b.text[:0]
	b.cursor = 0
}

// set replaces the text and puts the cursor at the end.
func (b *lineBuffer) set(text string) {
	b.text = append(b.text[:0], []rune(text)...)
	b.cursor = b.length()
}

// insert places ch at pos. The cursor is shifted only when it sits after
// pos, callers advance it themselves when typing.
func (b *lineBuffer) insert(ch rune, pos uint32) {
	pos = b.clamp(pos)
	b.text = append(b.text, 0)
	copy(b.text[pos+1:], b.text[pos:])
	b.text[pos] = ch
	if b.cursor > pos {
		b.cursor++
	}
}

func (b *lineBuffer) insertString(s string, pos uint32) uint32 {
	pos = b.clamp(pos)
	for _, r := range s {
		b.insert(r, pos)
		pos++
	}
	return pos
}

// remove deletes the character at pos; out of range is a no-op.
func (b *lineBuffer) remove(pos uint32) {
	if pos >= b.length() {
		return
	}
	b.text = append(b.text[:pos], b.text[pos+1:]...)
	if b.cursor > pos {
		b.cursor--
	}
}

// wordStart moves left from pos: delimiters first, then the word.
func (b *lineBuffer) wordStart(pos uint32) uint32 {
	pos = b.clamp(pos)
	for pos > 0 && b.isDelimiter(b.text[pos-1]) {
		pos--
	}
	for pos > 0 && !b.isDelimiter(b.text[pos-1]) {
		pos--
	}
	return pos
}

// wordEnd moves right from pos: delimiters first, then the word.
func (b *lineBuffer) wordEnd(pos uint32) uint32 {
	pos = b.clamp(pos)
	for pos < b.length() && b.isDelimiter(b.text[pos]) {
		pos++
	}
	for pos < b.length() && !b.isDelimiter(b.text[pos]) {
		pos++
	}
	return pos
}

// spaceStart moves left from pos over whitespace, then over everything up
// to the previous whitespace.
func (b *lineBuffer) spaceStart(pos uint32) uint32 {
	pos = b.clamp(pos)
	for pos > 0 && unicode.IsSpace(b.text[pos-1]) {
		pos--
	}
	for pos > 0 && !unicode.IsSpace(b.text[pos-1]) {
		pos--
	}
	return pos
}

// transformWord changes the case of the word at or after pos and returns
// the offset just past it.
func (b *lineBuffer) transformWord(pos uint32, op caseChangeOp) uint32 {
	pos = b.clamp(pos)
	for pos < b.length() && b.isDelimiter(b.text[pos]) {
		pos++
	}
	start := pos
	for pos < b.length() && !b.isDelimiter(b.text[pos]) {
		if op == caseChangeOpUpper || (op == caseChangeOpCapital && pos == start) {
			b.text[pos] = unicode.ToUpper(b.text[pos])
		} else {
			b.text[pos] = unicode.ToLower(b.text[pos])
		}
		pos++
	}
	return pos
}

// cut removes [start, end) into the clipboard and returns start. Reversed
// bounds are swapped. An empty range empties the clipboard but is not
// mirrored.
func (b *lineBuffer) cut(start, end uint32) uint32 {
	start, end = b.clamp(start), b.clamp(end)
	if start > end {
		start, end = end, start
	}
	if start == end {
		b.clipboard = b.clipboard[:0]
		return start
	}

	b.clipboard = append(b.clipboard[:0], b.text[start:end]...)
	b.text = append(b.text[:start], b.text[end:]...)
	switch {
	case b.cursor >= end:
		b.cursor -= end - start
	case b.cursor > start:
		b.cursor = start
	}

	if b.mirror != nil {
		if err := b.mirror.Copy(string(b.clipboard)); err != nil {
			log.Debug(log.CatInput, "clipboard mirror failed", "error", err)
		}
	}
	return start
}

// paste inserts the clipboard at pos and returns the offset after it.
func (b *lineBuffer) paste(pos uint32) uint32 {
	pos = b.clamp(pos)
	for _, r := range b.clipboard {
		b.insert(r, pos)
		pos++
	}
	return pos
}

// transpose swaps the two characters before pos, or around it when pos is
// inside the text, and returns the new cursor offset.
func (b *lineBuffer) transpose(pos uint32) uint32 {
	pos = b.clamp(pos)
	if pos == 0 || b.length() < 2 {
		return pos
	}
	if pos < b.length() {
		pos++
	}
	b.text[pos-1], b.text[pos-2] = b.text[pos-2], b.text[pos-1]
	return pos
}

func (b *lineBuffer) upTo(n uint32) string {
	return string(b.text[:b.clamp(n)])
}
