package readline

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const defaultListingColumns = 80

// formatCompletionListing lays candidates out in rows of equal-width cells,
// as many per row as the width allows. Help text follows its word.
func formatCompletionListing(matches []Completion, columns uint32) []string {
	if len(matches) == 0 {
		return nil
	}
	if columns == 0 {
		columns = defaultListingColumns
	}

	longestText := 0
	longestHelp := 0
	for _, m := range matches {
		longestText = max(longestText, utf8.RuneCountInString(m.Text))
		longestHelp = max(longestHelp, utf8.RuneCountInString(m.Help))
	}

	cellWidth := longestText
	if longestHelp > 0 {
		cellWidth += 2 + longestHelp
	}
	perRow := max(int(columns)/(cellWidth+2), 1)

	var lines []string
	var line strings.Builder
	for i, m := range matches {
		field := m.Text
		if longestHelp > 0 {
			field = fmt.Sprintf("%-*s  %s", longestText, m.Text, m.Help)
		}
		line.WriteString(fmt.Sprintf("%-*s", cellWidth+2, field))
		if (i+1)%perRow == 0 || i == len(matches)-1 {
			lines = append(lines, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	return lines
}

// showCompletions prints the listing under the line, asking first when it
// is large and paging when it is taller than the terminal.
func (l *lineEditor) showCompletions(matches []Completion) {
	if limit := l.config.CompletionQueryItems; limit > 0 && len(matches) > limit {
		l.display.printBelow(l.buffer, fmt.Sprintf("Display all %d possibilities? (y or n)", len(matches)))
		show := l.askYesNo()
		l.terminalWrite("\r\n")
		if !show {
			l.refreshNeeded = true
			return
		}
	} else {
		l.display.finish(l.buffer)
	}

	l.pageLines(formatCompletionListing(matches, l.display.columns))
	l.refreshNeeded = true
}

func (l *lineEditor) askYesNo() bool {
	for {
		key, err := l.readKey()
		if err != nil {
			return false
		}
		switch {
		case key == PlainKey('y'), key == PlainKey('Y'), key == PlainKey(' '):
			return true
		case key == PlainKey('n'), key == PlainKey('N'), key == PlainKey(KeyEscape),
			key == CtrlKey('c'), key == CtrlKey('g'):
			return false
		default:
			l.bell()
		}
	}
}

// pageLines writes lines, pausing with --More-- whenever a screenful has
// been shown. Space shows the next page, Enter one more line, q stops.
func (l *lineEditor) pageLines(lines []string) {
	pageSize := len(lines)
	if l.config.PageCompletions && l.display.rows > 1 {
		pageSize = int(l.display.rows) - 1
	}

	shown := 0
	budget := pageSize
	for shown < len(lines) {
		if budget == 0 {
			l.terminalWrite("--More--")
			key, err := l.readKey()
			l.terminalWrite("\r\x1b[K")
			if err != nil {
				return
			}
			switch key {
			case PlainKey(' '):
				budget = pageSize
			case PlainKey(KeyEnter):
				budget = 1
			case PlainKey('q'), PlainKey('Q'), PlainKey(KeyEscape), CtrlKey('c'), CtrlKey('g'):
				return
			default:
				l.bell()
				continue
			}
		}
		l.terminalWrite(lines[shown] + "\r\n")
		shown++
		budget--
	}
}
