package readline

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alimpfard/readline/internal/log"
)

const defaultHistoryCapacity = 1000

type historyEntry struct {
	entry     string
	timestamp int64
}

// historyStore keeps past lines oldest first without duplicates. cursor ==
// len(entries) means the live, uncommitted input is shown; that input is
// parked in live while older entries are recalled.
type historyStore struct {
	entries         []historyEntry
	capacity        int
	cursor          int
	live            string
	searchLimit     int
	caseInsensitive bool
}

func newHistoryStore(capacity int) *historyStore {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	return &historyStore{capacity: capacity}
}

func (h *historyStore) len() int {
	return len(h.entries)
}

func (h *historyStore) atLive() bool {
	return h.cursor >= len(h.entries)
}

// add appends line, dropping an earlier equal entry and evicting the oldest
// past capacity. The cursor returns to the live position.
func (h *historyStore) add(line string) {
	if line == "" {
		h.resetCursor()
		return
	}
	for i := range h.entries {
		if h.entries[i].entry == line {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
	h.entries = append(h.entries, historyEntry{
		entry:     line,
		timestamp: time.Now().Unix(),
	})
	h.evict()
	h.resetCursor()
}

func (h *historyStore) evict() {
	if over := len(h.entries) - h.capacity; over > 0 {
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

func (h *historyStore) setCapacity(capacity int) {
	if capacity <= 0 {
		capacity = defaultHistoryCapacity
	}
	h.capacity = capacity
	h.evict()
	h.resetCursor()
}

func (h *historyStore) resetCursor() {
	h.cursor = len(h.entries)
	h.live = ""
}

// previous steps to the next older entry. current is the buffer being shown
// and is parked when leaving the live position. ok is false at the oldest
// entry or with an empty history.
func (h *historyStore) previous(current string) (line string, ok bool) {
	if h.cursor == 0 || len(h.entries) == 0 {
		return "", false
	}
	if h.atLive() {
		h.live = current
		h.cursor = len(h.entries)
	}
	h.cursor--
	return h.entries[h.cursor].entry, true
}

// next steps to the next newer entry, yielding the parked live input when
// moving past the newest one. ok is false when already live.
func (h *historyStore) next() (line string, ok bool) {
	if h.atLive() {
		return "", false
	}
	h.cursor++
	if h.atLive() {
		return h.live, true
	}
	return h.entries[h.cursor].entry, true
}

// first jumps to the oldest entry.
func (h *historyStore) first(current string) (line string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.atLive() {
		h.live = current
	}
	h.cursor = 0
	return h.entries[0].entry, true
}

// last jumps back to the live input.
func (h *historyStore) last() (line string, ok bool) {
	if h.atLive() {
		return "", false
	}
	h.cursor = len(h.entries)
	return h.live, true
}

// search returns the entries containing pattern, newest first, capped at
// the search limit when one is set.
func (h *historyStore) search(pattern string) []string {
	var matches []string
	needle := pattern
	if h.caseInsensitive {
		needle = strings.ToLower(pattern)
	}
	for i := len(h.entries) - 1; i >= 0; i-- {
		entry := h.entries[i].entry
		haystack := entry
		if h.caseInsensitive {
			haystack = strings.ToLower(entry)
		}
		if !strings.Contains(haystack, needle) {
			continue
		}
		matches = append(matches, entry)
		if h.searchLimit > 0 && len(matches) >= h.searchLimit {
			break
		}
	}
	return matches
}

func (h *historyStore) clear() {
	h.entries = h.entries[:0]
	h.resetCursor()
}

func (h *historyStore) lines() []string {
	lines := make([]string, len(h.entries))
	for i, e := range h.entries {
		lines[i] = e.entry
	}
	return lines
}

func (h *historyStore) newest() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1].entry, true
}

// FileHistory persists history as plain text, one entry per line, oldest
// first. Lines are not escaped.
type FileHistory struct {
	Path string
}

func (f FileHistory) Load() ([]string, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}
	return lines, nil
}

func (f FileHistory) Save(lines []string) error {
	file, err := os.Create(f.Path)
	if err != nil {
		return fmt.Errorf("creating history file: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			_ = file.Close()
			return fmt.Errorf("writing history file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing history file: %w", err)
	}
	return file.Close()
}

// load adds the persisted lines after the current entries, under the usual
// dedup and capacity rules.
func (h *historyStore) load(persister HistoryPersister) error {
	lines, err := persister.Load()
	if err != nil {
		log.ErrorErr(log.CatHistory, "loading history failed", err)
		return err
	}
	for _, line := range lines {
		h.add(line)
	}
	log.Debug(log.CatHistory, "history loaded", "entries", len(lines))
	return nil
}

func (h *historyStore) save(persister HistoryPersister) error {
	if err := persister.Save(h.lines()); err != nil {
		log.ErrorErr(log.CatHistory, "saving history failed", err)
		return err
	}
	log.Debug(log.CatHistory, "history saved", "entries", len(h.entries))
	return nil
}
