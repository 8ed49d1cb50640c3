package readline

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHistoryDeduplicates(t *testing.T) {
	h := newHistoryStore(10)
	h.add("a")
	h.add("b")
	h.add("a")
	require.Equal(t, []string{"b", "a"}, h.lines())
}

func TestHistoryIgnoresEmptyLines(t *testing.T) {
	h := newHistoryStore(10)
	h.add("")
	require.Equal(t, 0, h.len())
}

func TestHistoryCapacityEvictsOldest(t *testing.T) {
	h := newHistoryStore(3)
	for _, line := range []string{"one", "two", "three", "four"} {
		h.add(line)
	}
	require.Equal(t, []string{"two", "three", "four"}, h.lines())

	h.setCapacity(2)
	require.Equal(t, []string{"three", "four"}, h.lines())
}

func TestHistoryNavigationRestoresLiveInput(t *testing.T) {
	h := newHistoryStore(10)
	h.add("first")
	h.add("second")

	line, ok := h.previous("draft")
	require.True(t, ok)
	require.Equal(t, "second", line)

	line, ok = h.previous("second")
	require.True(t, ok)
	require.Equal(t, "first", line)

	_, ok = h.previous("first")
	require.False(t, ok, "clamped at the oldest entry")

	line, ok = h.next()
	require.True(t, ok)
	require.Equal(t, "second", line)

	line, ok = h.next()
	require.True(t, ok)
	require.Equal(t, "draft", line)

	_, ok = h.next()
	require.False(t, ok, "clamped at the live position")
}

func TestHistoryFirstAndLast(t *testing.T) {
	h := newHistoryStore(10)
	_, ok := h.first("x")
	require.False(t, ok)

	h.add("a")
	h.add("b")
	h.add("c")

	line, ok := h.first("draft")
	require.True(t, ok)
	require.Equal(t, "a", line)

	line, ok = h.last()
	require.True(t, ok)
	require.Equal(t, "draft", line)
	require.True(t, h.atLive())
}

func TestHistorySearch(t *testing.T) {
	h := newHistoryStore(10)
	for _, line := range []string{"git status", "ls -la", "git commit", "Git push"} {
		h.add(line)
	}

	require.Equal(t, []string{"git commit", "git status"}, h.search("git"))
	require.Empty(t, h.search("nothing"))

	h.caseInsensitive = true
	require.Equal(t, []string{"Git push", "git commit", "git status"}, h.search("GIT"))

	h.searchLimit = 1
	require.Equal(t, []string{"Git push"}, h.search("git"))
}

func TestHistoryClear(t *testing.T) {
	h := newHistoryStore(10)
	h.add("a")
	h.clear()
	require.Equal(t, 0, h.len())
	require.True(t, h.atLive())
}

func TestFileHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := newHistoryStore(10)
	for _, line := range []string{"echo one", "echo two", "  spaced  "} {
		h.add(line)
	}

	require.NoError(t, h.save(FileHistory{Path: path}))

	loaded := newHistoryStore(10)
	require.NoError(t, loaded.load(FileHistory{Path: path}))
	require.Equal(t, h.lines(), loaded.lines())
}

func TestFileHistoryMissingFile(t *testing.T) {
	h := newHistoryStore(10)
	h.add("kept")

	err := h.load(FileHistory{Path: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
	require.Equal(t, []string{"kept"}, h.lines(), "store stays usable")

	err = h.save(FileHistory{Path: filepath.Join(t.TempDir(), "no", "such", "dir")})
	require.Error(t, err)
}

func TestHistoryInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		capacity := rapid.IntRange(1, 8).Draw(r, "capacity")
		h := newHistoryStore(capacity)
		lines := rapid.SliceOf(rapid.StringMatching(`[a-d]{0,2}`)).Draw(r, "lines")

		var want []string
		for _, line := range lines {
			h.add(line)
			if line == "" {
				continue
			}
			for i, w := range want {
				if w == line {
					want = append(want[:i], want[i+1:]...)
					break
				}
			}
			want = append(want, line)
			if len(want) > capacity {
				want = want[len(want)-capacity:]
			}
		}

		require.Equal(r, fmt.Sprint(want), fmt.Sprint(h.lines()))
		require.LessOrEqual(r, h.len(), capacity)
		require.True(r, h.atLive())
	})
}
