package sqlitehistory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/alimpfard/readline"
)

// setupTestStore opens a store in a temp dir, closed when the test completes.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err, "Failed to open history database")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

var _ readline.HistoryPersister = (*Store)(nil)

func TestStore_LoadEmpty(t *testing.T) {
	store := setupTestStore(t)
	lines, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestStore_SaveReplaces(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.Save([]string{"a", "b", "c"}))
	require.NoError(t, store.Save([]string{"d"}))

	lines, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"d"}, lines)
}

func TestStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save([]string{"ls", "cd /tmp"}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	lines, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"ls", "cd /tmp"}, lines)
}

func TestStore_EditorRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	editor := readline.NewEditorWithTerminal(readline.NewStreamTerminal(nil, nil, 80, 24))
	editor.AddToHistory("first")
	editor.AddToHistory("second")
	require.NoError(t, editor.SaveHistory(store))

	other := readline.NewEditorWithTerminal(readline.NewStreamTerminal(nil, nil, 80, 24))
	require.NoError(t, other.LoadHistory(store))
	require.Equal(t, []string{"first", "second"}, other.History())
}

// TestStore_RoundTripProperty checks that Save followed by Load reproduces
// the lines in order.
func TestStore_RoundTripProperty(t *testing.T) {
	store := setupTestStore(t)
	rapid.Check(t, func(r *rapid.T) {
		lines := rapid.SliceOf(rapid.StringMatching(`[a-z '"%;-]{1,12}`)).Draw(r, "lines")
		require.NoError(r, store.Save(lines))

		loaded, err := store.Load()
		require.NoError(r, err)
		if len(lines) == 0 {
			require.Empty(r, loaded)
			return
		}
		require.Equal(r, lines, loaded)
	})
}
