package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alimpfard/readline"
	"github.com/alimpfard/readline/internal/log"
)

func TestOpenHistoryFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	persister, closeHistory, err := openHistory(replConfig{HistoryFile: path})
	require.NoError(t, err)
	defer closeHistory()
	require.Equal(t, readline.FileHistory{Path: path}, persister)
}

func TestOpenHistorySqliteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	persister, closeHistory, err := openHistory(replConfig{HistoryFile: path, HistoryBackend: "sqlite"})
	require.NoError(t, err)
	defer closeHistory()

	require.NoError(t, persister.Save([]string{"make", "make test"}))
	entries, err := persister.Load()
	require.NoError(t, err)
	require.Equal(t, []string{"make", "make test"}, entries)
}

func TestOpenHistoryUnknownBackend(t *testing.T) {
	var buf bytes.Buffer
	log.InitWriter(&buf)
	defer log.SetEnabled(false)

	_, _, err := openHistory(replConfig{HistoryBackend: "redis"})
	require.ErrorContains(t, err, `unknown history backend "redis"`)
	require.Contains(t, buf.String(), "[ERROR] [config] unknown history backend backend=redis")
}

func TestCompleteCommandOnlyFirstWord(t *testing.T) {
	require.Len(t, completeCommand("he"), len(commands))
	require.Nil(t, completeCommand("history extra"))
}
