package logger

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLoggerReadEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := NewIsolatedLogger(path)

	l.Info("Audit", "first", map[string]interface{}{"n": 1})
	l.Warn("Audit", "second", nil)
	l.Info("Audit", "third", nil)
	require.NoError(t, l.Sync())

	entries, err := l.ReadEntries("", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Message)
	assert.Equal(t, "Audit", entries[0].Module)
	assert.NotEmpty(t, entries[0].Id)

	warns, err := l.ReadEntries("WARN", 10, 0)
	require.NoError(t, err)
	require.Len(t, warns, 1)
	assert.Equal(t, "second", warns[0].Message)

	page, err := l.ReadEntries("", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "second", page[0].Message)

	empty, err := l.ReadEntries("", 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestReadEntriesMissingFile(t *testing.T) {
	l := NewIsolatedLogger(filepath.Join(t.TempDir(), "never-written.log"))
	entries, err := l.ReadEntries("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = NewNopLogger().ReadEntries("", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
