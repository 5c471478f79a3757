package netlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSessionIDStampedIntoRotatedFile(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(Options{Dir: dir, MaxLinesPerFile: 1000, QueueCapacity: 10})
	require.NoError(t, err)

	_, err = uuid.Parse(l.SessionID())
	require.NoError(t, err, "SessionID should be a valid uuid")

	l.Write("hello")
	l.Close()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Contains(t, string(data), "# session "+l.SessionID())
	require.Contains(t, string(data), "hello")
}
