package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestJournal opens a journal in a temp dir, closed on cleanup.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}
