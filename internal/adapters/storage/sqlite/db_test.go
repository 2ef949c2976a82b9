package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithBusyTimeout(t *testing.T) {
	assert.Equal(t, "file.db?_busy_timeout=5000", withBusyTimeout("file.db"))
	assert.Equal(t, "file.db?mode=rwc&_busy_timeout=5000", withBusyTimeout("file.db?mode=rwc"))
	assert.Equal(t, "file.db?_busy_timeout=100", withBusyTimeout("file.db?_busy_timeout=100"))
}

func TestOpen(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	var one int
	require.NoError(t, db.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}
