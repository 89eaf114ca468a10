package audit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, s.Init())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.RecordCommand("g1", "u1", "ping", "ok", ""))
	require.NoError(t, s.RecordPanelAction("g1", "u2", "restart process", "error", "exit status 1"))

	got, err := s.RecentInvocations(10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first.
	assert.Equal(t, KindPanel, got[0].Kind)
	assert.Equal(t, "restart process", got[0].Name)
	assert.Equal(t, "error", got[0].Status)
	assert.Equal(t, "exit status 1", got[0].Detail)

	assert.Equal(t, KindCommand, got[1].Kind)
	assert.Equal(t, "ping", got[1].Name)
	assert.Equal(t, "u1", got[1].UserID)
	assert.False(t, got[1].CreatedAt.IsZero())
}

func TestRecentLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordCommand("g1", "u1", "ping", "ok", ""))
	}

	got, err := s.RecentInvocations(3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestInitIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Init())
}

func TestUninitializedStoreErrors(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "audit.db"))
	assert.Error(t, s.RecordCommand("g", "u", "n", "ok", ""))
	_, err := s.RecentInvocations(1)
	assert.Error(t, err)
}
