package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewFromFile(filepath.Join(t.TempDir(), "session.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBoltStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "accessToken", "tok-123"))

	value, ok, err := s.Get(ctx, "accessToken")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "tok-123", value)
}

func TestBoltStoreAbsentKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, ok, err := s.Get(ctx, "licenseCode")
	require.NoError(t, err)
	require.False(t, ok)

	// Removing an absent key is a no-op.
	require.NoError(t, s.Remove(ctx, "licenseCode"))
}

func TestBoltStoreRemoveMany(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Set(ctx, "accountNumber", "55"))
	require.NoError(t, s.Set(ctx, "neighborhoodCode", "rufina"))
	require.NoError(t, s.Set(ctx, "unrelated", "stays"))

	require.NoError(t, s.RemoveMany(ctx, []string{"accountNumber", "neighborhoodCode", "missing"}))

	_, ok, err := s.Get(ctx, "accountNumber")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = s.Get(ctx, "neighborhoodCode")
	require.NoError(t, err)
	require.False(t, ok)

	value, ok, err := s.Get(ctx, "unrelated")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "stays", value)
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s, err := NewFromFile(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "fullName", "Juan Pérez"))
	require.NoError(t, s.Close())

	s2, err := NewFromFile(path, nil)
	require.NoError(t, err)
	defer s2.Close()

	value, ok, err := s2.Get(ctx, "fullName")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Juan Pérez", value)
}
