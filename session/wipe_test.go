package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MauroHerreraJ/vigia/store"
	"github.com/MauroHerreraJ/vigia/store/memory"
)

// flakyStore injects failures into a memory store to exercise the wipe
// fallback paths.
type flakyStore struct {
	*memory.Store
	mu        sync.Mutex
	failBatch bool
	failKeys  map[string]int // key -> remaining Remove failures
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: memory.New(), failKeys: make(map[string]int)}
}

func (f *flakyStore) RemoveMany(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failBatch {
		return errors.New("batch write failed")
	}
	return f.Store.RemoveMany(ctx, keys)
}

func (f *flakyStore) Remove(ctx context.Context, key string) error {
	f.mu.Lock()
	if remaining := f.failKeys[key]; remaining > 0 {
		f.failKeys[key] = remaining - 1
		f.mu.Unlock()
		return errors.New("remove failed")
	}
	f.mu.Unlock()
	return f.Store.Remove(ctx, key)
}

func TestWipeFallsBackToPerKeyRemoval(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	st.failBatch = true
	seedRecord(t, st)

	c := New(st, &fakeBackend{})
	defer c.Stop()
	c.Wipe(ctx)

	requireRecordAbsent(t, st)
	assert.Equal(t, StateUnauthorized, c.Snapshot().State)
}

func TestWipeOneKeyFailureDoesNotAbortTheRest(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	st.failBatch = true
	// refreshToken removal fails permanently; every other key must still go.
	st.failKeys[store.KeyRefreshToken] = 1 << 30
	seedRecord(t, st)

	c := New(st, &fakeBackend{})
	defer c.Stop()
	c.Wipe(ctx)

	for _, key := range store.SessionKeys() {
		if key == store.KeyRefreshToken {
			continue
		}
		_, ok, err := st.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, "key %q survived the wipe", key)
	}
}

func TestWipeVerifiesAccessTokenRemoval(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStore()
	st.failBatch = true
	// First individual removal of the access token fails; the post-wipe
	// verification must catch the surviving token and retry.
	st.failKeys[store.KeyAccessToken] = 1
	seedRecord(t, st)

	c := New(st, &fakeBackend{})
	defer c.Stop()
	c.Wipe(ctx)

	_, ok, err := st.Get(ctx, store.KeyAccessToken)
	require.NoError(t, err)
	assert.False(t, ok, "access token survived the wipe")
}
