package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medops/hospital-assistant/orchestrator"
	"github.com/medops/hospital-assistant/tools"
)

func newTestStore(ttl time.Duration) *MemSessionStore {
	return NewMemSessionStore(ttl, func() *orchestrator.Orchestrator {
		return orchestrator.New(nil, nil, tools.NewRegistry())
	})
}

func TestSessionDuplicateText(t *testing.T) {
	s := newTestStore(0).Create()

	_, dup := s.DuplicateText("how many doctors?")
	assert.False(t, dup, "first utterance is never a duplicate")

	s.Remember("how many doctors?", "", "There are 12 doctors.")
	reply, dup := s.DuplicateText("how many doctors?")
	require.True(t, dup)
	assert.Equal(t, "There are 12 doctors.", reply)

	_, dup = s.DuplicateText("how many nurses?")
	assert.False(t, dup, "a different utterance resets the check")
}

func TestSessionDuplicateAudio(t *testing.T) {
	s := newTestStore(0).Create()
	s.Remember("hello", "digest-1", "Hi!")

	reply, dup := s.DuplicateAudio("digest-1")
	require.True(t, dup)
	assert.Equal(t, "Hi!", reply)

	_, dup = s.DuplicateAudio("digest-2")
	assert.False(t, dup)

	_, dup = s.DuplicateAudio("")
	assert.False(t, dup, "empty digest never matches")
}

func TestMemSessionStoreLifecycle(t *testing.T) {
	store := newTestStore(0)
	s := store.Create()

	got, ok := store.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, s.ID, got.ID)

	assert.True(t, store.Delete(s.ID))
	_, ok = store.Get(s.ID)
	assert.False(t, ok)
	assert.False(t, store.Delete(s.ID), "double delete reports a miss")
}

func TestMemSessionStoreTTL(t *testing.T) {
	store := newTestStore(10 * time.Millisecond)
	s := store.Create()
	time.Sleep(20 * time.Millisecond)

	_, ok := store.Get(s.ID)
	assert.False(t, ok, "expired session must be dropped on access")
}

func TestMemSessionStoreClean(t *testing.T) {
	store := newTestStore(0)
	var ids []string
	for i := 0; i < 5; i++ {
		s := store.Create()
		s.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		ids = append(ids, s.ID)
	}

	require.NoError(t, store.Clean(2))
	list := store.List()
	require.Len(t, list, 2)
	// the two most recent survive
	assert.Equal(t, ids[4], list[0].ID)
	assert.Equal(t, ids[3], list[1].ID)
}

func TestMemSessionStoreListRange(t *testing.T) {
	store := newTestStore(0)
	for i := 0; i < 3; i++ {
		s := store.Create()
		s.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
	}

	assert.Len(t, store.ListRange(0, 2), 2)
	assert.Len(t, store.ListRange(2, 2), 1)
	assert.Empty(t, store.ListRange(5, 2))
	assert.Empty(t, store.ListRange(0, 0))
}
