package chunkindex

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-capture/internal/app/model"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "stt_chunks:12:3", SetKey(12, 3))
	assert.Equal(t, "stt:12:3:7", FragmentKey(12, 3, 7))
}

func TestIndexRecordAndRaw(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(NewMemoryStore(), time.Hour)

	for i, text := range []string{"first", "second"} {
		_, err := idx.Record(ctx, model.Fragment{SessionID: 1, QuestionIndex: 0, ChunkIndex: i, Timestamp: float64(i), Text: text})
		require.NoError(t, err)
	}
	_, err := idx.Record(ctx, model.Fragment{SessionID: 1, QuestionIndex: 1, ChunkIndex: 0, Text: "other question"})
	require.NoError(t, err)

	keys, values, err := idx.Raw(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	require.Len(t, values, 2)

	for i, k := range keys {
		f, err := DecodeFragment(k, values[i])
		require.NoError(t, err)
		assert.Equal(t, k, f.Key)
		assert.Equal(t, 0, f.QuestionIndex)
	}
}

func TestIndexOverwritesSameChunkIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(NewMemoryStore(), time.Hour)

	_, err := idx.Record(ctx, model.Fragment{SessionID: 5, QuestionIndex: 2, ChunkIndex: 3, Timestamp: 1, Text: "old"})
	require.NoError(t, err)
	_, err = idx.Record(ctx, model.Fragment{SessionID: 5, QuestionIndex: 2, ChunkIndex: 3, Timestamp: 2, Text: "new"})
	require.NoError(t, err)

	keys, values, err := idx.Raw(ctx, 5, 2)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	f, err := DecodeFragment(keys[0], values[0])
	require.NoError(t, err)
	assert.Equal(t, "new", f.Text)
}

func TestIndexForget(t *testing.T) {
	ctx := context.Background()
	idx := NewIndex(NewMemoryStore(), time.Hour)

	for i := 0; i < 2; i++ {
		_, err := idx.Record(ctx, model.Fragment{SessionID: 5, QuestionIndex: 2, ChunkIndex: i, Text: "text"})
		require.NoError(t, err)
	}
	require.NoError(t, idx.Forget(ctx, 5, 2, 0))
	// absent keys are fine
	require.NoError(t, idx.Forget(ctx, 5, 2, 9))
	require.NoError(t, idx.Forget(ctx, 6, 0, 0))

	keys, values, err := idx.Raw(ctx, 5, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{FragmentKey(5, 2, 1)}, keys)
	assert.NotNil(t, values[0])

	require.NoError(t, idx.Forget(ctx, 5, 2, 1))
	keys, _, err = idx.Raw(ctx, 5, 2)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(func() time.Time { return now })

	require.NoError(t, store.Put(ctx, "set", "a", []byte("1"), time.Hour))
	now = now.Add(30 * time.Minute)
	require.NoError(t, store.Put(ctx, "set", "b", []byte("2"), 10*time.Minute))

	members, err := store.Members(ctx, "set")
	require.NoError(t, err)
	sort.Strings(members)
	assert.Equal(t, []string{"a", "b"}, members)

	// the set TTL follows the most recent put, like EXPIRE in redis
	now = now.Add(15 * time.Minute)
	values, err := store.Values(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), values[0])
	assert.Nil(t, values[1])
	assert.Nil(t, values[2])

	members, err = store.Members(ctx, "set")
	require.NoError(t, err)
	assert.Empty(t, members)

	assert.Equal(t, 1, store.Sweep())
}

func TestRedisStoreIntegration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis integration test")
	}
	ctx := context.Background()
	store, err := NewRedisStore(ctx, RedisOptions{Addr: addr})
	require.NoError(t, err)
	defer store.Close()

	setKey := SetKey(999999, 0)
	require.NoError(t, store.Put(ctx, setKey, FragmentKey(999999, 0, 0), []byte(`{"text":"hello"}`), time.Minute))

	members, err := store.Members(ctx, setKey)
	require.NoError(t, err)
	assert.Contains(t, members, FragmentKey(999999, 0, 0))

	values, err := store.Values(ctx, []string{FragmentKey(999999, 0, 0), "stt:missing"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hello"}`, string(values[0]))
	assert.Nil(t, values[1])

	require.NoError(t, store.Remove(ctx, setKey, FragmentKey(999999, 0, 0)))
	members, err = store.Members(ctx, setKey)
	require.NoError(t, err)
	assert.NotContains(t, members, FragmentKey(999999, 0, 0))
}
