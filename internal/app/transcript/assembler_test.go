package transcript

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-capture/internal/app/api"
	"interview-capture/internal/app/chunkindex"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/storage/media"
	"interview-capture/internal/app/testutil"
)

type fixture struct {
	store     *repository.CommonDB
	disk      *media.Disk
	kv        *chunkindex.MemoryStore
	index     *chunkindex.Index
	assembler *Assembler
}

func setup(t *testing.T, final FinalTranscriber) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	disk, err := media.NewDisk(t.TempDir())
	require.NoError(t, err)
	kv := chunkindex.NewMemoryStore()
	index := chunkindex.NewIndex(kv, 24*time.Hour)
	return &fixture{
		store:     store,
		disk:      disk,
		kv:        kv,
		index:     index,
		assembler: NewAssembler(index, store, store, disk, final, nil),
	}
}

func (f *fixture) record(t *testing.T, sid int64, q, chunk int, ts float64, text string) {
	t.Helper()
	_, err := f.index.Record(context.Background(), model.Fragment{
		SessionID: sid, QuestionIndex: q, ChunkIndex: chunk, Timestamp: ts, Text: text,
	})
	require.NoError(t, err)
}

func TestAssembleOrdersByTimestamp(t *testing.T) {
	f := setup(t, nil)

	// chunk indices [2,0,1] carry timestamps t0<t1<t2, recorded out of order
	f.record(t, 1, 0, 1, 300, "셋")
	f.record(t, 1, 0, 2, 100, "하나")
	f.record(t, 1, 0, 0, 200, "둘")

	fragments, err := f.assembler.Assemble(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, fragments, 3)
	assert.Equal(t, []float64{100, 200, 300}, []float64{fragments[0].Timestamp, fragments[1].Timestamp, fragments[2].Timestamp})
	assert.Equal(t, []int{2, 0, 1}, []int{fragments[0].ChunkIndex, fragments[1].ChunkIndex, fragments[2].ChunkIndex})
	assert.Equal(t, "하나 둘 셋", Text(fragments))
	assert.Equal(t, chunkindex.FragmentKey(1, 0, 2), fragments[0].Key)
}

func TestAssembleTieBreaks(t *testing.T) {
	f := setup(t, nil)
	f.record(t, 1, 0, 5, 100, "b")
	f.record(t, 1, 0, 3, 100, "a")
	f.record(t, 1, 0, 9, 50, "first")

	fragments, err := f.assembler.Assemble(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "first a b", Text(fragments))
}

func TestAssembleIsolatedPerQuestion(t *testing.T) {
	f := setup(t, nil)
	f.record(t, 1, 0, 0, 1, "q0")
	f.record(t, 1, 1, 0, 1, "q1")
	f.record(t, 2, 0, 0, 1, "other session")

	fragments, err := f.assembler.Assemble(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "q1", fragments[0].Text)

	empty, err := f.assembler.Assemble(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAssembleSkipsExpiredAndCorrupt(t *testing.T) {
	store := testutil.NewStore(t)
	disk, err := media.NewDisk(t.TempDir())
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	kv := chunkindex.NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	short := chunkindex.NewIndex(kv, time.Minute)
	_, err = short.Record(ctx, model.Fragment{SessionID: 1, ChunkIndex: 0, Timestamp: 1, Text: "expired"})
	require.NoError(t, err)

	long := chunkindex.NewIndex(kv, time.Hour)
	_, err = long.Record(ctx, model.Fragment{SessionID: 1, ChunkIndex: 1, Timestamp: 2, Text: "kept"})
	require.NoError(t, err)
	require.NoError(t, kv.Put(ctx, chunkindex.SetKey(1, 0), chunkindex.FragmentKey(1, 0, 2), []byte("{not json"), time.Hour))

	now = now.Add(10 * time.Minute)

	assembler := NewAssembler(long, store, store, disk, nil, nil)
	fragments, err := assembler.Assemble(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, fragments, 1)
	assert.Equal(t, "kept", fragments[0].Text)
}

func TestFinalize(t *testing.T) {
	f := setup(t, nil)
	ctx := context.Background()
	s := testutil.CreateSession(t, f.store, "Kim", model.StatusCompleted)

	f.record(t, s.ID, 0, 1, 20, "world")
	f.record(t, s.ID, 0, 0, 10, "hello")
	f.record(t, s.ID, 2, 0, 5, "second answer")
	f.record(t, s.ID, 3, 0, 5, "   ")

	rel, err := f.assembler.Finalize(ctx, s.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, media.TranscriptRel(s.ID), rel)

	raw, err := os.ReadFile(filepath.Join(f.disk.Root(), rel))
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, map[string]string{"0": "hello world", "2": "second answer"}, got)

	answers, err := f.store.ListAnswers(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, 0, answers[0].QuestionIndex)
	assert.Equal(t, "hello world", answers[0].Content)
	assert.Equal(t, 2, answers[1].QuestionIndex)

	updated, err := f.store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, rel, updated.STTPath)

	// finalizing again upserts rather than duplicating
	f.record(t, s.ID, 2, 1, 6, "more")
	_, err = f.assembler.Finalize(ctx, s.ID, 5)
	require.NoError(t, err)
	answers, err = f.store.ListAnswers(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "second answer more", answers[1].Content)
}

func TestFinalizeUnknownSession(t *testing.T) {
	f := setup(t, nil)
	_, err := f.assembler.Finalize(context.Background(), 404, 5)
	assert.Error(t, err)
}

func TestTranscribeArtifact(t *testing.T) {
	mock := testutil.NewMockTranscriber("전체 녹취록")
	f := setup(t, api.NewTranscriptionAdapter(mock, api.AdapterOptions{}))
	ctx := context.Background()
	s := testutil.CreateSession(t, f.store, "Lee", model.StatusCompleted)

	// no artifact yet
	_, ok, err := f.assembler.TranscribeArtifact(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	rel := media.ArtifactRel(model.KindAudio, s.ID)
	require.NoError(t, media.WriteFile(f.disk.Abs(rel), []byte("mp3")))
	_, err = f.store.UpdateSession(ctx, s.ID, model.SessionUpdate{AudioPath: &rel})
	require.NoError(t, err)

	out, ok, err := f.assembler.TranscribeArtifact(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, ok)
	raw, err := os.ReadFile(f.disk.Abs(out))
	require.NoError(t, err)
	assert.Equal(t, "전체 녹취록", string(raw))
}
