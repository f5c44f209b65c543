package merge

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/storage/media"
	"interview-capture/internal/app/tasks"
	"interview-capture/internal/app/testutil"
)

type fixture struct {
	store   *repository.CommonDB
	disk    *media.Disk
	encoder *testutil.FakeEncoder
	tracker *tasks.Tracker
	coord   *Coordinator
	session *model.Session
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	disk, err := media.NewDisk(t.TempDir())
	require.NoError(t, err)
	encoder := &testutil.FakeEncoder{}
	tracker := tasks.NewTracker(4, nil, nil)
	return &fixture{
		store:   store,
		disk:    disk,
		encoder: encoder,
		tracker: tracker,
		coord:   NewCoordinator(store, disk, encoder, tracker, Options{}),
		session: testutil.CreateSession(t, store, "Park", model.StatusInProgress),
	}
}

func (f *fixture) writeChunks(t *testing.T, kind model.ChunkKind, indexes ...int) {
	t.Helper()
	for _, n := range indexes {
		_, err := f.disk.WriteChunk(kind, f.session.ID, 0, n, []byte{byte('a' + n)})
		require.NoError(t, err)
	}
}

func TestMergeOrdersChunksNumerically(t *testing.T) {
	f := setup(t)
	// 10 must sort after 2, not between 1 and 2
	f.writeChunks(t, model.KindVideo, 2, 10, 0, 1)

	rel, err := f.coord.Merge(context.Background(), f.session.ID, model.KindVideo)
	require.NoError(t, err)
	assert.Equal(t, media.ArtifactRel(model.KindVideo, f.session.ID), rel)

	data, err := os.ReadFile(f.disk.Abs(rel))
	require.NoError(t, err)
	assert.Equal(t, "abck", string(data))

	s, err := f.store.GetSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, rel, s.VideoPath)
	assert.Empty(t, s.AudioPath)
}

func TestMergeIsDeterministic(t *testing.T) {
	f := setup(t)
	f.writeChunks(t, model.KindAudio, 3, 1, 0, 2)

	first, err := f.coord.Merge(context.Background(), f.session.ID, model.KindAudio)
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(f.disk.Abs(first))
	require.NoError(t, err)

	second, err := f.coord.Merge(context.Background(), f.session.ID, model.KindAudio)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(f.disk.Abs(second))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstBytes, secondBytes)

	manifests := f.encoder.Manifests()
	require.Len(t, manifests, 2)
	assert.Equal(t, manifests[0], manifests[1])
}

func TestMergeWithoutChunks(t *testing.T) {
	f := setup(t)
	_, err := f.coord.Merge(context.Background(), f.session.ID, model.KindVideo)
	assert.True(t, apperrors.Is(err, apperrors.ErrMerge))
	assert.ErrorIs(t, err, ErrNoChunks)
	assert.Equal(t, 0, f.encoder.Calls())
}

func TestMergeUnknownSession(t *testing.T) {
	f := setup(t)
	_, err := f.coord.Merge(context.Background(), 4242, model.KindVideo)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestMergeRejectsTextKind(t *testing.T) {
	f := setup(t)
	_, err := f.coord.Merge(context.Background(), f.session.ID, model.KindText)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestEncoderFailureLeavesPathUnchanged(t *testing.T) {
	f := setup(t)
	f.writeChunks(t, model.KindVideo, 0, 1)

	rel, err := f.coord.Merge(context.Background(), f.session.ID, model.KindVideo)
	require.NoError(t, err)
	before, err := os.ReadFile(f.disk.Abs(rel))
	require.NoError(t, err)

	f.writeChunks(t, model.KindVideo, 2)
	f.encoder.Err = errors.New("invalid data found when processing input")

	_, err = f.coord.Merge(context.Background(), f.session.ID, model.KindVideo)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrMerge))

	after, err := os.ReadFile(f.disk.Abs(rel))
	require.NoError(t, err)
	assert.Equal(t, before, after, "previous artifact must survive a failed merge")

	_, err = os.Stat(f.disk.Abs(rel) + ".tmp")
	assert.True(t, os.IsNotExist(err))

	s, err := f.store.GetSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, rel, s.VideoPath)
}

func TestEncoderFailureOnFirstMergeRecordsNoPath(t *testing.T) {
	f := setup(t)
	f.writeChunks(t, model.KindAudio, 0)
	f.encoder.Err = errors.New("encoder crashed")

	_, err := f.coord.Merge(context.Background(), f.session.ID, model.KindAudio)
	require.Error(t, err)

	s, err := f.store.GetSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Empty(t, s.AudioPath)
}

func TestConcurrentMergesAreSingleFlight(t *testing.T) {
	f := setup(t)
	f.writeChunks(t, model.KindVideo, 0, 1, 2)
	f.encoder.Gate = make(chan struct{})

	const callers = 6
	var wg sync.WaitGroup
	results := make([]string, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.coord.Merge(context.Background(), f.session.ID, model.KindVideo)
		}(i)
	}

	// let every caller reach the in-flight merge before releasing the encoder
	assert.Eventually(t, func() bool { return f.encoder.Calls() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(f.encoder.Gate)
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, 1, f.encoder.MaxConcurrent())
	assert.LessOrEqual(t, f.encoder.Calls(), callers)
}

func TestCancelledCallerDoesNotFailJoinedMerge(t *testing.T) {
	f := setup(t)
	f.writeChunks(t, model.KindVideo, 0, 1)
	f.encoder.Gate = make(chan struct{})

	type outcome struct {
		path string
		err  error
	}
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	first := make(chan outcome, 1)
	go func() {
		p, err := f.coord.Merge(firstCtx, f.session.ID, model.KindVideo)
		first <- outcome{p, err}
	}()
	require.Eventually(t, func() bool { return f.encoder.Calls() == 1 }, time.Second, 5*time.Millisecond)

	joined := make(chan outcome, 1)
	go func() {
		p, err := f.coord.Merge(context.Background(), f.session.ID, model.KindVideo)
		joined <- outcome{p, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	select {
	case got := <-first:
		assert.ErrorIs(t, got.err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting on the shared merge")
	}

	close(f.encoder.Gate)
	got := <-joined
	require.NoError(t, got.err)
	assert.Equal(t, media.ArtifactRel(model.KindVideo, f.session.ID), got.path)
	assert.Equal(t, 1, f.encoder.Calls())

	s, err := f.store.GetSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, got.path, s.VideoPath)
}

func TestDifferentKindsMergeIndependently(t *testing.T) {
	f := setup(t)
	f.writeChunks(t, model.KindVideo, 0)
	f.writeChunks(t, model.KindAudio, 0)

	_, err := f.coord.Merge(context.Background(), f.session.ID, model.KindVideo)
	require.NoError(t, err)
	_, err = f.coord.Merge(context.Background(), f.session.ID, model.KindAudio)
	require.NoError(t, err)

	s, err := f.store.GetSession(context.Background(), f.session.ID)
	require.NoError(t, err)
	assert.Equal(t, "videos/interview_1.mp4", s.VideoPath)
	assert.Equal(t, "audios/interview_1.mp3", s.AudioPath)
}

func TestScheduleIsObservable(t *testing.T) {
	f := setup(t)
	f.writeChunks(t, model.KindAudio, 0, 1)

	task, err := f.coord.Schedule(f.session.ID, model.KindAudio)
	require.NoError(t, err)
	assert.Equal(t, "merge", task.Kind)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done, err := f.tracker.Wait(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StateSucceeded, done.State)
	assert.Equal(t, "audios/interview_1.mp3", done.Result)

	failed, err := f.coord.Schedule(f.session.ID, model.KindVideo)
	require.NoError(t, err)
	done, err = f.tracker.Wait(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, tasks.StateFailed, done.State)
	assert.Contains(t, done.Error, "no video chunks")
}
