package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/metrics"
)

func waitFor(t *testing.T, tr *Tracker, id string) Task {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	task, err := tr.Wait(ctx, id)
	require.NoError(t, err)
	return task
}

func TestTrackerStates(t *testing.T) {
	tr := NewTracker(2, nil, metrics.New())

	tests := []struct {
		name      string
		fn        Func
		wantState State
		wantErr   string
		wantRes   string
	}{
		{
			name:      "success",
			fn:        func(ctx context.Context) (string, error) { return "videos/interview_1.mp4", nil },
			wantState: StateSucceeded,
			wantRes:   "videos/interview_1.mp4",
		},
		{
			name:      "failure",
			fn:        func(ctx context.Context) (string, error) { return "", errors.New("encoder exited 1") },
			wantState: StateFailed,
			wantErr:   "encoder exited 1",
		},
		{
			name:      "panic is recovered",
			fn:        func(ctx context.Context) (string, error) { panic("boom") },
			wantState: StateFailed,
			wantErr:   "panic: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitted := tr.Submit("merge", "1:video", tt.fn)
			assert.NotEmpty(t, submitted.ID)
			assert.Equal(t, "merge", submitted.Kind)

			task := waitFor(t, tr, submitted.ID)
			assert.Equal(t, tt.wantState, task.State)
			assert.Equal(t, tt.wantErr, task.Error)
			assert.Equal(t, tt.wantRes, task.Result)
			assert.NotNil(t, task.FinishedAt)
		})
	}
}

func TestTrackerPendingWhileBlocked(t *testing.T) {
	tr := NewTracker(1, nil, nil)
	release := make(chan struct{})

	first := tr.Submit("report", "1", func(ctx context.Context) (string, error) {
		<-release
		return "", nil
	})
	second := tr.Submit("report", "2", func(ctx context.Context) (string, error) { return "", nil })

	assert.Eventually(t, func() bool {
		task, _ := tr.Get(first.ID)
		return task.State == StateRunning
	}, time.Second, 5*time.Millisecond)

	task, err := tr.Get(second.ID)
	require.NoError(t, err)
	assert.Equal(t, StatePending, task.State)

	close(release)
	assert.Equal(t, StateSucceeded, waitFor(t, tr, second.ID).State)
}

func TestTrackerConcurrencyBound(t *testing.T) {
	tr := NewTracker(3, nil, nil)
	var running, peak int32

	var ids []string
	for i := 0; i < 10; i++ {
		task := tr.Submit("merge", "x", func(ctx context.Context) (string, error) {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return "", nil
		})
		ids = append(ids, task.ID)
	}
	for _, id := range ids {
		waitFor(t, tr, id)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestTrackerGetUnknown(t *testing.T) {
	tr := NewTracker(1, nil, nil)
	_, err := tr.Get("missing")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestTrackerShutdown(t *testing.T) {
	tr := NewTracker(1, nil, nil)
	task := tr.Submit("merge", "x", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, tr.Shutdown(ctx))

	got, err := tr.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, got.State)
}
