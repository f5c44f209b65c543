package activities

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/model"
)

type slowSteps struct {
	delay time.Duration
}

func (s slowSteps) wait(ctx context.Context) error {
	select {
	case <-time.After(s.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s slowSteps) MergeMedia(ctx context.Context, _ int64, kind model.ChunkKind) (string, error) {
	return kind.Dir() + "/merged", s.wait(ctx)
}

func (s slowSteps) FinalizeTranscript(context.Context, int64) (string, error) {
	return "stt.json", nil
}

func (s slowSteps) TranscribeArtifact(ctx context.Context, _ int64) (string, error) {
	return "final.txt", s.wait(ctx)
}

func (s slowSteps) Evaluate(context.Context, int64) (int64, error) {
	return 1, nil
}

func TestLongStepsKeepHeartbeating(t *testing.T) {
	tests := []struct {
		name string
		run  func(env *testsuite.TestActivityEnvironment, a *CloseoutActivities) (string, error)
		want string
	}{
		{
			name: "merge media",
			run: func(env *testsuite.TestActivityEnvironment, a *CloseoutActivities) (string, error) {
				val, err := env.ExecuteActivity(a.MergeMedia, MergeRequest{SessionID: 1, Kind: model.KindAudio})
				if err != nil {
					return "", err
				}
				var path string
				return path, val.Get(&path)
			},
			want: "audios/merged",
		},
		{
			name: "transcribe artifact",
			run: func(env *testsuite.TestActivityEnvironment, a *CloseoutActivities) (string, error) {
				val, err := env.ExecuteActivity(a.TranscribeArtifact, int64(1))
				if err != nil {
					return "", err
				}
				var path string
				return path, val.Get(&path)
			},
			want: "final.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var beats int32
			a := NewCloseoutActivities(slowSteps{delay: 200 * time.Millisecond})
			a.interval = 20 * time.Millisecond
			a.heartbeat = func(context.Context, ...interface{}) { atomic.AddInt32(&beats, 1) }

			var suite testsuite.WorkflowTestSuite
			env := suite.NewTestActivityEnvironment()
			env.RegisterActivity(a)

			got, err := tt.run(env, a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, atomic.LoadInt32(&beats), int32(3), "heartbeats must continue while the step runs")
		})
	}
}

func TestKeepAliveReturnsStepError(t *testing.T) {
	a := NewCloseoutActivities(slowSteps{})
	a.heartbeat = func(context.Context, ...interface{}) {}

	want := apperrors.Merge(errors.New("exit status 1"), "merge audio")
	_, err := keepAlive(context.Background(), a, "merging", func(context.Context) (string, error) {
		return "", want
	})
	assert.Equal(t, want, err)
}

func TestKeepAliveStopsOnCancel(t *testing.T) {
	a := NewCloseoutActivities(slowSteps{})
	a.heartbeat = func(context.Context, ...interface{}) {}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := keepAlive(ctx, a, "merging", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return "late", nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType string
	}{
		{"not found", apperrors.NotFound("session", 1), ErrTypeNotFound},
		{"not eligible", apperrors.NotEligible("session 1 is scheduled"), ErrTypeNotEligible},
		{"invalid", apperrors.RequiredField("session_id"), ErrTypeInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var appErr *temporal.ApplicationError
			err := classify(tt.err)
			assert.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantType, appErr.Type())
			assert.True(t, appErr.NonRetryable())
		})
	}

	assert.NoError(t, classify(nil))
	storage := apperrors.Storage(errors.New("disk"), "write")
	assert.Equal(t, storage, classify(storage))
}
