package activities

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/model"
)

// Activity names, as registered from CloseoutActivities' methods
const (
	MergeMediaName         = "MergeMedia"
	FinalizeTranscriptName = "FinalizeTranscript"
	TranscribeArtifactName = "TranscribeArtifact"
	EvaluateSessionName    = "EvaluateSession"
)

// Error types a retry cannot fix
const (
	ErrTypeNotFound    = "NotFound"
	ErrTypeNotEligible = "NotEligible"
	ErrTypeInvalid     = "InvalidInput"
)

// Steps is the closeout pipeline the activities delegate to
type Steps interface {
	MergeMedia(ctx context.Context, sessionID int64, kind model.ChunkKind) (string, error)
	FinalizeTranscript(ctx context.Context, sessionID int64) (string, error)
	TranscribeArtifact(ctx context.Context, sessionID int64) (string, error)
	Evaluate(ctx context.Context, sessionID int64) (int64, error)
}

// MergeRequest selects the media kind to merge
type MergeRequest struct {
	SessionID int64           `json:"session_id"`
	Kind      model.ChunkKind `json:"kind"`
}

// HeartbeatInterval is how often long steps report liveness. It must stay
// well below the HeartbeatTimeout the workflow sets on media activities.
const HeartbeatInterval = 10 * time.Second

// CloseoutActivities exposes the closeout steps as Temporal activities
type CloseoutActivities struct {
	steps     Steps
	interval  time.Duration
	heartbeat func(ctx context.Context, details ...interface{})
}

// NewCloseoutActivities creates the activity set
func NewCloseoutActivities(steps Steps) *CloseoutActivities {
	return &CloseoutActivities{
		steps:     steps,
		interval:  HeartbeatInterval,
		heartbeat: activity.RecordHeartbeat,
	}
}

// MergeMedia merges one media kind. Returns "" when the session has no chunks of that kind.
func (a *CloseoutActivities) MergeMedia(ctx context.Context, req MergeRequest) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Merging media", "sessionId", req.SessionID, "kind", req.Kind)

	path, err := keepAlive(ctx, a, fmt.Sprintf("merging %s", req.Kind), func(ctx context.Context) (string, error) {
		return a.steps.MergeMedia(ctx, req.SessionID, req.Kind)
	})
	if err != nil {
		logger.Error("Merge failed", "sessionId", req.SessionID, "kind", req.Kind, "error", err)
		return "", classify(err)
	}
	return path, nil
}

func (a *CloseoutActivities) FinalizeTranscript(ctx context.Context, sessionID int64) (string, error) {
	path, err := a.steps.FinalizeTranscript(ctx, sessionID)
	return path, classify(err)
}

func (a *CloseoutActivities) TranscribeArtifact(ctx context.Context, sessionID int64) (string, error) {
	path, err := keepAlive(ctx, a, "transcribing artifact", func(ctx context.Context) (string, error) {
		return a.steps.TranscribeArtifact(ctx, sessionID)
	})
	return path, classify(err)
}

func (a *CloseoutActivities) EvaluateSession(ctx context.Context, sessionID int64) (int64, error) {
	id, err := a.steps.Evaluate(ctx, sessionID)
	return id, classify(err)
}

// keepAlive runs step while heartbeating every interval until it returns
func keepAlive[T any](ctx context.Context, a *CloseoutActivities, details string, step func(context.Context) (T, error)) (T, error) {
	type outcome struct {
		value T
		err   error
	}

	a.heartbeat(ctx, details)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	done := make(chan outcome, 1)
	go func() {
		v, err := step(ctx)
		done <- outcome{value: v, err: err}
	}()

	for {
		select {
		case o := <-done:
			return o.value, o.err
		case <-ticker.C:
			a.heartbeat(ctx, details)
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// classify marks errors that will fail again on retry as non-retryable
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.Is(err, apperrors.ErrNotFound):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotFound, err)
	case apperrors.Is(err, apperrors.ErrNotEligible):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeNotEligible, err)
	case apperrors.IsValidationError(err):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalid, err)
	}
	return err
}
