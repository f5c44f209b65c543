package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"interview-capture/internal/app/model"
	"interview-capture/internal/app/temporal/activities"
)

// SessionCloseoutWorkflowName is the registered workflow type
const SessionCloseoutWorkflowName = "SessionCloseoutWorkflow"

// CloseoutRequest is the workflow input
type CloseoutRequest struct {
	SessionID int64 `json:"session_id"`
}

// CloseoutResult is the workflow output
type CloseoutResult struct {
	SessionID       int64         `json:"session_id"`
	VideoPath       string        `json:"video_path,omitempty"`
	AudioPath       string        `json:"audio_path,omitempty"`
	STTPath         string        `json:"stt_path,omitempty"`
	FinalTranscript string        `json:"final_transcript,omitempty"`
	EvaluationID    int64         `json:"evaluation_id,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
	ProcessingTime  time.Duration `json:"processing_time"`
}

// SessionCloseoutWorkflow merges both media kinds in parallel, then finalizes the
// transcript and evaluates the session. A failed merge is reported in Warnings
// and does not block evaluation.
func SessionCloseoutWorkflow(ctx workflow.Context, req CloseoutRequest) (CloseoutResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting session closeout", "sessionId", req.SessionID)

	startTime := workflow.Now(ctx)
	result := CloseoutResult{SessionID: req.SessionID}

	retry := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    3,
		NonRetryableErrorTypes: []string{
			activities.ErrTypeNotFound,
			activities.ErrTypeNotEligible,
			activities.ErrTypeInvalid,
		},
	}
	mediaCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy:         retry,
	})
	stepCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy:         retry,
	})

	video := workflow.ExecuteActivity(mediaCtx, activities.MergeMediaName,
		activities.MergeRequest{SessionID: req.SessionID, Kind: model.KindVideo})
	audio := workflow.ExecuteActivity(mediaCtx, activities.MergeMediaName,
		activities.MergeRequest{SessionID: req.SessionID, Kind: model.KindAudio})

	if err := video.Get(ctx, &result.VideoPath); err != nil {
		if isTerminal(err) {
			return result, err
		}
		logger.Warn("Video merge failed", "sessionId", req.SessionID, "error", err)
		result.Warnings = append(result.Warnings, err.Error())
	}
	if err := audio.Get(ctx, &result.AudioPath); err != nil {
		if isTerminal(err) {
			return result, err
		}
		logger.Warn("Audio merge failed", "sessionId", req.SessionID, "error", err)
		result.Warnings = append(result.Warnings, err.Error())
	}

	if err := workflow.ExecuteActivity(stepCtx, activities.FinalizeTranscriptName, req.SessionID).Get(ctx, &result.STTPath); err != nil {
		logger.Error("Transcript finalization failed", "sessionId", req.SessionID, "error", err)
		return result, err
	}

	if result.AudioPath != "" {
		if err := workflow.ExecuteActivity(mediaCtx, activities.TranscribeArtifactName, req.SessionID).Get(ctx, &result.FinalTranscript); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		}
	}

	if err := workflow.ExecuteActivity(stepCtx, activities.EvaluateSessionName, req.SessionID).Get(ctx, &result.EvaluationID); err != nil {
		logger.Error("Evaluation failed", "sessionId", req.SessionID, "error", err)
		return result, err
	}

	result.ProcessingTime = workflow.Now(ctx).Sub(startTime)
	logger.Info("Session closeout completed",
		"sessionId", req.SessionID,
		"evaluationId", result.EvaluationID,
		"duration", result.ProcessingTime)
	return result, nil
}

// isTerminal reports errors for which continuing the workflow is pointless
func isTerminal(err error) bool {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Type() == activities.ErrTypeNotFound
}
