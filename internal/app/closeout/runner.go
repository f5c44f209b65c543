// Package closeout runs the post-interview pipeline: merge both media kinds,
// finalize the transcript and evaluate.
package closeout

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/merge"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/tasks"
)

// Merger produces a merged artifact for one media kind
type Merger interface {
	Merge(ctx context.Context, sessionID int64, kind model.ChunkKind) (string, error)
}

// Transcripts finalizes per-question transcripts and runs the whole-artifact pass
type Transcripts interface {
	Finalize(ctx context.Context, sessionID int64, questionCount int) (string, error)
	TranscribeArtifact(ctx context.Context, sessionID int64) (string, bool, error)
}

// Evaluator scores a completed session
type Evaluator interface {
	Evaluate(ctx context.Context, sessionID int64) (*model.Evaluation, error)
}

// Summary reports what a closeout produced
type Summary struct {
	SessionID       int64    `json:"session_id"`
	VideoPath       string   `json:"video_path,omitempty"`
	AudioPath       string   `json:"audio_path,omitempty"`
	STTPath         string   `json:"stt_path,omitempty"`
	FinalTranscript string   `json:"final_transcript,omitempty"`
	EvaluationID    int64    `json:"evaluation_id,omitempty"`
	Warnings        []string `json:"warnings,omitempty"`
}

// Runner executes closeout steps in-process
type Runner struct {
	merger        Merger
	transcripts   Transcripts
	evaluator     Evaluator
	tracker       *tasks.Tracker
	questionCount int
	logger        *zap.Logger
}

// NewRunner creates a Runner
func NewRunner(merger Merger, transcripts Transcripts, evaluator Evaluator, tracker *tasks.Tracker, questionCount int, logger *zap.Logger) *Runner {
	return &Runner{
		merger:        merger,
		transcripts:   transcripts,
		evaluator:     evaluator,
		tracker:       tracker,
		questionCount: questionCount,
		logger:        logging.Component(logger, "closeout"),
	}
}

// MergeMedia merges one kind. A session without chunks of that kind is not an
// error here: the artifact is simply absent.
func (r *Runner) MergeMedia(ctx context.Context, sessionID int64, kind model.ChunkKind) (string, error) {
	path, err := r.merger.Merge(ctx, sessionID, kind)
	if apperrors.Is(err, merge.ErrNoChunks) {
		return "", nil
	}
	return path, err
}

// FinalizeTranscript writes the per-question transcript
func (r *Runner) FinalizeTranscript(ctx context.Context, sessionID int64) (string, error) {
	return r.transcripts.Finalize(ctx, sessionID, r.questionCount)
}

// TranscribeArtifact runs the final transcription pass over the merged audio
func (r *Runner) TranscribeArtifact(ctx context.Context, sessionID int64) (string, error) {
	path, _, err := r.transcripts.TranscribeArtifact(ctx, sessionID)
	return path, err
}

// Evaluate scores the session and returns the evaluation id
func (r *Runner) Evaluate(ctx context.Context, sessionID int64) (int64, error) {
	e, err := r.evaluator.Evaluate(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return e.ID, nil
}

// Run performs every step in order. Merge failures are recorded as warnings so
// the transcript and evaluation still happen; transcript and evaluation
// failures stop the run.
func (r *Runner) Run(ctx context.Context, sessionID int64) (*Summary, error) {
	summary := &Summary{SessionID: sessionID}

	for _, kind := range []model.ChunkKind{model.KindVideo, model.KindAudio} {
		path, err := r.MergeMedia(ctx, sessionID, kind)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				return summary, err
			}
			r.logger.Warn("merge failed during closeout",
				zap.Int64("session_id", sessionID), zap.String("kind", string(kind)), zap.Error(err))
			summary.Warnings = append(summary.Warnings, err.Error())
			continue
		}
		if kind == model.KindVideo {
			summary.VideoPath = path
		} else {
			summary.AudioPath = path
		}
	}

	stt, err := r.FinalizeTranscript(ctx, sessionID)
	if err != nil {
		return summary, err
	}
	summary.STTPath = stt

	if summary.AudioPath != "" {
		final, err := r.TranscribeArtifact(ctx, sessionID)
		if err != nil {
			summary.Warnings = append(summary.Warnings, err.Error())
		}
		summary.FinalTranscript = final
	}

	id, err := r.Evaluate(ctx, sessionID)
	if err != nil {
		return summary, err
	}
	summary.EvaluationID = id

	r.logger.Info("closeout finished",
		zap.Int64("session_id", sessionID),
		zap.Int64("evaluation_id", id),
		zap.Strings("warnings", summary.Warnings))
	return summary, nil
}

// Schedule runs Run on the background tracker
func (r *Runner) Schedule(sessionID int64) (tasks.Task, error) {
	if sessionID <= 0 {
		return tasks.Task{}, apperrors.RequiredField("session_id")
	}
	return r.tracker.Submit("closeout", fmt.Sprint(sessionID), func(ctx context.Context) (string, error) {
		summary, err := r.Run(ctx, sessionID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("evaluation %d", summary.EvaluationID), nil
	}), nil
}

// ScheduleCloseout is Schedule reporting only the task id
func (r *Runner) ScheduleCloseout(_ context.Context, sessionID int64) (string, error) {
	task, err := r.Schedule(sessionID)
	if err != nil {
		return "", err
	}
	return task.ID, nil
}
