// Package converter merges the recorded chunks of many sessions into artifacts in one batch.
package converter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/merge"
	"interview-capture/internal/app/model"
)

// Merger produces the artifact of one session and kind
type Merger interface {
	Merge(ctx context.Context, sessionID int64, kind model.ChunkKind) (string, error)
}

// Outcome is the result of one (session, kind) merge in a batch
type Outcome struct {
	SessionID int64
	Kind      model.ChunkKind
	Path      string
	// Skipped is set when the session had no chunks of the kind
	Skipped bool
	Err     error
}

// BatchMerger runs merges for many sessions with bounded parallelism
type BatchMerger struct {
	merger   Merger
	progress *Progress
	logger   *zap.Logger
}

func NewBatchMerger(merger Merger, config ProgressConfig, logger *zap.Logger) *BatchMerger {
	return &BatchMerger{
		merger:   merger,
		progress: NewProgress(config),
		logger:   logging.Component(logger, "converter"),
	}
}

// MergeAll merges every kind of every session, at most parallel at a time.
// Individual failures are reported in the outcomes; only cancellation stops the batch.
// Outcomes are ordered like the input: per session, then per kind.
func (b *BatchMerger) MergeAll(ctx context.Context, sessionIDs []int64, kinds []model.ChunkKind, parallel int) ([]Outcome, error) {
	if parallel <= 0 {
		parallel = 1
	}
	total := len(sessionIDs) * len(kinds)
	outcomes := make([]Outcome, total)
	if total == 0 {
		return outcomes, nil
	}

	bar := b.progress.Track(total, "merging")
	defer b.progress.Wait()
	defer bar.Finish()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	var mu sync.Mutex

	for i, id := range sessionIDs {
		for j, kind := range kinds {
			slot := i*len(kinds) + j
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				started := time.Now()
				out := b.mergeOne(gctx, id, kind)
				bar.Step(started)

				mu.Lock()
				outcomes[slot] = out
				mu.Unlock()
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (b *BatchMerger) mergeOne(ctx context.Context, sessionID int64, kind model.ChunkKind) Outcome {
	out := Outcome{SessionID: sessionID, Kind: kind}
	path, err := b.merger.Merge(ctx, sessionID, kind)
	switch {
	case err == nil:
		out.Path = path
		b.logger.Info("merged", zap.Int64("session_id", sessionID), zap.String("kind", string(kind)), zap.String("path", path))
	case apperrors.Is(err, merge.ErrNoChunks):
		out.Skipped = true
	default:
		out.Err = err
		b.logger.Warn("merge failed", zap.Int64("session_id", sessionID), zap.String("kind", string(kind)), zap.Error(err))
	}
	return out
}

// Summary counts merged, skipped and failed outcomes
func Summary(outcomes []Outcome) string {
	var merged, skipped, failed int
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
		case o.Skipped:
			skipped++
		case o.Path != "":
			merged++
		}
	}
	return fmt.Sprintf("%d merged, %d without chunks, %d failed", merged, skipped, failed)
}
