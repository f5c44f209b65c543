// Package merge concatenates a session's raw chunks into one artifact per media kind.
package merge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"interview-capture/internal/app/audio"
	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/metrics"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/storage/media"
	"interview-capture/internal/app/storage/objectstore"
	"interview-capture/internal/app/tasks"
)

const manifestName = "concat_list.txt"

// ErrNoChunks is the cause of a MergeError raised when a session has nothing to merge
var ErrNoChunks = errors.New("no chunks")

// Coordinator runs merges, one in flight per (session, kind)
type Coordinator struct {
	sessions repository.SessionStore
	disk     *media.Disk
	encoder  audio.Encoder
	tracker  *tasks.Tracker
	mirror   objectstore.Mirror
	group    singleflight.Group
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// Options carries the optional collaborators of a Coordinator
type Options struct {
	Mirror  objectstore.Mirror
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// NewCoordinator creates a merge coordinator
func NewCoordinator(sessions repository.SessionStore, disk *media.Disk, encoder audio.Encoder, tracker *tasks.Tracker, opts Options) *Coordinator {
	return &Coordinator{
		sessions: sessions,
		disk:     disk,
		encoder:  encoder,
		tracker:  tracker,
		mirror:   opts.Mirror,
		logger:   logging.Component(opts.Logger, "merge"),
		metrics:  opts.Metrics,
	}
}

// Merge concatenates the chunks present at call time and records the artifact path
// on the session. Concurrent calls for the same session and kind share one run.
// The shared run ignores caller cancellation and is bounded by the encoder timeout.
func (c *Coordinator) Merge(ctx context.Context, sessionID int64, kind model.ChunkKind) (string, error) {
	if !kind.IsMedia() {
		return "", apperrors.InvalidField("kind", fmt.Sprintf("%q cannot be merged", kind))
	}
	key := fmt.Sprintf("%d:%s", sessionID, kind)
	runCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		return c.merge(runCtx, sessionID, kind)
	})

	select {
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("joined in-flight merge", zap.String("key", key))
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Coordinator) merge(ctx context.Context, sessionID int64, kind model.ChunkKind) (string, error) {
	if _, err := c.sessions.GetSession(ctx, sessionID); err != nil {
		return "", err
	}

	chunks, err := c.disk.ListChunks(kind, sessionID)
	if err != nil {
		return "", apperrors.Storage(err, "list %s chunks of session %d", kind, sessionID)
	}
	if len(chunks) == 0 {
		return "", apperrors.Merge(ErrNoChunks, "no %s chunks for session %d", kind, sessionID)
	}

	paths := make([]string, len(chunks))
	for i, ch := range chunks {
		paths[i] = ch.Path
	}
	manifestPath := filepath.Join(c.disk.ChunkDir(kind, sessionID), manifestName)
	if err := media.WriteFile(manifestPath, audio.Manifest(paths)); err != nil {
		return "", apperrors.Storage(err, "write manifest")
	}

	rel := media.ArtifactRel(kind, sessionID)
	output := c.disk.Abs(rel)
	tmp := output + ".tmp"

	start := time.Now()
	err = c.encoder.Concat(ctx, kind, manifestPath, tmp)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		os.Remove(tmp)
		c.metrics.MergeObserved(string(kind), "error", elapsed)
		return "", apperrors.Merge(err, "merge %s for session %d", kind, sessionID)
	}
	if err := os.Rename(tmp, output); err != nil {
		os.Remove(tmp)
		c.metrics.MergeObserved(string(kind), "error", elapsed)
		return "", apperrors.Storage(err, "move merged %s into place", kind)
	}
	c.metrics.MergeObserved(string(kind), "ok", elapsed)

	upd := model.SessionUpdate{}
	if kind == model.KindVideo {
		upd.VideoPath = &rel
	} else {
		upd.AudioPath = &rel
	}
	if _, err := c.sessions.UpdateSession(ctx, sessionID, upd); err != nil {
		return "", err
	}

	c.logger.Info("merged chunks",
		zap.Int64("session_id", sessionID),
		zap.String("kind", string(kind)),
		zap.Int("chunks", len(chunks)),
		zap.String("artifact", rel),
		zap.Float64("seconds", elapsed))

	c.mirrorArtifact(ctx, output, rel)
	return rel, nil
}

func (c *Coordinator) mirrorArtifact(ctx context.Context, localPath, key string) {
	if c.mirror == nil {
		return
	}
	url, err := c.mirror.Upload(ctx, localPath, key)
	if err != nil {
		c.logger.Warn("artifact mirror failed", zap.String("artifact", key), zap.Error(err))
		return
	}
	c.logger.Debug("artifact mirrored", zap.String("url", url))
}

// Schedule runs Merge as a background task and returns the task for polling
func (c *Coordinator) Schedule(sessionID int64, kind model.ChunkKind) (tasks.Task, error) {
	if !kind.IsMedia() {
		return tasks.Task{}, apperrors.InvalidField("kind", fmt.Sprintf("%q cannot be merged", kind))
	}
	subject := fmt.Sprintf("%d:%s", sessionID, kind)
	return c.tracker.Submit("merge", subject, func(ctx context.Context) (string, error) {
		return c.Merge(ctx, sessionID, kind)
	}), nil
}
