// Package ingest persists streamed chunks and records their transcript fragments.
package ingest

import (
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-capture/internal/app/chunkindex"
	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/metrics"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/storage/media"
)

// ChunkTranscriber is the low-latency transcription path
type ChunkTranscriber interface {
	TranscribeChunk(ctx context.Context, audio []byte, filename string) (string, bool)
}

// Request is one chunk upload
type Request struct {
	SessionID     int64
	QuestionIndex int
	ChunkIndex    int
	Kind          model.ChunkKind
	Payload       []byte
	// Timestamp orders fragments within a question, in unix seconds. Zero means arrival time.
	Timestamp float64
}

// Result describes a persisted chunk
type Result struct {
	Location    string `json:"location"`
	Transcript  string `json:"transcript,omitempty"`
	FragmentKey string `json:"fragment_key,omitempty"`
}

// Service implements chunk ingest
type Service struct {
	sessions    repository.SessionStore
	disk        *media.Disk
	index       *chunkindex.Index
	transcriber ChunkTranscriber
	logger      *zap.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
}

// NewService creates an ingest service. transcriber may be nil, in which case
// audio chunks are stored without a fragment.
func NewService(sessions repository.SessionStore, disk *media.Disk, index *chunkindex.Index, transcriber ChunkTranscriber, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		sessions:    sessions,
		disk:        disk,
		index:       index,
		transcriber: transcriber,
		logger:      logging.Component(logger, "ingest"),
		metrics:     m,
		now:         time.Now,
	}
}

func (r Request) validate() error {
	if r.SessionID <= 0 {
		return apperrors.InvalidField("session_id", "must be positive")
	}
	if r.QuestionIndex < 0 {
		return apperrors.InvalidField("question_index", "must be non-negative")
	}
	if r.ChunkIndex < 0 {
		return apperrors.InvalidField("chunk_index", "must be non-negative")
	}
	if _, err := model.ParseChunkKind(string(r.Kind)); err != nil {
		return apperrors.InvalidField("kind", err.Error())
	}
	if len(r.Payload) == 0 {
		return apperrors.RequiredField("payload")
	}
	return nil
}

// Ingest writes the chunk and, for audio and text, records the transcript fragment.
// A chunk index that was already written is overwritten.
func (s *Service) Ingest(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if err := s.admit(ctx, req.SessionID); err != nil {
		return nil, err
	}

	location, err := s.disk.WriteChunk(req.Kind, req.SessionID, req.QuestionIndex, req.ChunkIndex, req.Payload)
	if err != nil {
		return nil, apperrors.Storage(err, "write %s chunk %d of session %d", req.Kind, req.ChunkIndex, req.SessionID)
	}
	s.metrics.ChunkIngested(string(req.Kind))
	result := &Result{Location: location}

	var text string
	switch req.Kind {
	case model.KindText:
		text = strings.TrimSpace(string(req.Payload))
	case model.KindAudio:
		if s.transcriber != nil {
			text, _ = s.transcriber.TranscribeChunk(ctx, req.Payload, filepath.Base(location))
		}
	}
	if text == "" {
		if req.Kind == model.KindVideo {
			return result, nil
		}
		// the chunk on disk was replaced, so any fragment from an earlier upload is stale
		if err := s.index.Forget(ctx, req.SessionID, req.QuestionIndex, req.ChunkIndex); err != nil {
			return nil, apperrors.Storage(err, "drop fragment for session %d question %d chunk %d", req.SessionID, req.QuestionIndex, req.ChunkIndex)
		}
		return result, nil
	}

	ts := req.Timestamp
	if ts == 0 {
		ts = float64(s.now().UnixNano()) / 1e9
	}
	key, err := s.index.Record(ctx, model.Fragment{
		SessionID:     req.SessionID,
		QuestionIndex: req.QuestionIndex,
		ChunkIndex:    req.ChunkIndex,
		Timestamp:     ts,
		Text:          text,
	})
	if err != nil {
		return nil, apperrors.Storage(err, "record fragment for session %d question %d", req.SessionID, req.QuestionIndex)
	}
	s.metrics.FragmentWritten()

	result.Transcript = text
	result.FragmentKey = key
	s.logger.Debug("fragment recorded",
		zap.Int64("session_id", req.SessionID),
		zap.Int("question_index", req.QuestionIndex),
		zap.Int("chunk_index", req.ChunkIndex),
		zap.String("key", key))
	return result, nil
}

// admit checks that the session takes chunks and starts a scheduled session
func (s *Service) admit(ctx context.Context, sessionID int64) error {
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.Status.AcceptsChunks() {
		return apperrors.NotEligible("session %d is %s and no longer accepts chunks", sessionID, session.Status)
	}
	if session.Status != model.StatusScheduled {
		return nil
	}

	inProgress := model.StatusInProgress
	now := s.now().UTC()
	_, err = s.sessions.TransitionSession(ctx, sessionID, []model.SessionStatus{model.StatusScheduled},
		model.SessionUpdate{Status: &inProgress, StartTime: &now})
	if err != nil && !apperrors.Is(err, apperrors.ErrNotEligible) {
		return err
	}
	// losing the race to another first chunk is fine; re-check the state it left behind
	if err != nil {
		session, err = s.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return err
		}
		if !session.Status.AcceptsChunks() {
			return apperrors.NotEligible("session %d is %s and no longer accepts chunks", sessionID, session.Status)
		}
	}
	return nil
}

// DecodeBase64Payload decodes a base64 body, accepting an optional data URL prefix
func DecodeBase64Payload(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		idx := strings.Index(encoded, ",")
		if idx < 0 {
			return nil, apperrors.InvalidField("data", "malformed data URL")
		}
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, apperrors.InvalidField("data", fmt.Sprintf("not valid base64: %v", err))
	}
	if len(data) == 0 {
		return nil, apperrors.RequiredField("data")
	}
	return data, nil
}
