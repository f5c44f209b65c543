package services

import (
	"context"

	"interview-capture/internal/api/v1/dto"
	"interview-capture/internal/app/ingest"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/tasks"
)

// Merger schedules background merges
type Merger interface {
	Schedule(sessionID int64, kind model.ChunkKind) (tasks.Task, error)
}

// TaskLookup reads task snapshots by id
type TaskLookup interface {
	Get(id string) (tasks.Task, error)
}

// MediaServiceImpl implements MediaService
type MediaServiceImpl struct {
	ingest *ingest.Service
	merger Merger
	tasks  TaskLookup
}

// NewMediaService creates a new media service
func NewMediaService(ingestSvc *ingest.Service, merger Merger, lookup TaskLookup) MediaService {
	return &MediaServiceImpl{ingest: ingestSvc, merger: merger, tasks: lookup}
}

func (s *MediaServiceImpl) UploadChunk(ctx context.Context, form *dto.UploadChunkForm, payload []byte) (*dto.ChunkResponse, error) {
	req := ingest.Request{
		SessionID: form.SessionID,
		Kind:      model.ChunkKind(form.Kind),
		Payload:   payload,
		Timestamp: form.Timestamp,
	}
	if form.QuestionIndex != nil {
		req.QuestionIndex = *form.QuestionIndex
	}
	if form.ChunkIndex != nil {
		req.ChunkIndex = *form.ChunkIndex
	}
	return s.store(ctx, req)
}

func (s *MediaServiceImpl) UploadBase64(ctx context.Context, req *dto.Base64ChunkRequest) (*dto.ChunkResponse, error) {
	payload, err := ingest.DecodeBase64Payload(req.Data)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, ingest.Request{
		SessionID:     req.SessionID,
		QuestionIndex: req.QuestionIndex,
		ChunkIndex:    req.ChunkIndex,
		Kind:          model.KindVideo,
		Payload:       payload,
		Timestamp:     req.Timestamp,
	})
}

func (s *MediaServiceImpl) store(ctx context.Context, req ingest.Request) (*dto.ChunkResponse, error) {
	res, err := s.ingest.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}
	return &dto.ChunkResponse{Location: res.Location, Transcript: res.Transcript}, nil
}

func (s *MediaServiceImpl) ScheduleMerge(_ context.Context, sessionID int64, kind model.ChunkKind) (*dto.TaskResponse, error) {
	task, err := s.merger.Schedule(sessionID, kind)
	if err != nil {
		return nil, err
	}
	return &dto.TaskResponse{Task: task}, nil
}

func (s *MediaServiceImpl) GetTask(_ context.Context, id string) (*dto.TaskResponse, error) {
	task, err := s.tasks.Get(id)
	if err != nil {
		return nil, err
	}
	return &dto.TaskResponse{Task: task}, nil
}
