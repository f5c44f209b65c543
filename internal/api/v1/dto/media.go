package dto

import (
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/tasks"
)

// UploadChunkForm is the multipart form of POST /media/chunks; the payload is the "chunk" file
type UploadChunkForm struct {
	SessionID     int64   `form:"session_id" binding:"required,min=1"`
	QuestionIndex *int    `form:"question_index" binding:"required,min=0"`
	ChunkIndex    *int    `form:"chunk_index" binding:"required,min=0"`
	Kind          string  `form:"kind" binding:"required,oneof=audio video text"`
	Timestamp     float64 `form:"timestamp" binding:"omitempty,min=0"`
}

// Base64ChunkRequest uploads a video chunk encoded as base64 or a data URL
type Base64ChunkRequest struct {
	SessionID     int64   `json:"session_id" binding:"required,min=1"`
	QuestionIndex int     `json:"question_index" binding:"min=0"`
	ChunkIndex    int     `json:"chunk_index" binding:"min=0"`
	Data          string  `json:"data" binding:"required"`
	Timestamp     float64 `json:"timestamp" binding:"omitempty,min=0"`
}

// ChunkResponse is returned for a stored chunk
type ChunkResponse struct {
	Location   string `json:"location"`
	Transcript string `json:"transcript,omitempty"`
}

// TaskResponse is a background task snapshot
type TaskResponse struct {
	Task tasks.Task `json:"task"`
}

// MergeKind validates the :kind path parameter of the merge route
func MergeKind(raw string) (model.ChunkKind, bool) {
	kind, err := model.ParseChunkKind(raw)
	if err != nil || !kind.IsMedia() {
		return "", false
	}
	return kind, true
}
