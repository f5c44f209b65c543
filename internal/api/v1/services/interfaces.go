package services

import (
	"context"

	"interview-capture/internal/api/v1/dto"
	"interview-capture/internal/app/model"
)

// SessionService defines the interview session operations
type SessionService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	GetSession(ctx context.Context, id int64) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, query dto.ListSessionsQuery) (*dto.SessionListResponse, error)
	StartSession(ctx context.Context, id int64) (*dto.SessionResponse, error)
	EndSession(ctx context.Context, id int64) (*dto.EndSessionResponse, error)
	CancelSession(ctx context.Context, id int64) (*dto.SessionResponse, error)
	AddAnswer(ctx context.Context, sessionID int64, req *dto.AnswerRequest) (*model.Answer, error)
	ListAnswers(ctx context.Context, sessionID int64) ([]model.Answer, error)
	GenerateQuestions(ctx context.Context, req *dto.GenerateQuestionsRequest) (*dto.GenerateQuestionsResponse, error)
}

// MediaService defines chunk upload and merge operations
type MediaService interface {
	UploadChunk(ctx context.Context, form *dto.UploadChunkForm, payload []byte) (*dto.ChunkResponse, error)
	UploadBase64(ctx context.Context, req *dto.Base64ChunkRequest) (*dto.ChunkResponse, error)
	ScheduleMerge(ctx context.Context, sessionID int64, kind model.ChunkKind) (*dto.TaskResponse, error)
	GetTask(ctx context.Context, id string) (*dto.TaskResponse, error)
}

// TranscriptService defines transcript read and finalize operations
type TranscriptService interface {
	GetTranscript(ctx context.Context, sessionID int64, questionIndex int) (*dto.TranscriptResponse, error)
	Finalize(ctx context.Context, sessionID int64) (*dto.FinalizeResponse, error)
}

// EvaluationService defines evaluation, report and export operations
type EvaluationService interface {
	Evaluate(ctx context.Context, sessionID int64) (*dto.EvaluationResponse, error)
	CreateEvaluation(ctx context.Context, req *dto.CreateEvaluationRequest) (*dto.EvaluationResponse, error)
	GetEvaluation(ctx context.Context, id int64) (*dto.EvaluationResponse, error)
	ListCriteria(ctx context.Context, id int64) (*dto.CriteriaResponse, error)
	// ReportFile returns the absolute path of the attached report
	ReportFile(ctx context.Context, id int64) (string, error)
	// Export writes the bulk workbook and returns its absolute path
	Export(ctx context.Context) (string, error)
}

// AdminService defines dashboard statistics
type AdminService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}
