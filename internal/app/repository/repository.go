package repository

import (
	"context"

	"interview-capture/internal/app/model"
)

// ListOptions filters and pages session listings
type ListOptions struct {
	Status model.SessionStatus
	Limit  int
	Offset int
}

// SessionStore persists interview sessions
type SessionStore interface {
	CreateSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, id int64) (*model.Session, error)
	ListSessions(ctx context.Context, opts ListOptions) ([]model.Session, error)
	CountSessions(ctx context.Context) (map[model.SessionStatus]int, error)
	// UpdateSession applies the non-nil fields of upd
	UpdateSession(ctx context.Context, id int64, upd model.SessionUpdate) (*model.Session, error)
	// TransitionSession applies upd and moves the session to upd.Status only if its
	// current status is one of from. Any other status yields ErrNotEligible.
	TransitionSession(ctx context.Context, id int64, from []model.SessionStatus, upd model.SessionUpdate) (*model.Session, error)
	DeleteSession(ctx context.Context, id int64) error
}

// AnswerStore persists answers, one per (session, question)
type AnswerStore interface {
	UpsertAnswer(ctx context.Context, a *model.Answer) error
	ListAnswers(ctx context.Context, sessionID int64) ([]model.Answer, error)
}

// EvaluationStore persists evaluations and their criteria rows
type EvaluationStore interface {
	// CreateEvaluation inserts the evaluation and its criteria rows and moves the session
	// from completed to evaluated, all in one transaction. An existing evaluation for the
	// session yields ErrConflict; a session that is not completed yields ErrNotEligible.
	CreateEvaluation(ctx context.Context, e *model.Evaluation, scores []model.CriteriaScore) error
	GetEvaluation(ctx context.Context, id int64) (*model.Evaluation, error)
	GetEvaluationBySession(ctx context.Context, sessionID int64) (*model.Evaluation, error)
	ListEvaluations(ctx context.Context) ([]model.Evaluation, error)
	ListCriteriaScores(ctx context.Context, evaluationID int64) ([]model.CriteriaScore, error)
	// AttachReport is the only update an evaluation accepts after creation
	AttachReport(ctx context.Context, evaluationID int64, reportPath string) error
}

// Store is the complete record store
type Store interface {
	SessionStore
	AnswerStore
	EvaluationStore
	Close() error
}
