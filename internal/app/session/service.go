// Package session manages the interview lifecycle from scheduling to completion.
package session

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"interview-capture/internal/app/api/openai/chat"
	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
)

// Store is the slice of the record store sessions need
type Store interface {
	repository.SessionStore
	repository.AnswerStore
}

// TranscriptFinalizer writes the per-question transcript of a session
type TranscriptFinalizer interface {
	Finalize(ctx context.Context, sessionID int64, questionCount int) (string, error)
}

// CloseoutScheduler starts the background closeout of a completed session and
// returns a handle (task or workflow id)
type CloseoutScheduler interface {
	ScheduleCloseout(ctx context.Context, sessionID int64) (string, error)
}

// QuestionGenerator drafts questions from a resume
type QuestionGenerator interface {
	Generate(ctx context.Context, resume string, count int) ([]model.Question, error)
}

// Options carries the optional collaborators of a Service
type Options struct {
	Transcripts   TranscriptFinalizer
	Closeout      CloseoutScheduler
	Questions     QuestionGenerator
	QuestionCount int
	Logger        *zap.Logger
	Now           func() time.Time
}

// Service implements session lifecycle operations
type Service struct {
	store         Store
	transcripts   TranscriptFinalizer
	closeout      CloseoutScheduler
	questions     QuestionGenerator
	questionCount int
	logger        *zap.Logger
	now           func() time.Time
}

// NewService creates a Service
func NewService(store Store, opts Options) *Service {
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = 5
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:         store,
		transcripts:   opts.Transcripts,
		closeout:      opts.Closeout,
		questions:     opts.Questions,
		questionCount: opts.QuestionCount,
		logger:        logging.Component(opts.Logger, "session"),
		now:           opts.Now,
	}
}

// CreateRequest schedules a new interview
type CreateRequest struct {
	CandidateName   string
	CandidateResume string
	InterviewerID   int64
	Questions       []model.Question
}

// Create stores a scheduled session. Without questions, questions are drafted
// from the resume, falling back to the default list.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*model.Session, error) {
	if strings.TrimSpace(req.CandidateName) == "" {
		return nil, apperrors.RequiredField("candidate_name")
	}
	if req.InterviewerID < 0 {
		return nil, apperrors.InvalidField("interviewer_id", "must not be negative")
	}

	questions := append([]model.Question(nil), req.Questions...)
	if len(questions) == 0 {
		questions = s.GenerateQuestions(ctx, req.CandidateResume, s.questionCount)
	}
	for i, q := range questions {
		if q.Index < 0 {
			return nil, apperrors.InvalidField("questions", "index must not be negative")
		}
		if strings.TrimSpace(q.Content) == "" {
			return nil, apperrors.InvalidField("questions", "content is required")
		}
		questions[i].Content = strings.TrimSpace(q.Content)
	}

	session := &model.Session{
		CandidateName:   strings.TrimSpace(req.CandidateName),
		CandidateResume: req.CandidateResume,
		InterviewerID:   req.InterviewerID,
		Status:          model.StatusScheduled,
		Questions:       questions,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.logger.Info("session scheduled", zap.Int64("session_id", session.ID), zap.Int("questions", len(questions)))
	return session, nil
}

// GenerateQuestions drafts count questions from resume. It never fails: any
// generator problem yields the default questions.
func (s *Service) GenerateQuestions(ctx context.Context, resume string, count int) []model.Question {
	if count <= 0 {
		count = s.questionCount
	}
	if s.questions == nil || strings.TrimSpace(resume) == "" {
		return chat.DefaultQuestions(count)
	}
	questions, err := s.questions.Generate(ctx, resume, count)
	if err != nil {
		s.logger.Warn("question generation failed, using defaults", zap.Error(apperrors.Provider(err, "generate questions")))
		return chat.DefaultQuestions(count)
	}
	return questions
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Session, error) {
	return s.store.GetSession(ctx, id)
}

func (s *Service) List(ctx context.Context, opts repository.ListOptions) ([]model.Session, error) {
	if opts.Status != "" && !opts.Status.Valid() {
		return nil, apperrors.InvalidField("status", string(opts.Status))
	}
	return s.store.ListSessions(ctx, opts)
}

// Start moves a scheduled session to in_progress
func (s *Service) Start(ctx context.Context, id int64) (*model.Session, error) {
	status := model.StatusInProgress
	now := s.now()
	session, err := s.store.TransitionSession(ctx, id,
		[]model.SessionStatus{model.StatusScheduled},
		model.SessionUpdate{Status: &status, StartTime: &now})
	if err != nil {
		return nil, err
	}
	s.logger.Info("session started", zap.Int64("session_id", id))
	return session, nil
}

// EndResult is the outcome of ending a session
type EndResult struct {
	Session *model.Session `json:"session"`
	STTPath string         `json:"stt_path,omitempty"`
	// CloseoutID identifies the background closeout, if one was started
	CloseoutID string `json:"closeout_id,omitempty"`
}

// End completes an in-progress session, writes its transcript and starts the
// background closeout. Transcript and closeout problems are logged; the
// session stays completed.
func (s *Service) End(ctx context.Context, id int64) (*EndResult, error) {
	status := model.StatusCompleted
	now := s.now()
	session, err := s.store.TransitionSession(ctx, id,
		[]model.SessionStatus{model.StatusInProgress},
		model.SessionUpdate{Status: &status, EndTime: &now})
	if err != nil {
		return nil, err
	}
	result := &EndResult{Session: session}

	if s.transcripts != nil {
		path, err := s.transcripts.Finalize(ctx, id, s.questionCount)
		if err != nil {
			s.logger.Error("transcript finalization failed", zap.Int64("session_id", id), zap.Error(err))
		} else {
			result.STTPath = path
			session.STTPath = path
		}
	}

	if s.closeout != nil {
		ref, err := s.closeout.ScheduleCloseout(ctx, id)
		if err != nil {
			s.logger.Error("closeout not scheduled", zap.Int64("session_id", id), zap.Error(err))
		} else {
			result.CloseoutID = ref
		}
	}

	s.logger.Info("session ended", zap.Int64("session_id", id), zap.String("closeout", result.CloseoutID))
	return result, nil
}

// Cancel abandons a session that has not completed
func (s *Service) Cancel(ctx context.Context, id int64) (*model.Session, error) {
	status := model.StatusCancelled
	return s.store.TransitionSession(ctx, id,
		[]model.SessionStatus{model.StatusScheduled, model.StatusInProgress},
		model.SessionUpdate{Status: &status})
}

// AnswerRequest records one answer by hand
type AnswerRequest struct {
	QuestionIndex int
	Content       string
	StartTime     *time.Time
	EndTime       *time.Time
}

// AddAnswer upserts the answer to one question of an existing session
func (s *Service) AddAnswer(ctx context.Context, sessionID int64, req AnswerRequest) (*model.Answer, error) {
	if req.QuestionIndex < 0 {
		return nil, apperrors.InvalidField("question_index", "must not be negative")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.RequiredField("content")
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == model.StatusEvaluated || session.Status == model.StatusCancelled {
		return nil, apperrors.NotEligible("session %d is %s", sessionID, session.Status)
	}

	answer := &model.Answer{
		SessionID:     sessionID,
		QuestionIndex: req.QuestionIndex,
		Content:       strings.TrimSpace(req.Content),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	}
	if err := s.store.UpsertAnswer(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

func (s *Service) ListAnswers(ctx context.Context, sessionID int64) ([]model.Answer, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListAnswers(ctx, sessionID)
}
