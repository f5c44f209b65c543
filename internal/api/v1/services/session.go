package services

import (
	"context"

	"github.com/samber/lo"

	"interview-capture/internal/api/v1/dto"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/session"
)

// SessionServiceImpl implements SessionService on the session lifecycle
type SessionServiceImpl struct {
	sessions *session.Service
}

// NewSessionService creates a new session service
func NewSessionService(sessions *session.Service) SessionService {
	return &SessionServiceImpl{sessions: sessions}
}

func (s *SessionServiceImpl) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	created, err := s.sessions.Create(ctx, session.CreateRequest{
		CandidateName:   req.CandidateName,
		CandidateResume: req.CandidateResume,
		InterviewerID:   req.InterviewerID,
		Questions:       req.ToQuestions(),
	})
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(created), nil
}

func (s *SessionServiceImpl) GetSession(ctx context.Context, id int64) (*dto.SessionResponse, error) {
	found, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(found), nil
}

func (s *SessionServiceImpl) ListSessions(ctx context.Context, query dto.ListSessionsQuery) (*dto.SessionListResponse, error) {
	list, err := s.sessions.List(ctx, repository.ListOptions{
		Status: model.SessionStatus(query.Status),
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := lo.Map(list, func(item model.Session, _ int) *dto.SessionResponse {
		return dto.NewSessionResponse(&item)
	})
	return &dto.SessionListResponse{Sessions: out, Count: len(out)}, nil
}

func (s *SessionServiceImpl) StartSession(ctx context.Context, id int64) (*dto.SessionResponse, error) {
	started, err := s.sessions.Start(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(started), nil
}

func (s *SessionServiceImpl) EndSession(ctx context.Context, id int64) (*dto.EndSessionResponse, error) {
	res, err := s.sessions.End(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.EndSessionResponse{
		Session:    dto.NewSessionResponse(res.Session),
		STTPath:    res.STTPath,
		CloseoutID: res.CloseoutID,
	}, nil
}

func (s *SessionServiceImpl) CancelSession(ctx context.Context, id int64) (*dto.SessionResponse, error) {
	cancelled, err := s.sessions.Cancel(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSessionResponse(cancelled), nil
}

func (s *SessionServiceImpl) AddAnswer(ctx context.Context, sessionID int64, req *dto.AnswerRequest) (*model.Answer, error) {
	return s.sessions.AddAnswer(ctx, sessionID, session.AnswerRequest{
		QuestionIndex: lo.FromPtr(req.QuestionIndex),
		Content:       req.Content,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
	})
}

func (s *SessionServiceImpl) ListAnswers(ctx context.Context, sessionID int64) ([]model.Answer, error) {
	return s.sessions.ListAnswers(ctx, sessionID)
}

func (s *SessionServiceImpl) GenerateQuestions(ctx context.Context, req *dto.GenerateQuestionsRequest) (*dto.GenerateQuestionsResponse, error) {
	return &dto.GenerateQuestionsResponse{
		Questions: s.sessions.GenerateQuestions(ctx, req.Resume, req.Count),
	}, nil
}
