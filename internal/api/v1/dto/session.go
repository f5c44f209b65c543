package dto

import (
	"time"

	"interview-capture/internal/api/errors"
	"interview-capture/internal/app/model"
)

// QuestionInput is one interview question supplied by the client
type QuestionInput struct {
	Content    string `json:"content" binding:"required"`
	Competency string `json:"competency,omitempty"`
}

// CreateSessionRequest creates an interview session. Without questions they are
// generated from the resume.
type CreateSessionRequest struct {
	CandidateName   string          `json:"candidate_name" binding:"required,max=200"`
	CandidateResume string          `json:"candidate_resume,omitempty"`
	InterviewerID   int64           `json:"interviewer_id" binding:"required,min=1"`
	Questions       []QuestionInput `json:"questions,omitempty" binding:"omitempty,max=20,dive"`
}

// ToQuestions numbers the questions in request order
func (r *CreateSessionRequest) ToQuestions() []model.Question {
	if len(r.Questions) == 0 {
		return nil
	}
	out := make([]model.Question, len(r.Questions))
	for i, q := range r.Questions {
		out[i] = model.Question{Index: i, Content: q.Content, Competency: q.Competency}
	}
	return out
}

// ListSessionsQuery filters GET /sessions
type ListSessionsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=scheduled in_progress completed evaluated cancelled"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// SessionResponse is a session as returned by the API
type SessionResponse struct {
	ID              int64            `json:"id"`
	CandidateName   string           `json:"candidate_name"`
	CandidateResume string           `json:"candidate_resume,omitempty"`
	InterviewerID   int64            `json:"interviewer_id"`
	Status          string           `json:"status"`
	StartTime       *time.Time       `json:"start_time,omitempty"`
	EndTime         *time.Time       `json:"end_time,omitempty"`
	VideoPath       string           `json:"video_path,omitempty"`
	AudioPath       string           `json:"audio_path,omitempty"`
	STTPath         string           `json:"stt_path,omitempty"`
	Questions       []model.Question `json:"questions"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// NewSessionResponse converts a session record
func NewSessionResponse(s *model.Session) *SessionResponse {
	questions := s.Questions
	if questions == nil {
		questions = []model.Question{}
	}
	return &SessionResponse{
		ID:              s.ID,
		CandidateName:   s.CandidateName,
		CandidateResume: s.CandidateResume,
		InterviewerID:   s.InterviewerID,
		Status:          string(s.Status),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		VideoPath:       s.VideoPath,
		AudioPath:       s.AudioPath,
		STTPath:         s.STTPath,
		Questions:       questions,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// SessionListResponse wraps a page of sessions
type SessionListResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Count    int                `json:"count"`
}

// EndSessionResponse reports what ending a session kicked off
type EndSessionResponse struct {
	Session    *SessionResponse `json:"session"`
	STTPath    string           `json:"stt_path,omitempty"`
	CloseoutID string           `json:"closeout_id,omitempty"`
}

// AnswerRequest records an answer typed or corrected by the interviewer
type AnswerRequest struct {
	QuestionIndex *int       `json:"question_index" binding:"required,min=0"`
	Content       string     `json:"content" binding:"required"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
}

// Validate checks the answer window
func (r *AnswerRequest) Validate() error {
	if r.StartTime != nil && r.EndTime != nil && r.EndTime.Before(*r.StartTime) {
		return errors.NewValidationError("Invalid answer", map[string]string{
			"end_time": "must not be before start_time",
		})
	}
	return nil
}

// GenerateQuestionsRequest asks for questions tailored to a resume
type GenerateQuestionsRequest struct {
	Resume string `json:"resume" binding:"required"`
	Count  int    `json:"count,omitempty" binding:"omitempty,min=1,max=20"`
}

// GenerateQuestionsResponse lists generated questions
type GenerateQuestionsResponse struct {
	Questions []model.Question `json:"questions"`
}
