package model

import "time"

// SessionStatus is the lifecycle state of an interview session
type SessionStatus string

const (
	StatusScheduled  SessionStatus = "scheduled"
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusEvaluated  SessionStatus = "evaluated"
	StatusCancelled  SessionStatus = "cancelled"
)

// Valid reports whether s is a known status
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusEvaluated, StatusCancelled:
		return true
	}
	return false
}

// AcceptsChunks reports whether media may still be streamed into a session in this state
func (s SessionStatus) AcceptsChunks() bool {
	return s == StatusScheduled || s == StatusInProgress
}

// Question is one interview question as stored on the session
type Question struct {
	Index      int    `json:"index"`
	Content    string `json:"content"`
	Competency string `json:"competency,omitempty"`
}

// Session represents one interview and its artifacts
type Session struct {
	ID              int64         `json:"id"`
	CandidateName   string        `json:"candidate_name"`
	CandidateResume string        `json:"candidate_resume,omitempty"`
	InterviewerID   int64         `json:"interviewer_id"`
	Status          SessionStatus `json:"status"`
	StartTime       *time.Time    `json:"start_time,omitempty"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	VideoPath       string        `json:"video_path,omitempty"`
	AudioPath       string        `json:"audio_path,omitempty"`
	STTPath         string        `json:"stt_path,omitempty"`
	Questions       []Question    `json:"questions,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Question returns the question with the given index, if present
func (s *Session) Question(index int) (Question, bool) {
	for _, q := range s.Questions {
		if q.Index == index {
			return q, true
		}
	}
	return Question{}, false
}

// ArtifactPath returns the merged artifact path recorded for a media kind
func (s *Session) ArtifactPath(kind ChunkKind) string {
	switch kind {
	case KindVideo:
		return s.VideoPath
	case KindAudio:
		return s.AudioPath
	}
	return ""
}

// SessionUpdate carries the fields to change on a session. Nil fields are left as they are.
type SessionUpdate struct {
	Status    *SessionStatus
	StartTime *time.Time
	EndTime   *time.Time
	VideoPath *string
	AudioPath *string
	STTPath   *string
	Questions []Question
}

// Answer is a candidate's answer to one question
type Answer struct {
	ID            int64      `json:"id"`
	SessionID     int64      `json:"session_id"`
	QuestionIndex int        `json:"question_index"`
	Content       string     `json:"content"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	EndTime       *time.Time `json:"end_time,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
