package dto

import (
	"interview-capture/internal/app/model"
)

// CreateEvaluationRequest stores a manually scored evaluation
type CreateEvaluationRequest struct {
	SessionID      int64                         `json:"session_id" binding:"required,min=1"`
	TotalScore     float64                       `json:"total_score" binding:"min=0,max=100"`
	VerbalScore    float64                       `json:"verbal_score" binding:"min=0,max=100"`
	NonverbalScore float64                       `json:"nonverbal_score" binding:"min=0,max=100"`
	DetailedScores map[string]map[string]float64 `json:"detailed_scores,omitempty"`
	Feedback       string                        `json:"feedback,omitempty"`
}

// EvaluationResponse is an evaluation plus the download link of its report once attached
type EvaluationResponse struct {
	*model.Evaluation
	ReportURL string `json:"report_url,omitempty"`
}

// CriteriaResponse lists the criteria rows of one evaluation
type CriteriaResponse struct {
	EvaluationID int64                 `json:"evaluation_id"`
	Criteria     []model.CriteriaScore `json:"criteria"`
}

// DashboardResponse summarizes sessions and evaluations
type DashboardResponse struct {
	Sessions       map[string]int     `json:"sessions"`
	Evaluations    int                `json:"evaluations"`
	AverageScore   float64            `json:"average_score"`
	RecentSessions []*SessionResponse `json:"recent_sessions"`
}
