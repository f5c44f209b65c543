package model

import "time"

// Score categories used in detailed scores and criteria rows
const (
	CategoryVerbal     = "verbal"
	CategoryNonverbal  = "nonverbal"
	CategoryCompetency = "competency"
)

// VerbalCriteria is the fixed rubric scored per answer
var VerbalCriteria = []string{"clarity", "relevance", "depth", "conciseness", "confidence"}

// NonverbalCriteria is the fixed set of behavioral criteria
var NonverbalCriteria = []string{"volume", "posture", "attire", "facial_expression", "eye_contact", "gestures"}

const (
	MinCriterionScore = 1.0
	MaxCriterionScore = 5.0
	// NeutralScore substitutes for any criterion a provider failed to score
	NeutralScore = 3.0
)

// Evaluation is the single scoring result attached to a session
type Evaluation struct {
	ID             int64                         `json:"id"`
	SessionID      int64                         `json:"session_id"`
	TotalScore     float64                       `json:"total_score"`
	VerbalScore    float64                       `json:"verbal_score"`
	NonverbalScore float64                       `json:"nonverbal_score"`
	DetailedScores map[string]map[string]float64 `json:"detailed_scores"`
	Feedback       string                        `json:"feedback"`
	ReportPath     string                        `json:"report_path,omitempty"`
	CreatedAt      time.Time                     `json:"created_at"`
	UpdatedAt      time.Time                     `json:"updated_at"`
}

// CriteriaScore is one (category, criterion) row of an evaluation
type CriteriaScore struct {
	ID           int64     `json:"id"`
	EvaluationID int64     `json:"evaluation_id"`
	Category     string    `json:"category"`
	Criterion    string    `json:"criterion"`
	Score        float64   `json:"score"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ClampScore keeps a criterion score within [1,5]
func ClampScore(v float64) float64 {
	if v < MinCriterionScore {
		return MinCriterionScore
	}
	if v > MaxCriterionScore {
		return MaxCriterionScore
	}
	return v
}
