package dto

import "interview-capture/internal/app/model"

// FragmentResponse is one ordered transcript fragment
type FragmentResponse struct {
	Timestamp  float64 `json:"timestamp"`
	ChunkIndex int     `json:"chunk_index"`
	Text       string  `json:"text"`
}

// TranscriptResponse is the assembled transcript of one question
type TranscriptResponse struct {
	SessionID     int64              `json:"session_id"`
	QuestionIndex int                `json:"question_index"`
	Fragments     []FragmentResponse `json:"fragments"`
	Text          string             `json:"text"`
}

// NewFragmentResponses keeps the assembled order
func NewFragmentResponses(fragments []model.Fragment) []FragmentResponse {
	out := make([]FragmentResponse, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, FragmentResponse{Timestamp: f.Timestamp, ChunkIndex: f.ChunkIndex, Text: f.Text})
	}
	return out
}

// FinalizeResponse points at the written transcript file
type FinalizeResponse struct {
	STTPath string `json:"stt_path"`
}
