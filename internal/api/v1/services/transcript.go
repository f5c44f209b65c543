package services

import (
	"context"

	"interview-capture/internal/api/v1/dto"
	"interview-capture/internal/app/transcript"
)

// TranscriptServiceImpl implements TranscriptService
type TranscriptServiceImpl struct {
	assembler     *transcript.Assembler
	questionCount int
}

// NewTranscriptService creates a transcript service finalizing questionCount questions
// plus any further questions stored on the session
func NewTranscriptService(assembler *transcript.Assembler, questionCount int) TranscriptService {
	return &TranscriptServiceImpl{assembler: assembler, questionCount: questionCount}
}

func (s *TranscriptServiceImpl) GetTranscript(ctx context.Context, sessionID int64, questionIndex int) (*dto.TranscriptResponse, error) {
	fragments, err := s.assembler.Assemble(ctx, sessionID, questionIndex)
	if err != nil {
		return nil, err
	}
	return &dto.TranscriptResponse{
		SessionID:     sessionID,
		QuestionIndex: questionIndex,
		Fragments:     dto.NewFragmentResponses(fragments),
		Text:          transcript.Text(fragments),
	}, nil
}

func (s *TranscriptServiceImpl) Finalize(ctx context.Context, sessionID int64) (*dto.FinalizeResponse, error) {
	path, err := s.assembler.Finalize(ctx, sessionID, s.questionCount)
	if err != nil {
		return nil, err
	}
	return &dto.FinalizeResponse{STTPath: path}, nil
}
