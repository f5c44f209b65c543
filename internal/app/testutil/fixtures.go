package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/repository/sqlite"
)

// DefaultQuestions is a five-question interview across the 5P competencies
var DefaultQuestions = []model.Question{
	{Index: 0, Content: "자기소개를 해주세요.", Competency: "Personal"},
	{Index: 1, Content: "가장 도전적이었던 프로젝트는 무엇인가요?", Competency: "Passionate"},
	{Index: 2, Content: "동료의 성장을 도운 경험을 말해주세요.", Competency: "Professional"},
	{Index: 3, Content: "문제를 먼저 발견하고 해결한 경험이 있나요?", Competency: "Proactive"},
	{Index: 4, Content: "팀워크가 빛났던 순간은 언제였나요?", Competency: "People"},
}

// NewStore opens an in-memory sqlite record store closed at test cleanup
func NewStore(t *testing.T) *repository.CommonDB {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// CreateSession inserts a session in the given status with DefaultQuestions
func CreateSession(t *testing.T, store repository.SessionStore, name string, status model.SessionStatus) *model.Session {
	t.Helper()
	s := &model.Session{
		CandidateName: name,
		InterviewerID: 1,
		Status:        status,
		Questions:     append([]model.Question(nil), DefaultQuestions...),
	}
	require.NoError(t, store.CreateSession(context.Background(), s))
	return s
}
