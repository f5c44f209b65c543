package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
)

var _ repository.Store = (*repository.CommonDB)(nil)

func setupTestDB(t *testing.T) *repository.CommonDB {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createSession(t *testing.T, store *repository.CommonDB, status model.SessionStatus) *model.Session {
	t.Helper()
	s := &model.Session{
		CandidateName: "Kim Min Su",
		InterviewerID: 3,
		Status:        status,
		Questions: []model.Question{
			{Index: 0, Content: "자기소개를 해주세요", Competency: "Personal"},
			{Index: 1, Content: "팀 프로젝트 경험", Competency: "People"},
		},
	}
	require.NoError(t, store.CreateSession(context.Background(), s))
	return s
}

func TestSessionCRUD(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)

	s := createSession(t, store, "")
	assert.NotZero(t, s.ID)
	assert.Equal(t, model.StatusScheduled, s.Status)

	got, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kim Min Su", got.CandidateName)
	assert.Equal(t, s.Questions, got.Questions)
	assert.Nil(t, got.StartTime)

	path := "videos/interview_1.mp4"
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	updated, err := store.UpdateSession(ctx, s.ID, model.SessionUpdate{VideoPath: &path, StartTime: &start})
	require.NoError(t, err)
	assert.Equal(t, path, updated.VideoPath)
	require.NotNil(t, updated.StartTime)
	assert.True(t, start.Equal(*updated.StartTime))

	_, err = store.GetSession(ctx, 9999)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	_, err = store.UpdateSession(ctx, 9999, model.SessionUpdate{VideoPath: &path})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestListSessions(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)

	createSession(t, store, model.StatusScheduled)
	createSession(t, store, model.StatusCompleted)
	createSession(t, store, model.StatusCompleted)

	all, err := store.ListSessions(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	completed, err := store.ListSessions(ctx, repository.ListOptions{Status: model.StatusCompleted})
	require.NoError(t, err)
	assert.Len(t, completed, 2)

	page, err := store.ListSessions(ctx, repository.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	counts, err := store.CountSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.SessionStatus]int{
		model.StatusScheduled: 1,
		model.StatusCompleted: 2,
	}, counts)
}

func TestTransitionSession(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	s := createSession(t, store, model.StatusScheduled)

	inProgress := model.StatusInProgress
	got, err := store.TransitionSession(ctx, s.ID, []model.SessionStatus{model.StatusScheduled}, model.SessionUpdate{Status: &inProgress})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, got.Status)

	// a second start is rejected
	_, err = store.TransitionSession(ctx, s.ID, []model.SessionStatus{model.StatusScheduled}, model.SessionUpdate{Status: &inProgress})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotEligible))

	_, err = store.TransitionSession(ctx, 12345, []model.SessionStatus{model.StatusScheduled}, model.SessionUpdate{Status: &inProgress})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpsertAnswer(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	s := createSession(t, store, model.StatusInProgress)

	a := &model.Answer{SessionID: s.ID, QuestionIndex: 0, Content: "first"}
	require.NoError(t, store.UpsertAnswer(ctx, a))
	firstID := a.ID

	b := &model.Answer{SessionID: s.ID, QuestionIndex: 0, Content: "revised"}
	require.NoError(t, store.UpsertAnswer(ctx, b))
	assert.Equal(t, firstID, b.ID)

	require.NoError(t, store.UpsertAnswer(ctx, &model.Answer{SessionID: s.ID, QuestionIndex: 1, Content: "second"}))

	answers, err := store.ListAnswers(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, answers, 2)
	assert.Equal(t, "revised", answers[0].Content)
	assert.Equal(t, 1, answers[1].QuestionIndex)
}

func sampleEvaluation(sessionID int64) (*model.Evaluation, []model.CriteriaScore) {
	e := &model.Evaluation{
		SessionID:      sessionID,
		TotalScore:     84,
		VerbalScore:    80,
		NonverbalScore: 90,
		DetailedScores: map[string]map[string]float64{"verbal": {"clarity": 4}},
		Feedback:       "good",
	}
	scores := []model.CriteriaScore{
		{Category: model.CategoryVerbal, Criterion: "clarity", Score: 4},
		{Category: model.CategoryNonverbal, Criterion: "posture", Score: 4.5},
	}
	return e, scores
}

func TestCreateEvaluation(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	s := createSession(t, store, model.StatusCompleted)

	e, scores := sampleEvaluation(s.ID)
	require.NoError(t, store.CreateEvaluation(ctx, e, scores))
	assert.NotZero(t, e.ID)

	session, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusEvaluated, session.Status)

	got, err := store.GetEvaluationBySession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, 4.0, got.DetailedScores["verbal"]["clarity"])

	rows, err := store.ListCriteriaScores(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// second create is a conflict and adds no rows
	again, againScores := sampleEvaluation(s.ID)
	err = store.CreateEvaluation(ctx, again, againScores)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	all, err := store.ListEvaluations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, store.AttachReport(ctx, e.ID, "reports/evaluation_1_Kim_Min_Su.xlsx"))
	got, err = store.GetEvaluation(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "reports/evaluation_1_Kim_Min_Su.xlsx", got.ReportPath)
}

func TestCreateEvaluationRequiresCompleted(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)

	for _, status := range []model.SessionStatus{model.StatusScheduled, model.StatusInProgress, model.StatusCancelled} {
		t.Run(string(status), func(t *testing.T) {
			s := createSession(t, store, status)
			e, scores := sampleEvaluation(s.ID)
			err := store.CreateEvaluation(ctx, e, scores)
			assert.True(t, apperrors.Is(err, apperrors.ErrNotEligible))

			_, err = store.GetEvaluationBySession(ctx, s.ID)
			assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
		})
	}
}

func TestCreateEvaluationRejectsOutOfRangeScore(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	s := createSession(t, store, model.StatusCompleted)

	e, _ := sampleEvaluation(s.ID)
	err := store.CreateEvaluation(ctx, e, []model.CriteriaScore{{Category: "verbal", Criterion: "clarity", Score: 7}})
	assert.True(t, apperrors.IsValidationError(err))

	// the transaction rolled back, so the session is still completed
	session, err := store.GetSession(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, session.Status)
}

func TestCreateEvaluationConcurrent(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	s := createSession(t, store, model.StatusCompleted)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, scores := sampleEvaluation(s.ID)
			errs[i] = store.CreateEvaluation(ctx, e, scores)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)

	all, err := store.ListEvaluations(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := setupTestDB(t)
	s := createSession(t, store, model.StatusCompleted)
	require.NoError(t, store.UpsertAnswer(ctx, &model.Answer{SessionID: s.ID, QuestionIndex: 0, Content: "x"}))
	e, scores := sampleEvaluation(s.ID)
	require.NoError(t, store.CreateEvaluation(ctx, e, scores))

	require.NoError(t, store.DeleteSession(ctx, s.ID))
	_, err := store.GetSession(ctx, s.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	assert.True(t, apperrors.Is(store.DeleteSession(ctx, s.ID), apperrors.ErrNotFound))
}
