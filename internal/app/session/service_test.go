package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/testutil"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

type recordingFinalizer struct {
	calls []int64
	err   error
}

func (r *recordingFinalizer) Finalize(_ context.Context, sessionID int64, _ int) (string, error) {
	r.calls = append(r.calls, sessionID)
	return "stt/interview_1_stt.json", r.err
}

type recordingCloseout struct {
	calls []int64
	err   error
}

func (r *recordingCloseout) ScheduleCloseout(_ context.Context, sessionID int64) (string, error) {
	r.calls = append(r.calls, sessionID)
	if r.err != nil {
		return "", r.err
	}
	return "task-1", nil
}

type stubGenerator struct {
	questions []model.Question
	err       error
}

func (g stubGenerator) Generate(context.Context, string, int) ([]model.Question, error) {
	return g.questions, g.err
}

func newService(t *testing.T, opts Options) (*repository.CommonDB, *Service) {
	t.Helper()
	store := testutil.NewStore(t)
	opts.Now = func() time.Time { return fixedNow }
	return store, NewService(store, opts)
}

func TestCreate(t *testing.T) {
	_, svc := newService(t, Options{})
	ctx := context.Background()

	s, err := svc.Create(ctx, CreateRequest{CandidateName: " Kim ", InterviewerID: 3, Questions: testutil.DefaultQuestions})
	require.NoError(t, err)
	assert.NotZero(t, s.ID)
	assert.Equal(t, "Kim", s.CandidateName)
	assert.Equal(t, model.StatusScheduled, s.Status)
	assert.Len(t, s.Questions, len(testutil.DefaultQuestions))

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.DefaultQuestions, got.Questions)
}

func TestCreateValidation(t *testing.T) {
	_, svc := newService(t, Options{})
	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"missing name", CreateRequest{CandidateName: "  "}},
		{"negative interviewer", CreateRequest{CandidateName: "a", InterviewerID: -1}},
		{"empty question", CreateRequest{CandidateName: "a", Questions: []model.Question{{Index: 0}}}},
		{"negative index", CreateRequest{CandidateName: "a", Questions: []model.Question{{Index: -1, Content: "q"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.True(t, apperrors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestCreateGeneratesQuestions(t *testing.T) {
	generated := []model.Question{{Index: 0, Content: "생성된 질문", Competency: "People"}}

	tests := []struct {
		name      string
		generator QuestionGenerator
		resume    string
		want      int
		first     string
	}{
		{"generated", stubGenerator{questions: generated}, "이력서", 1, "생성된 질문"},
		{"generator failure", stubGenerator{err: errors.New("rate limited")}, "이력서", 3, "기본 면접 질문 1입니다. 자신의 경험에 대해 이야기해주세요."},
		{"no resume", stubGenerator{questions: generated}, "", 3, "기본 면접 질문 1입니다. 자신의 경험에 대해 이야기해주세요."},
		{"no generator", nil, "이력서", 3, "기본 면접 질문 1입니다. 자신의 경험에 대해 이야기해주세요."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svc := newService(t, Options{Questions: tt.generator, QuestionCount: 3})
			s, err := svc.Create(context.Background(), CreateRequest{CandidateName: "Lee", CandidateResume: tt.resume})
			require.NoError(t, err)
			require.Len(t, s.Questions, tt.want)
			assert.Equal(t, tt.first, s.Questions[0].Content)
		})
	}
}

func TestLifecycle(t *testing.T) {
	finalizer := &recordingFinalizer{}
	closeout := &recordingCloseout{}
	store, svc := newService(t, Options{Transcripts: finalizer, Closeout: closeout})
	ctx := context.Background()
	s := testutil.CreateSession(t, store, "Park", model.StatusScheduled)

	_, err := svc.End(ctx, s.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotEligible), "cannot end a session that never started")

	started, err := svc.Start(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, started.Status)
	require.NotNil(t, started.StartTime)
	assert.True(t, fixedNow.Equal(*started.StartTime))

	_, err = svc.Start(ctx, s.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotEligible))

	res, err := svc.End(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, res.Session.Status)
	require.NotNil(t, res.Session.EndTime)
	assert.Equal(t, "stt/interview_1_stt.json", res.STTPath)
	assert.Equal(t, "task-1", res.CloseoutID)
	assert.Equal(t, []int64{s.ID}, finalizer.calls)
	assert.Equal(t, []int64{s.ID}, closeout.calls)
}

func TestEndToleratesBackgroundFailures(t *testing.T) {
	finalizer := &recordingFinalizer{err: apperrors.Storage(errors.New("read-only"), "write transcript")}
	closeout := &recordingCloseout{err: errors.New("temporal unavailable")}
	store, svc := newService(t, Options{Transcripts: finalizer, Closeout: closeout})
	s := testutil.CreateSession(t, store, "Park", model.StatusInProgress)

	res, err := svc.End(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, res.Session.Status)
	assert.Empty(t, res.STTPath)
	assert.Empty(t, res.CloseoutID)
}

func TestCancel(t *testing.T) {
	store, svc := newService(t, Options{})
	ctx := context.Background()
	s := testutil.CreateSession(t, store, "Choi", model.StatusInProgress)

	cancelled, err := svc.Cancel(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	done := testutil.CreateSession(t, store, "Done", model.StatusCompleted)
	_, err = svc.Cancel(ctx, done.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotEligible))
}

func TestList(t *testing.T) {
	store, svc := newService(t, Options{})
	ctx := context.Background()
	testutil.CreateSession(t, store, "a", model.StatusScheduled)
	testutil.CreateSession(t, store, "b", model.StatusCompleted)
	testutil.CreateSession(t, store, "c", model.StatusCompleted)

	all, err := svc.List(ctx, repository.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	completed, err := svc.List(ctx, repository.ListOptions{Status: model.StatusCompleted})
	require.NoError(t, err)
	assert.Len(t, completed, 2)

	_, err = svc.List(ctx, repository.ListOptions{Status: "archived"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestAnswers(t *testing.T) {
	store, svc := newService(t, Options{})
	ctx := context.Background()
	s := testutil.CreateSession(t, store, "Han", model.StatusInProgress)

	_, err := svc.AddAnswer(ctx, s.ID, AnswerRequest{QuestionIndex: 1, Content: "첫 답변"})
	require.NoError(t, err)
	a, err := svc.AddAnswer(ctx, s.ID, AnswerRequest{QuestionIndex: 1, Content: "수정된 답변"})
	require.NoError(t, err)
	assert.Equal(t, "수정된 답변", a.Content)

	answers, err := svc.ListAnswers(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	assert.Equal(t, "수정된 답변", answers[0].Content)

	_, err = svc.AddAnswer(ctx, s.ID, AnswerRequest{QuestionIndex: -1, Content: "x"})
	assert.True(t, apperrors.IsValidationError(err))
	_, err = svc.AddAnswer(ctx, 404, AnswerRequest{Content: "x"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	_, err = svc.ListAnswers(ctx, 404)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	evaluated := testutil.CreateSession(t, store, "E", model.StatusEvaluated)
	_, err = svc.AddAnswer(ctx, evaluated.ID, AnswerRequest{Content: "late"})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotEligible))
}
