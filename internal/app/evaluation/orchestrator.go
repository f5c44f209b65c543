// Package evaluation scores a completed interview once and persists the result.
package evaluation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"interview-capture/internal/app/api/openai/chat"
	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/evaluation/nonverbal"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/metrics"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/tasks"
)

const (
	verbalWeight    = 0.6
	nonverbalWeight = 0.4
	// criterion scores are on a 1-5 scale, reported totals on 0-100
	scaleFactor = 20

	// DefaultCompetency groups answers to questions without a competency tag
	DefaultCompetency = "general"

	verbalFailureFeedback = "언어적 측면 평가 중 오류가 발생했습니다. 기본 점수가 적용됩니다."
	noAnswersFeedback     = "평가할 답변이 없어 언어적 측면에 기본 점수가 적용됩니다."
)

// AnswerScorer rates one answer against the verbal rubric
type AnswerScorer interface {
	Score(ctx context.Context, req chat.ScoreRequest) (*chat.ScoreResult, error)
}

// ReportScheduler queues report generation for a stored evaluation
type ReportScheduler interface {
	Schedule(evaluationID int64) (tasks.Task, error)
}

// Store is the slice of the record store the orchestrator needs
type Store interface {
	repository.SessionStore
	repository.AnswerStore
	repository.EvaluationStore
}

// Options carries the optional collaborators of an Orchestrator
type Options struct {
	// Analyzer defaults to the deterministic placeholder
	Analyzer     nonverbal.Analyzer
	Reports      ReportScheduler
	ScoreTimeout time.Duration
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// Orchestrator runs the scoring pipeline, at most once per session
type Orchestrator struct {
	store    Store
	scorer   AnswerScorer
	analyzer nonverbal.Analyzer
	reports  ReportScheduler
	timeout  time.Duration
	locks    *keyedMutex
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(store Store, scorer AnswerScorer, opts Options) *Orchestrator {
	if opts.Analyzer == nil {
		opts.Analyzer = nonverbal.NewPlaceholder()
	}
	if opts.ScoreTimeout <= 0 {
		opts.ScoreTimeout = 30 * time.Second
	}
	return &Orchestrator{
		store:    store,
		scorer:   scorer,
		analyzer: opts.Analyzer,
		reports:  opts.Reports,
		timeout:  opts.ScoreTimeout,
		locks:    newKeyedMutex(),
		logger:   logging.Component(opts.Logger, "evaluation"),
		metrics:  opts.Metrics,
	}
}

// Evaluate returns the session's evaluation, scoring the session first if no
// evaluation exists yet. The session must be completed.
func (o *Orchestrator) Evaluate(ctx context.Context, sessionID int64) (*model.Evaluation, error) {
	unlock := o.locks.lock(sessionID)
	defer unlock()

	existing, err := o.store.GetEvaluationBySession(ctx, sessionID)
	if err == nil {
		o.metrics.EvaluationOutcome("existing")
		return existing, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.StatusCompleted {
		o.metrics.EvaluationOutcome("not_eligible")
		return nil, apperrors.NotEligible("session %d is %s, not completed", sessionID, session.Status)
	}

	answers, err := o.store.ListAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	verbal := o.scoreVerbal(ctx, session, answers)
	nonverbalResult := o.scoreNonverbal(ctx, session)
	evaluation, rows := assemble(sessionID, verbal, nonverbalResult)

	if err := o.store.CreateEvaluation(ctx, evaluation, rows); err != nil {
		if apperrors.Is(err, apperrors.ErrConflict) {
			// another process won the insert; its result stands
			o.metrics.EvaluationOutcome("conflict")
			return o.store.GetEvaluationBySession(ctx, sessionID)
		}
		o.metrics.EvaluationOutcome("failed")
		return nil, err
	}

	o.metrics.EvaluationOutcome("created")
	o.logger.Info("session evaluated",
		zap.Int64("session_id", sessionID),
		zap.Int64("evaluation_id", evaluation.ID),
		zap.Float64("total_score", evaluation.TotalScore),
		zap.Int("answers", len(answers)))
	o.scheduleReport(evaluation.ID)
	return evaluation, nil
}

// Input is a manually supplied evaluation
type Input struct {
	SessionID      int64
	TotalScore     float64
	VerbalScore    float64
	NonverbalScore float64
	DetailedScores map[string]map[string]float64
	Feedback       string
}

func (in Input) validate() error {
	if in.SessionID <= 0 {
		return apperrors.RequiredField("session_id")
	}
	for name, v := range map[string]float64{
		"total_score":     in.TotalScore,
		"verbal_score":    in.VerbalScore,
		"nonverbal_score": in.NonverbalScore,
	} {
		if v < 0 || v > 100 {
			return apperrors.OutOfRange(name, 0, 100)
		}
	}
	return nil
}

// Create stores a caller-supplied evaluation. Unlike Evaluate it refuses to
// replace an existing evaluation and returns ErrConflict.
func (o *Orchestrator) Create(ctx context.Context, in Input) (*model.Evaluation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	unlock := o.locks.lock(in.SessionID)
	defer unlock()

	e := &model.Evaluation{
		SessionID:      in.SessionID,
		TotalScore:     in.TotalScore,
		VerbalScore:    in.VerbalScore,
		NonverbalScore: in.NonverbalScore,
		DetailedScores: in.DetailedScores,
		Feedback:       in.Feedback,
	}
	if e.DetailedScores == nil {
		e.DetailedScores = map[string]map[string]float64{}
	}
	if err := o.store.CreateEvaluation(ctx, e, criteriaRows(e.DetailedScores)); err != nil {
		return nil, err
	}
	o.metrics.EvaluationOutcome("created")
	o.scheduleReport(e.ID)
	return e, nil
}

func (o *Orchestrator) scheduleReport(evaluationID int64) {
	if o.reports == nil {
		return
	}
	task, err := o.reports.Schedule(evaluationID)
	if err != nil {
		o.logger.Warn("report not scheduled", zap.Int64("evaluation_id", evaluationID), zap.Error(err))
		return
	}
	o.logger.Debug("report scheduled", zap.Int64("evaluation_id", evaluationID), zap.String("task_id", task.ID))
}

// verbalOutcome is the verbal side of a session after scoring every answer
type verbalOutcome struct {
	criteria   map[string]float64
	competency map[string]float64
	feedback   string
}

type answerScore struct {
	competency string
	scores     map[string]float64
	mean       float64
}

func (o *Orchestrator) scoreVerbal(ctx context.Context, session *model.Session, answers []model.Answer) verbalOutcome {
	out := verbalOutcome{criteria: neutralScores(model.VerbalCriteria)}

	answers = lo.Filter(answers, func(a model.Answer, _ int) bool {
		return strings.TrimSpace(a.Content) != ""
	})
	if len(answers) == 0 {
		out.feedback = noAnswersFeedback
		return out
	}

	var lines []string
	failed := false
	scored := make([]answerScore, 0, len(answers))
	for _, a := range answers {
		q, _ := session.Question(a.QuestionIndex)
		competency := q.Competency
		if competency == "" {
			competency = DefaultCompetency
		}

		scores, feedback, ok := o.scoreAnswer(ctx, chat.ScoreRequest{
			CandidateName: session.CandidateName,
			Competency:    competency,
			Question:      q.Content,
			Answer:        a.Content,
		}, session.ID, a.QuestionIndex)
		if !ok {
			failed = true
		} else if feedback != "" {
			lines = append(lines, fmt.Sprintf("질문 %d: %s", a.QuestionIndex+1, feedback))
		}
		scored = append(scored, answerScore{
			competency: competency,
			scores:     scores,
			mean:       mean(lo.Values(scores)),
		})
	}

	for _, c := range model.VerbalCriteria {
		out.criteria[c] = round1(mean(lo.Map(scored, func(s answerScore, _ int) float64 { return s.scores[c] })))
	}

	out.competency = make(map[string]float64)
	for competency, group := range lo.GroupBy(scored, func(s answerScore) string { return s.competency }) {
		out.competency[competency] = model.ClampScore(round1(mean(lo.Map(group, func(s answerScore, _ int) float64 { return s.mean }))))
	}

	if failed {
		lines = append(lines, verbalFailureFeedback)
	}
	out.feedback = strings.Join(lines, "\n")
	return out
}

// scoreAnswer calls the scorer under the provider timeout. Any failure yields
// neutral scores and ok=false.
func (o *Orchestrator) scoreAnswer(ctx context.Context, req chat.ScoreRequest, sessionID int64, questionIndex int) (map[string]float64, string, bool) {
	if o.scorer == nil {
		return neutralScores(model.VerbalCriteria), "", false
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	result, err := o.scorer.Score(callCtx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		status := "error"
		if callCtx.Err() != nil {
			status = "timeout"
		}
		o.metrics.ProviderCall("scorer", "score", status, elapsed)
		o.logger.Warn("answer scoring failed, using neutral scores",
			zap.Int64("session_id", sessionID),
			zap.Int("question_index", questionIndex),
			zap.Error(apperrors.Provider(err, "score answer")))
		return neutralScores(model.VerbalCriteria), "", false
	}
	o.metrics.ProviderCall("scorer", "score", "ok", elapsed)

	scores := make(map[string]float64, len(model.VerbalCriteria))
	for _, c := range model.VerbalCriteria {
		v, ok := result.Scores[c]
		if !ok {
			scores[c] = model.NeutralScore
			continue
		}
		scores[c] = model.ClampScore(float64(v))
	}
	return scores, strings.TrimSpace(result.Feedback), true
}

func (o *Orchestrator) scoreNonverbal(ctx context.Context, session *model.Session) nonverbal.Result {
	result, err := o.analyzer.Analyze(ctx, session)
	if err != nil {
		o.logger.Warn("nonverbal analysis failed, using neutral scores",
			zap.Int64("session_id", session.ID), zap.Error(err))
		return nonverbal.Neutral()
	}
	scores := make(map[string]float64, len(model.NonverbalCriteria))
	for _, c := range model.NonverbalCriteria {
		v, ok := result.Scores[c]
		if !ok {
			v = model.NeutralScore
		}
		scores[c] = model.ClampScore(v)
	}
	result.Scores = scores
	return result
}

// assemble applies the weighting and builds the evaluation with its criteria rows
func assemble(sessionID int64, verbal verbalOutcome, nv nonverbal.Result) (*model.Evaluation, []model.CriteriaScore) {
	verbalAvg := mean(lo.Values(verbal.criteria))
	nonverbalAvg := mean(lo.Values(nv.Scores))

	detailed := map[string]map[string]float64{
		model.CategoryVerbal:    verbal.criteria,
		model.CategoryNonverbal: nv.Scores,
	}
	if len(verbal.competency) > 0 {
		detailed[model.CategoryCompetency] = verbal.competency
	}

	feedback := strings.TrimSpace(verbal.feedback + "\n\n" + nv.Text())
	e := &model.Evaluation{
		SessionID:      sessionID,
		TotalScore:     round2((verbalAvg*verbalWeight + nonverbalAvg*nonverbalWeight) * scaleFactor),
		VerbalScore:    round2(verbalAvg * scaleFactor),
		NonverbalScore: round2(nonverbalAvg * scaleFactor),
		DetailedScores: detailed,
		Feedback:       feedback,
	}
	return e, criteriaRows(detailed)
}

// criteriaRows flattens detailed scores into one row per (category, criterion)
// in a stable order
func criteriaRows(detailed map[string]map[string]float64) []model.CriteriaScore {
	categories := lo.Keys(detailed)
	sort.Strings(categories)

	var rows []model.CriteriaScore
	for _, category := range categories {
		names := lo.Keys(detailed[category])
		sort.Strings(names)
		for _, name := range names {
			score := detailed[category][name]
			rows = append(rows, model.CriteriaScore{
				Category:  category,
				Criterion: name,
				Score:     score,
				Comment:   fmt.Sprintf("%s 점수: %.1f/5", name, score),
			})
		}
	}
	return rows
}

func neutralScores(criteria []string) map[string]float64 {
	out := make(map[string]float64, len(criteria))
	for _, c := range criteria {
		out[c] = model.NeutralScore
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return model.NeutralScore
	}
	return lo.Sum(values) / float64(len(values))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round2(v float64) float64 { return math.Round(v*100) / 100 }
