package services

import (
	"context"
	"fmt"

	"interview-capture/internal/api/v1/dto"
	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/evaluation"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/storage/media"
)

// Evaluator runs and stores evaluations
type Evaluator interface {
	Evaluate(ctx context.Context, sessionID int64) (*model.Evaluation, error)
	Create(ctx context.Context, in evaluation.Input) (*model.Evaluation, error)
}

// Exporter writes the bulk evaluation workbook and returns its relative path
type Exporter interface {
	ExportAll(ctx context.Context) (string, error)
}

// EvaluationServiceImpl implements EvaluationService
type EvaluationServiceImpl struct {
	evaluator Evaluator
	store     repository.EvaluationStore
	exporter  Exporter
	disk      *media.Disk
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(evaluator Evaluator, store repository.EvaluationStore, exporter Exporter, disk *media.Disk) EvaluationService {
	return &EvaluationServiceImpl{
		evaluator: evaluator,
		store:     store,
		exporter:  exporter,
		disk:      disk,
	}
}

// ReportURL is where the report of an evaluation is downloaded from
func ReportURL(evaluationID int64) string {
	return fmt.Sprintf("/api/v1/evaluations/%d/report", evaluationID)
}

func toResponse(e *model.Evaluation) *dto.EvaluationResponse {
	resp := &dto.EvaluationResponse{Evaluation: e}
	if e.ReportPath != "" {
		resp.ReportURL = ReportURL(e.ID)
	}
	return resp
}

func (s *EvaluationServiceImpl) Evaluate(ctx context.Context, sessionID int64) (*dto.EvaluationResponse, error) {
	e, err := s.evaluator.Evaluate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toResponse(e), nil
}

func (s *EvaluationServiceImpl) CreateEvaluation(ctx context.Context, req *dto.CreateEvaluationRequest) (*dto.EvaluationResponse, error) {
	e, err := s.evaluator.Create(ctx, evaluation.Input{
		SessionID:      req.SessionID,
		TotalScore:     req.TotalScore,
		VerbalScore:    req.VerbalScore,
		NonverbalScore: req.NonverbalScore,
		DetailedScores: req.DetailedScores,
		Feedback:       req.Feedback,
	})
	if err != nil {
		return nil, err
	}
	return toResponse(e), nil
}

func (s *EvaluationServiceImpl) GetEvaluation(ctx context.Context, id int64) (*dto.EvaluationResponse, error) {
	e, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return nil, err
	}
	return toResponse(e), nil
}

func (s *EvaluationServiceImpl) ListCriteria(ctx context.Context, id int64) (*dto.CriteriaResponse, error) {
	if _, err := s.store.GetEvaluation(ctx, id); err != nil {
		return nil, err
	}
	criteria, err := s.store.ListCriteriaScores(ctx, id)
	if err != nil {
		return nil, err
	}
	if criteria == nil {
		criteria = []model.CriteriaScore{}
	}
	return &dto.CriteriaResponse{EvaluationID: id, Criteria: criteria}, nil
}

func (s *EvaluationServiceImpl) ReportFile(ctx context.Context, id int64) (string, error) {
	e, err := s.store.GetEvaluation(ctx, id)
	if err != nil {
		return "", err
	}
	if e.ReportPath == "" {
		return "", apperrors.NotFound("report of evaluation", id)
	}
	return s.disk.Abs(e.ReportPath), nil
}

func (s *EvaluationServiceImpl) Export(ctx context.Context) (string, error) {
	rel, err := s.exporter.ExportAll(ctx)
	if err != nil {
		return "", err
	}
	return s.disk.Abs(rel), nil
}
