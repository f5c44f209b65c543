// Package report renders evaluation reports in the background and attaches them.
package report

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"interview-capture/internal/app/converter/export"
	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/storage/media"
	"interview-capture/internal/app/storage/objectstore"
	"interview-capture/internal/app/tasks"
)

// Store is the slice of the record store reports read from
type Store interface {
	GetSession(ctx context.Context, id int64) (*model.Session, error)
	repository.EvaluationStore
}

// Options carries the optional collaborators of a Generator
type Options struct {
	Renderer export.Renderer
	Mirror   objectstore.Mirror
	Logger   *zap.Logger
	Now      func() time.Time
}

// Generator produces per-evaluation reports and the bulk export
type Generator struct {
	store    Store
	disk     *media.Disk
	tracker  *tasks.Tracker
	renderer export.Renderer
	mirror   objectstore.Mirror
	logger   *zap.Logger
	now      func() time.Time
}

// NewGenerator creates a Generator rendering xlsx unless opts says otherwise
func NewGenerator(store Store, disk *media.Disk, tracker *tasks.Tracker, opts Options) *Generator {
	if opts.Renderer == nil {
		opts.Renderer = export.XLSXRenderer{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{
		store:    store,
		disk:     disk,
		tracker:  tracker,
		renderer: opts.Renderer,
		mirror:   opts.Mirror,
		logger:   logging.Component(opts.Logger, "report"),
		now:      opts.Now,
	}
}

// Schedule queues Generate on the background tracker. A failure is recorded on
// the returned task; the evaluation itself is never affected.
func (g *Generator) Schedule(evaluationID int64) (tasks.Task, error) {
	if evaluationID <= 0 {
		return tasks.Task{}, apperrors.RequiredField("evaluation_id")
	}
	return g.tracker.Submit("report", fmt.Sprint(evaluationID), func(ctx context.Context) (string, error) {
		return g.Generate(ctx, evaluationID)
	}), nil
}

// Generate renders the report for an evaluation, attaches its relative path and
// returns it
func (g *Generator) Generate(ctx context.Context, evaluationID int64) (string, error) {
	evaluation, err := g.store.GetEvaluation(ctx, evaluationID)
	if err != nil {
		return "", err
	}
	session, err := g.store.GetSession(ctx, evaluation.SessionID)
	if err != nil {
		return "", err
	}
	criteria, err := g.store.ListCriteriaScores(ctx, evaluationID)
	if err != nil {
		return "", err
	}

	rel := media.ReportRel(evaluationID, session.CandidateName, g.renderer.Ext())
	abs := g.disk.Abs(rel)
	if err := g.renderer.Render(abs, export.Report{Session: *session, Evaluation: *evaluation, Criteria: criteria}); err != nil {
		return "", apperrors.Storage(err, "render report for evaluation %d", evaluationID)
	}
	if err := g.store.AttachReport(ctx, evaluationID, rel); err != nil {
		return "", err
	}

	g.logger.Info("report attached", zap.Int64("evaluation_id", evaluationID), zap.String("path", rel))
	if g.mirror != nil {
		if _, err := g.mirror.Upload(ctx, abs, rel); err != nil {
			g.logger.Warn("report mirror failed", zap.String("path", rel), zap.Error(err))
		}
	}
	return rel, nil
}

// ExportAll writes every evaluated session into one timestamped workbook and
// returns its relative path
func (g *Generator) ExportAll(ctx context.Context) (string, error) {
	evaluations, err := g.store.ListEvaluations(ctx)
	if err != nil {
		return "", err
	}

	rows := make([]export.Row, 0, len(evaluations))
	for _, e := range evaluations {
		session, err := g.store.GetSession(ctx, e.SessionID)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return "", err
		}
		rows = append(rows, export.Row{Session: *session, Evaluation: e})
	}

	rel := fmt.Sprintf("reports/interview_evaluations_%s.xlsx", g.now().Format("20060102150405"))
	if err := export.WriteEvaluations(g.disk.Abs(rel), rows); err != nil {
		return "", apperrors.Storage(err, "write evaluation export")
	}
	g.logger.Info("evaluations exported", zap.Int("rows", len(rows)), zap.String("path", rel))
	return rel, nil
}
