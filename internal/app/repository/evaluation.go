package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/model"
)

const evaluationColumns = `id, session_id, total_score, verbal_score, nonverbal_score, detailed_scores,
	feedback, report_path, created_at, updated_at`

func scanEvaluation(row scanner) (*model.Evaluation, error) {
	var e model.Evaluation
	var detailed string
	err := row.Scan(&e.ID, &e.SessionID, &e.TotalScore, &e.VerbalScore, &e.NonverbalScore, &detailed,
		&e.Feedback, &e.ReportPath, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if detailed != "" {
		if err := json.Unmarshal([]byte(detailed), &e.DetailedScores); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

func (c *CommonDB) CreateEvaluation(ctx context.Context, e *model.Evaluation, scores []model.CriteriaScore) error {
	detailed, err := json.Marshal(e.DetailedScores)
	if err != nil {
		return apperrors.Storage(err, "encode detailed scores")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage(err, "begin transaction")
	}
	defer tx.Rollback()

	now := c.now()

	// The status swap is the gate: only one transaction can move completed -> evaluated
	res, err := tx.ExecContext(ctx,
		c.rebind(`UPDATE sessions SET status = ?, updated_at = ? WHERE id = ? AND status = ?`),
		string(model.StatusEvaluated), now, e.SessionID, string(model.StatusCompleted))
	if err != nil {
		return apperrors.Storage(err, "mark session %d evaluated", e.SessionID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return c.explainRejectedEvaluation(ctx, tx, e.SessionID)
	}

	err = tx.QueryRowContext(ctx, c.rebind(`INSERT INTO evaluations (session_id, total_score, verbal_score, nonverbal_score,
		detailed_scores, feedback, report_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		e.SessionID, e.TotalScore, e.VerbalScore, e.NonverbalScore, string(detailed), e.Feedback, e.ReportPath, now, now).Scan(&e.ID)
	if err != nil {
		if c.dialect.IsUniqueViolation(err) {
			return apperrors.Conflict("evaluation already exists for session %d", e.SessionID)
		}
		return apperrors.Storage(err, "insert evaluation")
	}

	insertScore := c.rebind(`INSERT INTO criteria_scores (evaluation_id, category, criterion, score, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)
	for i := range scores {
		s := &scores[i]
		s.EvaluationID = e.ID
		s.CreatedAt = now
		if s.Score < model.MinCriterionScore || s.Score > model.MaxCriterionScore {
			return apperrors.OutOfRange(s.Category+"."+s.Criterion, model.MinCriterionScore, model.MaxCriterionScore)
		}
		if err := tx.QueryRowContext(ctx, insertScore, e.ID, s.Category, s.Criterion, s.Score, s.Comment, now).Scan(&s.ID); err != nil {
			return apperrors.Storage(err, "insert criteria score %s.%s", s.Category, s.Criterion)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Storage(err, "commit evaluation")
	}
	e.CreatedAt, e.UpdatedAt = now, now
	return nil
}

func (c *CommonDB) explainRejectedEvaluation(ctx context.Context, tx *sql.Tx, sessionID int64) error {
	var exists int
	err := tx.QueryRowContext(ctx, c.rebind(`SELECT COUNT(*) FROM evaluations WHERE session_id = ?`), sessionID).Scan(&exists)
	if err != nil {
		return apperrors.Storage(err, "check evaluation")
	}
	if exists > 0 {
		return apperrors.Conflict("evaluation already exists for session %d", sessionID)
	}
	var status string
	err = tx.QueryRowContext(ctx, c.rebind(`SELECT status FROM sessions WHERE id = ?`), sessionID).Scan(&status)
	if err == sql.ErrNoRows {
		return apperrors.NotFound("session", sessionID)
	}
	if err != nil {
		return apperrors.Storage(err, "get session %d", sessionID)
	}
	return apperrors.NotEligible("session %d is %s, not completed", sessionID, status)
}

func (c *CommonDB) getEvaluation(ctx context.Context, where string, arg int64) (*model.Evaluation, error) {
	query := c.rebind(`SELECT ` + evaluationColumns + ` FROM evaluations WHERE ` + where + ` = ?`)
	e, err := scanEvaluation(c.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("evaluation", arg)
	}
	if err != nil {
		return nil, apperrors.Storage(err, "get evaluation")
	}
	return e, nil
}

func (c *CommonDB) GetEvaluation(ctx context.Context, id int64) (*model.Evaluation, error) {
	return c.getEvaluation(ctx, "id", id)
}

func (c *CommonDB) GetEvaluationBySession(ctx context.Context, sessionID int64) (*model.Evaluation, error) {
	return c.getEvaluation(ctx, "session_id", sessionID)
}

func (c *CommonDB) ListEvaluations(ctx context.Context) ([]model.Evaluation, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT `+evaluationColumns+` FROM evaluations ORDER BY id`)
	if err != nil {
		return nil, apperrors.Storage(err, "list evaluations")
	}
	defer rows.Close()

	evaluations := make([]model.Evaluation, 0)
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, apperrors.Storage(err, "scan evaluation")
		}
		evaluations = append(evaluations, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(err, "list evaluations")
	}
	return evaluations, nil
}

func (c *CommonDB) ListCriteriaScores(ctx context.Context, evaluationID int64) ([]model.CriteriaScore, error) {
	query := c.rebind(`SELECT id, evaluation_id, category, criterion, score, comment, created_at
		FROM criteria_scores WHERE evaluation_id = ? ORDER BY id`)
	rows, err := c.db.QueryContext(ctx, query, evaluationID)
	if err != nil {
		return nil, apperrors.Storage(err, "list criteria scores")
	}
	defer rows.Close()

	scores := make([]model.CriteriaScore, 0)
	for rows.Next() {
		var s model.CriteriaScore
		if err := rows.Scan(&s.ID, &s.EvaluationID, &s.Category, &s.Criterion, &s.Score, &s.Comment, &s.CreatedAt); err != nil {
			return nil, apperrors.Storage(err, "scan criteria score")
		}
		scores = append(scores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(err, "list criteria scores")
	}
	return scores, nil
}

func (c *CommonDB) AttachReport(ctx context.Context, evaluationID int64, reportPath string) error {
	res, err := c.db.ExecContext(ctx,
		c.rebind(`UPDATE evaluations SET report_path = ?, updated_at = ? WHERE id = ?`),
		reportPath, c.now(), evaluationID)
	if err != nil {
		return apperrors.Storage(err, "attach report to evaluation %d", evaluationID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("evaluation", evaluationID)
	}
	return nil
}
