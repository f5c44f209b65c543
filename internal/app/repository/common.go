package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/model"
)

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

// Dialect captures the differences between the supported databases
type Dialect struct {
	Name              string
	Placeholder       PlaceholderFunc
	IsUniqueViolation func(err error) bool
}

// QuestionMark is the sqlite placeholder style
func QuestionMark(int) string { return "?" }

// Dollar is the postgres placeholder style
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// CommonDB implements Store on database/sql for any Dialect
type CommonDB struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, dialect Dialect) *CommonDB {
	if dialect.Placeholder == nil {
		dialect.Placeholder = QuestionMark
	}
	if dialect.IsUniqueViolation == nil {
		dialect.IsUniqueViolation = func(error) bool { return false }
	}
	return &CommonDB{db: db, dialect: dialect, now: func() time.Time { return time.Now().UTC() }}
}

// DB exposes the underlying connection pool
func (c *CommonDB) DB() *sql.DB { return c.db }

func (c *CommonDB) Close() error { return c.db.Close() }

// rebind rewrites ? placeholders into the dialect's style
func (c *CommonDB) rebind(query string) string {
	if c.dialect.Placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(c.dialect.Placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

const sessionColumns = `id, candidate_name, candidate_resume, interviewer_id, status, start_time, end_time,
	video_path, audio_path, stt_path, questions, created_at, updated_at`

func scanSession(row scanner) (*model.Session, error) {
	var (
		s         model.Session
		status    string
		start     sql.NullTime
		end       sql.NullTime
		questions string
	)
	err := row.Scan(&s.ID, &s.CandidateName, &s.CandidateResume, &s.InterviewerID, &status, &start, &end,
		&s.VideoPath, &s.AudioPath, &s.STTPath, &questions, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	s.Status = model.SessionStatus(status)
	if start.Valid {
		t := start.Time
		s.StartTime = &t
	}
	if end.Valid {
		t := end.Time
		s.EndTime = &t
	}
	if questions != "" {
		if err := json.Unmarshal([]byte(questions), &s.Questions); err != nil {
			return nil, fmt.Errorf("decode questions of session %d: %w", s.ID, err)
		}
	}
	return &s, nil
}

func encodeQuestions(q []model.Question) (string, error) {
	if q == nil {
		q = []model.Question{}
	}
	raw, err := json.Marshal(q)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (c *CommonDB) CreateSession(ctx context.Context, s *model.Session) error {
	questions, err := encodeQuestions(s.Questions)
	if err != nil {
		return apperrors.Storage(err, "encode questions")
	}
	if s.Status == "" {
		s.Status = model.StatusScheduled
	}
	now := c.now()
	query := c.rebind(`INSERT INTO sessions (candidate_name, candidate_resume, interviewer_id, status, start_time, end_time,
		video_path, audio_path, stt_path, questions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	err = c.db.QueryRowContext(ctx, query, s.CandidateName, s.CandidateResume, s.InterviewerID, string(s.Status),
		nullTime(s.StartTime), nullTime(s.EndTime), s.VideoPath, s.AudioPath, s.STTPath, questions, now, now).Scan(&s.ID)
	if err != nil {
		return apperrors.Storage(err, "insert session")
	}
	s.CreatedAt, s.UpdatedAt = now, now
	return nil
}

func (c *CommonDB) GetSession(ctx context.Context, id int64) (*model.Session, error) {
	query := c.rebind(`SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`)
	s, err := scanSession(c.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("session", id)
	}
	if err != nil {
		return nil, apperrors.Storage(err, "get session %d", id)
	}
	return s, nil
}

func (c *CommonDB) ListSessions(ctx context.Context, opts ListOptions) ([]model.Session, error) {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []interface{}
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := c.db.QueryContext(ctx, c.rebind(query), args...)
	if err != nil {
		return nil, apperrors.Storage(err, "list sessions")
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, apperrors.Storage(err, "scan session")
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(err, "list sessions")
	}
	return sessions, nil
}

// CountSessions returns the number of sessions in each status that has any
func (c *CommonDB) CountSessions(ctx context.Context) (map[model.SessionStatus]int, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM sessions GROUP BY status`)
	if err != nil {
		return nil, apperrors.Storage(err, "count sessions")
	}
	defer rows.Close()

	counts := make(map[model.SessionStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperrors.Storage(err, "scan session count")
		}
		counts[model.SessionStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(err, "count sessions")
	}
	return counts, nil
}

func (c *CommonDB) buildSessionUpdate(upd model.SessionUpdate) ([]string, []interface{}, error) {
	var sets []string
	var args []interface{}
	add := func(col string, v interface{}) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.StartTime != nil {
		add("start_time", nullTime(upd.StartTime))
	}
	if upd.EndTime != nil {
		add("end_time", nullTime(upd.EndTime))
	}
	if upd.VideoPath != nil {
		add("video_path", *upd.VideoPath)
	}
	if upd.AudioPath != nil {
		add("audio_path", *upd.AudioPath)
	}
	if upd.STTPath != nil {
		add("stt_path", *upd.STTPath)
	}
	if upd.Questions != nil {
		q, err := encodeQuestions(upd.Questions)
		if err != nil {
			return nil, nil, err
		}
		add("questions", q)
	}
	add("updated_at", c.now())
	return sets, args, nil
}

func (c *CommonDB) UpdateSession(ctx context.Context, id int64, upd model.SessionUpdate) (*model.Session, error) {
	sets, args, err := c.buildSessionUpdate(upd)
	if err != nil {
		return nil, apperrors.Storage(err, "encode session update")
	}
	query := c.rebind(`UPDATE sessions SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := c.db.ExecContext(ctx, query, append(args, id)...)
	if err != nil {
		return nil, apperrors.Storage(err, "update session %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, apperrors.NotFound("session", id)
	}
	return c.GetSession(ctx, id)
}

func (c *CommonDB) TransitionSession(ctx context.Context, id int64, from []model.SessionStatus, upd model.SessionUpdate) (*model.Session, error) {
	if len(from) == 0 {
		return nil, apperrors.RequiredField("from")
	}
	sets, args, err := c.buildSessionUpdate(upd)
	if err != nil {
		return nil, apperrors.Storage(err, "encode session update")
	}
	marks := make([]string, len(from))
	args = append(args, id)
	for i, s := range from {
		marks[i] = "?"
		args = append(args, string(s))
	}
	query := c.rebind(`UPDATE sessions SET ` + strings.Join(sets, ", ") +
		` WHERE id = ? AND status IN (` + strings.Join(marks, ", ") + `)`)
	res, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage(err, "transition session %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		current, err := c.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NotEligible("session %d is %s", id, current.Status)
	}
	return c.GetSession(ctx, id)
}

func (c *CommonDB) DeleteSession(ctx context.Context, id int64) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Storage(err, "begin transaction")
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM criteria_scores WHERE evaluation_id IN (SELECT id FROM evaluations WHERE session_id = ?)`,
		`DELETE FROM evaluations WHERE session_id = ?`,
		`DELETE FROM answers WHERE session_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, c.rebind(stmt), id); err != nil {
			return apperrors.Storage(err, "delete session %d", id)
		}
	}
	res, err := tx.ExecContext(ctx, c.rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return apperrors.Storage(err, "delete session %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("session", id)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Storage(err, "commit delete session %d", id)
	}
	return nil
}

func (c *CommonDB) UpsertAnswer(ctx context.Context, a *model.Answer) error {
	now := c.now()
	query := c.rebind(`INSERT INTO answers (session_id, question_index, content, start_time, end_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, question_index) DO UPDATE SET
			content = excluded.content,
			start_time = COALESCE(excluded.start_time, answers.start_time),
			end_time = COALESCE(excluded.end_time, answers.end_time),
			updated_at = excluded.updated_at
		RETURNING id, created_at`)
	err := c.db.QueryRowContext(ctx, query, a.SessionID, a.QuestionIndex, a.Content,
		nullTime(a.StartTime), nullTime(a.EndTime), now, now).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return apperrors.Storage(err, "upsert answer %d/%d", a.SessionID, a.QuestionIndex)
	}
	a.UpdatedAt = now
	return nil
}

func (c *CommonDB) ListAnswers(ctx context.Context, sessionID int64) ([]model.Answer, error) {
	query := c.rebind(`SELECT id, session_id, question_index, content, start_time, end_time, created_at, updated_at
		FROM answers WHERE session_id = ? ORDER BY question_index`)
	rows, err := c.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, apperrors.Storage(err, "list answers")
	}
	defer rows.Close()

	answers := make([]model.Answer, 0)
	for rows.Next() {
		var a model.Answer
		var start, end sql.NullTime
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionIndex, &a.Content, &start, &end, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, apperrors.Storage(err, "scan answer")
		}
		if start.Valid {
			t := start.Time
			a.StartTime = &t
		}
		if end.Valid {
			t := end.Time
			a.EndTime = &t
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage(err, "list answers")
	}
	return answers, nil
}
