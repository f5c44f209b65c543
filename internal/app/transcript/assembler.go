// Package transcript orders transcript fragments and writes the final per-question transcript.
package transcript

import (
	"context"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"interview-capture/internal/app/chunkindex"
	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/storage/media"
)

// FinalTranscriber is the higher-quality transcription path run over a merged artifact
type FinalTranscriber interface {
	TranscribeFinal(ctx context.Context, audio []byte, filename string) (string, bool)
}

// Assembler reads fragments back in timestamp order
type Assembler struct {
	index    *chunkindex.Index
	sessions repository.SessionStore
	answers  repository.AnswerStore
	disk     *media.Disk
	final    FinalTranscriber
	logger   *zap.Logger
}

// NewAssembler creates an Assembler. final may be nil.
func NewAssembler(index *chunkindex.Index, sessions repository.SessionStore, answers repository.AnswerStore, disk *media.Disk, final FinalTranscriber, logger *zap.Logger) *Assembler {
	return &Assembler{
		index:    index,
		sessions: sessions,
		answers:  answers,
		disk:     disk,
		final:    final,
		logger:   logging.Component(logger, "transcript"),
	}
}

// Assemble returns the fragments of one question ordered by timestamp, then chunk
// index, then key. Expired fragments are left out and undecodable ones skipped.
func (a *Assembler) Assemble(ctx context.Context, sessionID int64, questionIndex int) ([]model.Fragment, error) {
	keys, values, err := a.index.Raw(ctx, sessionID, questionIndex)
	if err != nil {
		return nil, apperrors.Storage(err, "read fragments for session %d question %d", sessionID, questionIndex)
	}

	fragments := make([]model.Fragment, 0, len(keys))
	for i, key := range keys {
		if values[i] == nil {
			continue
		}
		f, err := chunkindex.DecodeFragment(key, values[i])
		if err != nil {
			a.logger.Warn("skipping undecodable fragment", zap.String("key", key), zap.Error(err))
			continue
		}
		fragments = append(fragments, f)
	}

	sort.SliceStable(fragments, func(i, j int) bool {
		fi, fj := fragments[i], fragments[j]
		if fi.Timestamp != fj.Timestamp {
			return fi.Timestamp < fj.Timestamp
		}
		if fi.ChunkIndex != fj.ChunkIndex {
			return fi.ChunkIndex < fj.ChunkIndex
		}
		return fi.Key < fj.Key
	})
	return fragments, nil
}

// Text joins ordered fragments with single spaces
func Text(fragments []model.Fragment) string {
	parts := lo.FilterMap(fragments, func(f model.Fragment, _ int) (string, bool) {
		t := strings.TrimSpace(f.Text)
		return t, t != ""
	})
	return strings.Join(parts, " ")
}

// Finalize assembles questions 0..questionCount-1 plus any question listed on the
// session, writes stt/interview_<id>_stt.json, upserts one answer per non-empty
// question and records the transcript path. Returns the relative path.
func (a *Assembler) Finalize(ctx context.Context, sessionID int64, questionCount int) (string, error) {
	session, err := a.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	indexes := make([]int, 0, questionCount)
	for q := 0; q < questionCount; q++ {
		indexes = append(indexes, q)
	}
	for _, q := range session.Questions {
		indexes = append(indexes, q.Index)
	}
	indexes = lo.Uniq(indexes)
	sort.Ints(indexes)

	transcript := make(map[string]string)
	for _, q := range indexes {
		fragments, err := a.Assemble(ctx, sessionID, q)
		if err != nil {
			return "", err
		}
		text := Text(fragments)
		if text == "" {
			continue
		}
		transcript[strconv.Itoa(q)] = text
		if err := a.answers.UpsertAnswer(ctx, &model.Answer{SessionID: sessionID, QuestionIndex: q, Content: text}); err != nil {
			return "", err
		}
	}

	raw, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return "", apperrors.Storage(err, "encode transcript")
	}
	rel := media.TranscriptRel(sessionID)
	if err := media.WriteFile(a.disk.Abs(rel), raw); err != nil {
		return "", apperrors.Storage(err, "write transcript for session %d", sessionID)
	}
	if _, err := a.sessions.UpdateSession(ctx, sessionID, model.SessionUpdate{STTPath: &rel}); err != nil {
		return "", err
	}

	a.logger.Info("transcript finalized",
		zap.Int64("session_id", sessionID),
		zap.Int("questions", len(transcript)),
		zap.String("path", rel))
	return rel, nil
}

// TranscribeArtifact runs the final transcription pass over the merged audio
// artifact and stores the text next to the per-question transcript. It reports
// false when there is no artifact or the provider returned nothing.
func (a *Assembler) TranscribeArtifact(ctx context.Context, sessionID int64) (string, bool, error) {
	if a.final == nil {
		return "", false, nil
	}
	session, err := a.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return "", false, err
	}
	if session.AudioPath == "" {
		return "", false, nil
	}
	path := a.disk.Abs(session.AudioPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false, apperrors.Storage(err, "read audio artifact of session %d", sessionID)
	}
	text, ok := a.final.TranscribeFinal(ctx, data, session.AudioPath)
	if !ok {
		return "", false, nil
	}
	rel := media.FinalTranscriptRel(sessionID)
	if err := media.WriteFile(a.disk.Abs(rel), []byte(text)); err != nil {
		return "", false, apperrors.Storage(err, "write final transcript of session %d", sessionID)
	}
	return rel, true, nil
}
