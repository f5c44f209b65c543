package api

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/logging"
	"interview-capture/internal/app/metrics"
)

// TranscriptionAdapter exposes the two fail-soft transcription paths. Provider
// errors, timeouts and empty results all come back as ("", false).
type TranscriptionAdapter struct {
	transcriber  Transcriber
	provider     string
	chunkTimeout time.Duration
	finalTimeout time.Duration
	logger       *zap.Logger
	metrics      *metrics.Metrics
}

// AdapterOptions configures a TranscriptionAdapter
type AdapterOptions struct {
	Provider     string
	ChunkTimeout time.Duration
	FinalTimeout time.Duration
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// NewTranscriptionAdapter wraps a provider. A nil transcriber makes every call return ("", false).
func NewTranscriptionAdapter(t Transcriber, opts AdapterOptions) *TranscriptionAdapter {
	if opts.Provider == "" {
		opts.Provider = "openai"
	}
	if opts.ChunkTimeout <= 0 {
		opts.ChunkTimeout = 30 * time.Second
	}
	if opts.FinalTimeout <= 0 {
		opts.FinalTimeout = 5 * time.Minute
	}
	return &TranscriptionAdapter{
		transcriber:  t,
		provider:     opts.Provider,
		chunkTimeout: opts.ChunkTimeout,
		finalTimeout: opts.FinalTimeout,
		logger:       logging.Component(opts.Logger, "transcription"),
		metrics:      opts.Metrics,
	}
}

// TranscribeChunk is the low-latency path called inline during ingest
func (a *TranscriptionAdapter) TranscribeChunk(ctx context.Context, audio []byte, filename string) (string, bool) {
	return a.call(ctx, "transcribe_chunk", a.chunkTimeout, audio, filename)
}

// TranscribeFinal is the higher-quality pass over a merged artifact
func (a *TranscriptionAdapter) TranscribeFinal(ctx context.Context, audio []byte, filename string) (string, bool) {
	return a.call(ctx, "transcribe_final", a.finalTimeout, audio, filename)
}

func (a *TranscriptionAdapter) call(ctx context.Context, op string, timeout time.Duration, audio []byte, filename string) (string, bool) {
	if a.transcriber == nil || len(audio) == 0 {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := a.transcriber.Transcribe(ctx, audio, filename)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		status := "error"
		if ctx.Err() == context.DeadlineExceeded {
			status = "timeout"
		}
		a.metrics.ProviderCall(a.provider, op, status, elapsed)
		a.logger.Warn("transcription unavailable",
			zap.String("operation", op),
			zap.String("file", filename),
			zap.String("status", status),
			zap.Error(apperrors.Provider(err, "%s %s", a.provider, op)))
		return "", false
	}

	text = strings.TrimSpace(text)
	if text == "" {
		a.metrics.ProviderCall(a.provider, op, "empty", elapsed)
		return "", false
	}
	a.metrics.ProviderCall(a.provider, op, "ok", elapsed)
	return text, true
}
