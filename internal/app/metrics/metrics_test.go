package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.ChunkIngested("audio")
	m.ChunkIngested("audio")
	m.FragmentWritten()
	m.ProviderCall("openai", "transcribe_chunk", "timeout", 0.2)
	m.EvaluationOutcome("created")
	m.TaskTransition("", "pending")
	m.TaskTransition("pending", "running")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChunksIngested.WithLabelValues("audio")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FragmentsWritten))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProviderCalls.WithLabelValues("openai", "transcribe_chunk", "timeout")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("pending")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackgroundTasks.WithLabelValues("running")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ChunkIngested("video")
		m.ProviderCall("openai", "score", "ok", 1)
		m.MergeObserved("video", "ok", 1)
		m.HTTPRequest("GET", "/health", "200", 0.01)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ChunkIngested("video")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `interview_capture_chunks_ingested_total{kind="video"} 1`)
}
