package middleware

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"interview-capture/internal/api/errors"
	apperrors "interview-capture/internal/app/errors"
	"interview-capture/internal/app/metrics"
)

type bindTarget struct {
	SessionID int64  `json:"session_id" binding:"required,min=1"`
	Kind      string `json:"kind" binding:"required,oneof=audio video"`
	Limit     int    `form:"limit" json:"limit" binding:"omitempty,max=100"`
}

type rangeTarget struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r *rangeTarget) Validate() error {
	if r.End < r.Start {
		return apperrors.InvalidField("end", "must not precede start")
	}
	return nil
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(zap.NewNop()))
	r.Use(handlers...)
	return r
}

func TestBindJSONReportsWireNames(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		details map[string]string
	}{
		{"missing", `{}`, map[string]string{"session_id": "is required", "kind": "is required"}},
		{"out of set", `{"session_id": 2, "kind": "text"}`, map[string]string{"kind": "must be one of: audio video"}},
		{"too large", `{"session_id": 2, "kind": "audio", "limit": 500}`, map[string]string{"limit": "must be at most 100"}},
		{"malformed", `{"session_id":`, map[string]string{"request": "invalid JSON body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var req bindTarget
			err := BindJSON(c, &req)
			var apiErr *errors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, errors.KindValidation, apiErr.Kind)
			assert.Equal(t, tt.details, apiErr.Details)
		})
	}
}

func TestBindJSONRunsDomainValidation(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"start": 5, "end": 2}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req rangeTarget
	err := BindJSON(c, &req)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestHandleErrorWritesAPIError(t *testing.T) {
	r := newRouter()
	r.GET("/missing", func(c *gin.Context) { HandleError(c, apperrors.NotFound("session", 9)) })
	r.GET("/broken", func(c *gin.Context) { HandleError(c, stderrors.New("connection reset")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"not_found"`)
	assert.Contains(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/broken", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestErrorHandlerRecoversPanics(t *testing.T) {
	r := newRouter()
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"kind":"internal"`)
}

func TestCORS(t *testing.T) {
	r := newRouter(CORS(DefaultCORSConfig([]string{"https://interview.example.com"})))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	tests := []struct {
		name   string
		method string
		origin string
		allow  string
		status int
	}{
		{"allowed origin", http.MethodGet, "https://interview.example.com", "https://interview.example.com", http.StatusOK},
		{"other origin", http.MethodGet, "https://evil.example.com", "", http.StatusOK},
		{"preflight", http.MethodOptions, "https://interview.example.com", "https://interview.example.com", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/ping", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.allow, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "3600", w.Header().Get("Access-Control-Max-Age"))
		})
	}
}

func TestAccessLogRecordsRouteTemplate(t *testing.T) {
	m := metrics.New()
	r := newRouter(AccessLog(zap.NewNop(), m))
	r.GET("/sessions/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sessions/42", nil))
	require.Equal(t, http.StatusOK, w.Code)

	scrape := httptest.NewRecorder()
	m.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	assert.Contains(t, body, `route="/sessions/:id"`)
	assert.NotContains(t, body, `route="/sessions/42"`)
}
