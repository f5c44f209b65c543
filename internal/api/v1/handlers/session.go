package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-capture/internal/api/middleware"
	"interview-capture/internal/api/v1/dto"
	"interview-capture/internal/api/v1/services"
)

// SessionHandler handles interview session endpoints
type SessionHandler struct {
	service services.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Create handles POST /api/v1/sessions
// @Summary Create an interview session
// @Description Schedules a session. Without questions they are drafted from the resume.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body dto.CreateSessionRequest true "Session"
// @Success 201 {object} dto.SessionResponse
// @Failure 422 {object} errors.APIError
// @Router /api/v1/sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.CreateSession(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /api/v1/sessions/:id
// @Summary Get a session
// @Tags Sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} dto.SessionResponse
// @Failure 404 {object} errors.APIError
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	var query dto.ListSessionsQuery
	if err := middleware.BindQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.ListSessions(c.Request.Context(), query)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Start handles POST /api/v1/sessions/:id/start
func (h *SessionHandler) Start(c *gin.Context) {
	h.transition(c, h.service.StartSession)
}

// Cancel handles POST /api/v1/sessions/:id/cancel
func (h *SessionHandler) Cancel(c *gin.Context) {
	h.transition(c, h.service.CancelSession)
}

func (h *SessionHandler) transition(c *gin.Context, fn func(ctx context.Context, id int64) (*dto.SessionResponse, error)) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := fn(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// End handles POST /api/v1/sessions/:id/end.
// The session is completed synchronously; merge and evaluation continue in the background.
// @Summary End a session
// @Description Completes the session, writes its transcript and starts closeout
// @Tags Sessions
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} dto.EndSessionResponse
// @Failure 400 {object} errors.APIError
// @Router /api/v1/sessions/{id}/end [post]
func (h *SessionHandler) End(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.EndSession(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// AddAnswer handles POST /api/v1/sessions/:id/answers
func (h *SessionHandler) AddAnswer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	var req dto.AnswerRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	answer, err := h.service.AddAnswer(c.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, answer)
}

// ListAnswers handles GET /api/v1/sessions/:id/answers
func (h *SessionHandler) ListAnswers(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	answers, err := h.service.ListAnswers(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

// GenerateQuestions handles POST /api/v1/sessions/generate-questions
func (h *SessionHandler) GenerateQuestions(c *gin.Context) {
	var req dto.GenerateQuestionsRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.GenerateQuestions(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
