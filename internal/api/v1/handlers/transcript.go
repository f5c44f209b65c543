package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-capture/internal/api/middleware"
	"interview-capture/internal/api/v1/services"
)

// TranscriptHandler handles transcript endpoints
type TranscriptHandler struct {
	service services.TranscriptService
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(service services.TranscriptService) *TranscriptHandler {
	return &TranscriptHandler{service: service}
}

// Get handles GET /api/v1/sessions/:id/transcripts/:question
func (h *TranscriptHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	question, err := pathIndex(c, "question")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.GetTranscript(c.Request.Context(), id, question)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Finalize handles POST /api/v1/sessions/:id/transcripts/finalize
func (h *TranscriptHandler) Finalize(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Finalize(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
