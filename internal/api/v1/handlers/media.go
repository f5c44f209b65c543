package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-capture/internal/api/errors"
	"interview-capture/internal/api/middleware"
	"interview-capture/internal/api/v1/dto"
	"interview-capture/internal/api/v1/services"
)

// MaxChunkBytes bounds one uploaded chunk
const MaxChunkBytes = 64 << 20

// MediaHandler handles chunk upload, merge and task endpoints
type MediaHandler struct {
	service services.MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(service services.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

// UploadChunk handles POST /api/v1/media/chunks (multipart, payload in the "chunk" part)
// @Summary Upload a recorded chunk
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param session_id formData int true "Session ID"
// @Param question_index formData int true "Question index"
// @Param chunk_index formData int true "Chunk index"
// @Param kind formData string true "audio, video or text"
// @Param chunk formData file true "Chunk payload"
// @Success 201 {object} dto.ChunkResponse
// @Failure 400 {object} errors.APIError
// @Router /api/v1/media/chunks [post]
func (h *MediaHandler) UploadChunk(c *gin.Context) {
	var form dto.UploadChunkForm
	if err := middleware.BindForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	payload, err := readChunk(c)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.UploadChunk(c.Request.Context(), &form, payload)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func readChunk(c *gin.Context) ([]byte, error) {
	header, err := c.FormFile("chunk")
	if err != nil {
		return nil, errors.NewValidationError("Validation failed", map[string]string{"chunk": "is required"})
	}
	if header.Size > MaxChunkBytes {
		return nil, errors.NewValidationError("Validation failed", map[string]string{"chunk": "is too large"})
	}
	file, err := header.Open()
	if err != nil {
		return nil, errors.NewBadRequestError("Unreadable chunk")
	}
	defer file.Close()

	payload, err := io.ReadAll(io.LimitReader(file, MaxChunkBytes))
	if err != nil {
		return nil, errors.NewBadRequestError("Unreadable chunk")
	}
	return payload, nil
}

// UploadBase64 handles POST /api/v1/media/base64
func (h *MediaHandler) UploadBase64(c *gin.Context) {
	var req dto.Base64ChunkRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.UploadBase64(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// Merge handles POST /api/v1/sessions/:id/merge/:kind. The merge runs in the
// background; poll the returned task.
// @Summary Merge the chunks of a session
// @Tags Media
// @Produce json
// @Param id path int true "Session ID"
// @Param kind path string true "audio or video"
// @Success 202 {object} dto.TaskResponse
// @Router /api/v1/sessions/{id}/merge/{kind} [post]
func (h *MediaHandler) Merge(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	kind, ok := dto.MergeKind(c.Param("kind"))
	if !ok {
		middleware.HandleError(c, errors.NewBadRequestError("Invalid media kind, want audio or video"))
		return
	}

	response, err := h.service.ScheduleMerge(c.Request.Context(), id, kind)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, response)
}

// GetTask handles GET /api/v1/tasks/:id
func (h *MediaHandler) GetTask(c *gin.Context) {
	response, err := h.service.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
