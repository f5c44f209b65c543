package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"interview-capture/internal/api/middleware"
	"interview-capture/internal/api/v1/dto"
	"interview-capture/internal/api/v1/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EvaluationHandler handles evaluation, report and export endpoints
type EvaluationHandler struct {
	service services.EvaluationService
}

// NewEvaluationHandler creates a new evaluation handler
func NewEvaluationHandler(service services.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// Evaluate handles POST /api/v1/sessions/:id/evaluate.
// Evaluating an already evaluated session returns the stored evaluation.
// @Summary Evaluate a completed session
// @Tags Evaluations
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} dto.EvaluationResponse
// @Failure 400 {object} errors.APIError
// @Router /api/v1/sessions/{id}/evaluate [post]
func (h *EvaluationHandler) Evaluate(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Evaluate(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Create handles POST /api/v1/evaluations
func (h *EvaluationHandler) Create(c *gin.Context) {
	var req dto.CreateEvaluationRequest
	if err := middleware.BindJSON(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.CreateEvaluation(c.Request.Context(), &req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// Get handles GET /api/v1/evaluations/:id
func (h *EvaluationHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.GetEvaluation(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Criteria handles GET /api/v1/evaluations/:id/criteria
func (h *EvaluationHandler) Criteria(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.ListCriteria(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Report handles GET /api/v1/evaluations/:id/report
// @Summary Download the report of an evaluation
// @Tags Evaluations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path int true "Evaluation ID"
// @Success 200 {file} file
// @Failure 404 {object} errors.APIError
// @Router /api/v1/evaluations/{id}/report [get]
func (h *EvaluationHandler) Report(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	path, err := h.service.ReportFile(c.Request.Context(), id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Header("Content-Type", xlsxContentType)
	c.FileAttachment(path, filepath.Base(path))
}

// Export handles GET /api/v1/evaluations/export
func (h *EvaluationHandler) Export(c *gin.Context) {
	path, err := h.service.Export(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Header("Content-Type", xlsxContentType)
	c.FileAttachment(path, filepath.Base(path))
}
