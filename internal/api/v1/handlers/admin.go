package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-capture/internal/api/middleware"
	"interview-capture/internal/api/v1/services"
)

// AdminHandler serves the dashboard
type AdminHandler struct {
	service services.AdminService
}

func NewAdminHandler(service services.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

// Dashboard handles GET /api/v1/admin/dashboard
// @Summary Session and evaluation statistics
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.DashboardResponse
// @Router /api/v1/admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	response, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
