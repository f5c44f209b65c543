package routes

import (
	"github.com/gin-gonic/gin"

	"interview-capture/internal/api/v1/handlers"
	"interview-capture/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers. Admin is optional.
type ServiceContainer struct {
	SessionService    services.SessionService
	MediaService      services.MediaService
	TranscriptService services.TranscriptService
	EvaluationService services.EvaluationService
	AdminService      services.AdminService
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	sessionHandler := handlers.NewSessionHandler(container.SessionService)
	mediaHandler := handlers.NewMediaHandler(container.MediaService)
	transcriptHandler := handlers.NewTranscriptHandler(container.TranscriptService)
	evaluationHandler := handlers.NewEvaluationHandler(container.EvaluationService)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", sessionHandler.Create)
		sessions.GET("", sessionHandler.List)
		sessions.POST("/generate-questions", sessionHandler.GenerateQuestions)
		sessions.GET("/:id", sessionHandler.Get)
		sessions.POST("/:id/start", sessionHandler.Start)
		sessions.POST("/:id/end", sessionHandler.End)
		sessions.POST("/:id/cancel", sessionHandler.Cancel)
		sessions.POST("/:id/answers", sessionHandler.AddAnswer)
		sessions.GET("/:id/answers", sessionHandler.ListAnswers)

		sessions.POST("/:id/merge/:kind", mediaHandler.Merge)
		sessions.GET("/:id/transcripts/:question", transcriptHandler.Get)
		sessions.POST("/:id/transcripts/finalize", transcriptHandler.Finalize)
		sessions.POST("/:id/evaluate", evaluationHandler.Evaluate)
	}

	media := router.Group("/media")
	{
		media.POST("/chunks", mediaHandler.UploadChunk)
		media.POST("/base64", mediaHandler.UploadBase64)
	}

	router.GET("/tasks/:id", mediaHandler.GetTask)

	evaluations := router.Group("/evaluations")
	{
		evaluations.POST("", evaluationHandler.Create)
		evaluations.GET("/export", evaluationHandler.Export)
		evaluations.GET("/:id", evaluationHandler.Get)
		evaluations.GET("/:id/criteria", evaluationHandler.Criteria)
		evaluations.GET("/:id/report", evaluationHandler.Report)
	}

	if container.AdminService != nil {
		adminHandler := handlers.NewAdminHandler(container.AdminService)
		router.GET("/admin/dashboard", adminHandler.Dashboard)
	}
}
