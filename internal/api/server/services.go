package server

import (
	"interview-capture/internal/api/v1/routes"
	"interview-capture/internal/api/v1/services"
	"interview-capture/internal/app"
)

// Services builds the v1 service layer over a wired container
func Services(c *app.Container) *routes.ServiceContainer {
	return &routes.ServiceContainer{
		SessionService:    services.NewSessionService(c.Sessions),
		MediaService:      services.NewMediaService(c.Ingest, c.Merge, c.Tracker),
		TranscriptService: services.NewTranscriptService(c.Assembler, c.Config.QuestionsCount),
		EvaluationService: services.NewEvaluationService(c.Evaluator, c.Store, c.Reports, c.Disk),
		AdminService:      services.NewAdminService(c.Store),
	}
}

// ConfigFrom derives the HTTP server settings from the application config
func ConfigFrom(c *app.Container) Config {
	return Config{
		Host:         c.Config.Host,
		Port:         c.Config.Port,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
		Environment:  c.Config.Environment,
		CORSOrigins:  c.Config.CORSOrigins,
	}
}
