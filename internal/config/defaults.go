package config

import "time"

// Default configuration constants
const (
	DefaultHost             = "0.0.0.0"
	DefaultHTTPPort         = "8001"
	DefaultEnvironment      = "development"
	DefaultMediaStoragePath = "./media_storage"

	DefaultDatabaseDriver = "sqlite"
	DefaultDatabaseURL    = "./data/interviews.db"

	DefaultSTTLanguage  = "ko"
	DefaultScoringModel = "gpt-4o-mini"

	// Fragments and their per-question sets expire after a day
	DefaultChunkTTL = 24 * time.Hour

	DefaultProviderTimeout        = 30 * time.Second
	DefaultFinalTranscribeTimeout = 5 * time.Minute
	DefaultEncoderTimeout         = 10 * time.Minute

	DefaultQuestionsCount  = 5
	DefaultTaskConcurrency = 4

	DefaultTemporalHost      = "localhost:7233"
	DefaultTemporalNamespace = "default"
	DefaultTaskQueue         = "interview-closeout"

	CloseoutLocal          = "local"
	CloseoutTemporal       = "temporal"
	DefaultCloseoutBackend = CloseoutLocal
)
