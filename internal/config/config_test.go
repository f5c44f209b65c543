package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IVC_CONFIG", "")
	t.Setenv("PORT", "")
	t.Setenv("MEDIA_STORAGE_PATH", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, "8001", cfg.Port)
	assert.Equal(t, "./media_storage", cfg.MediaStoragePath)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.ChunkTTL)
	assert.Equal(t, 5, cfg.QuestionsCount)
	assert.Equal(t, "ko", cfg.OpenAI.Language)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("IVC_CONFIG", "")
	t.Setenv("PORT", "9090")
	t.Setenv("MEDIA_STORAGE_PATH", "/tmp/media")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CHUNK_TTL", "1h")
	t.Setenv("TASK_CONCURRENCY", "8")
	t.Setenv("OPENAI_API_KEY", "sk-1234567890abcdef1234567890abcdef")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, https://interview.example.com,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "/tmp/media", cfg.MediaStoragePath)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.ChunkTTL)
	assert.Equal(t, 8, cfg.TaskConcurrency)
	assert.Equal(t, []string{"http://localhost:3000", "https://interview.example.com"}, cfg.CORSOrigins)
}

func TestLoadYAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ivc.yaml")
	content := `
port: "7000"
database:
  driver: postgres
  url: postgres://localhost/interviews?sslmode=disable
questions_count: 7
temporal:
  task_queue: closeout-test
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("IVC_CONFIG", path)
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("INTERVIEW_QUESTIONS_COUNT", "")
	t.Setenv("TASK_QUEUE", "")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 7, cfg.QuestionsCount)
	assert.Equal(t, "closeout-test", cfg.Temporal.TaskQueue)
	// untouched keys keep defaults
	assert.Equal(t, DefaultTemporalHost, cfg.Temporal.HostPort)
}

func TestLoadInvalidEnvironment(t *testing.T) {
	testCases := []struct {
		name          string
		key           string
		value         string
		errorContains string
	}{
		{"bad duration", "CHUNK_TTL", "soon", "invalid CHUNK_TTL"},
		{"bad integer", "TASK_CONCURRENCY", "many", "invalid TASK_CONCURRENCY"},
		{"bad driver", "DATABASE_DRIVER", "mongo", "unsupported database driver"},
		{"bad port", "PORT", "99999", "port invalid"},
		{"bad api key", "OPENAI_API_KEY", "not-a-key", "must start with 'sk-'"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("IVC_CONFIG", "")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty media root", func(c *Config) { c.MediaStoragePath = " " }, true},
		{"zero chunk ttl", func(c *Config) { c.ChunkTTL = 0 }, true},
		{"provider timeout too large", func(c *Config) { c.ProviderTimeout = time.Hour }, true},
		{"zero concurrency", func(c *Config) { c.TaskConcurrency = 0 }, true},
		{"zero questions", func(c *Config) { c.QuestionsCount = 0 }, true},
		{"postgres", func(c *Config) { c.Database.Driver = "postgres" }, false},
		{"temporal closeout", func(c *Config) { c.CloseoutBackend = CloseoutTemporal }, false},
		{"unknown closeout", func(c *Config) { c.CloseoutBackend = "cron" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
