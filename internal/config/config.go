package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration of the service
type Config struct {
	Host             string `yaml:"host"`
	Port             string `yaml:"port"`
	Environment      string `yaml:"environment"`
	MediaStoragePath string `yaml:"media_storage_path"`
	// CORSOrigins lists the browser origins allowed to call the API; "*" allows any
	CORSOrigins []string `yaml:"cors_origins"`

	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Minio    MinioConfig    `yaml:"minio"`
	Temporal TemporalConfig `yaml:"temporal"`

	ChunkTTL               time.Duration `yaml:"chunk_ttl"`
	ProviderTimeout        time.Duration `yaml:"provider_timeout"`
	FinalTranscribeTimeout time.Duration `yaml:"final_transcribe_timeout"`
	EncoderTimeout         time.Duration `yaml:"encoder_timeout"`
	QuestionsCount         int           `yaml:"questions_count"`
	TaskConcurrency        int           `yaml:"task_concurrency"`
	// CloseoutBackend runs session closeout in process ("local") or as a Temporal workflow ("temporal")
	CloseoutBackend string `yaml:"closeout_backend"`
}

// DatabaseConfig selects the record store
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or postgres
	URL    string `yaml:"url"`
}

// RedisConfig configures the chunk index store. An empty Addr selects the in-memory store.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// OpenAIConfig configures transcription and scoring
type OpenAIConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Language     string `yaml:"language"`
	ScoringModel string `yaml:"scoring_model"`
}

// MinioConfig configures the optional artifact mirror. Disabled when Endpoint is empty.
type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// TemporalConfig holds Temporal client configuration
type TemporalConfig struct {
	HostPort  string `yaml:"host_port"`
	Namespace string `yaml:"namespace"`
	TaskQueue string `yaml:"task_queue"`
}

// Default returns a configuration populated with defaults only
func Default() *Config {
	return &Config{
		Host:             DefaultHost,
		Port:             DefaultHTTPPort,
		Environment:      DefaultEnvironment,
		MediaStoragePath: DefaultMediaStoragePath,
		CORSOrigins:      []string{"*"},
		Database: DatabaseConfig{
			Driver: DefaultDatabaseDriver,
			URL:    DefaultDatabaseURL,
		},
		OpenAI: OpenAIConfig{
			Language:     DefaultSTTLanguage,
			ScoringModel: DefaultScoringModel,
		},
		Minio: MinioConfig{
			Bucket: "interview-artifacts",
		},
		Temporal: TemporalConfig{
			HostPort:  DefaultTemporalHost,
			Namespace: DefaultTemporalNamespace,
			TaskQueue: DefaultTaskQueue,
		},
		ChunkTTL:               DefaultChunkTTL,
		ProviderTimeout:        DefaultProviderTimeout,
		FinalTranscribeTimeout: DefaultFinalTranscribeTimeout,
		EncoderTimeout:         DefaultEncoderTimeout,
		QuestionsCount:         DefaultQuestionsCount,
		TaskConcurrency:        DefaultTaskConcurrency,
		CloseoutBackend:        DefaultCloseoutBackend,
	}
}

// Load builds the configuration: defaults, then the YAML file named by IVC_CONFIG if set,
// then environment variables. The result is validated.
func Load() (*Config, error) {
	if err := LoadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("IVC_CONFIG")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(os.ExpandEnv(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Host, "HOST")
	setString(&c.Port, "PORT")
	setString(&c.Environment, "ENVIRONMENT")
	setString(&c.MediaStoragePath, "MEDIA_STORAGE_PATH")
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		c.CORSOrigins = splitList(v)
	}

	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.URL, "DATABASE_URL")

	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")

	setString(&c.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.OpenAI.BaseURL, "OPENAI_BASE_URL")
	setString(&c.OpenAI.Language, "STT_LANGUAGE")
	setString(&c.OpenAI.ScoringModel, "SCORING_MODEL")

	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Bucket, "MINIO_BUCKET")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		c.Minio.UseSSL = v == "true"
	}

	setString(&c.Temporal.HostPort, "TEMPORAL_HOST")
	setString(&c.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	setString(&c.Temporal.TaskQueue, "TASK_QUEUE")
	setString(&c.CloseoutBackend, "CLOSEOUT_BACKEND")

	var err error
	if c.Redis.DB, err = intEnv("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.QuestionsCount, err = intEnv("INTERVIEW_QUESTIONS_COUNT", c.QuestionsCount); err != nil {
		return err
	}
	if c.TaskConcurrency, err = intEnv("TASK_CONCURRENCY", c.TaskConcurrency); err != nil {
		return err
	}
	if c.ChunkTTL, err = durationEnv("CHUNK_TTL", c.ChunkTTL); err != nil {
		return err
	}
	if c.ProviderTimeout, err = durationEnv("PROVIDER_TIMEOUT", c.ProviderTimeout); err != nil {
		return err
	}
	if c.FinalTranscribeTimeout, err = durationEnv("FINAL_TRANSCRIBE_TIMEOUT", c.FinalTranscribeTimeout); err != nil {
		return err
	}
	if c.EncoderTimeout, err = durationEnv("ENCODER_TIMEOUT", c.EncoderTimeout); err != nil {
		return err
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if err := ValidatePort(c.Port, "HTTP"); err != nil {
		return err
	}
	if strings.TrimSpace(c.MediaStoragePath) == "" {
		return fmt.Errorf("media storage path is required")
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q (want sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database URL is required")
	}
	if c.ChunkTTL <= 0 {
		return fmt.Errorf("chunk TTL must be positive")
	}
	if err := ValidateTimeout(c.ProviderTimeout, "provider"); err != nil {
		return err
	}
	if err := ValidateTimeout(c.FinalTranscribeTimeout, "final transcription"); err != nil {
		return err
	}
	if err := ValidateTimeout(c.EncoderTimeout, "encoder"); err != nil {
		return err
	}
	if err := ValidateConcurrency(c.TaskConcurrency, "task"); err != nil {
		return err
	}
	switch c.CloseoutBackend {
	case CloseoutLocal, CloseoutTemporal:
	default:
		return fmt.Errorf("unsupported closeout backend %q (want local or temporal)", c.CloseoutBackend)
	}
	if c.QuestionsCount <= 0 {
		return fmt.Errorf("questions count must be positive")
	}
	if c.OpenAI.BaseURL != "" {
		if err := ValidateURL(c.OpenAI.BaseURL, "OpenAI"); err != nil {
			return err
		}
	}
	if c.OpenAI.APIKey != "" {
		if err := ValidateAPIKey(c.OpenAI.APIKey, "OpenAI"); err != nil {
			return err
		}
	}
	return nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
