package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"interview-capture/internal/app/api"
	"interview-capture/internal/app/api/openai"
	"interview-capture/internal/app/api/openai/chat"
	"interview-capture/internal/app/api/openai/whisper"
	"interview-capture/internal/app/audio"
	"interview-capture/internal/app/chunkindex"
	"interview-capture/internal/app/closeout"
	"interview-capture/internal/app/evaluation"
	"interview-capture/internal/app/evaluation/nonverbal"
	"interview-capture/internal/app/ingest"
	"interview-capture/internal/app/merge"
	"interview-capture/internal/app/metrics"
	"interview-capture/internal/app/model"
	"interview-capture/internal/app/report"
	"interview-capture/internal/app/repository"
	"interview-capture/internal/app/repository/pg"
	"interview-capture/internal/app/repository/sqlite"
	"interview-capture/internal/app/session"
	"interview-capture/internal/app/storage/media"
	"interview-capture/internal/app/storage/objectstore"
	"interview-capture/internal/app/tasks"
	"interview-capture/internal/app/temporal/pkg/common"
	"interview-capture/internal/app/transcript"
	"interview-capture/internal/config"
)

const sweepInterval = time.Minute

// Container holds every long-lived component of a running process
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	Store      *repository.CommonDB
	Disk       *media.Disk
	ChunkStore chunkindex.Store
	Index      *chunkindex.Index
	Tracker    *tasks.Tracker
	Ingest     *ingest.Service
	Merge      *merge.Coordinator
	Assembler  *transcript.Assembler
	Evaluator  *evaluation.Orchestrator
	Reports    *report.Generator
	Closeout   *closeout.Runner
	Sessions   *session.Service
}

// HealthChecks returns the dependency probes served on /health
func (c *Container) HealthChecks() map[string]func(ctx context.Context) error {
	checks := map[string]func(ctx context.Context) error{
		"database": func(ctx context.Context) error { return c.Store.DB().PingContext(ctx) },
	}
	if p, ok := c.ChunkStore.(interface{ Ping(context.Context) error }); ok {
		checks["chunk_index"] = p.Ping
	}
	return checks
}

// ProviderSet wires a Container from a config, a logger and a context
var ProviderSet = wire.NewSet(
	provideMetrics,
	provideStore,
	provideDisk,
	provideChunkStore,
	provideChunkIndex,
	provideMirror,
	provideOpenAIClient,
	provideTranscriptionAdapter,
	provideTracker,
	provideEncoder,
	provideMergeCoordinator,
	provideAssembler,
	provideReportGenerator,
	provideOrchestrator,
	provideCloseoutRunner,
	provideCloseoutScheduler,
	provideSessionService,
	provideIngestService,
	wire.Struct(new(Container), "*"),
)

func provideMetrics() *metrics.Metrics {
	return metrics.New()
}

func provideStore(ctx context.Context, cfg *config.Config) (*repository.CommonDB, func(), error) {
	var (
		store *repository.CommonDB
		err   error
	)
	switch cfg.Database.Driver {
	case "postgres":
		store, err = pg.Open(ctx, cfg.Database.URL)
	default:
		store, err = sqlite.Open(ctx, cfg.Database.URL)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s record store: %w", cfg.Database.Driver, err)
	}
	return store, func() { store.Close() }, nil
}

func provideDisk(cfg *config.Config) (*media.Disk, error) {
	return media.NewDisk(cfg.MediaStoragePath)
}

// provideChunkStore uses Redis when an address is configured, otherwise an in-memory store
func provideChunkStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (chunkindex.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		logger.Info("chunk index in memory; fragments do not survive a restart")
		mem := chunkindex.NewMemoryStore()
		sweepCtx, cancel := context.WithCancel(context.Background())
		mem.StartSweeper(sweepCtx, sweepInterval)
		return mem, cancel, nil
	}
	rs, err := chunkindex.NewRedisStore(ctx, chunkindex.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { rs.Close() }, nil
}

func provideChunkIndex(store chunkindex.Store, cfg *config.Config) *chunkindex.Index {
	return chunkindex.NewIndex(store, cfg.ChunkTTL)
}

// provideMirror returns a nil Mirror when no MinIO endpoint is configured
func provideMirror(ctx context.Context, cfg *config.Config) (objectstore.Mirror, error) {
	if cfg.Minio.Endpoint == "" {
		return nil, nil
	}
	m, err := objectstore.NewMinioMirror(ctx, objectstore.Options{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// provideOpenAIClient returns nil without an API key; transcription and scoring then fall back
func provideOpenAIClient(cfg *config.Config) *goopenai.Client {
	if cfg.OpenAI.APIKey == "" {
		return nil
	}
	return openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
}

func provideTranscriptionAdapter(client *goopenai.Client, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *api.TranscriptionAdapter {
	var t api.Transcriber
	if client != nil {
		t = whisper.NewRemoteTranscriber(client, cfg.OpenAI.Language)
	}
	return api.NewTranscriptionAdapter(t, api.AdapterOptions{
		ChunkTimeout: cfg.ProviderTimeout,
		FinalTimeout: cfg.FinalTranscribeTimeout,
		Logger:       logger,
		Metrics:      m,
	})
}

func provideTracker(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*tasks.Tracker, func()) {
	tracker := tasks.NewTracker(cfg.TaskConcurrency, logger, m)
	return tracker, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := tracker.Shutdown(ctx); err != nil {
			logger.Warn("background tasks still running at shutdown", zap.Error(err))
		}
	}
}

func provideEncoder(cfg *config.Config) audio.Encoder {
	return audio.NewFFmpeg(cfg.EncoderTimeout)
}

func provideMergeCoordinator(store *repository.CommonDB, disk *media.Disk, encoder audio.Encoder, tracker *tasks.Tracker, mirror objectstore.Mirror, logger *zap.Logger, m *metrics.Metrics) *merge.Coordinator {
	return merge.NewCoordinator(store, disk, encoder, tracker, merge.Options{Mirror: mirror, Logger: logger, Metrics: m})
}

func provideAssembler(index *chunkindex.Index, store *repository.CommonDB, disk *media.Disk, adapter *api.TranscriptionAdapter, logger *zap.Logger) *transcript.Assembler {
	return transcript.NewAssembler(index, store, store, disk, adapter, logger)
}

func provideReportGenerator(store *repository.CommonDB, disk *media.Disk, tracker *tasks.Tracker, mirror objectstore.Mirror, logger *zap.Logger) *report.Generator {
	return report.NewGenerator(store, disk, tracker, report.Options{Mirror: mirror, Logger: logger})
}

func provideOrchestrator(store *repository.CommonDB, client *goopenai.Client, reports *report.Generator, cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *evaluation.Orchestrator {
	var scorer evaluation.AnswerScorer
	if client != nil {
		scorer = chat.NewScorer(client, cfg.OpenAI.ScoringModel, model.VerbalCriteria)
	}
	return evaluation.NewOrchestrator(store, scorer, evaluation.Options{
		Analyzer:     nonverbal.NewPlaceholder(),
		Reports:      reports,
		ScoreTimeout: cfg.ProviderTimeout,
		Logger:       logger,
		Metrics:      m,
	})
}

func provideCloseoutRunner(coord *merge.Coordinator, assembler *transcript.Assembler, orch *evaluation.Orchestrator, tracker *tasks.Tracker, cfg *config.Config, logger *zap.Logger) *closeout.Runner {
	return closeout.NewRunner(coord, assembler, orch, tracker, cfg.QuestionsCount, logger)
}

// provideCloseoutScheduler picks the in-process runner or the Temporal workflow
func provideCloseoutScheduler(cfg *config.Config, runner *closeout.Runner, logger *zap.Logger) (session.CloseoutScheduler, func(), error) {
	if cfg.CloseoutBackend != config.CloseoutTemporal {
		return runner, func() {}, nil
	}
	c, err := common.NewTemporalClient(cfg.Temporal, logger)
	if err != nil {
		return nil, nil, err
	}
	return common.NewCloseoutStarter(c, cfg.Temporal.TaskQueue), c.Close, nil
}

func provideSessionService(store *repository.CommonDB, assembler *transcript.Assembler, scheduler session.CloseoutScheduler, client *goopenai.Client, cfg *config.Config, logger *zap.Logger) *session.Service {
	var questions session.QuestionGenerator
	if client != nil {
		questions = chat.NewQuestionGenerator(client, cfg.OpenAI.ScoringModel)
	}
	return session.NewService(store, session.Options{
		Transcripts:   assembler,
		Closeout:      scheduler,
		Questions:     questions,
		QuestionCount: cfg.QuestionsCount,
		Logger:        logger,
	})
}

func provideIngestService(store *repository.CommonDB, disk *media.Disk, index *chunkindex.Index, adapter *api.TranscriptionAdapter, logger *zap.Logger, m *metrics.Metrics) *ingest.Service {
	return ingest.NewService(store, disk, index, adapter, logger, m)
}

// Build assembles a Container by hand in the order wire would. The returned
// cleanup releases resources in reverse order of acquisition.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*Container, func(), error) {
		cleanup()
		return nil, nil, err
	}

	m := provideMetrics()
	store, closeStore, err := provideStore(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeStore)

	disk, err := provideDisk(cfg)
	if err != nil {
		return fail(err)
	}
	chunkStore, closeChunks, err := provideChunkStore(ctx, cfg, logger)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeChunks)
	index := provideChunkIndex(chunkStore, cfg)

	mirror, err := provideMirror(ctx, cfg)
	if err != nil {
		return fail(err)
	}
	client := provideOpenAIClient(cfg)
	adapter := provideTranscriptionAdapter(client, cfg, logger, m)

	tracker, stopTracker := provideTracker(cfg, logger, m)
	cleanups = append(cleanups, stopTracker)

	coord := provideMergeCoordinator(store, disk, provideEncoder(cfg), tracker, mirror, logger, m)
	assembler := provideAssembler(index, store, disk, adapter, logger)
	reports := provideReportGenerator(store, disk, tracker, mirror, logger)
	orch := provideOrchestrator(store, client, reports, cfg, logger, m)
	runner := provideCloseoutRunner(coord, assembler, orch, tracker, cfg, logger)

	scheduler, closeScheduler, err := provideCloseoutScheduler(cfg, runner, logger)
	if err != nil {
		return fail(err)
	}
	cleanups = append(cleanups, closeScheduler)

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    m,
		Store:      store,
		Disk:       disk,
		ChunkStore: chunkStore,
		Index:      index,
		Tracker:    tracker,
		Ingest:     provideIngestService(store, disk, index, adapter, logger, m),
		Merge:      coord,
		Assembler:  assembler,
		Evaluator:  orch,
		Reports:    reports,
		Closeout:   runner,
		Sessions:   provideSessionService(store, assembler, scheduler, client, cfg, logger),
	}, cleanup, nil
}
