package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/johnquangdev/meeting-analyzer/internal/adapter/handler"
	"github.com/johnquangdev/meeting-analyzer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/observability"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/storage"
	"github.com/johnquangdev/meeting-analyzer/internal/usecase/analysis"
	"github.com/johnquangdev/meeting-analyzer/pkg/ai"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	"github.com/johnquangdev/meeting-analyzer/pkg/retry"
)

const cachePrefix = "meeting-analyzer:"

func newLogger(production, verbose bool) (*zap.Logger, error) {
	if production && !verbose {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func retryPolicy(cfg *config.Config) retry.Policy {
	p := retry.DefaultPolicy()
	p.MaxAttempts = cfg.Retry.MaxAttempts
	p.BaseInterval = cfg.Retry.BaseInterval
	p.MaxInterval = cfg.Retry.MaxInterval
	return p
}

// newCompleter builds the configured language-model backend
func newCompleter(ctx context.Context, cfg *config.Config) (analysis.Completer, error) {
	switch cfg.LLM.Provider {
	case config.ProviderGemini:
		return ai.NewGeminiClient(ctx, ai.GeminiConfig{
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		})
	case config.ProviderOpenAI:
		return ai.NewChatClient(ai.ChatConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLMAttemptTimeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// pipeline is the wired analysis service plus what it depends on
type pipeline struct {
	service *analysis.Service
	locker  *cache.Locker
	checks  map[string]handler.HealthChecker
	closers []func()
}

func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

func newPipeline(ctx context.Context, cfg *config.Config, db *gorm.DB, logger *zap.Logger, metrics *observability.Metrics) (*pipeline, error) {
	p := &pipeline{checks: make(map[string]handler.HealthChecker)}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}
	p.checks["database"] = sqlDB.PingContext

	var store cache.Store
	if cfg.Redis.Enabled {
		logger.Info("📦 Connecting to Redis...", zap.String("addr", cfg.GetRedisAddr()))
		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.closers = append(p.closers, func() { _ = client.Close() })
		p.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		store = cache.NewRedisStore(client, cachePrefix)
	} else {
		logger.Info("⚠️  Redis disabled, using in-process lock and cache")
		mem := cache.NewMemoryStore(time.Minute)
		p.closers = append(p.closers, mem.Close)
		store = mem
	}
	p.locker = cache.NewLocker(store, "lock:")

	var archive analysis.Archive
	if cfg.Storage.Enabled {
		logger.Info("🗄️  Connecting to MinIO...", zap.String("endpoint", cfg.Storage.Endpoint))
		client, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			p.Close()
			return nil, err
		}
		p.checks["storage"] = client.Ping
		archive = client
	}

	completer, err := newCompleter(ctx, cfg)
	if err != nil {
		p.Close()
		return nil, err
	}
	policy := retryPolicy(cfg)
	logger.Info("🤖 Language model configured",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", completer.Model()))

	p.service = analysis.NewService(analysis.Dependencies{
		Meetings:    repository.NewMeetingRepository(db),
		Transcripts: repository.NewTranscriptRepository(db),
		Analyses:    repository.NewAnalysisRepository(db),
		Extractor:   analysis.NewExtractor("", cfg.Server.MaxUploadBytes, logger),
		Validator:   analysis.NewValidator(),
		Requester:   analysis.NewRequester(completer, policy, logger, metrics).WithAttemptTimeout(cfg.LLMAttemptTimeout()),
		Locker:      p.locker,
		Cache:       cache.NewAnalysisCache(store, cfg.Analysis.CacheTTL),
		Archive:     archive,
		Logger:      logger,
		Metrics:     metrics,
	}, analysis.Options{
		LockTTL:        cfg.Analysis.LockTTL,
		LLMTimeout:     cfg.LLM.Timeout,
		PersistTimeout: cfg.Analysis.PersistTimeout,
		PersistPolicy:  policy,
	})
	return p, nil
}
