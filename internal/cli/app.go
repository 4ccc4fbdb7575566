package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/adapter/repository"
	domainrepo "github.com/johnquangdev/ifocus/internal/domain/repositories"
	"github.com/johnquangdev/ifocus/internal/infrastructure/cache"
	"github.com/johnquangdev/ifocus/internal/infrastructure/database"
	"github.com/johnquangdev/ifocus/internal/infrastructure/heatmap"
	"github.com/johnquangdev/ifocus/internal/infrastructure/messaging"
	"github.com/johnquangdev/ifocus/internal/infrastructure/storage"
	"github.com/johnquangdev/ifocus/internal/usecase/focus"
	"github.com/johnquangdev/ifocus/internal/usecase/insight"
	pkgai "github.com/johnquangdev/ifocus/pkg/ai"
	"github.com/johnquangdev/ifocus/pkg/config"
	"github.com/johnquangdev/ifocus/pkg/logger"
)

// app owns the configuration, logger and every collaborator a command opens
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	closers []func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")

	cfg, err := config.Load(envFiles...)
	if err != nil {
		return nil, apperrors.ErrInvalidArgument("invalid configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, apperrors.ErrInvalidArgument(err.Error())
	}

	return &app{cfg: cfg, logger: log.With(zap.String("command", cmd.Name()))}, nil
}

// Close releases collaborators in reverse opening order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("Failed to close resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *app) openDB() (*gorm.DB, error) {
	db, err := database.NewPostgresDB(a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.onClose(func() error { return database.CloseDB(db) })
	return db, nil
}

func (a *app) openStore() (domainrepo.Store, error) {
	if a.cfg.Database.Driver == "sqlite" {
		a.logger.Info("📦 Opening SQLite database", zap.String("path", a.cfg.Database.Path))
		store, err := repository.OpenSQLite(a.cfg.Database.Path)
		if err != nil {
			return nil, apperrors.ErrDBConnectionFailed(err)
		}
		a.onClose(store.Close)
		return store, nil
	}

	db, err := a.openDB()
	if err != nil {
		return nil, err
	}
	if a.cfg.Database.AutoMigrate {
		if _, err := database.Migrate(db, a.logger); err != nil {
			return nil, err
		}
	}
	return repository.NewGormFocusRepository(db), nil
}

func (a *app) openSink(ctx context.Context) (insight.HeatmapSink, error) {
	if a.cfg.Storage.Type == "minio" {
		a.logger.Info("📦 Connecting to MinIO", zap.String("endpoint", a.cfg.Storage.Endpoint))
		return storage.NewMinIOSink(ctx, &a.cfg.Storage)
	}
	return storage.NewLocalSink(a.cfg.Storage.Dir), nil
}

func (a *app) openClaimer() (insight.Claimer, error) {
	if a.cfg.RedisEnabled() {
		a.logger.Info("📦 Connecting to Redis", zap.String("addr", a.cfg.Redis.Addr))
		client, err := cache.NewRedisClient(a.cfg)
		if err != nil {
			return nil, err
		}
		a.onClose(client.Close)
		return cache.NewRedisClaimer(client, "ifocus:claim:"), nil
	}

	store := cache.NewMemoryStore()
	a.onClose(func() error { store.Close(); return nil })
	return cache.NewMemoryClaimer(store), nil
}

func (a *app) openPublisher() insight.ReportPublisher {
	if !a.cfg.KafkaEnabled() {
		return nil
	}
	a.logger.Info("📦 Publishing report events", zap.Strings("brokers", a.cfg.Kafka.Brokers), zap.String("topic", a.cfg.Kafka.Topic))
	publisher := messaging.NewKafkaReportPublisher(a.cfg.Kafka.Brokers, a.cfg.Kafka.Topic)
	a.onClose(publisher.Close)
	return publisher
}

func (a *app) renderer() *heatmap.Renderer {
	return heatmap.NewRenderer(a.cfg.Heatmap.Bins)
}

func (a *app) newInsightService(ctx context.Context) (*insight.Service, error) {
	store, err := a.openStore()
	if err != nil {
		return nil, err
	}
	sink, err := a.openSink(ctx)
	if err != nil {
		return nil, err
	}
	claimer, err := a.openClaimer()
	if err != nil {
		return nil, err
	}
	generator, err := pkgai.NewTextGenerator(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	a.logger.Info("🤖 Text generation backend", zap.String("backend", generator.Name()))

	opts := insight.Options{
		Concurrency: a.cfg.Worker.Concurrency,
		JobTimeout:  a.cfg.Worker.JobTimeout,
		MaxRetries:  a.cfg.Worker.MaxRetries,
		ClaimTTL:    a.cfg.Worker.ClaimTTL,
		Focus:       focus.DefaultOptions(),
	}
	return insight.NewService(store, generator, sink, a.renderer(), claimer, a.openPublisher(), opts, a.logger), nil
}
