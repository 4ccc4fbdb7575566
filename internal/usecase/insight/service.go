package insight

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/ifocus/internal/domain/entities"
	domainrepo "github.com/johnquangdev/ifocus/internal/domain/repositories"
	"github.com/johnquangdev/ifocus/internal/infrastructure/heatmap"
	"github.com/johnquangdev/ifocus/internal/usecase/focus"
	pkgai "github.com/johnquangdev/ifocus/pkg/ai"
)

// HeatmapSink stores rendered heatmaps and returns where they ended up
type HeatmapSink interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// HeatmapRenderer draws a batch as a heatmap document
type HeatmapRenderer interface {
	RenderBatch(title string, batch entities.Batch) ([]byte, error)
}

// Claimer hands out short-lived exclusive claims on pairs
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ReportPublisher announces finished reports
type ReportPublisher interface {
	Publish(ctx context.Context, event *entities.ReportEvent) error
}

// Options tunes the insight runs
type Options struct {
	Concurrency int
	JobTimeout  time.Duration
	MaxRetries  int
	ClaimTTL    time.Duration
	Focus       focus.Options
}

// DefaultOptions mirrors the configuration defaults
func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
		JobTimeout:  5 * time.Minute,
		MaxRetries:  3,
		ClaimTTL:    10 * time.Minute,
		Focus:       focus.DefaultOptions(),
	}
}

// Service generates heatmaps and insights for enrollments and assignments
type Service struct {
	store     domainrepo.Store
	generator pkgai.TextGenerator
	sink      HeatmapSink
	renderer  HeatmapRenderer
	claimer   Claimer
	publisher ReportPublisher
	opts      Options
	logger    *zap.Logger
}

// NewService wires the insight pipelines. publisher may be nil; a nil
// renderer falls back to the default HTML heatmap renderer.
func NewService(
	store domainrepo.Store,
	generator pkgai.TextGenerator,
	sink HeatmapSink,
	renderer HeatmapRenderer,
	claimer Claimer,
	publisher ReportPublisher,
	opts Options,
	logger *zap.Logger,
) *Service {
	defaults := DefaultOptions()
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaults.Concurrency
	}
	if opts.ClaimTTL <= 0 {
		opts.ClaimTTL = defaults.ClaimTTL
	}
	if opts.Focus.GridSize <= 0 {
		opts.Focus = defaults.Focus
	}
	if renderer == nil {
		renderer = heatmap.NewRenderer(heatmap.DefaultBins)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:     store,
		generator: generator,
		sink:      sink,
		renderer:  renderer,
		claimer:   claimer,
		publisher: publisher,
		opts:      opts,
		logger:    logger,
	}
}
