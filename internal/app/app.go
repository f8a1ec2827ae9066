package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/swingscan/internal/batch"
	"github.com/newthinker/swingscan/internal/collector"
	"github.com/newthinker/swingscan/internal/collector/localcsv"
	"github.com/newthinker/swingscan/internal/collector/yahoo"
	"github.com/newthinker/swingscan/internal/config"
	"github.com/newthinker/swingscan/internal/core"
	"github.com/newthinker/swingscan/internal/metrics"
	"github.com/newthinker/swingscan/internal/report"
	"github.com/newthinker/swingscan/internal/signal"
	"github.com/newthinker/swingscan/internal/storage/archive"
	"github.com/newthinker/swingscan/internal/universe"
	"go.uber.org/zap"
)

// Report summarizes one run
type Report struct {
	RunID     string
	Tickers   int
	Rows      int
	Skipped   []core.Skip
	Published bool
	Key       string
}

// App is the main application orchestrator
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	loc        *time.Location
	collectors *collector.Registry
	store      archive.Storage
	metrics    *metrics.Registry
	clock      func() time.Time

	mu      sync.Mutex
	running bool
}

// Option overrides a component App would otherwise build from config
type Option func(*App)

// WithCollector registers c and selects it as the provider
func WithCollector(c collector.Collector) Option {
	return func(a *App) {
		a.collectors.Register(c)
		a.cfg.Collector.Provider = c.Name()
	}
}

// WithStorage sets the snapshot storage
func WithStorage(s archive.Storage) Option {
	return func(a *App) { a.store = s }
}

// WithMetrics sets the metrics registry
func WithMetrics(m *metrics.Registry) Option {
	return func(a *App) { a.metrics = m }
}

// WithClock sets the time source
func WithClock(clock func() time.Time) Option {
	return func(a *App) { a.clock = clock }
}

// New creates a new App instance. cfg is copied and must be valid.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := *cfg
	a := &App{
		cfg:        &c,
		logger:     logger,
		loc:        loc,
		collectors: collector.NewRegistry(),
		clock:      time.Now,
	}

	a.collectors.Register(yahoo.New(yahoo.Options{
		BaseURL:  c.Collector.BaseURL,
		Timeout:  c.Collector.Timeout,
		Location: loc,
	}))
	if c.Collector.Dir != "" {
		a.collectors.Register(localcsv.New(c.Collector.Dir, loc))
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.store == nil {
		store, err := NewStorage(a.cfg.Storage)
		if err != nil {
			return nil, err
		}
		a.store = store
	}
	if a.metrics == nil {
		a.metrics = metrics.NewRegistry()
	}

	return a, nil
}

// NewStorage builds the archive storage selected by cfg
func NewStorage(cfg config.StorageConfig) (archive.Storage, error) {
	switch cfg.Type {
	case "localfs":
		store, err := archive.NewLocalFS(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("creating local storage: %w", err)
		}
		return store, nil
	case "s3":
		store, err := archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("creating s3 storage: %w", err)
		}
		return store, nil
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage type %q", cfg.Type))
	}
}

// Sink returns the result sink over the configured storage
func (a *App) Sink() *report.Sink {
	header, err := report.HeaderByName(a.cfg.Output.Header)
	if err != nil {
		a.logger.Warn("unknown header, using english", zap.String("header", a.cfg.Output.Header))
		header = report.HeaderEnglish
	}
	return report.NewSink(a.store, report.SinkConfig{
		Key:          a.cfg.Output.Key,
		Header:       header,
		ArchiveDaily: a.cfg.Output.ArchiveDaily,
	}, a.logger)
}

// Metrics returns the metrics registry
func (a *App) Metrics() *metrics.Registry {
	return a.metrics
}

// Run performs one batch: load the universe, analyze every ticker, publish
// the table. The sink is not contacted when there is nothing to publish.
func (a *App) Run(ctx context.Context) (Report, error) {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return Report{}, fmt.Errorf("run already in progress")
	}
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	rep := Report{RunID: uuid.NewString(), Key: a.cfg.Output.Key, Skipped: []core.Skip{}}
	log := a.logger.With(zap.String("run_id", rep.RunID))
	started := a.clock()

	src, err := a.collectors.Resolve(a.cfg.Collector.Provider)
	if err != nil {
		return rep, core.WrapError(core.ErrConfigInvalid, err)
	}

	tickers, err := universe.Load(a.cfg.Universe.Path, universe.Columns{
		Code: a.cfg.Universe.CodeColumn,
		Name: a.cfg.Universe.NameColumn,
	})
	if err != nil {
		return rep, err
	}
	rep.Tickers = len(tickers)
	a.metrics.RecordRunStart(len(tickers))

	log.Info("run started",
		zap.Int("tickers", len(tickers)),
		zap.String("provider", src.Name()),
		zap.Int("workers", a.cfg.Batch.Workers),
	)

	defer a.writeMetrics(log)

	if len(tickers) == 0 {
		log.Info("universe is empty, nothing to publish")
		a.metrics.RecordRun(0, a.clock().Sub(started))
		a.metrics.RecordPublish(metrics.StatusEmpty, a.clock())
		return rep, nil
	}

	clock := func() time.Time { return a.clock().In(a.loc) }
	runner := batch.New(src, signal.New(clock), batch.Config{
		SymbolSuffix: a.cfg.Collector.SymbolSuffix,
		LookbackDays: a.cfg.Collector.LookbackDays,
		Workers:      a.cfg.Batch.Workers,
	}, log, batch.WithRecorder(a.metrics), batch.WithClock(clock))

	res := runner.Run(ctx, tickers)
	rep.Rows = len(res.Rows)
	rep.Skipped = res.Skipped
	a.metrics.RecordRun(len(res.Rows), a.clock().Sub(started))

	if len(res.Rows) == 0 {
		log.Warn("no rows produced, nothing to publish", zap.Int("skipped", len(res.Skipped)))
		a.metrics.RecordPublish(metrics.StatusEmpty, a.clock())
		return rep, nil
	}

	pub, err := a.Sink().Publish(ctx, res.Rows, clock())
	if err != nil {
		a.metrics.RecordPublish(metrics.StatusFailed, a.clock())
		log.Error("publish failed", zap.Int("rows", len(res.Rows)), zap.Error(err))
		return rep, err
	}
	a.metrics.RecordPublish(metrics.StatusPublished, a.clock())
	rep.Published = true

	log.Info("run finished",
		zap.Int("rows", rep.Rows),
		zap.Int("skipped", len(rep.Skipped)),
		zap.String("key", pub.Key),
		zap.Int("bytes", pub.Bytes),
		zap.Duration("elapsed", a.clock().Sub(started)),
	)
	return rep, nil
}

func (a *App) writeMetrics(log *zap.Logger) {
	if a.cfg.Metrics.Textfile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		log.Warn("metrics not written", zap.Error(err))
	}
}
