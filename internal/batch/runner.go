// Package batch runs the signal extraction over a ticker universe.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/swingscan/internal/collector"
	"github.com/newthinker/swingscan/internal/core"
	"github.com/newthinker/swingscan/internal/metrics"
	"github.com/newthinker/swingscan/internal/signal"
	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"
)

// Recorder receives per-ticker measurements
type Recorder interface {
	RecordTicker(outcome string)
	ObserveFetch(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordTicker(string)        {}
func (nopRecorder) ObserveFetch(time.Duration) {}

// Config holds runner settings
type Config struct {
	SymbolSuffix string // appended to each ticker code, e.g. ".T"
	LookbackDays int    // history window ending now
	Workers      int    // tickers analyzed concurrently; 1 is sequential
}

// Result is the outcome of one run. Rows and Skipped are in universe order.
type Result struct {
	Rows    []core.TickerSignal
	Skipped []core.Skip
}

// Runner fetches and analyzes each ticker of a universe
type Runner struct {
	collector collector.Collector
	extractor *signal.Extractor
	cfg       Config
	logger    *zap.Logger
	recorder  Recorder
	clock     func() time.Time
}

// Option configures a Runner
type Option func(*Runner)

// WithRecorder sets the metrics recorder
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithClock sets the time source of the history window
func WithClock(clock func() time.Time) Option {
	return func(r *Runner) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// New creates a runner
func New(c collector.Collector, ex *signal.Extractor, cfg Config, logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	r := &Runner{
		collector: c,
		extractor: ex,
		cfg:       cfg,
		logger:    logger,
		recorder:  nopRecorder{},
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// outcome of one ticker; exactly one of sig and skip is set
type outcome struct {
	sig  *core.TickerSignal
	skip error
}

// Run analyzes every ticker. A failing ticker is logged and skipped; it
// never aborts the batch. Once ctx is done the remaining tickers are
// skipped without being fetched.
func (r *Runner) Run(ctx context.Context, tickers []core.Ticker) Result {
	end := r.clock()
	start := end.AddDate(0, 0, -r.cfg.LookbackDays)

	mapper := iter.Mapper[core.Ticker, outcome]{MaxGoroutines: r.cfg.Workers}
	outcomes := mapper.Map(tickers, func(t *core.Ticker) outcome {
		return r.analyze(ctx, *t, start, end)
	})

	res := Result{Rows: []core.TickerSignal{}, Skipped: []core.Skip{}}
	for i, o := range outcomes {
		if o.skip != nil {
			res.Skipped = append(res.Skipped, core.Skip{Ticker: tickers[i], Reason: o.skip.Error()})
			continue
		}
		res.Rows = append(res.Rows, *o.sig)
	}

	r.logger.Info("batch finished",
		zap.Int("tickers", len(tickers)),
		zap.Int("rows", len(res.Rows)),
		zap.Int("skipped", len(res.Skipped)),
		zap.Int("workers", r.cfg.Workers),
	)
	return res
}

func (r *Runner) analyze(ctx context.Context, t core.Ticker, start, end time.Time) outcome {
	o := r.extract(ctx, t, start, end)
	if o.skip != nil {
		r.recorder.RecordTicker(metrics.OutcomeSkipped)
		r.logger.Warn("ticker skipped",
			zap.String("code", t.Code),
			zap.String("name", t.Name),
			zap.Error(o.skip),
		)
		return o
	}

	r.recorder.RecordTicker(metrics.OutcomeAnalyzed)
	r.logger.Debug("ticker analyzed",
		zap.String("code", t.Code),
		zap.Int64("price", o.sig.LatestPrice),
		zap.Int("day20_direction", o.sig.Day20Direction),
		zap.Int("day20_streak", o.sig.Day20StreakLength),
	)
	return o
}

func (r *Runner) extract(ctx context.Context, t core.Ticker, start, end time.Time) outcome {
	if err := ctx.Err(); err != nil {
		return outcome{skip: fmt.Errorf("cancelled: %w", err)}
	}

	symbol := t.Code + r.cfg.SymbolSuffix
	began := time.Now()
	bars, err := r.collector.FetchHistory(ctx, symbol, start, end)
	r.recorder.ObserveFetch(time.Since(began))
	if err != nil {
		return outcome{skip: core.WrapError(core.ErrCollectorFailed, fmt.Errorf("%s: %w", symbol, err))}
	}
	if len(bars) == 0 {
		return outcome{skip: core.WrapError(core.ErrNoData, fmt.Errorf("%s", symbol))}
	}

	sig, err := r.extractor.Extract(t, bars)
	if err != nil {
		return outcome{skip: err}
	}
	return outcome{sig: sig}
}
