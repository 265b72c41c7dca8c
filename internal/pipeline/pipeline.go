package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/couchcryptid/rainfall-features/internal/observability"
	"github.com/couchcryptid/rainfall-features/internal/report"
	"github.com/google/uuid"
)

// Extractor reads the raw rainfall dataset from its source.
type Extractor interface {
	Extract(ctx context.Context) (domain.Dataset, error)
}

// Transformer turns a raw dataset into the encoded, scaled feature table.
type Transformer interface {
	Transform(ctx context.Context, ds domain.Dataset) (domain.Result, error)
}

// Loader writes a prepared result to one destination.
type Loader interface {
	Name() string
	Load(ctx context.Context, res domain.Result) error
}

// locator is implemented by stages that know where they read or write.
type locator interface {
	Location() string
}

// Pipeline runs the extract-transform-load stages as a single batch.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics

	mu    sync.Mutex // one run at a time
	ready atomic.Bool
	last  atomic.Pointer[report.Summary]
}

// New creates a Pipeline with the given stages and observability. Loaders
// run in the order given.
func New(e Extractor, t Transformer, logger *slog.Logger, metrics *observability.Metrics, loaders ...Loader) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastSummary returns the summary of the most recent successful run.
func (p *Pipeline) LastSummary() (report.Summary, bool) {
	s := p.last.Load()
	if s == nil {
		return report.Summary{}, false
	}
	return *s, true
}

// Run executes one full batch: extract, transform, then every loader in turn.
// The first failing stage ends the run; nothing is retried.
func (p *Pipeline) Run(ctx context.Context) (report.Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runID := uuid.NewString()
	started := domain.Now()
	logger := p.logger.With("run_id", runID)
	logger.Info("preparation started")

	res, err := p.run(ctx, logger, runID)
	finished := domain.Now()
	p.metrics.RunDuration.Observe(finished.Sub(started).Seconds())

	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, domain.ErrSchema) {
			p.metrics.SchemaErrors.Inc()
		}
		logger.Error("preparation failed", "error", err)
		return report.Summary{}, err
	}

	summary := report.FromResult(res)
	summary.StartedAt = started
	summary.FinishedAt = finished
	if l, ok := p.extractor.(locator); ok {
		summary.Input = l.Location()
	}
	for _, ld := range p.loaders {
		out := ld.Name()
		if l, ok := ld.(locator); ok {
			out += ": " + l.Location()
		}
		summary.Outputs = append(summary.Outputs, out)
	}

	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.FeatureColumns.Set(float64(len(res.Features)))
	p.metrics.DegenerateCols.Set(float64(len(res.Degenerate)))
	p.metrics.LastSuccessTime.Set(float64(finished.Unix()))
	p.last.Store(&summary)
	p.ready.Store(true)

	logger.Info("preparation finished",
		"rows", summary.Rows,
		"columns", summary.ColumnsAfter,
		"features", summary.FeatureCount,
		"duration", summary.Duration(),
	)
	return summary, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger, runID string) (domain.Result, error) {
	ds, err := p.extractor.Extract(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("extract: %w", err)
	}
	p.metrics.RowsRead.Add(float64(len(ds.Records)))
	logger.Debug("dataset extracted", "rows", len(ds.Records), "extra_columns", ds.ExtraColumns)

	res, err := p.transformer.Transform(ctx, ds)
	if err != nil {
		return domain.Result{}, fmt.Errorf("transform: %w", err)
	}
	res.RunID = runID
	if len(res.Degenerate) > 0 {
		logger.Warn("constant columns scaled to zero", "columns", res.Degenerate)
	}

	for _, ld := range p.loaders {
		if err := ctx.Err(); err != nil {
			return domain.Result{}, err
		}
		if err := ld.Load(ctx, res); err != nil {
			p.metrics.LoadErrors.WithLabelValues(ld.Name()).Inc()
			return domain.Result{}, fmt.Errorf("load %s: %w", ld.Name(), err)
		}
		logger.Debug("result loaded", "loader", ld.Name())
	}
	if res.Table != nil {
		p.metrics.RowsWritten.Add(float64(res.Table.Rows))
	}
	return res, nil
}
