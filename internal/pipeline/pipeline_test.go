package pipeline_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/couchcryptid/rainfall-features/internal/observability"
	"github.com/couchcryptid/rainfall-features/internal/pipeline"
	"github.com/couchcryptid/rainfall-features/internal/report"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	ds  domain.Dataset
	err error
}

func (m *mockExtractor) Extract(_ context.Context) (domain.Dataset, error) {
	return m.ds, m.err
}

func (m *mockExtractor) Location() string { return "data/raw-rain-data.csv" }

type mockLoader struct {
	name   string
	err    error
	loaded []domain.Result
	calls  *[]string
}

func (m *mockLoader) Name() string { return m.name }

func (m *mockLoader) Load(_ context.Context, res domain.Result) error {
	if m.calls != nil {
		*m.calls = append(*m.calls, m.name)
	}
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, res)
	return nil
}

func sampleDataset() domain.Dataset {
	return domain.Dataset{Records: []domain.RawRecord{
		{Province: "Bangkok", Year: 2020, Month: 7, MinRain: 50, MaxRain: 120, AvgRain: 85, Line: 2},
		{Province: "Phuket", Year: 2020, Month: 12, MinRain: 10, MaxRain: 30, AvgRain: 20, Line: 3},
		{Province: "Bangkok", Year: 2021, Month: 3, MinRain: 20, MaxRain: 60, AvgRain: 40, Line: 4},
	}}
}

func newTestPipeline(ext pipeline.Extractor, metrics *observability.Metrics, loaders ...pipeline.Loader) *pipeline.Pipeline {
	return pipeline.New(ext, pipeline.NewTransformer(slog.Default()), slog.Default(), metrics, loaders...)
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, time.May, 1, 8, 0, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	csvLoader := &mockLoader{name: "csv"}
	kafkaLoader := &mockLoader{name: "kafka"}
	metrics := observability.NewMetricsForTesting()
	p := newTestPipeline(&mockExtractor{ds: sampleDataset()}, metrics, csvLoader, kafkaLoader)

	require.Error(t, p.CheckReadiness(context.Background()))

	summary, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, csvLoader.loaded, 1)
	require.Len(t, kafkaLoader.loaded, 1)
	res := csvLoader.loaded[0]
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, res.RunID, kafkaLoader.loaded[0].RunID)
	assert.Equal(t, fakeClock.Now(), res.PreparedAt)

	assert.Equal(t, res.RunID, summary.RunID)
	assert.Equal(t, 3, summary.Rows)
	assert.Equal(t, "data/raw-rain-data.csv", summary.Input)
	assert.Equal(t, []string{"csv", "kafka"}, summary.Outputs)
	assert.Equal(t, len(res.Features), summary.FeatureCount)

	require.NoError(t, p.CheckReadiness(context.Background()))
	last, ok := p.LastSummary()
	require.True(t, ok)
	assert.Equal(t, summary.RunID, last.RunID)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.RowsRead), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.RowsWritten), 0)
	assert.InDelta(t, float64(len(res.Features)), testutil.ToFloat64(metrics.FeatureColumns), 0)
	assert.InDelta(t, float64(fakeClock.Now().Unix()), testutil.ToFloat64(metrics.LastSuccessTime), 0)
}

func TestPipeline_Run_NewRunIDEachTime(t *testing.T) {
	p := newTestPipeline(&mockExtractor{ds: sampleDataset()}, observability.NewMetricsForTesting())

	first, err := p.Run(context.Background())
	require.NoError(t, err)
	second, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestPipeline_Run_ExtractError(t *testing.T) {
	ldr := &mockLoader{name: "csv"}
	metrics := observability.NewMetricsForTesting()
	p := newTestPipeline(&mockExtractor{err: errors.New("file missing")}, metrics, ldr)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extract: file missing")
	assert.Empty(t, ldr.loaded)
	assert.Error(t, p.CheckReadiness(context.Background()))
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RunsTotal.WithLabelValues("error")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.SchemaErrors), 0)
}

func TestPipeline_Run_SchemaError(t *testing.T) {
	ds := sampleDataset()
	ds.Records[1].Month = 13
	ldr := &mockLoader{name: "csv"}
	metrics := observability.NewMetricsForTesting()
	p := newTestPipeline(&mockExtractor{ds: ds}, metrics, ldr)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrSchema)
	assert.Empty(t, ldr.loaded)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.SchemaErrors), 0)
}

func TestPipeline_Run_StopsAtFirstLoaderError(t *testing.T) {
	var calls []string
	failing := &mockLoader{name: "csv", err: errors.New("disk full"), calls: &calls}
	after := &mockLoader{name: "kafka", calls: &calls}
	metrics := observability.NewMetricsForTesting()
	p := newTestPipeline(&mockExtractor{ds: sampleDataset()}, metrics, failing, after)

	_, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load csv: disk full")
	assert.Equal(t, []string{"csv"}, calls)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.LoadErrors.WithLabelValues("csv")), 0)
	assert.Error(t, p.CheckReadiness(context.Background()))
	_, ok := p.LastSummary()
	assert.False(t, ok)
}

func TestPipeline_Run_CancelledContext(t *testing.T) {
	ldr := &mockLoader{name: "csv"}
	p := newTestPipeline(&mockExtractor{ds: sampleDataset()}, observability.NewMetricsForTesting(), ldr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ldr.loaded)
}

func TestFeatureTransformer_Transform(t *testing.T) {
	tfm := pipeline.NewTransformer(slog.Default())
	res, err := tfm.Transform(context.Background(), sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, 3, res.Table.Rows)
	assert.NotContains(t, res.Features, domain.ColAvgRain)
	assert.Contains(t, res.Features, "Province_Phuket")
}

// --- scheduler ---

type countingRunner struct {
	runs atomic.Int64
}

func (r *countingRunner) Run(_ context.Context) (report.Summary, error) {
	r.runs.Add(1)
	return report.Summary{}, errors.New("input unavailable")
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := pipeline.NewScheduler("not a schedule", &countingRunner{}, slog.Default())
	require.Error(t, err)
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	runner := &countingRunner{}
	s, err := pipeline.NewScheduler("@every 10ms", runner, slog.Default())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return runner.runs.Load() > 0 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
