// Package batch runs one routegen batch: load the four input tables, expand
// the catalog, and write the BOM, stage and error files.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aarondill/TaraBomSheets/internal/catalog"
	"github.com/aarondill/TaraBomSheets/internal/export"
	"github.com/aarondill/TaraBomSheets/internal/routing"
	"github.com/aarondill/TaraBomSheets/internal/tables"
	"github.com/aarondill/TaraBomSheets/libs/logging"
	"github.com/aarondill/TaraBomSheets/libs/metrics"
	"github.com/aarondill/TaraBomSheets/sdks/schema"
	"github.com/aarondill/TaraBomSheets/sdks/streaming"
)

// Output table names, without extension
const (
	BOMTable    = "bom"
	StageTable  = "stages"
	ErrorsTable = "errors"
)

// Options configures a batch run
type Options struct {
	Tables    tables.Names
	OutputDir string
	Format    tables.Format
	// Delimiter separates fields of delimited text outputs.
	Delimiter rune
	Workers   int
	// BufferRows bounds the rows in flight between the producer and each output file.
	BufferRows int
}

// Unrouted is an item whose expansion produced warnings but no output rows
type Unrouted struct {
	ParentKey string
	Warnings  []string
}

// Summary describes a finished run
type Summary struct {
	Items      int
	Results    int
	Warnings   int
	Duplicates int
	Orphans    int
	// Unrouted lists results that appear in no output file.
	Unrouted    []Unrouted
	RowsWritten map[string]int64
	Outputs     []string
	Duration    time.Duration
}

// Runner executes batches against one table source
type Runner struct {
	source  tables.Source
	opts    Options
	logger  *logging.Logger
	metrics *metrics.RunMetrics
}

// NewRunner creates a runner
func NewRunner(source tables.Source, opts Options, logger *logging.Logger, m *metrics.RunMetrics) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Format == "" {
		opts.Format = tables.FormatCSV
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	return &Runner{
		source:  source,
		opts:    opts,
		logger:  logger,
		metrics: m,
	}
}

// Run executes the whole batch. Per-item problems end up as warnings in the
// output; only unreadable input or a failed write aborts the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	timer := metrics.NewTimer()
	r.logger.LogRunEvent("started",
		zap.String("output_dir", r.opts.OutputDir),
		zap.String("format", string(r.opts.Format)),
		zap.Int("workers", r.opts.Workers),
	)

	summary, err := r.run(ctx)
	duration := timer.Stop()
	if err != nil {
		r.metrics.RecordRun("failure", duration)
		r.logger.LogRunEvent("failed", zap.Error(err))
		return nil, err
	}

	summary.Duration = duration
	r.metrics.RecordRun("success", duration)
	r.logger.LogRunEvent("completed",
		zap.Int("items", summary.Items),
		zap.Int("results", summary.Results),
		zap.Int("warnings", summary.Warnings),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("orphans", summary.Orphans),
		zap.Int("unrouted", len(summary.Unrouted)),
		zap.Strings("outputs", summary.Outputs),
	)
	r.logger.LogPerformanceMetric("run_duration", duration.Milliseconds(), "ms")
	return summary, nil
}

func (r *Runner) run(ctx context.Context) (*Summary, error) {
	set, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	phase := metrics.NewTimer()
	store, err := catalog.FromTables(set)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordPhase("decode", phase.Stop())

	phase = metrics.NewTimer()
	aggregator := routing.NewAggregator(
		routing.WithWorkers(r.opts.Workers),
		routing.WithLogger(r.logger.Logger),
	)
	report, err := aggregator.Run(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", err)
	}
	r.metrics.RecordPhase("aggregate", phase.Stop())

	r.reportDataQuality(report)

	summary := &Summary{
		Items:      report.Items,
		Results:    len(report.Results),
		Warnings:   report.WarningCount(),
		Duplicates: len(report.Duplicates),
		Orphans:    report.Orphans,
		Unrouted:   unrouted(report),
	}
	r.metrics.RecordAggregation(summary.Items, summary.Results, summary.Warnings, summary.Duplicates, summary.Orphans)

	phase = metrics.NewTimer()
	written, outputs, err := r.write(ctx, report, set.Items.Header)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordPhase("write", phase.Stop())

	summary.RowsWritten = written
	summary.Outputs = outputs
	return summary, nil
}

func unrouted(report *routing.Report) []Unrouted {
	var out []Unrouted
	for _, res := range report.Results {
		if len(res.Items) == 0 && len(res.Stages) == 0 {
			out = append(out, Unrouted{ParentKey: res.ParentKey, Warnings: res.Warnings})
		}
	}
	return out
}

func (r *Runner) load(ctx context.Context) (*tables.Set, error) {
	phase := metrics.NewTimer()
	set, err := tables.LoadSet(ctx, r.source, r.opts.Tables)
	if err != nil {
		return nil, err
	}
	r.metrics.RecordPhase("load", phase.Stop())

	for _, t := range []*tables.Table{set.Items, set.Routes, set.Consumption, set.StageNumbers} {
		r.metrics.RecordTableRead(t.Name, t.Len())
		r.logger.Debug("Loaded table", zap.String("table", t.Name), zap.Int("rows", t.Len()))
	}
	return set, nil
}

func (r *Runner) reportDataQuality(report *routing.Report) {
	for _, res := range report.Results {
		for _, w := range res.Warnings {
			r.logger.LogDataQualityEvent(res.ParentKey, w, "warning")
		}
	}
	for _, dup := range report.Duplicates {
		r.logger.LogDataQualityEvent(dup.Item.PartNumber, dup.Error(), "error")
	}
}

// output is one file being written from a pipe
type output struct {
	pipe *streaming.Pipe
	sink *fileSink
}

// write streams the report into the output files. The error file is written
// only when duplicates were found. No output replaces an existing file unless
// every output was written in full.
func (r *Runner) write(ctx context.Context, report *routing.Report, itemsHeader []string) (map[string]int64, []string, error) {
	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var outputs []*output
	defer func() {
		for _, out := range outputs {
			out.sink.discard()
		}
	}()

	bom, err := r.open(BOMTable, export.BOMSchema)
	if err != nil {
		return nil, nil, err
	}
	outputs = append(outputs, bom)
	stages, err := r.open(StageTable, export.StageSchema)
	if err != nil {
		return nil, nil, err
	}
	outputs = append(outputs, stages)

	var errs *output
	if len(report.Duplicates) > 0 {
		errs, err = r.open(ErrorsTable, export.ErrorSchema(itemsHeader))
		if err != nil {
			return nil, nil, err
		}
		outputs = append(outputs, errs)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for _, out := range outputs {
			defer out.pipe.CloseSend()
		}
		if err := export.Emit(gctx, report.Results, bom.pipe, stages.pipe); err != nil {
			return err
		}
		if errs == nil {
			return nil
		}
		for _, row := range export.ErrorRows(report.Duplicates) {
			if err := errs.pipe.Send(gctx, row); err != nil {
				return err
			}
		}
		return nil
	})

	written := make([]int64, len(outputs))
	for i, out := range outputs {
		g.Go(func() error {
			n, err := out.pipe.Drain(gctx, out.sink)
			written[i] = n
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", out.sink.path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	for _, out := range outputs {
		if err := out.sink.commit(); err != nil {
			return nil, nil, err
		}
	}
	if errs == nil {
		// an error file from an earlier run no longer applies
		stale := r.outputPath(ErrorsTable)
		if err := os.Remove(stale); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("failed to remove %s: %w", stale, err)
		}
	}

	counts := make(map[string]int64, len(outputs))
	paths := make([]string, 0, len(outputs))
	for i, out := range outputs {
		counts[out.pipe.Name()] = written[i]
		paths = append(paths, out.sink.path)
		r.metrics.RecordRowsWritten(out.pipe.Name(), written[i])
	}
	return counts, paths, nil
}

func (r *Runner) outputPath(name string) string {
	return filepath.Join(r.opts.OutputDir, name+r.opts.Format.Extension())
}

func (r *Runner) open(name string, s schema.Schema) (*output, error) {
	sink, err := createFileSink(r.outputPath(name), r.opts.Format, s, r.opts.Delimiter)
	if err != nil {
		return nil, err
	}
	return &output{
		pipe: streaming.NewPipe(name, r.opts.BufferRows),
		sink: sink,
	}, nil
}

// TableCheck is the outcome of checking one input table
type TableCheck struct {
	Table   string
	Rows    int
	Missing []string
}

// Check reads the input tables and verifies their headers and enumerated
// values without writing any output.
func (r *Runner) Check(ctx context.Context) ([]TableCheck, error) {
	set, err := tables.LoadSet(ctx, r.source, r.opts.Tables)
	if err != nil {
		return nil, err
	}

	required := catalog.RequiredColumns()
	roles := []struct {
		key   string
		table *tables.Table
	}{
		{"items", set.Items},
		{"routes", set.Routes},
		{"consumption", set.Consumption},
		{"stageNumbers", set.StageNumbers},
	}

	var problems []error
	checks := make([]TableCheck, 0, len(roles))
	for _, role := range roles {
		check := TableCheck{Table: role.table.Name, Rows: role.table.Len()}
		for _, col := range required[role.key] {
			if _, err := role.table.Column(col); err != nil {
				check.Missing = append(check.Missing, col)
				problems = append(problems, err)
			}
		}
		checks = append(checks, check)
	}

	if len(problems) == 0 {
		if _, err := catalog.FromTables(set); err != nil {
			problems = append(problems, err)
		}
	}

	return checks, errors.Join(problems...)
}
