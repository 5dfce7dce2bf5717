package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aarondill/TaraBomSheets/internal/batch"
	"github.com/aarondill/TaraBomSheets/internal/config"
	"github.com/aarondill/TaraBomSheets/internal/tables"
	"github.com/aarondill/TaraBomSheets/libs/logging"
	"github.com/aarondill/TaraBomSheets/libs/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// flag name -> config key
var flagKeys = map[string]string{
	"source":       config.KeySource,
	"input":        config.KeyInputDir,
	"output":       config.KeyOutputDir,
	"items":        config.KeyItemsTable,
	"routes":       config.KeyRoutesTable,
	"itt":          config.KeyITTTable,
	"stages":       config.KeyStagesTable,
	"delimiter":    config.KeyDelimiter,
	"format":       config.KeyOutputFormat,
	"workers":      config.KeyWorkers,
	"buffer-rows":  config.KeyBufferRows,
	"metrics-file": config.KeyMetricsFile,
	"log-level":    config.KeyLogLevel,
	"log-format":   config.KeyLogFormat,
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "routegen",
		Short: "Expand an item catalog into BOM and routing import files",
		Long: `routegen cross-references the item catalog with the route/resource,
ITT and stage-number tables and writes one BOM file and one route stage
file ready for import. Rows that could not be resolved cleanly carry a
warning; duplicate part numbers are listed in an error file.

Settings come from ROUTEGEN_* environment variables (a .env file is read
when present). Flags override them.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("source", "", "Table source: file|s3|postgres (default file)")
	flags.String("input", "", "Input directory for the file source (default .)")
	flags.String("output", "", "Output directory (default ./out)")
	flags.String("items", "", "Items table name")
	flags.String("routes", "", "Route/resource table name")
	flags.String("itt", "", "ITT (consumption) table name")
	flags.String("stages", "", "Stage-number table name")
	flags.String("delimiter", "", "Field delimiter for text tables (default ,)")
	flags.String("format", "", "Output format: csv|arrow (default csv)")
	flags.String("workers", "", "Items expanded concurrently (default 1)")
	flags.String("buffer-rows", "", "Rows buffered per output file")
	flags.String("metrics-file", "", "Write Prometheus metrics to this textfile after the run")
	flags.String("log-level", "", "Log level (default info)")
	flags.String("log-format", "", "Log format: json|console (default json)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a full batch and write the output files",
		Args:  cobra.NoArgs,
		RunE:  runBatch,
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the input tables are reachable and well formed without writing output",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	rootCmd.AddCommand(runCmd, checkCmd)
	return rootCmd
}

// app is the per-invocation state shared by the commands
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	source string
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			cfg.Set(key, f.Value.String())
		}
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.GetString(config.KeyLogLevel, "info"),
		Format: cfg.GetString(config.KeyLogFormat, "json"),
		Fields: map[string]string{
			"service": "routegen",
			"command": cmd.Name(),
			"run_id":  uuid.NewString(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	source, err := cfg.Source()
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return nil, err
	}

	return &app{cfg: cfg, logger: logger.WithField("source", source), source: source}, nil
}

func (a *app) runner(ctx context.Context) (*batch.Runner, tables.Source, error) {
	delimiter, err := a.cfg.Delimiter()
	if err != nil {
		return nil, nil, err
	}
	workers, err := a.cfg.Workers()
	if err != nil {
		return nil, nil, err
	}
	bufferRows, err := a.cfg.BufferRows()
	if err != nil {
		return nil, nil, err
	}
	format, err := tables.ParseFormat(a.cfg.GetString(config.KeyOutputFormat, string(tables.FormatCSV)))
	if err != nil {
		return nil, nil, err
	}

	src, err := openSource(ctx, a.cfg, a.source, delimiter, a.logger.Logger)
	if err != nil {
		return nil, nil, err
	}

	items, routes, itt, stages := a.cfg.TableNames(a.source)
	opts := batch.Options{
		Tables: tables.Names{
			Items:        items,
			Routes:       routes,
			Consumption:  itt,
			StageNumbers: stages,
		},
		OutputDir:  a.cfg.GetString(config.KeyOutputDir, "out"),
		Format:     format,
		Delimiter:  delimiter,
		Workers:    workers,
		BufferRows: bufferRows,
	}

	return batch.NewRunner(src, opts, a.logger, metrics.NewRunMetrics(a.source)), src, nil
}

func runBatch(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	runner, src, err := a.runner(cmd.Context())
	if err != nil {
		a.logger.Error("Failed to prepare run", zap.Error(err))
		return err
	}
	defer src.Close()

	summary, runErr := runner.Run(cmd.Context())

	if path := a.cfg.GetString(config.KeyMetricsFile, ""); path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("Failed to write metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}

	if runErr != nil {
		a.logger.Error("Run failed", zap.Error(runErr))
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d items, %d results, %d warnings, %d duplicates, %d orphan records\n",
		summary.Items, summary.Results, summary.Warnings, summary.Duplicates, summary.Orphans)
	for _, u := range summary.Unrouted {
		fmt.Fprintf(cmd.OutOrStdout(), "no output rows for %s: %s\n", u.ParentKey, strings.Join(u.Warnings, "; "))
	}
	for _, path := range summary.Outputs {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	runner, src, err := a.runner(cmd.Context())
	if err != nil {
		a.logger.Error("Failed to prepare check", zap.Error(err))
		return err
	}
	defer src.Close()

	checks, err := runner.Check(cmd.Context())
	for _, c := range checks {
		status := "ok"
		if len(c.Missing) > 0 {
			status = fmt.Sprintf("missing %v", c.Missing)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows, %s\n", c.Table, c.Rows, status)
	}
	if err != nil {
		a.logger.Error("Check failed", zap.Error(err))
		return err
	}
	return nil
}
