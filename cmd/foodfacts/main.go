// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/foodfacts"
	"github.com/poiesic/foodfacts/analysis"
	"github.com/poiesic/foodfacts/config"
	"github.com/poiesic/foodfacts/dashboard"
	"github.com/poiesic/foodfacts/importer"
	"github.com/poiesic/foodfacts/preprocess"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "foodfacts",
		Usage: "Clean, load and analyze Open Food Facts product exports",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "clean",
				Usage:  "Clean, sample and export the source TSV as a JSON artifact",
				Action: cleanCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Aliases: []string{"s"}, Usage: "Source TSV export"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output JSON artifact"},
					&cli.StringFlag{Name: "delimiter", Usage: `Field delimiter ("\t" for tab)`},
					&cli.IntFlag{Name: "target", Usage: "Number of records to sample"},
					&cli.Uint64Flag{Name: "seed", Usage: "Sampling seed"},
					&cli.IntFlag{Name: "indent", Usage: "JSON indentation, 0 for compact"},
				},
			},
			{
				Name:   "import",
				Usage:  "Bulk load a JSON artifact into the store",
				Action: importCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{Name: "artifact", Aliases: []string{"a"}, Usage: "JSON artifact to load (default: output path)"},
					&cli.IntFlag{Name: "batch-size", Usage: "Documents per insert batch"},
					&cli.IntFlag{Name: "workers", Usage: "Concurrent batch inserts"},
					&cli.BoolFlag{Name: "drop-existing", Usage: "Drop the existing collection before loading"},
				},
			},
			{
				Name:   "analyze",
				Usage:  "Run the aggregation report",
				Action: analyzeCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.IntFlag{Name: "limit", Usage: "Rows per country table"},
					&cli.IntFlag{Name: "top", Usage: "Rows per product ranking"},
					&cli.Float64Flag{Name: "max-energy", Usage: "Exclude energy values at or above this bound, 0 for none"},
				},
			},
			{
				Name:   "summary",
				Usage:  "Print collection statistics",
				Action: summaryCommand,
				Flags:  []cli.Flag{dbFlag()},
			},
			{
				Name:   "verify",
				Usage:  "Compare a JSON artifact with the store",
				Action: verifyCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{Name: "artifact", Aliases: []string{"a"}, Usage: "JSON artifact to check (default: output path)"},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the analytics dashboard",
				Action: serveCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{Name: "addr", Usage: "Listen address"},
					&cli.IntFlag{Name: "limit", Usage: "Rows per country table"},
					&cli.Float64Flag{Name: "max-energy", Usage: "Exclude energy values at or above this bound, 0 for none"},
				},
			},
			{
				Name:      "init-config",
				Usage:     "Write the default configuration to a file",
				ArgsUsage: "<path>",
				Action:    initConfigCommand,
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory (default from config)",
	}
}

// setup loads the configuration and configures slog.
func setup(c *cli.Context) error {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg
	return setupLogger(cfg.Logging.Level)
}

func setupLogger(levelStr string) error {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig returns the configuration with command flags applied.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, ok := c.App.Metadata[configKey].(*config.Config)
	if !ok {
		cfg = config.DefaultConfig()
	}

	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
	}
	if c.IsSet("source") {
		cfg.Source.Path = c.String("source")
	}
	if c.IsSet("output") {
		cfg.Output.Path = c.String("output")
	}
	if c.IsSet("artifact") {
		cfg.Output.Path = c.String("artifact")
	}
	if c.IsSet("delimiter") {
		cfg.Source.Delimiter = c.String("delimiter")
	}
	if c.IsSet("target") {
		cfg.Sampling.TargetCount = c.Int("target")
	}
	if c.IsSet("seed") {
		cfg.Sampling.Seed = c.Uint64("seed")
	}
	if c.IsSet("indent") {
		cfg.Output.Indent = c.Int("indent")
	}
	if c.IsSet("batch-size") {
		cfg.Store.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("workers") {
		cfg.Store.Workers = c.Int("workers")
	}
	if c.IsSet("drop-existing") {
		cfg.Store.DropExisting = c.Bool("drop-existing")
	}
	if c.IsSet("top") {
		cfg.Analysis.TopN = c.Int("top")
	}
	if c.IsSet("addr") {
		cfg.Dashboard.Addr = c.String("addr")
	}
	if c.IsSet("limit") {
		cfg.Analysis.Limit = c.Int("limit")
		cfg.Dashboard.Limit = c.Int("limit")
	}
	if c.IsSet("max-energy") {
		cfg.Analysis.MaxEnergy = c.Float64("max-energy")
		cfg.Dashboard.MaxEnergy = c.Float64("max-energy")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*foodfacts.Database, error) {
	var opts []foodfacts.DatabaseOption
	if cfg.Store.InMemory {
		opts = append(opts, foodfacts.InMemory())
	}
	db, err := foodfacts.NewDatabase(cfg.Store.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func cleanCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts := preprocess.DefaultOptions()
	opts.SourcePath = cfg.Source.Path
	opts.Delimiter = cfg.Source.DelimiterRune()
	opts.LazyQuotes = cfg.Source.LazyQuotes
	opts.OutputPath = cfg.Output.Path
	opts.Indent = cfg.Output.Indent
	opts.TargetCount = cfg.Sampling.TargetCount
	opts.Seed = cfg.Sampling.Seed
	opts.Logger = slog.Default()

	result, err := preprocess.Run(c.Context, opts)
	if err != nil {
		return fmt.Errorf("preprocessing failed: %w", err)
	}
	if err := result.Summary.WriteReport(c.App.Writer); err != nil {
		return err
	}
	fmt.Fprintf(c.App.ErrWriter, "Completed in %s\n", result.Elapsed.Round(time.Millisecond))
	return nil
}

func importCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	im, err := db.NewImporter(importer.Config{
		BatchSize:    cfg.Store.BatchSize,
		DropExisting: cfg.Store.DropExisting,
		IndexFields:  cfg.Store.IndexFields,
		ReportEvery:  importer.DefaultConfig().ReportEvery,
		MaxAttempts:  cfg.Store.MaxAttempts,
	},
		importer.WithPoolSize(cfg.Store.Workers),
		importer.WithProgress(c.App.ErrWriter),
		importer.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer im.Release()

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Store.Path)
	fmt.Fprintf(c.App.ErrWriter, "Artifact: %s\n\n", cfg.Output.Path)

	result, err := im.Run(c.Context, cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return result.WriteReport(c.App.Writer)
}

func newAnalyzer(db *foodfacts.Database, maxEnergy float64) (*analysis.Analyzer, error) {
	return db.NewAnalyzer(
		analysis.WithLogger(slog.Default()),
		analysis.WithMaxEnergy(maxEnergy))
}

func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	analyzer, err := newAnalyzer(db, cfg.Analysis.MaxEnergy)
	if err != nil {
		return err
	}
	report, err := analyzer.Run(c.Context, cfg.Analysis.Limit, cfg.Analysis.TopN)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return report.Write(c.App.Writer)
}

func summaryCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	analyzer, err := newAnalyzer(db, 0)
	if err != nil {
		return err
	}
	summary, err := analyzer.Summary(c.Context, 5)
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}
	return analysis.WriteSummary(c.App.Writer, summary)
}

func verifyCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	verifier, err := db.NewVerifier()
	if err != nil {
		return err
	}
	report, err := verifier.Verify(c.Context, cfg.Output.Path)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}
	if err := report.Write(c.App.Writer); err != nil {
		return err
	}
	return report.Err()
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv, err := db.NewDashboard(dashboard.Config{
		Addr:        cfg.Dashboard.Addr,
		Limit:       cfg.Dashboard.Limit,
		TopN:        cfg.Analysis.TopN,
		MaxEnergy:   cfg.Dashboard.MaxEnergy,
		CORSOrigins: cfg.Dashboard.CORSOrigins,
	}, dashboard.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

func initConfigCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("config path is required")
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	return config.DefaultConfig().SaveConfig(path)
}
