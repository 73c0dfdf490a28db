package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ajitpratap0/tabprofile/internal/runner"
	"github.com/ajitpratap0/tabprofile/pkg/config"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "tabprofile",
		Short: "tabprofile - descriptive statistics for tabular data",
		Long: `tabprofile classifies every column of a dataset as numeric, boolean, string or
datetime and reports kind-specific statistics: counts, nulls, quantiles,
frequency tables and length statistics.`,
		SilenceUsage: true,
	}
	root.SetOut(stdout)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tabprofile v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(newProfileCmd())
	root.AddCommand(newInitConfigCmd())
	return root
}

// logFailure logs err with its category, and at debug level the call stack
// where it was raised.
func logFailure(log *zap.Logger, err error) {
	log.Error("profile failed",
		zap.Error(err),
		zap.String("error_type", string(errors.TypeOf(err))))
	if ce := log.Check(zapcore.DebugLevel, "error stack"); ce != nil {
		ce.Write(zap.Strings("stack", errors.StackTrace(err)))
	}
}

func newInitConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "tabprofile.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	var configFile string
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "profile [path]",
		Short: "Profile a dataset",
		Long: `Profile a CSV, TSV, JSON, NDJSON, Arrow, Parquet or Avro file (local, s3:// or gs://),
a SQL query or a MongoDB collection, and print the report.

Examples:
  tabprofile profile people.csv
  tabprofile profile s3://bucket/events.parquet --format json --output report.json.gz
  tabprofile profile --driver pgx --dsn "$DATABASE_URL" --query "SELECT * FROM orders"
  tabprofile profile --mongo-uri mongodb://localhost --database shop --collection orders --limit 10000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configFile != "" {
				loaded, err := config.LoadFile(configFile)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if len(args) == 1 {
				cfg.Source.Path = args[0]
			}
			cfg.Overlay(v)
			if err := cfg.Validate(); err != nil {
				return err
			}

			log, err := logger.New(logger.Config{
				Level:       cfg.Logging.Level,
				Encoding:    cfg.Logging.Encoding,
				Development: cfg.Logging.Development,
			})
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			log.Debug("starting profile",
				zap.String("source", cfg.Source.Path),
				zap.String("driver", cfg.Source.Driver),
				zap.String("format", cfg.Output.Format),
				zap.Int("workers", cfg.Profiling.GetWorkers()))

			_, err = runner.New(cfg,
				runner.WithLogger(log),
				runner.WithStdout(cmd.OutOrStdout()),
				runner.WithVersion(version),
			).Run(cmd.Context())
			if err != nil {
				logFailure(log, err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")

	flags.String("source-format", "", "Input format (csv, tsv, json, jsonl, arrow, parquet, avro); detected from the extension by default")
	flags.String("compression", "", "Input compression (gzip, zstd, lz4, snappy, s2, deflate, none); detected from the extension by default")
	flags.String("delimiter", ",", `CSV field delimiter; use \t for tabs`)
	flags.Bool("no-header", false, "Treat the first CSV row as data")
	flags.StringSlice("null-values", config.DefaultNullValues, "Cell texts read as missing")
	flags.Bool("parse-dates", true, "Detect timestamps and durations in text cells")
	flags.StringSlice("columns", nil, "Column order for JSON and MongoDB sources")

	flags.String("driver", "", "SQL driver (pgx, mysql, sqlite3, snowflake)")
	flags.String("dsn", "", "SQL data source name")
	flags.String("query", "", "SQL query producing the dataset")
	flags.String("mongo-uri", "", "MongoDB connection URI")
	flags.String("database", "", "MongoDB database")
	flags.String("collection", "", "MongoDB collection")
	flags.Int64("limit", 0, "Maximum rows read from SQL or MongoDB (0 = all)")
	flags.String("region", "us-east-1", "S3 region")
	flags.String("endpoint", "", "S3 endpoint override")
	flags.String("credentials-file", "", "GCS service account file")
	flags.Duration("timeout", 0, "Loading timeout")

	flags.IntP("workers", "w", 1, "Columns profiled concurrently (0 = one per CPU)")

	flags.StringP("format", "f", "text", "Report format (text, json, yaml)")
	flags.StringP("output", "o", "", "Report file; stdout when empty")
	flags.String("output-compression", "", "Report compression; detected from the output extension by default")

	flags.Bool("metrics", false, "Record Prometheus metrics")
	flags.String("metrics-textfile", "", "Write metrics in node-exporter textfile format to this path")
	flags.Bool("trace", false, "Export OpenTelemetry spans to stderr")

	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-encoding", "json", "Log encoding (json, console)")

	// TABPROFILE_* variables override file values, flags override both
	_ = v.BindPFlags(flags)
	return cmd
}
