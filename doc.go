// Package tabprofile computes descriptive statistics for tabular data.
//
// Every column of a dataset is classified into one of four kinds and
// summarized with the statistics that fit that kind:
//
//	numeric   count, nulls, mean, std, min/max, quartiles, uniques
//	boolean   true/false counts and ratio
//	string    length statistics and the most frequent values
//	datetime  range, span and most frequent values
//
// # Architecture
//
// The module is split into focused packages:
//
//	pkg/dataset      - Columnar datasets backed by Arrow arrays
//	pkg/schema       - Type inference for untyped text and JSON values
//	pkg/source       - Loaders for files, object stores, SQL and MongoDB
//	pkg/profile      - Kind classification, summaries and the profiling engine
//	pkg/report       - Text, JSON and YAML reports
//	pkg/config       - YAML configuration with environment overrides
//	pkg/compression  - Transparent compression for inputs and reports
//	pkg/errors       - Structured error handling
//	pkg/logger       - Structured logging with zap
//	pkg/metrics      - Prometheus metrics
//	pkg/observability - OpenTelemetry tracing
//	internal/runner  - One end-to-end profiling run
//	cmd/tabprofile   - Command-line interface
//
// # Quick Start
//
//	import (
//	    "github.com/ajitpratap0/tabprofile/pkg/profile"
//	    "github.com/ajitpratap0/tabprofile/pkg/report"
//	    "github.com/ajitpratap0/tabprofile/pkg/source"
//	)
//
//	ds, err := source.Open(ctx, cfg.Source, logger)
//	if err != nil {
//	    return err
//	}
//	defer ds.Release()
//
//	p, err := profile.NewEngine(profile.WithWorkers(4)).Profile(ctx, ds)
//	if err != nil {
//	    return err
//	}
//	return report.WriteText(os.Stdout, p)
//
// From the command line:
//
//	tabprofile profile people.csv
//	tabprofile profile s3://bucket/events.parquet --format json -o report.json.gz
//
// # Configuration
//
// Settings come from a YAML file, TABPROFILE_* environment variables and
// flags, in increasing precedence. ${VAR_NAME} references in the file are
// expanded. Run "tabprofile init-config" for a starting point.
package tabprofile
