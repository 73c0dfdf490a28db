// Package config provides the configuration for tabprofile runs.
//
// The configuration is organized into logical sections:
//   - Logging: level and encoding of the zap logger
//   - Source: where the dataset comes from and how to parse it
//   - Profiling: engine settings such as per-column parallelism
//   - Output: report format, destination and compression
//   - Metrics: Prometheus textfile export
//   - Tracing: OpenTelemetry span export
//
// Example usage:
//
//	cfg := config.Default()
//	cfg.Source.Path = "people.csv"
//	cfg.Output.Format = "json"
//
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"runtime"
	"strings"
	"time"

	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

// Config is the complete configuration of a profiling run.
type Config struct {
	// Logging controls the zap logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Source describes the input dataset
	Source SourceConfig `yaml:"source" json:"source"`

	// Profiling holds engine settings
	Profiling ProfilingConfig `yaml:"profiling" json:"profiling"`

	// Output describes the report
	Output OutputConfig `yaml:"output" json:"output"`

	// Metrics configures Prometheus export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Tracing configures OpenTelemetry export
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

// LoggingConfig mirrors logger.Config.
type LoggingConfig struct {
	// Level sets logging verbosity (debug, info, warn, error)
	Level string `yaml:"level" json:"level"`
	// Encoding is json or console
	Encoding string `yaml:"encoding" json:"encoding"`
	// Development enables colored levels and stack traces on errors
	Development bool `yaml:"development" json:"development"`
}

// SourceConfig describes where a dataset is read from.
type SourceConfig struct {
	// Path is a local file, s3://bucket/key or gs://bucket/object
	Path string `yaml:"path" json:"path"`
	// Format overrides extension-based detection (csv, tsv, json, jsonl, arrow, parquet, avro)
	Format string `yaml:"format" json:"format"`
	// Compression overrides extension-based detection (gzip, zstd, lz4, snappy, s2, none)
	Compression string `yaml:"compression" json:"compression"`

	// Delimiter separates CSV fields
	Delimiter string `yaml:"delimiter" json:"delimiter"`
	// NoHeader treats the first CSV row as data
	NoHeader bool `yaml:"no_header" json:"no_header"`
	// NullValues are cell texts read as missing
	NullValues []string `yaml:"null_values" json:"null_values"`
	// ParseDates enables timestamp and duration detection for text cells
	ParseDates bool `yaml:"parse_dates" json:"parse_dates"`
	// Columns fixes column order for record-oriented inputs (JSON, MongoDB)
	Columns []string `yaml:"columns" json:"columns"`

	// Driver selects a SQL source (pgx, mysql, sqlite3, snowflake)
	Driver string `yaml:"driver" json:"driver"`
	// DSN is the SQL data source name
	DSN string `yaml:"dsn" json:"dsn"`
	// Query is the SQL statement producing the dataset
	Query string `yaml:"query" json:"query"`

	// MongoURI selects a MongoDB source
	MongoURI string `yaml:"mongo_uri" json:"mongo_uri"`
	// Database is the MongoDB database
	Database string `yaml:"database" json:"database"`
	// Collection is the MongoDB collection
	Collection string `yaml:"collection" json:"collection"`
	// Limit caps the number of rows read from SQL or MongoDB (0 = all)
	Limit int64 `yaml:"limit" json:"limit"`

	// Region is the S3 region
	Region string `yaml:"region" json:"region"`
	// Endpoint overrides the S3 endpoint (MinIO and friends)
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// CredentialsFile is a GCS service account file
	CredentialsFile string `yaml:"credentials_file" json:"credentials_file"`

	// Timeout bounds loading
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// ProfilingConfig holds engine settings.
type ProfilingConfig struct {
	// Workers summarizes this many columns concurrently
	Workers int `yaml:"workers" json:"workers"`
}

// OutputConfig describes the report.
type OutputConfig struct {
	// Format is text, json or yaml
	Format string `yaml:"format" json:"format"`
	// Path is the report file; empty writes to stdout
	Path string `yaml:"path" json:"path"`
	// Compression compresses the report file
	Compression string `yaml:"compression" json:"compression"`
	// Indent is the JSON indent
	Indent string `yaml:"indent" json:"indent"`
}

// MetricsConfig configures Prometheus export.
type MetricsConfig struct {
	// Enabled records metrics for the run
	Enabled bool `yaml:"enabled" json:"enabled"`
	// TextfilePath writes the registry in the node-exporter textfile format
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	// Enabled exports spans to stdout
	Enabled bool `yaml:"enabled" json:"enabled"`
	// ServiceName labels exported spans
	ServiceName string `yaml:"service_name" json:"service_name"`
	// SampleRate is the fraction of runs traced (0.0-1.0)
	SampleRate float64 `yaml:"sample_rate" json:"sample_rate"`
}

// DefaultNullValues are the cell texts read as missing by text loaders.
var DefaultNullValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
		Source: SourceConfig{
			Delimiter:  ",",
			NullValues: append([]string(nil), DefaultNullValues...),
			ParseDates: true,
			Region:     "us-east-1",
			Timeout:    10 * time.Minute,
		},
		Profiling: ProfilingConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Format: "text",
			Indent: "  ",
		},
		Tracing: TracingConfig{
			ServiceName: "tabprofile",
			SampleRate:  1.0,
		},
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Source.Driver != "":
		if c.Source.DSN == "" || c.Source.Query == "" {
			return errors.New(errors.ErrorTypeConfig, "sql source requires dsn and query").
				WithDetail("driver", c.Source.Driver)
		}
	case c.Source.MongoURI != "":
		if c.Source.Database == "" || c.Source.Collection == "" {
			return errors.New(errors.ErrorTypeConfig, "mongodb source requires database and collection")
		}
	case c.Source.Path == "":
		return errors.New(errors.ErrorTypeConfig, "source path is required")
	}

	if len(c.Source.Delimiter) != 1 && c.Source.Delimiter != `\t` {
		return errors.New(errors.ErrorTypeConfig, "delimiter must be a single character").
			WithDetail("delimiter", c.Source.Delimiter)
	}
	if c.Source.Limit < 0 {
		return errors.New(errors.ErrorTypeConfig, "limit cannot be negative")
	}
	if c.Profiling.Workers < 0 {
		return errors.New(errors.ErrorTypeConfig, "workers cannot be negative")
	}

	switch strings.ToLower(c.Output.Format) {
	case "text", "json", "yaml":
	default:
		return errors.New(errors.ErrorTypeConfig, "unsupported output format").
			WithDetail("format", c.Output.Format)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return errors.New(errors.ErrorTypeConfig, "tracing sample_rate must be within [0, 1]")
	}
	return nil
}

// GetWorkers returns the number of workers; 0 means one per CPU.
func (p *ProfilingConfig) GetWorkers() int {
	if p.Workers <= 0 {
		return runtime.NumCPU()
	}
	return p.Workers
}

// DelimiterRune returns the CSV delimiter, accepting a literal `\t`.
func (s *SourceConfig) DelimiterRune() rune {
	if s.Delimiter == `\t` {
		return '\t'
	}
	if s.Delimiter == "" {
		return ','
	}
	return rune(s.Delimiter[0])
}
