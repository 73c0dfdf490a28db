// Package source loads datasets for profiling.
//
// # Overview
//
// A Loader reads one dataset described by config.SourceConfig:
//   - SQL query results when Driver is set (pgx, mysql, sqlite3, snowflake)
//   - a MongoDB collection when MongoURI is set
//   - otherwise a file: a local path, s3://bucket/key or gs://bucket/object
//
// File formats are CSV/TSV, JSON (array or NDJSON), Arrow IPC, Parquet and
// Avro OCF. Compressed files are decompressed transparently based on their
// extension.
//
// # Basic Usage
//
//	loader := source.NewLoader(cfg.Source, source.WithLogger(logger))
//	ds, err := loader.Load(ctx)
//	if err != nil {
//	    return err
//	}
//	defer ds.Release()
package source

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabprofile/pkg/compression"
	"github.com/ajitpratap0/tabprofile/pkg/config"
	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/logger"
	"github.com/ajitpratap0/tabprofile/pkg/observability"
	"github.com/ajitpratap0/tabprofile/pkg/schema"
)

// Format is a file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatJSON    Format = "json"
	FormatNDJSON  Format = "jsonl"
	FormatArrow   Format = "arrow"
	FormatParquet Format = "parquet"
	FormatAvro    Format = "avro"
)

var formatExtensions = map[string]Format{
	".csv":     FormatCSV,
	".tsv":     FormatTSV,
	".tab":     FormatTSV,
	".json":    FormatJSON,
	".jsonl":   FormatNDJSON,
	".ndjson":  FormatNDJSON,
	".arrow":   FormatArrow,
	".ipc":     FormatArrow,
	".feather": FormatArrow,
	".parquet": FormatParquet,
	".pq":      FormatParquet,
	".avro":    FormatAvro,
}

// ParseFormat parses a format name such as "csv" or "ndjson".
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	if f, ok := formatExtensions["."+name]; ok {
		return f, nil
	}
	return "", errors.Newf(errors.ErrorTypeCapability, "unsupported source format %q", name)
}

// DetectFormat picks the format from the extension of a path whose
// compression extension has already been stripped.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := formatExtensions[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrorTypeCapability, "cannot detect source format from extension").
		WithDetail("path", path)
}

// Loader reads datasets. The zero value is not usable; use NewLoader.
type Loader struct {
	cfg    config.SourceConfig
	logger *zap.Logger
	mem    memory.Allocator
	infer  *schema.TypeInferenceEngine
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithAllocator sets the Arrow allocator used for built columns.
func WithAllocator(mem memory.Allocator) Option {
	return func(ld *Loader) { ld.mem = mem }
}

// NewLoader creates a loader for cfg.
func NewLoader(cfg config.SourceConfig, opts ...Option) *Loader {
	l := &Loader{
		cfg:    cfg,
		logger: zap.NewNop(),
		mem:    memory.NewGoAllocator(),
	}
	for _, opt := range opts {
		opt(l)
	}
	nulls := cfg.NullValues
	if nulls == nil {
		nulls = config.DefaultNullValues
	}
	l.infer = schema.NewTypeInferenceEngine(l.logger,
		schema.WithNullTokens(nulls),
		schema.WithParseDates(cfg.ParseDates),
	)
	return l
}

// Label names the kind of source for logs and metrics: a file format,
// "sql" or "mongodb".
func (l *Loader) Label() string {
	switch {
	case l.cfg.Driver != "":
		return "sql"
	case l.cfg.MongoURI != "":
		return "mongodb"
	}
	format, _, err := l.fileFormat()
	if err != nil {
		return "unknown"
	}
	return string(format)
}

// Load reads the configured dataset. The caller releases it. Log entries
// carry the run ID stored in ctx and the source label.
func (l *Loader) Load(ctx context.Context) (*dataset.Dataset, error) {
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}

	label := l.Label()
	ctx = logger.ContextWithSource(ctx, label)
	ld := *l
	ld.logger = logger.WithContext(ctx, l.logger)

	ctx, span := observability.StartSpan(ctx, "source.Load")
	defer span.End()
	span.SetAttribute("source", label)

	var (
		ds  *dataset.Dataset
		err error
	)
	switch {
	case l.cfg.Driver != "":
		ds, err = ld.loadSQL(ctx)
	case l.cfg.MongoURI != "":
		ds, err = ld.loadMongo(ctx)
	default:
		ds, err = ld.loadFile(ctx)
	}
	span.Fail(err)
	if err != nil {
		return nil, err
	}

	span.SetAttribute("columns", ds.NumColumns())
	span.SetAttribute("rows", ds.NumRows())
	ld.logger.Info("dataset loaded",
		zap.Int("columns", ds.NumColumns()),
		zap.Int("rows", ds.NumRows()))
	return ds, nil
}

func (l *Loader) fileFormat() (Format, compression.Algorithm, error) {
	alg, inner := compression.DetectAlgorithm(l.cfg.Path)
	if l.cfg.Compression != "" {
		parsed, err := compression.ParseAlgorithm(l.cfg.Compression)
		if err != nil {
			return "", "", err
		}
		alg = parsed
	}
	if l.cfg.Format != "" {
		format, err := ParseFormat(l.cfg.Format)
		return format, alg, err
	}
	format, err := DetectFormat(inner)
	return format, alg, err
}

func (l *Loader) loadFile(ctx context.Context) (*dataset.Dataset, error) {
	if err := compression.CheckSupported(l.cfg.Path); err != nil {
		return nil, err
	}
	format, alg, err := l.fileFormat()
	if err != nil {
		return nil, err
	}

	if format == FormatParquet && alg == compression.None && isLocal(l.cfg.Path) {
		l.logger.Debug("mapping parquet file", zap.String("path", l.cfg.Path))
		ds, err := l.mapParquet(l.cfg.Path)
		if err != nil {
			return nil, errors.Wrap(err, errors.TypeOf(err), "failed to read parquet source").
				WithDetail("path", l.cfg.Path)
		}
		return ds, nil
	}

	raw, err := l.openPath(ctx, l.cfg.Path)
	if err != nil {
		return nil, err
	}
	defer raw.Close()

	r, err := compression.NewReader(raw, alg)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	l.logger.Debug("reading file",
		zap.String("path", l.cfg.Path),
		zap.String("format", string(format)),
		zap.String("compression", string(alg)))

	ds, err := l.Decode(r, format)
	if err != nil {
		return nil, errors.Wrap(err, errors.TypeOf(err), "failed to read "+string(format)+" source").
			WithDetail("path", l.cfg.Path)
	}
	return ds, nil
}

func isLocal(path string) bool {
	return !strings.HasPrefix(path, "s3://") && !strings.HasPrefix(path, "gs://")
}

// openPath opens a local file or fetches an object store URI.
func (l *Loader) openPath(ctx context.Context, path string) (io.ReadCloser, error) {
	switch {
	case strings.HasPrefix(path, "s3://"):
		data, err := l.fetchS3(ctx, path)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	case strings.HasPrefix(path, "gs://"):
		data, err := l.fetchGCS(ctx, path)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrorTypeNotFound, "source file not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open source file").
			WithDetail("path", path)
	}
	return f, nil
}

// Decode reads an uncompressed stream in the given format.
func (l *Loader) Decode(r io.Reader, format Format) (*dataset.Dataset, error) {
	switch format {
	case FormatCSV:
		return l.readCSV(r, l.cfg.DelimiterRune())
	case FormatTSV:
		return l.readCSV(r, '\t')
	case FormatJSON, FormatNDJSON:
		return l.readJSON(r)
	case FormatArrow:
		return l.readIPC(r)
	case FormatParquet:
		return l.readParquet(r)
	case FormatAvro:
		return l.readAvro(r)
	}
	return nil, errors.Newf(errors.ErrorTypeCapability, "unsupported source format %q", format)
}

// Open loads the dataset described by cfg.
func Open(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (*dataset.Dataset, error) {
	return NewLoader(cfg, WithLogger(logger)).Load(ctx)
}
