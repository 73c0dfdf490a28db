// Package profile classifies the columns of a dataset and computes a
// kind-specific summary record for each one.
//
// # Kinds
//
// Every column resolves to exactly one Kind:
//
//   - KindNumeric: numeric storage with values other than 0 and 1
//   - KindBoolean: boolean storage, or numeric storage holding only 0 and 1
//   - KindDatetime: timestamp or duration storage
//   - KindString: everything else, including empty and all-null columns
//
// # Summaries
//
// Each kind has its own record type. Statistics that cannot be computed are
// absent (Optional with no value) rather than zero; summarizers never fail.
//
// # Usage
//
//	engine := profile.NewEngine(profile.WithWorkers(4))
//	p, err := engine.Profile(ctx, ds)
//	if err != nil {
//	    return err
//	}
//	for _, col := range p.Columns() {
//	    fmt.Println(col.Name, col.Kind)
//	}
package profile

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/tabprofile/pkg/dataset"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
)

const tracerName = "github.com/ajitpratap0/tabprofile/pkg/profile"

// Dataset is what the engine reads: an ordered list of columns.
type Dataset interface {
	NumColumns() int
	Column(i int) dataset.Column
}

// Recorder receives per-column measurements.
type Recorder interface {
	ObserveColumn(kind string, rows int, elapsed time.Duration)
}

// Engine profiles datasets. The zero value is not usable; use NewEngine.
type Engine struct {
	workers  int
	logger   *zap.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many columns are summarized concurrently. Values
// below 1 mean sequential.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n < 1 {
			n = 1
		}
		e.workers = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRecorder sets the metrics sink.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// NewEngine creates an engine. Without options it is sequential and silent.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		workers: 1,
		logger:  zap.NewNop(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute profiles a dataset sequentially.
func Compute(ds Dataset) (*Profile, error) {
	return NewEngine().Profile(context.Background(), ds)
}

// Profile classifies and summarizes every column of ds. Column names must be
// unique. Cancellation is checked between columns.
func (e *Engine) Profile(ctx context.Context, ds Dataset) (*Profile, error) {
	ctx, span := e.tracer.Start(ctx, "profile.Profile",
		trace.WithAttributes(attribute.Int("columns", ds.NumColumns())))
	defer span.End()

	if err := checkNames(ds); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	start := time.Now()
	results := make([]ColumnProfile, ds.NumColumns())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < ds.NumColumns(); i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.profileColumn(gctx, ds.Column(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, errors.ErrorTypeCanceled, "profiling interrupted")
	}
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, errors.Wrap(err, errors.ErrorTypeCanceled, "profiling interrupted")
	}

	e.logger.Debug("dataset profiled",
		zap.Int("columns", len(results)),
		zap.Int("workers", e.workers),
		zap.Duration("duration", time.Since(start)))

	return newProfile(results), nil
}

func (e *Engine) profileColumn(ctx context.Context, c dataset.Column) ColumnProfile {
	_, span := e.tracer.Start(ctx, "profile.Column",
		trace.WithAttributes(attribute.String("column", c.Name())))
	defer span.End()

	start := time.Now()
	kind := Classify(c)
	summary := Summarize(c, kind)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.String("kind", kind.String()),
		attribute.Int("rows", c.Len()),
	)
	if e.recorder != nil {
		e.recorder.ObserveColumn(kind.String(), c.Len(), elapsed)
	}
	e.logger.Debug("column profiled",
		zap.String("column", c.Name()),
		zap.Stringer("kind", kind),
		zap.Int("rows", c.Len()),
		zap.Duration("duration", elapsed))

	return ColumnProfile{Name: c.Name(), Kind: kind, Summary: summary}
}

// checkNames rejects datasets where two columns share a name.
func checkNames(ds Dataset) error {
	seen := make(map[string]int, ds.NumColumns())
	for i := 0; i < ds.NumColumns(); i++ {
		name := ds.Column(i).Name()
		if first, ok := seen[name]; ok {
			return errors.Newf(errors.ErrorTypeValidation, "duplicate column name %q", name).
				WithDetail("first_index", first).
				WithDetail("second_index", i)
		}
		seen[name] = i
	}
	return nil
}
