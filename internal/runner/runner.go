// Package runner executes one profiling run: load the dataset, profile it,
// write the report and export metrics.
package runner

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabprofile/pkg/compression"
	"github.com/ajitpratap0/tabprofile/pkg/config"
	"github.com/ajitpratap0/tabprofile/pkg/errors"
	"github.com/ajitpratap0/tabprofile/pkg/logger"
	"github.com/ajitpratap0/tabprofile/pkg/metrics"
	"github.com/ajitpratap0/tabprofile/pkg/observability"
	"github.com/ajitpratap0/tabprofile/pkg/profile"
	"github.com/ajitpratap0/tabprofile/pkg/report"
	"github.com/ajitpratap0/tabprofile/pkg/source"
)

// Runner runs profiling jobs. The zero value is not usable; use New.
type Runner struct {
	cfg         *config.Config
	logger      *zap.Logger
	stdout      io.Writer
	traceWriter io.Writer
	version     string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStdout sets where reports go when no output path is configured.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) { r.stdout = w }
}

// WithTraceWriter sets where exported spans go.
func WithTraceWriter(w io.Writer) Option {
	return func(r *Runner) { r.traceWriter = w }
}

// WithVersion labels traces with the build version.
func WithVersion(v string) Option {
	return func(r *Runner) { r.version = v }
}

// New creates a runner for cfg. The configuration must already be valid.
func New(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: zap.NewNop(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the job and returns the computed profile.
func (r *Runner) Run(ctx context.Context) (*profile.Profile, error) {
	format, err := report.ParseFormat(r.cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	ctx = logger.ContextWithRunID(ctx, runID)
	log := logger.WithContext(ctx, r.logger)
	monitor := NewResourceMonitor()

	shutdown, err := observability.InitTracing(r.cfg.Tracing, observability.TracingOptions{
		ServiceVersion: r.version,
		Writer:         r.traceWriter,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	ctx, span := observability.StartSpan(ctx, "runner.Run")
	defer span.End()
	span.SetAttribute("run_id", runID)

	var collector *metrics.Collector
	if r.cfg.Metrics.Enabled {
		collector = metrics.NewCollector()
	}

	p, err := r.profile(ctx, log, collector)
	span.Fail(err)
	if err != nil {
		return nil, err
	}

	if err := r.writeReport(p, format); err != nil {
		return nil, err
	}

	if collector != nil && r.cfg.Metrics.TextfilePath != "" {
		if err := collector.WriteTextfile(r.cfg.Metrics.TextfilePath); err != nil {
			return nil, err
		}
		log.Debug("metrics written", zap.String("path", r.cfg.Metrics.TextfilePath))
	}

	log.Info("run completed", monitor.Usage().Fields()...)
	return p, nil
}

func (r *Runner) profile(ctx context.Context, log *zap.Logger, collector *metrics.Collector) (*profile.Profile, error) {
	// the loader derives its own logger from ctx
	loader := source.NewLoader(r.cfg.Source, source.WithLogger(r.logger))

	timer := metrics.NewTimer("load")
	ds, err := loader.Load(ctx)
	if collector != nil {
		collector.ObserveLoad(loader.Label(), err)
	}
	if err != nil {
		return nil, err
	}
	defer ds.Release()
	log.Debug("load finished", zap.Duration("duration", timer.Stop()))

	opts := []profile.Option{
		profile.WithWorkers(r.cfg.Profiling.GetWorkers()),
		profile.WithLogger(log),
	}
	if collector != nil {
		opts = append(opts, profile.WithRecorder(collector))
	}

	timer = metrics.NewTimer("profile")
	p, err := profile.NewEngine(opts...).Profile(ctx, ds)
	if err != nil {
		return nil, err
	}
	elapsed := timer.Stop()
	if collector != nil {
		collector.ObserveProfile(elapsed)
	}

	log.Info("dataset profiled",
		zap.String("source", loader.Label()),
		zap.Int("columns", p.Len()),
		zap.Int("rows", ds.NumRows()),
		zap.Duration("duration", elapsed))
	return p, nil
}

// writeReport writes to the output path, compressed per its extension or
// the configured algorithm, or to stdout when no path is set.
func (r *Runner) writeReport(p *profile.Profile, format report.Format) error {
	if r.cfg.Output.Path == "" {
		return report.Write(r.stdout, p, format, r.cfg.Output.Indent)
	}

	alg, _ := compression.DetectAlgorithm(r.cfg.Output.Path)
	if r.cfg.Output.Compression != "" {
		parsed, err := compression.ParseAlgorithm(r.cfg.Output.Compression)
		if err != nil {
			return err
		}
		alg = parsed
	}

	f, err := os.Create(r.cfg.Output.Path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create report file").
			WithDetail("path", r.cfg.Output.Path)
	}
	defer f.Close()

	w, err := compression.NewWriter(f, alg, compression.Default)
	if err != nil {
		return err
	}
	if err := report.Write(w, p, format, r.cfg.Output.Indent); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush report").
			WithDetail("path", r.cfg.Output.Path)
	}
	if err := f.Sync(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to sync report file").
			WithDetail("path", r.cfg.Output.Path)
	}
	return nil
}

// Run executes one profiling run for cfg with the given logger.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*profile.Profile, error) {
	return New(cfg, WithLogger(log)).Run(ctx)
}
