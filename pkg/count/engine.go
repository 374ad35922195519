package count

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/ajitpratap0/csvcount/pkg/columnar"
	"github.com/ajitpratap0/csvcount/pkg/csvio"
	"github.com/ajitpratap0/csvcount/pkg/errors"
	"github.com/ajitpratap0/csvcount/pkg/logger"
	"github.com/ajitpratap0/csvcount/pkg/metrics"
	"github.com/ajitpratap0/csvcount/pkg/observability"
)

// Engine selects and runs a counting strategy. It holds no per-call
// state and is safe for concurrent use.
type Engine struct {
	logger        *zap.Logger
	aggregator    columnar.Aggregator
	optimizations columnar.Optimizations
	tempDir       string
	threads       int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the base logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithAggregator replaces the DuckDB aggregator
func WithAggregator(a columnar.Aggregator) Option {
	return func(e *Engine) { e.aggregator = a }
}

// WithOptimizations sets the optimizer passes used by the aggregator
func WithOptimizations(o columnar.Optimizations) Option {
	return func(e *Engine) { e.optimizations = o }
}

// WithTempDir sets where standard input is materialized
func WithTempDir(dir string) Option {
	return func(e *Engine) { e.tempDir = dir }
}

// WithThreads caps the aggregator's parallelism; zero means one per CPU
func WithThreads(n int) Option {
	return func(e *Engine) { e.threads = n }
}

// NewEngine creates an Engine. Without options it logs nowhere and uses
// DuckDB when the build links it.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:        zap.NewNop(),
		optimizations: columnar.DefaultOptimizations(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.aggregator == nil {
		e.aggregator = columnar.NewDuckDB(e.logger.Named("duckdb"))
	}
	return e
}

// Compute counts the records of src
func (e *Engine) Compute(ctx context.Context, src Source, req Request) (Result, error) {
	ctx = logger.ContextWithSource(ctx, src.Name())
	log := logger.FromContext(ctx, e.logger)

	ctx, span := observability.StartSpan(ctx, "count.compute",
		attribute.String("source", src.Name()),
		attribute.Bool("width", req.Width),
	)
	timer := metrics.NewTimer()

	res, err := e.compute(ctx, log, src, req)
	if err == nil {
		metrics.ObserveCount(string(res.Strategy), res.Count, timer.Stop())
		span.SetAttributes(
			attribute.String("strategy", string(res.Strategy)),
			attribute.Int64("count", int64(res.Count)),
		)
		log.Debug("count computed",
			zap.String("strategy", string(res.Strategy)),
			zap.Uint64("count", res.Count),
			zap.Int("width", res.Width),
		)
	}
	observability.EndSpan(span, err)
	return res, err
}

func (e *Engine) compute(ctx context.Context, log *zap.Logger, src Source, req Request) (Result, error) {
	d := src.Dialect()

	if req.Width || d.Flexible {
		d.Flexible = true
		if req.Width {
			d.Quoting = false
		}
		log.Debug("strategy selected", zap.String("strategy", string(StrategyStream)), zap.Bool("width", req.Width))
		return e.stream(ctx, src.Open, d, req.Width)
	}

	if n, ok := e.probeIndex(ctx, log, src); ok {
		return Result{Count: n, Strategy: StrategyIndex}, nil
	}

	if reason := e.disqualified(src, req); reason != "" {
		log.Debug("strategy selected", zap.String("strategy", string(StrategyStream)), zap.String("reason", reason))
		return e.stream(ctx, src.Open, d, false)
	}

	log.Debug("strategy selected", zap.String("strategy", string(StrategyAccelerated)))
	return e.accelerated(ctx, log, src, d, req)
}

// probeIndex returns the indexed count. A stale, corrupt or absent index
// all mean "no index".
func (e *Engine) probeIndex(ctx context.Context, log *zap.Logger, src Source) (uint64, bool) {
	_, span := observability.StartSpan(ctx, "count.index")
	defer span.End()

	h, err := src.ProbeIndex()
	switch {
	case err != nil:
		metrics.IndexProbes.WithLabelValues("unavailable").Inc()
		log.Info("index unavailable, counting without it", zap.Error(err))
		span.SetAttributes(attribute.String("outcome", "unavailable"))
		return 0, false
	case h == nil:
		metrics.IndexProbes.WithLabelValues("absent").Inc()
		span.SetAttributes(attribute.String("outcome", "absent"))
		return 0, false
	}
	defer h.Close()

	metrics.IndexProbes.WithLabelValues("hit").Inc()
	span.SetAttributes(attribute.String("outcome", "hit"))
	log.Info("using index", zap.String("index", h.Path()), zap.Uint64("count", h.Count()))
	return h.Count(), true
}

func (e *Engine) disqualified(src Source, req Request) string {
	switch {
	case req.DisableAccelerated:
		return "accelerated disabled"
	case src.AcceleratedUnsupported():
		return "unsupported format"
	case !e.aggregator.Available():
		return "aggregator unavailable"
	}
	return ""
}

func (e *Engine) stream(ctx context.Context, open func() (io.ReadCloser, error), d csvio.Dialect, width bool) (Result, error) {
	_, span := observability.StartSpan(ctx, "count.stream",
		attribute.Bool("quoting", d.Quoting),
		attribute.Bool("flexible", d.Flexible),
	)

	rc, err := open()
	if err != nil {
		observability.EndSpan(span, err)
		return Result{}, err
	}
	r := csvio.NewReader(rc, d)
	defer r.Close()

	n, w, err := Scan(r, width)
	observability.EndSpan(span, err)
	if err != nil {
		return Result{}, err
	}
	return Result{Count: n, Width: w, Strategy: StrategyStream}, nil
}

func (e *Engine) accelerated(ctx context.Context, log *zap.Logger, src Source, d csvio.Dialect, req Request) (Result, error) {
	path, _ := src.Path()
	open := src.Open

	if src.IsStdin() {
		tf, err := e.materialize(src)
		if err != nil {
			return Result{}, err
		}
		defer e.cleanup(log, tf)
		path = tf.Path()
		open = tf.Open
	}

	plan := columnar.Plan{
		Path:          path,
		Delimiter:     d.Delimiter,
		Comment:       d.Comment,
		HasHeaders:    d.HasHeaders,
		LowMemory:     req.LowMemory,
		Threads:       e.threads,
		Optimizations: e.optimizations,
	}

	actx, span := observability.StartSpan(ctx, "count.accelerated",
		attribute.Bool("low_memory", req.LowMemory),
		attribute.Bool("stdin", src.IsStdin()),
	)
	out, err := e.aggregator.Count(actx, plan)
	if err == nil {
		span.SetAttributes(attribute.String("outcome", out.Kind.String()))
	}
	observability.EndSpan(span, err)
	if err != nil {
		return Result{}, err
	}

	if out.Kind == columnar.Counted {
		return Result{Count: out.Count, Strategy: StrategyAccelerated}, nil
	}

	metrics.Fallbacks.WithLabelValues(out.Reason).Inc()
	log.Info("accelerated count produced no result, streaming instead", zap.Error(emptyResultError(path, out)))

	res, err := e.stream(ctx, open, d, false)
	if err != nil {
		return Result{}, err
	}
	res.Fallback = true
	return res, nil
}

func (e *Engine) materialize(src Source) (*columnar.TempFile, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dir := e.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return columnar.Materialize(rc, dir)
}

// cleanup removes tf. A failure is reported but never changes the result.
func (e *Engine) cleanup(log *zap.Logger, tf *columnar.TempFile) {
	if err := tf.Remove(); err != nil {
		metrics.TempFileCleanupFailures.Inc()
		log.Warn("failed to remove temporary file", zap.String("path", tf.Path()), zap.Error(err))
	}
}

// emptyResultError describes an EmptyResult outcome for logs
func emptyResultError(path string, out columnar.Outcome) error {
	return errors.Newf(errors.ErrorTypeAcceleratedEmpty, "accelerated count produced no usable row (%s)", out.Reason).
		WithDetail("path", path).
		WithDetail("reason", out.Reason)
}

// IsFatal reports whether err from Compute should abort the command
func IsFatal(err error) bool {
	return errors.IsFatal(err)
}
