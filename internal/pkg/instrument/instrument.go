package instrument

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Instrumentation hands out tracers and meters to the usecases and stores.
type Instrumentation interface {
	Tracer(name string) trace.Tracer
	Meter(name string) metric.Meter
	Shutdown(ctx context.Context) error
}

// Config is filled from the instrument.* config keys.
type Config struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	// Environment becomes deployment.environment on every signal.
	Environment string
	// OTLPEndpoint is a gRPC collector address; plaintext unless OTLPSecure.
	OTLPEndpoint string
	OTLPSecure   bool
	// TraceSampleRatio is clamped to [0, 1]; parents decide for child spans.
	TraceSampleRatio float64
	// MetricsInterval defaults to 15s.
	MetricsInterval time.Duration
	// MaskFields are log keys printed as "***", matched ignoring case.
	MaskFields []string
	// LogLevel is one of debug, info, warn or error. Defaults to info.
	LogLevel string
	// LogWriter receives JSON log lines. Defaults to stdout.
	LogWriter io.Writer
}

const defaultMetricsInterval = 15 * time.Second

// providers backs both the exporting and the noop Instrumentation. Shutdown
// runs stops in order and joins their errors.
type providers struct {
	tracers trace.TracerProvider
	meters  metric.MeterProvider
	stops   []func(context.Context) error
}

// New installs the JSON slog default and, when enabled, wires traces, metrics
// and logs to an OTLP gRPC collector. Disabled instrumentation is a noop.
func New(ctx context.Context, cfg *Config) (Instrumentation, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	if !cfg.Enabled {
		initLogging(cfg, nil)
		return NewNoop(), nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, err
	}

	exp, err := newExporters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(min(max(cfg.TraceSampleRatio, 0), 1)))),
		sdktrace.WithBatcher(exp.trace),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp.metric, sdkmetric.WithInterval(interval))),
	)
	lp := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp.log)),
	)

	initLogging(cfg, lp)

	return &providers{
		tracers: tp,
		meters:  mp,
		stops:   []func(context.Context) error{tp.Shutdown, mp.Shutdown, lp.Shutdown},
	}, nil
}

type exporters struct {
	trace  *otlptrace.Exporter
	metric *otlpmetricgrpc.Exporter
	log    *otlploggrpc.Exporter
}

// newExporters dials the collector once per signal. An exporter built before a
// later one fails is shut down again.
func newExporters(ctx context.Context, cfg *Config) (exp exporters, err error) {
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if !cfg.OTLPSecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	defer func() {
		if err == nil {
			return
		}
		if exp.trace != nil {
			_ = exp.trace.Shutdown(ctx)
		}
		if exp.metric != nil {
			_ = exp.metric.Shutdown(ctx)
		}
	}()

	if exp.trace, err = otlptracegrpc.New(ctx, traceOpts...); err != nil {
		return exp, err
	}
	if exp.metric, err = otlpmetricgrpc.New(ctx, metricOpts...); err != nil {
		return exp, err
	}
	if exp.log, err = otlploggrpc.New(ctx, logOpts...); err != nil {
		return exp, err
	}

	return exp, nil
}

func (p *providers) Tracer(name string) trace.Tracer {
	return p.tracers.Tracer(name)
}

func (p *providers) Meter(name string) metric.Meter {
	return p.meters.Meter(name)
}

// Shutdown flushes and stops traces, metrics and logs, in that order.
func (p *providers) Shutdown(ctx context.Context) error {
	errs := make([]error, 0, len(p.stops))
	for _, stop := range p.stops {
		errs = append(errs, stop(ctx))
	}
	return errors.Join(errs...)
}

// NewNoop is used by the CLI and by tests.
func NewNoop() Instrumentation {
	return &providers{
		tracers: tracenoop.NewTracerProvider(),
		meters:  metricnoop.NewMeterProvider(),
	}
}
