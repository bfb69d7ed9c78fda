package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/rxkit/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// Enabled turns on OTLP metric export.
	Enabled bool `mapstructure:"enabled"`
	// ServiceName is the name of the service.
	ServiceName string `mapstructure:"-"`
	// ServiceVersion is the version of the service.
	ServiceVersion string `mapstructure:"-"`
	// Environment is the deployment environment (dev, staging, prod).
	Environment string `mapstructure:"-"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `mapstructure:"endpoint"`
	// Insecure allows insecure connections (for development).
	Insecure bool `mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Subscription outcomes.
const (
	OutcomeComplete  = "complete"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Signal kinds.
const (
	SignalNext     = "next"
	SignalError    = "error"
	SignalComplete = "complete"
)

// StreamMetrics holds OpenTelemetry instruments for stream subscriptions.
// A nil *StreamMetrics records nothing.
type StreamMetrics struct {
	started    metric.Int64Counter
	active     metric.Int64UpDownCounter
	terminated metric.Int64Counter
	signals    metric.Int64Counter
	duration   metric.Float64Histogram
}

// NewStreamMetrics creates metric instruments on the given meter.
func NewStreamMetrics(meter metric.Meter) (*StreamMetrics, error) {
	started, err := meter.Int64Counter("rx.subscriptions.started",
		metric.WithDescription("Total number of subscriptions started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.subscriptions.started counter: %w", err)
	}

	active, err := meter.Int64UpDownCounter("rx.subscriptions.active",
		metric.WithDescription("Number of subscriptions not yet terminated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.subscriptions.active gauge: %w", err)
	}

	terminated, err := meter.Int64Counter("rx.subscriptions.terminated",
		metric.WithDescription("Total subscriptions ended, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.subscriptions.terminated counter: %w", err)
	}

	signals, err := meter.Int64Counter("rx.signals",
		metric.WithDescription("Signals delivered to subscribers, by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.signals counter: %w", err)
	}

	duration, err := meter.Float64Histogram("rx.subscription.duration",
		metric.WithDescription("Lifetime of subscriptions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rx.subscription.duration histogram: %w", err)
	}

	return &StreamMetrics{
		started:    started,
		active:     active,
		terminated: terminated,
		signals:    signals,
		duration:   duration,
	}, nil
}

// SubscriptionStarted records a new subscription to the named stream.
func (m *StreamMetrics) SubscriptionStarted(ctx context.Context, stream string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("stream", stream))
	m.started.Add(ctx, 1, attrs)
	m.active.Add(ctx, 1, attrs)
}

// SignalDelivered records one signal handed to a subscriber.
func (m *StreamMetrics) SignalDelivered(ctx context.Context, stream, kind string) {
	if m == nil {
		return
	}
	m.signals.Add(ctx, 1, metric.WithAttributes(
		attribute.String("stream", stream),
		attribute.String("kind", kind),
	))
}

// SubscriptionEnded records the end of a subscription.
func (m *StreamMetrics) SubscriptionEnded(ctx context.Context, stream, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1, metric.WithAttributes(attribute.String("stream", stream)))
	attrs := metric.WithAttributes(
		attribute.String("stream", stream),
		attribute.String("outcome", outcome),
	)
	m.terminated.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}
