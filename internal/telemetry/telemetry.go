// Package telemetry sets up the OpenTelemetry meter used by the metrics
// collaborator. When disabled every instrument is a no-op.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the instrumentation scope name.
const MeterName = "taskboard"

// Config controls metric export.
type Config struct {
	Enabled  bool
	Interval time.Duration
}

// Provider wraps a meter with its shutdown hook.
type Provider struct {
	Meter    metric.Meter
	shutdown func(context.Context) error
}

// Init builds a Provider. Enabled providers export to w on cfg.Interval.
func Init(cfg Config, w io.Writer) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{
			Meter:    noop.NewMeterProvider().Meter(MeterName),
			shutdown: func(context.Context) error { return nil },
		}, nil
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	return &Provider{
		Meter:    mp.Meter(MeterName),
		shutdown: mp.Shutdown,
	}, nil
}

// Shutdown flushes pending metrics.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.shutdown == nil {
		return nil
	}
	return p.shutdown(ctx)
}
