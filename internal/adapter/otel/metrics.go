package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "fitstack"

// Metrics holds all FitStack metric instruments.
type Metrics struct {
	TenantResolutions metric.Int64Counter
	ResolutionErrors  metric.Int64Counter
	AccessDenials     metric.Int64Counter
	PoolsActive       metric.Int64UpDownCounter
	PoolsOpenedTotal  metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TenantResolutions, err = meter.Int64Counter("fitstack.tenant.resolutions",
		metric.WithDescription("Number of successful tenant resolutions"))
	if err != nil {
		return nil, err
	}

	m.ResolutionErrors, err = meter.Int64Counter("fitstack.tenant.resolution_errors",
		metric.WithDescription("Number of failed tenant resolutions"))
	if err != nil {
		return nil, err
	}

	m.AccessDenials, err = meter.Int64Counter("fitstack.access.denials",
		metric.WithDescription("Number of organization access denials"))
	if err != nil {
		return nil, err
	}

	m.PoolsActive, err = meter.Int64UpDownCounter("fitstack.db.pools_active",
		metric.WithDescription("Number of open per-tenant connection pools"))
	if err != nil {
		return nil, err
	}

	m.PoolsOpenedTotal, err = meter.Int64Counter("fitstack.db.pools_opened",
		metric.WithDescription("Total connection pools opened since start"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// ResolutionSucceeded implements resolver.Observer.
func (m *Metrics) ResolutionSucceeded(ctx context.Context, slug string) {
	m.TenantResolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("tenant", slug)))
}

// ResolutionFailed implements resolver.Observer.
func (m *Metrics) ResolutionFailed(ctx context.Context, reason string) {
	m.ResolutionErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

// AccessDenied counts one organization access denial.
func (m *Metrics) AccessDenied(ctx context.Context) {
	m.AccessDenials.Add(ctx, 1)
}

// PoolOpened implements registry.Observer.
func (m *Metrics) PoolOpened(ctx context.Context, database string) {
	attrs := metric.WithAttributes(attribute.String("database", database))
	m.PoolsActive.Add(ctx, 1, attrs)
	m.PoolsOpenedTotal.Add(ctx, 1, attrs)
}

// PoolClosed implements registry.Observer.
func (m *Metrics) PoolClosed(ctx context.Context, database string) {
	m.PoolsActive.Add(ctx, -1, metric.WithAttributes(attribute.String("database", database)))
}
