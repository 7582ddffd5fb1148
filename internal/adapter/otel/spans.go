package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "fitstack"

// StartResolveSpan starts a span for a host-to-tenant resolution.
func StartResolveSpan(ctx context.Context, host string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "tenant.resolve",
		trace.WithAttributes(
			attribute.String("http.host", host),
		),
	)
}

// StartPoolOpenSpan starts a span for opening a tenant database pool.
func StartPoolOpenSpan(ctx context.Context, database string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "db.pool_open",
		trace.WithAttributes(
			attribute.String("db.name", database),
		),
	)
}

// StartProvisionSpan starts a span for tenant provisioning.
func StartProvisionSpan(ctx context.Context, slug string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "tenant.provision",
		trace.WithAttributes(
			attribute.String("tenant.slug", slug),
		),
	)
}
