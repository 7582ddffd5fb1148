package logger

import "context"

type requestIDKey struct{}
type tenantSlugKey struct{}

// WithRequestID returns a new context with the given request ID stored.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithTenantSlug returns a new context carrying the resolved tenant slug so
// log records emitted deeper in the request can name the tenant.
func WithTenantSlug(ctx context.Context, slug string) context.Context {
	return context.WithValue(ctx, tenantSlugKey{}, slug)
}

// TenantSlug extracts the tenant slug from the context, or "" if unset.
func TenantSlug(ctx context.Context) string {
	slug, _ := ctx.Value(tenantSlugKey{}).(string)
	return slug
}
