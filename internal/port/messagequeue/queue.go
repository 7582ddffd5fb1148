// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Drain gracefully drains all subscriptions before closing.
	Drain() error

	// Close shuts down the queue connection immediately.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// Subjects for tenant directory change events. Every process peer evicts its
// cached tenant record and pooled connection when one of these arrives.
const (
	SubjectTenantUpdated = "tenants.updated"
	SubjectTenantDeleted = "tenants.deleted"
)

// TenantEventPayload is the schema for tenants.* messages.
type TenantEventPayload struct {
	TenantID     string `json:"tenant_id"`
	Slug         string `json:"slug"`
	DatabaseName string `json:"database_name"`
}
