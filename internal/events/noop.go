package events

import "context"

// NoopPublisher discards every event. The CLI installs it when no NATS URL
// is configured, so commands can publish unconditionally and still work on
// a standalone machine.
type NoopPublisher struct{}

// Publish drops the event.
func (n *NoopPublisher) Publish(ctx context.Context, topic string, event any) error {
	return nil
}

// Close is a no-op.
func (n *NoopPublisher) Close() error {
	return nil
}
