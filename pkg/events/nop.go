package events

import "context"

// NopPublisher discards all events. Used when no broker is configured
// and in tests.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, map[string]any) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
