package events

import "context"

// Publisher is the interface for publishing dispatch events.
type Publisher interface {
	PublishDispatch(ctx context.Context, event *DispatchEvent)
}

// NoOpPublisher is a Publisher that does nothing (for in-process usage
// without observers).
type NoOpPublisher struct{}

// PublishDispatch is a no-op.
func (p *NoOpPublisher) PublishDispatch(_ context.Context, _ *DispatchEvent) {}

// CallbackPublisher is a Publisher that calls a callback function (for
// testing).
type CallbackPublisher struct {
	callback func(ctx context.Context, event *DispatchEvent)
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, event *DispatchEvent)) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// PublishDispatch calls the callback.
func (p *CallbackPublisher) PublishDispatch(ctx context.Context, event *DispatchEvent) {
	p.callback(ctx, event)
}

// FanoutPublisher publishes to multiple publishers in order.
type FanoutPublisher struct {
	publishers []Publisher
}

// NewFanoutPublisher creates a FanoutPublisher over the given publishers.
func NewFanoutPublisher(publishers ...Publisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

// PublishDispatch publishes the event to every wrapped publisher.
func (p *FanoutPublisher) PublishDispatch(ctx context.Context, event *DispatchEvent) {
	for _, pub := range p.publishers {
		pub.PublishDispatch(ctx, event)
	}
}
