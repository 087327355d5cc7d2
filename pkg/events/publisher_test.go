package events

import (
	"context"
	"testing"
)

func TestCallbackPublisher(t *testing.T) {
	var got *DispatchEvent
	pub := NewCallbackPublisher(func(_ context.Context, event *DispatchEvent) {
		got = event
	})

	pub.PublishDispatch(context.Background(), &DispatchEvent{Protocol: "api", Action: "user:get", Status: 200})

	if got == nil {
		t.Fatal("expected callback to fire")
	}
	if got.Protocol != "api" || got.Action != "user:get" {
		t.Errorf("unexpected event: %+v", got)
	}
	if !got.OK() {
		t.Error("expected OK for event without error code")
	}
}

func TestFanoutPublisher(t *testing.T) {
	count := 0
	cb := NewCallbackPublisher(func(_ context.Context, _ *DispatchEvent) { count++ })
	pub := NewFanoutPublisher(cb, &NoOpPublisher{}, cb)

	pub.PublishDispatch(context.Background(), &DispatchEvent{Protocol: "server", Action: "x"})

	if count != 2 {
		t.Errorf("expected 2 callback invocations, got %d", count)
	}
}

func TestDispatchEvent_OK(t *testing.T) {
	if (&DispatchEvent{ErrorCode: "system:no-registry"}).OK() {
		t.Error("expected not OK with error code")
	}
	if !(&DispatchEvent{Status: 200}).OK() {
		t.Error("expected OK without error code")
	}
}
