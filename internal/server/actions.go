package server

import (
	"context"
	"time"

	"github.com/morezero/action-gateway/pkg/action"
)

// registerBuiltins installs the gateway's built-in actions. They register
// first, so application actions merged afterwards can override them.
func registerBuiltins(reg *action.Registry) error {
	if err := reg.Set("system:ping", pingHandler); err != nil {
		return err
	}
	return reg.Set("system:echo", echoHandler)
}

// pingHandler answers with a liveness payload.
func pingHandler(_ context.Context, _ *action.Request) (any, error) {
	return map[string]any{
		"data": map[string]any{
			"pong": true,
			"time": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// echoHandler reflects the request payload back to the caller.
func echoHandler(_ context.Context, req *action.Request) (any, error) {
	return map[string]any{
		"data": map[string]any{
			"echo": req.Data,
		},
	}, nil
}
