// Package server orchestrates the gateway: NATS dispatch subjects, the
// action engine, and the HTTP health/metrics/manifest surface.
package server

import (
	"github.com/morezero/action-gateway/pkg/action"
)

// DispatchRequest is the JSON envelope for incoming COMMS dispatch
// requests.
type DispatchRequest struct {
	ID     string            `json:"id"`
	Action string            `json:"action"`
	Data   any               `json:"data,omitempty"`
	System action.SystemInfo `json:"system"`
}

// DispatchResponse is the JSON envelope for COMMS dispatch responses.
type DispatchResponse struct {
	ID       string           `json:"id"`
	OK       bool             `json:"ok"`
	Envelope *action.Envelope `json:"envelope,omitempty"`
}

// toRequest converts a wire request into an engine request context.
func (r *DispatchRequest) toRequest() *action.Request {
	return &action.Request{
		System: r.System,
		Type:   r.Action,
		Data:   r.Data,
	}
}
