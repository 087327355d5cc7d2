// Package events defines dispatch event types and publisher interfaces
// for observing the action engine.
package events

import "time"

// DispatchEvent is emitted once per dispatch, after the response envelope
// has been produced.
type DispatchEvent struct {
	RequestID string        `json:"requestId,omitempty"`
	Protocol  string        `json:"protocol"`
	Action    string        `json:"action"`
	Status    int           `json:"status"`
	ErrorCode string        `json:"errorCode,omitempty"`
	Duration  time.Duration `json:"-"`
	Timestamp string        `json:"timestamp"`
}

// OK reports whether the dispatch produced a success envelope.
func (e *DispatchEvent) OK() bool { return e.ErrorCode == "" }
