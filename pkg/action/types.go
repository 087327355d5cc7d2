// Package action provides the in-memory action registry: normalized action
// keys mapped to handlers, optionally paired with a middleware, plus the
// request and response envelope types shared by every dispatch protocol.
package action

import "context"

// Protocol identifies the calling context of a dispatch.
type Protocol string

// Dispatch protocols. System-rendered calls bypass deny-lists and version
// gating; api and server each carry their own deny-list.
const (
	ProtocolSystem Protocol = "system"
	ProtocolServer Protocol = "server"
	ProtocolAPI    Protocol = "api"
)

// Valid reports whether p is one of the known protocols.
func (p Protocol) Valid() bool {
	return p == ProtocolSystem || p == ProtocolServer || p == ProtocolAPI
}

// Handler processes a request and returns a raw result. The result is
// loosely typed on purpose: the engine classifies it (success vs error)
// and shapes it into an Envelope. Returning a non-nil error is equivalent
// to an internal failure and is converted to a 500-class envelope.
type Handler func(ctx context.Context, req *Request) (any, error)

// Entry is a registered action: a handler, optionally preceded by a
// middleware. Middleware == nil means a bare handler.
type Entry struct {
	Middleware Handler
	Handler    Handler
}

// Paired reports whether the entry carries a middleware.
func (e Entry) Paired() bool { return e.Middleware != nil }

// SystemInfo holds per-request client metadata.
type SystemInfo struct {
	Headers  map[string]string `json:"headers,omitempty"`
	Cookies  map[string]string `json:"cookies,omitempty"`
	IP       string            `json:"ip,omitempty"`
	Location string            `json:"location,omitempty"`
	Lang     string            `json:"lang,omitempty"`
}

// Request is the per-call context handed to middlewares and handlers.
// It is constructed per dispatch and never persisted.
type Request struct {
	System   SystemInfo `json:"system"`
	Protocol Protocol   `json:"protocol,omitempty"`
	Type     string     `json:"type"`
	Data     any        `json:"data,omitempty"`

	// Middleware carries the prior middleware's result: an *Envelope
	// once normalized, or the raw result when normalization is skipped.
	// Present only when the entry is a middleware/handler pair.
	Middleware any `json:"middleware,omitempty"`
}

// Header is a single response header.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Cookie is a cookie to set on the response.
type Cookie struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Body is the response payload inside an Envelope: either a success body
// (Data) or an error body (Message/Protocol/Context/Params).
type Body struct {
	Status   int                 `json:"status"`
	Data     any                 `json:"data,omitempty"`
	Message  string              `json:"message,omitempty"`
	Protocol string              `json:"protocol,omitempty"`
	Context  []string            `json:"context,omitempty"`
	Params   []map[string]string `json:"params,omitempty"`
}

// Envelope is the uniform response shape returned by every dispatch entry
// point. Error holds the raw error code (e.g. "system:no-registry") when
// the response is an error, empty on success.
type Envelope struct {
	Error     string   `json:"error,omitempty"`
	Headers   []Header `json:"headers,omitempty"`
	SetCookie []Cookie `json:"set_cookie,omitempty"`
	RmCookie  []string `json:"rm_cookie,omitempty"`
	Redirect  string   `json:"redirect,omitempty"`
	Response  Body     `json:"response"`
}

// OK reports whether the envelope carries a success response.
func (e *Envelope) OK() bool { return e.Error == "" }

// ConfigError is a fatal configuration error raised during setup
// (registering a nil handler, constructing a policy without a passkey).
// It is never produced on the dispatch path.
type ConfigError struct {
	Code    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Code + ": " + e.Message
}

// NewConfigError creates a new ConfigError.
func NewConfigError(code, message string) *ConfigError {
	return &ConfigError{Code: code, Message: message}
}
