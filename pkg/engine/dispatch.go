package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/morezero/action-gateway/pkg/action"
	"github.com/morezero/action-gateway/pkg/events"
)

const dispatchLogPrefix = "engine:dispatch"

// DispatchServer is the server-action protocol entry point. A deny-listed
// action yields the same 404 envelope as an unregistered one, so a
// deny-list cannot be probed for key existence.
func (e *Engine) DispatchServer(ctx context.Context, req *action.Request) *action.Envelope {
	return e.dispatch(ctx, req, action.ProtocolServer)
}

// DispatchAPI is the API protocol entry point. On top of the deny gate it
// enforces the client version contract.
func (e *Engine) DispatchAPI(ctx context.Context, req *action.Request) *action.Envelope {
	return e.dispatch(ctx, req, action.ProtocolAPI)
}

// DispatchSystem is the system-rendered protocol entry point: the shared
// core path with no deny-list and no version gate.
func (e *Engine) DispatchSystem(ctx context.Context, req *action.Request) *action.Envelope {
	return e.dispatch(ctx, req, action.ProtocolSystem)
}

func (e *Engine) dispatch(ctx context.Context, req *action.Request, proto action.Protocol) *action.Envelope {
	start := time.Now()
	req.Protocol = proto

	var env *action.Envelope
	if e.policy.Denied(req.Type, proto) {
		// indistinguishable from an unresolved key on purpose
		env = e.errorEnvelope(ErrNoRegistry, 404, nil, e.resolveLang(req))
	} else {
		env = e.Execute(ctx, req)
	}

	e.publisher.PublishDispatch(ctx, &events.DispatchEvent{
		Protocol:  string(proto),
		Action:    action.NormalizeKey(req.Type),
		Status:    env.Response.Status,
		ErrorCode: env.Error,
		Duration:  time.Since(start),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return env
}

// Execute runs the shared core path: language resolution, API version
// gating, registry lookup, middleware chain, handler execution, response
// normalization. It never returns nil and never panics; every failure is
// recovered into a normalized envelope.
func (e *Engine) Execute(ctx context.Context, req *action.Request) *action.Envelope {
	lang := e.resolveLang(req)

	if req.Protocol == action.ProtocolAPI {
		clientVersion := headerValue(req, HeaderClientVersion)
		if clientVersion == "" {
			return e.errorEnvelope(ErrClientVersionRequired, 400, nil, lang)
		}
		info := e.policy.CheckVersion(clientVersion)
		if !info.MeetsMinimum && info.MustUpgrade {
			snap := e.policy.Snapshot()
			params := []map[string]string{{"min": snap.VersionMin, "now": snap.VersionNow}}
			return e.errorEnvelope(ErrNeedUpgradeClient, 426, params, lang)
		}
	}

	entry, ok := e.registry.Get(req.Type)
	if !ok {
		return e.errorEnvelope(ErrNoRegistry, 404, nil, lang)
	}

	return e.run(ctx, entry, req, lang)
}

// run executes the middleware chain and handler under a recover guard.
func (e *Engine) run(ctx context.Context, entry action.Entry, req *action.Request, lang string) (env *action.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(fmt.Sprintf("%s - panic in action %q: %v", dispatchLogPrefix, req.Type, r))
			env = e.errorEnvelope(ErrInternal, 500, nil, lang)
		}
	}()

	if entry.Paired() {
		mwRaw, err := entry.Middleware(ctx, req)
		if err != nil {
			slog.Error(fmt.Sprintf("%s - middleware for %q failed: %v", dispatchLogPrefix, req.Type, err))
			return e.errorEnvelope(ErrInternal, 500, nil, lang)
		}
		handlerReq := *req
		if e.skipMwNorm {
			handlerReq.Middleware = mwRaw
		} else {
			handlerReq.Middleware = e.NormalizeResponse(mwRaw, req, lang)
		}
		req = &handlerReq
	}

	raw, err := entry.Handler(ctx, req)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - handler for %q failed: %v", dispatchLogPrefix, req.Type, err))
		return e.errorEnvelope(ErrInternal, 500, nil, lang)
	}
	return e.NormalizeResponse(raw, req, lang)
}
