// Package engine implements the action dispatch engine: it ties together
// the action registry, the dispatch policy, and the message catalog to
// execute an action end-to-end: protocol deny gating, client version
// checks, middleware chaining, response normalization, and the encrypted
// action manifest.
package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/morezero/action-gateway/pkg/action"
	"github.com/morezero/action-gateway/pkg/catalog"
	"github.com/morezero/action-gateway/pkg/events"
	"github.com/morezero/action-gateway/pkg/policy"
)

const logPrefix = "engine:engine"

// Header names consumed on the dispatch path.
const (
	// HeaderLang overrides the request language.
	HeaderLang = "x-lang"
	// HeaderAcceptLanguage is the standard negotiation header; the first
	// two-letter code wins.
	HeaderAcceptLanguage = "accept-language"
	// HeaderClientVersion carries the client build version, required for
	// API-protocol dispatch.
	HeaderClientVersion = "x-client-version"
)

// Error codes synthesized by the engine.
const (
	ErrNoRegistry            = "system:no-registry"
	ErrNoResponse            = "system:no-response-sending"
	ErrClientVersionRequired = "system:client-version-required"
	ErrNeedUpgradeClient     = "system:need-upgrade-client"
	ErrInternal              = "system:internal-server-error"
)

// Params holds constructor parameters for New.
type Params struct {
	Registry *action.Registry
	Policy   *policy.Policy
	Catalog  *catalog.Catalog
	// Publisher observes completed dispatches. Nil means no observation.
	Publisher events.Publisher
	// SkipMiddlewareNormalize passes raw middleware results to handlers
	// without shaping them into envelopes.
	SkipMiddlewareNormalize bool
}

// Engine is the dispatch orchestrator. It is safe for concurrent use once
// its registry, policy and catalog are fully configured.
type Engine struct {
	registry  *action.Registry
	policy    *policy.Policy
	catalog   *catalog.Catalog
	publisher events.Publisher
	skipMwNorm bool

	manifestOnce sync.Once
	manifest     *Manifest
	manifestErr  error
}

// New constructs an Engine. Policy is required; a missing registry or
// catalog defaults to an empty one.
func New(params Params) (*Engine, error) {
	if params.Policy == nil {
		return nil, action.NewConfigError("MISSING_POLICY", fmt.Sprintf("%s - policy is required", logPrefix))
	}
	reg := params.Registry
	if reg == nil {
		reg = action.NewRegistry()
	}
	cat := params.Catalog
	if cat == nil {
		cat = catalog.New("")
	}
	pub := params.Publisher
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}
	return &Engine{
		registry:   reg,
		policy:     params.Policy,
		catalog:    cat,
		publisher:  pub,
		skipMwNorm: params.SkipMiddlewareNormalize,
	}, nil
}

// Registry returns the engine's registry (for configuration-phase setup).
func (e *Engine) Registry() *action.Registry { return e.registry }

// Catalog returns the engine's message catalog.
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Policy returns the engine's policy.
func (e *Engine) Policy() *policy.Policy { return e.policy }

// resolveLang determines the active language for a request: explicit
// x-lang header, then the first accept-language code, then the context's
// declared language, then the catalog default.
func (e *Engine) resolveLang(req *action.Request) string {
	if lang := headerValue(req, HeaderLang); lang != "" {
		return lang
	}
	if codes := catalog.ParseAcceptLanguage(headerValue(req, HeaderAcceptLanguage)); len(codes) > 0 {
		return codes[0]
	}
	if req.System.Lang != "" {
		return req.System.Lang
	}
	return e.catalog.Active()
}

// headerValue looks up a header case-insensitively.
func headerValue(req *action.Request, name string) string {
	if req == nil || len(req.System.Headers) == 0 {
		return ""
	}
	if v, ok := req.System.Headers[name]; ok {
		return v
	}
	for key, v := range req.System.Headers {
		if strings.EqualFold(key, name) {
			return v
		}
	}
	return ""
}
