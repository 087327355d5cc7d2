// Package policy holds the dispatch security policy: the manifest
// passkey, the version contract (current and minimum client versions,
// force-upgrade flag), and per-protocol deny-lists of action keys.
// A Policy is immutable after the configuration phase; Deny calls belong
// to setup, before concurrent dispatch begins.
package policy

import (
	"fmt"

	"github.com/morezero/action-gateway/pkg/action"
)

const logPrefix = "policy:policy"

// Params holds constructor parameters for New.
type Params struct {
	Passkey     string
	VersionNow  string
	VersionMin  string
	ForceUpdate bool
}

// Policy is the immutable-after-construction dispatch policy.
type Policy struct {
	passkey     string
	versionNow  string
	versionMin  string
	nowTuple    []int
	minTuple    []int
	forceUpdate bool
	denyAPI     []string
	denyServer  []string
}

// ValidationError is raised by malformed Deny calls.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// New validates the parameters and constructs a Policy. Passkey and both
// versions are required; a missing field is a fatal configuration error.
func New(params Params) (*Policy, error) {
	if params.Passkey == "" {
		return nil, action.NewConfigError("MISSING_PASSKEY", fmt.Sprintf("%s - passkey is required", logPrefix))
	}
	if params.VersionNow == "" {
		return nil, action.NewConfigError("MISSING_VERSION", fmt.Sprintf("%s - current version is required", logPrefix))
	}
	if params.VersionMin == "" {
		return nil, action.NewConfigError("MISSING_VERSION", fmt.Sprintf("%s - minimum version is required", logPrefix))
	}
	now := CanonicalVersion(params.VersionNow)
	min := CanonicalVersion(params.VersionMin)
	return &Policy{
		passkey:     params.Passkey,
		versionNow:  now,
		versionMin:  min,
		nowTuple:    parseTuple(now),
		minTuple:    parseTuple(min),
		forceUpdate: params.ForceUpdate,
	}, nil
}

// Deny appends the action key to the deny-list of each given protocol.
// Only api and server carry deny-lists; any other protocol is a
// validation error. Duplicates are permitted; membership is what is
// checked, not list length.
func (p *Policy) Deny(key string, protocols ...action.Protocol) error {
	normalized := action.NormalizeKey(key)
	if normalized == "" {
		return &ValidationError{Code: "INVALID_KEY", Message: fmt.Sprintf("%s - deny key %q normalizes to empty", logPrefix, key)}
	}
	for _, proto := range protocols {
		switch proto {
		case action.ProtocolAPI, action.ProtocolServer:
		default:
			return &ValidationError{Code: "INVALID_PROTOCOL", Message: fmt.Sprintf("%s - protocol %q has no deny-list", logPrefix, proto)}
		}
	}
	for _, proto := range protocols {
		if proto == action.ProtocolAPI {
			p.denyAPI = append(p.denyAPI, normalized)
		} else {
			p.denyServer = append(p.denyServer, normalized)
		}
	}
	return nil
}

// Denied reports whether the normalized key is on the deny-list of the
// given protocol. Protocols without a deny-list never deny.
func (p *Policy) Denied(key string, proto action.Protocol) bool {
	normalized := action.NormalizeKey(key)
	var list []string
	switch proto {
	case action.ProtocolAPI:
		list = p.denyAPI
	case action.ProtocolServer:
		list = p.denyServer
	default:
		return false
	}
	for _, denied := range list {
		if denied == normalized {
			return true
		}
	}
	return false
}

// VersionInfo holds the result of a client-version check.
type VersionInfo struct {
	// MustUpgrade mirrors the policy's force-update flag, independent of
	// any comparison.
	MustUpgrade bool `json:"must_upgrade"`
	// MeetsMinimum is true when client >= minimum version.
	MeetsMinimum bool `json:"meets_minimum"`
	// MatchesCurrent is true when client >= current version.
	MatchesCurrent bool `json:"matches_current"`
}

// CheckVersion parses the client version and compares it against the
// policy's version contract.
func (p *Policy) CheckVersion(clientVersion string) VersionInfo {
	client := parseTuple(CanonicalVersion(clientVersion))
	return VersionInfo{
		MustUpgrade:    p.forceUpdate,
		MeetsMinimum:   compareTuples(client, p.minTuple) >= 0,
		MatchesCurrent: compareTuples(client, p.nowTuple) >= 0,
	}
}

// Snapshot is the full policy configuration, exposed for the engine.
type Snapshot struct {
	Passkey     string
	VersionNow  string
	VersionMin  string
	ForceUpdate bool
	DenyAPI     []string
	DenyServer  []string
}

// Snapshot returns a copy of the full configuration.
func (p *Policy) Snapshot() Snapshot {
	return Snapshot{
		Passkey:     p.passkey,
		VersionNow:  p.versionNow,
		VersionMin:  p.versionMin,
		ForceUpdate: p.forceUpdate,
		DenyAPI:     append([]string(nil), p.denyAPI...),
		DenyServer:  append([]string(nil), p.denyServer...),
	}
}
