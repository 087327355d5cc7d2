// Package bootstrap provides startup configuration loading for the
// action gateway: deny rules and localized message catalogs, from JSON or
// YAML files.
package bootstrap

import (
	"fmt"

	"github.com/morezero/action-gateway/pkg/action"
	"github.com/morezero/action-gateway/pkg/catalog"
	"github.com/morezero/action-gateway/pkg/policy"
)

// DenyRule forbids one action key on one or more protocols.
type DenyRule struct {
	Action    string   `json:"action" yaml:"action"`
	Protocols []string `json:"protocols" yaml:"protocols"`
}

// Config is the root bootstrap configuration.
type Config struct {
	Name        string                       `json:"name" yaml:"name"`
	Version     string                       `json:"version" yaml:"version"`
	Description string                       `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultLang string                       `json:"defaultLang,omitempty" yaml:"defaultLang,omitempty"`
	Deny        []DenyRule                   `json:"deny,omitempty" yaml:"deny,omitempty"`
	Messages    map[string]map[string]string `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// Apply installs the bootstrap's deny rules into the policy and its
// messages into the catalog. Malformed deny rules are rejected; malformed
// messages are skipped by catalog merge semantics.
func (c *Config) Apply(pol *policy.Policy, cat *catalog.Catalog) error {
	if cat != nil {
		if c.DefaultLang != "" {
			cat.SetActive(c.DefaultLang)
		}
		for lang, messages := range c.Messages {
			for key, value := range messages {
				if err := cat.Set(lang, key, value); err != nil {
					return fmt.Errorf("bootstrap:apply - message %s/%s: %w", lang, key, err)
				}
			}
		}
	}
	if pol != nil {
		for _, rule := range c.Deny {
			protocols := make([]action.Protocol, 0, len(rule.Protocols))
			for _, p := range rule.Protocols {
				protocols = append(protocols, action.Protocol(p))
			}
			if err := pol.Deny(rule.Action, protocols...); err != nil {
				return fmt.Errorf("bootstrap:apply - deny %q: %w", rule.Action, err)
			}
		}
	}
	return nil
}
