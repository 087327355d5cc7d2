// Package catalog provides the localized message catalog: per-language
// message templates with {{name}} placeholder interpolation and
// structured "protocol:slug|slug" error parsing.
package catalog

import (
	"fmt"
	"strings"

	"github.com/morezero/action-gateway/pkg/action"
)

const logPrefix = "catalog:catalog"

// DefaultLang is the catalog default when none is configured.
const DefaultLang = "en"

// Catalog is a two-level mapping, language code -> message key -> template.
// Like the registry, it has a single-writer-then-read-only lifecycle.
type Catalog struct {
	langs map[string]map[string]string
	// order tracks language insertion so the last-resort fallback
	// ("first available language") is deterministic.
	order    []string
	active   string
	fallback string
}

// ValidationError is raised by malformed Set calls.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}

// New creates a Catalog with the given default language. The default is
// both the active language for writes and the first fallback for reads.
func New(defaultLang string) *Catalog {
	if defaultLang == "" {
		defaultLang = DefaultLang
	}
	return &Catalog{
		langs:    make(map[string]map[string]string),
		active:   defaultLang,
		fallback: defaultLang,
	}
}

// SetActive switches the active language used by Set and MergeFlat when
// no language is given.
func (c *Catalog) SetActive(lang string) {
	if lang != "" {
		c.active = lang
	}
}

// Active returns the active language.
func (c *Catalog) Active() string { return c.active }

// Set stores a trimmed template under the given language and normalized
// key. An empty lang means the active language. Empty key or value is a
// validation error.
func (c *Catalog) Set(lang, key, value string) error {
	if lang == "" {
		lang = c.active
	}
	normalized := action.NormalizeKey(key)
	trimmed := strings.TrimSpace(value)
	if normalized == "" || trimmed == "" {
		return &ValidationError{
			Code:    "INVALID_MESSAGE",
			Message: fmt.Sprintf("%s - key %q and value must be non-empty", logPrefix, key),
		}
	}
	c.langSlot(lang)[normalized] = trimmed
	return nil
}

// langSlot returns the sub-map for a language, creating it and recording
// insertion order on first use.
func (c *Catalog) langSlot(lang string) map[string]string {
	slot, ok := c.langs[lang]
	if !ok {
		slot = make(map[string]string)
		c.langs[lang] = slot
		c.order = append(c.order, lang)
	}
	return slot
}

// Get resolves a template for the normalized key. Language fallback is a
// catalog-level operation: if the requested language has no entries at
// all, the default language is tried, then the first inserted language.
// A key absent everywhere yields the "{{key}}" sentinel, never an error.
func (c *Catalog) Get(key, lang string) string {
	normalized := action.NormalizeKey(key)
	if slot := c.resolveLang(lang); slot != nil {
		if template, ok := slot[normalized]; ok {
			return template
		}
	}
	return "{{" + normalized + "}}"
}

// resolveLang picks the sub-map to read from: lang, then the default
// language, then the first inserted language with entries.
func (c *Catalog) resolveLang(lang string) map[string]string {
	if lang != "" {
		if slot, ok := c.langs[lang]; ok && len(slot) > 0 {
			return slot
		}
	}
	if slot, ok := c.langs[c.fallback]; ok && len(slot) > 0 {
		return slot
	}
	for _, inserted := range c.order {
		if slot := c.langs[inserted]; len(slot) > 0 {
			return slot
		}
	}
	return nil
}

// Interpolate resolves the template for key and replaces every {{name}}
// placeholder with the matching params entry. Unmatched placeholders are
// left verbatim.
func (c *Catalog) Interpolate(key string, params map[string]string, lang string) string {
	return interpolate(c.Get(key, lang), params)
}

func interpolate(template string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(template, "{{") {
		return template
	}
	for name, value := range params {
		template = strings.ReplaceAll(template, "{{"+name+"}}", value)
	}
	return template
}

// Merge deep-merges another catalog into this one, key by key,
// last-write-wins.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil {
		return
	}
	for _, lang := range other.order {
		slot := c.langSlot(lang)
		for key, template := range other.langs[lang] {
			slot[key] = template
		}
	}
}

// MergeFlat merges a flat key -> template mapping into the active
// language. Empty keys or values are silently skipped.
func (c *Catalog) MergeFlat(messages map[string]string) {
	for key, value := range messages {
		// invalid entries are skipped, matching registry merge semantics
		_ = c.Set("", key, value)
	}
}

// Languages returns the language codes in insertion order.
func (c *Catalog) Languages() []string {
	return append([]string(nil), c.order...)
}
