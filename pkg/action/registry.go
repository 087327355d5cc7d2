package action

import "fmt"

const logPrefix = "action:registry"

// Registry maps normalized action keys to entries. It is a plain
// in-process map with a single-writer-then-read-only lifecycle: populate
// it during application setup, then share it read-only across concurrent
// dispatches.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Set registers a bare handler under the normalized key, overwriting any
// existing entry.
func (r *Registry) Set(key string, handler Handler) error {
	return r.set(key, Entry{Handler: handler})
}

// SetWithMiddleware registers a middleware/handler pair under the
// normalized key. A nil middleware degrades to a bare handler, matching
// Set semantics.
func (r *Registry) SetWithMiddleware(key string, middleware, handler Handler) error {
	return r.set(key, Entry{Middleware: middleware, Handler: handler})
}

func (r *Registry) set(key string, entry Entry) error {
	if entry.Handler == nil {
		return NewConfigError("INVALID_HANDLER", fmt.Sprintf("%s - handler for %q is nil", logPrefix, key))
	}
	normalized := NormalizeKey(key)
	if normalized == "" {
		return NewConfigError("INVALID_KEY", fmt.Sprintf("%s - key %q normalizes to empty", logPrefix, key))
	}
	r.entries[normalized] = entry
	return nil
}

// Get returns the entry stored under the normalized key. The second
// return value is false when no entry exists; lookup never errors.
func (r *Registry) Get(key string) (Entry, bool) {
	entry, ok := r.entries[NormalizeKey(key)]
	return entry, ok
}

// Merge copies every entry from another registry into this one, applying
// Set semantics (keys are re-normalized, existing entries overwritten).
func (r *Registry) Merge(other *Registry) {
	if other == nil {
		return
	}
	r.MergeEntries(other.entries)
}

// MergeEntries copies entries from a raw mapping into the registry.
// Malformed entries (nil handler, empty key) are silently skipped.
func (r *Registry) MergeEntries(entries map[string]Entry) {
	for key, entry := range entries {
		if entry.Handler == nil {
			continue
		}
		// errors can only be the malformed cases we skip
		_ = r.set(key, entry)
	}
}

// Keys returns the normalized keys of all registered entries, in map
// order (callers sort as needed).
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	return keys
}

// Len returns the number of registered entries.
func (r *Registry) Len() int { return len(r.entries) }
