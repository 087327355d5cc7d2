package catalog

import "strings"

// ParsedError is the structured form of an error code like
// "system:no-registry" or "auth:user-not-found|try-again".
type ParsedError struct {
	Protocol string              `json:"protocol"`
	Context  []string            `json:"context"`
	Params   []map[string]string `json:"params,omitempty"`
	Message  string              `json:"message"`
}

// ParseError splits an error code on the first ":" into (protocol, rest),
// splits rest on "|" into an ordered list of message keys, interpolates
// each key with its positional entry in params, and joins the results
// with ", ". This is the canonical way error codes become user-facing
// text.
func (c *Catalog) ParseError(code string, params []map[string]string, lang string) ParsedError {
	protocol := ""
	rest := code
	if i := strings.Index(code, ":"); i >= 0 {
		protocol = code[:i]
		rest = code[i+1:]
	}

	keys := strings.Split(rest, "|")
	parts := make([]string, 0, len(keys))
	context := make([]string, 0, len(keys))
	for i, key := range keys {
		var p map[string]string
		if i < len(params) {
			p = params[i]
		}
		context = append(context, key)
		parts = append(parts, c.Interpolate(key, p, lang))
	}

	return ParsedError{
		Protocol: protocol,
		Context:  context,
		Params:   params,
		Message:  strings.Join(parts, ", "),
	}
}
