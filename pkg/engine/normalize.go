package engine

import (
	"encoding/json"
	"fmt"

	"github.com/morezero/action-gateway/pkg/action"
)

// NormalizeResponse shapes a raw handler or middleware result into the
// uniform response envelope. Classification is deliberately loose: a nil
// result, a non-object result, an array, a result carrying an "error"
// field, or one lacking a "data" field are all errors. Handlers in the
// wild rely on this, so it is not narrowed.
func (e *Engine) NormalizeResponse(raw any, req *action.Request, lang string) *action.Envelope {
	// An envelope is taken as already normalized and passed through.
	if env, ok := raw.(*action.Envelope); ok && env != nil {
		return env
	}

	fields := asMap(raw)
	_, hasError := fields["error"]
	_, hasData := fields["data"]
	isErr := fields == nil || hasError || !hasData

	status := statusOf(fields["status"], 0)
	if status == 0 {
		if isErr {
			status = 400
		} else {
			status = 200
		}
	}

	env := &action.Envelope{
		Headers:   extractHeaders(fields["headers"]),
		SetCookie: extractCookies(fields["set_cookie"]),
		RmCookie:  extractStrings(fields["rm_cookie"]),
	}
	if redirect, ok := fields["redirect"].(string); ok {
		env.Redirect = redirect
	}

	if !isErr {
		env.Response = action.Body{Status: status, Data: fields["data"]}
		return env
	}

	code, _ := fields["error"].(string)
	if code == "" {
		code = ErrNoResponse
	}
	params := extractParams(fields["params"])
	parsed := e.catalog.ParseError(code, params, lang)

	env.Error = code
	env.Response = action.Body{
		Status:   status,
		Message:  parsed.Message,
		Protocol: parsed.Protocol,
		Context:  parsed.Context,
		Params:   parsed.Params,
	}
	return env
}

// errorEnvelope synthesizes a normalized error envelope for an
// engine-generated error code.
func (e *Engine) errorEnvelope(code string, status int, params []map[string]string, lang string) *action.Envelope {
	parsed := e.catalog.ParseError(code, params, lang)
	return &action.Envelope{
		Error: code,
		Response: action.Body{
			Status:   status,
			Message:  parsed.Message,
			Protocol: parsed.Protocol,
			Context:  parsed.Context,
			Params:   parsed.Params,
		},
	}
}

// asMap returns the result's fields when it is object-shaped, nil
// otherwise. Arrays, scalars and nil all yield nil.
func asMap(raw any) map[string]any {
	if raw == nil {
		return nil
	}
	if m, ok := raw.(map[string]any); ok {
		return m
	}
	return nil
}

// statusOf coerces an explicit status field. JSON decoding hands numbers
// over as float64 or json.Number, in-process handlers as int.
func statusOf(v any, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return fallback
}

// extractHeaders pulls a header list out of a raw field. Malformed
// entries are filtered out rather than failing the call.
func extractHeaders(v any) []action.Header {
	switch list := v.(type) {
	case []action.Header:
		return list
	case []any:
		var headers []action.Header
		for _, item := range list {
			entry := asMap(item)
			key, _ := entry["key"].(string)
			value, _ := entry["value"].(string)
			if key == "" {
				continue
			}
			headers = append(headers, action.Header{Key: key, Value: value})
		}
		return headers
	}
	return nil
}

// extractCookies pulls a cookie-set list; entries require both key and
// value.
func extractCookies(v any) []action.Cookie {
	switch list := v.(type) {
	case []action.Cookie:
		var cookies []action.Cookie
		for _, c := range list {
			if c.Key != "" && c.Value != "" {
				cookies = append(cookies, c)
			}
		}
		return cookies
	case []any:
		var cookies []action.Cookie
		for _, item := range list {
			entry := asMap(item)
			key, _ := entry["key"].(string)
			value, _ := entry["value"].(string)
			if key == "" || value == "" {
				continue
			}
			cookies = append(cookies, action.Cookie{Key: key, Value: value})
		}
		return cookies
	}
	return nil
}

// extractStrings pulls a string list (cookie removals).
func extractStrings(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		var out []string
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// extractParams pulls interpolation parameter maps for error messages.
// Non-string values are stringified.
func extractParams(v any) []map[string]string {
	switch list := v.(type) {
	case []map[string]string:
		return list
	case []any:
		var params []map[string]string
		for _, item := range list {
			switch entry := item.(type) {
			case map[string]string:
				params = append(params, entry)
			case map[string]any:
				p := make(map[string]string, len(entry))
				for key, value := range entry {
					if s, ok := value.(string); ok {
						p[key] = s
					} else {
						p[key] = fmt.Sprint(value)
					}
				}
				params = append(params, p)
			}
		}
		return params
	}
	return nil
}
