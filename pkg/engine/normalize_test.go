package engine

import (
	"testing"

	"github.com/morezero/action-gateway/pkg/action"
	"github.com/morezero/action-gateway/pkg/catalog"
	"github.com/morezero/action-gateway/pkg/policy"
)

func testEngine(t *testing.T, mutate func(*Params)) *Engine {
	t.Helper()

	pol, err := policy.New(policy.Params{
		Passkey:    "test-passkey",
		VersionNow: "2.1.0",
		VersionMin: "1.4.0",
	})
	if err != nil {
		t.Fatalf("policy.New failed: %v", err)
	}

	cat := catalog.New("en")
	messages := map[string]string{
		"no-registry":             "Action not found.",
		"no-response-sending":     "The action produced no response.",
		"client-version-required": "A client version header is required.",
		"need-upgrade-client":     "Please upgrade ({{min}} / {{now}}).",
		"internal-server-error":   "Something went wrong.",
	}
	for key, value := range messages {
		if err := cat.Set("en", key, value); err != nil {
			t.Fatalf("catalog.Set failed: %v", err)
		}
	}

	params := Params{
		Registry: action.NewRegistry(),
		Policy:   pol,
		Catalog:  cat,
	}
	if mutate != nil {
		mutate(&params)
	}
	eng, err := New(params)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return eng
}

func TestNormalizeResponse_Success(t *testing.T) {
	eng := testEngine(t, nil)

	env := eng.NormalizeResponse(map[string]any{"data": map[string]any{"id": 7}}, nil, "en")

	if !env.OK() {
		t.Fatalf("expected success envelope, got error %q", env.Error)
	}
	if env.Response.Status != 200 {
		t.Errorf("expected status 200, got %d", env.Response.Status)
	}
	if env.Response.Data == nil {
		t.Error("expected data passed through")
	}
}

func TestNormalizeResponse_ExplicitStatus(t *testing.T) {
	eng := testEngine(t, nil)

	env := eng.NormalizeResponse(map[string]any{"data": "ok", "status": 201}, nil, "en")
	if env.Response.Status != 201 {
		t.Errorf("expected 201, got %d", env.Response.Status)
	}

	// float64 is what JSON decoding produces
	env = eng.NormalizeResponse(map[string]any{"error": "auth:denied", "status": float64(403)}, nil, "en")
	if env.Response.Status != 403 {
		t.Errorf("expected 403, got %d", env.Response.Status)
	}
}

func TestNormalizeResponse_ErrorClassification(t *testing.T) {
	eng := testEngine(t, nil)

	tests := []struct {
		name string
		raw  any
	}{
		{"nil result", nil},
		{"scalar result", "just a string"},
		{"array result", []any{"a", "b"}},
		{"missing data field", map[string]any{"ok": true}},
		{"explicit error field", map[string]any{"error": "system:no-registry", "data": "present"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := eng.NormalizeResponse(tt.raw, nil, "en")
			if env.OK() {
				t.Fatal("expected error classification")
			}
			if env.Response.Status != 400 {
				t.Errorf("expected default error status 400, got %d", env.Response.Status)
			}
		})
	}
}

func TestNormalizeResponse_DefaultErrorCode(t *testing.T) {
	eng := testEngine(t, nil)

	env := eng.NormalizeResponse(map[string]any{"only": "junk"}, nil, "en")

	if env.Error != ErrNoResponse {
		t.Errorf("expected %s, got %s", ErrNoResponse, env.Error)
	}
	if env.Response.Protocol != "system" {
		t.Errorf("expected protocol system, got %s", env.Response.Protocol)
	}
	if env.Response.Message != "The action produced no response." {
		t.Errorf("unexpected message: %q", env.Response.Message)
	}
}

func TestNormalizeResponse_ErrorParams(t *testing.T) {
	eng := testEngine(t, nil)
	if err := eng.Catalog().Set("en", "user-not-found", "{{username}} not found!"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	env := eng.NormalizeResponse(map[string]any{
		"error":  "auth:user-not-found",
		"params": []any{map[string]any{"username": "bob"}},
	}, nil, "en")

	if env.Response.Message != "bob not found!" {
		t.Errorf("expected interpolated message, got %q", env.Response.Message)
	}
	if len(env.Response.Context) != 1 || env.Response.Context[0] != "user-not-found" {
		t.Errorf("unexpected context: %v", env.Response.Context)
	}
}

func TestNormalizeResponse_HeadersCookiesRedirect(t *testing.T) {
	eng := testEngine(t, nil)

	env := eng.NormalizeResponse(map[string]any{
		"data":     "ok",
		"redirect": "/home",
		"headers": []any{
			map[string]any{"key": "x-request-id", "value": "abc"},
			map[string]any{"value": "no-key"}, // malformed, filtered
			"not even a map",
		},
		"set_cookie": []any{
			map[string]any{"key": "session", "value": "tok"},
			map[string]any{"key": "incomplete"}, // missing value, filtered
		},
		"rm_cookie": []any{"legacy", 42, ""},
	}, nil, "en")

	if env.Redirect != "/home" {
		t.Errorf("expected redirect /home, got %q", env.Redirect)
	}
	if len(env.Headers) != 1 || env.Headers[0].Key != "x-request-id" {
		t.Errorf("unexpected headers: %v", env.Headers)
	}
	if len(env.SetCookie) != 1 || env.SetCookie[0].Key != "session" {
		t.Errorf("unexpected cookies: %v", env.SetCookie)
	}
	if len(env.RmCookie) != 1 || env.RmCookie[0] != "legacy" {
		t.Errorf("unexpected cookie removals: %v", env.RmCookie)
	}
}

func TestNormalizeResponse_EnvelopePassthrough(t *testing.T) {
	eng := testEngine(t, nil)

	already := &action.Envelope{Response: action.Body{Status: 299, Data: "done"}}
	env := eng.NormalizeResponse(already, nil, "en")

	if env != already {
		t.Error("expected pre-normalized envelope passed through untouched")
	}
}
