package engine

import (
	"context"
	"reflect"
	"testing"

	"github.com/morezero/action-gateway/pkg/action"
)

func noopHandler(_ context.Context, _ *action.Request) (any, error) {
	return map[string]any{"data": "ok"}, nil
}

func TestManifest_DecryptsWithPasskey(t *testing.T) {
	eng := testEngine(t, nil)
	for _, key := range []string{"user:get", "user:list", "admin:reset"} {
		if err := eng.Registry().Set(key, noopHandler); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	if err := eng.Policy().Deny("admin:reset", action.ProtocolAPI); err != nil {
		t.Fatalf("Deny failed: %v", err)
	}

	manifest, err := eng.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}

	if manifest.IVLength != 16 {
		t.Errorf("expected iv_length 16, got %d", manifest.IVLength)
	}
	if manifest.Encoding != "hex" {
		t.Errorf("expected hex encoding, got %s", manifest.Encoding)
	}
	if manifest.Algorithm != "aes-256-ctr" {
		t.Errorf("expected aes-256-ctr, got %s", manifest.Algorithm)
	}
	if len(manifest.IV) != 32 {
		t.Errorf("expected 32 hex chars of IV, got %d", len(manifest.IV))
	}

	payload, err := DecryptManifest(manifest, "test-passkey")
	if err != nil {
		t.Fatalf("DecryptManifest failed: %v", err)
	}

	// API-denied keys are excluded; the list is sorted
	expected := []string{"user:get", "user:list"}
	if !reflect.DeepEqual(payload.ListKey, expected) {
		t.Errorf("expected listkey %v, got %v", expected, payload.ListKey)
	}
	if payload.VersionNow != "2.1.0" || payload.VersionMin != "1.4.0" {
		t.Errorf("unexpected version contract: %+v", payload)
	}
	if payload.ForceUpdate {
		t.Error("expected force_update false")
	}
}

func TestManifest_WrongPasskey(t *testing.T) {
	eng := testEngine(t, nil)
	manifest, err := eng.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}

	if _, err := DecryptManifest(manifest, "wrong-passkey"); err == nil {
		t.Error("expected garbage plaintext to fail JSON decoding")
	}
}

func TestManifest_Cached(t *testing.T) {
	eng := testEngine(t, nil)
	if err := eng.Registry().Set("user:get", noopHandler); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	first, err := eng.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	second, err := eng.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}

	// byte-identical: same IV, same ciphertext, same instance
	if first != second {
		t.Error("expected the cached manifest instance")
	}
	if first.IV != second.IV || first.Data != second.Data {
		t.Error("expected byte-identical manifest output")
	}
}

func TestManifest_RegistryChangeAfterBuildIgnored(t *testing.T) {
	eng := testEngine(t, nil)
	if err := eng.Registry().Set("user:get", noopHandler); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	first, err := eng.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}

	if err := eng.Registry().Set("user:new", noopHandler); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	second, err := eng.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	payload, err := DecryptManifest(second, "test-passkey")
	if err != nil {
		t.Fatalf("DecryptManifest failed: %v", err)
	}

	if first != second {
		t.Error("expected cached manifest after registry change")
	}
	if !reflect.DeepEqual(payload.ListKey, []string{"user:get"}) {
		t.Errorf("cached manifest changed: %v", payload.ListKey)
	}
}

func TestManifest_FreshIVPerEngine(t *testing.T) {
	a := testEngine(t, nil)
	b := testEngine(t, nil)

	ma, err := a.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}
	mb, err := b.Manifest()
	if err != nil {
		t.Fatalf("Manifest failed: %v", err)
	}

	if ma.IV == mb.IV {
		t.Error("expected a fresh random IV per manifest build")
	}
}
