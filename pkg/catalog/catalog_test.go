package catalog

import "testing"

func TestSet_Validation(t *testing.T) {
	c := New("en")

	if err := c.Set("en", "", "value"); err == nil {
		t.Error("expected error for empty key")
	}
	if err := c.Set("en", "greeting", "   "); err == nil {
		t.Error("expected error for blank value")
	}
	if err := c.Set("en", "###", "value"); err == nil {
		t.Error("expected error for key normalizing to empty")
	}
}

func TestSet_TrimsAndNormalizes(t *testing.T) {
	c := New("en")
	if err := c.Set("en", "User-Missing", "  {{username}} not found!  "); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got := c.Get("user-missing", "en"); got != "{{username}} not found!" {
		t.Errorf("expected trimmed template, got %q", got)
	}
}

func TestSet_ActiveLanguageDefault(t *testing.T) {
	c := New("en")
	c.SetActive("pt")
	if err := c.Set("", "greeting", "Olá"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if got := c.Get("greeting", "pt"); got != "Olá" {
		t.Errorf("expected Olá, got %q", got)
	}
}

func TestGet_FallbackChain(t *testing.T) {
	c := New("en")
	if err := c.Set("fr", "greeting", "Bonjour"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("en", "greeting", "Hello"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// unknown language falls back to the default language
	if got := c.Get("greeting", "de"); got != "Hello" {
		t.Errorf("expected default-language fallback, got %q", got)
	}
	// known language wins
	if got := c.Get("greeting", "fr"); got != "Bonjour" {
		t.Errorf("expected Bonjour, got %q", got)
	}
}

func TestGet_FirstInsertedFallback(t *testing.T) {
	c := New("en") // default language never populated
	if err := c.Set("fr", "greeting", "Bonjour"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("pt", "greeting", "Olá"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// neither "de" nor the default exist; first inserted language wins
	if got := c.Get("greeting", "de"); got != "Bonjour" {
		t.Errorf("expected first-inserted fallback Bonjour, got %q", got)
	}
}

func TestGet_Sentinel(t *testing.T) {
	c := New("en")
	if got := c.Get("missing-key", "en"); got != "{{missing-key}}" {
		t.Errorf("expected sentinel embedding the key, got %q", got)
	}
}

func TestInterpolate(t *testing.T) {
	c := New("en")
	if err := c.Set("en", "user-not-found", "{{username}} not found!"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("en", "plain", "No placeholders here."); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got := c.Interpolate("user-not-found", map[string]string{"username": "bob"}, "en")
	if got != "bob not found!" {
		t.Errorf("expected 'bob not found!', got %q", got)
	}

	// unmatched placeholders stay verbatim
	got = c.Interpolate("user-not-found", map[string]string{}, "en")
	if got != "{{username}} not found!" {
		t.Errorf("expected verbatim placeholder, got %q", got)
	}

	// idempotent on templates without placeholders
	got = c.Interpolate("plain", map[string]string{"x": "y"}, "en")
	if got != "No placeholders here." {
		t.Errorf("expected unchanged template, got %q", got)
	}
}

func TestMerge_LastWriteWins(t *testing.T) {
	a := New("en")
	b := New("en")
	if err := a.Set("en", "greeting", "Hello"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Set("en", "greeting", "Hi"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := b.Set("fr", "greeting", "Bonjour"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	a.Merge(b)

	if got := a.Get("greeting", "en"); got != "Hi" {
		t.Errorf("expected merged value to win, got %q", got)
	}
	if got := a.Get("greeting", "fr"); got != "Bonjour" {
		t.Errorf("expected fr sub-map merged, got %q", got)
	}
}

func TestMergeFlat(t *testing.T) {
	c := New("en")
	c.MergeFlat(map[string]string{
		"greeting": "Hello",
		"":         "skipped",
		"blank":    "  ",
	})

	if got := c.Get("greeting", "en"); got != "Hello" {
		t.Errorf("expected Hello, got %q", got)
	}
	if got := c.Get("blank", "en"); got != "{{blank}}" {
		t.Errorf("expected blank entry skipped, got %q", got)
	}
}
