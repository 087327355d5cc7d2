package action

import "testing"

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user:login", "user:login"},
		{"User:Login", "user:login"},
		{"  user:login  ", "user:login"},
		{"user login!", "userlogin"},
		{"a.b-c:d", "a.b-c:d"},
		{"UPPER_CASE", "uppercase"},
		{"###", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeKey(tt.input); got != tt.expected {
			t.Errorf("NormalizeKey(%q): expected %q, got %q", tt.input, tt.expected, got)
		}
	}
}
