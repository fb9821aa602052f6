package util

import (
	"strings"
	"testing"
)

func TestMaskEmail(t *testing.T) {
	if got := MaskEmail(""); got != "" {
		t.Errorf("MaskEmail(\"\") = %q, want empty", got)
	}

	a := MaskEmail("alice@example.com")
	if a != MaskEmail("alice@example.com") {
		t.Error("MaskEmail() should be stable for the same input")
	}
	if a == MaskEmail("bob@example.com") {
		t.Error("MaskEmail() should differ for different inputs")
	}
	local, domain, ok := strings.Cut(a, "@")
	if !ok || len(local) != 12 || domain != maskedDomain {
		t.Errorf("MaskEmail() = %q, want 12 letters at %s", a, maskedDomain)
	}
	if strings.Contains(a, "alice") {
		t.Errorf("MaskEmail() leaked the original address: %q", a)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "***"},
		{"12345678", "***"},
		{"sk-abcdef123456", "sk-a...3456"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
