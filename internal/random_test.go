package internal

import (
	"regexp"
	"testing"
)

func TestNewSessionTokenLengthAndUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		tok, err := NewSessionToken()
		if err != nil {
			t.Fatalf("NewSessionToken failed: %v", err)
		}
		if len(tok) != SessionTokenBytes*2 {
			t.Fatalf("expected %d hex chars, got %d", SessionTokenBytes*2, len(tok))
		}
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = struct{}{}
	}
}

func TestNewVerificationCodeShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9A-F]{6}$`)
	for i := 0; i < 100; i++ {
		code, err := NewVerificationCode(3)
		if err != nil {
			t.Fatalf("NewVerificationCode failed: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("unexpected code %q", code)
		}
	}

	if _, err := NewVerificationCode(0); err == nil {
		t.Fatal("expected error for zero size")
	}
}

func TestNormalizeVerificationCode(t *testing.T) {
	if got := NormalizeVerificationCode("  a1b2c3\n"); got != "A1B2C3" {
		t.Fatalf("unexpected normalized code %q", got)
	}
}
