package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r#senha")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}
	if err := VerifyPassword(hash, "Sup3r#senha"); err != nil {
		t.Fatalf("verify password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong-password"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected ErrPasswordMismatch, got %v", err)
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	for _, hash := range []string{"", "plain", "$bcrypt$something", "$argon2id$v=19$m=bad$salt$hash"} {
		if err := VerifyPassword(hash, "whatever"); err == nil {
			t.Fatalf("expected error for hash %q", hash)
		}
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Ab1#xy", true},
		{"Valida#123", true},
		{"short", false},
		{"alllowercase1#", false},
		{"ALLUPPERCASE1#", false},
		{"NoDigits#here", false},
		{"NoSpecial123", false},
	}
	for _, tc := range cases {
		err := ValidatePasswordStrength(tc.password)
		if tc.ok && err != nil {
			t.Errorf("password %q: unexpected error %v", tc.password, err)
		}
		if !tc.ok && err == nil {
			t.Errorf("password %q: expected error", tc.password)
		}
	}
}
