package security

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerateRandomString(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantLen int
	}{
		{"default length", 0, base64.RawURLEncoding.EncodedLen(DefaultRandomLength)},
		{"negative uses default", -5, base64.RawURLEncoding.EncodedLen(DefaultRandomLength)},
		{"16 bytes", 16, base64.RawURLEncoding.EncodedLen(16)},
		{"64 bytes", 64, base64.RawURLEncoding.EncodedLen(64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateRandomString(tt.n)
			if err != nil {
				t.Fatalf("GenerateRandomString() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if strings.ContainsAny(got, "+/=") {
				t.Errorf("value %q is not URL-safe", got)
			}
		})
	}
}

func TestGenerateState_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		state, err := GenerateState(DefaultRandomLength)
		if err != nil {
			t.Fatalf("GenerateState() error = %v", err)
		}
		if seen[state] {
			t.Fatalf("duplicate state generated: %s", state)
		}
		seen[state] = true
	}
}

func TestGenerateNonce(t *testing.T) {
	nonce, err := GenerateNonce(16)
	if err != nil {
		t.Fatalf("GenerateNonce() error = %v", err)
	}
	if nonce == "" {
		t.Error("nonce should not be empty")
	}
}

func TestGeneratePKCE(t *testing.T) {
	for i := 0; i < 50; i++ {
		pkce, err := GeneratePKCE()
		if err != nil {
			t.Fatalf("GeneratePKCE() error = %v", err)
		}

		if pkce.CodeChallengeMethod != PKCEMethodS256 {
			t.Errorf("CodeChallengeMethod = %q, want S256", pkce.CodeChallengeMethod)
		}

		sum := sha256.Sum256([]byte(pkce.CodeVerifier))
		want := base64.RawURLEncoding.EncodeToString(sum[:])
		if pkce.CodeChallenge != want {
			t.Errorf("CodeChallenge = %q, want %q", pkce.CodeChallenge, want)
		}

		for _, v := range []string{pkce.CodeVerifier, pkce.CodeChallenge} {
			if strings.ContainsAny(v, "+/=") {
				t.Errorf("value %q is not URL-safe", v)
			}
		}
		if len(pkce.CodeVerifier) < 43 || len(pkce.CodeVerifier) > 128 {
			t.Errorf("verifier length %d outside RFC 7636 bounds", len(pkce.CodeVerifier))
		}
	}
}
