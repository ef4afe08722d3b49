package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

const (
	// DefaultRandomLength is the number of random bytes used for state and nonce values.
	DefaultRandomLength = 32

	// PKCEMethodS256 is the only code challenge method generated.
	PKCEMethodS256 = "S256"
)

// PKCE holds a code verifier and its derived challenge.
type PKCE struct {
	CodeVerifier        string `json:"code_verifier"`
	CodeChallenge       string `json:"code_challenge"`
	CodeChallengeMethod string `json:"code_challenge_method"`
}

// GenerateRandomString returns n random bytes encoded as unpadded base64url.
// A non-positive n uses DefaultRandomLength.
func GenerateRandomString(n int) (string, error) {
	if n <= 0 {
		n = DefaultRandomLength
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateState returns a random value for the OAuth state parameter.
func GenerateState(n int) (string, error) {
	return GenerateRandomString(n)
}

// GenerateNonce returns a random value for the OIDC nonce parameter.
func GenerateNonce(n int) (string, error) {
	return GenerateRandomString(n)
}

// GeneratePKCE returns a new S256 PKCE pair. The challenge is the unpadded
// base64url SHA-256 digest of the verifier.
func GeneratePKCE() (PKCE, error) {
	verifier := oauth2.GenerateVerifier()
	return PKCE{
		CodeVerifier:        verifier,
		CodeChallenge:       oauth2.S256ChallengeFromVerifier(verifier),
		CodeChallengeMethod: PKCEMethodS256,
	}, nil
}
