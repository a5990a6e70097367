package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// signingSecretBytes is the size of a generated signing secret. 32 bytes is a
// 256-bit key, sized for the HS256 signing the token service uses.
const signingSecretBytes = 32

// GenerateSecret returns n cryptographically random bytes, hex encoded
func GenerateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateJWTSecrets returns a fresh access/refresh signing secret pair,
// suitable for seeding JWT_SECRET and JWT_REFRESH_SECRET on a new deployment
func GenerateJWTSecrets() (accessSecret, refreshSecret string, err error) {
	if accessSecret, err = GenerateSecret(signingSecretBytes); err != nil {
		return "", "", fmt.Errorf("access secret: %w", err)
	}
	if refreshSecret, err = GenerateSecret(signingSecretBytes); err != nil {
		return "", "", fmt.Errorf("refresh secret: %w", err)
	}
	return accessSecret, refreshSecret, nil
}
