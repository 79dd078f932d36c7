// Package token generates opaque tokens and the digests stored for them.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// GenerateRandomToken returns size random bytes, base64url encoded.
func GenerateRandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSHA256 is the lookup digest persisted instead of the raw token.
func HashSHA256(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// New returns a fresh raw token and its digest.
func New(size int) (raw, hash string, err error) {
	raw, err = GenerateRandomToken(size)
	if err != nil {
		return "", "", err
	}
	return raw, HashSHA256(raw), nil
}
