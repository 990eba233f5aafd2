package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const (
	// DefaultBytes is the entropy drawn for a reveal token (64 hex chars).
	DefaultBytes = 32

	// MinBytes is the smallest token size callers may request.
	MinBytes = 16
)

// New returns a fresh opaque reveal token: nBytes of crypto/rand entropy,
// hex encoded. If nBytes is below MinBytes it is raised to DefaultBytes.
func New(nBytes int) (string, error) {
	if nBytes < MinBytes {
		nBytes = DefaultBytes
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", ErrEntropyUnavailable
	}
	return hex.EncodeToString(b), nil
}

// HashSHA256Hex returns a SHA-256 hex digest of s.
func HashSHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Redact returns a short, non-reversible log handle for a token.
func Redact(tok string) string {
	if tok == "" {
		return ""
	}
	return HashSHA256Hex(tok)[:12]
}
