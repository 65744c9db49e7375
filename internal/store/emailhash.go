package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// EmailHash returns the hex SHA-256 digest of the lowercase-trimmed address.
// Deterministic, so any client holding the plaintext can reproduce it, e.g.
// for avatar lookup.
func EmailHash(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
