package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashString creates a SHA-256 hash of the input string
func HashString(input string) string {
	h := sha256.New()
	h.Write([]byte(input))
	return hex.EncodeToString(h.Sum(nil))
}

// EmailRef returns a short stable reference for an email address so log lines
// can be correlated without recording the address itself.
func EmailRef(email string) string {
	sum := HashString(strings.ToLower(strings.TrimSpace(email)))
	return sum[:12]
}
