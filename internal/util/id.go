package util

import (
	"crypto/rand"
	"encoding/hex"
)

// NewID returns a random 32-character hex ID, safe for URLs and object keys.
func NewID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
