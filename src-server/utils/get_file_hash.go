package utils

import (
	"crypto/sha256"
	"fmt"
)

// GetContentHash returns a short content hash, used to version static asset
// URLs.
func GetContentHash(content []byte) string {
	h := sha256.Sum256(content)
	return fmt.Sprintf("%x", h[:8])
}
