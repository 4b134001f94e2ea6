package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortHash returns the first 16 hex characters of the SHA-256 digest of s.
// Short hashes key study-seed notes and other provenance records.
func ShortHash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}
