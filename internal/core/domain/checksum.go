package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Checksum computes the SHA-256 hex digest of raw document bytes.
// Identical bytes always produce identical digests; the result is used
// purely for change detection during re-ingestion.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
