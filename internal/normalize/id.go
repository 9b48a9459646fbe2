// Package normalize holds the pure parsing helpers used to turn loosely shaped
// source payloads into canonical jobs. Every function here is total: bad input
// yields an empty or partial result, never an error.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
)

// StableID returns the content-addressed id of a posting. The "|" delimiter keeps
// swapped fields from hashing to the same value.
func StableID(title, company, url string) string {
	sum := sha256.Sum256([]byte(title + "|" + company + "|" + url))
	return hex.EncodeToString(sum[:])
}
