package medtravel

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// HashText computes the SHA-256 hash of the trimmed text.
func HashText(text string) string {
	trimmed := strings.TrimSpace(text)
	hash := sha256.Sum256([]byte(trimmed))
	return hex.EncodeToString(hash[:])
}

// CacheKey generates a cache key from a target language and the text hash.
func CacheKey(targetLang, hash string) string {
	return targetLang + ":" + hash
}

// NodeID derives the stable identifier of a scanned text node from its
// structural path and the text it showed when first captured.
func NodeID(path, original string) string {
	sum := sha256.Sum256([]byte(path + "\x00" + strings.TrimSpace(original)))
	return hex.EncodeToString(sum[:12])
}
