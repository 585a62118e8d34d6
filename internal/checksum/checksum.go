// Package checksum derives content hashes used as HTTP entity tags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag quotes sum as a strong entity tag.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// FromETag strips the quotes and any weak prefix from an If-Match value.
// A wildcard or empty header yields "", which matches any version.
func FromETag(header string) string {
	v := strings.TrimSpace(header)
	if v == "*" {
		return ""
	}
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
