package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// hashDateLayout matches JavaScript's Date.prototype.toDateString,
// e.g. "Sun Oct 18 2026". Hashes rotate whenever this string changes.
const hashDateLayout = "Mon Jan 02 2006"

func HashDate(t time.Time) string {
	return t.Format(hashDateLayout)
}

// VisitorHash derives the daily visitor identifier from request headers.
func VisitorHash(userAgent, acceptLanguage string, now time.Time) string {
	return sha256Hex(userAgent + acceptLanguage + HashDate(now))
}

// IPHash derives the daily identifier of the remote address.
func IPHash(remoteAddr string, now time.Time) string {
	return sha256Hex(remoteAddr + HashDate(now))
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
