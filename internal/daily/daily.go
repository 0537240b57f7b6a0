// Package daily derives the shared "daily deal": every match started in daily
// mode on the same UTC date shuffles the deck identically.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns HMAC-SHA256(salt, DateKey(t)) folded to a uint64.
// Zero is never returned so the result is always usable with game.WithSeed.
func Seed(t time.Time, salt string) uint64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(t)))
	n := binary.BigEndian.Uint64(h.Sum(nil)[:8])
	if n == 0 {
		n = 1
	}
	return n
}
