// Package signature implements the request signing scheme used by the
// webhook: a lowercase hex HMAC-SHA256 digest of the raw request body.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

func Compute(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares a provided signature against the expected digest in
// constant time.
func Verify(secret, body []byte, provided string) bool {
	expected := Compute(secret, body)
	return hmac.Equal([]byte(expected), []byte(provided))
}
