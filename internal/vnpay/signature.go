package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strings"
)

// Sign returns the lowercase hex HMAC-SHA512 of data keyed with secret.
func Sign(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// Validate reports whether hash is the signature of data. The comparison
// ignores hex case and runs in constant time.
func Validate(hash, secret, data string) bool {
	expected := Sign(secret, data)
	return hmac.Equal([]byte(strings.ToLower(hash)), []byte(expected))
}

// JoinFields builds a signing string from values already in the order the
// gateway expects.
func JoinFields(values ...string) string {
	return strings.Join(values, "|")
}
