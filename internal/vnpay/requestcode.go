package vnpay

import (
	"crypto/rand"
	"math/big"
)

const (
	requestCodeLength   = 12
	requestCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewRequestCode returns a random alphanumeric transaction reference.
func NewRequestCode() string {
	size := big.NewInt(int64(len(requestCodeAlphabet)))

	code := make([]byte, requestCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, size)
		if err != nil {
			panic(err)
		}
		code[i] = requestCodeAlphabet[n.Int64()]
	}

	return string(code)
}
