package vnpay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSign_KnownVector(t *testing.T) {
	assert.Equal(t,
		"ade03f95bd819c46b461403c5f56b71e4e5c2f87c050844878654b98b9d93ab23dcf67d2f22a3cc85ac5002b11fb591b6d070174e87f87f2c3c59972711e5de7",
		Sign("secret", "a|b|c"),
	)
	assert.Equal(t,
		"6b1b8ba124fb1f68d89fe6bb68998d3a06b5ab6591fdd48f92366149aea548e2b7206a4040566aa949a515c1f687f7aa2f0dd552d5136ce1616bd92593d94d28",
		Sign("SECRETKEY", ""),
	)
}

func TestValidate_Symmetric(t *testing.T) {
	tests := []struct {
		secret string
		data   string
	}{
		{"secret", "a|b|c"},
		{"", ""},
		{"SECRETKEY", "2.1.0|pay|VND||vn"},
		{"khóa bí mật", "Thanh toán đơn hàng"},
	}

	for _, tt := range tests {
		hash := Sign(tt.secret, tt.data)
		assert.True(t, Validate(hash, tt.secret, tt.data))
		assert.Len(t, hash, 128)
		assert.Equal(t, strings.ToLower(hash), hash)
	}
}

func TestValidate_CaseInsensitive(t *testing.T) {
	hash := Sign("secret", "a|b|c")
	assert.True(t, Validate(strings.ToUpper(hash), "secret", "a|b|c"))
}

func TestValidate_Rejects(t *testing.T) {
	hash := Sign("secret", "a|b|c")

	assert.False(t, Validate(hash, "secret", "a|b|d"))
	assert.False(t, Validate(hash, "other", "a|b|c"))
	assert.False(t, Validate("", "secret", "a|b|c"))
	assert.False(t, Validate(hash[:64], "secret", "a|b|c"))
}

func TestJoinFields(t *testing.T) {
	assert.Equal(t, "a||c", JoinFields("a", "", "c"))
	assert.Equal(t, "", JoinFields())
}

func TestNewRequestCode(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		code := NewRequestCode()
		assert.Len(t, code, 12)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(requestCodeAlphabet, r))
		}
		assert.False(t, seen[code])
		seen[code] = true
	}
}
