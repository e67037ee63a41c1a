package utils

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

const alphanumeric = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateRandomString returns n characters from an unambiguous alphabet
func GenerateRandomString(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(alphanumeric)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand unavailable")
		}
		b[i] = alphanumeric[idx.Int64()]
	}
	return string(b)
}

// GenerateURLToken returns a url-safe random token with 32 bytes of entropy
func GenerateURLToken() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("crypto/rand unavailable")
	}
	return base64.RawURLEncoding.EncodeToString(key)
}
