package cryptoprim

import (
	"crypto/hmac"
	"crypto/sha256"
)

// HMACLength is the length of an HMAC-SHA256 tag in bytes.
const HMACLength = 32

// ComputeHMAC returns HMAC-SHA256(key, data...), concatenating each
// element of data in order before tagging it as a single message.
func ComputeHMAC(key []byte, data ...[]byte) []byte {
	mac := hmac.New(sha256.New, key)
	for _, d := range data {
		mac.Write(d)
	}
	return mac.Sum(nil)
}

// VerifyHMAC reports whether tag is the correct HMAC-SHA256 over data
// under key, using a constant-time comparison.
func VerifyHMAC(key []byte, tag []byte, data ...[]byte) bool {
	expected := ComputeHMAC(key, data...)
	return hmac.Equal(expected, tag)
}
