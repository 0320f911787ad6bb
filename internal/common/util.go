package common

import (
	"crypto/rand"
	"fmt"
)

// GenerateRandByteArray returns size bytes read from crypto/rand.
// It panics if the system random source fails, which only happens on a
// broken host.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return b
}

// RandomString returns n symbols drawn uniformly from alphabet.
//
// The alphabet length must divide 256 (2, 4, ..., 64, 128) so that masking a
// random byte keeps the distribution uniform.
func RandomString(alphabet string, n int) (string, error) {
	size := len(alphabet)
	if size == 0 || size > 256 || 256%size != 0 {
		return "", fmt.Errorf("alphabet size %d does not divide 256", size)
	}

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = alphabet[int(b[i])%size]
	}
	return string(b), nil
}

// WipeByteArray overwrites b with zeros. Use it for passwords read from
// the terminal once they are no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
