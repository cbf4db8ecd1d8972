package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a random string of exactly n decimal digits
// drawn from crypto/rand. Leading zeros are allowed, so every code has n
// digits of entropy.
func GenerateNumericCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("cryptox: code length must be positive, got %d", n)
	}

	code := make([]byte, n)
	for i := range code {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("cryptox: generate code digit: %w", err)
		}
		code[i] = byte('0' + d.Int64())
	}
	return string(code), nil
}
