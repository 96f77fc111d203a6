package service

import (
	"crypto/rand"
	"fmt"
)

const (
	codeAlphabet           = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	confirmationCodeLength = 6
	inviteCodeLength       = 6
)

// generateCode returns n characters drawn uniformly from codeAlphabet.
func generateCode(n int) (string, error) {
	// 252 is the largest multiple of len(codeAlphabet) that fits in a byte
	const limit = 256 - 256%len(codeAlphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}

		for _, b := range buf {
			if int(b) >= limit {
				continue
			}

			out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(out) == n {
				break
			}
		}
	}

	return string(out), nil
}
