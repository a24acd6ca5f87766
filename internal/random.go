package internal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
)

// SessionTokenBytes is the entropy carried by every session token.
const SessionTokenBytes = 32

// NewSessionToken returns SessionTokenBytes of crypto/rand output, hex encoded.
func NewSessionToken() (string, error) {
	return randomHex(SessionTokenBytes)
}

// NewVerificationCode returns n random bytes as upper-case hex, so three bytes
// yield a six character code.
func NewVerificationCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid verification code size")
	}
	code, err := randomHex(n)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(code), nil
}

// NormalizeVerificationCode trims and upper-cases user input before comparison.
func NormalizeVerificationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
