package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// GenerateCode returns 2n uppercase hex characters from a CSPRNG.
func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)

	if _, err := rand.Read(byt); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateTicketID returns a 15-character lowercase alphanumeric id,
// the same shape PocketBase assigns to records it creates itself.
func GenerateTicketID() (string, error) {
	code, err := GenerateCode(8)
	if err != nil {
		return "", err
	}
	return strings.ToLower(code)[:15], nil
}
