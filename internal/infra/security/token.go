package security

import (
	"crypto/rand"
	"encoding/hex"

	domainauth "staybook/internal/domain/auth"
)

// RandomTokenGenerator mints 256-bit hex session tokens.
type RandomTokenGenerator struct{}

func (RandomTokenGenerator) NewToken() (domainauth.Token, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return domainauth.Token(hex.EncodeToString(buf)), nil
}
