package service

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

// tokenService stores bearer tokens as BLAKE2b-256 digests.
type tokenService struct{}

// NewTokenService creates a TokenService.
func NewTokenService() TokenService {
	return &tokenService{}
}

// GenerateToken creates a 32-byte random token and its digest.
func (t *tokenService) GenerateToken() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate token")
	}

	plain := base64.RawURLEncoding.EncodeToString(raw)
	return plain, t.HashToken(plain), nil
}

// HashToken returns the hex BLAKE2b-256 digest of a token.
func (t *tokenService) HashToken(plainToken string) string {
	sum := blake2b.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
