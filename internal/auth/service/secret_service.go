package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/diffrun/opsdesk/internal/errors"
)

type secretService struct {
	hasher *pwdhash.PasswordHasher
}

// NewSecretService creates a SecretService hashing with Argon2id under the
// moderate policy.
func NewSecretService() SecretService {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyModerate))
	if err != nil {
		panic(err)
	}
	return &secretService{hasher: hasher}
}

// GenerateSecret creates a 32-byte random secret, URL-safe base64 encoded.
func (s *secretService) GenerateSecret() (string, string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate operator secret")
	}

	plain := base64.URLEncoding.EncodeToString(raw)
	hashed, err := s.HashSecret(plain)
	if err != nil {
		return "", "", err
	}
	return plain, hashed, nil
}

// HashSecret hashes a secret into PHC string form.
func (s *secretService) HashSecret(plainSecret string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash operator secret")
	}
	return hashed, nil
}

// CompareSecret verifies a secret against its hash. Malformed hashes never match.
func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	return err == nil && ok
}
