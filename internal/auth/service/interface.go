// Package service provides the credential primitives for operator authentication:
// secret hashing and bearer token generation.
package service

// SecretService generates and verifies operator secrets.
type SecretService interface {
	// GenerateSecret returns a random secret and its hash.
	GenerateSecret() (plainSecret string, hashedSecret string, err error)
	HashSecret(plainSecret string) (string, error)
	// CompareSecret reports whether plainSecret matches hashedSecret.
	CompareSecret(plainSecret string, hashedSecret string) bool
}

// TokenService generates bearer tokens and the digests they are stored under.
type TokenService interface {
	GenerateToken() (plainToken string, tokenHash string, err error)
	HashToken(plainToken string) string
}
