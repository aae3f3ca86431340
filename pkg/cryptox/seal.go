package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealOpen reports a sealed value that could not be authenticated or
// decrypted. The cause is deliberately not distinguished.
var ErrSealOpen = errors.New("cryptox: cannot open sealed value")

// Sealer provides authenticated encryption for small opaque payloads such as
// session cookies. Output format is base64url([24-byte nonce][ciphertext+tag]).
type Sealer struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// NewSealer derives a 32-byte key from the given secret via SHA-256 and
// returns a Sealer backed by XChaCha20-Poly1305. The secret may be any
// length but should carry at least 32 bytes of entropy.
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, errors.New("cryptox: sealer secret must not be empty")
	}

	key := sha256.Sum256(secret)
	aead, err := chacha20poly1305.NewX(key[:])
	if err != nil {
		return nil, fmt.Errorf("cryptox: init aead: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal encrypts and authenticates plaintext, returning a cookie-safe string.
// A fresh random nonce is generated per call.
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("cryptox: nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decodes, authenticates, and decrypts a value produced by Seal.
// Any tampering, truncation, or wrong-key input yields ErrSealOpen.
func (s *Sealer) Open(sealed string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrSealOpen
	}
	if len(raw) < chacha20poly1305.NonceSizeX {
		return nil, ErrSealOpen
	}

	nonce, ciphertext := raw[:chacha20poly1305.NonceSizeX], raw[chacha20poly1305.NonceSizeX:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealOpen
	}
	return plaintext, nil
}
