// Package crypto provides the symmetric encryption contract the record
// store and calendar mirror are written through. Key derivation happens
// outside this module; callers hand over the key material directly.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// Cipher seals and opens record payloads.
type Cipher interface {
	Encrypt(plain []byte) ([]byte, error)
	Decrypt(data []byte) ([]byte, error)
}

// NewAESGCM builds a Cipher from a hex-encoded 256-bit key.
func NewAESGCM(keyHex string) (Cipher, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("crypto: decode key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("crypto: key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: %w", err)
	}
	return &aesgcm{aead: aead}, nil
}

type aesgcm struct {
	aead cipher.AEAD
}

func (c *aesgcm) Encrypt(plain []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("crypto: nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *aesgcm) Decrypt(data []byte) ([]byte, error) {
	if len(data) < c.aead.NonceSize() {
		return nil, errors.New("crypto: ciphertext too short")
	}
	nonce, sealed := data[:c.aead.NonceSize()], data[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("crypto: open: %w", err)
	}
	return plain, nil
}

// Plaintext returns a pass-through Cipher. Intended for tests and for
// setups that opt out of at-rest encryption.
func Plaintext() Cipher {
	return plaintext{}
}

type plaintext struct{}

func (plaintext) Encrypt(plain []byte) ([]byte, error) { return plain, nil }
func (plaintext) Decrypt(data []byte) ([]byte, error)  { return data, nil }
