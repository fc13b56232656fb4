// Package crypt seals small payloads with AES-256-GCM so they can travel
// through untrusted hands, like the email verification token a user
// carries back in a query string. Output is unpadded base64url with the
// random nonce up front, one opaque string per payload.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agriconnect-ug/agriconnect/config"
)

// ErrDecrypt covers every failure on the open path: bad encoding, short
// input, tampered ciphertext. Callers get no more detail than that.
var ErrDecrypt = errors.New("crypt: cannot open payload")

// aead builds the cipher from APP_KEY, falling back to JWT_SECRET. The
// secret is hashed to a fixed 32 bytes, so any length works.
func aead() (cipher.AEAD, error) {
	secret := config.Get("APP_KEY", config.JWTSecret())
	if secret == "" {
		return nil, errors.New("crypt: neither APP_KEY nor JWT_SECRET is set")
	}

	k := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: gcm: %w", err)
	}
	return gcm, nil
}

func seal(data []byte) (string, error) {
	gcm, err := aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}
	// Seal appends ciphertext and tag after the nonce prefix.
	return base64.RawURLEncoding.EncodeToString(gcm.Seal(nonce, nonce, data, nil)), nil
}

func open(encoded string) ([]byte, error) {
	gcm, err := aead()
	if err != nil {
		return nil, err
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrDecrypt
	}
	if len(data) < gcm.NonceSize() {
		return nil, ErrDecrypt
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// EncryptJSON marshals v and seals it into an opaque URL-safe string.
func EncryptJSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("crypt: marshal: %w", err)
	}
	return seal(raw)
}

// DecryptJSON opens a string produced by EncryptJSON into dest.
func DecryptJSON(encoded string, dest interface{}) error {
	raw, err := open(encoded)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("crypt: unmarshal: %w", err)
	}
	return nil
}
