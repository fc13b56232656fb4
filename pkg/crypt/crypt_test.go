package crypt

import (
	"errors"
	"testing"
)

type claim struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Setenv("APP_KEY", "test-key-for-crypt")

	token, err := EncryptJSON(claim{UserID: 42, Email: "amina@example.com"})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	var out claim
	if err := DecryptJSON(token, &out); err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if out.UserID != 42 || out.Email != "amina@example.com" {
		t.Errorf("expected the original claim back, got %+v", out)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	t.Setenv("APP_KEY", "test-key-for-crypt")

	token, err := EncryptJSON(claim{UserID: 42})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	// Flip one character somewhere past the nonce.
	tampered := []byte(token)
	i := len(tampered) - 2
	if tampered[i] == 'A' {
		tampered[i] = 'B'
	} else {
		tampered[i] = 'A'
	}

	var out claim
	if err := DecryptJSON(string(tampered), &out); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for a tampered token, got %v", err)
	}
}

func TestWrongKeyRejected(t *testing.T) {
	t.Setenv("APP_KEY", "first-key")
	token, err := EncryptJSON(claim{UserID: 7})
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	t.Setenv("APP_KEY", "second-key")
	var out claim
	if err := DecryptJSON(token, &out); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt under a different key, got %v", err)
	}
}
