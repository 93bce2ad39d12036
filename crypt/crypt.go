// Package crypt is the encryption boundary PII crosses before it reaches
// storage. The ledger only ever sees ciphertext; Boundary implementations
// own key derivation and key material.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrEncryption wraps every failure to produce ciphertext.
	ErrEncryption = errors.New("receivables: encryption failed")
	// ErrDecryption wraps every failure to recover plaintext, including a
	// wrong passphrase and corrupt input.
	ErrDecryption = errors.New("receivables: decryption failed")
)

// Boundary encrypts and decrypts opaque blobs with a caller-supplied
// passphrase. Implementations never return partial plaintext on failure.
type Boundary interface {
	Encrypt(plaintext, passphrase []byte) ([]byte, error)
	Decrypt(ciphertext, passphrase []byte) ([]byte, error)
}

const nonceSize = 12

func seal(key, plaintext, aad []byte) (nonce, ciphertext []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("generate nonce: %w", err)
	}
	return nonce, gcm.Seal(nil, nonce, plaintext, aad), nil
}

func open(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ciphertext, aad)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
