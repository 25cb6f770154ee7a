// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package aead seals and opens byte buffers with AES-256-GCM.
//
// A sealed buffer is nonce(12) || ciphertext || tag(16) with no associated data
// and no additional header.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"ciphershield/internal/resilience"
)

const (
	// KeySize is the only accepted key length (AES-256)
	KeySize = 32
	// NonceSize is the GCM standard nonce length
	NonceSize = 12
	// TagSize is the GCM authentication tag length
	TagSize = 16
	// MinSealedSize is the shortest buffer Open will attempt to authenticate
	MinSealedSize = NonceSize + TagSize
)

// Sealer seals plaintext and opens sealed buffers under one key.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// Codec is a Sealer for a raw 32-byte key. It is safe for concurrent use.
type Codec struct {
	gcm cipher.AEAD
}

// NewCodec builds a codec for key. The key schedule is copied; the caller
// remains responsible for key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, resilience.Newf(resilience.ErrorTypeInvalidKey, "key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, resilience.New(resilience.ErrorTypeInvalidKey, "aes key schedule", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, resilience.New(resilience.ErrorTypeInvalidKey, "gcm mode", err)
	}

	return &Codec{gcm: gcm}, nil
}

// Seal encrypts plaintext under a fresh random nonce.
func (c *Codec) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, NonceSize, NonceSize+len(plaintext)+TagSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, resilience.NewTransientError("reading nonce entropy", err)
	}

	return c.gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts sealed. It never returns partial plaintext.
func (c *Codec) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < MinSealedSize {
		return nil, resilience.Newf(resilience.ErrorTypeInvalidFraming,
			"sealed buffer is %d bytes, need at least %d", len(sealed), MinSealedSize)
	}

	nonce, body := sealed[:NonceSize], sealed[NonceSize:]
	plaintext, err := c.gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, resilience.New(resilience.ErrorTypeAuthenticationFailure, "tag verification failed", err)
	}

	return plaintext, nil
}

// Encrypt seals plaintext with a one-off codec for key.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	c, err := NewCodec(key)
	if err != nil {
		return nil, err
	}
	return c.Seal(plaintext)
}

// Decrypt opens sealed with a one-off codec for key.
func Decrypt(sealed, key []byte) ([]byte, error) {
	c, err := NewCodec(key)
	if err != nil {
		return nil, err
	}
	return c.Open(sealed)
}

// Overhead returns how many bytes Seal adds to a plaintext.
func Overhead() int {
	return MinSealedSize
}
