// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aead

import (
	"crypto/rand"
	"io"

	"ciphershield/internal/resilience"
	"ciphershield/internal/security"

	"golang.org/x/crypto/argon2"
)

// Argon2Params configures Argon2id key derivation.
type Argon2Params struct {
	Time    uint32 // Number of iterations
	Memory  uint32 // Memory usage in KiB
	Threads uint8  // Parallelism factor
	SaltLen uint32 // Salt length stored ahead of each sealed buffer
}

// DefaultArgon2Params returns the RFC 9106 second recommended option.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		SaltLen: 16,
	}
}

// PassphraseCodec is a Sealer keyed by a passphrase. Every Seal draws a new
// random salt and writes salt || nonce || ciphertext || tag, so no two
// buffers share a derived key.
type PassphraseCodec struct {
	passphrase *security.SecureString
	params     Argon2Params
}

// NewPassphraseCodec copies passphrase into scrubbable memory.
func NewPassphraseCodec(passphrase string) (*PassphraseCodec, error) {
	return NewPassphraseCodecWithParams(passphrase, DefaultArgon2Params())
}

// NewPassphraseCodecWithParams is NewPassphraseCodec with custom Argon2 parameters.
func NewPassphraseCodecWithParams(passphrase string, params Argon2Params) (*PassphraseCodec, error) {
	if passphrase == "" {
		return nil, resilience.New(resilience.ErrorTypeInvalidKey, "passphrase is empty", nil)
	}
	if params.SaltLen < 16 {
		return nil, resilience.Newf(resilience.ErrorTypeInvalidKey, "salt length %d is below 16 bytes", params.SaltLen)
	}
	return &PassphraseCodec{
		passphrase: security.NewSecureString(passphrase),
		params:     params,
	}, nil
}

// Seal derives a key from a fresh salt and seals plaintext under it.
func (p *PassphraseCodec) Seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, p.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, resilience.NewTransientError("reading salt entropy", err)
	}

	codec, key, err := p.codecFor(salt)
	if err != nil {
		return nil, err
	}
	defer security.Wipe(key)

	sealed, err := codec.Seal(plaintext)
	if err != nil {
		return nil, err
	}
	return append(salt, sealed...), nil
}

// Open reads the salt prefix, derives the key and opens the remainder.
func (p *PassphraseCodec) Open(sealed []byte) ([]byte, error) {
	saltLen := int(p.params.SaltLen)
	if len(sealed) < saltLen+MinSealedSize {
		return nil, resilience.Newf(resilience.ErrorTypeInvalidFraming,
			"sealed buffer is %d bytes, need at least %d", len(sealed), saltLen+MinSealedSize)
	}

	codec, key, err := p.codecFor(sealed[:saltLen])
	if err != nil {
		return nil, err
	}
	defer security.Wipe(key)

	return codec.Open(sealed[saltLen:])
}

// Clear scrubs the passphrase. The codec is unusable afterwards.
func (p *PassphraseCodec) Clear() {
	p.passphrase.Clear()
}

func (p *PassphraseCodec) codecFor(salt []byte) (*Codec, []byte, error) {
	if p.passphrase.Len() == 0 {
		return nil, nil, resilience.New(resilience.ErrorTypeInvalidKey, "passphrase has been cleared", nil)
	}
	key := DeriveKey(p.passphrase.Bytes(), salt, p.params)
	codec, err := NewCodec(key)
	if err != nil {
		security.Wipe(key)
		return nil, nil, err
	}
	return codec, key, nil
}

// DeriveKey stretches passphrase and salt into a 32-byte key with Argon2id.
func DeriveKey(passphrase, salt []byte, params Argon2Params) []byte {
	return argon2.IDKey(passphrase, salt, params.Time, params.Memory, params.Threads, KeySize)
}

// NewSealer returns a passphrase codec when passphrase is set and a raw-key codec otherwise.
// Giving both is an error.
func NewSealer(key []byte, passphrase string) (Sealer, error) {
	switch {
	case passphrase != "" && len(key) > 0:
		return nil, resilience.New(resilience.ErrorTypeInvalidInput, "give either a key or a passphrase, not both", nil)
	case passphrase != "":
		return NewPassphraseCodec(passphrase)
	default:
		return NewCodec(key)
	}
}
