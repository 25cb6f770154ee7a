// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aead

import (
	"testing"

	"ciphershield/internal/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Small parameters keep the suite fast; production uses DefaultArgon2Params.
var testParams = Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16}

func TestPassphraseCodec_RoundTrip(t *testing.T) {
	codec, err := NewPassphraseCodecWithParams("correct horse battery staple", testParams)
	require.NoError(t, err)

	sealed, err := codec.Seal([]byte("Contact: john@example.com"))
	require.NoError(t, err)
	assert.Len(t, sealed, int(testParams.SaltLen)+len("Contact: john@example.com")+Overhead())

	opened, err := codec.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "Contact: john@example.com", string(opened))
}

func TestPassphraseCodec_RandomSaltPerSeal(t *testing.T) {
	codec, err := NewPassphraseCodecWithParams("pass", testParams)
	require.NoError(t, err)

	a, err := codec.Seal([]byte("x"))
	require.NoError(t, err)
	b, err := codec.Seal([]byte("x"))
	require.NoError(t, err)

	assert.NotEqual(t, a[:testParams.SaltLen], b[:testParams.SaltLen])
}

func TestPassphraseCodec_WrongPassphrase(t *testing.T) {
	sealer, err := NewPassphraseCodecWithParams("right", testParams)
	require.NoError(t, err)
	opener, err := NewPassphraseCodecWithParams("wrong", testParams)
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("data"))
	require.NoError(t, err)

	_, err = opener.Open(sealed)
	assert.ErrorIs(t, err, resilience.ErrAuthenticationFailure)
}

func TestPassphraseCodec_Framing(t *testing.T) {
	codec, err := NewPassphraseCodecWithParams("pass", testParams)
	require.NoError(t, err)

	_, err = codec.Open(make([]byte, int(testParams.SaltLen)+MinSealedSize-1))
	assert.ErrorIs(t, err, resilience.ErrInvalidFraming)
}

func TestPassphraseCodec_Validation(t *testing.T) {
	_, err := NewPassphraseCodecWithParams("", testParams)
	assert.ErrorIs(t, err, resilience.ErrInvalidKey)

	_, err = NewPassphraseCodecWithParams("pass", Argon2Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 8})
	assert.ErrorIs(t, err, resilience.ErrInvalidKey)

	codec, err := NewPassphraseCodecWithParams("pass", testParams)
	require.NoError(t, err)
	codec.Clear()
	_, err = codec.Seal([]byte("x"))
	assert.ErrorIs(t, err, resilience.ErrInvalidKey)
}

func TestDeriveKey_Deterministic(t *testing.T) {
	salt := make([]byte, 16)
	a := DeriveKey([]byte("pass"), salt, testParams)
	b := DeriveKey([]byte("pass"), salt, testParams)
	assert.Len(t, a, KeySize)
	assert.Equal(t, a, b)
}
