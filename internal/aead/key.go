// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aead

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"strings"

	"ciphershield/internal/resilience"
)

// GenerateKey returns a fresh random 32-byte key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, resilience.NewTransientError("reading key entropy", err)
	}
	return key, nil
}

// ParseHexKey decodes a 64-character hex key. Surrounding whitespace is ignored.
func ParseHexKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, resilience.New(resilience.ErrorTypeInvalidKey, "key is not valid hex", nil)
	}
	if len(key) != KeySize {
		return nil, resilience.Newf(resilience.ErrorTypeInvalidKey, "key must be %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// EncodeKey renders key as lowercase hex.
func EncodeKey(key []byte) string {
	return hex.EncodeToString(key)
}
