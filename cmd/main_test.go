// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ciphershield/internal/aead"
	"ciphershield/internal/paths"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "4242424242424242424242424242424242424242424242424242424242424242"

type result struct {
	code   int
	stdout string
	stderr string
}

// runCLI isolates config and key lookup from the developer's environment
func runCLI(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	t.Setenv(paths.ConfigDirEnv, t.TempDir())
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func sealFile(t *testing.T, dir, name, plaintext string) string {
	t.Helper()
	key, err := aead.ParseHexKey(testKeyHex)
	require.NoError(t, err)
	sealed, err := aead.Encrypt([]byte(plaintext), key)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, sealed, 0o600))
	return path
}

func openFile(t *testing.T, path string) string {
	t.Helper()
	key, err := aead.ParseHexKey(testKeyHex)
	require.NoError(t, err)
	sealed, err := os.ReadFile(path)
	require.NoError(t, err)
	plaintext, err := aead.Decrypt(sealed, key)
	require.NoError(t, err)
	return string(plaintext)
}

func TestRun_Keygen(t *testing.T) {
	res := runCLI(t, "", "keygen")
	require.Equal(t, 0, res.code, res.stderr)

	key, err := hex.DecodeString(strings.TrimSpace(res.stdout))
	require.NoError(t, err)
	assert.Len(t, key, aead.KeySize)

	out := filepath.Join(t.TempDir(), "k.hex")
	res = runCLI(t, "", "keygen", "-out", out)
	require.Equal(t, 0, res.code, res.stderr)
	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRun_EncryptDecrypt(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(in, []byte("hello"), 0o600))

	res := runCLI(t, "", "encrypt", "-in", in, "-key", testKeyHex)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "hello", openFile(t, in+".enc"))

	res = runCLI(t, "", "decrypt", "-in", in+".enc", "-key", testKeyHex)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "hello", res.stdout)
}

func TestRun_PassphraseFromStdin(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(in, []byte("hello"), 0o600))

	res := runCLI(t, "correct horse\n", "encrypt", "-in", in, "-passphrase")
	require.Equal(t, 0, res.code, res.stderr)

	res = runCLI(t, "correct horse\n", "decrypt", "-in", in+".enc", "-passphrase")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "hello", res.stdout)

	res = runCLI(t, "wrong\n", "decrypt", "-in", in+".enc", "-passphrase")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "AuthenticationFailure")
}

func TestRun_AnonymizeThenDeanonymize(t *testing.T) {
	dir := t.TempDir()
	in := sealFile(t, dir, "contact.txt.enc", "Contact: john@example.com")
	t.Setenv(keyEnv, testKeyHex)

	res := runCLI(t, "", "anonymize", "-in", in, "-no-color")
	require.Equal(t, 0, res.code, res.stderr)

	anonymized := filepath.Join(dir, "contact.anonymized.txt.enc")
	assert.Equal(t, "Contact: <EMAIL_ADDRESS>", openFile(t, anonymized))
	assert.Contains(t, res.stdout, "EMAIL_ADDRESS")
	assert.NotContains(t, res.stdout, "john@example.com", "the summary masks originals")

	mappings := filepath.Join(dir, "contact.anonymized.txt.mappings.json")
	data, err := os.ReadFile(mappings)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"original": "john@example.com"`)

	res = runCLI(t, "", "deanonymize", "-in", anonymized, "-mappings", mappings)
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "Contact: john@example.com", openFile(t, filepath.Join(dir, "contact.anonymized.restored.txt.enc")))
}

func TestRun_AnonymizeYAMLMappingsAndExplicitFormat(t *testing.T) {
	dir := t.TempDir()
	in := sealFile(t, dir, "export.bin", "ip,owner\n10.0.0.1,ops@corp.io\n")
	out := filepath.Join(dir, "export.out")
	mappings := filepath.Join(dir, "map.yaml")

	res := runCLI(t, "", "anonymize", "-in", in, "-out", out, "-format", "csv", "-mappings", mappings, "-key", testKeyHex, "-style", "indexed")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "ip,owner\n<IP_ADDRESS_1>,<EMAIL_ADDRESS_1>\n", openFile(t, out))

	data, err := os.ReadFile(mappings)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pii_type: IP_ADDRESS")

	restored := filepath.Join(dir, "export.restored")
	res = runCLI(t, "", "deanonymize", "-in", out, "-out", restored, "-format", "csv", "-mappings", mappings, "-key", testKeyHex, "-strict")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "ip,owner\n10.0.0.1,ops@corp.io\n", openFile(t, restored))
}

func TestRun_AnonymizeRemovesOutputWhenMappingsCannotBeWritten(t *testing.T) {
	dir := t.TempDir()
	in := sealFile(t, dir, "contact.txt.enc", "Contact: john@example.com")
	out := filepath.Join(dir, "contact.out.enc")

	res := runCLI(t, "", "anonymize", "-in", in, "-out", out, "-key", testKeyHex,
		"-mappings", filepath.Join(dir, "missing", "map.json"))
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "write mappings")
	assert.Contains(t, res.stderr, "Transient")
	assert.NoFileExists(t, out, "an anonymized file without its mappings cannot be restored")
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	sealed := sealFile(t, dir, "a.txt.enc", "x@y.io")
	otherKey := strings.Repeat("17", 32)

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no command", nil, 2, "USAGE"},
		{"unknown command", []string{"scan"}, 2, "unknown command"},
		{"missing input", []string{"anonymize", "-key", testKeyHex}, 2, "-in is required"},
		{"missing key", []string{"anonymize", "-in", sealed}, 2, "a key is required"},
		{"key and passphrase", []string{"decrypt", "-in", sealed, "-key", testKeyHex, "-passphrase"}, 2, "cannot be combined"},
		{"short key", []string{"decrypt", "-in", sealed, "-key", "abcd"}, 1, "InvalidKey"},
		{"wrong key", []string{"anonymize", "-in", sealed, "-key", otherKey}, 1, "AuthenticationFailure"},
		{"unsupported format", []string{"anonymize", "-in", sealed, "-key", testKeyHex, "-format", "docx"}, 1, "UnsupportedFormat"},
		{"unknown entity", []string{"anonymize", "-in", sealed, "-key", testKeyHex, "-entities", "PASSPORT"}, 2, "unknown entity type"},
		{"bad style", []string{"anonymize", "-in", sealed, "-key", testKeyHex, "-style", "stars"}, 2, "stars"},
		{"display-only mapping format", []string{"anonymize", "-in", sealed, "-key", testKeyHex, "-mapping-format", "text"}, 2, "cannot be read back"},
		{"display-only mapping file", []string{"anonymize", "-in", sealed, "-key", testKeyHex, "-mappings", filepath.Join(dir, "map.txt")}, 2, "cannot be read back"},
		{"unknown mapping format", []string{"anonymize", "-in", sealed, "-key", testKeyHex, "-mapping-format", "xml"}, 2, "unknown mapping format"},
		{"deanonymize without mappings", []string{"deanonymize", "-in", sealed, "-key", testKeyHex}, 2, "-mappings is required"},
		{"unknown flag", []string{"keygen", "-bits", "128"}, 2, "-bits"},
		{"stray argument", []string{"version", "extra"}, 2, "unexpected argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, "", tt.args...)
			assert.Equal(t, tt.wantCode, res.code)
			assert.Contains(t, res.stderr, tt.wantErr)
		})
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "failed requests write nothing")
}

func TestRun_StrictDeanonymizeRejectsAmbiguousMappings(t *testing.T) {
	dir := t.TempDir()
	in := sealFile(t, dir, "a.txt.enc", "a@x.io then b@x.io")
	t.Setenv(keyEnv, testKeyHex)

	res := runCLI(t, "", "anonymize", "-in", in)
	require.Equal(t, 0, res.code, res.stderr)

	anonymized := filepath.Join(dir, "a.anonymized.txt.enc")
	mappings := filepath.Join(dir, "a.anonymized.txt.mappings.json")
	res = runCLI(t, "", "deanonymize", "-in", anonymized, "-mappings", mappings, "-strict")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "AmbiguousReversal (permanent)")
}

func TestRun_EntitiesAndVersion(t *testing.T) {
	res := runCLI(t, "", "entities", "-no-color")
	require.Equal(t, 0, res.code, res.stderr)
	for _, entity := range []string{"CREDIT_CARD", "EMAIL_ADDRESS", "IP_ADDRESS", "PHONE_NUMBER", "US_SSN"} {
		assert.Contains(t, res.stdout, entity)
	}

	res = runCLI(t, "", "entities", "-no-color", "US_SSN")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "US_SSN Recognizer")

	res = runCLI(t, "", "version")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "ciphershield")

	res = runCLI(t, "", "version", "-verbose")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "formats:  csv, json, pdf, txt, xml")
	assert.Contains(t, res.stdout, "AES-256-GCM")

	res = runCLI(t, "", "help")
	require.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "deanonymize")
}

func TestDefaultMappingsPath(t *testing.T) {
	assert.Equal(t, "out/r.anonymized.csv.mappings.json", defaultMappingsPath("out/r.anonymized.csv.enc", "json"))
	assert.Equal(t, "r.txt.mappings.yaml", defaultMappingsPath("r.txt", "yaml"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"EMAIL_ADDRESS", "US_SSN"}, splitList(" email_address, ,US_SSN"))
	assert.Nil(t, splitList(""))
}
