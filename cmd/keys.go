// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"ciphershield/internal/aead"
	"ciphershield/internal/security"

	"golang.org/x/term"
)

const (
	keyEnv        = "CIPHERSHIELD_KEY"
	passphraseEnv = "CIPHERSHIELD_PASSPHRASE"
)

// keyFlags select the key material for a command
type keyFlags struct {
	key        string
	keyFile    string
	passphrase bool
}

func (k *keyFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&k.key, "key", "", "Hex-encoded 256-bit key (default $"+keyEnv+")")
	fs.StringVar(&k.keyFile, "key-file", "", "File holding the hex key")
	fs.BoolVar(&k.passphrase, "passphrase", false, "Derive the key from a passphrase (prompted, or $"+passphraseEnv+")")
}

// resolve returns either a raw key or a passphrase. With confirm set, an interactive
// passphrase is asked for twice.
func (k *keyFlags) resolve(env *environment, confirm bool) ([]byte, string, error) {
	if k.passphrase {
		if k.key != "" || k.keyFile != "" {
			return nil, "", usagef("-passphrase cannot be combined with -key or -key-file")
		}
		passphrase, err := readPassphrase(env, confirm)
		return nil, passphrase, err
	}

	switch {
	case k.key != "" && k.keyFile != "":
		return nil, "", usagef("use either -key or -key-file, not both")
	case k.key != "":
		key, err := aead.ParseHexKey(k.key)
		return key, "", err
	case k.keyFile != "":
		data, err := os.ReadFile(k.keyFile)
		if err != nil {
			return nil, "", fmt.Errorf("read key file: %w", err)
		}
		defer security.Wipe(data)
		key, err := aead.ParseHexKey(string(bytes.TrimSpace(data)))
		return key, "", err
	case os.Getenv(keyEnv) != "":
		key, err := aead.ParseHexKey(os.Getenv(keyEnv))
		return key, "", err
	default:
		return nil, "", usagef("a key is required: use -key, -key-file, -passphrase or set %s", keyEnv)
	}
}

// readPassphrase takes the passphrase from the environment, the terminal, or the first line of stdin
func readPassphrase(env *environment, confirm bool) (string, error) {
	if v := os.Getenv(passphraseEnv); v != "" {
		return v, nil
	}

	if f, ok := env.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		passphrase, err := prompt(f, env.stderr, "Passphrase: ")
		if err != nil {
			return "", err
		}
		if confirm {
			again, err := prompt(f, env.stderr, "Confirm passphrase: ")
			if err != nil {
				return "", err
			}
			if again != passphrase {
				return "", usagef("passphrases do not match")
			}
		}
		return passphrase, nil
	}

	line, err := bufio.NewReader(env.stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	passphrase := strings.TrimRight(line, "\r\n")
	if passphrase == "" {
		return "", usagef("passphrase is empty")
	}
	return passphrase, nil
}

func prompt(f *os.File, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	defer security.Wipe(b)
	if len(b) == 0 {
		return "", usagef("passphrase is empty")
	}
	return string(b), nil
}
