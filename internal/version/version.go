// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"ciphershield/internal/aead"
	"ciphershield/internal/formats"
	"ciphershield/internal/validators"
)

// Version information set by semantic-release
var (
	// Version is the current version of ciphershield
	Version = "0.0.0-development"

	// GitCommit is the git commit hash
	GitCommit = "unknown"

	// BuildDate is when the binary was built
	BuildDate = "unknown"
)

// Build describes the binary and what it can process
type Build struct {
	Version   string   `json:"version"`
	Commit    string   `json:"commit"`
	BuildDate string   `json:"build_date"`
	GoVersion string   `json:"go_version"`
	Platform  string   `json:"platform"`
	Cipher    string   `json:"cipher"`
	KDF       string   `json:"kdf"`
	Formats   []string `json:"formats"`
	Entities  []string `json:"entities"`
}

// Current collects the build information. Commit and date fall back to the
// VCS stamp of the Go toolchain when they were not set at link time.
func Current() Build {
	b := Build{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		Cipher:    fmt.Sprintf("AES-256-GCM (%d-byte nonce, %d-byte tag)", aead.NonceSize, aead.TagSize),
		Formats:   formats.Tags(),
		Entities:  validators.EntityTypes(),
	}

	p := aead.DefaultArgon2Params()
	b.KDF = fmt.Sprintf("Argon2id (t=%d, m=%d MiB, p=%d)", p.Time, p.Memory/1024, p.Threads)

	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			switch {
			case s.Key == "vcs.revision" && b.Commit == "unknown":
				b.Commit = s.Value
			case s.Key == "vcs.time" && b.BuildDate == "unknown":
				b.BuildDate = s.Value
			}
		}
	}
	return b
}

// Info returns formatted version information
func Info() string {
	b := Current()
	return fmt.Sprintf("ciphershield %s (commit: %s, built: %s, go: %s, platform: %s)",
		b.Version, b.Commit, b.BuildDate, b.GoVersion, b.Platform)
}

// Details is Info followed by the cipher suite and the supported formats and entity types
func Details() string {
	b := Current()
	var sb strings.Builder
	sb.WriteString(Info())
	sb.WriteByte('\n')
	fmt.Fprintf(&sb, "  cipher:   %s\n", b.Cipher)
	fmt.Fprintf(&sb, "  kdf:      %s\n", b.KDF)
	fmt.Fprintf(&sb, "  formats:  %s\n", strings.Join(b.Formats, ", "))
	fmt.Fprintf(&sb, "  entities: %s\n", strings.Join(b.Entities, ", "))
	return sb.String()
}
