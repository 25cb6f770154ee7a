// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	info := Info()
	if !strings.HasPrefix(info, "ciphershield "+Version) {
		t.Errorf("unexpected info %q", info)
	}
	if strings.Contains(info, "\n") {
		t.Errorf("info should be a single line, got %q", info)
	}
}

func TestCurrent(t *testing.T) {
	b := Current()
	if b.Version != Version {
		t.Errorf("expected version %q, got %q", Version, b.Version)
	}
	if got := strings.Join(b.Formats, ","); got != "csv,json,pdf,txt,xml" {
		t.Errorf("unexpected formats %q", got)
	}
	if len(b.Entities) == 0 || !strings.Contains(strings.Join(b.Entities, ","), "EMAIL_ADDRESS") {
		t.Errorf("expected built-in entity types, got %v", b.Entities)
	}
	if !strings.HasPrefix(b.Cipher, "AES-256-GCM") || !strings.HasPrefix(b.KDF, "Argon2id") {
		t.Errorf("unexpected cipher suite %q / %q", b.Cipher, b.KDF)
	}
}

func TestDetails(t *testing.T) {
	details := Details()
	for _, want := range []string{"cipher:", "kdf:", "formats:  csv, json, pdf, txt, xml", "EMAIL_ADDRESS"} {
		if !strings.Contains(details, want) {
			t.Errorf("expected %q in details:\n%s", want, details)
		}
	}
}
