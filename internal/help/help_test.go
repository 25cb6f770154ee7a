// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProvider struct {
	info CheckInfo
}

func (s stubProvider) GetCheckInfo() CheckInfo { return s.info }

func newTestSystem() (*System, *bytes.Buffer) {
	var out bytes.Buffer
	h := NewSystemWithWriter(&out, true)
	h.RegisterProvider(stubProvider{CheckInfo{
		Name:             "US_SSN",
		ShortDescription: "Detects US social security numbers",
		Patterns:         []string{"123-45-6789"},
		PositiveKeywords: []string{"ssn", "social", "security", "tax", "taxpayer", "employee"},
		NegativeKeywords: []string{"order"},
		ConfidenceFactors: []ConfidenceFactor{
			{Name: "Area number", Description: "Not 000, 666 or 9xx", Weight: 60},
		},
		Examples: []string{"ciphershield anonymize -in hr.csv.enc -entities US_SSN"},
	}})
	h.RegisterProvider(stubProvider{CheckInfo{Name: "EMAIL_ADDRESS", ShortDescription: "Detects email addresses"}})
	return h, &out
}

func TestShowChecksHelp_SortedList(t *testing.T) {
	h, out := newTestSystem()
	h.ShowChecksHelp()

	text := out.String()
	assert.Less(t, bytes.Index(out.Bytes(), []byte("EMAIL_ADDRESS")), bytes.Index(out.Bytes(), []byte("US_SSN")))
	assert.Contains(t, text, "ciphershield entities EMAIL_ADDRESS")
	assert.NotContains(t, text, "\x1b[", "no escape codes when color is disabled")
}

func TestShowCheckHelp(t *testing.T) {
	h, out := newTestSystem()

	assert.True(t, h.ShowCheckHelp("us_ssn"))
	text := out.String()
	assert.Contains(t, text, "US_SSN Recognizer")
	assert.Contains(t, text, "Area number (60%)")
	assert.Contains(t, text, "ssn, social, security, tax, taxpayer")
	assert.Contains(t, text, "and others...")
	assert.Contains(t, text, "-entities US_SSN")

	out.Reset()
	assert.False(t, h.ShowCheckHelp("PASSPORT"))
	assert.Contains(t, out.String(), "'PASSPORT' not found")
}

func TestShowGeneralHelp(t *testing.T) {
	h, out := newTestSystem()
	h.ShowGeneralHelp()

	for _, cmd := range []string{"keygen", "encrypt", "decrypt", "anonymize", "deanonymize", "serve", "version"} {
		assert.Contains(t, out.String(), cmd)
	}
	assert.Contains(t, out.String(), "Mapping lists contain the original PII")
}
