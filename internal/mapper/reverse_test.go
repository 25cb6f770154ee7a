// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphershield/internal/resilience"
)

func TestDeanonymize_MissingMappings(t *testing.T) {
	for _, mappings := range [][]MappingItem{nil, {}} {
		_, err := Deanonymize("Contact: <EMAIL_ADDRESS>", mappings)
		require.Error(t, err)
		assert.ErrorIs(t, err, resilience.ErrMissingMappings)
		assert.False(t, resilience.ClassifyError(err).Retryable)
	}
}

func TestDeanonymize_EmptyPlaceholderRejected(t *testing.T) {
	_, err := Deanonymize("x", []MappingItem{{Original: "a", Anonymized: ""}})
	assert.ErrorIs(t, err, resilience.ErrInvalidInput)
}

func TestDeanonymize_GlobalReplaceInSuppliedOrder(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		mappings []MappingItem
		want     string
	}{
		{
			name:     "every occurrence",
			text:     "<EMAIL_ADDRESS> and <EMAIL_ADDRESS>",
			mappings: []MappingItem{{Original: "a@b.io", Anonymized: "<EMAIL_ADDRESS>"}},
			want:     "a@b.io and a@b.io",
		},
		{
			name: "first item wins for a shared placeholder",
			text: "<EMAIL_ADDRESS> and <EMAIL_ADDRESS>",
			mappings: []MappingItem{
				{Original: "first@b.io", Anonymized: "<EMAIL_ADDRESS>"},
				{Original: "second@b.io", Anonymized: "<EMAIL_ADDRESS>"},
			},
			want: "first@b.io and first@b.io",
		},
		{
			name: "later items see earlier output",
			text: "<A>",
			mappings: []MappingItem{
				{Original: "<B>", Anonymized: "<A>"},
				{Original: "done", Anonymized: "<B>"},
			},
			want: "done",
		},
		{
			name:     "case sensitive",
			text:     "<email_address>",
			mappings: []MappingItem{{Original: "x", Anonymized: "<EMAIL_ADDRESS>"}},
			want:     "<email_address>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Deanonymize(tt.text, tt.mappings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckReversible(t *testing.T) {
	units := []string{"<EMAIL_ADDRESS_1>", "<PHONE_NUMBER> and <EMAIL_ADDRESS_2>"}

	ok := []MappingItem{
		{Original: "a@b.io", Anonymized: "<EMAIL_ADDRESS_1>"},
		{Original: "c@d.io", Anonymized: "<EMAIL_ADDRESS_2>"},
		{Original: "555-0100", Anonymized: "<PHONE_NUMBER>"},
		{Original: "555-0100", Anonymized: "<PHONE_NUMBER>"},
	}
	assert.NoError(t, CheckReversible(units, ok))

	conflicting := []MappingItem{
		{Original: "a@b.io", Anonymized: "<EMAIL_ADDRESS_1>"},
		{Original: "x@y.io", Anonymized: "<EMAIL_ADDRESS_1>"},
	}
	assert.ErrorIs(t, CheckReversible(units, conflicting), resilience.ErrAmbiguousReversal)

	absent := []MappingItem{{Original: "1.2.3.4", Anonymized: "<IP_ADDRESS>"}}
	assert.ErrorIs(t, CheckReversible(units, absent), resilience.ErrAmbiguousReversal)

	assert.ErrorIs(t, CheckReversible(units, nil), resilience.ErrMissingMappings)
}
