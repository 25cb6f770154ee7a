// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Recognize(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name  string
		text  string
		want  []string
		check func(t *testing.T, conf float64)
	}{
		{
			name: "contact line",
			text: "Contact: john@example.com",
			want: []string{"john@example.com"},
			check: func(t *testing.T, conf float64) {
				assert.InDelta(t, 1.0, conf, 1e-9)
			},
		},
		{
			name: "plus and subdomain",
			text: "send to user.name+tag@mail.corp.co.uk today",
			want: []string{"user.name+tag@mail.corp.co.uk"},
		},
		{
			name: "several",
			text: "a@b.io, c@d.org",
			want: []string{"a@b.io", "c@d.org"},
		},
		{
			name: "consecutive dots",
			text: "bad: a..b@host.com",
			want: nil,
		},
		{
			name: "no tld",
			text: "user@localhost",
			want: nil,
		},
		{
			name: "negative context",
			text: "dummy value x@y.com",
			want: []string{"x@y.com"},
			check: func(t *testing.T, conf float64) {
				assert.InDelta(t, 0.65, conf, 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := v.Recognize(tt.text)
			require.NoError(t, err)
			require.Len(t, spans, len(tt.want))
			for i, s := range spans {
				assert.Equal(t, tt.want[i], s.Text(tt.text))
				assert.Equal(t, EntityType, s.EntityType)
				assert.Equal(t, "email", s.Recognizer)
			}
			if tt.check != nil {
				tt.check(t, spans[0].Confidence)
			}
		})
	}
}

func TestValidator_CheckInfo(t *testing.T) {
	info := NewValidator().GetCheckInfo()
	assert.Equal(t, "EMAIL_ADDRESS", info.Name)
	assert.NotEmpty(t, info.PositiveKeywords)
}
