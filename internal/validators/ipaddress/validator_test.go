// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Recognize(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"ipv4", "server at 192.168.1.10 is down", []string{"192.168.1.10"}},
		{"ipv4 cidr", "subnet 10.0.0.0/8", []string{"10.0.0.0/8"}},
		{"ipv6 full", "host 2001:0db8:85a3:0000:0000:8a2e:0370:7334", []string{"2001:0db8:85a3:0000:0000:8a2e:0370:7334"}},
		{"ipv6 compressed", "gw fe80::1ff:fe23:4567:890a", []string{"fe80::1ff:fe23:4567:890a"}},
		{"out of range octet", "999.1.1.1", nil},
		{"version string", "release 1.2.3.4.5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans, err := v.Recognize(tt.text)
			require.NoError(t, err)
			require.Len(t, spans, len(tt.want))
			for i, s := range spans {
				assert.Equal(t, tt.want[i], s.Text(tt.text))
				assert.Equal(t, EntityType, s.EntityType)
			}
		})
	}
}

func TestValidator_ContextRaisesConfidence(t *testing.T) {
	spans, err := NewValidator().Recognize("gateway 10.1.2.3")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.InDelta(t, 0.75, spans[0].Confidence, 1e-9)
}
