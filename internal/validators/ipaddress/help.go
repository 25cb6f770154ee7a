// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

import "ciphershield/internal/help"

// GetCheckInfo returns standardized information about the IP address recognizer
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:                EntityType,
		ShortDescription:    "Detects IPv4 and IPv6 addresses",
		DetailedDescription: `Matches dotted-quad IPv4 and full or compressed IPv6 addresses, optionally followed by a CIDR prefix length. Every candidate must parse as an address or prefix.`,
		Patterns: []string{
			"IPv4 (e.g., 192.168.1.10, 10.0.0.0/8)",
			"IPv6 (e.g., 2001:db8::1, fe80::1ff:fe23:4567:890a)",
		},
		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
	}
}
