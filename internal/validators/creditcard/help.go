// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import "ciphershield/internal/help"

// GetCheckInfo returns standardized information about the credit card recognizer
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:                EntityType,
		ShortDescription:    "Detects payment card numbers that pass the Luhn check",
		DetailedDescription: `Matches 14 to 16 digit numbers, grouped or not, delimited by whitespace or punctuation. Numbers must pass the Luhn checksum; well-known test numbers and single repeated digits are dropped. A BIN belonging to a major network raises the base confidence.`,
		Patterns: []string{
			"XXXX XXXX XXXX XXXX",
			"XXXX-XXXXXX-XXXXX (American Express)",
			"XXXXXXXXXXXXXXXX",
		},
		SupportedFormats: []string{
			"Visa", "MasterCard", "American Express", "Discover", "JCB", "Diners Club", "UnionPay", "Maestro",
		},
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Luhn", Description: "Checksum must pass", Weight: 50},
			{Name: "BIN", Description: "Issuer prefix belongs to a known network", Weight: 30},
			{Name: "Context", Description: "Nearby keywords", Weight: 20},
		},
		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
	}
}
