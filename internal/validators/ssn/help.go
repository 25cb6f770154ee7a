// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ssn

import "ciphershield/internal/help"

// GetCheckInfo returns standardized information about the SSN recognizer
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             EntityType,
		ShortDescription: "Detects US Social Security Numbers",
		DetailedDescription: `Matches dashed, spaced and bare nine-digit numbers, then rejects numbers in never-issued ranges (area 000, 666 or 9xx, group 00, serial 0000).

Bare nine-digit numbers start at low confidence and need a nearby keyword such as "SSN" to be redacted at the default threshold.`,
		Patterns: []string{
			"XXX-XX-XXXX",
			"XXX XX XXXX",
			"XXXXXXXXX",
		},
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Formatting", Description: "Separators raise the base score", Weight: 60},
			{Name: "Context", Description: "Nearby keywords", Weight: 40},
		},
		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
	}
}
