// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import "ciphershield/internal/help"

// GetCheckInfo returns standardized information about the phone recognizer
func (v *Validator) GetCheckInfo() help.CheckInfo {
	patterns := make([]string, 0, len(v.patterns))
	for _, p := range v.patterns {
		patterns = append(patterns, p.name+" ("+p.country+")")
	}

	return help.CheckInfo{
		Name:             EntityType,
		ShortDescription: "Detects US and international phone numbers",
		DetailedDescription: `Runs a set of US and international patterns and keeps the widest match for each number, so an extension or country code stays part of the redacted span.

Bare ten-digit runs are reported with low confidence and are only redacted when phone keywords are nearby or the threshold is lowered.`,
		Patterns:         patterns,
		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
	}
}
