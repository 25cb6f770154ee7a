// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import "ciphershield/internal/help"

// GetCheckInfo returns standardized information about the email recognizer
func (v *Validator) GetCheckInfo() help.CheckInfo {
	return help.CheckInfo{
		Name:             EntityType,
		ShortDescription: "Detects email addresses",
		DetailedDescription: `The email recognizer matches addresses of the form local@domain.tld and drops matches that break RFC 5321 length or dot rules.

Confidence starts at 0.85 and moves up or down with keywords found within 50 bytes of the match.`,
		Patterns: []string{
			"Standard format (e.g., user@domain.com)",
			"Complex usernames (e.g., user.name+tag@subdomain.domain.co.uk)",
		},
		ConfidenceFactors: []help.ConfidenceFactor{
			{Name: "Valid Format", Description: "Must match email format standards", Weight: 70},
			{Name: "Context", Description: "Nearby keywords", Weight: 30},
		},
		PositiveKeywords: v.positiveKeywords,
		NegativeKeywords: v.negativeKeywords,
		Examples: []string{
			"ciphershield anonymize -in contacts.csv.enc -out contacts.anon.enc -entities EMAIL_ADDRESS",
		},
	}
}
