// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"strings"

	"ciphershield/internal/resilience"
)

// Deanonymize replaces every occurrence of each item's Anonymized value with its
// Original, applying items in the order given. Later items see the output of
// earlier ones. Replacement is literal and case-sensitive.
func Deanonymize(text string, mappings []MappingItem) (string, error) {
	if err := checkMappings(mappings); err != nil {
		return "", err
	}
	for _, item := range mappings {
		text = strings.ReplaceAll(text, item.Anonymized, item.Original)
	}
	return text, nil
}

// CheckReversible reports AmbiguousReversal when a global replace over units
// cannot restore the originals: a placeholder stands for more than one distinct
// original, or a placeholder occurs in none of the units.
func CheckReversible(units []string, mappings []MappingItem) error {
	if err := checkMappings(mappings); err != nil {
		return err
	}

	originals := make(map[string]string, len(mappings))
	for _, item := range mappings {
		prev, seen := originals[item.Anonymized]
		if seen && prev != item.Original {
			return resilience.Newf(resilience.ErrorTypeAmbiguousReversal,
				"placeholder %s maps to more than one original", item.Anonymized)
		}
		originals[item.Anonymized] = item.Original
	}

	for _, item := range mappings {
		if !occursIn(units, item.Anonymized) {
			return resilience.Newf(resilience.ErrorTypeAmbiguousReversal,
				"placeholder %s does not occur in the document", item.Anonymized)
		}
	}
	return nil
}

func occursIn(units []string, s string) bool {
	for _, u := range units {
		if strings.Contains(u, s) {
			return true
		}
	}
	return false
}
