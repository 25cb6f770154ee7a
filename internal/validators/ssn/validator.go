// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ssn

import (
	"regexp"
	"strings"

	"ciphershield/internal/detector"
	"ciphershield/internal/observability"
)

// EntityType is the label given to US Social Security number spans
const EntityType = "US_SSN"

const (
	formattedConfidence   = 0.85 // 123-45-6789 or 123 45 6789
	unformattedConfidence = 0.4  // bare nine digits
)

// Validator implements the detector.Recognizer interface for SSNs
type Validator struct {
	regex            *regexp.Regexp
	context          *detector.ContextExtractor
	positiveKeywords []string
	negativeKeywords []string
	observer         *observability.StandardObserver
}

// NewValidator creates and returns a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		regex:   regexp.MustCompile(`\b(?:\d{3}-\d{2}-\d{4}|\d{3}\s\d{2}\s\d{4}|\d{9})\b`),
		context: detector.NewContextExtractor(),
		positiveKeywords: []string{
			"ssn", "social security", "social security number", "social",
			"tax id", "taxpayer id", "identification number", "employee id",
			"federal id", "government id", "national id", "benefits", "medicare",
			"irs", "w2", "w-2", "1099", "tax return", "payroll", "personnel",
		},
		negativeKeywords: []string{
			"phone", "telephone", "fax", "zip", "postal", "area code",
			"extension", "ext", "routing", "credit card", "serial", "model",
			"version", "build", "hash", "uuid", "guid",
		},
	}
}

func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

func (v *Validator) GetComponentName() string { return "ssn_validator" }
func (v *Validator) Name() string             { return "ssn" }
func (v *Validator) EntityType() string       { return EntityType }

// Recognize returns spans for numbers that satisfy the SSA allocation rules
func (v *Validator) Recognize(text string) ([]detector.Span, error) {
	var spans []detector.Span
	for _, loc := range v.regex.FindAllStringIndex(text, -1) {
		match := text[loc[0]:loc[1]]
		digits := strings.NewReplacer("-", "", " ", "", "\t", "", "\n", "").Replace(match)
		if !Valid(digits) {
			continue
		}

		base := formattedConfidence
		if len(match) == 9 {
			base = unformattedConfidence
		}

		spans = append(spans, detector.Span{
			Start:      loc[0],
			End:        loc[1],
			EntityType: EntityType,
			Confidence: v.context.Score(text, loc[0], loc[1], base, v.positiveKeywords, v.negativeKeywords),
			Recognizer: v.Name(),
		})
	}
	return spans, nil
}

// Valid reports whether nine digits form an SSN the SSA could have issued.
// Area 000, 666 and 900-999, group 00 and serial 0000 are never assigned,
// and a run of one repeated digit is treated as filler.
func Valid(digits string) bool {
	if len(digits) != 9 {
		return false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return false
		}
	}

	area, group, serial := digits[:3], digits[3:5], digits[5:]
	switch {
	case area == "000", area == "666", area[0] == '9':
		return false
	case group == "00", serial == "0000":
		return false
	case strings.Count(digits, digits[:1]) == 9:
		return false
	}
	return true
}
