// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package phone

import (
	"regexp"
	"strings"

	"ciphershield/internal/detector"
	"ciphershield/internal/observability"
)

// EntityType is the label given to phone number spans
const EntityType = "PHONE_NUMBER"

// phonePattern represents a phone number pattern with metadata
type phonePattern struct {
	name       string
	regex      *regexp.Regexp
	country    string
	confidence float64
}

// Validator implements the detector.Recognizer interface for phone numbers
type Validator struct {
	patterns []phonePattern
	context  *detector.ContextExtractor

	positiveKeywords []string
	negativeKeywords []string

	observer *observability.StandardObserver
}

// NewValidator creates a new phone number validator
func NewValidator() *Validator {
	return &Validator{
		patterns: []phonePattern{
			{
				name:       "US_PARENTHESES",
				regex:      regexp.MustCompile(`\(\d{3}\)\s?\d{3}[-.\s]\d{4}\b`),
				country:    "US",
				confidence: 0.75,
			},
			{
				name:       "US_SEPARATED",
				regex:      regexp.MustCompile(`\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
				country:    "US",
				confidence: 0.6,
			},
			{
				name:       "US_INTERNATIONAL",
				regex:      regexp.MustCompile(`\+1[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`),
				country:    "US",
				confidence: 0.75,
			},
			{
				name:       "INTERNATIONAL",
				regex:      regexp.MustCompile(`\+\d{1,3}[-.\s]?\d{2,4}[-.\s]?\d{3,4}[-.\s]?\d{3,4}\b`),
				country:    "INTL",
				confidence: 0.6,
			},
			{
				name:       "TOLL_FREE",
				regex:      regexp.MustCompile(`\b(?:1[-.\s]?)?(?:800|833|844|855|866|877|888)[-.\s]\d{3}[-.\s]\d{4}\b`),
				country:    "US",
				confidence: 0.7,
			},
			{
				name:       "WITH_EXTENSION",
				regex:      regexp.MustCompile(`(?:\(\d{3}\)\s?|\b\d{3}[-.\s])\d{3}[-.\s]\d{4}\s?(?:ext\.?|extension|x)\s?\d{1,6}\b`),
				country:    "US",
				confidence: 0.8,
			},
			{
				name:       "BARE_TEN_DIGITS",
				regex:      regexp.MustCompile(`\b\d{10}\b`),
				country:    "US",
				confidence: 0.3,
			},
		},
		context: detector.NewContextExtractor(),
		positiveKeywords: []string{
			"phone", "telephone", "tel", "call", "mobile", "cell", "cellular",
			"contact", "fax", "voicemail", "extension", "ext", "dial",
			"caller", "hotline", "helpline", "office", "home", "work",
			"toll-free", "tollfree",
		},
		negativeKeywords: []string{
			"ssn", "social security", "taxpayer", "ein", "itin",
			"credit", "card", "account", "balance", "amount",
			"timestamp", "unix", "epoch", "milliseconds", "version",
			"revision", "commit", "hash", "checksum", "uuid", "guid",
		},
	}
}

func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

func (v *Validator) GetComponentName() string { return "phone_validator" }
func (v *Validator) Name() string             { return "phone" }
func (v *Validator) EntityType() string       { return EntityType }

// Recognize runs every pattern and reports each number once, at its widest match
func (v *Validator) Recognize(text string) ([]detector.Span, error) {
	var spans []detector.Span
	for _, p := range v.patterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if start > 0 && isAlnum(text[start-1]) {
				continue
			}
			if !plausible(text[start:end]) {
				continue
			}
			spans = append(spans, detector.Span{
				Start:      start,
				End:        end,
				EntityType: EntityType,
				Confidence: v.context.Score(text, start, end, p.confidence, v.positiveKeywords, v.negativeKeywords),
				Recognizer: v.Name(),
			})
		}
	}
	return detector.KeepLongest(spans), nil
}

// plausible checks the digit count against E.164 and rejects filler such as 000-000-0000
func plausible(match string) bool {
	var digits strings.Builder
	for i := 0; i < len(match); i++ {
		if match[i] >= '0' && match[i] <= '9' {
			digits.WriteByte(match[i])
		}
	}
	d := digits.String()
	if len(d) < 7 || len(d) > 21 {
		return false
	}
	return strings.Count(d, d[:1]) != len(d)
}

func isAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
