// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"strings"
	"unicode/utf8"
)

// ContextExtractor pulls the text around a span and scores nearby keywords
type ContextExtractor struct {
	// Number of bytes before and after the match to consider
	ContextChars int

	// Confidence added when a positive keyword is nearby, and removed for a negative one
	PositiveBoost   float64
	NegativePenalty float64
}

// NewContextExtractor creates a new context extractor with default settings
func NewContextExtractor() *ContextExtractor {
	return &ContextExtractor{
		ContextChars:    50,
		PositiveBoost:   0.15,
		NegativePenalty: 0.2,
	}
}

// Extract returns the window of text around [start,end), trimmed to rune boundaries
func (ce *ContextExtractor) Extract(text string, start, end int) ContextInfo {
	from := max(0, start-ce.ContextChars)
	for from > 0 && !utf8.RuneStart(text[from]) {
		from--
	}
	to := min(len(text), end+ce.ContextChars)
	for to < len(text) && !utf8.RuneStart(text[to]) {
		to++
	}
	return ContextInfo{
		BeforeText: text[from:start],
		AfterText:  text[end:to],
	}
}

// Analyze fills in the keywords found in info and returns the resulting confidence adjustment
func (ce *ContextExtractor) Analyze(info *ContextInfo, positive, negative []string) float64 {
	window := strings.ToLower(info.BeforeText + " " + info.AfterText)

	for _, kw := range positive {
		if containsWord(window, kw) {
			info.PositiveKeywords = append(info.PositiveKeywords, kw)
		}
	}
	for _, kw := range negative {
		if containsWord(window, kw) {
			info.NegativeKeywords = append(info.NegativeKeywords, kw)
		}
	}

	impact := 0.0
	if len(info.PositiveKeywords) > 0 {
		impact += ce.PositiveBoost
	}
	if len(info.NegativeKeywords) > 0 {
		impact -= ce.NegativePenalty
	}
	info.ConfidenceImpact = impact
	return impact
}

// Score applies the context impact to base and clamps the result to [0,1]
func (ce *ContextExtractor) Score(text string, start, end int, base float64, positive, negative []string) float64 {
	info := ce.Extract(text, start, end)
	return Clamp(base + ce.Analyze(&info, positive, negative))
}

// Clamp limits a confidence to [0,1]
func Clamp(v float64) float64 {
	return min(1, max(0, v))
}

// containsWord reports whether kw occurs in s delimited by non-alphanumerics
func containsWord(s, kw string) bool {
	for offset := 0; ; {
		i := strings.Index(s[offset:], kw)
		if i < 0 {
			return false
		}
		i += offset
		j := i + len(kw)
		if (i == 0 || !isWordByte(s[i-1])) && (j == len(s) || !isWordByte(s[j])) {
			return true
		}
		offset = i + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
