// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"unicode/utf8"
)

// Span is a detected PII range in one text snapshot.
// Start and End are half-open byte offsets into the UTF-8 text.
type Span struct {
	Start      int
	End        int
	EntityType string
	Confidence float64
	Recognizer string // Name of the recognizer that produced the span
}

// Len returns the byte length of the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether s and o share at least one byte
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Text returns the covered substring of text
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// ValidateSpan checks that s lies within text on rune boundaries and carries a usable confidence
func ValidateSpan(text string, s Span) error {
	if s.Start < 0 || s.End > len(text) || s.Start >= s.End {
		return fmt.Errorf("span [%d,%d) out of range for text of %d bytes", s.Start, s.End, len(text))
	}
	if !isRuneBoundary(text, s.Start) || !isRuneBoundary(text, s.End) {
		return fmt.Errorf("span [%d,%d) splits a UTF-8 sequence", s.Start, s.End)
	}
	if s.EntityType == "" {
		return fmt.Errorf("span [%d,%d) has no entity type", s.Start, s.End)
	}
	if s.Confidence < 0 || s.Confidence > 1 {
		return fmt.Errorf("span [%d,%d) confidence %v outside [0,1]", s.Start, s.End, s.Confidence)
	}
	return nil
}

func isRuneBoundary(text string, i int) bool {
	if i == 0 || i == len(text) {
		return true
	}
	return utf8.RuneStart(text[i])
}

// Recognizer finds spans of a single entity type in text
type Recognizer interface {
	// Name identifies the recognizer in logs and span metadata
	Name() string

	// EntityType is the label given to every span this recognizer emits
	EntityType() string

	// Recognize returns candidate spans over text. Implementations must be safe for concurrent use.
	Recognize(text string) ([]Span, error)
}

// ContextInfo stores the text surrounding a match
type ContextInfo struct {
	BeforeText string
	AfterText  string

	// Keywords found near the match
	PositiveKeywords []string
	NegativeKeywords []string

	// Impact on confidence score
	ConfidenceImpact float64
}
