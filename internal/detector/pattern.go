// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ciphershield/internal/resilience"
)

// DefaultCustomConfidence is used when a custom detector omits its confidence
const DefaultCustomConfidence = 0.8

// Definition describes a caller-supplied regex detector
type Definition struct {
	EntityType string   `json:"entity_type" yaml:"entity_type"`
	Pattern    string   `json:"pattern" yaml:"pattern"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// EffectiveConfidence returns the configured confidence or the default
func (d Definition) EffectiveConfidence() float64 {
	if d.Confidence == nil {
		return DefaultCustomConfidence
	}
	return *d.Confidence
}

// PatternRecognizer emits a fixed-confidence span for every regex match.
// When the pattern has a capture group, the first group is the span.
type PatternRecognizer struct {
	name       string
	entityType string
	regex      *regexp.Regexp
	confidence float64
}

// NewPatternRecognizer compiles pattern into a recognizer for entityType
func NewPatternRecognizer(entityType, pattern string, confidence float64) (*PatternRecognizer, error) {
	entityType = strings.TrimSpace(entityType)
	if entityType == "" {
		return nil, fmt.Errorf("custom detector has no entity type")
	}
	if confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("custom detector %s: confidence %v outside [0,1]", entityType, confidence)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("custom detector %s: %w", entityType, err)
	}
	if re.MatchString("") {
		return nil, fmt.Errorf("custom detector %s: pattern matches the empty string", entityType)
	}
	return &PatternRecognizer{
		name:       "pattern:" + entityType,
		entityType: entityType,
		regex:      re,
		confidence: confidence,
	}, nil
}

// Compile builds recognizers for a list of definitions, stopping at the first invalid one.
// An invalid definition is a permanent DetectionFailure.
func Compile(defs []Definition) ([]Recognizer, error) {
	recognizers := make([]Recognizer, 0, len(defs))
	for i, def := range defs {
		r, err := NewPatternRecognizer(def.EntityType, def.Pattern, def.EffectiveConfidence())
		if err != nil {
			return nil, resilience.NewPermanentError(resilience.ErrorTypeDetectionFailure,
				fmt.Sprintf("custom detector %d", i), err)
		}
		recognizers = append(recognizers, r)
	}
	return recognizers, nil
}

func (p *PatternRecognizer) Name() string       { return p.name }
func (p *PatternRecognizer) EntityType() string { return p.entityType }

// Recognize implements Recognizer
func (p *PatternRecognizer) Recognize(text string) ([]Span, error) {
	var spans []Span
	for _, loc := range p.regex.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if len(loc) >= 4 && loc[2] >= 0 {
			start, end = loc[2], loc[3]
		}
		if start == end {
			continue
		}
		spans = append(spans, Span{
			Start:      start,
			End:        end,
			EntityType: p.entityType,
			Confidence: p.confidence,
			Recognizer: p.name,
		})
	}
	return spans, nil
}

// KeepLongest drops spans that lie entirely inside a longer (or earlier equal) span.
// Recognizers with several overlapping patterns use it to report each value once.
func KeepLongest(spans []Span) []Span {
	sorted := append([]Span(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	kept := sorted[:0]
	for _, s := range sorted {
		if n := len(kept); n > 0 && s.Start >= kept[n-1].Start && s.End <= kept[n-1].End {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}
