// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"context"
	"fmt"

	"ciphershield/internal/detector"
	"ciphershield/internal/observability"
	"ciphershield/internal/redactors"
	"ciphershield/internal/resilience"
)

// MappingItem records one replacement so it can be reversed later.
// The list of items contains original PII in plaintext.
type MappingItem struct {
	Original   string  `json:"original" yaml:"original"`
	Anonymized string  `json:"anonymized" yaml:"anonymized"`
	PiiType    string  `json:"pii_type" yaml:"pii_type"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Analyzer is the detection capability the mapper depends on
type Analyzer interface {
	Analyze(ctx context.Context, text, language string, extra []detector.Recognizer) ([]detector.Span, error)
}

// Mapper turns text units into redacted text plus mapping items and back
type Mapper struct {
	analyzer Analyzer
	engine   *redactors.Engine
	language string
	observer *observability.StandardObserver
}

// New creates a mapper over an analyzer and a redaction engine
func New(analyzer Analyzer, engine *redactors.Engine) *Mapper {
	return &Mapper{
		analyzer: analyzer,
		engine:   engine,
		language: detector.SupportedLanguage,
	}
}

// SetObserver sets the observability component
func (m *Mapper) SetObserver(observer *observability.StandardObserver) {
	m.observer = observer
}

// SetLanguage sets the language passed to the analyzer
func (m *Mapper) SetLanguage(language string) {
	m.language = language
}

// Document anonymizes the units of one document with shared placeholder numbering
// and per-request custom recognizers. It is not safe for concurrent use.
type Document struct {
	mapper    *Mapper
	session   *redactors.Session
	custom    []detector.Recognizer
	fallbacks int
}

// NewDocument starts a document. custom recognizers apply to this document only.
func (m *Mapper) NewDocument(custom []detector.Recognizer) *Document {
	return &Document{
		mapper:  m,
		session: m.engine.NewSession(),
		custom:  custom,
	}
}

// Fallbacks returns how many items so far were given confidence 0 because their
// range matched no detected span
func (d *Document) Fallbacks() int {
	return d.fallbacks
}

// Anonymize detects PII in unit and replaces it. Items follow the order of the
// engine's operations, which is text order.
func (d *Document) Anonymize(ctx context.Context, unit string) (string, []MappingItem, error) {
	m := d.mapper

	spans, err := m.analyzer.Analyze(ctx, unit, m.language, d.custom)
	if err != nil {
		return "", nil, err
	}

	res, err := d.session.Anonymize(unit, spans)
	if err != nil {
		return "", nil, err
	}

	items := make([]MappingItem, 0, len(res.Operations))
	for _, op := range res.Operations {
		confidence, ok := matchConfidence(spans, op)
		if !ok {
			d.fallbacks++
			if dbg := m.debug(); dbg != nil {
				dbg.LogDetail("mapper", fmt.Sprintf("no detection at [%d,%d) for %s, confidence set to 0", op.Start, op.End, op.EntityType))
			}
		}
		items = append(items, MappingItem{
			Original:   unit[op.Start:op.End],
			Anonymized: op.Replacement,
			PiiType:    op.EntityType,
			Confidence: confidence,
		})
	}
	return res.Text, items, nil
}

// Anonymize is a single-unit convenience over NewDocument
func (m *Mapper) Anonymize(ctx context.Context, text string, custom []detector.Recognizer) (string, []MappingItem, error) {
	return m.NewDocument(custom).Anonymize(ctx, text)
}

// matchConfidence finds the detection with exactly the operation's range,
// preferring one of the same entity type
func matchConfidence(spans []detector.Span, op redactors.Operation) (float64, bool) {
	found := false
	confidence := 0.0
	for _, s := range spans {
		if s.Start != op.Start || s.End != op.End {
			continue
		}
		if s.EntityType == op.EntityType {
			return s.Confidence, true
		}
		if !found {
			found, confidence = true, s.Confidence
		}
	}
	return confidence, found
}

func (m *Mapper) debug() *observability.DebugObserver {
	if m.observer == nil {
		return nil
	}
	return m.observer.DebugObserver
}

// checkMappings rejects lists that cannot drive a replacement
func checkMappings(mappings []MappingItem) error {
	if len(mappings) == 0 {
		return resilience.New(resilience.ErrorTypeMissingMappings, "deanonymize requires at least one mapping item", nil)
	}
	for i, item := range mappings {
		if item.Anonymized == "" {
			return resilience.Newf(resilience.ErrorTypeInvalidInput, "mapping item %d has an empty anonymized value", i)
		}
	}
	return nil
}
