// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"fmt"
	"strings"

	"ciphershield/internal/detector"
	"ciphershield/internal/observability"
	"ciphershield/internal/resilience"
)

// PlaceholderStyle selects how a redacted span is rendered
type PlaceholderStyle int

const (
	// PlaceholderEntity replaces every span with <ENTITY_TYPE>
	PlaceholderEntity PlaceholderStyle = iota
	// PlaceholderIndexed numbers distinct originals per type: <ENTITY_TYPE_1>, <ENTITY_TYPE_2>, ...
	PlaceholderIndexed
)

// String returns the string representation of the placeholder style
func (ps PlaceholderStyle) String() string {
	switch ps {
	case PlaceholderEntity:
		return "entity"
	case PlaceholderIndexed:
		return "indexed"
	default:
		return "unknown"
	}
}

// ParsePlaceholderStyle converts a string to PlaceholderStyle
func ParsePlaceholderStyle(s string) (PlaceholderStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "entity":
		return PlaceholderEntity, nil
	case "indexed":
		return PlaceholderIndexed, nil
	default:
		return PlaceholderEntity, fmt.Errorf("unknown placeholder style %q (want entity or indexed)", s)
	}
}

// Operation is one replacement applied to the input text.
// Start and End are byte offsets into the text before redaction.
type Operation struct {
	Start       int
	End         int
	Replacement string
	EntityType  string
}

// Result is the redacted text plus the replacements that produced it, in text order
type Result struct {
	Text       string
	Operations []Operation
}

// Engine renders detected spans as placeholders
type Engine struct {
	style    PlaceholderStyle
	observer *observability.StandardObserver
}

// NewEngine creates an engine using the given placeholder style
func NewEngine(style PlaceholderStyle) *Engine {
	return &Engine{style: style}
}

// SetObserver sets the observability component
func (e *Engine) SetObserver(observer *observability.StandardObserver) {
	e.observer = observer
}

// GetComponentName returns the component name for observability
func (e *Engine) GetComponentName() string {
	return "redaction_engine"
}

// Session anonymizes the text units of one document. Indexed placeholders are
// numbered across the whole session, so one original keeps one placeholder in every unit.
// A Session is not safe for concurrent use.
type Session struct {
	engine *Engine
	op     operator
}

// NewSession starts placeholder numbering afresh
func (e *Engine) NewSession() *Session {
	return &Session{engine: e, op: newOperator(e.style)}
}

// Anonymize is NewSession().Anonymize for a single text
func (e *Engine) Anonymize(text string, spans []detector.Span) (*Result, error) {
	return e.NewSession().Anonymize(text, spans)
}

// Anonymize resolves overlapping spans, merges same-type neighbours separated only
// by whitespace, and replaces what remains. The operations it returns may therefore
// cover a range no single input span covered.
func (s *Session) Anonymize(text string, spans []detector.Span) (*Result, error) {
	e := s.engine
	finish := e.observer.StartTiming(e.GetComponentName(), "anonymize", "")

	for _, span := range spans {
		if err := detector.ValidateSpan(text, span); err != nil {
			finish(false, map[string]interface{}{"error": err.Error()})
			return nil, resilience.NewPermanentError(resilience.ErrorTypeDetectionFailure, "anonymizer rejected span", err)
		}
	}

	kept := mergeWhitespaceNeighbours(text, resolveConflicts(spans))

	var b strings.Builder
	b.Grow(len(text))
	ops := make([]Operation, 0, len(kept))
	last := 0
	for _, span := range kept {
		replacement := s.op.replace(span.Text(text), span.EntityType)
		b.WriteString(text[last:span.Start])
		b.WriteString(replacement)
		last = span.End

		ops = append(ops, Operation{
			Start:       span.Start,
			End:         span.End,
			Replacement: replacement,
			EntityType:  span.EntityType,
		})
	}
	b.WriteString(text[last:])

	finish(true, map[string]interface{}{
		"input_spans": len(spans),
		"operations":  len(ops),
	})
	return &Result{Text: b.String(), Operations: ops}, nil
}
