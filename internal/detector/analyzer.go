// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ciphershield/internal/observability"
	"ciphershield/internal/resilience"
)

// SupportedLanguage is the only language the recognizers are tuned for
const SupportedLanguage = "en"

// Analyzer runs a set of recognizers over text. Its recognizer set is
// guarded so Analyze may run concurrently with AddRecognizer.
type Analyzer struct {
	mu            sync.RWMutex
	recognizers   []Recognizer
	entities      map[string]bool // nil means all entity types
	minConfidence float64
	observer      *observability.StandardObserver
}

// NewAnalyzer creates an analyzer over the given recognizers
func NewAnalyzer(recognizers ...Recognizer) *Analyzer {
	return &Analyzer{recognizers: append([]Recognizer(nil), recognizers...)}
}

// SetObserver sets the observability component
func (a *Analyzer) SetObserver(observer *observability.StandardObserver) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observer = observer
}

// SetMinConfidence drops spans scoring below threshold
func (a *Analyzer) SetMinConfidence(threshold float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.minConfidence = threshold
}

// RestrictEntities limits built-in recognizers to the listed entity types. An empty list enables all.
func (a *Analyzer) RestrictEntities(entityTypes []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(entityTypes) == 0 {
		a.entities = nil
		return
	}
	a.entities = make(map[string]bool, len(entityTypes))
	for _, e := range entityTypes {
		a.entities[strings.ToUpper(strings.TrimSpace(e))] = true
	}
}

// AddRecognizer registers a recognizer for all later Analyze calls
func (a *Analyzer) AddRecognizer(r Recognizer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recognizers = append(a.recognizers, r)
}

// Recognizers returns the names of the registered recognizers
func (a *Analyzer) Recognizers() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.recognizers))
	for _, r := range a.recognizers {
		names = append(names, r.Name())
	}
	return names
}

// Analyze returns the spans found in text ordered by start, then end.
// extra recognizers apply to this call only and bypass the entity restriction.
func (a *Analyzer) Analyze(ctx context.Context, text, language string, extra []Recognizer) ([]Span, error) {
	if language != "" && !strings.EqualFold(language, SupportedLanguage) {
		return nil, resilience.NewPermanentError(resilience.ErrorTypeDetectionFailure,
			fmt.Sprintf("language %q is not supported", language), nil)
	}

	a.mu.RLock()
	builtin := make([]Recognizer, 0, len(a.recognizers))
	for _, r := range a.recognizers {
		if a.entities == nil || a.entities[r.EntityType()] {
			builtin = append(builtin, r)
		}
	}
	minConfidence := a.minConfidence
	observer := a.observer
	a.mu.RUnlock()

	finishTiming := observer.StartTiming("analyzer", "analyze", "")

	spans, err := runRecognizers(ctx, text, append(builtin, extra...))
	if err != nil {
		finishTiming(false, map[string]interface{}{"error": err.Error()})
		return nil, err
	}

	spans = filterAndDedupe(spans, minConfidence)

	finishTiming(true, map[string]interface{}{
		"span_count":     len(spans),
		"content_length": len(text),
	})
	return spans, nil
}

func runRecognizers(ctx context.Context, text string, recognizers []Recognizer) (spans []Span, err error) {
	for _, r := range recognizers {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, resilience.New(resilience.ErrorTypeDetectionFailure, "analysis cancelled", ctxErr)
		}

		found, rErr := recognizeSafely(r, text)
		if rErr != nil {
			return nil, resilience.New(resilience.ErrorTypeDetectionFailure,
				fmt.Sprintf("recognizer %s", r.Name()), rErr)
		}
		for _, s := range found {
			if vErr := ValidateSpan(text, s); vErr != nil {
				return nil, resilience.NewPermanentError(resilience.ErrorTypeDetectionFailure,
					fmt.Sprintf("recognizer %s", r.Name()), vErr)
			}
			if s.Recognizer == "" {
				s.Recognizer = r.Name()
			}
			spans = append(spans, s)
		}
	}
	return spans, nil
}

// recognizeSafely turns a recognizer panic into an error
func recognizeSafely(r Recognizer, text string) (spans []Span, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.Recognize(text)
}

// filterAndDedupe drops low-confidence spans, keeps the best score per
// identical (start, end, entity) and orders the result by position.
func filterAndDedupe(spans []Span, minConfidence float64) []Span {
	type key struct {
		start, end int
		entity     string
	}
	best := make(map[key]int, len(spans))
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if s.Confidence < minConfidence {
			continue
		}
		k := key{s.Start, s.End, s.EntityType}
		if i, ok := best[k]; ok {
			if s.Confidence > out[i].Confidence {
				out[i] = s
			}
			continue
		}
		best[k] = len(out)
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	return out
}
