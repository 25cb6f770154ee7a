// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"sort"
	"strings"

	"ciphershield/internal/detector"
)

// resolveConflicts picks a non-overlapping subset of spans. Longer spans win,
// then earlier ones, then higher confidence, then the one detected first.
// The result is ordered by position.
func resolveConflicts(spans []detector.Span) []detector.Span {
	ranked := make([]int, len(spans))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := spans[ranked[i]], spans[ranked[j]]
		if a.Len() != b.Len() {
			return a.Len() > b.Len()
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return ranked[i] < ranked[j]
	})

	var accepted []detector.Span
	for _, idx := range ranked {
		candidate := spans[idx]
		clash := false
		for _, a := range accepted {
			if a.Overlaps(candidate) {
				clash = true
				break
			}
		}
		if !clash {
			accepted = append(accepted, candidate)
		}
	}

	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

// mergeWhitespaceNeighbours joins consecutive spans of the same entity type when
// only whitespace separates them. spans must be ordered and non-overlapping.
func mergeWhitespaceNeighbours(text string, spans []detector.Span) []detector.Span {
	if len(spans) < 2 {
		return spans
	}

	merged := []detector.Span{spans[0]}
	for _, s := range spans[1:] {
		prev := &merged[len(merged)-1]
		if prev.EntityType == s.EntityType && strings.TrimSpace(text[prev.End:s.Start]) == "" {
			prev.End = s.End
			prev.Confidence = max(prev.Confidence, s.Confidence)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
