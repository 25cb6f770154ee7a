// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package redactors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphershield/internal/detector"
	"ciphershield/internal/resilience"
)

func span(start, end int, entity string, conf float64) detector.Span {
	return detector.Span{Start: start, End: end, EntityType: entity, Confidence: conf}
}

func TestParsePlaceholderStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    PlaceholderStyle
		wantErr bool
	}{
		{"", PlaceholderEntity, false},
		{"entity", PlaceholderEntity, false},
		{" Indexed ", PlaceholderIndexed, false},
		{"hash", PlaceholderEntity, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePlaceholderStyle(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestEngine_AnonymizeEntityStyle(t *testing.T) {
	text := "Contact: john@example.com"
	res, err := NewEngine(PlaceholderEntity).Anonymize(text, []detector.Span{span(9, 25, "EMAIL_ADDRESS", 1)})
	require.NoError(t, err)

	assert.Equal(t, "Contact: <EMAIL_ADDRESS>", res.Text)
	require.Len(t, res.Operations, 1)
	assert.Equal(t, Operation{Start: 9, End: 25, Replacement: "<EMAIL_ADDRESS>", EntityType: "EMAIL_ADDRESS"}, res.Operations[0])
}

func TestEngine_NoSpans(t *testing.T) {
	res, err := NewEngine(PlaceholderEntity).Anonymize("nothing here", nil)
	require.NoError(t, err)
	assert.Equal(t, "nothing here", res.Text)
	assert.Empty(t, res.Operations)
}

func TestEngine_OperationsInTextOrder(t *testing.T) {
	text := "a@b.io then 536-22-1234"
	spans := []detector.Span{
		span(12, 23, "US_SSN", 0.9),
		span(0, 6, "EMAIL_ADDRESS", 0.9),
	}
	res, err := NewEngine(PlaceholderEntity).Anonymize(text, spans)
	require.NoError(t, err)

	assert.Equal(t, "<EMAIL_ADDRESS> then <US_SSN>", res.Text)
	require.Len(t, res.Operations, 2)
	assert.Equal(t, 0, res.Operations[0].Start)
	assert.Equal(t, 12, res.Operations[1].Start)
}

func TestResolveConflicts(t *testing.T) {
	tests := []struct {
		name  string
		spans []detector.Span
		want  []detector.Span
	}{
		{
			name:  "longer wins over contained",
			spans: []detector.Span{span(2, 5, "A", 0.9), span(0, 10, "B", 0.5)},
			want:  []detector.Span{span(0, 10, "B", 0.5)},
		},
		{
			name:  "same range higher confidence wins",
			spans: []detector.Span{span(0, 4, "A", 0.6), span(0, 4, "B", 0.9)},
			want:  []detector.Span{span(0, 4, "B", 0.9)},
		},
		{
			name:  "same range same confidence first detected wins",
			spans: []detector.Span{span(0, 4, "A", 0.7), span(0, 4, "B", 0.7)},
			want:  []detector.Span{span(0, 4, "A", 0.7)},
		},
		{
			name:  "equal length partial overlap earlier wins",
			spans: []detector.Span{span(3, 8, "B", 0.9), span(0, 5, "A", 0.5)},
			want:  []detector.Span{span(0, 5, "A", 0.5)},
		},
		{
			name:  "disjoint kept and ordered",
			spans: []detector.Span{span(6, 8, "B", 0.5), span(0, 2, "A", 0.5)},
			want:  []detector.Span{span(0, 2, "A", 0.5), span(6, 8, "B", 0.5)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveConflicts(tt.spans))
		})
	}
}

func TestEngine_MergesWhitespaceNeighbours(t *testing.T) {
	text := "call 555-0100 555-0199 or 555-0123"
	spans := []detector.Span{
		span(5, 13, "PHONE_NUMBER", 0.6),
		span(14, 22, "PHONE_NUMBER", 0.7),
		span(26, 34, "PHONE_NUMBER", 0.6),
	}
	res, err := NewEngine(PlaceholderEntity).Anonymize(text, spans)
	require.NoError(t, err)

	assert.Equal(t, "call <PHONE_NUMBER> or <PHONE_NUMBER>", res.Text)
	require.Len(t, res.Operations, 2)
	assert.Equal(t, 5, res.Operations[0].Start)
	assert.Equal(t, 22, res.Operations[0].End, "merged range matches neither detection")
}

func TestSession_IndexedNumbering(t *testing.T) {
	session := NewEngine(PlaceholderIndexed).NewSession()

	first, err := session.Anonymize("a@x.io, b@x.io", []detector.Span{
		span(0, 6, "EMAIL_ADDRESS", 0.9),
		span(8, 14, "EMAIL_ADDRESS", 0.9),
	})
	require.NoError(t, err)
	assert.Equal(t, "<EMAIL_ADDRESS_1>, <EMAIL_ADDRESS_2>", first.Text)

	second, err := session.Anonymize("b@x.io again", []detector.Span{span(0, 6, "EMAIL_ADDRESS", 0.9)})
	require.NoError(t, err)
	assert.Equal(t, "<EMAIL_ADDRESS_2> again", second.Text, "numbering carries across units")

	fresh, err := NewEngine(PlaceholderIndexed).Anonymize("b@x.io", []detector.Span{span(0, 6, "EMAIL_ADDRESS", 0.9)})
	require.NoError(t, err)
	assert.Equal(t, "<EMAIL_ADDRESS_1>", fresh.Text)
}

func TestEngine_RejectsInvalidSpan(t *testing.T) {
	_, err := NewEngine(PlaceholderEntity).Anonymize("short", []detector.Span{span(2, 40, "X", 0.5)})
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrDetectionFailure)
}
