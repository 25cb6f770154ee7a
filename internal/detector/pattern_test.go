// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphershield/internal/resilience"
)

func TestNewPatternRecognizer_Validation(t *testing.T) {
	tests := []struct {
		name       string
		entity     string
		pattern    string
		confidence float64
	}{
		{"no entity", "", `x`, 0.5},
		{"bad regex", "X", `(`, 0.5},
		{"empty match", "X", `a*`, 0.5},
		{"confidence high", "X", `x`, 1.5},
		{"confidence negative", "X", `x`, -0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPatternRecognizer(tt.entity, tt.pattern, tt.confidence)
			assert.Error(t, err)
		})
	}
}

func TestPatternRecognizer_CaptureGroup(t *testing.T) {
	r, err := NewPatternRecognizer("ACCOUNT", `acct:\s*(\d+)`, 0.6)
	require.NoError(t, err)

	text := "acct: 991 and acct:12"
	spans, err := r.Recognize(text)
	require.NoError(t, err)
	require.Len(t, spans, 2)
	assert.Equal(t, "991", spans[0].Text(text))
	assert.Equal(t, "12", spans[1].Text(text))
	assert.Equal(t, "pattern:ACCOUNT", spans[0].Recognizer)
}

func TestCompile_DefaultConfidence(t *testing.T) {
	half := 0.5
	recognizers, err := Compile([]Definition{
		{EntityType: "A", Pattern: `a+`},
		{EntityType: "B", Pattern: `b+`, Confidence: &half},
	})
	require.NoError(t, err)
	require.Len(t, recognizers, 2)

	spans, err := recognizers[0].Recognize("aaa")
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, DefaultCustomConfidence, spans[0].Confidence)

	spans, err = recognizers[1].Recognize("bb")
	require.NoError(t, err)
	assert.Equal(t, 0.5, spans[0].Confidence)

	_, err = Compile([]Definition{{EntityType: "C", Pattern: `[`}})
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrDetectionFailure)
	assert.False(t, resilience.ClassifyError(err).Retryable)
}

func TestValidateSpan(t *testing.T) {
	text := "naïve"
	assert.NoError(t, ValidateSpan(text, Span{Start: 0, End: 2, EntityType: "X", Confidence: 0.5}))
	assert.Error(t, ValidateSpan(text, Span{Start: 0, End: 3, EntityType: "X", Confidence: 0.5}), "splits ï")
	assert.Error(t, ValidateSpan(text, Span{Start: 2, End: 2, EntityType: "X", Confidence: 0.5}))
	assert.Error(t, ValidateSpan(text, Span{Start: 0, End: 2, Confidence: 0.5}))
	assert.Error(t, ValidateSpan(text, Span{Start: 0, End: 2, EntityType: "X", Confidence: 2}))
}

func TestContextExtractor_Score(t *testing.T) {
	ce := NewContextExtractor()
	text := "Contact: john@corp.io"
	start := len("Contact: ")

	score := ce.Score(text, start, len(text), 0.7, []string{"contact"}, []string{"test"})
	assert.InDelta(t, 0.85, score, 1e-9)

	score = ce.Score("test value 123", 11, 14, 0.7, []string{"contact"}, []string{"test"})
	assert.InDelta(t, 0.5, score, 1e-9)

	// Keywords only match whole words.
	score = ce.Score("contacts 123", 9, 12, 0.7, []string{"contact"}, nil)
	assert.InDelta(t, 0.7, score, 1e-9)

	assert.Equal(t, 1.0, Clamp(1.3))
	assert.Equal(t, 0.0, Clamp(-0.3))
}

func TestKeepLongest(t *testing.T) {
	spans := []Span{
		{Start: 4, End: 8, EntityType: "P"},
		{Start: 0, End: 12, EntityType: "P"},
		{Start: 20, End: 25, EntityType: "P"},
		{Start: 22, End: 28, EntityType: "P"},
	}

	kept := KeepLongest(spans)
	require.Len(t, kept, 3)
	assert.Equal(t, Span{Start: 0, End: 12, EntityType: "P"}, kept[0])
	assert.Equal(t, 20, kept[1].Start)
	assert.Equal(t, 22, kept[2].Start, "partial overlaps are left for the anonymizer")
}
