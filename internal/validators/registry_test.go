// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphershield/internal/detector"
	"ciphershield/internal/resilience"
)

func TestEntityTypes(t *testing.T) {
	assert.Equal(t, []string{"CREDIT_CARD", "EMAIL_ADDRESS", "IP_ADDRESS", "PHONE_NUMBER", "US_SSN"}, EntityTypes())
}

func TestBuiltins_HelpMatchesEntity(t *testing.T) {
	for _, b := range Builtins() {
		t.Run(b.Name(), func(t *testing.T) {
			info := b.GetCheckInfo()
			assert.Equal(t, b.EntityType(), info.Name)
			assert.NotEmpty(t, info.ShortDescription)
		})
	}
}

func TestNewAnalyzer_ContactScenario(t *testing.T) {
	a, err := NewAnalyzer(Options{})
	require.NoError(t, err)

	text := "Contact: john@example.com"
	spans, err := a.Analyze(context.Background(), text, "en", nil)
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "EMAIL_ADDRESS", spans[0].EntityType)
	assert.Equal(t, "john@example.com", spans[0].Text(text))
}

func TestNewAnalyzer_EntityRestrictionKeepsCustom(t *testing.T) {
	a, err := NewAnalyzer(Options{
		Entities: []string{"US_SSN"},
		Custom: []detector.Definition{
			{EntityType: "EMPLOYEE_ID", Pattern: `EMP-\d{5}`},
		},
	})
	require.NoError(t, err)

	text := "john@example.com EMP-12345 SSN 536-22-1234"
	spans, err := a.Analyze(context.Background(), text, "en", nil)
	require.NoError(t, err)

	var types []string
	for _, s := range spans {
		types = append(types, s.EntityType)
	}
	assert.Equal(t, []string{"EMPLOYEE_ID", "US_SSN"}, types)
}

func TestNewAnalyzer_MinConfidence(t *testing.T) {
	zero := 0.0
	a, err := NewAnalyzer(Options{MinConfidence: &zero})
	require.NoError(t, err)

	spans, err := a.Analyze(context.Background(), "ref 4155550132", "en", nil)
	require.NoError(t, err)
	require.Len(t, spans, 1, "low-confidence bare digits survive a zero threshold")

	a, err = NewAnalyzer(Options{})
	require.NoError(t, err)
	spans, err = a.Analyze(context.Background(), "ref 4155550132", "en", nil)
	require.NoError(t, err)
	assert.Empty(t, spans)
}

func TestNewAnalyzer_BadCustomPattern(t *testing.T) {
	_, err := NewAnalyzer(Options{Custom: []detector.Definition{{EntityType: "X", Pattern: "("}}})
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrDetectionFailure)
}

func TestShared_InitializesOnce(t *testing.T) {
	var wg sync.WaitGroup
	results := make([]*detector.Analyzer, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := Shared()
			assert.NoError(t, err)
			results[i] = a
		}(i)
	}
	wg.Wait()

	for _, a := range results {
		assert.Same(t, results[0], a)
	}
	assert.ErrorIs(t, Init(Options{}), ErrAlreadyInitialized)
}
