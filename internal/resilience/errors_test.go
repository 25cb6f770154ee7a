// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError_IsMatchesSentinel(t *testing.T) {
	tests := []struct {
		name     string
		kind     ErrorType
		sentinel error
	}{
		{"framing", ErrorTypeInvalidFraming, ErrInvalidFraming},
		{"auth", ErrorTypeAuthenticationFailure, ErrAuthenticationFailure},
		{"format", ErrorTypeUnsupportedFormat, ErrUnsupportedFormat},
		{"encoding", ErrorTypeEncoding, ErrEncoding},
		{"extraction", ErrorTypeExtraction, ErrExtraction},
		{"mappings", ErrorTypeMissingMappings, ErrMissingMappings},
		{"ambiguous", ErrorTypeAmbiguousReversal, ErrAmbiguousReversal},
		{"detection", ErrorTypeDetectionFailure, ErrDetectionFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("stage failed: %w", New(tt.kind, "boom", nil))
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.NotErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestClassifiedError_UnwrapsCause(t *testing.T) {
	cause := errors.New("regex parse error")
	err := New(ErrorTypeDetectionFailure, "custom detector", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "DetectionCapabilityFailure")
	assert.Contains(t, err.Error(), "regex parse error")
}

func TestNew_RetryPolicyByKind(t *testing.T) {
	assert.True(t, New(ErrorTypeDetectionFailure, "", nil).Retryable)
	assert.False(t, New(ErrorTypeAuthenticationFailure, "", nil).Retryable)
	assert.False(t, New(ErrorTypeUnsupportedFormat, "", nil).Retryable)
	assert.False(t, New(ErrorTypeMissingMappings, "", nil).Retryable)
	assert.False(t, NewPermanentError(ErrorTypeDetectionFailure, "", nil).Retryable)
}

func TestClassifyError(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))

	wrapped := fmt.Errorf("outer: %w", New(ErrorTypeEncoding, "bad utf-8", nil))
	classified := ClassifyError(wrapped)
	require.NotNil(t, classified)
	assert.Equal(t, ErrorTypeEncoding, classified.Type)

	timeout := ClassifyError(context.DeadlineExceeded)
	assert.Equal(t, ErrorTypeTimeout, timeout.Type)
	assert.True(t, timeout.Retryable)

	unknown := ClassifyError(errors.New("something odd"))
	assert.Equal(t, ErrorTypeUnknown, unknown.Type)
	assert.False(t, unknown.Retryable)
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "MissingMappings", ErrorTypeMissingMappings.String())
}
