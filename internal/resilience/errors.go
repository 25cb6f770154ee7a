// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// ErrorType identifies the kind of failure a pipeline stage reported
type ErrorType int

const (
	ErrorTypeUnknown               ErrorType = iota
	ErrorTypeInvalidFraming                  // Sealed buffer too short to hold nonce and tag
	ErrorTypeAuthenticationFailure           // Tag did not verify: tampering, wrong key, corruption
	ErrorTypeInvalidKey                      // Key is not a 32-byte key
	ErrorTypeUnsupportedFormat               // Format tag is not registered
	ErrorTypeEncoding                        // Decrypted bytes are not valid UTF-8
	ErrorTypeExtraction                      // Container could not be parsed into text units
	ErrorTypeMissingMappings                 // Deanonymize without a mapping list
	ErrorTypeAmbiguousReversal               // Placeholder cannot be reversed unambiguously
	ErrorTypeDetectionFailure                // External analyzer or anonymizer failed
	ErrorTypeInvalidInput                    // Malformed request
	ErrorTypeTransient                       // Temporary I/O or network issue
	ErrorTypeTimeout                         // Deadline exceeded
)

// Sentinel errors for errors.Is checks against a ClassifiedError
var (
	ErrInvalidFraming        = errors.New("invalid framing")
	ErrAuthenticationFailure = errors.New("authentication failure")
	ErrInvalidKey            = errors.New("invalid key")
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrEncoding              = errors.New("encoding error")
	ErrExtraction            = errors.New("extraction error")
	ErrMissingMappings       = errors.New("missing mappings")
	ErrAmbiguousReversal     = errors.New("ambiguous reversal")
	ErrDetectionFailure      = errors.New("detection capability failure")
	ErrInvalidInput          = errors.New("invalid input")
)

// String returns the error kind name used in logs and API responses
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeUnknown:
		return "Unknown"
	case ErrorTypeInvalidFraming:
		return "InvalidFraming"
	case ErrorTypeAuthenticationFailure:
		return "AuthenticationFailure"
	case ErrorTypeInvalidKey:
		return "InvalidKey"
	case ErrorTypeUnsupportedFormat:
		return "UnsupportedFormat"
	case ErrorTypeEncoding:
		return "EncodingError"
	case ErrorTypeExtraction:
		return "ExtractionError"
	case ErrorTypeMissingMappings:
		return "MissingMappings"
	case ErrorTypeAmbiguousReversal:
		return "AmbiguousReversal"
	case ErrorTypeDetectionFailure:
		return "DetectionCapabilityFailure"
	case ErrorTypeInvalidInput:
		return "InvalidInput"
	case ErrorTypeTransient:
		return "Transient"
	case ErrorTypeTimeout:
		return "Timeout"
	default:
		return fmt.Sprintf("ErrorType(%d)", int(et))
	}
}

// sentinel maps a kind to its errors.Is target
func (et ErrorType) sentinel() error {
	switch et {
	case ErrorTypeInvalidFraming:
		return ErrInvalidFraming
	case ErrorTypeAuthenticationFailure:
		return ErrAuthenticationFailure
	case ErrorTypeInvalidKey:
		return ErrInvalidKey
	case ErrorTypeUnsupportedFormat:
		return ErrUnsupportedFormat
	case ErrorTypeEncoding:
		return ErrEncoding
	case ErrorTypeExtraction:
		return ErrExtraction
	case ErrorTypeMissingMappings:
		return ErrMissingMappings
	case ErrorTypeAmbiguousReversal:
		return ErrAmbiguousReversal
	case ErrorTypeDetectionFailure:
		return ErrDetectionFailure
	case ErrorTypeInvalidInput:
		return ErrInvalidInput
	}
	return nil
}

// retryableByDefault reports whether a fresh request may succeed where this one failed.
// Only failures of external capabilities and I/O qualify; input problems never do.
func (et ErrorType) retryableByDefault() bool {
	switch et {
	case ErrorTypeDetectionFailure, ErrorTypeTransient, ErrorTypeTimeout:
		return true
	default:
		return false
	}
}

// ClassifiedError wraps an error with type information
type ClassifiedError struct {
	Original  error
	Type      ErrorType
	Message   string
	Retryable bool
}

func (e *ClassifiedError) Error() string {
	switch {
	case e.Message != "" && e.Original != nil:
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Original)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	case e.Original != nil:
		return fmt.Sprintf("%s: %v", e.Type, e.Original)
	default:
		return e.Type.String()
	}
}

func (e *ClassifiedError) Unwrap() error {
	return e.Original
}

// Is lets errors.Is match the sentinel for this error's kind
func (e *ClassifiedError) Is(target error) bool {
	s := e.Type.sentinel()
	return s != nil && target == s
}

// IsRetryable returns whether this error should be retried
func (e *ClassifiedError) IsRetryable() bool {
	return e.Retryable
}

// New creates a classified error of the given kind with the kind's default retry policy
func New(errorType ErrorType, message string, cause error) *ClassifiedError {
	return &ClassifiedError{
		Original:  cause,
		Type:      errorType,
		Message:   message,
		Retryable: errorType.retryableByDefault(),
	}
}

// Newf is New with a formatted message and no cause
func Newf(errorType ErrorType, format string, args ...any) *ClassifiedError {
	return New(errorType, fmt.Sprintf(format, args...), nil)
}

// NewPermanentError creates a classified error that must not be retried regardless of kind
func NewPermanentError(errorType ErrorType, message string, cause error) *ClassifiedError {
	e := New(errorType, message, cause)
	e.Retryable = false
	return e
}

// NewTransientError creates a new transient error
func NewTransientError(message string, cause error) *ClassifiedError {
	return New(ErrorTypeTransient, message, cause)
}

// KindOf returns the kind of a classified error anywhere in err's chain
func KindOf(err error) ErrorType {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Type
	}
	return ErrorTypeUnknown
}

// ClassifyError categorizes an error for appropriate handling
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if isNetworkError(err) {
		return New(ErrorTypeTransient, "network error", err)
	}

	if isTimeoutError(err) {
		return New(ErrorTypeTimeout, "timeout", err)
	}

	return &ClassifiedError{
		Original:  err,
		Type:      ErrorTypeUnknown,
		Retryable: false,
	}
}

// isNetworkError checks if an error is network-related
func isNetworkError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH)
}

// isTimeoutError checks if an error is timeout-related
func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}
