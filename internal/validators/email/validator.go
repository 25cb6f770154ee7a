// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package email

import (
	"regexp"
	"strings"

	"ciphershield/internal/detector"
	"ciphershield/internal/observability"
)

// EntityType is the label given to email spans
const EntityType = "EMAIL_ADDRESS"

const baseConfidence = 0.85

// Validator finds email addresses in free text
type Validator struct {
	regex   *regexp.Regexp
	context *detector.ContextExtractor

	// Keywords that suggest an email context
	positiveKeywords []string

	// Keywords that suggest this is not a real email
	negativeKeywords []string

	observer *observability.StandardObserver
}

// NewValidator creates a new email validator
func NewValidator() *Validator {
	return &Validator{
		regex:   regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		context: detector.NewContextExtractor(),
		positiveKeywords: []string{
			"email", "e-mail", "contact", "mailto", "address", "recipient", "sender",
			"from", "to", "cc", "bcc", "reply", "subscribe", "unsubscribe",
			"notification", "newsletter", "support", "customer", "noreply",
		},
		negativeKeywords: []string{
			"fake", "mock", "dummy", "placeholder", "lorem", "ipsum",
			"invalid", "nonexistent", "blackhole", "devnull",
		},
	}
}

// SetObserver sets the observability component
func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

// GetComponentName returns the component identifier
func (v *Validator) GetComponentName() string { return "email_validator" }

func (v *Validator) Name() string       { return "email" }
func (v *Validator) EntityType() string { return EntityType }

// Recognize returns one span per well-formed address
func (v *Validator) Recognize(text string) ([]detector.Span, error) {
	finish := v.observer.StartTiming("email_validator", "recognize", "")

	var spans []detector.Span
	for _, loc := range v.regex.FindAllStringIndex(text, -1) {
		if !wellFormed(text[loc[0]:loc[1]]) {
			continue
		}
		spans = append(spans, detector.Span{
			Start:      loc[0],
			End:        loc[1],
			EntityType: EntityType,
			Confidence: v.context.Score(text, loc[0], loc[1], baseConfidence, v.positiveKeywords, v.negativeKeywords),
			Recognizer: v.Name(),
		})
	}

	finish(true, map[string]interface{}{"match_count": len(spans)})
	return spans, nil
}

// wellFormed rejects matches the regex accepts but RFC 5321 does not
func wellFormed(addr string) bool {
	at := strings.LastIndexByte(addr, '@')
	local, domain := addr[:at], addr[at+1:]

	if len(addr) > 254 || len(local) > 64 {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(addr, "..") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
	}
	return true
}
