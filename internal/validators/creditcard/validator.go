// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package creditcard

import (
	"regexp"
	"strconv"
	"strings"

	"ciphershield/internal/detector"
	"ciphershield/internal/observability"
)

// EntityType is the label given to payment card number spans
const EntityType = "CREDIT_CARD"

const (
	knownBINConfidence   = 0.9
	unknownBINConfidence = 0.6
)

// BINRange represents a range of Bank Identification Numbers
type BINRange struct {
	Start  int
	End    int
	Vendor string
}

// Validator implements the detector.Recognizer interface for credit card numbers
type Validator struct {
	regex        *regexp.Regexp
	testPatterns []*regexp.Regexp
	binRanges    []BINRange
	context      *detector.ContextExtractor

	positiveKeywords []string
	negativeKeywords []string

	observer *observability.StandardObserver
}

// NewValidator creates and returns a new Validator instance
func NewValidator() *Validator {
	return &Validator{
		// The card number is capture group 1; the surrounding delimiters are not part of the span.
		regex: regexp.MustCompile(`(?:^|[\s,;|"'(){}[\]<>:=])(\d{4}[\s\-]\d{4}[\s\-]\d{4}[\s\-]\d{4}|\d{4}[\s\-]\d{6}[\s\-]\d{5}|\d{4}[\s\-]\d{4}[\s\-]\d{4}[\s\-]\d{2,3}|\d{16}|\d{15}|\d{14})(?:[\s,;|"'(){}[\]<>.]|$)`),
		testPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^1234567890123456$`),
			regexp.MustCompile(`^1111222233334444$`),
			regexp.MustCompile(`^1212121212121212$`),
		},
		binRanges: initBINRanges(),
		context:   detector.NewContextExtractor(),
		positiveKeywords: []string{
			"credit", "card", "visa", "mastercard", "amex", "american express",
			"discover", "jcb", "diners", "cardholder", "payment", "transaction",
			"purchase", "expiration", "expiry", "exp", "cvv", "cvc",
			"billing", "checkout", "pci", "merchant",
		},
		negativeKeywords: []string{
			"tracking", "reference", "order", "invoice", "timestamp", "unix",
			"epoch", "md5", "sha", "hash", "uuid", "guid", "crc", "checksum",
		},
	}
}

func initBINRanges() []BINRange {
	return []BINRange{
		{400000, 499999, "Visa"},
		{510000, 559999, "MasterCard"},
		{222100, 272099, "MasterCard"},
		{340000, 349999, "American Express"},
		{370000, 379999, "American Express"},
		{601100, 601199, "Discover"},
		{644000, 649999, "Discover"},
		{650000, 659999, "Discover"},
		{352800, 358999, "JCB"},
		{300000, 305999, "Diners Club"},
		{360000, 369999, "Diners Club"},
		{380000, 399999, "Diners Club"},
		{620000, 629999, "UnionPay"},
		{500000, 509999, "Maestro"},
		{560000, 589999, "Maestro"},
	}
}

func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

func (v *Validator) GetComponentName() string { return "creditcard_validator" }
func (v *Validator) Name() string             { return "creditcard" }
func (v *Validator) EntityType() string       { return EntityType }

// Recognize returns spans for Luhn-valid card numbers
func (v *Validator) Recognize(text string) ([]detector.Span, error) {
	finish := v.observer.StartTiming("creditcard_validator", "recognize", "")

	var spans []detector.Span
	rejected := 0
	for offset := 0; offset < len(text); {
		loc := v.regex.FindStringSubmatchIndex(text[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[2], offset+loc[3]
		// Resume at the end of the number so a delimiter can open the next match.
		offset = end

		digits := stripSeparators(text[start:end])
		if !v.plausible(digits) {
			rejected++
			continue
		}

		base := unknownBINConfidence
		if v.Vendor(digits) != "" {
			base = knownBINConfidence
		}

		spans = append(spans, detector.Span{
			Start:      start,
			End:        end,
			EntityType: EntityType,
			Confidence: v.context.Score(text, start, end, base, v.positiveKeywords, v.negativeKeywords),
			Recognizer: v.Name(),
		})
	}

	finish(true, map[string]interface{}{"match_count": len(spans), "rejected": rejected})
	return spans, nil
}

func (v *Validator) plausible(digits string) bool {
	if len(digits) < 13 || len(digits) > 19 {
		return false
	}
	if strings.Count(digits, digits[:1]) == len(digits) {
		return false
	}
	for _, p := range v.testPatterns {
		if p.MatchString(digits) {
			return false
		}
	}
	return LuhnCheck(digits)
}

// Vendor returns the card network for the number's BIN, or "" if unknown
func (v *Validator) Vendor(digits string) string {
	if len(digits) < 6 {
		return ""
	}
	bin, err := strconv.Atoi(digits[:6])
	if err != nil {
		return ""
	}
	for _, r := range v.binRanges {
		if bin >= r.Start && bin <= r.End {
			return r.Vendor
		}
	}
	return ""
}

// LuhnCheck validates a digit string with the Luhn algorithm
func LuhnCheck(number string) bool {
	sum := 0
	isDouble := false

	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if digit < 0 || digit > 9 {
			return false
		}

		if isDouble {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		isDouble = !isDouble
	}

	return sum%10 == 0
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
