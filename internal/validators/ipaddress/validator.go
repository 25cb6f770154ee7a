// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipaddress

import (
	"net/netip"
	"regexp"
	"strings"

	"ciphershield/internal/detector"
	"ciphershield/internal/observability"
)

// EntityType is the label given to IP address spans
const EntityType = "IP_ADDRESS"

// ipPattern represents an IP address pattern with metadata
type ipPattern struct {
	name       string
	regex      *regexp.Regexp
	version    string
	confidence float64
}

// Validator implements the detector.Recognizer interface for IPv4 and IPv6 addresses
type Validator struct {
	patterns []ipPattern
	context  *detector.ContextExtractor

	positiveKeywords []string
	negativeKeywords []string

	observer *observability.StandardObserver
}

const octet = `(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`

// NewValidator creates a new IP address validator
func NewValidator() *Validator {
	return &Validator{
		patterns: []ipPattern{
			{
				name:       "IPv4",
				regex:      regexp.MustCompile(`\b(?:` + octet + `\.){3}` + octet + `(?:/(?:3[0-2]|[12]?[0-9]))?\b`),
				version:    "IPv4",
				confidence: 0.6,
			},
			{
				name:       "IPv6_Full",
				regex:      regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}(?:/(?:12[0-8]|1[01][0-9]|[1-9]?[0-9]))?\b`),
				version:    "IPv6",
				confidence: 0.8,
			},
			{
				name:       "IPv6_Compressed",
				regex:      regexp.MustCompile(`\b(?:[0-9a-fA-F]{1,4}:)+:(?:[0-9a-fA-F]{1,4}:)*[0-9a-fA-F]{1,4}(?:/(?:12[0-8]|1[01][0-9]|[1-9]?[0-9]))?\b`),
				version:    "IPv6",
				confidence: 0.7,
			},
		},
		context: detector.NewContextExtractor(),
		positiveKeywords: []string{
			"ip", "address", "host", "server", "client", "endpoint", "node",
			"network", "subnet", "gateway", "router", "dns", "nameserver",
			"connection", "tcp", "udp", "ssh", "ping", "firewall",
			"proxy", "vpn", "nat", "dhcp",
		},
		negativeKeywords: []string{
			"version", "build", "revision", "release",
		},
	}
}

func (v *Validator) SetObserver(observer *observability.StandardObserver) {
	v.observer = observer
}

func (v *Validator) GetComponentName() string { return "ipaddress_validator" }
func (v *Validator) Name() string             { return "ipaddress" }
func (v *Validator) EntityType() string       { return EntityType }

// Recognize returns spans for addresses that parse as IPv4 or IPv6, with or without a prefix length
func (v *Validator) Recognize(text string) ([]detector.Span, error) {
	var spans []detector.Span
	for _, p := range v.patterns {
		for _, loc := range p.regex.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if !parses(text[start:end]) {
				continue
			}
			// A fifth dotted group means a version string or OID, not an address.
			if p.version == "IPv4" && end < len(text)-1 && text[end] == '.' && isDigit(text[end+1]) {
				continue
			}
			spans = append(spans, detector.Span{
				Start:      start,
				End:        end,
				EntityType: EntityType,
				Confidence: v.context.Score(text, start, end, p.confidence, v.positiveKeywords, v.negativeKeywords),
				Recognizer: v.Name(),
			})
		}
	}
	return detector.KeepLongest(spans), nil
}

func parses(s string) bool {
	if strings.Contains(s, "/") {
		_, err := netip.ParsePrefix(s)
		return err == nil
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
