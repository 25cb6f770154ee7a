// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ciphershield/internal/aead"
	"ciphershield/internal/detector"
	"ciphershield/internal/formats"
	"ciphershield/internal/mapper"
	"ciphershield/internal/observability"
	"ciphershield/internal/resilience"
	"ciphershield/internal/security"
)

// Action selects the transform applied to each text unit
type Action string

const (
	ActionAnonymize   Action = "anonymize"
	ActionDeanonymize Action = "deanonymize"
)

// ParseAction validates an action name
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionAnonymize, ActionDeanonymize:
		return a, nil
	default:
		return "", resilience.Newf(resilience.ErrorTypeInvalidInput, "unknown action %q (want anonymize or deanonymize)", s)
	}
}

// Request is one encrypted document to transform
type Request struct {
	Action Action

	// Key is the raw 32-byte key. Passphrase may be given instead, in which case
	// the source must have been sealed with a passphrase codec.
	Key        []byte
	Passphrase string

	// Format is the tag of the plaintext inside Source
	Format string
	Source []byte

	// Mappings drive deanonymize and must be non-empty for it
	Mappings []mapper.MappingItem

	// CustomDetectors apply to this request only
	CustomDetectors []detector.Definition

	// RequestID correlates log lines; one is generated when empty
	RequestID string
}

// Result is the sealed output of a successful request
type Result struct {
	Output   []byte
	Format   formats.Format
	MimeType string

	// Items lists every replacement in unit order, then text order. Empty for deanonymize.
	Items []mapper.MappingItem

	// ConfidenceFallbacks counts items whose range matched no detection
	ConfidenceFallbacks int
}

// Pipeline decrypts, transforms and re-encrypts documents
type Pipeline struct {
	registry *formats.Registry
	mapper   *mapper.Mapper
	strict   bool
	metrics  *observability.Metrics
	observer *observability.StandardObserver
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithRegistry replaces the default format registry
func WithRegistry(registry *formats.Registry) Option {
	return func(p *Pipeline) { p.registry = registry }
}

// WithStrictReversal makes deanonymize fail with AmbiguousReversal instead of
// applying a mapping list that cannot restore the document faithfully
func WithStrictReversal(strict bool) Option {
	return func(p *Pipeline) { p.strict = strict }
}

// WithMetrics records request metrics
func WithMetrics(metrics *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = metrics }
}

// WithObserver sets the observability component
func WithObserver(observer *observability.StandardObserver) Option {
	return func(p *Pipeline) { p.observer = observer }
}

// New creates a pipeline around a mapper
func New(m *mapper.Mapper, opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: formats.DefaultRegistry,
		mapper:   m,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs one request. It either returns the complete sealed output or an error;
// there is no partial result.
func (p *Pipeline) Process(ctx context.Context, req Request) (result *Result, err error) {
	start := time.Now()
	if req.RequestID == "" {
		req.RequestID = observability.NewRequestID()
	}
	finish := p.observer.StartTiming("pipeline", string(req.Action), "")
	defer func() {
		meta := map[string]interface{}{"request_id": req.RequestID, "format": req.Format}
		outcome := "ok"
		if err != nil {
			outcome = resilience.KindOf(err).String()
			meta["error_kind"] = outcome
		} else {
			meta["items"] = len(result.Items)
		}
		finish(err == nil, meta)
		p.metrics.ObserveRequest(string(req.Action), normalizedTag(req.Format), outcome, time.Since(start))
	}()

	// Everything that can be checked without the plaintext is checked first.
	action, err := ParseAction(string(req.Action))
	if err != nil {
		return nil, err
	}
	req.Action = action
	adapter, err := p.registry.Lookup(req.Format)
	if err != nil {
		return nil, err
	}
	if req.Action == ActionDeanonymize && len(req.Mappings) == 0 {
		return nil, resilience.New(resilience.ErrorTypeMissingMappings, "deanonymize requires at least one mapping item", nil)
	}
	custom, err := detector.Compile(req.CustomDetectors)
	if err != nil {
		return nil, err
	}
	codec, err := aead.NewSealer(req.Key, req.Passphrase)
	if err != nil {
		return nil, err
	}
	if c, ok := codec.(interface{ Clear() }); ok {
		defer c.Clear()
	}

	step := p.step("decrypt")
	plaintext, err := codec.Open(req.Source)
	step(err)
	if err != nil {
		return nil, err
	}

	step = p.step("extract")
	doc, err := adapter.Extract(ctx, plaintext)
	security.Wipe(plaintext)
	step(err)
	if err != nil {
		return nil, err
	}

	step = p.step(string(req.Action))
	units, items, fallbacks, err := p.transform(ctx, req.Action, doc.Units, req.Mappings, custom)
	step(err)
	if err != nil {
		return nil, err
	}

	step = p.step("reassemble")
	out, err := adapter.Reassemble(doc, units)
	step(err)
	if err != nil {
		return nil, err
	}
	defer security.Wipe(out)

	step = p.step("encrypt")
	sealed, err := codec.Seal(out)
	step(err)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		p.metrics.AddRedaction(item.PiiType)
	}
	p.metrics.AddConfidenceFallbacks(fallbacks)

	return &Result{
		Output:              sealed,
		Format:              adapter.Format(),
		MimeType:            adapter.MimeType(),
		Items:               items,
		ConfidenceFallbacks: fallbacks,
	}, nil
}

// transform applies the action to every unit in order
func (p *Pipeline) transform(ctx context.Context, action Action, units []string, mappings []mapper.MappingItem, custom []detector.Recognizer) ([]string, []mapper.MappingItem, int, error) {
	out := make([]string, len(units))

	if action == ActionDeanonymize {
		if p.strict {
			if err := mapper.CheckReversible(units, mappings); err != nil {
				return nil, nil, 0, err
			}
		}
		for i, u := range units {
			restored, err := mapper.Deanonymize(u, mappings)
			if err != nil {
				return nil, nil, 0, err
			}
			out[i] = restored
		}
		return out, []mapper.MappingItem{}, 0, nil
	}

	doc := p.mapper.NewDocument(custom)
	items := []mapper.MappingItem{}
	for i, u := range units {
		redacted, unitItems, err := doc.Anonymize(ctx, u)
		if err != nil {
			return nil, nil, 0, err
		}
		out[i] = redacted
		items = append(items, unitItems...)
	}
	return out, items, doc.Fallbacks(), nil
}

// ProcessText runs the mapper on plain text without the encryption layer
func (p *Pipeline) ProcessText(ctx context.Context, action Action, text string, mappings []mapper.MappingItem, custom []detector.Definition) (_ string, _ []mapper.MappingItem, err error) {
	start, label := time.Now(), string(action)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = resilience.KindOf(err).String()
		}
		p.metrics.ObserveRequest(label, "txt", outcome, time.Since(start))
	}()

	action, err = ParseAction(string(action))
	if err != nil {
		return "", nil, err
	}
	if action == ActionDeanonymize && len(mappings) == 0 {
		return "", nil, resilience.New(resilience.ErrorTypeMissingMappings, "deanonymize requires at least one mapping item", nil)
	}
	recognizers, err := detector.Compile(custom)
	if err != nil {
		return "", nil, err
	}

	out, items, fallbacks, err := p.transform(ctx, action, []string{text}, mappings, recognizers)
	if err != nil {
		return "", nil, err
	}
	for _, item := range items {
		p.metrics.AddRedaction(item.PiiType)
	}
	p.metrics.AddConfidenceFallbacks(fallbacks)
	return out[0], items, nil
}

// step opens a debug step and returns a function that closes it with err's outcome
func (p *Pipeline) step(name string) func(error) {
	if p.observer.Level() < observability.ObservabilityDebug || p.observer.DebugObserver == nil {
		return func(error) {}
	}
	end := p.observer.DebugObserver.StartStep("pipeline", name, "")
	return func(err error) {
		if err != nil {
			end(false, resilience.KindOf(err).String())
			return
		}
		end(true, "")
	}
}

// normalizedTag keeps metric label cardinality bounded
func normalizedTag(tag string) string {
	f, err := formats.ParseFormat(tag)
	if err != nil {
		return "unsupported"
	}
	return f.String()
}

// String implements fmt.Stringer for log output
func (r *Result) String() string {
	return fmt.Sprintf("%s output, %d bytes sealed, %d items", r.Format, len(r.Output), len(r.Items))
}
