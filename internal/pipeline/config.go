// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"ciphershield/internal/config"
	"ciphershield/internal/formats"
	"ciphershield/internal/mapper"
	"ciphershield/internal/observability"
	"ciphershield/internal/redactors"
)

// NewFromConfig wires a pipeline around analyzer using the redaction and PDF settings of cfg.
// metrics and observer may be nil.
func NewFromConfig(cfg *config.Config, analyzer mapper.Analyzer, metrics *observability.Metrics, observer *observability.StandardObserver) *Pipeline {
	registry := formats.DefaultRegistry.Clone()
	registry.Register(formats.NewPDFAdapter(cfg.PDFOptions()))

	engine := redactors.NewEngine(cfg.PlaceholderStyle())
	engine.SetObserver(observer)

	m := mapper.New(analyzer, engine)
	m.SetObserver(observer)
	m.SetLanguage(cfg.Detection.Language)

	return New(m,
		WithRegistry(registry),
		WithStrictReversal(cfg.Redaction.StrictReversal),
		WithMetrics(metrics),
		WithObserver(observer),
	)
}
