// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formats

import (
	"context"

	textextract "ciphershield/internal/preprocessors/text-extractors/text-extract-pdftextlib"
	"ciphershield/internal/resilience"
)

func init() {
	Register(NewPDFAdapter(textextract.DefaultOptions()))
}

// PDFAdapter extracts page text and joins the pages with "\n" into one unit.
// The original layout is not rebuilt: reassembly always yields plain text.
type PDFAdapter struct {
	opts textextract.Options
}

// NewPDFAdapter creates a PDF adapter with the given extraction options
func NewPDFAdapter(opts textextract.Options) *PDFAdapter {
	return &PDFAdapter{opts: opts}
}

func (a *PDFAdapter) Format() Format   { return FormatPDF }
func (a *PDFAdapter) MimeType() string { return "text/plain; charset=utf-8" }

// Extract implements Adapter. Every extraction failure is an ExtractionError.
func (a *PDFAdapter) Extract(ctx context.Context, data []byte) (*Document, error) {
	content, err := textextract.ExtractPages(ctx, data, a.opts)
	if err != nil {
		return nil, resilience.New(resilience.ErrorTypeExtraction, "extract pdf text", err)
	}
	return &Document{Format: FormatPDF, Units: []string{content.Text()}}, nil
}

// Reassemble implements Adapter
func (a *PDFAdapter) Reassemble(doc *Document, units []string) ([]byte, error) {
	if err := checkUnitCount(doc, units); err != nil {
		return nil, err
	}
	return []byte(units[0]), nil
}
