// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formats

import (
	"context"
	"unicode/utf8"
)

func init() {
	Register(NewTextAdapter(FormatTXT))
	Register(NewTextAdapter(FormatJSON))
	Register(NewTextAdapter(FormatXML))
}

// TextAdapter treats the whole buffer as a single UTF-8 unit.
// JSON and XML are not parsed; their markup is redacted like any other text.
type TextAdapter struct {
	format Format
}

// NewTextAdapter creates a whole-buffer adapter for f
func NewTextAdapter(f Format) *TextAdapter {
	return &TextAdapter{format: f}
}

func (a *TextAdapter) Format() Format { return a.format }

func (a *TextAdapter) MimeType() string {
	switch a.format {
	case FormatJSON:
		return "application/json"
	case FormatXML:
		return "application/xml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Extract implements Adapter
func (a *TextAdapter) Extract(_ context.Context, data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, encodingError(a.format)
	}
	return &Document{Format: a.format, Units: []string{string(data)}}, nil
}

// Reassemble implements Adapter
func (a *TextAdapter) Reassemble(doc *Document, units []string) ([]byte, error) {
	if err := checkUnitCount(doc, units); err != nil {
		return nil, err
	}
	return []byte(units[0]), nil
}
