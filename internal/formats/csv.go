// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formats

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"ciphershield/internal/resilience"
)

func init() {
	Register(NewCSVAdapter())
}

// CSVAdapter makes every cell a unit. Reassembly joins cells with "," and ends
// every row with "\n" without quoting, so a cell containing a comma, quote or
// newline does not survive a round trip as the same cell.
type CSVAdapter struct{}

// NewCSVAdapter creates the CSV adapter
func NewCSVAdapter() *CSVAdapter {
	return &CSVAdapter{}
}

func (a *CSVAdapter) Format() Format   { return FormatCSV }
func (a *CSVAdapter) MimeType() string { return "text/csv; charset=utf-8" }

// Extract implements Adapter. Rows may have differing widths. A blank line is
// kept as a row with no cells.
func (a *CSVAdapter) Extract(ctx context.Context, data []byte) (*Document, error) {
	if !utf8.Valid(data) {
		return nil, encodingError(FormatCSV)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	doc := &Document{Format: FormatCSV}
	var consumed int64
	lines := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, resilience.New(resilience.ErrorTypeExtraction, "parse csv", err)
		}

		// encoding/csv skips empty lines; the gap between the previous record
		// and this one is made of them.
		start, _ := r.FieldPos(0)
		doc.blankRows(start - 1 - lines)

		doc.Units = append(doc.Units, record...)
		doc.RowWidths = append(doc.RowWidths, len(record))

		next := r.InputOffset()
		lines += bytes.Count(data[consumed:next], []byte{'\n'})
		consumed = next
	}
	doc.blankRows(bytes.Count(data[consumed:], []byte{'\n'}))
	return doc, nil
}

func (d *Document) blankRows(n int) {
	for ; n > 0; n-- {
		d.RowWidths = append(d.RowWidths, 0)
	}
}

// Reassemble implements Adapter
func (a *CSVAdapter) Reassemble(doc *Document, units []string) ([]byte, error) {
	if err := checkUnitCount(doc, units); err != nil {
		return nil, err
	}

	var b strings.Builder
	next := 0
	for _, width := range doc.RowWidths {
		b.WriteString(strings.Join(units[next:next+width], ","))
		b.WriteByte('\n')
		next += width
	}
	return []byte(b.String()), nil
}
