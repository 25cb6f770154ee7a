// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxPages bounds extraction time for very large documents
const DefaultMaxPages = 500

// Options controls PDF text extraction
type Options struct {
	// MaxPages rejects documents with more pages. Zero means no limit.
	MaxPages int

	// Validate runs a structural check with pdfcpu before extraction
	Validate bool

	// IncludeFormFields appends AcroForm field names and values after the last page
	IncludeFormFields bool

	// Workers bounds the number of pages extracted concurrently
	Workers int
}

// DefaultOptions returns the options used when none are configured
func DefaultOptions() Options {
	return Options{
		MaxPages: DefaultMaxPages,
		Validate: true,
		Workers:  4,
	}
}

// TextContent represents the extracted text content from a PDF document
type TextContent struct {
	Pages     []string
	PageCount int
	WordCount int
	CharCount int
}

// Text joins the pages with a single newline
func (c *TextContent) Text() string {
	return strings.Join(c.Pages, "\n")
}

// Validate checks the document structure with pdfcpu in relaxed mode
func Validate(data []byte) error {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return fmt.Errorf("invalid PDF: %w", err)
	}
	return nil
}

// ExtractPages extracts the text of every page of an in-memory PDF, in page order.
// Any page that cannot be read fails the whole extraction.
func ExtractPages(ctx context.Context, data []byte, opts Options) (content *TextContent, err error) {
	// The PDF parser panics on some malformed inputs.
	defer func() {
		if p := recover(); p != nil {
			content, err = nil, fmt.Errorf("malformed PDF: %v", p)
		}
	}()

	if opts.Validate {
		if err := Validate(data); err != nil {
			return nil, err
		}
	}

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}

	pageCount := r.NumPage()
	if opts.MaxPages > 0 && pageCount > opts.MaxPages {
		return nil, fmt.Errorf("PDF has %d pages, limit is %d", pageCount, opts.MaxPages)
	}

	pages := make([]string, pageCount)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, opts.Workers))
	for i := 1; i <= pageCount; i++ {
		pageNum := i
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("page %d: malformed content: %v", pageNum, p)
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}

			p := r.Page(pageNum)
			if p.V.IsNull() {
				return fmt.Errorf("page %d: null page", pageNum)
			}
			text, err := extractTextWithProperSpacing(p)
			if err != nil {
				return fmt.Errorf("page %d: %w", pageNum, err)
			}
			pages[pageNum-1] = cleanTextPreservingStructure(text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.IncludeFormFields {
		if formData := extractFormData(r); formData != "" {
			pages = append(pages, formData)
		}
	}

	content = &TextContent{
		Pages:     pages,
		PageCount: pageCount,
	}
	for _, p := range pages {
		content.WordCount += len(strings.Fields(p))
		content.CharCount += len(p)
	}
	return content, nil
}

// extractFormData extracts form field data from PDF AcroForms
func extractFormData(r *pdf.Reader) string {
	root := r.Trailer().Key("Root")
	if root.IsNull() {
		return ""
	}

	fields := root.Key("AcroForm").Key("Fields")
	if fields.Kind() != pdf.Array {
		return ""
	}

	var lines []string
	for i := 0; i < fields.Len(); i++ {
		name, value := extractFieldNameValue(fields.Index(i))
		if name != "" && value != "" {
			lines = append(lines, fmt.Sprintf("Name: %s Value: %s", name, value))
		}
	}
	return strings.Join(lines, "\n")
}

// extractFieldNameValue extracts name and value from a single form field
func extractFieldNameValue(field pdf.Value) (string, string) {
	if field.Kind() != pdf.Dict {
		return "", ""
	}

	var fieldName string
	if t := field.Key("T"); t.Kind() == pdf.String {
		fieldName = t.Text()
	}

	// Fall back to the default value when no value is set
	for _, key := range []string{"V", "DV"} {
		v := field.Key(key)
		switch v.Kind() {
		case pdf.String:
			return fieldName, v.Text()
		case pdf.Name:
			return fieldName, v.Name()
		}
	}
	return fieldName, ""
}

// cleanTextPreservingStructure drops blank lines and collapses runs of spaces
// while keeping one line per text row
func cleanTextPreservingStructure(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\t", " "), "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// extractTextWithProperSpacing extracts text using row-based positioning for better spacing
func extractTextWithProperSpacing(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		// Fallback to simple text extraction if row-based fails
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	// PDF Y grows upwards, so the top row has the largest Y
	sort.SliceStable(sortedRows, func(i, j int) bool {
		return getAverageY(sortedRows[i].Content) > getAverageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := reconstructRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

// getAverageY calculates the average Y coordinate for text elements in a row
func getAverageY(textElements []pdf.Text) float64 {
	if len(textElements) == 0 {
		return 0
	}

	var totalY float64
	for _, element := range textElements {
		totalY += element.Y
	}

	return totalY / float64(len(textElements))
}

// reconstructRowText reconstructs text from a row with proper spacing based on coordinates
func reconstructRowText(textElements []pdf.Text) string {
	sortedElements := make([]pdf.Text, len(textElements))
	copy(sortedElements, textElements)
	sort.SliceStable(sortedElements, func(i, j int) bool {
		return sortedElements[i].X < sortedElements[j].X
	})

	var buf bytes.Buffer
	for i, element := range sortedElements {
		buf.WriteString(element.S)

		if i < len(sortedElements)-1 {
			gap := sortedElements[i+1].X - (element.X + element.W)

			fontSize := element.FontSize
			if fontSize <= 0 {
				fontSize = 12
			}

			// A gap wider than a fifth of the font size reads as a word break
			if gap > fontSize*0.2 && !strings.HasSuffix(element.S, " ") {
				buf.WriteString(" ")
			}
		}
	}

	return buf.String()
}
