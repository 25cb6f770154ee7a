// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package textextractpdftextlib

import (
	"context"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ciphershield/internal/preprocessors/text-extractors/text-extract-pdftextlib/pdftest"
)

func TestExtractPages_PageOrder(t *testing.T) {
	data := pdftest.Build("Contact: john@example.com", "Second page", "Third (final) page")

	content, err := ExtractPages(context.Background(), data, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, content.PageCount)
	assert.Equal(t, []string{"Contact: john@example.com", "Second page", "Third (final) page"}, content.Pages)
	assert.Equal(t, "Contact: john@example.com\nSecond page\nThird (final) page", content.Text())
	assert.Equal(t, 7, content.WordCount)
}

func TestExtractPages_MaxPages(t *testing.T) {
	data := pdftest.Build("one", "two")

	_, err := ExtractPages(context.Background(), data, Options{MaxPages: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit is 1")
}

func TestExtractPages_Garbage(t *testing.T) {
	for _, opts := range []Options{{}, {Validate: true}} {
		_, err := ExtractPages(context.Background(), []byte("definitely not a pdf"), opts)
		assert.Error(t, err)
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(pdftest.Build("ok")))
	assert.Error(t, Validate([]byte("%PDF-1.4\ntruncated")))
}

func TestCleanTextPreservingStructure(t *testing.T) {
	in := "  Name:\tJane   Doe \n\n\n SSN:  536-22-1234  \n"
	assert.Equal(t, "Name: Jane Doe\nSSN: 536-22-1234", cleanTextPreservingStructure(in))
}

func TestReconstructRowText(t *testing.T) {
	row := []pdf.Text{
		{S: "world", X: 60, W: 30, FontSize: 10},
		{S: "Hello", X: 10, W: 28, FontSize: 10},
		{S: "!", X: 90, W: 3, FontSize: 10},
	}
	assert.Equal(t, "Hello world!", reconstructRowText(row))
}
