// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"sort"
	"strings"

	"ciphershield/internal/formatters"
	"ciphershield/internal/mapper"

	"github.com/fatih/color"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable table of replacements with colors; originals are masked unless requested"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(items []mapper.MappingItem, options formatters.FormatterOptions) (string, error) {
	if len(items) == 0 {
		return "No PII replaced.\n", nil
	}

	var builder strings.Builder
	if options.Verbose {
		for i, item := range items {
			f.appendDetailedItem(&builder, i+1, item, options)
		}
	} else {
		f.appendHeaders(&builder, items, options)
		for _, item := range items {
			f.appendSummaryLine(&builder, item, items, options)
		}
	}
	f.appendTotals(&builder, items, options)
	return builder.String(), nil
}

// getConfidenceLevel buckets a 0..1 confidence the same way for every entity type
func (f *Formatter) getConfidenceLevel(confidence float64) string {
	switch {
	case confidence >= 0.9:
		return "HIGH"
	case confidence >= 0.6:
		return "MEDIUM"
	case confidence > 0:
		return "LOW"
	default:
		return "NONE"
	}
}

func (f *Formatter) levelColor(level string) *color.Color {
	switch level {
	case "HIGH":
		return f.colors["red"]
	case "MEDIUM":
		return f.colors["yellow"]
	case "LOW":
		return f.colors["green"]
	default:
		return f.colors["white"]
	}
}

// paint applies the named color unless colors are disabled
func (f *Formatter) paint(name string, options formatters.FormatterOptions, format string, args ...interface{}) string {
	if options.NoColor {
		return fmt.Sprintf(format, args...)
	}
	return f.colors[name].Sprintf(format, args...)
}

// appendHeaders adds column headers to the string builder
func (f *Formatter) appendHeaders(builder *strings.Builder, items []mapper.MappingItem, options formatters.FormatterOptions) {
	placeholderWidth := f.calculatePlaceholderWidth(items)
	builder.WriteString(f.paint("white", options, "%-8s %-20s %-8s %-*s %s\n",
		"LEVEL", "TYPE", "CONF%", placeholderWidth, "PLACEHOLDER", "ORIGINAL"))

	totalWidth := 8 + 1 + 20 + 1 + 8 + 1 + placeholderWidth + 1 + 10
	builder.WriteString(f.paint("white", options, "%s\n", strings.Repeat("-", totalWidth)))
}

// calculatePlaceholderWidth fits the longest placeholder, capped at 30 characters
func (f *Formatter) calculatePlaceholderWidth(items []mapper.MappingItem) int {
	maxWidth := len("PLACEHOLDER")
	for _, item := range items {
		if n := len([]rune(item.Anonymized)); n > maxWidth {
			maxWidth = n
		}
	}
	if maxWidth > 30 {
		maxWidth = 30
	}
	return maxWidth
}

// appendSummaryLine adds a single line summary to the string builder
func (f *Formatter) appendSummaryLine(builder *strings.Builder, item mapper.MappingItem, allItems []mapper.MappingItem, options formatters.FormatterOptions) {
	level := f.getConfidenceLevel(item.Confidence)

	levelStr := fmt.Sprintf("[%-6s]", level)
	if !options.NoColor {
		levelStr = f.levelColor(level).Sprintf("[%-6s]", level)
	}

	typeDisplay := item.PiiType
	if len(typeDisplay) > 20 {
		typeDisplay = typeDisplay[:17] + "..."
	}

	width := f.calculatePlaceholderWidth(allItems)
	placeholder := item.Anonymized
	if runes := []rune(placeholder); len(runes) > width {
		placeholder = string(runes[:width-3]) + "..."
	}

	fmt.Fprintf(builder, "%s %s %s %s %s\n",
		levelStr,
		f.paint("cyan", options, "%-20s", typeDisplay),
		f.paint("blue", options, "%7.2f%%", item.Confidence*100),
		f.paint("magenta", options, "%-*s", width, placeholder),
		f.original(item, options))
}

// appendDetailedItem adds detailed item information to the string builder
func (f *Formatter) appendDetailedItem(builder *strings.Builder, n int, item mapper.MappingItem, options formatters.FormatterOptions) {
	level := f.getConfidenceLevel(item.Confidence)

	builder.WriteString(f.paint("white", options, "=== Replacement %d ===\n", n))
	fmt.Fprintf(builder, "Type:        %s\n", f.paint("cyan", options, "%s", item.PiiType))
	fmt.Fprintf(builder, "Placeholder: %s\n", f.paint("magenta", options, "%s", item.Anonymized))
	fmt.Fprintf(builder, "Original:    %s\n", f.original(item, options))
	if options.NoColor {
		fmt.Fprintf(builder, "Confidence:  %.2f%% (%s)\n", item.Confidence*100, level)
	} else {
		fmt.Fprintf(builder, "Confidence:  %s\n", f.levelColor(level).Sprintf("%.2f%% (%s)", item.Confidence*100, level))
	}
	if item.Confidence == 0 {
		builder.WriteString("Note:        no detection matched this exact range\n")
	}
	builder.WriteString("\n")
}

// appendTotals adds a per-type count line
func (f *Formatter) appendTotals(builder *strings.Builder, items []mapper.MappingItem, options formatters.FormatterOptions) {
	counts := make(map[string]int)
	for _, item := range items {
		counts[item.PiiType]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}
	builder.WriteString(f.paint("white", options, "\n%d replacement(s): %s\n", len(items), strings.Join(parts, ", ")))
}

func (f *Formatter) original(item mapper.MappingItem, options formatters.FormatterOptions) string {
	if !options.ShowOriginals {
		return "[REDACTED]"
	}
	text := strings.ReplaceAll(item.Original, "\n", " ")
	return strings.ReplaceAll(text, "\t", " ")
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
