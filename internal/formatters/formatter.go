// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"ciphershield/internal/mapper"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	Verbose       bool // Whether to display detailed information
	NoColor       bool // Whether to disable colored output
	ShowOriginals bool // Whether human-readable output shows original values instead of masking them
	Compact       bool // Whether structured output omits indentation
}

// Formatter interface defines methods that all mapping list formatters must implement
type Formatter interface {
	// Format renders the mapping items in the formatter's output format
	Format(items []mapper.MappingItem, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "yaml", "text")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt")
	FileExtension() string
}

// Parser is implemented by formatters whose output can be read back as a mapping list
type Parser interface {
	Parse(data []byte) ([]mapper.MappingItem, error)
}

// Registry holds all registered formatters
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatInfo describes a registered formatter
type FormatInfo struct {
	Name      string
	Extension string
	Parseable bool
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export renders a mapping list with the named formatter
func Export(format string, items []mapper.MappingItem, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported mapping format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	return formatter.Format(items, options)
}

// Parse reads a mapping list written by the named formatter
func Parse(format string, data []byte) ([]mapper.MappingItem, error) {
	formatter, exists := Get(format)
	if !exists {
		return nil, fmt.Errorf("unsupported mapping format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	parser, ok := formatter.(Parser)
	if !ok {
		return nil, fmt.Errorf("mapping format '%s' is display-only and cannot be read back", format)
	}
	return parser.Parse(data)
}

// FormatForPath picks a formatter name from a file extension, falling back to json
func FormatForPath(path string) string {
	lower := strings.ToLower(path)
	for _, name := range List() {
		formatter, _ := Get(name)
		if strings.HasSuffix(lower, formatter.FileExtension()) {
			return name
		}
	}
	if strings.HasSuffix(lower, ".yml") {
		return "yaml"
	}
	return "json"
}

// GetFormatInfo returns metadata about a specific formatter. Name is empty when
// nothing is registered under name.
func GetFormatInfo(name string) FormatInfo {
	formatter, exists := Get(name)
	if !exists {
		return FormatInfo{}
	}
	_, parseable := formatter.(Parser)
	return FormatInfo{
		Name:      formatter.Name(),
		Extension: formatter.FileExtension(),
		Parseable: parseable,
	}
}

// ParseableFormats lists the formatters whose output can be read back, sorted
func ParseableFormats() []string {
	var names []string
	for _, name := range List() {
		if GetFormatInfo(name).Parseable {
			names = append(names, name)
		}
	}
	return names
}
