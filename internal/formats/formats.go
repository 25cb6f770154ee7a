// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formats

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"ciphershield/internal/resilience"
)

// Format is one of the closed set of document formats the pipeline understands
type Format int

const (
	FormatUnknown Format = iota
	FormatTXT
	FormatJSON
	FormatXML
	FormatCSV
	FormatPDF
)

var formatNames = map[Format]string{
	FormatTXT:  "txt",
	FormatJSON: "json",
	FormatXML:  "xml",
	FormatCSV:  "csv",
	FormatPDF:  "pdf",
}

// String returns the normalized tag
func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return "unknown"
}

// ParseFormat normalizes a tag (case-insensitive, leading dot stripped) into a Format.
// Unknown tags fail with UnsupportedFormat.
func ParseFormat(tag string) (Format, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "."))
	for f, name := range formatNames {
		if name == normalized {
			return f, nil
		}
	}
	return FormatUnknown, resilience.Newf(resilience.ErrorTypeUnsupportedFormat, "format %q is not supported (supported: %s)",
		tag, strings.Join(Tags(), ", "))
}

// FromFilename infers the format from a file name's extension, ignoring a trailing ".enc"
func FromFilename(name string) (Format, error) {
	base := strings.TrimSuffix(filepath.Base(name), ".enc")
	ext := filepath.Ext(base)
	if ext == "" {
		return FormatUnknown, resilience.Newf(resilience.ErrorTypeUnsupportedFormat, "cannot infer format from %q", name)
	}
	return ParseFormat(ext)
}

// Tags lists the supported tags, sorted
func Tags() []string {
	tags := make([]string, 0, len(formatNames))
	for _, name := range formatNames {
		tags = append(tags, name)
	}
	sort.Strings(tags)
	return tags
}

// Document is a decoded buffer split into text units
type Document struct {
	Format Format

	// Units in extraction order; for CSV this is row-major cell order
	Units []string

	// Cells per row, CSV only
	RowWidths []int
}

// Adapter converts between a decrypted buffer and its text units
type Adapter interface {
	// Format returns the format this adapter handles
	Format() Format

	// Extract decodes data into text units
	Extract(ctx context.Context, data []byte) (*Document, error)

	// Reassemble encodes processed units, one per unit of doc, back into bytes
	Reassemble(doc *Document, units []string) ([]byte, error)

	// MimeType describes the bytes Reassemble produces
	MimeType() string
}

// Registry holds the adapter for each format
type Registry struct {
	mu       sync.RWMutex
	adapters map[Format]Adapter
}

// NewRegistry creates an empty adapter registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[Format]Adapter),
	}
}

// Register adds or replaces the adapter for its format
func (r *Registry) Register(adapter Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[adapter.Format()] = adapter
}

// Get returns the adapter for f, or UnsupportedFormat
func (r *Registry) Get(f Format) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[f]
	if !ok {
		return nil, resilience.Newf(resilience.ErrorTypeUnsupportedFormat, "no adapter registered for format %q", f)
	}
	return adapter, nil
}

// Lookup parses tag and returns its adapter
func (r *Registry) Lookup(tag string) (Adapter, error) {
	f, err := ParseFormat(tag)
	if err != nil {
		return nil, err
	}
	return r.Get(f)
}

// List returns the registered formats in enum order
func (r *Registry) List() []Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]Format, 0, len(r.adapters))
	for f := range r.adapters {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

// Clone returns an independent registry holding the same adapters
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewRegistry()
	for f, adapter := range r.adapters {
		c.adapters[f] = adapter
	}
	return c
}

// DefaultRegistry is the global adapter registry populated by this package's init functions
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register an adapter with the default registry
func Register(adapter Adapter) {
	DefaultRegistry.Register(adapter)
}

// Lookup is a convenience function to find an adapter in the default registry
func Lookup(tag string) (Adapter, error) {
	return DefaultRegistry.Lookup(tag)
}

func checkUnitCount(doc *Document, units []string) error {
	if len(units) != len(doc.Units) {
		return resilience.Newf(resilience.ErrorTypeInvalidInput,
			"reassemble %s: got %d units, document has %d", doc.Format, len(units), len(doc.Units))
	}
	return nil
}

func encodingError(f Format) error {
	return resilience.New(resilience.ErrorTypeEncoding, fmt.Sprintf("%s content is not valid UTF-8", f), nil)
}
