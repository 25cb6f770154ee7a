// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"bytes"
	"encoding/json"
	"fmt"

	"ciphershield/internal/formatters"
	"ciphershield/internal/mapper"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "JSON array of mapping items, readable by deanonymize"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// Format writes the items as a JSON array. An empty list is "[]", never "null".
func (f *Formatter) Format(items []mapper.MappingItem, options formatters.FormatterOptions) (string, error) {
	if items == nil {
		items = []mapper.MappingItem{}
	}

	var data []byte
	var err error
	if options.Compact {
		data, err = json.Marshal(items)
	} else {
		data, err = json.MarshalIndent(items, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// Parse accepts a bare array or an object with an "items" array, as returned by the HTTP API
func (f *Formatter) Parse(data []byte) ([]mapper.MappingItem, error) {
	trimmed := bytes.TrimSpace(data)

	if bytes.HasPrefix(trimmed, []byte("{")) {
		var envelope struct {
			Items []mapper.MappingItem `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("error parsing JSON mappings: %w", err)
		}
		return envelope.Items, nil
	}

	var items []mapper.MappingItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("error parsing JSON mappings: %w", err)
	}
	return items, nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
