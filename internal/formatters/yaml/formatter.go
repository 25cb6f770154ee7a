// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package yaml

import (
	"fmt"

	"ciphershield/internal/formatters"
	"ciphershield/internal/mapper"

	"gopkg.in/yaml.v3"
)

// Formatter implements YAML output formatting
type Formatter struct{}

// NewFormatter creates a new YAML formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "yaml"
}

func (f *Formatter) Description() string {
	return "YAML list of mapping items, same fields as the JSON output"
}

func (f *Formatter) FileExtension() string {
	return ".yaml"
}

func (f *Formatter) Format(items []mapper.MappingItem, _ formatters.FormatterOptions) (string, error) {
	if len(items) == 0 {
		return "[]\n", nil
	}

	yamlData, err := yaml.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("error formatting YAML: %w", err)
	}
	return string(yamlData), nil
}

func (f *Formatter) Parse(data []byte) ([]mapper.MappingItem, error) {
	var items []mapper.MappingItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("error parsing YAML mappings: %w", err)
	}
	return items, nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
