// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"ciphershield/internal/detector"
	"ciphershield/internal/formats"
	"ciphershield/internal/observability"
	"ciphershield/internal/paths"
	textextract "ciphershield/internal/preprocessors/text-extractors/text-extract-pdftextlib"
	"ciphershield/internal/redactors"
	"ciphershield/internal/validators"

	"gopkg.in/yaml.v3"
)

// MappingFormats lists the accepted values of defaults.mapping_format
var MappingFormats = []string{"json", "yaml"}

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format        string `yaml:"format"`
		Verbose       bool   `yaml:"verbose"`
		Debug         bool   `yaml:"debug"`
		NoColor       bool   `yaml:"no_color"`
		MappingFormat string `yaml:"mapping_format"`
		Retries       int    `yaml:"retries"`
	} `yaml:"defaults"`

	Detection struct {
		Entities      []string `yaml:"entities"`
		MinConfidence float64  `yaml:"min_confidence"`
		Language      string   `yaml:"language"`
	} `yaml:"detection"`

	// Regex detectors added to every request
	CustomDetectors []detector.Definition `yaml:"custom_detectors"`

	Redaction struct {
		PlaceholderStyle string `yaml:"placeholder_style"`
		StrictReversal   bool   `yaml:"strict_reversal"`
	} `yaml:"redaction"`

	PDF struct {
		Validate          bool `yaml:"validate"`
		MaxPages          int  `yaml:"max_pages"`
		IncludeFormFields bool `yaml:"include_form_fields"`
		Workers           int  `yaml:"workers"`
	} `yaml:"pdf"`

	Server struct {
		Port      int     `yaml:"port"`
		FileRoot  string  `yaml:"file_root"` // process_file paths must stay inside it; empty means the working directory
		MaxBodyMB int     `yaml:"max_body_mb"`
		RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 disables limiting
		Burst     int     `yaml:"burst"`
	} `yaml:"server"`

	// Profiles for different processing scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile overrides a subset of the settings. Zero values leave the base setting alone.
type Profile struct {
	Description      string   `yaml:"description"`
	Format           string   `yaml:"format"`
	MappingFormat    string   `yaml:"mapping_format"`
	Entities         []string `yaml:"entities"`
	MinConfidence    *float64 `yaml:"min_confidence"`
	PlaceholderStyle string   `yaml:"placeholder_style"`
	StrictReversal   *bool    `yaml:"strict_reversal"`
}

// Default returns the built-in configuration
func Default() *Config {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	config.Defaults.MappingFormat = "json"

	config.Detection.MinConfidence = validators.DefaultMinConfidence
	config.Detection.Language = "en"

	config.Redaction.PlaceholderStyle = redactors.PlaceholderEntity.String()

	pdf := textextract.DefaultOptions()
	config.PDF.Validate = pdf.Validate
	config.PDF.MaxPages = pdf.MaxPages
	config.PDF.IncludeFormFields = pdf.IncludeFormFields
	config.PDF.Workers = pdf.Workers

	config.Server.Port = 8080
	config.Server.MaxBodyMB = 32
	config.Server.RateLimit = 20
	config.Server.Burst = 40

	strict := true
	config.Profiles["reversible"] = Profile{
		Description:      "Numbered placeholders with strict reversal checks, for documents that must be restored",
		PlaceholderStyle: redactors.PlaceholderIndexed.String(),
		StrictReversal:   &strict,
	}

	return config
}

// LoadConfig loads configuration from the specified file path over the defaults.
// An empty path returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Fields absent from the file keep their defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in the working directory, then in the
// user config directory. It returns "" when none exists.
func FindConfigFile() string {
	for _, name := range []string{"ciphershield.yaml", "ciphershield.yml", ".ciphershield.yaml", ".ciphershield.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); fileExists(standardConfig) {
		return standardConfig
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the available profile names, sorted
func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, ok := c.Profiles[name]; ok {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the named profile on the configuration and revalidates it
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile %q not found (available: %s)", name, strings.Join(c.ListProfiles(), ", "))
	}

	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.MappingFormat != "" {
		c.Defaults.MappingFormat = profile.MappingFormat
	}
	if len(profile.Entities) > 0 {
		c.Detection.Entities = slices.Clone(profile.Entities)
	}
	if profile.MinConfidence != nil {
		c.Detection.MinConfidence = *profile.MinConfidence
	}
	if profile.PlaceholderStyle != "" {
		c.Redaction.PlaceholderStyle = profile.PlaceholderStyle
	}
	if profile.StrictReversal != nil {
		c.Redaction.StrictReversal = *profile.StrictReversal
	}

	return ValidateConfig(c)
}

// ValidateConfig checks every setting that would otherwise fail later, at request time
func ValidateConfig(config *Config) error {
	var errs []error

	if config.Defaults.Format != "" {
		if _, err := formats.ParseFormat(config.Defaults.Format); err != nil {
			errs = append(errs, fmt.Errorf("defaults.format: %w", err))
		}
	}
	if !slices.Contains(MappingFormats, config.Defaults.MappingFormat) {
		errs = append(errs, fmt.Errorf("defaults.mapping_format %q must be one of %s",
			config.Defaults.MappingFormat, strings.Join(MappingFormats, ", ")))
	}
	if config.Defaults.Retries < 0 {
		errs = append(errs, fmt.Errorf("defaults.retries must not be negative"))
	}

	if c := config.Detection.MinConfidence; c < 0 || c > 1 {
		errs = append(errs, fmt.Errorf("detection.min_confidence %.2f is outside [0, 1]", c))
	}
	if config.Detection.Language != "en" {
		errs = append(errs, fmt.Errorf("detection.language %q is not supported (only \"en\")", config.Detection.Language))
	}

	known := validators.EntityTypes()
	for _, def := range config.CustomDetectors {
		known = append(known, def.EntityType)
	}
	for _, entity := range config.Detection.Entities {
		if !slices.Contains(known, entity) {
			errs = append(errs, fmt.Errorf("detection.entities: unknown entity type %q", entity))
		}
	}

	for i, def := range config.CustomDetectors {
		if def.EntityType == "" {
			errs = append(errs, fmt.Errorf("custom_detectors[%d]: entity_type is required", i))
		}
		if c := def.EffectiveConfidence(); c < 0 || c > 1 {
			errs = append(errs, fmt.Errorf("custom_detectors[%d]: confidence %.2f is outside [0, 1]", i, c))
		}
	}
	if _, err := detector.Compile(config.CustomDetectors); err != nil {
		errs = append(errs, fmt.Errorf("custom_detectors: %w", err))
	}

	if _, err := redactors.ParsePlaceholderStyle(config.Redaction.PlaceholderStyle); err != nil {
		errs = append(errs, fmt.Errorf("redaction.placeholder_style: %w", err))
	}

	if config.PDF.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("pdf.max_pages must not be negative"))
	}
	if config.PDF.Workers < 0 {
		errs = append(errs, fmt.Errorf("pdf.workers must not be negative"))
	}

	if p := config.Server.Port; p < 0 || p > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", p))
	}
	if config.Server.MaxBodyMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_mb must be positive"))
	}
	if config.Server.RateLimit < 0 || config.Server.Burst < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit and server.burst must not be negative"))
	}

	return errors.Join(errs...)
}

// ValidatorOptions converts the detection settings for validators.NewAnalyzer
func (c *Config) ValidatorOptions(observer *observability.StandardObserver) validators.Options {
	minConfidence := c.Detection.MinConfidence
	return validators.Options{
		Entities:      slices.Clone(c.Detection.Entities),
		MinConfidence: &minConfidence,
		Custom:        slices.Clone(c.CustomDetectors),
		Observer:      observer,
	}
}

// PlaceholderStyle returns the parsed redaction.placeholder_style
func (c *Config) PlaceholderStyle() redactors.PlaceholderStyle {
	style, err := redactors.ParsePlaceholderStyle(c.Redaction.PlaceholderStyle)
	if err != nil {
		return redactors.PlaceholderEntity
	}
	return style
}

// PDFOptions returns the extraction options for the PDF adapter
func (c *Config) PDFOptions() textextract.Options {
	return textextract.Options{
		MaxPages:          c.PDF.MaxPages,
		Validate:          c.PDF.Validate,
		IncludeFormFields: c.PDF.IncludeFormFields,
		Workers:           c.PDF.Workers,
	}
}

// MaxBodyBytes returns server.max_body_mb in bytes
func (c *Config) MaxBodyBytes() int64 {
	return int64(c.Server.MaxBodyMB) << 20
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns a default configuration.
// This is the shared helper used by both the CLI and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		cfg = Default()
	}
	return cfg
}
