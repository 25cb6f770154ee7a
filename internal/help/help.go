// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// CheckInfo contains standardized information about a recognizer
type CheckInfo struct {
	Name                string             // Entity type reported by the recognizer (e.g., "CREDIT_CARD")
	ShortDescription    string             // Short description for the entity list
	DetailedDescription string             // Detailed description of what the recognizer matches
	Patterns            []string           // Patterns the recognizer looks for
	SupportedFormats    []string           // Formats or variants supported by the recognizer
	ConfidenceFactors   []ConfidenceFactor // Factors affecting confidence
	PositiveKeywords    []string           // Keywords that increase confidence
	NegativeKeywords    []string           // Keywords that decrease confidence
	ConfigurationInfo   string             // Information about how to configure the recognizer
	Examples            []string           // Usage examples
}

// ConfidenceFactor represents a factor that affects confidence scoring
type ConfidenceFactor struct {
	Name        string  // Name of the factor
	Description string  // Description of the factor
	Weight      float64 // Weight of the factor in the confidence score (percentage)
}

// Provider defines the interface for help content providers
type Provider interface {
	GetCheckInfo() CheckInfo
}

// System manages help content for the application
type System struct {
	providers map[string]Provider
	out       io.Writer
	noColor   bool
	colors    map[string]*color.Color
}

// NewSystem creates a new help system writing to stdout
func NewSystem(noColor bool) *System {
	return NewSystemWithWriter(os.Stdout, noColor)
}

// NewSystemWithWriter creates a help system writing to out
func NewSystemWithWriter(out io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":    color.New(color.FgWhite, color.Bold),
		"subtitle": color.New(color.FgCyan, color.Bold),
		"header":   color.New(color.FgBlue, color.Bold),
		"item":     color.New(color.FgCyan),
		"emphasis": color.New(color.FgWhite, color.Bold),
		"positive": color.New(color.FgGreen),
		"negative": color.New(color.FgRed),
		"warning":  color.New(color.FgYellow),
		"example":  color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}

	return &System{
		providers: make(map[string]Provider),
		out:       out,
		noColor:   noColor,
		colors:    colors,
	}
}

// RegisterProvider adds a help provider to the system
func (h *System) RegisterProvider(provider Provider) {
	info := provider.GetCheckInfo()
	h.providers[strings.ToLower(info.Name)] = provider
}

func (h *System) println(a ...interface{}) {
	fmt.Fprintln(h.out, a...)
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Fprintln(h.out, "CipherShield - Encrypted PII Anonymization")
	h.println("===========================================")
	h.println()
	h.println("Decrypts an AES-256-GCM sealed document, replaces PII with placeholders (or restores")
	h.println("it from a mapping list) and re-encrypts the result with the same key.")
	h.println()
	h.colors["header"].Fprintln(h.out, "USAGE:")
	h.println("  ciphershield <command> [options]")
	h.println()

	h.colors["header"].Fprintln(h.out, "COMMANDS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  keygen\tPrint a fresh 256-bit key as hex")
	fmt.Fprintln(w, "  encrypt\tSeal a plaintext file")
	fmt.Fprintln(w, "  decrypt\tOpen a sealed file")
	fmt.Fprintln(w, "  anonymize\tReplace PII in a sealed file and write the mapping list")
	fmt.Fprintln(w, "  deanonymize\tRestore a sealed file from a mapping list")
	fmt.Fprintln(w, "  serve\tStart the HTTP API")
	fmt.Fprintln(w, "  entities\tList the built-in entity types, or describe one")
	fmt.Fprintln(w, "  version\tPrint version information")
	w.Flush()
	h.println()

	h.colors["header"].Fprintln(h.out, "KEY OPTIONS:")
	w = tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  -key\t<hex>\t64 hex characters (default: $CIPHERSHIELD_KEY)")
	fmt.Fprintln(w, "  -key-file\t<path>\tFile holding the hex key")
	fmt.Fprintln(w, "  -passphrase\t\tPrompt for a passphrase instead of a key (Argon2id, random salt)")
	w.Flush()
	h.println()

	h.colors["header"].Fprintln(h.out, "COMMON OPTIONS:")
	w = tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  -in\t<path>\tSealed input file")
	fmt.Fprintln(w, "  -out\t<path>\tSealed output file (default: next to the input)")
	fmt.Fprintln(w, "  -format\t<tag>\ttxt, json, xml, csv or pdf (default: from the input name)")
	fmt.Fprintln(w, "  -mappings\t<path>\tMapping list to read (deanonymize) or write (anonymize)")
	fmt.Fprintln(w, "  -mapping-format\t<fmt>\tjson or yaml")
	fmt.Fprintln(w, "  -entities\t<list>\tComma-separated entity types to detect (default: all)")
	fmt.Fprintln(w, "  -style\t<style>\tentity (<EMAIL_ADDRESS>) or indexed (<EMAIL_ADDRESS_1>)")
	fmt.Fprintln(w, "  -strict\t\tFail with AmbiguousReversal instead of restoring lossy mappings")
	fmt.Fprintln(w, "  -retries\t<n>\tRe-run the request on retryable failures")
	fmt.Fprintln(w, "  -config\t<path>\tConfiguration file")
	fmt.Fprintln(w, "  -profile\t<name>\tApply a configuration profile")
	fmt.Fprintln(w, "  -debug\t\tPrint processing steps to stderr")
	fmt.Fprintln(w, "  -no-color\t\tDisable colored output")
	w.Flush()
	h.println()

	h.colors["header"].Fprintln(h.out, "EXAMPLES:")
	h.colors["example"].Fprintln(h.out, "  ciphershield keygen > report.key")
	h.colors["example"].Fprintln(h.out, "  ciphershield encrypt -in report.csv -out report.csv.enc -key-file report.key")
	h.colors["example"].Fprintln(h.out, "  ciphershield anonymize -in report.csv.enc -mappings report.map.json -key-file report.key")
	h.colors["example"].Fprintln(h.out, "  ciphershield deanonymize -in report.anonymized.csv.enc -mappings report.map.json -key-file report.key")
	h.colors["example"].Fprintln(h.out, "  ciphershield serve -port 9000")
	h.println()

	h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
	h.println("  Project config: ciphershield.yaml or .ciphershield.yaml (in current directory)")
	h.println("  User config:    $CIPHERSHIELD_CONFIG_DIR/config.yaml or the OS user config directory")
	h.println()
	h.colors["warning"].Fprintln(h.out, "Mapping lists contain the original PII in plaintext. Protect them like the source document.")
}

// ShowChecksHelp lists the registered entity types
func (h *System) ShowChecksHelp() {
	h.colors["title"].Fprintln(h.out, "Built-in Entity Types")
	h.println("=====================")
	h.println()

	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  ENTITY\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  ------\t-----------")

	names := make([]string, 0, len(h.providers))
	for key := range h.providers {
		names = append(names, key)
	}
	sort.Strings(names)

	for _, key := range names {
		info := h.providers[key].GetCheckInfo()
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, "\t%s\n", info.ShortDescription)
	}
	w.Flush()

	h.println()
	h.println("For detailed information about an entity type, use:")
	h.colors["example"].Fprintln(h.out, "  ciphershield entities <ENTITY>")
	h.println()

	exampleCheck := "<ENTITY>"
	if len(names) > 0 {
		exampleCheck = h.providers[names[0]].GetCheckInfo().Name
	}
	h.println("Example:")
	h.colors["example"].Fprintf(h.out, "  ciphershield entities %s\n", exampleCheck)
}

// ShowCheckHelp displays detailed help for a specific entity type
func (h *System) ShowCheckHelp(checkName string) bool {
	provider, exists := h.providers[strings.ToLower(checkName)]
	if !exists {
		h.colors["negative"].Fprintf(h.out, "Error: entity type '%s' not found.\n", checkName)
		h.println("Use 'ciphershield entities' to see a list of available entity types.")
		return false
	}

	info := provider.GetCheckInfo()

	h.colors["title"].Fprintf(h.out, "%s Recognizer\n", info.Name)
	h.println(strings.Repeat("=", len(info.Name)+11))
	h.println()
	h.println(info.DetailedDescription)
	h.println()

	if len(info.Patterns) > 0 {
		h.colors["header"].Fprintln(h.out, "PATTERNS DETECTED:")
		for _, pattern := range info.Patterns {
			fmt.Fprint(h.out, "  - ")
			h.colors["item"].Fprintln(h.out, pattern)
		}
		h.println()
	}

	if len(info.SupportedFormats) > 0 {
		h.colors["header"].Fprintln(h.out, "SUPPORTED FORMATS:")
		for _, format := range info.SupportedFormats {
			fmt.Fprint(h.out, "  - ")
			h.colors["item"].Fprintln(h.out, format)
		}
		h.println()
	}

	if len(info.ConfidenceFactors) > 0 {
		h.colors["header"].Fprintln(h.out, "CONFIDENCE SCORING:")
		for _, factor := range info.ConfidenceFactors {
			fmt.Fprint(h.out, "   - ")
			h.colors["item"].Fprintf(h.out, "%s ", factor.Name)
			fmt.Fprintf(h.out, "(%.0f%%): %s\n", factor.Weight, factor.Description)
		}
		h.println()
	}

	if len(info.PositiveKeywords) > 0 || len(info.NegativeKeywords) > 0 {
		h.colors["subtitle"].Fprintln(h.out, "Contextual Analysis (keywords within 50 bytes of the match):")

		if len(info.PositiveKeywords) > 0 {
			fmt.Fprint(h.out, "   - Positive keywords (+0.15): ")
			h.colors["positive"].Fprintf(h.out, "%s", strings.Join(info.PositiveKeywords[:min(5, len(info.PositiveKeywords))], ", "))
			if len(info.PositiveKeywords) > 5 {
				h.println("\n     and others...")
			} else {
				h.println()
			}
		}

		if len(info.NegativeKeywords) > 0 {
			fmt.Fprint(h.out, "   - Negative keywords (-0.20): ")
			h.colors["negative"].Fprintf(h.out, "%s", strings.Join(info.NegativeKeywords[:min(5, len(info.NegativeKeywords))], ", "))
			if len(info.NegativeKeywords) > 5 {
				h.println("\n     and others...")
			} else {
				h.println()
			}
		}
		h.println()
	}

	h.colors["header"].Fprintln(h.out, "Confidence Levels:")
	fmt.Fprint(h.out, "- ")
	h.colors["negative"].Fprint(h.out, "HIGH")
	h.println(" (0.90-1.00)")
	fmt.Fprint(h.out, "- ")
	h.colors["warning"].Fprint(h.out, "MEDIUM")
	h.println(" (0.60-0.89)")
	fmt.Fprint(h.out, "- ")
	h.colors["positive"].Fprint(h.out, "LOW")
	h.println(" (below 0.60; built-in matches under detection.min_confidence are not redacted)")
	h.println()

	if info.ConfigurationInfo != "" {
		h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
		h.println(info.ConfigurationInfo)
		h.println()
	}

	if len(info.Examples) > 0 {
		h.colors["header"].Fprintln(h.out, "EXAMPLES:")
		for _, example := range info.Examples {
			fmt.Fprint(h.out, "  ")
			h.colors["example"].Fprintln(h.out, example)
		}
	}

	return true
}
