// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ciphershield/internal/aead"
	"ciphershield/internal/formats"
	"ciphershield/internal/formatters"
	"ciphershield/internal/mapper"
	"ciphershield/internal/observability"
	"ciphershield/internal/pipeline"
	"ciphershield/internal/redactors"
	"ciphershield/internal/resilience"
	"ciphershield/internal/security"
	"ciphershield/internal/web"

	"github.com/fatih/color"
)

func runKeygen(env *environment, args []string) error {
	fs := newFlagSet(env, "keygen", "[-out FILE]")
	out := fs.String("out", "", "Write the key to FILE (mode 0600) instead of stdout")
	if err := parse(fs, args); err != nil {
		return err
	}

	key, err := aead.GenerateKey()
	if err != nil {
		return err
	}
	defer security.Wipe(key)
	encoded := aead.EncodeKey(key)

	if *out == "" {
		fmt.Fprintln(env.stdout, encoded)
		return nil
	}
	if err := pipeline.WriteFileAtomic(*out, []byte(encoded+"\n"), 0o600); err != nil {
		return fmt.Errorf("write key: %w", err)
	}
	fmt.Fprintf(env.stderr, "Key written to %s\n", *out)
	return nil
}

func runEncrypt(env *environment, args []string) error {
	fs := newFlagSet(env, "encrypt", "-in FILE [-out FILE] (-key HEX | -key-file FILE | -passphrase)")
	var keys keyFlags
	keys.register(fs)
	in := fs.String("in", "", "Plaintext input file")
	out := fs.String("out", "", "Sealed output file (default: input name + .enc)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *in == "" {
		return usagef("-in is required")
	}
	if *out == "" {
		*out = *in + ".enc"
	}

	key, passphrase, err := keys.resolve(env, true)
	if err != nil {
		return err
	}
	defer security.Wipe(key)
	sealer, err := aead.NewSealer(key, passphrase)
	if err != nil {
		return err
	}

	plaintext, err := os.ReadFile(*in)
	if err != nil {
		return resilience.New(resilience.ErrorTypeInvalidInput, "read input", err)
	}
	defer security.Wipe(plaintext)

	sealed, err := sealer.Seal(plaintext)
	if err != nil {
		return err
	}
	if err := pipeline.WriteFileAtomic(*out, sealed, 0o600); err != nil {
		return resilience.NewTransientError("write output", err)
	}
	fmt.Fprintf(env.stderr, "Sealed %d bytes to %s\n", len(plaintext), *out)
	return nil
}

func runDecrypt(env *environment, args []string) error {
	fs := newFlagSet(env, "decrypt", "-in FILE [-out FILE] (-key HEX | -key-file FILE | -passphrase)")
	var keys keyFlags
	keys.register(fs)
	in := fs.String("in", "", "Sealed input file")
	out := fs.String("out", "", "Plaintext output file (default: stdout)")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *in == "" {
		return usagef("-in is required")
	}

	key, passphrase, err := keys.resolve(env, false)
	if err != nil {
		return err
	}
	defer security.Wipe(key)
	sealer, err := aead.NewSealer(key, passphrase)
	if err != nil {
		return err
	}

	sealed, err := os.ReadFile(*in)
	if err != nil {
		return resilience.New(resilience.ErrorTypeInvalidInput, "read input", err)
	}
	plaintext, err := sealer.Open(sealed)
	if err != nil {
		return err
	}
	defer security.Wipe(plaintext)

	if *out == "" {
		_, err := env.stdout.Write(plaintext)
		return err
	}
	if err := pipeline.WriteFileAtomic(*out, plaintext, 0o600); err != nil {
		return resilience.NewTransientError("write output", err)
	}
	return nil
}

// documentFlags are shared by anonymize and deanonymize
type documentFlags struct {
	common        commonFlags
	keys          keyFlags
	in            string
	out           string
	format        string
	mappings      string
	mappingFormat string
	entities      string
	style         string
	strict        bool
	retries       int
}

func (d *documentFlags) register(fs *flag.FlagSet) {
	d.common.register(fs)
	d.keys.register(fs)
	fs.StringVar(&d.in, "in", "", "Sealed input file")
	fs.StringVar(&d.out, "out", "", "Sealed output file (default: next to the input)")
	fs.StringVar(&d.format, "format", "", "Document format: txt, json, xml, csv or pdf (default: from the input name)")
	fs.StringVar(&d.mappingFormat, "mapping-format", "", "Mapping list format: json or yaml")
	fs.IntVar(&d.retries, "retries", -1, "Re-run the request this many times on retryable failures (default from config)")
}

// session resolves configuration and applies the document flags on top of it
func (d *documentFlags) session(env *environment) (*session, error) {
	if d.in == "" {
		return nil, usagef("-in is required")
	}
	s, err := d.common.setup(env)
	if err != nil {
		return nil, err
	}

	if d.entities != "" {
		s.cfg.Detection.Entities = splitList(d.entities)
	}
	if d.style != "" {
		if _, err := redactors.ParsePlaceholderStyle(d.style); err != nil {
			return nil, usagef("%v", err)
		}
		s.cfg.Redaction.PlaceholderStyle = d.style
	}
	if d.strict {
		s.cfg.Redaction.StrictReversal = true
	}
	if d.format == "" {
		if _, err := formats.FromFilename(d.in); err != nil {
			d.format = s.cfg.Defaults.Format
		}
	}
	if d.retries < 0 {
		d.retries = s.cfg.Defaults.Retries
	}
	return s, nil
}

// process runs one file request, re-running it on retryable failures when retries are enabled
func (d *documentFlags) process(s *session, p *pipeline.Pipeline, req pipeline.FileRequest) (*pipeline.FileResult, error) {
	ctx := context.Background()
	if d.retries <= 0 {
		return p.ProcessFile(ctx, req)
	}

	cfg := resilience.DefaultRetryConfig()
	cfg.MaxRetries = d.retries
	cfg.OnRetry = func(attempt int, err error) {
		fmt.Fprintf(s.stderr, "Retry %d/%d after %s\n", attempt, d.retries, resilience.KindOf(err))
	}
	return resilience.RetryWithResult[*pipeline.FileResult](ctx, cfg, func(ctx context.Context) (*pipeline.FileResult, error) {
		return p.ProcessFile(ctx, req)
	})
}

func runAnonymize(env *environment, args []string) error {
	fs := newFlagSet(env, "anonymize", "-in FILE [-out FILE] [-mappings FILE] [options]")
	var d documentFlags
	d.register(fs)
	fs.StringVar(&d.mappings, "mappings", "", "Write the mapping list to FILE (default: next to the output)")
	fs.StringVar(&d.entities, "entities", "", "Comma-separated entity types to detect (default: all)")
	fs.StringVar(&d.style, "style", "", "Placeholder style: entity or indexed")
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := d.session(env)
	if err != nil {
		return err
	}
	format := mappingFormat(d.mappingFormat, s.cfg, d.mappings)
	switch info := formatters.GetFormatInfo(format); {
	case info.Name == "":
		return usagef("unknown mapping format %q (available: %s)", format, strings.Join(formatters.ParseableFormats(), ", "))
	case !info.Parseable:
		return usagef("mapping format %q cannot be read back by deanonymize (use %s)", format, strings.Join(formatters.ParseableFormats(), " or "))
	}

	key, passphrase, err := d.keys.resolve(env, false)
	if err != nil {
		return err
	}
	defer security.Wipe(key)
	p, err := s.pipeline(nil)
	if err != nil {
		return err
	}

	result, err := d.process(s, p, pipeline.FileRequest{
		Request: pipeline.Request{
			Action:     pipeline.ActionAnonymize,
			Key:        key,
			Passphrase: passphrase,
			Format:     d.format,
		},
		InputPath:  d.in,
		OutputPath: d.out,
	})
	if err != nil {
		return err
	}

	// The output cannot be restored without its mapping list, so it does not outlive a failed write.
	mappingsPath := d.mappings
	if mappingsPath == "" {
		mappingsPath = defaultMappingsPath(result.OutputPath, format)
	}
	exported, err := exportMappings(format, result.Items, true, s.verbose, true)
	if err == nil {
		err = pipeline.WriteFileAtomic(mappingsPath, []byte(exported), 0o600)
	}
	if err != nil {
		if rmErr := os.Remove(result.OutputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			fmt.Fprintf(s.stderr, "Warning: could not remove %s: %v\n", result.OutputPath, rmErr)
		}
		return resilience.NewTransientError("write mappings", err)
	}

	s.summarize(result.Items)
	green := color.New(color.FgGreen)
	green.Fprintf(s.stdout, "Anonymized %s -> %s\n", d.in, result.OutputPath)
	fmt.Fprintf(s.stdout, "Mappings: %s (%s)\n", mappingsPath, format)
	if result.ConfidenceFallbacks > 0 {
		color.New(color.FgYellow).Fprintf(s.stdout, "%d replacement(s) did not line up with a detection and carry confidence 0.0\n", result.ConfidenceFallbacks)
	}
	return nil
}

func runDeanonymize(env *environment, args []string) error {
	fs := newFlagSet(env, "deanonymize", "-in FILE -mappings FILE [-out FILE] [options]")
	var d documentFlags
	d.register(fs)
	fs.StringVar(&d.mappings, "mappings", "", "Mapping list written by anonymize (required)")
	fs.BoolVar(&d.strict, "strict", false, "Fail with AmbiguousReversal when the mapping list cannot restore the document faithfully")
	if err := parse(fs, args); err != nil {
		return err
	}
	if d.mappings == "" {
		return usagef("-mappings is required")
	}

	s, err := d.session(env)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(d.mappings)
	if err != nil {
		return resilience.New(resilience.ErrorTypeInvalidInput, "read mappings", err)
	}
	defer security.Wipe(data)
	items, err := formatters.Parse(mappingFormat(d.mappingFormat, s.cfg, d.mappings), data)
	if err != nil {
		return resilience.New(resilience.ErrorTypeInvalidInput, "parse mappings", err)
	}

	key, passphrase, err := d.keys.resolve(env, false)
	if err != nil {
		return err
	}
	defer security.Wipe(key)
	p, err := s.pipeline(nil)
	if err != nil {
		return err
	}

	result, err := d.process(s, p, pipeline.FileRequest{
		Request: pipeline.Request{
			Action:     pipeline.ActionDeanonymize,
			Key:        key,
			Passphrase: passphrase,
			Format:     d.format,
			Mappings:   items,
		},
		InputPath:  d.in,
		OutputPath: d.out,
	})
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(s.stdout, "Restored %s -> %s (%d mapping(s) applied)\n", d.in, result.OutputPath, len(items))
	return nil
}

func runServe(env *environment, args []string) error {
	fs := newFlagSet(env, "serve", "[-port N] [options]")
	var common commonFlags
	common.register(fs)
	port := fs.Int("port", 0, "Port to listen on (default from config, 8080)")
	if err := parse(fs, args); err != nil {
		return err
	}

	s, err := common.setup(env)
	if err != nil {
		return err
	}
	if *port != 0 {
		s.cfg.Server.Port = *port
	}

	metrics := observability.NewMetrics()
	p, err := s.pipeline(metrics)
	if err != nil {
		return err
	}

	if s.cfg.Server.FileRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			fmt.Fprintf(s.stderr, "process_file is limited to %s (set server.file_root to change)\n", wd)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return web.NewWebServer(s.cfg, p, metrics, s.observer).Start(ctx)
}

// exportMappings renders items with the named formatter
func exportMappings(format string, items []mapper.MappingItem, showOriginals, verbose, noColor bool) (string, error) {
	return formatters.Export(format, items, formatters.FormatterOptions{
		Verbose:       verbose,
		NoColor:       noColor,
		ShowOriginals: showOriginals,
	})
}

// defaultMappingsPath names the mapping list after the sealed output:
// report.anonymized.csv.enc gets report.anonymized.csv.mappings.json
func defaultMappingsPath(output, format string) string {
	ext := formatters.GetFormatInfo(format).Extension
	if ext == "" {
		ext = ".json"
	}
	return strings.TrimSuffix(output, ".enc") + ".mappings" + ext
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}
