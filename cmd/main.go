// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"ciphershield/internal/config"
	"ciphershield/internal/formatters"
	"ciphershield/internal/help"
	"ciphershield/internal/mapper"
	"ciphershield/internal/observability"
	"ciphershield/internal/paths"
	"ciphershield/internal/pipeline"
	"ciphershield/internal/resilience"
	"ciphershield/internal/validators"
	"ciphershield/internal/version"

	_ "ciphershield/internal/formatters/json"
	_ "ciphershield/internal/formatters/text"
	_ "ciphershield/internal/formatters/yaml"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// usageError marks a problem with the command line rather than with processing
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	loadEnvFiles()
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// loadEnvFiles reads .env from the working directory and the config directory.
// Variables already set in the environment win.
func loadEnvFiles() {
	for _, path := range []string{".env", paths.GetEnvFile()} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", path, err)
		}
	}
}

// command is one subcommand
type command struct {
	name string
	run  func(env *environment, args []string) error
}

var commands = []command{
	{"keygen", runKeygen},
	{"encrypt", runEncrypt},
	{"decrypt", runDecrypt},
	{"anonymize", runAnonymize},
	{"deanonymize", runDeanonymize},
	{"serve", runServe},
	{"entities", runEntities},
	{"version", runVersion},
}

// environment carries the process streams through the subcommands
type environment struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run dispatches args to a subcommand and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	env := &environment{stdin: stdin, stdout: stdout, stderr: stderr}

	if len(args) == 0 {
		help.NewSystemWithWriter(stderr, !isTerminal(stderr)).ShowGeneralHelp()
		return exitUsage
	}

	switch args[0] {
	case "help", "-h", "-help", "--help":
		help.NewSystemWithWriter(stdout, !isTerminal(stdout)).ShowGeneralHelp()
		return exitOK
	case "-version", "--version":
		args = []string{"version"}
	}

	for _, cmd := range commands {
		if cmd.name != args[0] {
			continue
		}
		err := cmd.run(env, args[1:])
		return env.exitCode(err)
	}

	fmt.Fprintf(stderr, "Error: unknown command %q\n", args[0])
	fmt.Fprintln(stderr, "Run 'ciphershield help' for usage.")
	return exitUsage
}

// exitCode reports err and maps it to an exit code
func (env *environment) exitCode(err error) int {
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return exitOK
	}

	red := color.New(color.FgRed, color.Bold)
	var usage *usageError
	if errors.As(err, &usage) {
		red.Fprint(env.stderr, "Error: ")
		fmt.Fprintln(env.stderr, usage.msg)
		return exitUsage
	}

	red.Fprint(env.stderr, "Error: ")
	fmt.Fprintln(env.stderr, err)
	if classified := resilience.ClassifyError(err); classified.Type != resilience.ErrorTypeUnknown {
		retry := "permanent"
		if classified.Retryable {
			retry = "retryable"
		}
		fmt.Fprintf(env.stderr, "Kind: %s (%s)\n", classified.Type, retry)
	}
	return exitFailure
}

// commonFlags are accepted by every processing subcommand
type commonFlags struct {
	configFile string
	profile    string
	debug      bool
	verbose    bool
	noColor    bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&c.profile, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&c.debug, "debug", false, "Log pipeline steps to stderr")
	fs.BoolVar(&c.verbose, "verbose", false, "Show details for every replacement")
	fs.BoolVar(&c.noColor, "no-color", false, "Disable colored output")
}

// session is the resolved configuration for one subcommand invocation
type session struct {
	*environment
	cfg      *config.Config
	observer *observability.StandardObserver
	verbose  bool
	noColor  bool
}

// setup loads configuration and applies the profile and the common flags
func (c *commonFlags) setup(env *environment) (*session, error) {
	var cfg *config.Config
	if c.configFile != "" {
		loaded, err := config.LoadConfig(c.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadConfigOrDefault("")
	}

	if c.profile != "" {
		if err := cfg.ApplyProfile(c.profile); err != nil {
			return nil, usagef("%v", err)
		}
	}

	s := &session{
		environment: env,
		cfg:         cfg,
		verbose:     c.verbose || cfg.Defaults.Verbose,
		noColor:     c.noColor || cfg.Defaults.NoColor || !isTerminal(env.stdout),
	}
	if s.noColor {
		color.NoColor = true
	}
	if c.debug || cfg.Defaults.Debug {
		s.observer = observability.NewDebugObserver(env.stderr).StandardObserver
	}
	return s, nil
}

// pipeline builds the pipeline from the session configuration on top of the shared analyzer
func (s *session) pipeline(metrics *observability.Metrics) (*pipeline.Pipeline, error) {
	if err := config.ValidateConfig(s.cfg); err != nil {
		return nil, usagef("%v", err)
	}
	if err := validators.Init(s.cfg.ValidatorOptions(s.observer)); err != nil && !errors.Is(err, validators.ErrAlreadyInitialized) {
		return nil, err
	}
	analyzer, err := validators.Shared()
	if err != nil {
		return nil, err
	}
	return pipeline.NewFromConfig(s.cfg, analyzer, metrics, s.observer), nil
}

// newFlagSet returns a flag set that reports errors instead of exiting
func newFlagSet(env *environment, name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	fs.Usage = func() {
		fmt.Fprintf(env.stderr, "Usage: ciphershield %s %s\n\nFlags:\n", name, usage)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses args and rejects positional arguments
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usagef("%v", err)
	}
	if fs.NArg() > 0 {
		return usagef("unexpected argument %q", fs.Arg(0))
	}
	return nil
}

func runVersion(env *environment, args []string) error {
	fs := newFlagSet(env, "version", "[-verbose]")
	verbose := fs.Bool("verbose", false, "Also show the cipher suite, formats and entity types")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *verbose {
		fmt.Fprint(env.stdout, version.Details())
		return nil
	}
	fmt.Fprintln(env.stdout, version.Info())
	return nil
}

func runEntities(env *environment, args []string) error {
	fs := newFlagSet(env, "entities", "[ENTITY_TYPE]")
	var common commonFlags
	fs.BoolVar(&common.noColor, "no-color", false, "Disable colored output")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usagef("%v", err)
	}
	if fs.NArg() > 1 {
		return usagef("entities takes at most one entity type")
	}

	h := help.NewSystemWithWriter(env.stdout, common.noColor || !isTerminal(env.stdout))
	for _, builtin := range validators.Builtins() {
		h.RegisterProvider(builtin)
	}

	if fs.NArg() == 0 {
		h.ShowChecksHelp()
		return nil
	}
	if !h.ShowCheckHelp(fs.Arg(0)) {
		return usagef("unknown entity type %q", fs.Arg(0))
	}
	return nil
}

// mappingFormat picks the mapping file format: flag, then the file extension, then config
func mappingFormat(flagValue string, cfg *config.Config, path string) string {
	switch {
	case flagValue != "":
		return flagValue
	case path != "":
		return formatters.FormatForPath(path)
	case cfg.Defaults.MappingFormat != "":
		return cfg.Defaults.MappingFormat
	default:
		return "json"
	}
}

// summarize prints the replacement table for items to the session's stdout
func (s *session) summarize(items []mapper.MappingItem) {
	out, err := exportMappings("text", items, false, s.verbose, s.noColor)
	if err != nil {
		fmt.Fprintf(s.stderr, "Warning: %v\n", err)
		return
	}
	fmt.Fprint(s.stdout, out)
}

// isTerminal checks if the writer or reader is a terminal
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
