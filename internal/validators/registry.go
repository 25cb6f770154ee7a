// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package validators

import (
	"errors"
	"sort"
	"sync"

	"ciphershield/internal/detector"
	"ciphershield/internal/help"
	"ciphershield/internal/observability"
	"ciphershield/internal/validators/creditcard"
	"ciphershield/internal/validators/email"
	"ciphershield/internal/validators/ipaddress"
	"ciphershield/internal/validators/phone"
	"ciphershield/internal/validators/ssn"
)

// DefaultMinConfidence is the score below which built-in spans are dropped
const DefaultMinConfidence = 0.5

// Builtin is a recognizer shipped with the binary
type Builtin interface {
	detector.Recognizer
	help.Provider
	SetObserver(observer *observability.StandardObserver)
}

// Options configures the analyzer built from the built-in recognizers
type Options struct {
	// Entities limits the built-in recognizers; empty enables all
	Entities []string

	// MinConfidence drops spans scoring below it. Nil means DefaultMinConfidence.
	MinConfidence *float64

	// Custom recognizers registered for every request
	Custom []detector.Definition

	Observer *observability.StandardObserver
}

// Builtins returns a fresh instance of every built-in recognizer
func Builtins() []Builtin {
	return []Builtin{
		email.NewValidator(),
		phone.NewValidator(),
		ssn.NewValidator(),
		creditcard.NewValidator(),
		ipaddress.NewValidator(),
	}
}

// EntityTypes lists the entity types the built-in recognizers emit, sorted
func EntityTypes() []string {
	var types []string
	for _, b := range Builtins() {
		types = append(types, b.EntityType())
	}
	sort.Strings(types)
	return types
}

// NewAnalyzer builds an analyzer from the built-in recognizers and opts.Custom
func NewAnalyzer(opts Options) (*detector.Analyzer, error) {
	custom, err := detector.Compile(opts.Custom)
	if err != nil {
		return nil, err
	}

	builtins := Builtins()
	recognizers := make([]detector.Recognizer, 0, len(builtins)+len(custom))
	for _, b := range builtins {
		b.SetObserver(opts.Observer)
		recognizers = append(recognizers, b)
	}

	// Configured custom recognizers always run, so their types join any restriction.
	entities := append([]string(nil), opts.Entities...)
	for _, r := range custom {
		recognizers = append(recognizers, r)
		if len(entities) > 0 {
			entities = append(entities, r.EntityType())
		}
	}

	a := detector.NewAnalyzer(recognizers...)
	a.SetObserver(opts.Observer)
	a.RestrictEntities(entities)

	threshold := DefaultMinConfidence
	if opts.MinConfidence != nil {
		threshold = *opts.MinConfidence
	}
	a.SetMinConfidence(threshold)
	return a, nil
}

// ErrAlreadyInitialized is returned by Init once the shared analyzer exists
var ErrAlreadyInitialized = errors.New("shared analyzer already initialized")

var shared struct {
	once     sync.Once
	analyzer *detector.Analyzer
	err      error
}

// Init builds the process-wide analyzer with opts. It must run before the first
// call to Shared; afterwards it returns ErrAlreadyInitialized.
func Init(opts Options) error {
	ran := false
	shared.once.Do(func() {
		ran = true
		shared.analyzer, shared.err = NewAnalyzer(opts)
	})
	if !ran {
		return ErrAlreadyInitialized
	}
	return shared.err
}

// Shared returns the process-wide analyzer, building it with default options on first use
func Shared() (*detector.Analyzer, error) {
	shared.once.Do(func() {
		shared.analyzer, shared.err = NewAnalyzer(Options{})
	})
	return shared.analyzer, shared.err
}
