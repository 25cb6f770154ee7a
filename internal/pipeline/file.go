// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ciphershield/internal/formats"
	"ciphershield/internal/resilience"
)

// FileRequest transforms an encrypted file on disk. The format is taken from
// Format when set, otherwise from the input name with any ".enc" suffix removed.
type FileRequest struct {
	Request
	InputPath  string
	OutputPath string
}

// FileResult reports where the sealed output was written
type FileResult struct {
	*Result
	OutputPath string
}

// ProcessFile reads InputPath, runs Process and writes the sealed output atomically.
// Nothing is written when any stage fails.
func (p *Pipeline) ProcessFile(ctx context.Context, req FileRequest) (*FileResult, error) {
	if req.InputPath == "" {
		return nil, resilience.New(resilience.ErrorTypeInvalidInput, "input path is required", nil)
	}
	if req.Format == "" {
		f, err := formats.FromFilename(req.InputPath)
		if err != nil {
			return nil, err
		}
		req.Format = f.String()
	}
	if req.OutputPath == "" {
		req.OutputPath = DefaultOutputPath(req.InputPath, req.Action, req.Format)
	}
	if same(req.InputPath, req.OutputPath) {
		return nil, resilience.Newf(resilience.ErrorTypeInvalidInput, "output would overwrite input %s", req.InputPath)
	}

	data, err := os.ReadFile(req.InputPath)
	if err != nil {
		return nil, resilience.New(resilience.ErrorTypeInvalidInput, "read input", err)
	}
	req.Source = data

	result, err := p.Process(ctx, req.Request)
	if err != nil {
		return nil, err
	}

	if err := WriteFileAtomic(req.OutputPath, result.Output, 0o600); err != nil {
		return nil, resilience.NewTransientError("write output", err)
	}
	return &FileResult{Result: result, OutputPath: req.OutputPath}, nil
}

// DefaultOutputPath names the output next to the input: report.csv.enc becomes
// report.anonymized.csv.enc. PDF output is text, so its extension becomes .txt.
func DefaultOutputPath(input string, action Action, format string) string {
	dir := filepath.Dir(input)
	base := strings.TrimSuffix(filepath.Base(input), ".enc")
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	if f, err := formats.ParseFormat(format); err == nil {
		ext = "." + f.String()
		if f == formats.FormatPDF {
			ext = ".txt"
		}
	}
	suffix := "anonymized"
	if action == ActionDeanonymize {
		suffix = "restored"
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s%s.enc", stem, suffix, ext))
}

// WriteFileAtomic writes data to a temporary file in path's directory and renames it into place
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func same(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
