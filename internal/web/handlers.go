// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"ciphershield/internal/aead"
	"ciphershield/internal/detector"
	"ciphershield/internal/mapper"
	"ciphershield/internal/observability"
	"ciphershield/internal/paths"
	"ciphershield/internal/pipeline"
	"ciphershield/internal/resilience"
	"ciphershield/internal/security"
)

// TextRequest is the body of POST /process_text
type TextRequest struct {
	Action            string                `json:"action"`
	Text              string                `json:"text"`
	Mappings          []mapper.MappingItem  `json:"mappings,omitempty"`
	CustomRecognizers []detector.Definition `json:"custom_recognizers,omitempty"`
}

// TextResponse is returned by POST /process_text
type TextResponse struct {
	Text  string               `json:"text"`
	Items []mapper.MappingItem `json:"items"`
}

// FileRequest is the body of POST /process_file
type FileRequest struct {
	InputPath         string                `json:"input_path"`
	OutputPath        string                `json:"output_path"`
	Action            string                `json:"action"`
	Key               string                `json:"key"`
	Mappings          []mapper.MappingItem  `json:"mappings,omitempty"`
	OriginalExt       string                `json:"original_ext,omitempty"`
	CustomRecognizers []detector.Definition `json:"custom_recognizers,omitempty"`
}

// FileResponse is returned by POST /process_file
type FileResponse struct {
	OutputPath string               `json:"output_path"`
	Items      []mapper.MappingItem `json:"items"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
	RequestID string `json:"request_id,omitempty"`
}

// handleProcessText anonymizes or restores plain text without the encryption layer
func (ws *WebServer) handleProcessText(responseWriter http.ResponseWriter, request *http.Request) {
	var body TextRequest
	if !ws.decodeBody(responseWriter, request, &body) {
		return
	}

	action, err := pipeline.ParseAction(body.Action)
	if err != nil {
		ws.sendError(responseWriter, request, err)
		return
	}

	text, items, err := ws.pipeline.ProcessText(request.Context(), action, body.Text, body.Mappings, body.CustomRecognizers)
	if err != nil {
		ws.sendError(responseWriter, request, err)
		return
	}
	if items == nil {
		items = []mapper.MappingItem{}
	}
	ws.sendJSON(responseWriter, http.StatusOK, TextResponse{Text: text, Items: items})
}

// handleProcessFile transforms an encrypted file on the server's filesystem
func (ws *WebServer) handleProcessFile(responseWriter http.ResponseWriter, request *http.Request) {
	var body FileRequest
	if !ws.decodeBody(responseWriter, request, &body) {
		return
	}

	action, err := pipeline.ParseAction(body.Action)
	if err != nil {
		ws.sendError(responseWriter, request, err)
		return
	}
	if err := ws.checkPaths(body.InputPath, body.OutputPath); err != nil {
		ws.sendError(responseWriter, request, err)
		return
	}

	key, err := aead.ParseHexKey(body.Key)
	if err != nil {
		ws.sendError(responseWriter, request, err)
		return
	}
	defer security.Wipe(key)

	res, err := ws.pipeline.ProcessFile(request.Context(), pipeline.FileRequest{
		Request: pipeline.Request{
			Action:          action,
			Key:             key,
			Format:          body.OriginalExt,
			Mappings:        body.Mappings,
			CustomDetectors: body.CustomRecognizers,
			RequestID:       requestIDFrom(request.Context()),
		},
		InputPath:  body.InputPath,
		OutputPath: body.OutputPath,
	})
	if err != nil {
		ws.sendError(responseWriter, request, err)
		return
	}

	ws.sendJSON(responseWriter, http.StatusOK, FileResponse{OutputPath: res.OutputPath, Items: res.Items})
}

// checkPaths keeps process_file inside server.file_root, or the working directory
// when none is configured. Symlinks are resolved before the comparison.
func (ws *WebServer) checkPaths(targets ...string) error {
	root := paths.NormalizePath(ws.cfg.Server.FileRoot)
	if root == "" {
		root = "."
	}
	realRoot, err := resolvePath(root)
	if err != nil {
		return resilience.New(resilience.ErrorTypeInvalidInput, "resolve file root", err)
	}
	for _, p := range targets {
		if p == "" {
			continue
		}
		resolved, err := resolvePath(p)
		if err != nil {
			return resilience.Newf(resilience.ErrorTypeInvalidInput, "path %s cannot be resolved", p)
		}
		rel, err := filepath.Rel(realRoot, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return resilience.Newf(resilience.ErrorTypeInvalidInput, "path %s is outside the configured file root", p)
		}
	}
	return nil
}

// resolvePath returns the absolute, symlink-free form of p. A path that does not
// exist yet, such as an output file, is resolved through its parent directory.
func resolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	dir, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(abs)), nil
}

// decodeBody reads a size-limited JSON body, writing the error response itself on failure
func (ws *WebServer) decodeBody(responseWriter http.ResponseWriter, request *http.Request, dst interface{}) bool {
	request.Body = http.MaxBytesReader(responseWriter, request.Body, ws.cfg.MaxBodyBytes())

	decoder := json.NewDecoder(request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), "InvalidInput", http.StatusRequestEntityTooLarge)
			return false
		}
		ws.sendError(responseWriter, request, resilience.New(resilience.ErrorTypeInvalidInput, "malformed JSON body", err))
		return false
	}
	return true
}

// statusFor maps an error kind to an HTTP status code
func statusFor(kind resilience.ErrorType) int {
	switch kind {
	case resilience.ErrorTypeInvalidInput, resilience.ErrorTypeInvalidKey, resilience.ErrorTypeInvalidFraming,
		resilience.ErrorTypeUnsupportedFormat, resilience.ErrorTypeMissingMappings:
		return http.StatusBadRequest
	case resilience.ErrorTypeEncoding, resilience.ErrorTypeExtraction, resilience.ErrorTypeAmbiguousReversal:
		return http.StatusUnprocessableEntity
	case resilience.ErrorTypeAuthenticationFailure:
		return http.StatusForbidden
	case resilience.ErrorTypeDetectionFailure, resilience.ErrorTypeTransient:
		return http.StatusServiceUnavailable
	case resilience.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// sendError writes a classified error. A detection failure caused by the caller's own
// custom recognizer is permanent and reported as 422 rather than 503.
func (ws *WebServer) sendError(responseWriter http.ResponseWriter, request *http.Request, err error) {
	classified := resilience.ClassifyError(err)
	status := statusFor(classified.Type)
	if classified.Type == resilience.ErrorTypeDetectionFailure && !classified.Retryable {
		status = http.StatusUnprocessableEntity
	}
	if classified.Retryable {
		responseWriter.Header().Set("Retry-After", "1")
	}

	message := classified.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}

	ws.observer.LogOperation(observability.StandardObservabilityData{
		Component: "web",
		Operation: request.URL.Path,
		Success:   false,
		Error:     classified.Type.String(),
		RequestID: requestIDFrom(request.Context()),
	})

	ws.sendJSON(responseWriter, status, ErrorResponse{
		Success:   false,
		Error:     sanitizeUserInput(message, 500),
		Kind:      classified.Type.String(),
		Retryable: classified.Retryable,
		RequestID: requestIDFrom(request.Context()),
	})
}

// sendErrorWithStatus sends an error response that has no classified cause
func (ws *WebServer) sendErrorWithStatus(responseWriter http.ResponseWriter, message, kind string, statusCode int) {
	ws.sendJSON(responseWriter, statusCode, ErrorResponse{
		Success: false,
		Error:   sanitizeUserInput(message, 500),
		Kind:    kind,
	})
}

type requestIDKey struct{}

// withRequestID propagates X-Request-ID or assigns a fresh one
func (ws *WebServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sanitizeUserInput(r.Header.Get("X-Request-ID"), 64)
		if id == "" {
			id = observability.NewRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// withRateLimit rejects requests beyond server.rate_limit with 429
func (ws *WebServer) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ws.limiter != nil && r.URL.Path != "/health" && !ws.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			ws.sendErrorWithStatus(w, "rate limit exceeded", "RateLimited", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
