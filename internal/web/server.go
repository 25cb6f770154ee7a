// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ciphershield/internal/config"
	"ciphershield/internal/observability"
	"ciphershield/internal/pipeline"
	"ciphershield/internal/version"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

// WebServer represents the web server instance
type WebServer struct {
	port     int
	server   *http.Server
	cfg      *config.Config
	pipeline *pipeline.Pipeline
	metrics  *observability.Metrics
	observer *observability.StandardObserver
	limiter  *rate.Limiter
	router   *mux.Router
}

// NewWebServer creates a new web server instance. metrics and observer may be nil.
func NewWebServer(cfg *config.Config, p *pipeline.Pipeline, metrics *observability.Metrics, observer *observability.StandardObserver) *WebServer {
	ws := &WebServer{
		port:     cfg.Server.Port,
		cfg:      cfg,
		pipeline: p,
		metrics:  metrics,
		observer: observer,
	}
	if cfg.Server.RateLimit > 0 {
		burst := cfg.Server.Burst
		if burst < 1 {
			burst = 1
		}
		ws.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), burst)
	}
	ws.setupRoutes()
	return ws
}

// Handler returns the routed handler with middleware applied
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// setupRoutes configures all HTTP route handlers
func (ws *WebServer) setupRoutes() {
	router := mux.NewRouter()
	router.Use(ws.withRequestID, ws.withRateLimit)

	router.HandleFunc("/health", ws.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", ws.metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/process_text", ws.handleProcessText).Methods(http.MethodPost)
	router.HandleFunc("/process_file", ws.handleProcessFile).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.sendErrorWithStatus(w, "no such endpoint: "+r.URL.Path, "NotFound", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.sendErrorWithStatus(w, "method "+r.Method+" not allowed", "MethodNotAllowed", http.StatusMethodNotAllowed)
	})

	ws.router = router
}

// Start listens on the configured port, or the next free one of the following nine,
// and serves until ctx is cancelled
func (ws *WebServer) Start(ctx context.Context) error {
	var listener net.Listener
	var lastError error
	for i := 0; i < 10; i++ {
		currentPort := ws.port + i
		l, err := net.Listen("tcp", ":"+strconv.Itoa(currentPort))
		if err != nil {
			lastError = err
			if i == 0 {
				fmt.Printf("Port %d is not available, trying alternative ports...\n", currentPort)
			}
			continue
		}
		listener = l
		ws.port = currentPort
		break
	}
	if listener == nil {
		return fmt.Errorf("could not find an available port in range %d-%d\n"+
			"Last error: %v\n"+
			"Troubleshooting:\n"+
			"  1. Try a specific port with -port <number>\n"+
			"  2. Ensure you have permission to bind to the requested port", ws.port, ws.port+9, lastError)
	}

	ws.server = ws.createSecureServer()
	fmt.Printf("CipherShield API listening on http://localhost:%d\n", ws.port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- ws.server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ws.server.Shutdown(shutdownCtx)
	}
}

// Stop stops the web server
func (ws *WebServer) Stop() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

// Port returns the port the server is bound to once Start has picked one
func (ws *WebServer) Port() int {
	return ws.port
}

// createSecureServer creates an HTTP server with security timeouts
func (ws *WebServer) createSecureServer() *http.Server {
	return &http.Server{
		Handler: ws.router,
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		// Timeout for reading entire request
		ReadTimeout: 60 * time.Second,
		// PDF extraction of large documents dominates the write side
		WriteTimeout: 120 * time.Second,
		// Timeout for idle connections
		IdleTimeout: 60 * time.Second,
	}
}

// handleHealth provides a health check endpoint with version information
func (ws *WebServer) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	build := version.Current()

	healthData := map[string]interface{}{
		"status":     "healthy",
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"service":    "ciphershield",
		"version":    build.Version,
		"build_info": build,
	}

	ws.sendJSON(responseWriter, http.StatusOK, healthData)
}

func (ws *WebServer) sendJSON(responseWriter http.ResponseWriter, statusCode int, body interface{}) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	json.NewEncoder(responseWriter).Encode(body)
}

// sanitizeUserInput removes dangerous characters from user input for safe output
func sanitizeUserInput(input string, maxLength int) string {
	// Remove control characters, null bytes, and other dangerous characters
	sanitized := strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		switch r {
		case '"', '\'', '&':
			return -1
		}
		return r
	}, input)

	// Limit length to prevent response bloat
	if len(sanitized) > maxLength {
		sanitized = sanitized[:maxLength] + "..."
	}

	return sanitized
}
