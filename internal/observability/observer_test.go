// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardObserver_DebugWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityDebug, &buf)

	done := obs.StartTiming("pipeline", "anonymize", "notes.txt")
	done(true, map[string]interface{}{"request_id": "req-fixed", "items": 2})

	var data StandardObservabilityData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "pipeline", data.Component)
	assert.Equal(t, "anonymize", data.Operation)
	assert.Equal(t, "req-fixed", data.RequestID)
	assert.True(t, data.Success)
}

func TestStandardObserver_MetricsLevelIsSilent(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, &buf)
	obs.StartTiming("aead", "open", "")(false, nil)
	assert.Zero(t, buf.Len())
}

func TestStandardObserver_NilIsSafe(t *testing.T) {
	var obs *StandardObserver
	assert.NotPanics(t, func() {
		obs.StartTiming("x", "y", "")(true, nil)
		obs.LogOperation(StandardObservabilityData{})
	})
	assert.Equal(t, ObservabilityOff, obs.Level())

	var dbg *DebugObserver
	assert.NotPanics(t, func() {
		dbg.StartStep("x", "y", "")(true, "")
		dbg.LogDetail("x", "y")
		dbg.LogMetric("x", "y", 1)
	})
}

func TestNewRequestID_Unique(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "req-"))
}

func TestDebugObserver_Steps(t *testing.T) {
	var buf bytes.Buffer
	dbg := NewDebugObserver(&buf)
	assert.Same(t, dbg, dbg.StandardObserver.DebugObserver)

	end := dbg.StartStep("pipeline", "extract", "a.csv")
	dbg.LogDetail("formats", "4 units")
	end(true, "ok")

	out := buf.String()
	assert.Contains(t, out, "pipeline: extract (a.csv)")
	assert.Contains(t, out, "   → formats: 4 units")
	assert.Contains(t, out, "extract completed")
}

func TestMetrics_RecordAndServe(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("anonymize", "csv", "ok", 20*time.Millisecond)
	m.AddRedaction("EMAIL_ADDRESS")
	m.AddRedaction("EMAIL_ADDRESS")
	m.AddConfidenceFallbacks(3)
	m.AddConfidenceFallbacks(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("anonymize", "csv", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.redactions.WithLabelValues("EMAIL_ADDRESS")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.fallbacks))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ciphershield_redactions_total")
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("a", "b", "ok", time.Second)
		m.AddRedaction("X")
		m.AddConfidenceFallbacks(1)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
