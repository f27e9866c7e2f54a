// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/config"
	"github.com/cwccie/netopshub/pkg/model"
)

func newTestServer(t *testing.T) (*Server, *State) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Set("demo_mode", true)
	state := NewState(cfg)
	return NewServer(state, "127.0.0.1:0"), state
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, apiJSON.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decodeResponse(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "0.4.0", body["version"])
}

func TestStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Equal(t, "0.4.0", body["version"])
	collector := body["collector"].(map[string]interface{})
	assert.Equal(t, false, collector["running"])
	assert.Equal(t, float64(0), collector["total_metrics"])
	assert.Equal(t, float64(0), body["devices"])
	assert.Len(t, body["agents"], 7)
}

func TestListDevicesAutoScans(t *testing.T) {
	s, state := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/devices", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Equal(t, float64(8), body["total"])
	assert.Len(t, body["devices"], 8)
	// The scan result feeds the shared topology.
	assert.Equal(t, 8, state.Topology.DeviceCount())

	// A second call serves the cached inventory.
	rec = doRequest(t, s, http.MethodGet, "/api/v1/devices", "")
	assert.Equal(t, float64(8), decodeResponse(t, rec)["total"])
}

func TestScanDevicesEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/devices/scan", `{"subnet":"10.0.0.0/24"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(8), decodeResponse(t, rec)["devices_found"])

	rec = doRequest(t, s, http.MethodPost, "/api/v1/devices/scan", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMetricsSeedsDemoPipeline(t *testing.T) {
	s, state := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// First query seeds three SNMP targets (12 metrics each) and the
	// demo REST endpoints (7 metrics).
	body := decodeResponse(t, rec)
	assert.Equal(t, float64(43), body["total"])
	assert.Equal(t, 43, state.Collector.TotalMetrics())

	rec = doRequest(t, s, http.MethodGet, "/api/v1/metrics?limit=5", "")
	assert.Equal(t, float64(5), decodeResponse(t, rec)["total"])

	rec = doRequest(t, s, http.MethodGet, "/api/v1/metrics?metric_type=cpu", "")
	// 1 CPU metric per SNMP target, 3 from Meraki, 2 from Arista and 1
	// from the generic endpoint.
	assert.Equal(t, float64(9), decodeResponse(t, rec)["total"])
}

func TestTriggerCollectionEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/metrics/collect", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// No SNMP targets registered yet, so a round yields only the demo
	// REST metrics.
	body := decodeResponse(t, rec)
	assert.Equal(t, float64(7), body["metrics_collected"])
	assert.Contains(t, body, "alerts_generated")
	assert.Equal(t, float64(0), body["anomalies_detected"])
}

func TestAlertLifecycleEndpoints(t *testing.T) {
	s, state := newTestServer(t)

	alert := state.AlertManager.AddAlert(model.Alert{
		ID:             model.NewID(),
		DeviceID:       "router-core-1",
		DeviceHostname: "router-core-1",
		MetricType:     model.MetricCPU,
		Severity:       model.SeverityCritical,
		State:          model.AlertActive,
		Title:          "CPU threshold exceeded on router-core-1",
		Source:         "health_monitor",
		CreatedAt:      time.Now().UTC(),
	})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Equal(t, float64(1), body["total"])

	rec = doRequest(t, s, http.MethodPost, "/api/v1/alerts/"+alert.ID+"/acknowledge", `{"acknowledged_by":"noc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	acked := decodeResponse(t, rec)
	assert.Equal(t, string(model.AlertAcknowledged), acked["state"])

	rec = doRequest(t, s, http.MethodPost, "/api/v1/alerts/"+alert.ID+"/resolve", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resolved := decodeResponse(t, rec)
	assert.Equal(t, string(model.AlertResolved), resolved["state"])
}

func TestAlertNotFound(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/alerts/bogus/acknowledge", `{"acknowledged_by":"noc"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Alert not found", decodeResponse(t, rec)["detail"])

	rec = doRequest(t, s, http.MethodPost, "/api/v1/alerts/bogus/resolve", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAlertFilterQuery(t *testing.T) {
	s, state := newTestServer(t)

	state.AlertManager.AddAlert(model.Alert{
		ID: model.NewID(), DeviceID: "r1", MetricType: model.MetricCPU,
		Severity: model.SeverityCritical, State: model.AlertActive,
		CreatedAt: time.Now().UTC(),
	})
	state.AlertManager.AddAlert(model.Alert{
		ID: model.NewID(), DeviceID: "r2", MetricType: model.MetricMemory,
		Severity: model.SeverityWarning, State: model.AlertActive,
		CreatedAt: time.Now().UTC(),
	})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/alerts?severity=critical", "")
	assert.Equal(t, float64(1), decodeResponse(t, rec)["total"])

	rec = doRequest(t, s, http.MethodGet, "/api/v1/alerts?device_id=r2", "")
	assert.Equal(t, float64(1), decodeResponse(t, rec)["total"])
}

func TestTopologyEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/topology", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// An empty topology is populated with the demo layout on demand.
	body := decodeResponse(t, rec)
	assert.Len(t, body["devices"], 8)
	assert.Len(t, body["links"], 12)
}

func TestChatEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/chat", `{"message":"Why is BGP flapping on router-core-1?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Contains(t, body["response"], "*[Diagnosis Agent]*")

	rec = doRequest(t, s, http.MethodPost, "/api/v1/chat", `{bad`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHistoryEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	doRequest(t, s, http.MethodPost, "/api/v1/chat", `{"message":"hello"}`)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/chat/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeResponse(t, rec)["messages"], 2)
}

func TestComplianceAuditEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodPost, "/api/v1/compliance/audit", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeResponse(t, rec)
	assert.Contains(t, body, "summary")
	assert.Contains(t, body, "devices")

	rec = doRequest(t, s, http.MethodPost, "/api/v1/compliance/audit", `{"device_id":"router-core-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeResponse(t, rec)
	assert.Equal(t, float64(10), body["total"])
	assert.Equal(t, float64(9), body["compliant"])
}

func TestComplianceStatusEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/compliance/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeResponse(t, rec), "summary")
}

func TestSLAEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/sla", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Equal(t, float64(4), body["total_targets"])
}

func TestAgentsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/agents", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Len(t, body, 7)
	assert.Contains(t, body, "diagnosis")
}

func TestCORSHeaders(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/health", nil)
	pre := httptest.NewRecorder()
	s.Router().ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?limit=25", nil)
	assert.Equal(t, 25, queryInt(req, "limit", 100, 1000))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	assert.Equal(t, 100, queryInt(req, "limit", 100, 1000))

	req = httptest.NewRequest(http.MethodGet, "/x?limit=-3", nil)
	assert.Equal(t, 100, queryInt(req, "limit", 100, 1000))

	req = httptest.NewRequest(http.MethodGet, "/x?limit=99999", nil)
	assert.Equal(t, 1000, queryInt(req, "limit", 100, 1000))
}
