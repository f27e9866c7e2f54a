// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/cwccie/netopshub/pkg/agents"
	"github.com/cwccie/netopshub/pkg/collect"
	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/monitor"
	"github.com/cwccie/netopshub/pkg/util/log"
	"github.com/cwccie/netopshub/pkg/version"
)

type chatRequest struct {
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

type chatResponse struct {
	Response string `json:"response"`
	Agent    string `json:"agent,omitempty"`
}

type alertAckRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

type scanRequest struct {
	Subnet    string `json:"subnet"`
	Community string `json:"community"`
}

type complianceAuditRequest struct {
	Framework string `json:"framework,omitempty"`
	DeviceID  string `json:"device_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": version.Version,
		"collector": map[string]interface{}{
			"running":       s.state.Collector.IsRunning(),
			"total_metrics": s.state.Collector.TotalMetrics(),
		},
		"devices": s.state.Scanner.DiscoveredCount(),
		"alerts":  s.state.AlertManager.GetSummary(),
		"agents":  s.state.Coordinator.Status(),
	})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	devices := s.state.Scanner.GetDiscoveredDevices()
	if len(devices) == 0 {
		var err error
		devices, err = s.state.Scanner.ScanSubnet(r.Context(), "10.0.0.0/24", "public")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.state.Topology.AddDevices(devices)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"devices": devices,
		"total":   len(devices),
	})
}

func (s *Server) handleScanDevices(w http.ResponseWriter, r *http.Request) {
	req := scanRequest{Subnet: "10.0.0.0/24", Community: "public"}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	devices, err := s.state.Scanner.ScanSubnet(r.Context(), req.Subnet, req.Community)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.state.Topology.AddDevices(devices)
	writeJSON(w, http.StatusOK, map[string]interface{}{"devices_found": len(devices)})
}

func (s *Server) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	// Seed the demo pipeline on first query.
	if s.state.Collector.TotalMetrics() == 0 {
		for _, host := range []string{"10.0.0.1", "10.0.0.2", "10.0.1.1"} {
			s.state.Collector.SNMP.AddTarget(collect.SNMPTarget{Host: host})
		}
		s.state.Collector.CollectAll(r.Context())
	}

	q := r.URL.Query()
	filter := collect.MetricFilter{
		DeviceID:   q.Get("device_id"),
		MetricType: model.MetricType(q.Get("metric_type")),
		Limit:      queryInt(r, "limit", 100, 1000),
	}
	metrics := s.state.Collector.GetMetrics(filter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics": metrics,
		"total":   len(metrics),
	})
}

func (s *Server) handleTriggerCollection(w http.ResponseWriter, r *http.Request) {
	metrics := s.state.Collector.CollectAll(r.Context())
	alerts := s.state.HealthMonitor.ProcessMetrics(metrics)
	s.state.AlertManager.AddAlerts(alerts)
	s.state.SLAMonitor.ProcessMetrics(metrics)
	anomalies := s.state.Detector.DetectBatch(metrics)
	log.Infof("Collection cycle: %d metrics, %d alerts, %d anomalies",
		len(metrics), len(alerts), len(anomalies))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"metrics_collected":  len(metrics),
		"alerts_generated":   len(alerts),
		"anomalies_detected": len(anomalies),
	})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := monitor.AlertFilter{
		State:    model.AlertState(q.Get("state")),
		Severity: model.AlertSeverity(q.Get("severity")),
		DeviceID: q.Get("device_id"),
		Limit:    queryInt(r, "limit", 100, 1000),
	}
	alerts := s.state.AlertManager.GetAlerts(filter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts":  alerts,
		"total":   len(alerts),
		"summary": s.state.AlertManager.GetSummary(),
	})
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	var req alertAckRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	alertID := mux.Vars(r)["alert_id"]
	alert, ok := s.state.AlertManager.Acknowledge(alertID, req.AcknowledgedBy)
	if !ok {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	alertID := mux.Vars(r)["alert_id"]
	alert, ok := s.state.AlertManager.Resolve(alertID)
	if !ok {
		writeError(w, http.StatusNotFound, "Alert not found")
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleTopology(w http.ResponseWriter, _ *http.Request) {
	if s.state.Topology.DeviceCount() == 0 {
		s.state.Topology.BuildDemoTopology()
	}
	writeJSON(w, http.StatusOK, s.state.Topology.BuildTopology())
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	response := s.state.Coordinator.Chat(r.Context(), req.Message, req.Context)
	writeJSON(w, http.StatusOK, chatResponse{Response: response})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50, 200)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": s.state.Coordinator.Conversation(limit),
	})
}

func (s *Server) handleComplianceAudit(w http.ResponseWriter, r *http.Request) {
	var req complianceAuditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	taskType := "audit_all"
	if req.DeviceID != "" {
		taskType = "audit"
	}
	task := agents.NewTask("compliance", taskType, "Compliance audit", map[string]interface{}{
		"framework": req.Framework,
		"device_id": req.DeviceID,
	})
	result := s.state.Coordinator.Process(r.Context(), task)
	if result.Status == model.TaskFailed {
		writeError(w, http.StatusInternalServerError, result.Error)
		return
	}
	writeJSON(w, http.StatusOK, result.OutputData)
}

func (s *Server) handleComplianceStatus(w http.ResponseWriter, r *http.Request) {
	task := agents.NewTask("compliance", "audit_all", "Get compliance status", map[string]interface{}{})
	result := s.state.Coordinator.Process(r.Context(), task)
	writeJSON(w, http.StatusOK, result.OutputData)
}

func (s *Server) handleSLA(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.SLAMonitor.GetComplianceSummary())
}

func (s *Server) handleAgents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.state.Coordinator.Status())
}

// queryInt parses an integer query parameter with default and cap.
func queryInt(r *http.Request, key string, def, max int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
