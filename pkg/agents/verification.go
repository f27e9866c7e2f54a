// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cwccie/netopshub/pkg/model"
)

// VerificationAgent runs post-change validation: health checks on the
// affected device, verification that the change applied cleanly, and
// regression monitoring afterwards.
type VerificationAgent struct {
	baseAgent
	verifications []map[string]interface{}
}

func NewVerificationAgent() *VerificationAgent {
	return &VerificationAgent{
		baseAgent: newBaseAgent("verification", "Post-change validation and regression monitoring"),
	}
}

func (a *VerificationAgent) Process(_ context.Context, task *model.AgentTask) *model.AgentTask {
	task.Status = model.TaskRunning

	switch task.TaskType {
	case "verify_change":
		deviceID := inputString(task.InputData, "device_id", "")
		changeType := inputString(task.InputData, "change_type", "")
		result := verifyChange(deviceID, changeType)
		a.mu.Lock()
		a.verifications = append(a.verifications, result)
		a.mu.Unlock()
		return a.completeTask(task, result)

	case "health_check":
		deviceID := inputString(task.InputData, "device_id", "")
		return a.completeTask(task, healthCheck(deviceID))

	case "regression_check":
		deviceID := inputString(task.InputData, "device_id", "")
		return a.completeTask(task, regressionCheck(deviceID))

	default:
		return a.failTask(task, fmt.Sprintf("Unknown task type: %s", task.TaskType))
	}
}

func (a *VerificationAgent) Chat(_ context.Context, message string, _ map[string]interface{}) string {
	a.logMessage("user", message)
	lower := strings.ToLower(message)
	var response string

	switch {
	case strings.Contains(lower, "verify") || strings.Contains(lower, "check"):
		result := verifyChange("router-core-1", "bgp_fix")
		a.mu.Lock()
		a.verifications = append(a.verifications, result)
		a.mu.Unlock()
		response = formatVerification(result)
	case strings.Contains(lower, "health"):
		response = formatHealthCheck(healthCheck("router-core-1"))
	case strings.Contains(lower, "regression"):
		response = formatRegression(regressionCheck("router-core-1"))
	default:
		response = "I verify that changes were applied correctly and monitor for regressions.\n\n" +
			"Try:\n" +
			"- 'Verify the last change on router-core-1'\n" +
			"- 'Run a health check on switch-dist-1'\n" +
			"- 'Check for regressions'"
	}

	a.logMessage("assistant", response)
	return response
}

// VerificationCount reports how many verifications have run.
func (a *VerificationAgent) VerificationCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.verifications)
}

type verifyCheck struct {
	Check   string `json:"check"`
	Status  string `json:"status"`
	Details string `json:"details"`
}

func verifyChange(deviceID, changeType string) map[string]interface{} {
	checks := []verifyCheck{
		{"Configuration applied", "pass", "All commands accepted without errors"},
		{"Service impact", "pass", "No traffic loss detected during change"},
		{"BGP session status", "pass", "All BGP sessions Established"},
		{"Interface status", "pass", "All interfaces Up/Up"},
		{"Error counters", "pass", "No new errors post-change"},
		{"CPU impact", "pass", "CPU within normal range (28%)"},
		{"Memory impact", "pass", "Memory within normal range (52%)"},
		{"Routing table", "pass", "Expected prefix count (14,283) matches"},
	}

	passed := 0
	for _, c := range checks {
		if c.Status == "pass" {
			passed++
		}
	}
	overall := "fail"
	if passed == len(checks) {
		overall = "pass"
	}
	return map[string]interface{}{
		"device_id":      deviceID,
		"change_type":    changeType,
		"verified_at":    time.Now().UTC().Format(time.RFC3339),
		"overall_status": overall,
		"checks":         checks,
		"passed":         passed,
		"total":          len(checks),
		"summary":        fmt.Sprintf("%d/%d checks passed", passed, len(checks)),
	}
}

func healthCheck(deviceID string) map[string]interface{} {
	return map[string]interface{}{
		"device_id": deviceID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"overall":   "healthy",
		"checks": map[string]map[string]interface{}{
			"reachability":       {"status": "pass", "latency_ms": 2.3},
			"cpu":                {"status": "pass", "value": 28, "threshold": 85},
			"memory":             {"status": "pass", "value": 52, "threshold": 90},
			"interfaces":         {"status": "pass", "up": 7, "down": 1, "admin_down": 0},
			"bgp_peers":          {"status": "pass", "established": 4, "idle": 0},
			"ospf_neighbors":     {"status": "pass", "full": 3, "down": 0},
			"temperature":        {"status": "pass", "value": 42, "threshold": 75},
			"disk":               {"status": "pass", "value": 34, "threshold": 90},
			"uptime":             {"status": "pass", "days": 182},
			"last_config_change": {"status": "pass", "hours_ago": 2.3},
		},
	}
}

func regressionCheck(deviceID string) map[string]interface{} {
	return map[string]interface{}{
		"device_id":           deviceID,
		"monitoring_window":   "24h",
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"regression_detected": false,
		"metrics_monitored": []map[string]interface{}{
			{"metric": "cpu", "baseline": 25.0, "current": 28.0, "status": "normal"},
			{"metric": "memory", "baseline": 50.0, "current": 52.0, "status": "normal"},
			{"metric": "bgp_sessions", "baseline": 4, "current": 4, "status": "normal"},
			{"metric": "error_rate", "baseline": 0.02, "current": 0.01, "status": "improved"},
			{"metric": "latency", "baseline": 2.1, "current": 2.3, "status": "normal"},
		},
		"conclusion": "No regression detected. All metrics within baseline thresholds.",
	}
}

func formatVerification(result map[string]interface{}) string {
	lines := []string{
		fmt.Sprintf("**Change Verification — %s**\n", result["device_id"]),
		fmt.Sprintf("Overall: **%s** (%s)\n",
			strings.ToUpper(fmt.Sprint(result["overall_status"])), result["summary"]),
	}
	if checks, ok := result["checks"].([]verifyCheck); ok {
		for _, c := range checks {
			status := "FAIL"
			if c.Status == "pass" {
				status = "PASS"
			}
			lines = append(lines, fmt.Sprintf("  [%s] %s: %s", status, c.Check, c.Details))
		}
	}
	return strings.Join(lines, "\n")
}

func formatHealthCheck(result map[string]interface{}) string {
	lines := []string{
		fmt.Sprintf("**Health Check — %s**\n", result["device_id"]),
		fmt.Sprintf("Overall: **%s**\n", strings.ToUpper(fmt.Sprint(result["overall"]))),
	}
	if checks, ok := result["checks"].(map[string]map[string]interface{}); ok {
		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			check := checks[name]
			status := "FAIL"
			if check["status"] == "pass" {
				status = "PASS"
			}
			var details []string
			keys := make([]string, 0, len(check))
			for k := range check {
				if k != "status" {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for _, k := range keys {
				details = append(details, fmt.Sprintf("%s=%v", k, check[k]))
			}
			lines = append(lines, fmt.Sprintf("  [%s] %s: %s", status, name, strings.Join(details, ", ")))
		}
	}
	return strings.Join(lines, "\n")
}

func formatRegression(result map[string]interface{}) string {
	regression := "NO"
	if detected, _ := result["regression_detected"].(bool); detected {
		regression = "YES"
	}
	lines := []string{
		fmt.Sprintf("**Regression Check — %s**\n", result["device_id"]),
		fmt.Sprintf("Window: %s\n", result["monitoring_window"]),
		fmt.Sprintf("Regression: **%s**\n", regression),
	}
	if metrics, ok := result["metrics_monitored"].([]map[string]interface{}); ok {
		for _, m := range metrics {
			lines = append(lines, fmt.Sprintf("  %s: baseline=%v → current=%v [%s]",
				m["metric"], m["baseline"], m["current"], m["status"]))
		}
	}
	lines = append(lines, fmt.Sprintf("\n%s", result["conclusion"]))
	return strings.Join(lines, "\n")
}
