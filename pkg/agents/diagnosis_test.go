// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/model"
)

func TestDiagnoseNoAlerts(t *testing.T) {
	a := NewDiagnosisAgent()

	done := a.Process(context.Background(), NewTask("diagnosis", "diagnose", "", nil))
	require.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, "No alerts to analyze", done.OutputData["root_cause"])
	assert.Equal(t, 0.0, done.OutputData["confidence"])
}

func TestDiagnoseFindsRootDevice(t *testing.T) {
	a := NewDiagnosisAgent()

	task := NewTask("diagnosis", "diagnose", "", map[string]interface{}{
		"alerts": []map[string]interface{}{
			{"device_id": "switch-dist-1", "metric_type": "error_rate", "severity": "warning"},
			{"device_id": "router-core-1", "metric_type": "bgp_state", "severity": "critical"},
			{"device_id": "router-core-1", "metric_type": "error_rate", "severity": "warning"},
		},
	})
	done := a.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)

	assert.Equal(t, "router-core-1", done.OutputData["root_device"])
	assert.Equal(t, "Primary failure detected on device router-core-1", done.OutputData["root_cause"])
	assert.Equal(t, 0.85, done.OutputData["confidence"])
	assert.Equal(t, 3, done.OutputData["correlation_count"])
	// Affected devices keep first-seen order.
	assert.Equal(t, []string{"switch-dist-1", "router-core-1"}, done.OutputData["affected_devices"])
}

func TestDiagnoseTieKeepsFirstSeen(t *testing.T) {
	a := NewDiagnosisAgent()

	task := NewTask("diagnosis", "diagnose", "", map[string]interface{}{
		"alerts": []map[string]interface{}{
			{"device_id": "switch-dist-1", "metric_type": "cpu"},
			{"device_id": "router-core-1", "metric_type": "cpu"},
		},
	})
	done := a.Process(context.Background(), task)
	assert.Equal(t, "switch-dist-1", done.OutputData["root_device"])
}

func TestDiagnoseAlertWithoutDevice(t *testing.T) {
	a := NewDiagnosisAgent()

	task := NewTask("diagnosis", "diagnose", "", map[string]interface{}{
		"alerts": []map[string]interface{}{{"metric_type": "cpu"}},
	})
	done := a.Process(context.Background(), task)
	assert.Equal(t, "unknown", done.OutputData["root_device"])
}

func TestCorrelateAlerts(t *testing.T) {
	a := NewDiagnosisAgent()

	task := NewTask("diagnosis", "correlate", "", map[string]interface{}{
		"alerts": []map[string]interface{}{
			{"device_id": "router-core-1", "metric_type": "error_rate"},
			{"device_id": "switch-dist-1", "metric_type": "error_rate"},
			{"device_id": "switch-dist-2", "metric_type": "cpu"},
		},
	})
	done := a.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)

	correlations, ok := done.OutputData["correlations"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, correlations, 1)
	assert.Equal(t, 2, correlations[0]["group_size"])
	assert.Equal(t, "error_rate", correlations[0]["common_metric"])
	assert.Equal(t, []string{"router-core-1", "switch-dist-1"}, correlations[0]["devices"])
}

func TestCorrelateNoGroups(t *testing.T) {
	a := NewDiagnosisAgent()

	task := NewTask("diagnosis", "correlate", "", map[string]interface{}{
		"alerts": []map[string]interface{}{
			{"device_id": "router-core-1", "metric_type": "cpu"},
			{"device_id": "switch-dist-1", "metric_type": "memory"},
		},
	})
	done := a.Process(context.Background(), task)
	assert.Empty(t, done.OutputData["correlations"])
}

func TestAnalyzeAnomaly(t *testing.T) {
	a := NewDiagnosisAgent()

	// Nine steady samples and one spike: the spike sits well past two
	// population standard deviations from the mean.
	metrics := []map[string]interface{}{}
	for i := 0; i < 9; i++ {
		metrics = append(metrics, map[string]interface{}{
			"device_id": "router-core-1", "metric_type": "cpu", "value": 30.0,
		})
	}
	metrics = append(metrics, map[string]interface{}{
		"device_id": "router-core-1", "metric_type": "cpu", "value": 95.0,
	})

	task := NewTask("diagnosis", "analyze_anomaly", "", map[string]interface{}{"metrics": metrics})
	done := a.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)

	assert.Equal(t, "anomalies_detected", done.OutputData["status"])
	assert.Equal(t, 1, done.OutputData["anomaly_count"])
	anomalies, ok := done.OutputData["anomalies"].([]map[string]interface{})
	require.True(t, ok)
	require.Len(t, anomalies, 1)
	// 95 is 58.5 above the 36.5 mean, exactly 3 population sigmas.
	assert.Equal(t, "medium", anomalies[0]["severity"])
	assert.Equal(t, 3.0, anomalies[0]["z_score"])
}

func TestAnalyzeAnomalyNormal(t *testing.T) {
	a := NewDiagnosisAgent()

	task := NewTask("diagnosis", "analyze_anomaly", "", map[string]interface{}{
		"metrics": []map[string]interface{}{
			{"device_id": "r1", "metric_type": "cpu", "value": 30.0},
			{"device_id": "r1", "metric_type": "cpu", "value": 32.0},
			{"device_id": "r1", "metric_type": "cpu", "value": 31.0},
		},
	})
	done := a.Process(context.Background(), task)
	assert.Equal(t, "normal", done.OutputData["status"])
	assert.Equal(t, 31.0, done.OutputData["mean"])
}

func TestAnalyzeAnomalyNoData(t *testing.T) {
	a := NewDiagnosisAgent()

	done := a.Process(context.Background(), NewTask("diagnosis", "analyze_anomaly", "", nil))
	assert.Equal(t, "no_data", done.OutputData["status"])
}

func TestDiagnosisUnknownTaskType(t *testing.T) {
	a := NewDiagnosisAgent()

	done := a.Process(context.Background(), NewTask("diagnosis", "bogus", "", nil))
	assert.Equal(t, model.TaskFailed, done.Status)
	assert.Equal(t, "Unknown task type: bogus", done.Error)
}

func TestDiagnosisChatScenarios(t *testing.T) {
	a := NewDiagnosisAgent()
	ctx := context.Background()

	response := a.Chat(ctx, "Why is BGP flapping on router-core-1?", nil)
	assert.Contains(t, response, "BGP Flapping on router-core-1")
	assert.Contains(t, response, "Confidence:** 87%")

	response = a.Chat(ctx, "What's causing high CPU on switch-dist-1?", nil)
	assert.Contains(t, response, "High CPU on switch-dist-1")

	response = a.Chat(ctx, "Why is the interface down on switch-dist-1?", nil)
	assert.Contains(t, response, "Interface Down on switch-dist-1")

	response = a.Chat(ctx, "Diagnose packet loss on the WAN link", nil)
	assert.Contains(t, response, "Packet Loss")

	response = a.Chat(ctx, "What is the root cause here?", nil)
	assert.Contains(t, response, "root cause analysis")

	response = a.Chat(ctx, "tell me something", nil)
	assert.Contains(t, response, "Diagnosis Agent")

	// Every exchange is logged: 6 user turns and 6 replies.
	assert.Len(t, a.History(0), 12)
}

func TestExtractDeviceName(t *testing.T) {
	assert.Equal(t, "router-core-1", extractDeviceName("Why is BGP flapping on router-core-1?", "x"))
	assert.Equal(t, "switch-dist-2", extractDeviceName("diagnose device switch-dist-2 please", "x"))
	assert.Equal(t, "firewall-edge-1", extractDeviceName("is firewall-edge-1 healthy", "x"))
	assert.Equal(t, "fallback-device", extractDeviceName("no names here", "fallback-device"))
}
