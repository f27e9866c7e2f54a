// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/model"
)

func latencyMetric(deviceID string, value float64) model.Metric {
	return model.Metric{
		DeviceID:   deviceID,
		MetricType: model.MetricLatency,
		Value:      value,
		Unit:       "ms",
		Timestamp:  time.Now().UTC(),
	}
}

func findReport(t *testing.T, reports []model.SLAReport, name string) model.SLAReport {
	t.Helper()
	for _, r := range reports {
		if r.Target.Name == name {
			return r
		}
	}
	t.Fatalf("no report named %q", name)
	return model.SLAReport{}
}

func TestSLADefaultsLoaded(t *testing.T) {
	m := NewSLAMonitor(nil, 0)
	assert.Equal(t, len(DefaultSLATargets), m.TargetCount())
}

func TestEvaluateNoDataIsMet(t *testing.T) {
	m := NewSLAMonitor(nil, 100)
	reports := m.Evaluate("")
	require.Len(t, reports, len(DefaultSLATargets))
	for _, r := range reports {
		assert.True(t, r.IsMet)
		assert.Equal(t, 100.0, r.CompliancePercentage)
	}
}

func TestEvaluateLatencyViolations(t *testing.T) {
	m := NewSLAMonitor(nil, 100)

	// 8 compliant samples, 2 above the 50ms target.
	var metrics []model.Metric
	for i := 0; i < 8; i++ {
		metrics = append(metrics, latencyMetric("r1", 20))
	}
	metrics = append(metrics, latencyMetric("r1", 80), latencyMetric("r1", 90))
	m.ProcessMetrics(metrics)

	report := findReport(t, m.Evaluate("r1"), "Network Latency")
	assert.Equal(t, 2, report.Violations)
	assert.Equal(t, 80.0, report.CompliancePercentage)
	// Current is the mean of the trailing 10 samples: (8*20+80+90)/10.
	assert.Equal(t, 33.0, report.CurrentValue)
	assert.True(t, report.IsMet)
}

func TestEvaluateCurrentBreachesTarget(t *testing.T) {
	m := NewSLAMonitor(nil, 100)
	var metrics []model.Metric
	for i := 0; i < 5; i++ {
		metrics = append(metrics, latencyMetric("r1", 120))
	}
	m.ProcessMetrics(metrics)

	report := findReport(t, m.Evaluate("r1"), "Network Latency")
	assert.False(t, report.IsMet)
	assert.Equal(t, 5, report.Violations)
	assert.Equal(t, 0.0, report.CompliancePercentage)
}

func TestEvaluateFiltersByDevice(t *testing.T) {
	m := NewSLAMonitor(nil, 100)
	m.ProcessMetrics([]model.Metric{latencyMetric("r1", 120), latencyMetric("r2", 10)})

	r1 := findReport(t, m.Evaluate("r1"), "Network Latency")
	assert.False(t, r1.IsMet)
	r2 := findReport(t, m.Evaluate("r2"), "Network Latency")
	assert.True(t, r2.IsMet)
}

func TestGetComplianceSummary(t *testing.T) {
	m := NewSLAMonitor(nil, 100)
	m.ProcessMetrics([]model.Metric{latencyMetric("r1", 120)})

	summary := m.GetComplianceSummary()
	assert.Equal(t, len(DefaultSLATargets), summary.TotalTargets)
	assert.Equal(t, 1, summary.TargetsViolated)
	assert.Equal(t, summary.TotalTargets-1, summary.TargetsMet)
	assert.Equal(t, 75.0, summary.OverallCompliance)
	assert.Len(t, summary.Reports, summary.TotalTargets)
}

func TestAddTarget(t *testing.T) {
	m := NewSLAMonitor(nil, 100)
	before := m.TargetCount()
	m.AddTarget(model.SLATarget{
		Name:        "Uptime",
		MetricType:  model.MetricUptime,
		TargetValue: 86400,
		Comparison:  "gt",
	})
	assert.Equal(t, before+1, m.TargetCount())

	m.ProcessMetrics([]model.Metric{{
		DeviceID:   "r1",
		MetricType: model.MetricUptime,
		Value:      200000,
		Timestamp:  time.Now().UTC(),
	}})
	report := findReport(t, m.Evaluate(""), "Uptime")
	assert.True(t, report.IsMet)
	assert.Zero(t, report.Violations)
}
