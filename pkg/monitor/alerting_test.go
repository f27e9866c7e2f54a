// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package monitor

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/model"
)

func newAlert(deviceID string, severity model.AlertSeverity) model.Alert {
	return model.Alert{
		ID:         model.NewID(),
		DeviceID:   deviceID,
		Severity:   severity,
		State:      model.AlertActive,
		Title:      "CPU threshold exceeded on " + deviceID,
		MetricType: model.MetricCPU,
		Source:     "health_monitor",
		CreatedAt:  time.Now().UTC(),
	}
}

func TestAddAlertDedupRefreshesExisting(t *testing.T) {
	m := NewAlertManager()

	first := m.AddAlert(newAlert("r1", model.SeverityWarning))
	second := newAlert("r1", model.SeverityCritical)
	second.MetricValue = 92.0
	merged := m.AddAlert(second)

	assert.Equal(t, 1, m.TotalAlerts())
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, model.SeverityCritical, merged.Severity)
	assert.Equal(t, 92.0, merged.MetricValue)
}

func TestAddAlertDedupAdoptsCorrelationID(t *testing.T) {
	m := NewAlertManager()

	first := m.AddAlert(newAlert("r1", model.SeverityWarning))
	assert.Empty(t, first.CorrelationID)

	correlated := newAlert("r1", model.SeverityWarning)
	correlated.CorrelationID = "corr-1"
	merged := m.AddAlert(correlated)
	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, "corr-1", merged.CorrelationID)

	// An already-set correlation id is kept.
	relabeled := newAlert("r1", model.SeverityWarning)
	relabeled.CorrelationID = "corr-2"
	merged = m.AddAlert(relabeled)
	assert.Equal(t, "corr-1", merged.CorrelationID)
}

func TestAddAlertSeverityNeverDowngrades(t *testing.T) {
	m := NewAlertManager()
	m.AddAlert(newAlert("r1", model.SeverityCritical))
	merged := m.AddAlert(newAlert("r1", model.SeverityWarning))
	assert.Equal(t, model.SeverityCritical, merged.Severity)
}

func TestAcknowledgeAndResolve(t *testing.T) {
	m := NewAlertManager()
	mock := clock.NewMock()
	m.SetClock(mock)

	alert := m.AddAlert(newAlert("r1", model.SeverityWarning))

	acked, ok := m.Acknowledge(alert.ID, "noc-operator")
	require.True(t, ok)
	assert.Equal(t, model.AlertAcknowledged, acked.State)
	assert.Equal(t, "noc-operator", acked.AcknowledgedBy)
	require.NotNil(t, acked.AcknowledgedAt)

	// Acknowledging twice is a no-op: the original ack metadata survives.
	again, ok := m.Acknowledge(alert.ID, "someone-else")
	require.True(t, ok)
	assert.Equal(t, "noc-operator", again.AcknowledgedBy)
	assert.Equal(t, acked.AcknowledgedAt, again.AcknowledgedAt)

	resolved, ok := m.Resolve(alert.ID)
	require.True(t, ok)
	assert.Equal(t, model.AlertResolved, resolved.State)
	require.NotNil(t, resolved.ResolvedAt)

	_, ok = m.Resolve(alert.ID)
	assert.False(t, ok)
}

func TestAcknowledgeUnknownAlert(t *testing.T) {
	m := NewAlertManager()
	_, ok := m.Acknowledge("nope", "someone")
	assert.False(t, ok)
}

func TestSuppressionRuleByDevice(t *testing.T) {
	m := NewAlertManager()
	m.AddSuppressionRule(SuppressionRule{DeviceID: "r1", Reason: "maintenance"})

	suppressed := m.AddAlert(newAlert("r1", model.SeverityWarning))
	assert.Equal(t, model.AlertSuppressed, suppressed.State)

	active := m.AddAlert(newAlert("r2", model.SeverityWarning))
	assert.Equal(t, model.AlertActive, active.State)
}

func TestSuppressionRuleWindow(t *testing.T) {
	m := NewAlertManager()
	mock := clock.NewMock()
	m.SetClock(mock)

	now := mock.Now().UTC()
	m.AddSuppressionRule(SuppressionRule{
		StartTime: now.Add(time.Hour),
		EndTime:   now.Add(2 * time.Hour),
	})

	// Window has not opened yet.
	alert := m.AddAlert(newAlert("r1", model.SeverityWarning))
	assert.Equal(t, model.AlertActive, alert.State)

	mock.Add(90 * time.Minute)
	alert = m.AddAlert(newAlert("r2", model.SeverityWarning))
	assert.Equal(t, model.AlertSuppressed, alert.State)
}

func TestGetAlertsFilters(t *testing.T) {
	m := NewAlertManager()
	m.AddAlert(newAlert("r1", model.SeverityWarning))
	critical := newAlert("r2", model.SeverityCritical)
	critical.MetricType = model.MetricMemory
	m.AddAlert(critical)

	assert.Len(t, m.GetAlerts(AlertFilter{}), 2)
	assert.Len(t, m.GetAlerts(AlertFilter{DeviceID: "r1"}), 1)
	assert.Len(t, m.GetAlerts(AlertFilter{Severity: model.SeverityCritical}), 1)
	assert.Len(t, m.GetAlerts(AlertFilter{State: model.AlertActive}), 2)
	assert.Len(t, m.GetAlerts(AlertFilter{Limit: 1}), 1)
}

func TestGetSummary(t *testing.T) {
	m := NewAlertManager()
	a1 := m.AddAlert(newAlert("r1", model.SeverityWarning))
	mem := newAlert("r2", model.SeverityCritical)
	mem.MetricType = model.MetricMemory
	m.AddAlert(mem)
	m.Acknowledge(a1.ID, "ops")

	summary := m.GetSummary()
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Active)
	assert.Equal(t, 1, summary.Acknowledged)
	assert.Equal(t, 1, summary.BySeverity["warning"])
	assert.Equal(t, 1, summary.BySeverity["critical"])
	assert.Equal(t, 1, summary.ByDevice["r2"])
	assert.NotContains(t, summary.ByDevice, "r1")
}
