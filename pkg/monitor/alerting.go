// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package monitor

import (
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

// SuppressionRule mutes matching alerts, typically during a maintenance
// window. Empty fields match everything; zero times leave that bound open.
type SuppressionRule struct {
	DeviceID   string           `json:"device_id,omitempty"`
	MetricType model.MetricType `json:"metric_type,omitempty"`
	StartTime  time.Time        `json:"start_time,omitempty"`
	EndTime    time.Time        `json:"end_time,omitempty"`
	Reason     string           `json:"reason,omitempty"`
}

// AlertFilter narrows an alert query. Zero values match everything.
type AlertFilter struct {
	State    model.AlertState
	Severity model.AlertSeverity
	DeviceID string
	Limit    int
}

// AlertSummary is the aggregate view of the alert store.
type AlertSummary struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Acknowledged int            `json:"acknowledged"`
	Resolved     int            `json:"resolved"`
	Suppressed   int            `json:"suppressed"`
	BySeverity   map[string]int `json:"by_severity"`
	ByDevice     map[string]int `json:"by_device"`
}

// AlertManager owns the alert lifecycle: creation with dedup against active
// alerts, acknowledgment, resolution, and suppression.
type AlertManager struct {
	clock clock.Clock

	mu               sync.Mutex
	alerts           map[string]*model.Alert
	suppressionRules []SuppressionRule
}

// NewAlertManager returns an empty alert store.
func NewAlertManager() *AlertManager {
	return &AlertManager{
		clock:  clock.New(),
		alerts: make(map[string]*model.Alert),
	}
}

// SetClock replaces the manager's clock, for tests.
func (m *AlertManager) SetClock(c clock.Clock) {
	m.clock = c
}

// AddAlert stores an alert after applying suppression rules. When an active
// alert already exists for the same device and metric type, that alert is
// refreshed in place (value, description, and escalated severity) instead of
// creating a duplicate.
func (m *AlertManager) AddAlert(alert model.Alert) model.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isSuppressed(&alert) {
		alert.State = model.AlertSuppressed
		log.Debugf("Alert suppressed: %s", alert.Title)
	}

	for _, existing := range m.alerts {
		if existing.DeviceID == alert.DeviceID &&
			existing.MetricType == alert.MetricType &&
			existing.State == model.AlertActive {
			existing.MetricValue = alert.MetricValue
			existing.Description = alert.Description
			existing.Severity = model.MaxSeverity(existing.Severity, alert.Severity)
			if existing.CorrelationID == "" && alert.CorrelationID != "" {
				existing.CorrelationID = alert.CorrelationID
			}
			return *existing
		}
	}

	stored := alert
	m.alerts[stored.ID] = &stored
	log.Infof("New alert: [%s] %s", stored.Severity, stored.Title)
	return stored
}

// AddAlerts stores a batch of alerts through AddAlert.
func (m *AlertManager) AddAlerts(alerts []model.Alert) []model.Alert {
	out := make([]model.Alert, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, m.AddAlert(a))
	}
	return out
}

// Acknowledge moves an active alert to acknowledged. It returns false when
// the alert does not exist or is not active.
func (m *AlertManager) Acknowledge(alertID, acknowledgedBy string) (model.Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[alertID]
	if !ok {
		return model.Alert{}, false
	}
	if alert.State == model.AlertAcknowledged {
		return *alert, true
	}
	if alert.State != model.AlertActive {
		return model.Alert{}, false
	}
	now := m.clock.Now().UTC()
	alert.State = model.AlertAcknowledged
	alert.AcknowledgedAt = &now
	alert.AcknowledgedBy = acknowledgedBy
	log.Infof("Alert acknowledged: %s by %s", alert.Title, acknowledgedBy)
	return *alert, true
}

// Resolve moves an active or acknowledged alert to resolved.
func (m *AlertManager) Resolve(alertID string) (model.Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	alert, ok := m.alerts[alertID]
	if !ok || (alert.State != model.AlertActive && alert.State != model.AlertAcknowledged) {
		return model.Alert{}, false
	}
	now := m.clock.Now().UTC()
	alert.State = model.AlertResolved
	alert.ResolvedAt = &now
	log.Infof("Alert resolved: %s", alert.Title)
	return *alert, true
}

// GetAlerts queries alerts with filters, newest first.
func (m *AlertManager) GetAlerts(filter AlertFilter) []model.Alert {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []model.Alert
	for _, a := range m.alerts {
		if filter.State != "" && a.State != filter.State {
			continue
		}
		if filter.Severity != "" && a.Severity != filter.Severity {
			continue
		}
		if filter.DeviceID != "" && a.DeviceID != filter.DeviceID {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GetAlert returns an alert by ID.
func (m *AlertManager) GetAlert(alertID string) (model.Alert, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[alertID]
	if !ok {
		return model.Alert{}, false
	}
	return *a, true
}

// GetSummary returns aggregate alert counts. The per-device breakdown counts
// active alerts only.
func (m *AlertManager) GetSummary() AlertSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := AlertSummary{
		Total:      len(m.alerts),
		BySeverity: make(map[string]int),
		ByDevice:   make(map[string]int),
	}
	for _, a := range m.alerts {
		summary.BySeverity[string(a.Severity)]++
		switch a.State {
		case model.AlertActive:
			summary.Active++
			name := a.DeviceHostname
			if name == "" {
				name = a.DeviceID
			}
			summary.ByDevice[name]++
		case model.AlertAcknowledged:
			summary.Acknowledged++
		case model.AlertResolved:
			summary.Resolved++
		case model.AlertSuppressed:
			summary.Suppressed++
		}
	}
	return summary
}

// AddSuppressionRule installs a suppression rule.
func (m *AlertManager) AddSuppressionRule(rule SuppressionRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppressionRules = append(m.suppressionRules, rule)
}

// TotalAlerts returns the store size.
func (m *AlertManager) TotalAlerts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.alerts)
}

func (m *AlertManager) isSuppressed(alert *model.Alert) bool {
	now := m.clock.Now().UTC()
	for _, rule := range m.suppressionRules {
		if !rule.StartTime.IsZero() && now.Before(rule.StartTime) {
			continue
		}
		if !rule.EndTime.IsZero() && now.After(rule.EndTime) {
			continue
		}
		if rule.DeviceID != "" && rule.DeviceID != alert.DeviceID {
			continue
		}
		if rule.MetricType != "" && alert.MetricType != "" && rule.MetricType != alert.MetricType {
			continue
		}
		return true
	}
	return false
}
