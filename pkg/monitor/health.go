// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package monitor tracks device health against thresholds, manages the alert
// lifecycle, and computes SLA compliance.
package monitor

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/cwccie/netopshub/pkg/model"
)

// DefaultThresholds are the out-of-the-box alerting bands.
var DefaultThresholds = []model.MetricThreshold{
	{MetricType: model.MetricCPU, WarningThreshold: 70.0, CriticalThreshold: 85.0, EmergencyThreshold: 95.0, Comparison: "gt"},
	{MetricType: model.MetricMemory, WarningThreshold: 75.0, CriticalThreshold: 90.0, EmergencyThreshold: 97.0, Comparison: "gt"},
	{MetricType: model.MetricErrorRate, WarningThreshold: 1.0, CriticalThreshold: 5.0, EmergencyThreshold: 10.0, Comparison: "gt"},
	{MetricType: model.MetricTemperature, WarningThreshold: 65.0, CriticalThreshold: 75.0, EmergencyThreshold: 85.0, Comparison: "gt"},
	{MetricType: model.MetricPacketLoss, WarningThreshold: 0.5, CriticalThreshold: 2.0, EmergencyThreshold: 5.0, Comparison: "gt"},
}

// MetricStats summarizes recent samples of one metric on one device.
type MetricStats struct {
	Current   float64 `json:"current"`
	Unit      string  `json:"unit"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Avg       float64 `json:"avg"`
	Stddev    float64 `json:"stddev"`
	Trend     string  `json:"trend"`
	Timestamp string  `json:"timestamp"`
}

// DeviceHealth is the health summary for one device.
type DeviceHealth struct {
	DeviceID     string                 `json:"device_id"`
	Metrics      map[string]MetricStats `json:"metrics"`
	Status       string                 `json:"status"`
	ActiveAlerts int                    `json:"active_alerts"`
}

// HistoryPoint is one sample in a metric history query.
type HistoryPoint struct {
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Timestamp string  `json:"timestamp"`
	Interface string  `json:"interface,omitempty"`
}

// HealthMonitor keeps a rolling window of metrics per device and metric type,
// evaluates thresholds, and records the resulting alerts.
type HealthMonitor struct {
	clock      clock.Clock
	maxHistory int

	mu         sync.RWMutex
	thresholds map[model.MetricType]model.MetricThreshold
	history    map[string][]model.Metric
	alerts     []model.Alert
}

// NewHealthMonitor returns a monitor with the given thresholds, or the
// defaults when none are supplied.
func NewHealthMonitor(thresholds []model.MetricThreshold, maxHistory int) *HealthMonitor {
	if len(thresholds) == 0 {
		thresholds = DefaultThresholds
	}
	if maxHistory <= 0 {
		maxHistory = 1000
	}
	m := &HealthMonitor{
		clock:      clock.New(),
		maxHistory: maxHistory,
		thresholds: make(map[model.MetricType]model.MetricThreshold),
		history:    make(map[string][]model.Metric),
	}
	for _, t := range thresholds {
		m.thresholds[t.MetricType] = t
	}
	return m
}

// SetClock replaces the monitor's clock, for tests.
func (m *HealthMonitor) SetClock(c clock.Clock) {
	m.clock = c
}

// ProcessMetrics ingests a batch of metrics, checks each against its
// threshold, and returns the alerts generated by this batch.
func (m *HealthMonitor) ProcessMetrics(metrics []model.Metric) []model.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	var newAlerts []model.Alert
	for _, metric := range metrics {
		key := historyKey(metric.DeviceID, metric.MetricType)
		m.history[key] = append(m.history[key], metric)
		if len(m.history[key]) > m.maxHistory {
			m.history[key] = m.history[key][len(m.history[key])-m.maxHistory:]
		}
		if alert := m.checkThreshold(metric); alert != nil {
			newAlerts = append(newAlerts, *alert)
			m.alerts = append(m.alerts, *alert)
		}
	}
	return newAlerts
}

// GetDeviceHealth summarizes the recent state of one device: per-metric stats
// over the last 60 samples plus an overall status derived from active alerts.
func (m *HealthMonitor) GetDeviceHealth(deviceID string) DeviceHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	health := DeviceHealth{
		DeviceID: deviceID,
		Metrics:  make(map[string]MetricStats),
		Status:   "healthy",
	}
	prefix := deviceID + ":"
	for key, history := range m.history {
		if !strings.HasPrefix(key, prefix) || len(history) == 0 {
			continue
		}
		metricType := key[len(prefix):]
		latest := history[len(history)-1]
		window := history
		if len(window) > 60 {
			window = window[len(window)-60:]
		}
		values := make([]float64, len(window))
		for i, s := range window {
			values[i] = s.Value
		}
		health.Metrics[metricType] = MetricStats{
			Current:   latest.Value,
			Unit:      latest.Unit,
			Min:       round2(minOf(values)),
			Max:       round2(maxOf(values)),
			Avg:       round2(mean(values)),
			Stddev:    round2(sampleStddev(values)),
			Trend:     calculateTrend(values),
			Timestamp: latest.Timestamp.Format(timeFormat),
		}
	}

	var worst model.AlertSeverity
	for _, a := range m.alerts {
		if a.DeviceID != deviceID || a.State != model.AlertActive {
			continue
		}
		health.ActiveAlerts++
		worst = model.MaxSeverity(worst, a.Severity)
	}
	switch worst {
	case model.SeverityEmergency:
		health.Status = "emergency"
	case model.SeverityCritical:
		health.Status = "critical"
	case model.SeverityWarning:
		health.Status = "warning"
	}
	return health
}

// GetMetricHistory returns the trailing samples for a device and metric type.
func (m *HealthMonitor) GetMetricHistory(deviceID string, metricType model.MetricType, limit int) []HistoryPoint {
	if limit <= 0 {
		limit = 100
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := m.history[historyKey(deviceID, metricType)]
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]HistoryPoint, len(history))
	for i, s := range history {
		out[i] = HistoryPoint{
			Value:     s.Value,
			Unit:      s.Unit,
			Timestamp: s.Timestamp.Format(timeFormat),
			Interface: s.InterfaceName,
		}
	}
	return out
}

// SetThreshold installs or replaces the threshold for a metric type.
func (m *HealthMonitor) SetThreshold(threshold model.MetricThreshold) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thresholds[threshold.MetricType] = threshold
}

// GetThresholds returns all configured thresholds.
func (m *HealthMonitor) GetThresholds() []model.MetricThreshold {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.MetricThreshold, 0, len(m.thresholds))
	for _, t := range m.thresholds {
		out = append(out, t)
	}
	return out
}

// AlertCount returns the total number of alerts recorded.
func (m *HealthMonitor) AlertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.alerts)
}

// ActiveAlertCount returns the number of alerts still active.
func (m *HealthMonitor) ActiveAlertCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.alerts {
		if a.State == model.AlertActive {
			n++
		}
	}
	return n
}

// checkThreshold evaluates one metric, most severe band first.
func (m *HealthMonitor) checkThreshold(metric model.Metric) *model.Alert {
	threshold, ok := m.thresholds[metric.MetricType]
	if !ok {
		return nil
	}

	var severity model.AlertSeverity
	var thresholdValue float64
	value := metric.Value
	switch {
	case threshold.EmergencyThreshold > 0 && value >= threshold.EmergencyThreshold:
		severity = model.SeverityEmergency
		thresholdValue = threshold.EmergencyThreshold
	case value >= threshold.CriticalThreshold:
		severity = model.SeverityCritical
		thresholdValue = threshold.CriticalThreshold
	case value >= threshold.WarningThreshold:
		severity = model.SeverityWarning
		thresholdValue = threshold.WarningThreshold
	default:
		return nil
	}

	name := metric.DeviceHostname
	if name == "" {
		name = metric.DeviceID
	}
	return &model.Alert{
		ID:             model.NewID(),
		DeviceID:       metric.DeviceID,
		DeviceHostname: metric.DeviceHostname,
		InterfaceName:  metric.InterfaceName,
		Severity:       severity,
		State:          model.AlertActive,
		Title:          fmt.Sprintf("%s threshold exceeded on %s", strings.ToUpper(string(metric.MetricType)), name),
		Description: fmt.Sprintf("%s is %v%s, exceeding %s threshold of %v%s",
			metric.MetricType, value, metric.Unit, severity, thresholdValue, metric.Unit),
		MetricType:     metric.MetricType,
		MetricValue:    value,
		ThresholdValue: thresholdValue,
		Source:         "health_monitor",
		CreatedAt:      m.clock.Now().UTC(),
	}
}

// calculateTrend compares the mean of the newest five samples against the
// mean of the oldest five, with a 10% band counted as stable.
func calculateTrend(values []float64) string {
	if len(values) < 3 {
		return "stable"
	}
	var recent float64
	if len(values) >= 5 {
		recent = mean(values[len(values)-5:])
	} else {
		recent = values[len(values)-1]
	}
	older := mean(values[:minInt(5, len(values))])
	diff := recent - older
	switch {
	case diff > older*0.1:
		return "increasing"
	case diff < -older*0.1:
		return "decreasing"
	default:
		return "stable"
	}
}

const timeFormat = "2006-01-02T15:04:05.999999"

func historyKey(deviceID string, metricType model.MetricType) string {
	return deviceID + ":" + string(metricType)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStddev is the sample (n-1) standard deviation, zero for fewer than
// two samples.
func sampleStddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	avg := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - avg) * (v - avg)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
