// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package monitor

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/cwccie/netopshub/pkg/model"
)

// DefaultSLATargets are the out-of-the-box service-level objectives.
var DefaultSLATargets = []model.SLATarget{
	{
		Name:              "Network Latency",
		Description:       "Round-trip latency must stay under 50ms",
		MetricType:        model.MetricLatency,
		TargetValue:       50.0,
		Comparison:        "lt",
		MeasurementWindow: "24h",
	},
	{
		Name:              "Packet Loss",
		Description:       "Packet loss must stay under 0.1%",
		MetricType:        model.MetricPacketLoss,
		TargetValue:       0.1,
		Comparison:        "lt",
		MeasurementWindow: "24h",
	},
	{
		Name:              "Network Jitter",
		Description:       "Jitter must stay under 10ms",
		MetricType:        model.MetricJitter,
		TargetValue:       10.0,
		Comparison:        "lt",
		MeasurementWindow: "24h",
	},
	{
		Name:              "CPU Utilization",
		Description:       "Average CPU must stay under 80%",
		MetricType:        model.MetricCPU,
		TargetValue:       80.0,
		Comparison:        "lt",
		MeasurementWindow: "24h",
	},
}

// SLATargetReport is one row in the compliance summary.
type SLATargetReport struct {
	Name       string  `json:"name"`
	IsMet      bool    `json:"is_met"`
	Current    float64 `json:"current"`
	Target     float64 `json:"target"`
	Compliance float64 `json:"compliance"`
}

// ComplianceSummary is the overall SLA posture.
type ComplianceSummary struct {
	TotalTargets      int               `json:"total_targets"`
	TargetsMet        int               `json:"targets_met"`
	TargetsViolated   int               `json:"targets_violated"`
	OverallCompliance float64           `json:"overall_compliance"`
	Reports           []SLATargetReport `json:"reports"`
}

// SLAMonitor evaluates metric data against SLA targets. Each device/metric
// series keeps a trailing window of 1440 samples, 24 hours at one per
// minute.
type SLAMonitor struct {
	clock      clock.Clock
	maxSamples int

	mu      sync.RWMutex
	targets []model.SLATarget
	data    map[string][]float64
}

// NewSLAMonitor returns a monitor with the given targets, or the defaults
// when none are supplied.
func NewSLAMonitor(targets []model.SLATarget, maxSamples int) *SLAMonitor {
	if len(targets) == 0 {
		targets = append([]model.SLATarget{}, DefaultSLATargets...)
	}
	if maxSamples <= 0 {
		maxSamples = 1440
	}
	return &SLAMonitor{
		clock:      clock.New(),
		maxSamples: maxSamples,
		targets:    targets,
		data:       make(map[string][]float64),
	}
}

// SetClock replaces the monitor's clock, for tests.
func (m *SLAMonitor) SetClock(c clock.Clock) {
	m.clock = c
}

// AddTarget installs an additional SLA target.
func (m *SLAMonitor) AddTarget(target model.SLATarget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.targets = append(m.targets, target)
}

// TargetCount returns the number of configured targets.
func (m *SLAMonitor) TargetCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.targets)
}

// ProcessMetrics ingests metrics for SLA evaluation.
func (m *SLAMonitor) ProcessMetrics(metrics []model.Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, metric := range metrics {
		key := historyKey(metric.DeviceID, metric.MetricType)
		m.data[key] = append(m.data[key], metric.Value)
		if len(m.data[key]) > m.maxSamples {
			m.data[key] = m.data[key][len(m.data[key])-m.maxSamples:]
		}
	}
}

// Evaluate computes a report per target, optionally restricted to one
// device. A target with no data is reported as met at 100%.
func (m *SLAMonitor) Evaluate(deviceID string) []model.SLAReport {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.clock.Now().UTC()
	periodStart := now.Add(-24 * time.Hour)
	reports := make([]model.SLAReport, 0, len(m.targets))

	for _, target := range m.targets {
		var allValues []float64
		suffix := ":" + string(target.MetricType)
		for key, values := range m.data {
			if !strings.HasSuffix(key, suffix) {
				continue
			}
			if deviceID != "" && !strings.HasPrefix(key, deviceID+":") {
				continue
			}
			allValues = append(allValues, values...)
		}

		if len(allValues) == 0 {
			reports = append(reports, model.SLAReport{
				Target:                 target,
				CurrentValue:           0,
				IsMet:                  true,
				CompliancePercentage:   100.0,
				MeasurementPeriodStart: periodStart,
				MeasurementPeriodEnd:   now,
			})
			continue
		}

		var current float64
		if len(allValues) >= 10 {
			current = mean(allValues[len(allValues)-10:])
		} else {
			current = allValues[len(allValues)-1]
		}

		var violations int
		var isMet bool
		if target.Comparison == "lt" {
			for _, v := range allValues {
				if v >= target.TargetValue {
					violations++
				}
			}
			isMet = current < target.TargetValue
		} else {
			for _, v := range allValues {
				if v <= target.TargetValue {
					violations++
				}
			}
			isMet = current > target.TargetValue
		}
		compliance := float64(len(allValues)-violations) / float64(len(allValues)) * 100

		reports = append(reports, model.SLAReport{
			Target:                 target,
			CurrentValue:           round2(current),
			IsMet:                  isMet,
			CompliancePercentage:   round2(compliance),
			MeasurementPeriodStart: periodStart,
			MeasurementPeriodEnd:   now,
			Violations:             violations,
		})
	}
	return reports
}

// GetComplianceSummary rolls the per-target reports into an overall posture.
func (m *SLAMonitor) GetComplianceSummary() ComplianceSummary {
	reports := m.Evaluate("")
	summary := ComplianceSummary{
		TotalTargets:      len(reports),
		OverallCompliance: 100.0,
		Reports:           make([]SLATargetReport, 0, len(reports)),
	}
	for _, r := range reports {
		if r.IsMet {
			summary.TargetsMet++
		}
		summary.Reports = append(summary.Reports, SLATargetReport{
			Name:       r.Target.Name,
			IsMet:      r.IsMet,
			Current:    r.CurrentValue,
			Target:     r.Target.TargetValue,
			Compliance: r.CompliancePercentage,
		})
	}
	summary.TargetsViolated = summary.TotalTargets - summary.TargetsMet
	if summary.TotalTargets > 0 {
		summary.OverallCompliance = round1(float64(summary.TargetsMet) / float64(summary.TotalTargets) * 100)
	}
	return summary
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
