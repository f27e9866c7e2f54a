// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// SLATarget defines a service-level objective on a metric.
type SLATarget struct {
	Name              string     `json:"name"`
	Description       string     `json:"description,omitempty"`
	MetricType        MetricType `json:"metric_type"`
	TargetValue       float64    `json:"target_value"`
	Comparison        string     `json:"comparison"` // lt = value must stay below target
	MeasurementWindow string     `json:"measurement_window"`
	DeviceFilter      string     `json:"device_filter,omitempty"`
}

// SLAReport is the computed compliance for one SLA target.
type SLAReport struct {
	Target                 SLATarget `json:"target"`
	CurrentValue           float64   `json:"current_value"`
	IsMet                  bool      `json:"is_met"`
	CompliancePercentage   float64   `json:"compliance_percentage"`
	MeasurementPeriodStart time.Time `json:"measurement_period_start"`
	MeasurementPeriodEnd   time.Time `json:"measurement_period_end"`
	Violations             int       `json:"violations"`
}
