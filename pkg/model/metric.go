// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// Metric is the unified measurement format shared by every collector.
type Metric struct {
	ID             string                 `json:"id"`
	DeviceID       string                 `json:"device_id"`
	DeviceHostname string                 `json:"device_hostname,omitempty"`
	InterfaceName  string                 `json:"interface_name,omitempty"`
	MetricType     MetricType             `json:"metric_type"`
	Value          float64                `json:"value"`
	Unit           string                 `json:"unit,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
	Source         CollectorType          `json:"source"`
	Tags           map[string]string      `json:"tags,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// MetricThreshold defines the alerting bands for one metric type.
type MetricThreshold struct {
	MetricType         MetricType `json:"metric_type"`
	WarningThreshold   float64    `json:"warning_threshold"`
	CriticalThreshold  float64    `json:"critical_threshold"`
	EmergencyThreshold float64    `json:"emergency_threshold,omitempty"`
	Comparison         string     `json:"comparison"` // gt, lt, eq
	DurationSeconds    int        `json:"duration_seconds"`
	DeviceFilter       string     `json:"device_filter,omitempty"`
	InterfaceFilter    string     `json:"interface_filter,omitempty"`
}
