// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// AlertSeverity orders alerts from informational to emergency.
type AlertSeverity string

// Alert severities.
const (
	SeverityInfo      AlertSeverity = "info"
	SeverityWarning   AlertSeverity = "warning"
	SeverityCritical  AlertSeverity = "critical"
	SeverityEmergency AlertSeverity = "emergency"
)

var severityRank = map[AlertSeverity]int{
	SeverityInfo:      0,
	SeverityWarning:   1,
	SeverityCritical:  2,
	SeverityEmergency: 3,
}

// Rank returns the ordinal position of the severity. Unknown severities rank
// below info.
func (s AlertSeverity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return -1
}

// MaxSeverity returns the higher of the two severities.
func MaxSeverity(a, b AlertSeverity) AlertSeverity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// AlertState is the lifecycle state of an alert.
type AlertState string

// Alert states.
const (
	AlertActive       AlertState = "active"
	AlertAcknowledged AlertState = "acknowledged"
	AlertResolved     AlertState = "resolved"
	AlertSuppressed   AlertState = "suppressed"
)

// Alert is generated from threshold violations or anomaly detection.
type Alert struct {
	ID             string            `json:"id"`
	DeviceID       string            `json:"device_id"`
	DeviceHostname string            `json:"device_hostname,omitempty"`
	InterfaceName  string            `json:"interface_name,omitempty"`
	Severity       AlertSeverity     `json:"severity"`
	State          AlertState        `json:"state"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	MetricType     MetricType        `json:"metric_type,omitempty"`
	MetricValue    float64           `json:"metric_value,omitempty"`
	ThresholdValue float64           `json:"threshold_value,omitempty"`
	Source         string            `json:"source"`
	CorrelationID  string            `json:"correlation_id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	AcknowledgedAt *time.Time        `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time        `json:"resolved_at,omitempty"`
	AcknowledgedBy string            `json:"acknowledged_by,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
}
