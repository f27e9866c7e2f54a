// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// ComplianceRule is a single compliance check applied to configurations.
type ComplianceRule struct {
	ID            string        `json:"id" yaml:"id"`
	Name          string        `json:"name" yaml:"name"`
	Description   string        `json:"description" yaml:"description"`
	Framework     string        `json:"framework" yaml:"framework"`
	ControlID     string        `json:"control_id" yaml:"control_id"`
	Severity      AlertSeverity `json:"severity" yaml:"severity"`
	CheckType     string        `json:"check_type" yaml:"check_type"` // regex, contains, not_contains
	Pattern       string        `json:"pattern" yaml:"pattern"`
	ExpectedValue string        `json:"expected_value,omitempty" yaml:"expected_value"`
	Remediation   string        `json:"remediation,omitempty" yaml:"remediation"`
}

// ComplianceResult records the outcome of one rule against one device.
type ComplianceResult struct {
	RuleID         string           `json:"rule_id"`
	DeviceID       string           `json:"device_id"`
	DeviceHostname string           `json:"device_hostname,omitempty"`
	Status         ComplianceStatus `json:"status"`
	Framework      string           `json:"framework,omitempty"`
	ControlID      string           `json:"control_id,omitempty"`
	Details        string           `json:"details,omitempty"`
	Evidence       string           `json:"evidence,omitempty"`
	CheckedAt      time.Time        `json:"checked_at"`
}
