// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// SyslogMessage is a parsed syslog message.
type SyslogMessage struct {
	ID             string                 `json:"id"`
	DeviceID       string                 `json:"device_id,omitempty"`
	DeviceHostname string                 `json:"device_hostname,omitempty"`
	SourceIP       string                 `json:"source_ip"`
	Facility       int                    `json:"facility"`
	Severity       int                    `json:"severity"`
	Timestamp      time.Time              `json:"timestamp"`
	Message        string                 `json:"message"`
	Program        string                 `json:"program,omitempty"`
	PID            int                    `json:"pid,omitempty"`
	StructuredData map[string]interface{} `json:"structured_data,omitempty"`
}
