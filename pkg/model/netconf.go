// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// ConfigSnapshot is a captured copy of a device's running configuration.
type ConfigSnapshot struct {
	ID             string            `json:"id"`
	DeviceID       string            `json:"device_id"`
	DeviceHostname string            `json:"device_hostname,omitempty"`
	ConfigText     string            `json:"config_text"`
	ConfigHash     string            `json:"config_hash"`
	CapturedAt     time.Time         `json:"captured_at"`
	Source         string            `json:"source"`
	Tags           map[string]string `json:"tags,omitempty"`
}

// ConfigDiff describes the change between two configuration snapshots.
type ConfigDiff struct {
	DeviceID         string    `json:"device_id"`
	BeforeSnapshotID string    `json:"before_snapshot_id"`
	AfterSnapshotID  string    `json:"after_snapshot_id"`
	DiffText         string    `json:"diff_text"`
	LinesAdded       int       `json:"lines_added"`
	LinesRemoved     int       `json:"lines_removed"`
	LinesChanged     int       `json:"lines_changed"`
	GeneratedAt      time.Time `json:"generated_at"`
}
