// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// Neighbor is an adjacency discovered via LLDP or CDP.
type Neighbor struct {
	LocalDeviceID   string    `json:"local_device_id"`
	LocalInterface  string    `json:"local_interface"`
	RemoteDeviceID  string    `json:"remote_device_id"`
	RemoteInterface string    `json:"remote_interface"`
	RemoteHostname  string    `json:"remote_hostname,omitempty"`
	RemoteIP        string    `json:"remote_ip,omitempty"`
	Protocol        string    `json:"protocol"` // lldp, cdp, bgp, ospf
	DiscoveredAt    time.Time `json:"discovered_at"`
}

// TopologyLink is an edge between two devices in the topology graph.
type TopologyLink struct {
	SourceDeviceID  string  `json:"source_device_id"`
	SourceInterface string  `json:"source_interface"`
	TargetDeviceID  string  `json:"target_device_id"`
	TargetInterface string  `json:"target_interface"`
	LinkSpeedMbps   int     `json:"link_speed_mbps"`
	LinkType        string  `json:"link_type"`
	Protocol        string  `json:"protocol"`
	UtilizationIn   float64 `json:"utilization_in"`
	UtilizationOut  float64 `json:"utilization_out"`
}

// TopologyGraph is the complete network topology.
type TopologyGraph struct {
	Devices     []Device       `json:"devices"`
	Links       []TopologyLink `json:"links"`
	GeneratedAt time.Time      `json:"generated_at"`
}
