// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package model defines the shared schema for netopshub. All telemetry,
// device, and alert data is normalized to these types, giving the collectors,
// monitors, and agents a single vocabulary across SNMP, NetFlow, syslog, and
// REST sources.
package model

import "github.com/google/uuid"

// NewID returns a fresh random identifier for an entity.
func NewID() string {
	return uuid.NewString()
}

// DeviceType classifies a device's role in the network.
type DeviceType string

// Device types.
const (
	DeviceTypeRouter             DeviceType = "router"
	DeviceTypeSwitch             DeviceType = "switch"
	DeviceTypeFirewall           DeviceType = "firewall"
	DeviceTypeLoadBalancer       DeviceType = "load_balancer"
	DeviceTypeWirelessController DeviceType = "wireless_controller"
	DeviceTypeAccessPoint        DeviceType = "access_point"
	DeviceTypeServer             DeviceType = "server"
	DeviceTypeUnknown            DeviceType = "unknown"
)

// DeviceVendor identifies a device's manufacturer.
type DeviceVendor string

// Device vendors.
const (
	VendorCisco    DeviceVendor = "cisco"
	VendorJuniper  DeviceVendor = "juniper"
	VendorArista   DeviceVendor = "arista"
	VendorPaloAlto DeviceVendor = "palo_alto"
	VendorFortinet DeviceVendor = "fortinet"
	VendorMeraki   DeviceVendor = "meraki"
	VendorUnknown  DeviceVendor = "unknown"
)

// MetricType identifies the kind of measurement carried by a Metric.
type MetricType string

// Metric types.
const (
	MetricCPU           MetricType = "cpu"
	MetricMemory        MetricType = "memory"
	MetricBandwidthIn   MetricType = "bandwidth_in"
	MetricBandwidthOut  MetricType = "bandwidth_out"
	MetricErrorRate     MetricType = "error_rate"
	MetricDiscardRate   MetricType = "discard_rate"
	MetricLatency       MetricType = "latency"
	MetricJitter        MetricType = "jitter"
	MetricPacketLoss    MetricType = "packet_loss"
	MetricTemperature   MetricType = "temperature"
	MetricPower         MetricType = "power"
	MetricFanSpeed      MetricType = "fan_speed"
	MetricUptime        MetricType = "uptime"
	MetricBGPPrefixes   MetricType = "bgp_prefixes"
	MetricOSPFNeighbors MetricType = "ospf_neighbors"
	MetricCustom        MetricType = "custom"
)

// CollectorType identifies which collector produced a piece of telemetry.
type CollectorType string

// Collector types.
const (
	CollectorSNMP    CollectorType = "snmp"
	CollectorNetFlow CollectorType = "netflow"
	CollectorSyslog  CollectorType = "syslog"
	CollectorRESTAPI CollectorType = "rest_api"
)

// InterfaceStatus is the administrative or operational state of an interface.
type InterfaceStatus string

// Interface statuses.
const (
	InterfaceUp        InterfaceStatus = "up"
	InterfaceDown      InterfaceStatus = "down"
	InterfaceAdminDown InterfaceStatus = "admin_down"
	InterfaceUnknown   InterfaceStatus = "unknown"
)

// ComplianceStatus is the outcome of a compliance check.
type ComplianceStatus string

// Compliance statuses.
const (
	ComplianceCompliant    ComplianceStatus = "compliant"
	ComplianceNonCompliant ComplianceStatus = "non_compliant"
	ComplianceNotAssessed  ComplianceStatus = "not_assessed"
	ComplianceExempted     ComplianceStatus = "exempted"
)
