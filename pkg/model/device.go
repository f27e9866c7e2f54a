// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// Interface is a network interface on a device.
type Interface struct {
	Name        string          `json:"name"`
	Index       int             `json:"index"`
	Description string          `json:"description,omitempty"`
	SpeedMbps   int             `json:"speed_mbps"`
	AdminStatus InterfaceStatus `json:"admin_status"`
	OperStatus  InterfaceStatus `json:"oper_status"`
	IPAddress   string          `json:"ip_address,omitempty"`
	SubnetMask  string          `json:"subnet_mask,omitempty"`
	MACAddress  string          `json:"mac_address,omitempty"`
	VLANID      int             `json:"vlan_id,omitempty"`
	MTU         int             `json:"mtu"`
	InOctets    uint64          `json:"in_octets"`
	OutOctets   uint64          `json:"out_octets"`
	InErrors    uint64          `json:"in_errors"`
	OutErrors   uint64          `json:"out_errors"`
	InDiscards  uint64          `json:"in_discards"`
	OutDiscards uint64          `json:"out_discards"`
}

// Device is a network device in the inventory.
type Device struct {
	ID             string            `json:"id"`
	Hostname       string            `json:"hostname"`
	IPAddress      string            `json:"ip_address"`
	DeviceType     DeviceType        `json:"device_type"`
	Vendor         DeviceVendor      `json:"vendor"`
	Model          string            `json:"model,omitempty"`
	OSVersion      string            `json:"os_version,omitempty"`
	SerialNumber   string            `json:"serial_number,omitempty"`
	Location       string            `json:"location,omitempty"`
	Site           string            `json:"site,omitempty"`
	SNMPCommunity  string            `json:"snmp_community,omitempty"`
	Interfaces     []Interface       `json:"interfaces,omitempty"`
	Tags           map[string]string `json:"tags,omitempty"`
	DiscoveredAt   time.Time         `json:"discovered_at"`
	LastSeen       time.Time         `json:"last_seen"`
	IsManaged      bool              `json:"is_managed"`
	UptimeSeconds  int64             `json:"uptime_seconds"`
	SysDescription string            `json:"sys_description,omitempty"`
}
