// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import (
	"fmt"
	"time"
)

// NetFlowRecord is a single NetFlow/IPFIX/sFlow flow record.
type NetFlowRecord struct {
	SrcAddr         string    `json:"src_addr"`
	DstAddr         string    `json:"dst_addr"`
	SrcPort         int       `json:"src_port"`
	DstPort         int       `json:"dst_port"`
	Protocol        int       `json:"protocol"`
	Bytes           uint64    `json:"bytes"`
	Packets         uint64    `json:"packets"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	SrcAS           int       `json:"src_as"`
	DstAS           int       `json:"dst_as"`
	InputInterface  int       `json:"input_interface"`
	OutputInterface int       `json:"output_interface"`
	TCPFlags        int       `json:"tcp_flags"`
	ToS             int       `json:"tos"`
	ExporterIP      string    `json:"exporter_ip,omitempty"`
}

var protocolNames = map[int]string{
	1:  "ICMP",
	6:  "TCP",
	17: "UDP",
	47: "GRE",
	50: "ESP",
}

// ProtocolName returns a human-readable name for an IP protocol number.
func ProtocolName(proto int) string {
	if name, ok := protocolNames[proto]; ok {
		return name
	}
	return fmt.Sprintf("proto-%d", proto)
}
