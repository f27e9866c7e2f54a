// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package discover handles device discovery and topology mapping: subnet
// scans over SNMP, platform identification, and the neighbor graph built
// from LLDP/CDP adjacencies.
package discover

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/cwccie/netopshub/pkg/collect"
	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

type platformSignature struct {
	signature string
	vendor    model.DeviceVendor
	dtype     model.DeviceType
}

// Platform identification patterns, matched case-insensitively against
// sysDescr.
var platformSignatures = []platformSignature{
	{"Cisco IOS-XE", model.VendorCisco, model.DeviceTypeRouter},
	{"Cisco IOS", model.VendorCisco, model.DeviceTypeRouter},
	{"Cisco NX-OS", model.VendorCisco, model.DeviceTypeSwitch},
	{"Cisco Adaptive Security", model.VendorCisco, model.DeviceTypeFirewall},
	{"Arista Networks EOS", model.VendorArista, model.DeviceTypeSwitch},
	{"Juniper Networks", model.VendorJuniper, model.DeviceTypeRouter},
	{"Palo Alto Networks", model.VendorPaloAlto, model.DeviceTypeFirewall},
	{"Fortinet FortiGate", model.VendorFortinet, model.DeviceTypeFirewall},
}

// IdentifyPlatform maps a sysDescr string to a vendor and device type.
func IdentifyPlatform(sysDescription string) (model.DeviceVendor, model.DeviceType) {
	lower := strings.ToLower(sysDescription)
	for _, sig := range platformSignatures {
		if strings.Contains(lower, strings.ToLower(sig.signature)) {
			return sig.vendor, sig.dtype
		}
	}
	return model.VendorUnknown, model.DeviceTypeUnknown
}

// NetworkScanner discovers SNMP-manageable devices and builds the inventory.
type NetworkScanner struct {
	snmp     *collect.SNMPPoller
	demoMode bool

	mu         sync.RWMutex
	discovered map[string]model.Device
}

// NewNetworkScanner returns a scanner using the given poller for probes.
func NewNetworkScanner(snmp *collect.SNMPPoller, demoMode bool) *NetworkScanner {
	if snmp == nil {
		snmp = collect.NewSNMPPoller(demoMode)
	}
	return &NetworkScanner{
		snmp:       snmp,
		demoMode:   demoMode,
		discovered: make(map[string]model.Device),
	}
}

// ScanSubnet probes every host in a CIDR subnet and returns the devices that
// answered SNMP.
func (s *NetworkScanner) ScanSubnet(ctx context.Context, subnet, community string) ([]model.Device, error) {
	_, network, err := net.ParseCIDR(subnet)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing subnet %q", subnet)
	}
	log.Infof("Scanning %s", network.String())

	if s.demoMode {
		return s.mockScan(subnet, community), nil
	}

	var devices []model.Device
	for ip := network.IP.Mask(network.Mask); network.Contains(ip); incrementIP(ip) {
		select {
		case <-ctx.Done():
			return devices, ctx.Err()
		default:
		}
		device, err := s.snmp.DiscoverDevice(ctx, ip.String(), community)
		if err != nil || device == nil {
			continue
		}
		device.Vendor, device.DeviceType = IdentifyPlatform(device.SysDescription)
		s.remember(*device)
		devices = append(devices, *device)
	}
	log.Infof("Discovered %d devices on %s", len(devices), subnet)
	return devices, nil
}

// ScanHost probes a single host.
func (s *NetworkScanner) ScanHost(ctx context.Context, host, community string) (*model.Device, error) {
	device, err := s.snmp.DiscoverDevice(ctx, host, community)
	if err != nil || device == nil {
		return nil, err
	}
	if !s.demoMode {
		device.Vendor, device.DeviceType = IdentifyPlatform(device.SysDescription)
	}
	s.remember(*device)
	return device, nil
}

// GetInterfaceInventory returns the full interface inventory of a device.
func (s *NetworkScanner) GetInterfaceInventory(ctx context.Context, device model.Device) ([]model.Interface, error) {
	return s.snmp.GetInterfaces(ctx, device.IPAddress)
}

// GetDiscoveredDevices returns every device seen so far.
func (s *NetworkScanner) GetDiscoveredDevices() []model.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	devices := make([]model.Device, 0, len(s.discovered))
	for _, d := range s.discovered {
		devices = append(devices, d)
	}
	return devices
}

// GetDevice returns a discovered device by ID.
func (s *NetworkScanner) GetDevice(deviceID string) (model.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.discovered[deviceID]
	return d, ok
}

// DiscoveredCount returns the inventory size.
func (s *NetworkScanner) DiscoveredCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.discovered)
}

func (s *NetworkScanner) remember(device model.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discovered[device.ID] = device
}

func (s *NetworkScanner) mockScan(subnet, community string) []model.Device {
	now := time.Now().UTC()
	mk := func(hostname, ip string, dtype model.DeviceType, vendor model.DeviceVendor, mdl, osver, serial, location, site string, uptime int64, sysDescr string) model.Device {
		return model.Device{
			ID:             model.NewID(),
			Hostname:       hostname,
			IPAddress:      ip,
			DeviceType:     dtype,
			Vendor:         vendor,
			Model:          mdl,
			OSVersion:      osver,
			SerialNumber:   serial,
			Location:       location,
			Site:           site,
			SNMPCommunity:  community,
			UptimeSeconds:  uptime,
			SysDescription: sysDescr,
			DiscoveredAt:   now,
			LastSeen:       now,
			IsManaged:      true,
		}
	}
	devices := []model.Device{
		mk("router-core-1", "10.0.0.1", model.DeviceTypeRouter, model.VendorCisco,
			"ISR4451-X", "IOS-XE 17.6.4", "FTX2150A1BC", "DC1-ROW1-RACK3", "datacenter-1",
			15724800, "Cisco IOS-XE ISR4451-X running 17.6.4"),
		mk("router-core-2", "10.0.0.2", model.DeviceTypeRouter, model.VendorCisco,
			"ISR4451-X", "IOS-XE 17.6.4", "FTX2150A1BD", "DC1-ROW1-RACK4", "datacenter-1",
			15724800, "Cisco IOS-XE ISR4451-X running 17.6.4"),
		mk("switch-dist-1", "10.0.1.1", model.DeviceTypeSwitch, model.VendorArista,
			"DCS-7280R3", "EOS 4.31.1F", "SSJ21140123", "DC1-ROW2-RACK1", "datacenter-1",
			8640000, "Arista Networks EOS DCS-7280R3 4.31.1F"),
		mk("switch-dist-2", "10.0.1.2", model.DeviceTypeSwitch, model.VendorArista,
			"DCS-7280R3", "EOS 4.31.1F", "SSJ21140124", "DC1-ROW2-RACK2", "datacenter-1",
			8640000, "Arista Networks EOS DCS-7280R3 4.31.1F"),
		mk("switch-access-1", "10.0.2.1", model.DeviceTypeSwitch, model.VendorCisco,
			"C9300-48P", "IOS-XE 17.9.1", "FCW2234L0PQ", "Office-Floor2", "main-office",
			2592000, "Cisco IOS-XE C9300-48P running 17.9.1"),
		mk("switch-access-2", "10.0.2.2", model.DeviceTypeSwitch, model.VendorCisco,
			"C9300-48P", "IOS-XE 17.9.1", "FCW2234L0PR", "Office-Floor3", "main-office",
			2592000, "Cisco IOS-XE C9300-48P running 17.9.1"),
		mk("firewall-edge-1", "10.0.0.254", model.DeviceTypeFirewall, model.VendorPaloAlto,
			"PA-5260", "PAN-OS 11.1.0", "PA5260-SN001", "DC1-ROW1-RACK1", "datacenter-1",
			31536000, "Palo Alto Networks PA-5260 PAN-OS 11.1.0"),
		mk("router-branch-1", "10.0.3.1", model.DeviceTypeRouter, model.VendorJuniper,
			"MX204", "Junos 23.2R1", "JN1234567890", "Branch-Office-1", "branch-1",
			5184000, "Juniper Networks MX204 Junos 23.2R1"),
	}
	for _, d := range devices {
		s.remember(d)
	}
	log.Infof("Discovered %d devices on %s", len(devices), subnet)
	return devices
}

func incrementIP(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] != 0 {
			break
		}
	}
}
