// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package collect implements the telemetry collectors: SNMP polling, NetFlow
// ingestion, syslog ingestion, and vendor REST APIs, all normalized to the
// unified metric schema.
package collect

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

// Standard OIDs used by the poller.
const (
	oidSysDescr        = "1.3.6.1.2.1.1.1.0"
	oidSysUpTime       = "1.3.6.1.2.1.1.3.0"
	oidSysName         = "1.3.6.1.2.1.1.5.0"
	oidSysLocation     = "1.3.6.1.2.1.1.6.0"
	oidIfDescr         = "1.3.6.1.2.1.2.2.1.2"
	oidIfSpeed         = "1.3.6.1.2.1.2.2.1.5"
	oidIfAdminStatus   = "1.3.6.1.2.1.2.2.1.7"
	oidIfOperStatus    = "1.3.6.1.2.1.2.2.1.8"
	oidIfInOctets      = "1.3.6.1.2.1.2.2.1.10"
	oidIfOutOctets     = "1.3.6.1.2.1.2.2.1.16"
	oidIfInErrors      = "1.3.6.1.2.1.2.2.1.14"
	oidIfOutErrors     = "1.3.6.1.2.1.2.2.1.20"
	oidHrProcessorLoad = "1.3.6.1.2.1.25.3.3.1.2"
)

// SNMPTarget is the polling configuration for one device.
type SNMPTarget struct {
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         uint16        `mapstructure:"port" yaml:"port"`
	Community    string        `mapstructure:"community" yaml:"community"`
	Version      string        `mapstructure:"version" yaml:"version"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries      int           `mapstructure:"retries" yaml:"retries"`
}

func (t *SNMPTarget) withDefaults() {
	if t.Port == 0 {
		t.Port = 161
	}
	if t.Community == "" {
		t.Community = "public"
	}
	if t.Version == "" {
		t.Version = "v2c"
	}
	if t.PollInterval == 0 {
		t.PollInterval = 60 * time.Second
	}
	if t.Timeout == 0 {
		t.Timeout = 5 * time.Second
	}
	if t.Retries == 0 {
		t.Retries = 2
	}
}

// session builds a gosnmp client for the target.
func (t *SNMPTarget) session() (*gosnmp.GoSNMP, error) {
	version := gosnmp.Version2c
	switch t.Version {
	case "v1":
		version = gosnmp.Version1
	case "v2c", "":
		version = gosnmp.Version2c
	case "v3":
		version = gosnmp.Version3
	default:
		return nil, fmt.Errorf("unsupported SNMP version: %q", t.Version)
	}
	return &gosnmp.GoSNMP{
		Target:    t.Host,
		Port:      t.Port,
		Community: t.Community,
		Version:   version,
		Timeout:   t.Timeout,
		Retries:   t.Retries,
		Transport: "udp",
	}, nil
}

// SNMPPoller polls registered targets and normalizes the results. Demo mode
// generates realistic synthetic telemetry so the rest of the pipeline can be
// exercised without live devices.
type SNMPPoller struct {
	demoMode bool

	mu         sync.Mutex
	targets    map[string]*SNMPTarget
	lastValues map[string]map[string]float64
	pollCount  int
	rng        *rand.Rand
}

// NewSNMPPoller returns a poller. When demoMode is set, polls return
// synthetic metrics instead of querying devices.
func NewSNMPPoller(demoMode bool) *SNMPPoller {
	return &SNMPPoller{
		demoMode:   demoMode,
		targets:    make(map[string]*SNMPTarget),
		lastValues: make(map[string]map[string]float64),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddTarget registers a device for polling.
func (p *SNMPPoller) AddTarget(target SNMPTarget) {
	target.withDefaults()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.targets[target.Host] = &target
	p.lastValues[target.Host] = make(map[string]float64)
	log.Infof("Added SNMP target: %s (%s)", target.Host, target.Version)
}

// RemoveTarget removes a device from polling.
func (p *SNMPPoller) RemoveTarget(host string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.targets, host)
	delete(p.lastValues, host)
}

// TargetCount returns the number of registered targets.
func (p *SNMPPoller) TargetCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.targets)
}

// PollCount returns how many full polling rounds have completed.
func (p *SNMPPoller) PollCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pollCount
}

// PollDevice polls a single device and returns unified metrics.
func (p *SNMPPoller) PollDevice(ctx context.Context, host string) ([]model.Metric, error) {
	p.mu.Lock()
	target, ok := p.targets[host]
	p.mu.Unlock()
	if !ok {
		return nil, errors.Errorf("unknown target: %s", host)
	}
	if p.demoMode {
		return p.mockPoll(target), nil
	}
	return p.pollLive(ctx, target)
}

// PollAll polls every registered target. Per-device failures are aggregated
// and do not prevent other devices from being polled.
func (p *SNMPPoller) PollAll(ctx context.Context) ([]model.Metric, error) {
	p.mu.Lock()
	hosts := make([]string, 0, len(p.targets))
	for host := range p.targets {
		hosts = append(hosts, host)
	}
	p.mu.Unlock()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		all     []model.Metric
		pollErr *multierror.Error
	)
	for _, host := range hosts {
		wg.Add(1)
		go func(host string) {
			defer wg.Done()
			metrics, err := p.PollDevice(ctx, host)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Errorf("Poll error: %v", err)
				pollErr = multierror.Append(pollErr, errors.Wrapf(err, "polling %s", host))
				return
			}
			all = append(all, metrics...)
		}(host)
	}
	wg.Wait()

	p.mu.Lock()
	p.pollCount++
	p.mu.Unlock()
	return all, pollErr.ErrorOrNil()
}

// DiscoverDevice queries a device's system MIB and returns an inventory entry.
func (p *SNMPPoller) DiscoverDevice(ctx context.Context, host, community string) (*model.Device, error) {
	if p.demoMode {
		return p.mockDiscover(host, community), nil
	}
	return p.discoverLive(ctx, host, community)
}

// GetInterfaces returns the interface inventory of a device via IF-MIB.
func (p *SNMPPoller) GetInterfaces(ctx context.Context, host string) ([]model.Interface, error) {
	if p.demoMode {
		return p.mockInterfaces(host), nil
	}
	return nil, errors.New("live interface inventory requires a registered target with SNMP access")
}

func (p *SNMPPoller) pollLive(ctx context.Context, target *SNMPTarget) ([]model.Metric, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session, err := target.session()
	if err != nil {
		return nil, err
	}
	if err := session.ConnectIPv4(); err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", target.Host)
	}
	defer session.Conn.Close()

	now := time.Now().UTC()
	var metrics []model.Metric

	// CPU from hrProcessorLoad, averaged across cores.
	var loads []float64
	err = session.BulkWalk(oidHrProcessorLoad, func(pdu gosnmp.SnmpPDU) error {
		loads = append(loads, float64(gosnmp.ToBigInt(pdu.Value).Int64()))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walking hrProcessorLoad on %s", target.Host)
	}
	if len(loads) > 0 {
		var sum float64
		for _, l := range loads {
			sum += l
		}
		metrics = append(metrics, model.Metric{
			ID:         model.NewID(),
			DeviceID:   target.Host,
			MetricType: model.MetricCPU,
			Value:      sum / float64(len(loads)),
			Unit:       "percent",
			Timestamp:  now,
			Source:     model.CollectorSNMP,
		})
	}

	// A cancelled poll returns what it has gathered so far.
	if ctx.Err() != nil {
		return metrics, nil
	}

	// Uptime.
	result, err := session.Get([]string{oidSysUpTime})
	if err == nil && len(result.Variables) > 0 {
		ticks := gosnmp.ToBigInt(result.Variables[0].Value).Int64()
		metrics = append(metrics, model.Metric{
			ID:         model.NewID(),
			DeviceID:   target.Host,
			MetricType: model.MetricUptime,
			Value:      float64(ticks) / 100.0,
			Unit:       "seconds",
			Timestamp:  now,
			Source:     model.CollectorSNMP,
		})
	}
	return metrics, nil
}

func (p *SNMPPoller) discoverLive(ctx context.Context, host, community string) (*model.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target := &SNMPTarget{Host: host, Community: community}
	target.withDefaults()
	session, err := target.session()
	if err != nil {
		return nil, err
	}
	if err := session.ConnectIPv4(); err != nil {
		return nil, errors.Wrapf(err, "connecting to %s", host)
	}
	defer session.Conn.Close()

	result, err := session.Get([]string{oidSysDescr, oidSysName, oidSysLocation, oidSysUpTime})
	if err != nil {
		return nil, errors.Wrapf(err, "querying system MIB on %s", host)
	}
	device := &model.Device{
		ID:            model.NewID(),
		IPAddress:     host,
		DeviceType:    model.DeviceTypeUnknown,
		Vendor:        model.VendorUnknown,
		SNMPCommunity: community,
		DiscoveredAt:  time.Now().UTC(),
		LastSeen:      time.Now().UTC(),
		IsManaged:     true,
	}
	for _, v := range result.Variables {
		switch v.Name {
		case "." + oidSysDescr:
			if b, ok := v.Value.([]byte); ok {
				device.SysDescription = string(b)
			}
		case "." + oidSysName:
			if b, ok := v.Value.([]byte); ok {
				device.Hostname = string(b)
			}
		case "." + oidSysLocation:
			if b, ok := v.Value.([]byte); ok {
				device.Location = string(b)
			}
		case "." + oidSysUpTime:
			device.UptimeSeconds = gosnmp.ToBigInt(v.Value).Int64() / 100
		}
	}
	if device.Hostname == "" {
		device.Hostname = host
	}
	return device, nil
}

func (p *SNMPPoller) gauss(mean, stddev float64) float64 {
	return p.rng.NormFloat64()*stddev + mean
}

func (p *SNMPPoller) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}

// mockPoll evolves a per-device baseline so consecutive polls look like a
// real time series rather than white noise.
func (p *SNMPPoller) mockPoll(target *SNMPTarget) []model.Metric {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now().UTC()
	deviceID := target.Host
	last := p.lastValues[target.Host]
	if last == nil {
		last = make(map[string]float64)
	}
	var metrics []model.Metric

	newMetric := func(mt model.MetricType, value float64, unit, iface string) model.Metric {
		return model.Metric{
			ID:            model.NewID(),
			DeviceID:      deviceID,
			InterfaceName: iface,
			MetricType:    mt,
			Value:         value,
			Unit:          unit,
			Timestamp:     now,
			Source:        model.CollectorSNMP,
		}
	}

	// CPU fluctuates around a drifting baseline with occasional spikes.
	cpuBase, ok := last["cpu_base"]
	if !ok {
		cpuBase = p.uniform(15, 45)
	}
	cpu := clamp(cpuBase+p.gauss(0, 5), 0, 100)
	if p.rng.Float64() < 0.02 {
		cpu = minF(100, cpu+p.uniform(20, 40))
	}
	metrics = append(metrics, newMetric(model.MetricCPU, round1(cpu), "percent", ""))
	last["cpu_base"] = cpuBase + p.gauss(0, 0.5)

	memBase, ok := last["mem_base"]
	if !ok {
		memBase = p.uniform(40, 75)
	}
	mem := clamp(memBase+p.gauss(0, 2), 0, 100)
	metrics = append(metrics, newMetric(model.MetricMemory, round1(mem), "percent", ""))
	last["mem_base"] = memBase + p.gauss(0, 0.3)

	for i := 0; i < 4; i++ {
		iface := fmt.Sprintf("GigabitEthernet0/%d", i)
		inKey := fmt.Sprintf("bw_in_%d", i)
		outKey := fmt.Sprintf("bw_out_%d", i)
		bwIn, ok := last[inKey]
		if !ok {
			bwIn = p.uniform(10, 500)
		}
		bwIn = maxF(0, bwIn+p.gauss(0, 50))
		bwOut, ok := last[outKey]
		if !ok {
			bwOut = p.uniform(10, 500)
		}
		bwOut = maxF(0, bwOut+p.gauss(0, 50))
		metrics = append(metrics, newMetric(model.MetricBandwidthIn, round2(bwIn), "Mbps", iface))
		metrics = append(metrics, newMetric(model.MetricBandwidthOut, round2(bwOut), "Mbps", iface))
		last[inKey] = bwIn
		last[outKey] = bwOut
	}

	errRate := maxF(0, p.gauss(0.1, 0.5))
	metrics = append(metrics, newMetric(model.MetricErrorRate, round3(errRate), "errors/sec", ""))

	temp, ok := last["temp"]
	if !ok {
		temp = p.uniform(35, 55)
	}
	temp += p.gauss(0, 1)
	metrics = append(metrics, newMetric(model.MetricTemperature, round1(temp), "celsius", ""))
	last["temp"] = temp

	p.lastValues[target.Host] = last
	return metrics
}

func (p *SNMPPoller) mockDiscover(host, community string) *model.Device {
	type profile struct {
		vendor model.DeviceVendor
		dtype  model.DeviceType
		model  string
		osver  string
	}
	profiles := []profile{
		{model.VendorCisco, model.DeviceTypeRouter, "ISR4451-X", "IOS-XE 17.6.4"},
		{model.VendorCisco, model.DeviceTypeSwitch, "C9300-48P", "IOS-XE 17.9.1"},
		{model.VendorArista, model.DeviceTypeSwitch, "DCS-7280R3", "EOS 4.31.1F"},
		{model.VendorJuniper, model.DeviceTypeRouter, "MX204", "Junos 23.2R1"},
		{model.VendorPaloAlto, model.DeviceTypeFirewall, "PA-5260", "PAN-OS 11.1.0"},
	}
	p.mu.Lock()
	pick := profiles[p.rng.Intn(len(profiles))]
	serial := fmt.Sprintf("SN%d", 100000+p.rng.Intn(900000))
	uptime := int64(86400 + p.rng.Intn(31536000-86400))
	p.mu.Unlock()

	now := time.Now().UTC()
	return &model.Device{
		ID:             model.NewID(),
		Hostname:       "device-" + dotsToDashes(host),
		IPAddress:      host,
		DeviceType:     pick.dtype,
		Vendor:         pick.vendor,
		Model:          pick.model,
		OSVersion:      pick.osver,
		SerialNumber:   serial,
		SNMPCommunity:  community,
		UptimeSeconds:  uptime,
		SysDescription: fmt.Sprintf("%s %s running %s", vendorTitle(pick.vendor), pick.model, pick.osver),
		DiscoveredAt:   now,
		LastSeen:       now,
		IsManaged:      true,
	}
}

func (p *SNMPPoller) mockInterfaces(host string) []model.Interface {
	p.mu.Lock()
	defer p.mu.Unlock()

	interfaces := make([]model.Interface, 0, 8)
	for i := 0; i < 8; i++ {
		status := model.InterfaceUp
		if p.rng.Float64() <= 0.15 {
			status = model.InterfaceDown
		}
		desc := "Link to upstream"
		if i >= 2 {
			desc = fmt.Sprintf("Link to server-%d", i)
		}
		speed := 1000
		mtu := 1500
		if i >= 4 {
			speed = 10000
			mtu = 9216
		}
		iface := model.Interface{
			Name:        fmt.Sprintf("GigabitEthernet0/%d", i),
			Index:       i + 1,
			Description: desc,
			SpeedMbps:   speed,
			AdminStatus: model.InterfaceUp,
			OperStatus:  status,
			MACAddress:  fmt.Sprintf("00:1A:2B:3C:4D:%02X", i),
			MTU:         mtu,
			InOctets:    uint64(1000000 + p.rng.Int63n(9000000000-1000000)),
			OutOctets:   uint64(1000000 + p.rng.Int63n(9000000000-1000000)),
			InErrors:    uint64(p.rng.Intn(101)),
			OutErrors:   uint64(p.rng.Intn(51)),
		}
		if i < 4 {
			iface.IPAddress = fmt.Sprintf("10.0.%d.1", i)
			iface.SubnetMask = "255.255.255.0"
			iface.VLANID = i*10 + 10
		}
		interfaces = append(interfaces, iface)
	}
	return interfaces
}
