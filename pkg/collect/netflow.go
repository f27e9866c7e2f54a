// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package collect

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"sort"
	"sync"
	"time"

	flowpb "github.com/netsampler/goflow2/pb"
	"github.com/netsampler/goflow2/utils"

	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

var commonPorts = []int{22, 53, 80, 443, 8080, 8443, 3389, 25, 110, 143, 993, 995}

// AddressBytes is a per-address byte count in an aggregation.
type AddressBytes struct {
	Address string `json:"address"`
	Bytes   uint64 `json:"bytes"`
}

// PortBytes is a per-destination-port byte count in an aggregation.
type PortBytes struct {
	Port  int    `json:"port"`
	Bytes uint64 `json:"bytes"`
}

// TalkerStat is the total traffic attributed to one host, both directions.
type TalkerStat struct {
	Address    string `json:"address"`
	TotalBytes uint64 `json:"total_bytes"`
}

// FlowAggregation summarizes flow traffic over a period.
type FlowAggregation struct {
	TotalBytes           uint64            `json:"total_bytes"`
	TotalPackets         uint64            `json:"total_packets"`
	TotalFlows           int               `json:"total_flows"`
	TopSources           []AddressBytes    `json:"top_sources"`
	TopDestinations      []AddressBytes    `json:"top_destinations"`
	TopApplications      []PortBytes       `json:"top_applications"`
	ProtocolDistribution map[string]uint64 `json:"protocol_distribution"`
	PeriodStart          time.Time         `json:"period_start"`
	PeriodEnd            time.Time         `json:"period_end"`
}

// goflowLogger adapts the package logger to goflow's logging interface.
type goflowLogger struct{}

func (goflowLogger) Printf(format string, params ...interface{}) { log.Infof(format, params...) }
func (goflowLogger) Errorf(format string, params ...interface{}) { log.Errorf(format, params...) }
func (goflowLogger) Error(params ...interface{})                 { log.Error(params...) }
func (goflowLogger) Warnf(format string, params ...interface{})  { log.Warnf(format, params...) }
func (goflowLogger) Warn(params ...interface{})                  { log.Warn(params...) }
func (goflowLogger) Debug(params ...interface{})                 { log.Debug(params...) }
func (goflowLogger) Debugf(format string, params ...interface{}) { log.Debugf(format, params...) }
func (goflowLogger) Infof(format string, params ...interface{})  { log.Infof(format, params...) }
func (goflowLogger) Fatalf(format string, params ...interface{}) { log.Errorf(format, params...) }

// captureFormatter receives decoded goflow messages and feeds them into the
// receiver's flow buffer. It satisfies goflow's format interface; the key and
// payload returns are unused because flows never leave the process.
type captureFormatter struct {
	receiver *NetFlowReceiver
}

func (c *captureFormatter) Format(data interface{}) ([]byte, []byte, error) {
	msg, ok := data.(*flowpb.FlowMessage)
	if !ok {
		return nil, nil, fmt.Errorf("unexpected flow message type %T", data)
	}
	c.receiver.addFlow(convertFlow(msg))
	return nil, nil, nil
}

// convertFlow maps a goflow protobuf message to the internal flow record.
func convertFlow(msg *flowpb.FlowMessage) model.NetFlowRecord {
	return model.NetFlowRecord{
		SrcAddr:         net.IP(msg.SrcAddr).String(),
		DstAddr:         net.IP(msg.DstAddr).String(),
		SrcPort:         int(msg.SrcPort),
		DstPort:         int(msg.DstPort),
		Protocol:        int(msg.Proto),
		Bytes:           msg.Bytes,
		Packets:         msg.Packets,
		StartTime:       time.Unix(int64(msg.TimeFlowStart), 0).UTC(),
		EndTime:         time.Unix(int64(msg.TimeFlowEnd), 0).UTC(),
		SrcAS:           int(msg.SrcAs),
		DstAS:           int(msg.DstAs),
		InputInterface:  int(msg.InIf),
		OutputInterface: int(msg.OutIf),
		TCPFlags:        int(msg.TcpFlags),
		ToS:             int(msg.IpTos),
		ExporterIP:      net.IP(msg.SamplerAddress).String(),
	}
}

// NetFlowReceiver ingests NetFlow v5/v9 and IPFIX datagrams and keeps a
// bounded in-memory flow buffer for aggregation queries. Demo mode seeds the
// buffer with synthetic flows instead of listening.
type NetFlowReceiver struct {
	ListenAddr string
	ListenPort int

	demoMode bool
	maxFlows int

	mu            sync.RWMutex
	flows         []model.NetFlowRecord
	totalReceived int
	running       bool

	state       *utils.StateNetFlow
	legacyState *utils.StateNFLegacy
	rng         *rand.Rand
}

// NewNetFlowReceiver returns a receiver bound to the given UDP port.
func NewNetFlowReceiver(addr string, port int, demoMode bool, maxFlows int) *NetFlowReceiver {
	if maxFlows <= 0 {
		maxFlows = 50000
	}
	return &NetFlowReceiver{
		ListenAddr: addr,
		ListenPort: port,
		demoMode:   demoMode,
		maxFlows:   maxFlows,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins flow ingestion. In demo mode it seeds synthetic flows; in
// production it starts goflow listeners for NetFlow v9/IPFIX and legacy v5 on
// the configured port and port+1.
func (r *NetFlowReceiver) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.mu.Unlock()

	log.Infof("NetFlow receiver started on UDP port %d", r.ListenPort)
	if r.demoMode {
		r.generateDemoFlows(500)
		return nil
	}

	formatter := &captureFormatter{receiver: r}
	logger := goflowLogger{}
	r.state = &utils.StateNetFlow{Format: formatter, Logger: logger}
	r.legacyState = &utils.StateNFLegacy{Format: formatter, Logger: logger}

	go func() {
		if err := r.state.FlowRoutine(1, r.ListenAddr, r.ListenPort, false); err != nil {
			log.Errorf("NetFlow v9/IPFIX listener error: %v", err)
		}
	}()
	go func() {
		if err := r.legacyState.FlowRoutine(1, r.ListenAddr, r.ListenPort+1, false); err != nil {
			log.Errorf("NetFlow v5 listener error: %v", err)
		}
	}()
	return nil
}

// Stop shuts down the listeners.
func (r *NetFlowReceiver) Stop() {
	r.mu.Lock()
	running := r.running
	r.running = false
	r.mu.Unlock()
	if !running {
		return
	}
	if r.state != nil {
		r.state.Shutdown()
	}
	if r.legacyState != nil {
		r.legacyState.Shutdown()
	}
	log.Info("NetFlow receiver stopped")
}

func (r *NetFlowReceiver) addFlow(flow model.NetFlowRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows = append(r.flows, flow)
	if len(r.flows) > r.maxFlows {
		r.flows = r.flows[len(r.flows)-r.maxFlows:]
	}
	r.totalReceived++
}

// FlowCount returns the number of buffered flows.
func (r *NetFlowReceiver) FlowCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

// TotalReceived returns the number of flows ingested since start.
func (r *NetFlowReceiver) TotalReceived() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totalReceived
}

// GetFlows queries buffered flows with optional filters. A zero since time
// matches everything.
func (r *NetFlowReceiver) GetFlows(since time.Time, srcAddr, dstAddr string, limit int) []model.NetFlowRecord {
	if limit <= 0 {
		limit = 1000
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.NetFlowRecord, 0, limit)
	for _, f := range r.flows {
		if !since.IsZero() && f.StartTime.Before(since) {
			continue
		}
		if srcAddr != "" && f.SrcAddr != srcAddr {
			continue
		}
		if dstAddr != "" && f.DstAddr != dstAddr {
			continue
		}
		out = append(out, f)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Aggregate summarizes the flows whose start time falls in the trailing
// period, with the top N entries per dimension.
func (r *NetFlowReceiver) Aggregate(period time.Duration, topN int) FlowAggregation {
	if topN <= 0 {
		topN = 10
	}
	now := time.Now().UTC()
	cutoff := now.Add(-period)

	r.mu.RLock()
	defer r.mu.RUnlock()

	agg := FlowAggregation{
		PeriodStart:          cutoff,
		PeriodEnd:            now,
		ProtocolDistribution: make(map[string]uint64),
	}
	srcBytes := make(map[string]uint64)
	dstBytes := make(map[string]uint64)
	portBytes := make(map[int]uint64)

	for _, f := range r.flows {
		if f.StartTime.Before(cutoff) {
			continue
		}
		agg.TotalFlows++
		agg.TotalBytes += f.Bytes
		agg.TotalPackets += f.Packets
		srcBytes[f.SrcAddr] += f.Bytes
		dstBytes[f.DstAddr] += f.Bytes
		portBytes[f.DstPort] += f.Bytes
		agg.ProtocolDistribution[model.ProtocolName(f.Protocol)] += f.Bytes
	}

	agg.TopSources = topAddresses(srcBytes, topN)
	agg.TopDestinations = topAddresses(dstBytes, topN)
	agg.TopApplications = topPorts(portBytes, topN)
	return agg
}

// GetTopTalkers returns the hosts moving the most traffic across the whole
// buffer, counting both directions.
func (r *NetFlowReceiver) GetTopTalkers(n int) []TalkerStat {
	if n <= 0 {
		n = 10
	}
	r.mu.RLock()
	hostBytes := make(map[string]uint64)
	for _, f := range r.flows {
		hostBytes[f.SrcAddr] += f.Bytes
		hostBytes[f.DstAddr] += f.Bytes
	}
	r.mu.RUnlock()

	talkers := make([]TalkerStat, 0, len(hostBytes))
	for addr, b := range hostBytes {
		talkers = append(talkers, TalkerStat{Address: addr, TotalBytes: b})
	}
	sort.Slice(talkers, func(i, j int) bool {
		if talkers[i].TotalBytes != talkers[j].TotalBytes {
			return talkers[i].TotalBytes > talkers[j].TotalBytes
		}
		return talkers[i].Address < talkers[j].Address
	})
	if len(talkers) > n {
		talkers = talkers[:n]
	}
	return talkers
}

// ToMetrics bridges recent flow volume into the unified metric schema as a
// 5-minute average bandwidth figure attributed to the exporter.
func (r *NetFlowReceiver) ToMetrics(deviceID string) []model.Metric {
	agg := r.Aggregate(5*time.Minute, 10)
	mbps := float64(agg.TotalBytes) / (5 * 60) * 8 / 1e6
	return []model.Metric{{
		ID:         model.NewID(),
		DeviceID:   deviceID,
		MetricType: model.MetricBandwidthIn,
		Value:      round2(mbps),
		Unit:       "Mbps",
		Timestamp:  time.Now().UTC(),
		Source:     model.CollectorNetFlow,
		Tags:       map[string]string{"aggregation": "5min"},
	}}
}

func topAddresses(byAddr map[string]uint64, n int) []AddressBytes {
	out := make([]AddressBytes, 0, len(byAddr))
	for addr, b := range byAddr {
		out = append(out, AddressBytes{Address: addr, Bytes: b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].Address < out[j].Address
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func topPorts(byPort map[int]uint64, n int) []PortBytes {
	out := make([]PortBytes, 0, len(byPort))
	for port, b := range byPort {
		out = append(out, PortBytes{Port: port, Bytes: b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].Port < out[j].Port
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// generateDemoFlows seeds the buffer with a realistic traffic mix: mostly TCP
// to well-known ports, a spread of internal subnets, and a handful of popular
// external destinations.
func (r *NetFlowReceiver) generateDemoFlows(count int) {
	subnets := []string{"10.0.1", "10.0.2", "10.0.3", "172.16.1", "192.168.1"}
	external := []string{
		"8.8.8.8", "1.1.1.1", "151.101.1.69", "13.107.42.14",
		"172.217.14.110", "104.16.249.249", "93.184.216.34",
	}
	now := time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < count; i++ {
		src := fmt.Sprintf("%s.%d", subnets[r.rng.Intn(len(subnets))], 1+r.rng.Intn(254))
		dst := external[r.rng.Intn(len(external))]
		if r.rng.Float64() <= 0.3 {
			dst = fmt.Sprintf("%s.%d", subnets[r.rng.Intn(len(subnets))], 1+r.rng.Intn(254))
		}
		proto := pickProtocol(r.rng)
		srcPort, dstPort, tcpFlags := 0, 0, 0
		if proto != 1 {
			srcPort = 1024 + r.rng.Intn(65535-1024)
			dstPort = commonPorts[r.rng.Intn(len(commonPorts))]
		}
		if proto == 6 {
			tcpFlags = r.rng.Intn(32)
		}
		start := now.Add(-time.Duration(r.rng.Intn(61)) * time.Minute)

		r.flows = append(r.flows, model.NetFlowRecord{
			SrcAddr:         src,
			DstAddr:         dst,
			SrcPort:         srcPort,
			DstPort:         dstPort,
			Protocol:        proto,
			Bytes:           uint64(64 + r.rng.Intn(15000000-64)),
			Packets:         uint64(1 + r.rng.Intn(10000)),
			StartTime:       start,
			EndTime:         start.Add(time.Duration(1+r.rng.Intn(300)) * time.Second),
			InputInterface:  1 + r.rng.Intn(8),
			OutputInterface: 1 + r.rng.Intn(8),
			TCPFlags:        tcpFlags,
			ExporterIP:      "10.0.0.1",
		})
	}
	r.totalReceived = count
}

// pickProtocol draws TCP/UDP/ICMP with 70/25/5 weights.
func pickProtocol(rng *rand.Rand) int {
	n := rng.Intn(100)
	switch {
	case n < 70:
		return 6
	case n < 95:
		return 17
	default:
		return 1
	}
}
