// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package collect

import (
	"context"
	"fmt"
	"math/rand"
	"net"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

var facilityNames = map[int]string{
	0: "kern", 1: "user", 2: "mail", 3: "daemon", 4: "auth",
	5: "syslog", 6: "lpr", 7: "news", 8: "uucp", 9: "cron",
	10: "authpriv", 11: "ftp", 16: "local0", 17: "local1",
	18: "local2", 19: "local3", 20: "local4", 21: "local5",
	22: "local6", 23: "local7",
}

var syslogSeverityNames = map[int]string{
	0: "emergency", 1: "alert", 2: "critical", 3: "error",
	4: "warning", 5: "notice", 6: "informational", 7: "debug",
}

// FacilityName returns the textual name of a syslog facility code.
func FacilityName(facility int) string {
	if name, ok := facilityNames[facility]; ok {
		return name
	}
	return fmt.Sprintf("facility-%d", facility)
}

// SyslogSeverityName returns the textual name of a syslog severity code.
func SyslogSeverityName(severity int) string {
	if name, ok := syslogSeverityNames[severity]; ok {
		return name
	}
	return fmt.Sprintf("severity-%d", severity)
}

type syslogPattern struct {
	re       *regexp.Regexp
	category string
}

// Patterns of well-known network device log lines, in matching priority
// order. The first match classifies the message.
var networkSyslogPatterns = []syslogPattern{
	{regexp.MustCompile(`(?i)BGP-5-ADJCHANGE.*neighbor\s+(\S+).*(\w+)$`), "bgp_state_change"},
	{regexp.MustCompile(`(?i)OSPF-5-ADJCHG.*(\S+).*from\s+(\w+)\s+to\s+(\w+)`), "ospf_state_change"},
	{regexp.MustCompile(`(?i)LINK-3-UPDOWN.*Interface\s+(\S+).*changed.*to\s+(\w+)`), "interface_state"},
	{regexp.MustCompile(`(?i)SYS-5-RESTART`), "device_restart"},
	{regexp.MustCompile(`(?i)SEC-6-IPACCESSLOG`), "acl_hit"},
	{regexp.MustCompile(`(?i)HSRP-5-STATECHANGE`), "hsrp_state"},
	{regexp.MustCompile(`(?i)EIGRP-5-NBRCHANGE`), "eigrp_neighbor"},
	{regexp.MustCompile(`(?i)STP-.*TOPOLOGY_CHANGE`), "stp_change"},
	{regexp.MustCompile(`(?i)CONFIG-.*CONFIG_I`), "config_change"},
	{regexp.MustCompile(`(?i)PLATFORM-.*FAN|TEMP|POWER`), "environmental"},
}

var (
	rfc5424Re = regexp.MustCompile(`^<(\d+)>1\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(\S+)\s+(.*)`)
	rfc3164Re = regexp.MustCompile(`^<(\d+)>(\w{3}\s+\d+\s+\d+:\d+:\d+)\s+(\S+)\s+(.*)`)
)

// Classification is the result of matching a message against the known
// network log patterns.
type Classification struct {
	Category string   `json:"category"`
	Matched  bool     `json:"matched"`
	Groups   []string `json:"groups,omitempty"`
}

// ClassifyMessage matches a raw message text against the known patterns.
func ClassifyMessage(message string) Classification {
	for _, p := range networkSyslogPatterns {
		if m := p.re.FindStringSubmatch(message); m != nil {
			return Classification{Category: p.category, Matched: true, Groups: m[1:]}
		}
	}
	return Classification{Category: "unclassified", Matched: false}
}

// ParseRFC5424 parses an RFC 5424 syslog line, returning nil when the line
// does not match the format.
func ParseRFC5424(raw string) *model.SyslogMessage {
	m := rfc5424Re.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	priority, _ := strconv.Atoi(m[1])
	return &model.SyslogMessage{
		ID:             model.NewID(),
		SourceIP:       "0.0.0.0",
		DeviceHostname: m[3],
		Facility:       priority >> 3,
		Severity:       priority & 7,
		Timestamp:      time.Now().UTC(),
		Message:        m[7],
		Program:        m[4],
	}
}

// ParseRFC3164 parses an RFC 3164 (BSD) syslog line, returning nil when the
// line does not match the format.
func ParseRFC3164(raw string) *model.SyslogMessage {
	m := rfc3164Re.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	priority, _ := strconv.Atoi(m[1])
	return &model.SyslogMessage{
		ID:             model.NewID(),
		SourceIP:       "0.0.0.0",
		DeviceHostname: m[3],
		Facility:       priority >> 3,
		Severity:       priority & 7,
		Timestamp:      time.Now().UTC(),
		Message:        m[4],
	}
}

// SyslogFilter narrows a syslog query. Zero values match everything; Severity
// filters to messages at least that urgent (numerically <=).
type SyslogFilter struct {
	Since          time.Time
	Severity       int
	HasSeverity    bool
	DeviceHostname string
	Category       string
	Limit          int
}

// SyslogListener receives RFC 3164/5424 messages over UDP, classifies them,
// and keeps a bounded in-memory buffer. Demo mode seeds synthetic messages
// instead of binding a socket.
type SyslogListener struct {
	ListenAddr string
	ListenPort int

	demoMode    bool
	maxMessages int

	mu            sync.RWMutex
	messages      []model.SyslogMessage
	severityCount map[int]int
	categoryCount map[string]int
	running       bool
	conn          *net.UDPConn
	rng           *rand.Rand
}

// NewSyslogListener returns a listener bound to the given UDP port.
func NewSyslogListener(addr string, port int, demoMode bool, maxMessages int) *SyslogListener {
	if maxMessages <= 0 {
		maxMessages = 10000
	}
	return &SyslogListener{
		ListenAddr:    addr,
		ListenPort:    port,
		demoMode:      demoMode,
		maxMessages:   maxMessages,
		severityCount: make(map[int]int),
		categoryCount: make(map[string]int),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start begins syslog ingestion.
func (l *SyslogListener) Start(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = true
	l.mu.Unlock()

	log.Infof("Syslog listener started on port %d", l.ListenPort)
	if l.demoMode {
		l.generateDemoMessages(200)
		return nil
	}

	udpAddr := &net.UDPAddr{IP: net.ParseIP(l.ListenAddr), Port: l.ListenPort}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.conn = conn
	l.mu.Unlock()

	go l.readLoop(conn)
	return nil
}

// Stop shuts the listener down.
func (l *SyslogListener) Stop() {
	l.mu.Lock()
	running := l.running
	l.running = false
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()
	if !running {
		return
	}
	if conn != nil {
		conn.Close()
	}
	log.Info("Syslog listener stopped")
}

func (l *SyslogListener) readLoop(conn *net.UDPConn) {
	buf := make([]byte, 65535)
	for {
		n, remote, err := conn.ReadFromUDP(buf)
		if err != nil {
			l.mu.RLock()
			running := l.running
			l.mu.RUnlock()
			if running {
				log.Errorf("Syslog read error: %v", err)
			}
			return
		}
		msg := l.Ingest(string(buf[:n]))
		if msg != nil && remote != nil {
			msg.SourceIP = remote.IP.String()
		}
	}
}

// Ingest parses and stores one raw syslog line, trying RFC 5424 first and
// falling back to RFC 3164. Unparseable lines are dropped.
func (l *SyslogListener) Ingest(raw string) *model.SyslogMessage {
	msg := ParseRFC5424(raw)
	if msg == nil {
		msg = ParseRFC3164(raw)
	}
	if msg == nil {
		log.Debugf("Dropping unparseable syslog line: %q", raw)
		return nil
	}
	classification := ClassifyMessage(msg.Message)
	msg.StructuredData = map[string]interface{}{"category": classification.Category}
	l.store(*msg, classification.Category)
	return msg
}

func (l *SyslogListener) store(msg model.SyslogMessage, category string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
	if len(l.messages) > l.maxMessages {
		l.messages = l.messages[len(l.messages)-l.maxMessages:]
	}
	l.severityCount[msg.Severity]++
	l.categoryCount[category]++
}

// MessageCount returns the number of buffered messages.
func (l *SyslogListener) MessageCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// GetMessages queries buffered messages with the given filter, newest first.
func (l *SyslogListener) GetMessages(filter SyslogFilter) []model.SyslogMessage {
	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	l.mu.RLock()
	defer l.mu.RUnlock()

	sorted := make([]model.SyslogMessage, len(l.messages))
	copy(sorted, l.messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	out := make([]model.SyslogMessage, 0, limit)
	for _, m := range sorted {
		if !filter.Since.IsZero() && m.Timestamp.Before(filter.Since) {
			continue
		}
		if filter.HasSeverity && m.Severity > filter.Severity {
			continue
		}
		if filter.DeviceHostname != "" && m.DeviceHostname != filter.DeviceHostname {
			continue
		}
		if filter.Category != "" {
			cat, _ := m.StructuredData["category"].(string)
			if cat != filter.Category {
				continue
			}
		}
		out = append(out, m)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// GetSeverityDistribution returns message counts keyed by severity name.
func (l *SyslogListener) GetSeverityDistribution() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int, len(l.severityCount))
	for sev, count := range l.severityCount {
		out[SyslogSeverityName(sev)] = count
	}
	return out
}

// GetCategoryDistribution returns message counts keyed by pattern category.
func (l *SyslogListener) GetCategoryDistribution() map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int, len(l.categoryCount))
	for cat, count := range l.categoryCount {
		out[cat] = count
	}
	return out
}

// generateDemoMessages seeds the buffer with realistic network device logs
// spread over the trailing 24 hours.
func (l *SyslogListener) generateDemoMessages(count int) {
	devices := []struct {
		hostname string
		sourceIP string
	}{
		{"router-core-1", "10.0.0.1"},
		{"router-core-2", "10.0.0.2"},
		{"switch-dist-1", "10.0.1.1"},
		{"switch-dist-2", "10.0.1.2"},
		{"switch-access-1", "10.0.2.1"},
		{"firewall-edge-1", "10.0.0.254"},
	}
	templates := []struct {
		severity int
		text     string
	}{
		{6, "%SYS-6-LOGGINGHOST_STARTSTOP: Logging to host 10.0.0.100 port 514 started"},
		{5, "%BGP-5-ADJCHANGE: neighbor 10.0.0.{n} {state}"},
		{5, "%OSPF-5-ADJCHG: Process 1, Nbr 10.0.{n}.{n2} on GigabitEthernet0/{intf} from FULL to DOWN"},
		{3, "%LINK-3-UPDOWN: Interface GigabitEthernet0/{intf}, changed state to down"},
		{5, "%LINK-3-UPDOWN: Interface GigabitEthernet0/{intf}, changed state to up"},
		{4, "%SYS-5-CONFIG_I: Configured from console by admin on vty0 (10.0.0.100)"},
		{6, "%SEC-6-IPACCESSLOGP: list OUTSIDE denied tcp 192.168.1.{n}(12345) -> 10.0.1.{n2}(22), 1 packet"},
		{2, "%PLATFORM-2-TEMP_CRITICAL: Temperature sensor 1 reading 85C exceeds threshold 80C"},
		{4, "%STP-4-TOPOLOGY_CHANGE: Topology change detected on GigabitEthernet0/{intf}"},
		{5, "%HSRP-5-STATECHANGE: GigabitEthernet0/0 Grp 1 state Active -> Standby"},
		{6, "%EIGRP-5-NBRCHANGE: EIGRP-IPv4 1: Neighbor 10.0.{n}.{n2} (GigabitEthernet0/{intf}) is up"},
		{3, "%EIGRP-5-NBRCHANGE: EIGRP-IPv4 1: Neighbor 10.0.{n}.{n2} (GigabitEthernet0/{intf}) is down: holding time expired"},
		{5, "%LINEPROTO-5-UPDOWN: Line protocol on Interface GigabitEthernet0/{intf}, changed state to up"},
		{4, "%SNMP-4-NOTRAPIP: SNMP trap source not specified, using default"},
		{6, "%SYS-6-CLOCKUPDATE: System clock has been updated"},
	}
	states := []string{"Up", "Down"}
	now := time.Now().UTC()

	for i := 0; i < count; i++ {
		device := devices[l.rng.Intn(len(devices))]
		tpl := templates[l.rng.Intn(len(templates))]
		message := strings.NewReplacer(
			"{n}", strconv.Itoa(1+l.rng.Intn(10)),
			"{n2}", strconv.Itoa(1+l.rng.Intn(254)),
			"{intf}", strconv.Itoa(l.rng.Intn(8)),
			"{state}", states[l.rng.Intn(2)],
		).Replace(tpl.text)
		classification := ClassifyMessage(message)
		msg := model.SyslogMessage{
			ID:             model.NewID(),
			DeviceHostname: device.hostname,
			SourceIP:       device.sourceIP,
			Facility:       23, // local7
			Severity:       tpl.severity,
			Timestamp:      now.Add(-time.Duration(l.rng.Intn(1441)) * time.Minute),
			Message:        message,
			Program:        "IOS",
			StructuredData: map[string]interface{}{"category": classification.Category},
		}
		l.store(msg, classification.Category)
	}
}
