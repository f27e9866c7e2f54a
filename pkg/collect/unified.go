// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package collect

import (
	"context"
	"sync"
	"time"

	"github.com/cwccie/netopshub/pkg/config"
	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

// MetricFilter narrows a metric query. Zero values match everything.
type MetricFilter struct {
	DeviceID   string
	MetricType model.MetricType
	Since      time.Time
	Limit      int
}

// UnifiedCollector orchestrates all collection engines into one pipeline and
// keeps a bounded store of recent metrics for queries.
type UnifiedCollector struct {
	SNMP    *SNMPPoller
	NetFlow *NetFlowReceiver
	Syslog  *SyslogListener
	REST    *RESTCollector

	maxMetrics int

	mu              sync.RWMutex
	started         bool
	collectionCount int
	metrics         []model.Metric
}

// NewUnifiedCollector builds a collector wired from the process config.
func NewUnifiedCollector(cfg config.Config) *UnifiedCollector {
	demoMode := cfg.GetBool("demo_mode")
	return &UnifiedCollector{
		SNMP: NewSNMPPoller(demoMode),
		NetFlow: NewNetFlowReceiver(
			cfg.GetString("netflow.host"),
			cfg.GetInt("netflow.port"),
			demoMode,
			cfg.GetInt("netflow.max_flows"),
		),
		Syslog: NewSyslogListener(
			cfg.GetString("syslog.host"),
			cfg.GetInt("syslog.port"),
			demoMode,
			cfg.GetInt("syslog.max_messages"),
		),
		REST:       NewRESTCollector(demoMode),
		maxMetrics: cfg.GetInt("collect.max_metrics"),
	}
}

// Start brings up the passive collection engines (NetFlow, syslog).
func (u *UnifiedCollector) Start(ctx context.Context) error {
	if err := u.NetFlow.Start(ctx); err != nil {
		return err
	}
	if err := u.Syslog.Start(ctx); err != nil {
		u.NetFlow.Stop()
		return err
	}
	u.mu.Lock()
	u.started = true
	u.mu.Unlock()
	log.Info("Unified collector started (all engines active)")
	return nil
}

// Stop shuts down the passive collection engines.
func (u *UnifiedCollector) Stop() {
	u.NetFlow.Stop()
	u.Syslog.Stop()
	u.mu.Lock()
	u.started = false
	u.mu.Unlock()
	log.Info("Unified collector stopped")
}

// IsRunning reports whether Start has been called without a matching Stop.
func (u *UnifiedCollector) IsRunning() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.started
}

// CollectionCount returns how many collection rounds have run.
func (u *UnifiedCollector) CollectionCount() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.collectionCount
}

// TotalMetrics returns the number of stored metrics.
func (u *UnifiedCollector) TotalMetrics() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.metrics)
}

// CollectAll runs one round of active collection (SNMP and REST), stores the
// results, and returns the metrics gathered this round. Per-source failures
// are logged and do not abort the round.
func (u *UnifiedCollector) CollectAll(ctx context.Context) []model.Metric {
	var round []model.Metric

	snmpMetrics, err := u.SNMP.PollAll(ctx)
	if err != nil {
		log.Errorf("SNMP collection error: %v", err)
	}
	round = append(round, snmpMetrics...)
	round = append(round, u.REST.CollectAll(ctx)...)

	u.mu.Lock()
	u.collectionCount++
	u.metrics = append(u.metrics, round...)
	if max := u.maxMetrics; max > 0 && len(u.metrics) > max {
		u.metrics = u.metrics[len(u.metrics)-max:]
	}
	u.mu.Unlock()
	return round
}

// GetMetrics queries the stored metrics with filters, returning at most the
// trailing Limit entries in collection order.
func (u *UnifiedCollector) GetMetrics(filter MetricFilter) []model.Metric {
	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	u.mu.RLock()
	defer u.mu.RUnlock()

	var result []model.Metric
	for _, m := range u.metrics {
		if filter.DeviceID != "" && m.DeviceID != filter.DeviceID {
			continue
		}
		if filter.MetricType != "" && m.MetricType != filter.MetricType {
			continue
		}
		if !filter.Since.IsZero() && m.Timestamp.Before(filter.Since) {
			continue
		}
		result = append(result, m)
	}
	if len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}
