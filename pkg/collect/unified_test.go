// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package collect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/config"
	"github.com/cwccie/netopshub/pkg/model"
)

func demoCollector(t *testing.T) *UnifiedCollector {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Set("demo_mode", true)
	return NewUnifiedCollector(cfg)
}

func TestUnifiedStartStop(t *testing.T) {
	u := demoCollector(t)
	assert.False(t, u.IsRunning())

	require.NoError(t, u.Start(context.Background()))
	assert.True(t, u.IsRunning())
	assert.Equal(t, 500, u.NetFlow.FlowCount())
	assert.Equal(t, 200, u.Syslog.MessageCount())

	u.Stop()
	assert.False(t, u.IsRunning())
}

func TestCollectAllStoresMetrics(t *testing.T) {
	u := demoCollector(t)
	u.SNMP.AddTarget(SNMPTarget{Host: "10.0.0.1"})
	u.SNMP.AddTarget(SNMPTarget{Host: "10.0.0.2"})

	round := u.CollectAll(context.Background())
	assert.Len(t, round, 24)
	assert.Equal(t, 1, u.CollectionCount())
	assert.Equal(t, 24, u.TotalMetrics())

	u.CollectAll(context.Background())
	assert.Equal(t, 2, u.CollectionCount())
	assert.Equal(t, 48, u.TotalMetrics())
}

func TestCollectAllIncludesREST(t *testing.T) {
	u := demoCollector(t)
	u.REST.AddEndpoint(NewRESTEndpoint("meraki-cloud", "https://api.meraki.com", "k", "meraki"))

	round := u.CollectAll(context.Background())
	assert.Len(t, round, 3)
	for _, m := range round {
		assert.Equal(t, model.CollectorRESTAPI, m.Source)
	}
}

func TestGetMetricsFilters(t *testing.T) {
	u := demoCollector(t)
	u.SNMP.AddTarget(SNMPTarget{Host: "10.0.0.1"})
	u.SNMP.AddTarget(SNMPTarget{Host: "10.0.0.2"})
	u.CollectAll(context.Background())

	byDevice := u.GetMetrics(MetricFilter{DeviceID: "10.0.0.1"})
	assert.Len(t, byDevice, 12)

	byType := u.GetMetrics(MetricFilter{MetricType: model.MetricCPU})
	assert.Len(t, byType, 2)

	limited := u.GetMetrics(MetricFilter{Limit: 5})
	assert.Len(t, limited, 5)

	future := u.GetMetrics(MetricFilter{Since: time.Now().UTC().Add(time.Hour)})
	assert.Empty(t, future)
}

func TestMetricStoreBounded(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Set("demo_mode", true)
	cfg.Set("collect.max_metrics", 20)
	u := NewUnifiedCollector(cfg)
	u.SNMP.AddTarget(SNMPTarget{Host: "10.0.0.1"})

	u.CollectAll(context.Background())
	u.CollectAll(context.Background())
	assert.Equal(t, 20, u.TotalMetrics())
}
