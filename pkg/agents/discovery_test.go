// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/collect"
	"github.com/cwccie/netopshub/pkg/discover"
	"github.com/cwccie/netopshub/pkg/model"
)

func demoDiscoveryAgent() *DiscoveryAgent {
	scanner := discover.NewNetworkScanner(collect.NewSNMPPoller(true), true)
	return NewDiscoveryAgent(scanner, discover.NewTopologyDiscovery())
}

// demoDeviceID resolves a hostname to its generated device ID from a
// build_topology task result.
func demoDeviceID(t *testing.T, a *DiscoveryAgent, hostname string) string {
	t.Helper()
	done := a.Process(context.Background(), NewTask("discovery", "build_topology", "", nil))
	graph, ok := done.OutputData["topology"].(model.TopologyGraph)
	require.True(t, ok)
	for _, d := range graph.Devices {
		if d.Hostname == hostname {
			return d.ID
		}
	}
	t.Fatalf("device %s not in demo topology", hostname)
	return ""
}

func TestScanSubnetTask(t *testing.T) {
	a := demoDiscoveryAgent()

	task := NewTask("discovery", "scan_subnet", "", map[string]interface{}{
		"subnet": "10.0.0.0/24",
	})
	done := a.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)

	assert.Equal(t, 8, done.OutputData["devices_found"])
	devices, ok := done.OutputData["devices"].([]model.Device)
	require.True(t, ok)
	assert.Len(t, devices, 8)
}

func TestScanSubnetBadCIDR(t *testing.T) {
	a := demoDiscoveryAgent()

	task := NewTask("discovery", "scan_subnet", "", map[string]interface{}{
		"subnet": "not-a-subnet",
	})
	done := a.Process(context.Background(), task)
	assert.Equal(t, model.TaskFailed, done.Status)
	assert.Contains(t, done.Error, "parsing subnet")
}

func TestBuildTopologyTask(t *testing.T) {
	a := demoDiscoveryAgent()

	done := a.Process(context.Background(), NewTask("discovery", "build_topology", "", nil))
	require.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, 8, done.OutputData["device_count"])
	assert.Equal(t, 12, done.OutputData["link_count"])
}

func TestGetNeighborsTask(t *testing.T) {
	a := demoDiscoveryAgent()
	coreID := demoDeviceID(t, a, "router-core-1")

	done := a.Process(context.Background(), NewTask("discovery", "get_neighbors", "", map[string]interface{}{
		"device_id": coreID,
	}))
	require.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, coreID, done.OutputData["device_id"])
	// Dual-core layout: the core router peers with its twin, both
	// distribution switches, the edge firewall and the branch router.
	assert.Len(t, done.OutputData["neighbors"], 5)
}

func TestBlastRadiusTask(t *testing.T) {
	a := demoDiscoveryAgent()
	coreID := demoDeviceID(t, a, "router-core-1")

	done := a.Process(context.Background(), NewTask("discovery", "blast_radius", "", map[string]interface{}{
		"device_id": coreID,
	}))
	require.Equal(t, model.TaskCompleted, done.Status)

	// Within the default two hops the core router reaches every other
	// demo device.
	assert.Equal(t, 7, done.OutputData["count"])
	assert.Len(t, done.OutputData["affected_devices"], 7)
	assert.NotContains(t, done.OutputData["affected_devices"], coreID)
}

func TestBlastRadiusSingleHop(t *testing.T) {
	a := demoDiscoveryAgent()
	branchID := demoDeviceID(t, a, "router-branch-1")

	done := a.Process(context.Background(), NewTask("discovery", "blast_radius", "", map[string]interface{}{
		"device_id": branchID,
		"max_hops":  1,
	}))
	// The branch router hangs off a single core uplink.
	assert.Equal(t, 1, done.OutputData["count"])
}

func TestDiscoveryUnknownTaskType(t *testing.T) {
	a := demoDiscoveryAgent()

	done := a.Process(context.Background(), NewTask("discovery", "bogus", "", nil))
	assert.Equal(t, model.TaskFailed, done.Status)
	assert.Equal(t, "Unknown task type: bogus", done.Error)
}

func TestDiscoveryChat(t *testing.T) {
	a := demoDiscoveryAgent()
	ctx := context.Background()

	response := a.Chat(ctx, "Discover devices on the network", nil)
	assert.Contains(t, response, "I discovered 8 devices")
	assert.Contains(t, response, "router-core-1")

	response = a.Chat(ctx, "Show the topology", nil)
	assert.Contains(t, response, "8 devices, 12 links")
	assert.Contains(t, response, "Most critical devices")

	response = a.Chat(ctx, "How many devices do you know about?", nil)
	assert.Contains(t, response, "8 devices in inventory")

	response = a.Chat(ctx, "hello", nil)
	assert.Contains(t, response, "network discovery")
}
