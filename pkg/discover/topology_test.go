// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package discover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/model"
)

// lineTopology builds a--b--c--d with one link per segment.
func lineTopology() (*TopologyDiscovery, map[string]model.Device) {
	t := NewTopologyDiscovery()
	devices := make(map[string]model.Device)
	for _, name := range []string{"a", "b", "c", "d"} {
		d := model.Device{ID: "id-" + name, Hostname: name}
		devices[name] = d
		t.AddDevice(d)
	}
	pairs := [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}}
	for _, p := range pairs {
		t.AddNeighbor(model.Neighbor{
			LocalDeviceID:   "id-" + p[0],
			LocalInterface:  "Gi0/0",
			RemoteDeviceID:  "id-" + p[1],
			RemoteInterface: "Gi0/1",
			Protocol:        "lldp",
			DiscoveredAt:    time.Now().UTC(),
		})
	}
	return t, devices
}

func TestBuildTopologyCollapsesLinkDirections(t *testing.T) {
	topo, _ := lineTopology()
	// Record the reverse direction of an existing link; it must not double.
	topo.AddNeighbor(model.Neighbor{
		LocalDeviceID:   "id-b",
		LocalInterface:  "Gi0/1",
		RemoteDeviceID:  "id-a",
		RemoteInterface: "Gi0/0",
		Protocol:        "lldp",
	})

	graph := topo.BuildTopology()
	assert.Len(t, graph.Devices, 4)
	assert.Len(t, graph.Links, 3)
	assert.Equal(t, 3, topo.LinkCount())
	// Devices come back sorted by hostname.
	assert.Equal(t, "a", graph.Devices[0].Hostname)
	assert.Equal(t, "d", graph.Devices[3].Hostname)
}

func TestGetNeighbors(t *testing.T) {
	topo, _ := lineTopology()
	assert.Equal(t, []string{"id-a", "id-c"}, topo.GetNeighbors("id-b"))
	assert.Empty(t, topo.GetNeighbors("id-zzz"))
}

func TestGetPath(t *testing.T) {
	topo, _ := lineTopology()
	assert.Equal(t, []string{"id-a", "id-b", "id-c", "id-d"}, topo.GetPath("id-a", "id-d"))
	assert.Equal(t, []string{"id-a"}, topo.GetPath("id-a", "id-a"))
	assert.Nil(t, topo.GetPath("id-zzz", "id-a"))
	assert.Nil(t, topo.GetPath("id-a", "id-zzz"))
}

func TestGetBlastRadius(t *testing.T) {
	topo, _ := lineTopology()

	oneHop := topo.GetBlastRadius("id-b", 1)
	assert.Len(t, oneHop, 2)
	assert.Contains(t, oneHop, "id-a")
	assert.Contains(t, oneHop, "id-c")

	twoHops := topo.GetBlastRadius("id-a", 2)
	assert.Len(t, twoHops, 2) // b and c; d is three hops out

	all := topo.GetBlastRadius("id-a", 10)
	assert.Len(t, all, 3)
	assert.NotContains(t, all, "id-a")
}

func TestGetCriticalDevices(t *testing.T) {
	topo, _ := lineTopology()
	ranked := topo.GetCriticalDevices()
	require.Len(t, ranked, 4)

	// The middle devices have two neighbors each, the ends one.
	assert.Equal(t, 2, ranked[0].NeighborCount)
	assert.Equal(t, 2, ranked[1].NeighborCount)
	assert.Equal(t, 1, ranked[3].NeighborCount)
	// Equal neighbor counts tie-break on hostname.
	assert.Equal(t, "b", ranked[0].Hostname)
	assert.Equal(t, "c", ranked[1].Hostname)
}

func TestBuildDemoTopology(t *testing.T) {
	topo := NewTopologyDiscovery()
	graph := topo.BuildDemoTopology()

	assert.Len(t, graph.Devices, 8)
	assert.Len(t, graph.Links, 12)
	assert.Equal(t, 8, topo.DeviceCount())
	assert.Equal(t, 12, topo.NeighborCount())

	// The core routers are the most connected devices in the demo layout.
	ranked := topo.GetCriticalDevices()
	require.NotEmpty(t, ranked)
	assert.Contains(t, []string{"router-core-1", "router-core-2"}, ranked[0].Hostname)
}
