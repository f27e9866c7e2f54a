// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package discover

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cwccie/netopshub/pkg/model"
)

// DeviceCriticality scores one device by its position in the graph.
type DeviceCriticality struct {
	DeviceID      string `json:"device_id"`
	Hostname      string `json:"hostname"`
	NeighborCount int    `json:"neighbor_count"`
	BlastRadius   int    `json:"blast_radius"`
}

// TopologyDiscovery builds and maintains the network topology graph from
// neighbor relationship data.
type TopologyDiscovery struct {
	mu        sync.RWMutex
	devices   map[string]model.Device
	neighbors []model.Neighbor
	links     []model.TopologyLink
	adjacency map[string]map[string]struct{}
}

// NewTopologyDiscovery returns an empty topology.
func NewTopologyDiscovery() *TopologyDiscovery {
	return &TopologyDiscovery{
		devices:   make(map[string]model.Device),
		adjacency: make(map[string]map[string]struct{}),
	}
}

// AddDevice adds a device to the topology.
func (t *TopologyDiscovery) AddDevice(device model.Device) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.devices[device.ID] = device
}

// AddDevices adds multiple devices to the topology.
func (t *TopologyDiscovery) AddDevices(devices []model.Device) {
	for _, d := range devices {
		t.AddDevice(d)
	}
}

// AddNeighbor records an adjacency in both directions.
func (t *TopologyDiscovery) AddNeighbor(neighbor model.Neighbor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.neighbors = append(t.neighbors, neighbor)
	t.addEdge(neighbor.LocalDeviceID, neighbor.RemoteDeviceID)
	t.addEdge(neighbor.RemoteDeviceID, neighbor.LocalDeviceID)
}

func (t *TopologyDiscovery) addEdge(from, to string) {
	if t.adjacency[from] == nil {
		t.adjacency[from] = make(map[string]struct{})
	}
	t.adjacency[from][to] = struct{}{}
}

// BuildTopology builds the graph from neighbor data, collapsing the two
// directions of each physical link into a single edge.
func (t *TopologyDiscovery) BuildTopology() model.TopologyGraph {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.links = nil
	seen := make(map[string]struct{})
	for _, n := range t.neighbors {
		a := fmt.Sprintf("%s:%s", n.LocalDeviceID, n.LocalInterface)
		b := fmt.Sprintf("%s:%s", n.RemoteDeviceID, n.RemoteInterface)
		if b < a {
			a, b = b, a
		}
		key := a + "|" + b
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		t.links = append(t.links, model.TopologyLink{
			SourceDeviceID:  n.LocalDeviceID,
			SourceInterface: n.LocalInterface,
			TargetDeviceID:  n.RemoteDeviceID,
			TargetInterface: n.RemoteInterface,
			LinkType:        "ethernet",
			Protocol:        n.Protocol,
		})
	}

	devices := make([]model.Device, 0, len(t.devices))
	for _, d := range t.devices {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Hostname < devices[j].Hostname })

	return model.TopologyGraph{
		Devices:     devices,
		Links:       t.links,
		GeneratedAt: time.Now().UTC(),
	}
}

// GetNeighbors returns the neighbor device IDs of a device.
func (t *TopologyDiscovery) GetNeighbors(deviceID string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.adjacency[deviceID]))
	for id := range t.adjacency[deviceID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// GetPath finds the shortest path between two devices via BFS. It returns
// the single-element path when source equals target, and nil when the source
// is unknown or no path exists.
func (t *TopologyDiscovery) GetPath(sourceID, targetID string) []string {
	if sourceID == targetID {
		return []string{sourceID}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if _, ok := t.adjacency[sourceID]; !ok {
		return nil
	}

	visited := map[string]struct{}{sourceID: {}}
	queue := [][]string{{sourceID}}
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		current := path[len(path)-1]
		for _, neighbor := range sortedKeys(t.adjacency[current]) {
			if neighbor == targetID {
				return append(append([]string{}, path...), neighbor)
			}
			if _, seen := visited[neighbor]; !seen {
				visited[neighbor] = struct{}{}
				queue = append(queue, append(append([]string{}, path...), neighbor))
			}
		}
	}
	return nil
}

// GetBlastRadius returns the devices within maxHops of the given device, the
// set that loses connectivity or redundancy if it fails. The device itself is
// excluded.
func (t *TopologyDiscovery) GetBlastRadius(deviceID string, maxHops int) map[string]struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.blastRadiusLocked(deviceID, maxHops)
}

func (t *TopologyDiscovery) blastRadiusLocked(deviceID string, maxHops int) map[string]struct{} {
	affected := make(map[string]struct{})
	currentLayer := map[string]struct{}{deviceID: {}}
	for hop := 0; hop < maxHops; hop++ {
		nextLayer := make(map[string]struct{})
		for dev := range currentLayer {
			for neighbor := range t.adjacency[dev] {
				if neighbor == deviceID {
					continue
				}
				if _, seen := affected[neighbor]; seen {
					continue
				}
				affected[neighbor] = struct{}{}
				nextLayer[neighbor] = struct{}{}
			}
		}
		currentLayer = nextLayer
	}
	return affected
}

// GetCriticalDevices ranks devices by connectivity, most connected first.
func (t *TopologyDiscovery) GetCriticalDevices() []DeviceCriticality {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]DeviceCriticality, 0, len(t.adjacency))
	for deviceID, neighbors := range t.adjacency {
		hostname := "unknown"
		if d, ok := t.devices[deviceID]; ok {
			hostname = d.Hostname
		}
		out = append(out, DeviceCriticality{
			DeviceID:      deviceID,
			Hostname:      hostname,
			NeighborCount: len(neighbors),
			BlastRadius:   len(t.blastRadiusLocked(deviceID, 2)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NeighborCount != out[j].NeighborCount {
			return out[i].NeighborCount > out[j].NeighborCount
		}
		return out[i].Hostname < out[j].Hostname
	})
	return out
}

// DeviceCount returns the number of devices in the topology.
func (t *TopologyDiscovery) DeviceCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.devices)
}

// LinkCount returns the number of links from the last BuildTopology.
func (t *TopologyDiscovery) LinkCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.links)
}

// NeighborCount returns the number of recorded neighbor relationships.
func (t *TopologyDiscovery) NeighborCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.neighbors)
}

// BuildDemoTopology populates the graph with the demo inventory and a
// realistic dual-core layout, then builds it. Any previously loaded
// devices and adjacencies are replaced so repeated calls stay stable.
func (t *TopologyDiscovery) BuildDemoTopology() model.TopologyGraph {
	t.mu.Lock()
	t.devices = make(map[string]model.Device)
	t.neighbors = nil
	t.links = nil
	t.adjacency = make(map[string]map[string]struct{})
	t.mu.Unlock()

	scanner := NewNetworkScanner(nil, true)
	devices, _ := scanner.ScanSubnet(context.Background(), "10.0.0.0/24", "public")
	t.AddDevices(devices)

	byHostname := make(map[string]model.Device, len(devices))
	for _, d := range devices {
		byHostname[d.Hostname] = d
	}

	neighborPairs := []struct {
		localHost, localIntf, remoteHost, remoteIntf, proto string
	}{
		{"router-core-1", "Gi0/0", "router-core-2", "Gi0/0", "lldp"},
		{"router-core-1", "Gi0/1", "switch-dist-1", "Et1", "lldp"},
		{"router-core-1", "Gi0/2", "switch-dist-2", "Et1", "lldp"},
		{"router-core-2", "Gi0/1", "switch-dist-1", "Et2", "lldp"},
		{"router-core-2", "Gi0/2", "switch-dist-2", "Et2", "lldp"},
		{"switch-dist-1", "Et3", "switch-access-1", "Gi0/1", "lldp"},
		{"switch-dist-1", "Et4", "switch-access-2", "Gi0/1", "lldp"},
		{"switch-dist-2", "Et3", "switch-access-1", "Gi0/2", "lldp"},
		{"switch-dist-2", "Et4", "switch-access-2", "Gi0/2", "lldp"},
		{"router-core-1", "Gi0/3", "firewall-edge-1", "eth1/1", "lldp"},
		{"router-core-2", "Gi0/3", "firewall-edge-1", "eth1/2", "lldp"},
		{"router-core-1", "Gi0/4", "router-branch-1", "ge-0/0/0", "bgp"},
	}
	for _, pair := range neighborPairs {
		local, okL := byHostname[pair.localHost]
		remote, okR := byHostname[pair.remoteHost]
		if !okL || !okR {
			continue
		}
		t.AddNeighbor(model.Neighbor{
			LocalDeviceID:   local.ID,
			LocalInterface:  pair.localIntf,
			RemoteDeviceID:  remote.ID,
			RemoteInterface: pair.remoteIntf,
			RemoteHostname:  pair.remoteHost,
			RemoteIP:        remote.IPAddress,
			Protocol:        pair.proto,
			DiscoveredAt:    time.Now().UTC(),
		})
	}
	return t.BuildTopology()
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
