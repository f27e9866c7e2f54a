// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/cwccie/netopshub/pkg/discover"
	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

// DiscoveryAgent scans subnets, builds the topology graph and answers
// inventory questions.
type DiscoveryAgent struct {
	baseAgent
	scanner  *discover.NetworkScanner
	topology *discover.TopologyDiscovery
}

// NewDiscoveryAgent wires the discovery agent to a scanner and topology.
func NewDiscoveryAgent(scanner *discover.NetworkScanner, topology *discover.TopologyDiscovery) *DiscoveryAgent {
	return &DiscoveryAgent{
		baseAgent: newBaseAgent("discovery", "Network discovery and topology mapping"),
		scanner:   scanner,
		topology:  topology,
	}
}

func (a *DiscoveryAgent) Process(ctx context.Context, task *model.AgentTask) *model.AgentTask {
	task.Status = model.TaskRunning
	a.logMessage("system", fmt.Sprintf("Processing discovery task: %s", task.TaskType))

	switch task.TaskType {
	case "scan_subnet":
		subnet := inputString(task.InputData, "subnet", "10.0.0.0/24")
		community := inputString(task.InputData, "community", "public")
		devices, err := a.scanner.ScanSubnet(ctx, subnet, community)
		if err != nil {
			log.Errorf("Discovery task failed: %v", err)
			return a.failTask(task, err.Error())
		}
		a.topology.AddDevices(devices)
		return a.completeTask(task, map[string]interface{}{
			"devices_found": len(devices),
			"devices":       devices,
		})

	case "build_topology":
		graph := a.topology.BuildDemoTopology()
		return a.completeTask(task, map[string]interface{}{
			"device_count": len(graph.Devices),
			"link_count":   len(graph.Links),
			"topology":     graph,
		})

	case "get_neighbors":
		deviceID := inputString(task.InputData, "device_id", "")
		return a.completeTask(task, map[string]interface{}{
			"device_id": deviceID,
			"neighbors": a.topology.GetNeighbors(deviceID),
		})

	case "blast_radius":
		deviceID := inputString(task.InputData, "device_id", "")
		maxHops := int(inputFloat(task.InputData, "max_hops", 2))
		radius := a.topology.GetBlastRadius(deviceID, maxHops)
		affected := make([]string, 0, len(radius))
		for id := range radius {
			affected = append(affected, id)
		}
		return a.completeTask(task, map[string]interface{}{
			"device_id":        deviceID,
			"affected_devices": affected,
			"count":            len(affected),
		})

	default:
		return a.failTask(task, fmt.Sprintf("Unknown task type: %s", task.TaskType))
	}
}

func (a *DiscoveryAgent) Chat(ctx context.Context, message string, _ map[string]interface{}) string {
	a.logMessage("user", message)
	lower := strings.ToLower(message)
	var response string

	switch {
	case strings.Contains(lower, "discover") || strings.Contains(lower, "scan"):
		devices, err := a.scanner.ScanSubnet(ctx, "10.0.0.0/24", "public")
		if err != nil {
			response = fmt.Sprintf("Subnet scan failed: %v", err)
			break
		}
		a.topology.AddDevices(devices)
		var lines []string
		for _, d := range devices {
			lines = append(lines, fmt.Sprintf("  - %s (%s) — %s %s",
				d.Hostname, d.IPAddress, d.Vendor, d.Model))
		}
		response = fmt.Sprintf(
			"I discovered %d devices on the network:\n\n%s\n\nTopology graph has been built with %d neighbor relationships.",
			len(devices), strings.Join(lines, "\n"), a.topology.NeighborCount())

	case strings.Contains(lower, "topology"):
		graph := a.topology.BuildDemoTopology()
		critical := a.topology.GetCriticalDevices()
		if len(critical) > 5 {
			critical = critical[:5]
		}
		var lines []string
		for _, c := range critical {
			lines = append(lines, fmt.Sprintf("  - %s: %d connections, blast radius: %d devices",
				c.Hostname, c.NeighborCount, c.BlastRadius))
		}
		response = fmt.Sprintf("Current topology: %d devices, %d links.\n\nMost critical devices:\n%s",
			len(graph.Devices), len(graph.Links), strings.Join(lines, "\n"))

	case strings.Contains(lower, "device"):
		devices := a.scanner.GetDiscoveredDevices()
		if len(devices) > 0 {
			response = fmt.Sprintf("I have %d devices in inventory. Ask about a specific device by name.", len(devices))
		} else {
			response = "No devices discovered yet. Run a subnet scan first."
		}

	default:
		response = "I can help with network discovery. Try asking me to:\n" +
			"- Discover devices on a subnet\n" +
			"- Show the network topology\n" +
			"- Find critical devices\n" +
			"- Calculate blast radius for a device"
	}

	a.logMessage("assistant", response)
	return response
}
