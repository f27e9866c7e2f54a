// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/collect"
	"github.com/cwccie/netopshub/pkg/compliance"
	"github.com/cwccie/netopshub/pkg/discover"
	"github.com/cwccie/netopshub/pkg/model"
)

func demoCoordinator() *Coordinator {
	scanner := discover.NewNetworkScanner(collect.NewSNMPPoller(true), true)
	topology := discover.NewTopologyDiscovery()
	engine := compliance.NewEngine(true)
	return NewCoordinator(scanner, topology, engine)
}

func TestRouteMessage(t *testing.T) {
	c := demoCoordinator()

	tests := []struct {
		message string
		agent   string
	}{
		{"Why is BGP flapping on router-core-1?", "diagnosis"},
		{"Discover devices on 10.0.0.0/24", "discovery"},
		{"Show me the network topology", "discovery"},
		{"Run a NIST audit", "compliance"},
		{"When will bandwidth capacity run out?", "forecast"},
		{"Propose a fix for the BGP issue", "remediation"},
		{"Run a regression check", "verification"},
		{"What does a late collision mean?", "knowledge"},
		{"hello there", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.agent, c.routeMessage(tt.message), "message: %s", tt.message)
	}
}

func TestRouteMessageTieBreak(t *testing.T) {
	c := demoCoordinator()

	// One match each for discovery and remediation: the earlier pattern
	// keeps the route.
	assert.Equal(t, "discovery", c.routeMessage("scan then fix"))
}

func TestChatRoutesWithAgentPrefix(t *testing.T) {
	c := demoCoordinator()

	response := c.Chat(context.Background(), "Why is BGP flapping on router-core-1?", nil)
	assert.True(t, strings.HasPrefix(response, "*[Diagnosis Agent]*\n\n"))
	assert.Contains(t, response, "Root Cause Analysis: BGP Flapping on router-core-1")

	response = c.Chat(context.Background(), "Run a NIST audit", nil)
	assert.True(t, strings.HasPrefix(response, "*[Compliance Agent]*\n\n"))
	assert.Contains(t, response, "Overall Score")
}

func TestChatDefaultResponse(t *testing.T) {
	c := demoCoordinator()

	response := c.Chat(context.Background(), "hello there", nil)
	assert.Contains(t, response, "NetOpsHub's assistant")
	assert.NotContains(t, response, "*[")
}

func TestChatRecordsConversation(t *testing.T) {
	c := demoCoordinator()

	c.Chat(context.Background(), "Why is BGP flapping?", nil)
	c.Chat(context.Background(), "hello there", nil)

	conv := c.Conversation(0)
	require.Len(t, conv, 4)
	assert.Equal(t, "user", conv[0].Role)
	assert.Equal(t, "assistant", conv[1].Role)
	assert.Equal(t, "diagnosis", conv[1].AgentName)
	assert.Equal(t, "coordinator", conv[3].AgentName)

	assert.Len(t, c.Conversation(2), 2)
}

func TestProcessRoutesToTargetAgent(t *testing.T) {
	c := demoCoordinator()

	task := NewTask("coordinator", "trend_analysis", "", map[string]interface{}{
		"target_agent":   "forecast",
		"metric_history": []float64{10, 20, 30, 40, 50},
	})
	done := c.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, "increasing", done.OutputData["trend"])
}

func TestProcessUnknownAgent(t *testing.T) {
	c := demoCoordinator()

	task := NewTask("nonexistent", "anything", "", nil)
	done := c.Process(context.Background(), task)
	assert.Equal(t, model.TaskFailed, done.Status)
	assert.Equal(t, "Unknown agent: nonexistent", done.Error)
}

func TestRunWorkflowDiagnoseAndFix(t *testing.T) {
	c := demoCoordinator()

	result := c.RunWorkflow(context.Background(), "diagnose_and_fix", map[string]interface{}{
		"issue":     "bgp_flapping",
		"device_id": "router-core-1",
		"alerts": []map[string]interface{}{
			{"device_id": "router-core-1", "metric_type": "bgp_state", "severity": "critical"},
			{"device_id": "router-core-1", "metric_type": "error_rate", "severity": "warning"},
			{"device_id": "switch-dist-1", "metric_type": "error_rate", "severity": "warning"},
		},
	})

	assert.Equal(t, model.TaskCompleted, result.Status)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, "diagnosis", result.Steps[0].Agent)
	assert.Equal(t, "remediation", result.Steps[1].Agent)
	assert.Equal(t, "verification", result.Steps[2].Agent)

	assert.Equal(t, "router-core-1", result.Steps[0].Result["root_device"])
	assert.Equal(t, "awaiting_approval", result.Steps[1].Result["status"])
	proposal, ok := result.Steps[1].Result["proposal"].(*model.RemediationProposal)
	require.True(t, ok)
	assert.Equal(t, "router-core-1", proposal.DeviceID)
	assert.Equal(t, "pass", result.Steps[2].Result["overall_status"])
}

func TestRunWorkflowFullAudit(t *testing.T) {
	c := demoCoordinator()

	result := c.RunWorkflow(context.Background(), "full_audit", map[string]interface{}{})

	assert.Equal(t, model.TaskCompleted, result.Status)
	require.Len(t, result.Steps, 2)
	assert.Equal(t, "discovery", result.Steps[0].Agent)
	assert.Equal(t, 8, result.Steps[0].Result["devices_found"])
	assert.Equal(t, "compliance", result.Steps[1].Agent)
	assert.NotNil(t, result.Steps[1].Result["summary"])
}

func TestRunWorkflowCancelled(t *testing.T) {
	c := demoCoordinator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := c.RunWorkflow(ctx, "diagnose_and_fix", nil)
	assert.Equal(t, model.TaskCancelled, result.Status)
	assert.Empty(t, result.Steps)
}

func TestRunWorkflowUnknown(t *testing.T) {
	c := demoCoordinator()

	result := c.RunWorkflow(context.Background(), "no_such_workflow", nil)
	assert.Equal(t, model.TaskFailed, result.Status)
	assert.Empty(t, result.Steps)
}

func TestCoordinatorStatus(t *testing.T) {
	c := demoCoordinator()

	c.Chat(context.Background(), "Why is BGP flapping on router-core-1?", nil)
	c.RunWorkflow(context.Background(), "full_audit", nil)

	status := c.Status()
	require.Len(t, status, 7)
	for _, name := range []string{"discovery", "knowledge", "diagnosis", "compliance", "forecast", "remediation", "verification"} {
		assert.Contains(t, status, name)
	}
	assert.Equal(t, 2, status["diagnosis"].Messages)
	assert.Equal(t, 1, status["discovery"].TasksCompleted)
	assert.Equal(t, 1, status["compliance"].TasksCompleted)
	assert.NotEmpty(t, status["forecast"].Description)
}

func TestAgentAccessor(t *testing.T) {
	c := demoCoordinator()

	assert.NotNil(t, c.Agent("knowledge"))
	assert.Equal(t, "knowledge", c.Agent("knowledge").Name())
	assert.Nil(t, c.Agent("missing"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Diagnosis", titleCase("diagnosis"))
	assert.Equal(t, "", titleCase(""))
}
