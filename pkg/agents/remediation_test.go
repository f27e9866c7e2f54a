// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwccie/netopshub/pkg/model"
)

func TestProposeFix(t *testing.T) {
	a := NewRemediationAgent()

	task := NewTask("remediation", "propose_fix", "", map[string]interface{}{
		"issue":     "bgp_flapping",
		"device_id": "router-core-1",
	})
	done := a.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, "awaiting_approval", done.OutputData["status"])

	proposal, ok := done.OutputData["proposal"].(*model.RemediationProposal)
	require.True(t, ok)
	assert.NotEmpty(t, proposal.ID)
	assert.Equal(t, "router-core-1", proposal.DeviceID)
	assert.Equal(t, "Stabilize BGP session with dampening and BFD", proposal.Title)
	assert.Equal(t, "medium", proposal.RiskLevel)
	assert.NotEmpty(t, proposal.ConfigCommands)
	assert.NotEmpty(t, proposal.RollbackCommands)
	assert.False(t, proposal.Approved)

	assert.Equal(t, 1, a.PendingCount())
}

func TestProposeFixUnknownIssue(t *testing.T) {
	a := NewRemediationAgent()

	task := NewTask("remediation", "propose_fix", "", map[string]interface{}{
		"issue":     "gremlins",
		"device_id": "switch-dist-1",
	})
	done := a.Process(context.Background(), task)

	proposal := done.OutputData["proposal"].(*model.RemediationProposal)
	assert.Equal(t, "Remediation for gremlins", proposal.Title)
	assert.Equal(t, "low", proposal.RiskLevel)
	assert.Equal(t, []string{"! No automated fix available"}, proposal.ConfigCommands)
}

func TestApproveProposal(t *testing.T) {
	a := NewRemediationAgent()

	done := a.Process(context.Background(), NewTask("remediation", "propose_fix", "", map[string]interface{}{
		"issue": "compliance_failure", "device_id": "switch-access-1",
	}))
	proposal := done.OutputData["proposal"].(*model.RemediationProposal)

	approved := a.Process(context.Background(), NewTask("remediation", "approve", "", map[string]interface{}{
		"proposal_id": proposal.ID,
		"approved_by": "noc-operator",
	}))
	require.Equal(t, model.TaskCompleted, approved.Status)
	assert.Equal(t, "approved", approved.OutputData["status"])
	assert.Equal(t, "noc-operator", approved.OutputData["approved_by"])

	assert.True(t, proposal.Approved)
	assert.Equal(t, "noc-operator", proposal.ApprovedBy)
	assert.Equal(t, 0, a.PendingCount())
}

func TestApproveUnknownProposal(t *testing.T) {
	a := NewRemediationAgent()

	done := a.Process(context.Background(), NewTask("remediation", "approve", "", map[string]interface{}{
		"proposal_id": "nope",
	}))
	require.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, "not_found", done.OutputData["status"])
}

func TestApproveMethod(t *testing.T) {
	a := NewRemediationAgent()
	a.Process(context.Background(), NewTask("remediation", "propose_fix", "", map[string]interface{}{
		"issue": "bgp_flapping", "device_id": "router-core-1",
	}))
	id := a.Proposals()[0].ID

	assert.True(t, a.Approve(id, "admin"))
	assert.False(t, a.Approve("missing", "admin"))
	assert.Equal(t, "admin", a.Proposals()[0].ApprovedBy)
}

func TestListProposals(t *testing.T) {
	a := NewRemediationAgent()
	for _, issue := range []string{"bgp_flapping", "compliance_failure"} {
		a.Process(context.Background(), NewTask("remediation", "propose_fix", "", map[string]interface{}{
			"issue": issue, "device_id": "router-core-1",
		}))
	}
	a.Approve(a.Proposals()[0].ID, "admin")

	done := a.Process(context.Background(), NewTask("remediation", "list_proposals", "", nil))
	require.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, 1, done.OutputData["pending"])
	assert.Len(t, done.OutputData["proposals"], 2)
}

func TestRemediationUnknownTaskType(t *testing.T) {
	a := NewRemediationAgent()

	done := a.Process(context.Background(), NewTask("remediation", "bogus", "", nil))
	assert.Equal(t, model.TaskFailed, done.Status)
	assert.Equal(t, "Unknown task type: bogus", done.Error)
}

func TestRemediationChat(t *testing.T) {
	a := NewRemediationAgent()
	ctx := context.Background()

	response := a.Chat(ctx, "Fix the BGP flapping on router-core-1", nil)
	assert.Contains(t, response, "Remediation Proposal")
	assert.Contains(t, response, "MEDIUM RISK")
	assert.Contains(t, response, "bgp dampening")
	assert.Equal(t, 1, a.PendingCount())

	response = a.Chat(ctx, "Fix the compliance failures", nil)
	assert.Contains(t, response, "Fix compliance failures on switch-access-1")

	response = a.Chat(ctx, "Show pending proposals", nil)
	assert.Contains(t, response, "2 Pending Proposals")

	response = a.Chat(ctx, "Show me the rollback plan", nil)
	assert.Equal(t, "No executed changes to roll back.", response)

	response = a.Chat(ctx, "what can you do", nil)
	assert.Contains(t, response, "require human approval")
}

func TestRemediationChatNoPending(t *testing.T) {
	a := NewRemediationAgent()

	response := a.Chat(context.Background(), "Show pending proposals", nil)
	assert.Equal(t, "No pending remediation proposals.", response)
}
