// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cwccie/netopshub/pkg/model"
)

// RemediationAgent proposes configuration changes to fix issues. Every
// proposal carries a rollback plan and waits for explicit approval.
type RemediationAgent struct {
	baseAgent
	proposals []*model.RemediationProposal
}

func NewRemediationAgent() *RemediationAgent {
	return &RemediationAgent{
		baseAgent: newBaseAgent("remediation", "Configuration change proposals with approval gates"),
	}
}

func (a *RemediationAgent) Process(_ context.Context, task *model.AgentTask) *model.AgentTask {
	task.Status = model.TaskRunning

	switch task.TaskType {
	case "propose_fix":
		issue := inputString(task.InputData, "issue", "")
		deviceID := inputString(task.InputData, "device_id", "")
		proposal := generateProposal(issue, deviceID)
		a.mu.Lock()
		a.proposals = append(a.proposals, proposal)
		a.mu.Unlock()
		return a.completeTask(task, map[string]interface{}{
			"proposal": proposal,
			"status":   "awaiting_approval",
		})

	case "approve":
		proposalID := inputString(task.InputData, "proposal_id", "")
		approvedBy := inputString(task.InputData, "approved_by", "admin")
		return a.completeTask(task, a.approveProposal(proposalID, approvedBy))

	case "list_proposals":
		a.mu.Lock()
		proposals := make([]*model.RemediationProposal, len(a.proposals))
		copy(proposals, a.proposals)
		pending := 0
		for _, p := range proposals {
			if !p.Approved {
				pending++
			}
		}
		a.mu.Unlock()
		return a.completeTask(task, map[string]interface{}{
			"proposals": proposals,
			"pending":   pending,
		})

	default:
		return a.failTask(task, fmt.Sprintf("Unknown task type: %s", task.TaskType))
	}
}

func (a *RemediationAgent) Chat(_ context.Context, message string, _ map[string]interface{}) string {
	a.logMessage("user", message)
	lower := strings.ToLower(message)
	var response string

	switch {
	case strings.Contains(lower, "fix") && strings.Contains(lower, "bgp"):
		proposal := generateProposal("bgp_flapping", "router-core-1")
		a.mu.Lock()
		a.proposals = append(a.proposals, proposal)
		a.mu.Unlock()
		response = formatProposal(proposal)

	case strings.Contains(lower, "fix") && (strings.Contains(lower, "compliance") || strings.Contains(lower, "security")):
		proposal := generateProposal("compliance_failure", "switch-access-1")
		a.mu.Lock()
		a.proposals = append(a.proposals, proposal)
		a.mu.Unlock()
		response = formatProposal(proposal)

	case strings.Contains(lower, "rollback"):
		response = a.showRollback()

	case strings.Contains(lower, "pending") || strings.Contains(lower, "proposals"):
		a.mu.Lock()
		var pending []*model.RemediationProposal
		for _, p := range a.proposals {
			if !p.Approved {
				pending = append(pending, p)
			}
		}
		a.mu.Unlock()
		if len(pending) > 0 {
			var b strings.Builder
			fmt.Fprintf(&b, "**%d Pending Proposals:**\n\n", len(pending))
			for _, p := range pending {
				fmt.Fprintf(&b, "- [%s] %s on %s\n",
					strings.ToUpper(p.RiskLevel), p.Title, p.DeviceHostname)
			}
			response = b.String()
		} else {
			response = "No pending remediation proposals."
		}

	default:
		response = "I generate configuration change proposals to fix network issues.\n\n" +
			"All changes require human approval before execution.\n\n" +
			"Try:\n" +
			"- 'Fix BGP flapping on router-core-1'\n" +
			"- 'Fix compliance failures'\n" +
			"- 'Show pending proposals'\n" +
			"- 'Show rollback plan'"
	}

	a.logMessage("assistant", response)
	return response
}

// Approve marks a proposal approved and records who approved it.
func (a *RemediationAgent) Approve(proposalID, approvedBy string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.proposals {
		if p.ID == proposalID {
			p.Approved = true
			p.ApprovedBy = approvedBy
			return true
		}
	}
	return false
}

// Proposals returns a snapshot of all proposals.
func (a *RemediationAgent) Proposals() []*model.RemediationProposal {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*model.RemediationProposal, len(a.proposals))
	copy(out, a.proposals)
	return out
}

// PendingCount reports proposals still awaiting approval.
func (a *RemediationAgent) PendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	count := 0
	for _, p := range a.proposals {
		if !p.Approved {
			count++
		}
	}
	return count
}

func (a *RemediationAgent) approveProposal(proposalID, approvedBy string) map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.proposals {
		if p.ID == proposalID {
			p.Approved = true
			p.ApprovedBy = approvedBy
			return map[string]interface{}{
				"status":      "approved",
				"proposal_id": proposalID,
				"approved_by": approvedBy,
				"message":     fmt.Sprintf("Proposal '%s' approved by %s", p.Title, approvedBy),
			}
		}
	}
	return map[string]interface{}{
		"status":  "not_found",
		"message": fmt.Sprintf("Proposal %s not found", proposalID),
	}
}

func generateProposal(issue, deviceID string) *model.RemediationProposal {
	base := model.RemediationProposal{
		ID:             model.NewID(),
		DeviceID:       deviceID,
		DeviceHostname: deviceID,
		CreatedAt:      time.Now().UTC(),
	}

	switch issue {
	case "bgp_flapping":
		base.Title = "Stabilize BGP session with dampening and BFD"
		base.Description = "BGP flapping detected due to physical layer instability. " +
			"Applying BGP dampening to prevent route churn, and enabling BFD " +
			"for faster failure detection."
		base.ConfigCommands = []string{
			"router bgp 65001",
			" address-family ipv4 unicast",
			"  bgp dampening 15 750 2000 60",
			" neighbor 10.0.0.2 bfd",
			" neighbor 10.0.0.2 fall-over bfd",
		}
		base.RollbackCommands = []string{
			"router bgp 65001",
			" address-family ipv4 unicast",
			"  no bgp dampening",
			" no neighbor 10.0.0.2 bfd",
			" no neighbor 10.0.0.2 fall-over bfd",
		}
		base.RiskLevel = "medium"

	case "compliance_failure":
		base.Title = "Fix compliance failures on switch-access-1"
		base.Description = "Multiple compliance failures detected: default SNMP community, " +
			"missing password encryption, missing console timeout, and missing " +
			"VTY access control."
		base.ConfigCommands = []string{
			"service password-encryption",
			"no snmp-server community public",
			"snmp-server community N3tOps$ecure RO",
			"banner login ^C",
			"*** AUTHORIZED ACCESS ONLY ***",
			"^C",
			"line con 0",
			" exec-timeout 5 0",
			"line vty 0 15",
			" access-class ACL_VTY in",
			" transport input ssh",
			"aaa new-model",
			"aaa authentication login default local",
		}
		base.RollbackCommands = []string{
			"no service password-encryption",
			"snmp-server community public RO",
			"no snmp-server community N3tOps$ecure",
			"no banner login",
			"line con 0",
			" no exec-timeout",
			"line vty 0 15",
			" no access-class ACL_VTY in",
			" transport input ssh telnet",
		}
		base.RiskLevel = "low"

	default:
		base.Title = fmt.Sprintf("Remediation for %s", issue)
		base.Description = fmt.Sprintf("Auto-generated fix for %s", issue)
		base.ConfigCommands = []string{"! No automated fix available"}
		base.RollbackCommands = []string{"! No rollback needed"}
		base.RiskLevel = "low"
	}

	return &base
}

func formatProposal(p *model.RemediationProposal) string {
	indent := func(cmds []string) string {
		out := make([]string, len(cmds))
		for i, c := range cmds {
			out[i] = "  " + c
		}
		return strings.Join(out, "\n")
	}
	return fmt.Sprintf(
		"**Remediation Proposal** [%s RISK]\n\n"+
			"**Title:** %s\n"+
			"**Device:** %s\n"+
			"**Description:** %s\n\n"+
			"**Proposed Changes:**\n```\n%s\n```\n\n"+
			"**Rollback Plan:**\n```\n%s\n```\n\n"+
			"**Status:** Awaiting approval (ID: %s...)\n"+
			"To approve: `netopshub remediate approve %s`",
		strings.ToUpper(p.RiskLevel), p.Title, p.DeviceHostname, p.Description,
		indent(p.ConfigCommands), indent(p.RollbackCommands),
		p.ID[:8], p.ID[:8])
}

func (a *RemediationAgent) showRollback() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var executed []*model.RemediationProposal
	for _, p := range a.proposals {
		if p.Executed {
			executed = append(executed, p)
		}
	}
	if len(executed) == 0 {
		return "No executed changes to roll back."
	}
	lines := []string{"**Available Rollbacks:**\n"}
	for _, p := range executed {
		var cmds []string
		for _, c := range p.RollbackCommands {
			cmds = append(cmds, "  "+c)
		}
		lines = append(lines, fmt.Sprintf("**%s** on %s:\n```\n%s\n```\n",
			p.Title, p.DeviceHostname, strings.Join(cmds, "\n")))
	}
	return strings.Join(lines, "\n")
}
