// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/cwccie/netopshub/pkg/compliance"
	"github.com/cwccie/netopshub/pkg/model"
)

// ComplianceAgent audits device configurations against security
// frameworks through the compliance engine.
type ComplianceAgent struct {
	baseAgent
	engine *compliance.Engine
}

func NewComplianceAgent(engine *compliance.Engine) *ComplianceAgent {
	return &ComplianceAgent{
		baseAgent: newBaseAgent("compliance", "Configuration compliance auditing"),
		engine:    engine,
	}
}

// Engine exposes the underlying compliance engine.
func (a *ComplianceAgent) Engine() *compliance.Engine { return a.engine }

func (a *ComplianceAgent) Process(_ context.Context, task *model.AgentTask) *model.AgentTask {
	task.Status = model.TaskRunning

	switch task.TaskType {
	case "audit":
		deviceID := inputString(task.InputData, "device_id", "")
		framework := inputString(task.InputData, "framework", "")
		config := inputString(task.InputData, "config", "")
		if config == "" {
			config = compliance.DemoConfigs()[deviceID]
		}
		results := a.engine.CheckCompliance(deviceID, config, framework)
		compliant, nonCompliant := 0, 0
		for _, r := range results {
			switch r.Status {
			case model.ComplianceCompliant:
				compliant++
			case model.ComplianceNonCompliant:
				nonCompliant++
			}
		}
		return a.completeTask(task, map[string]interface{}{
			"device_id":     deviceID,
			"results":       results,
			"compliant":     compliant,
			"non_compliant": nonCompliant,
			"total":         len(results),
		})

	case "audit_all":
		framework := inputString(task.InputData, "framework", "")
		report := a.engine.AuditAll(framework)
		return a.completeTask(task, map[string]interface{}{
			"devices": report.Devices,
			"summary": report.Summary,
		})

	default:
		return a.failTask(task, fmt.Sprintf("Unknown task type: %s", task.TaskType))
	}
}

func (a *ComplianceAgent) Chat(_ context.Context, message string, _ map[string]interface{}) string {
	a.logMessage("user", message)
	lower := strings.ToLower(message)
	var response string

	switch {
	case strings.Contains(lower, "nist"):
		response = compliance.FormatAuditSummary(a.engine.AuditAll("NIST-800-53"), "NIST-800-53")
	case strings.Contains(lower, "cis"):
		response = compliance.FormatAuditSummary(a.engine.AuditAll("CIS"), "CIS")
	case strings.Contains(lower, "pci"):
		response = compliance.FormatAuditSummary(a.engine.AuditAll("PCI-DSS"), "PCI-DSS")
	case strings.Contains(lower, "audit") || strings.Contains(lower, "check") || strings.Contains(lower, "compliance"):
		response = compliance.FormatAuditSummary(a.engine.AuditAll(""), "")
	default:
		response = "I can audit device configurations against security frameworks.\n\n" +
			"Try:\n" +
			"- 'Run a compliance audit'\n" +
			"- 'Check NIST 800-53 compliance'\n" +
			"- 'Audit against CIS benchmarks'\n" +
			"- 'Check PCI-DSS compliance'"
	}

	a.logMessage("assistant", response)
	return response
}
