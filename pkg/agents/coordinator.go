// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package agents

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cwccie/netopshub/pkg/compliance"
	"github.com/cwccie/netopshub/pkg/discover"
	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/util/log"
)

// routingPatterns map message intent to an agent. Order matters: on a
// tied match count the earlier pattern wins.
var routingPatterns = []struct {
	re    *regexp.Regexp
	agent string
}{
	{regexp.MustCompile(`discover|scan|topology|neighbor|lldp|cdp`), "discovery"},
	{regexp.MustCompile(`why|diagnos|root.?cause|rca|anomal|flap|down|error|fail`), "diagnosis"},
	{regexp.MustCompile(`what.*(mean|is)|document|vendor|knowledge|explain|how.*(work|config)`), "knowledge"},
	{regexp.MustCompile(`complian|audit|nist|cis|pci|security.*(check|scan)|baseline`), "compliance"},
	{regexp.MustCompile(`predict|forecast|capacity|trend|when.*will|exhaustion|growth`), "forecast"},
	{regexp.MustCompile(`fix|remedia|change|config|propose|rollback|patch`), "remediation"},
	{regexp.MustCompile(`verif|check|regression|health|post.?change|validate`), "verification"},
}

// AgentStatus summarizes one agent for the status endpoint.
type AgentStatus struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	TasksCompleted int    `json:"tasks_completed"`
	Messages       int    `json:"messages"`
}

// WorkflowStep records one agent invocation inside a workflow run.
type WorkflowStep struct {
	Agent  string                 `json:"agent"`
	Result map[string]interface{} `json:"result"`
}

// WorkflowResult is the outcome of a multi-agent workflow.
type WorkflowResult struct {
	Workflow string         `json:"workflow"`
	Steps    []WorkflowStep `json:"steps"`
	Status   string         `json:"status"`
}

// Coordinator routes chat messages and tasks to specialized agents and
// chains them into workflows.
type Coordinator struct {
	baseAgent
	agents map[string]Agent

	convMu       sync.Mutex
	conversation []model.AgentMessage
}

// NewCoordinator builds the full agent roster. The discovery scanner,
// topology and compliance engine are shared with the rest of the system.
func NewCoordinator(scanner *discover.NetworkScanner, topology *discover.TopologyDiscovery, engine *compliance.Engine) *Coordinator {
	return &Coordinator{
		baseAgent: newBaseAgent("coordinator", "Multi-agent orchestration and routing"),
		agents: map[string]Agent{
			"discovery":    NewDiscoveryAgent(scanner, topology),
			"knowledge":    NewKnowledgeAgent(),
			"diagnosis":    NewDiagnosisAgent(),
			"compliance":   NewComplianceAgent(engine),
			"forecast":     NewForecastAgent(),
			"remediation":  NewRemediationAgent(),
			"verification": NewVerificationAgent(),
		},
	}
}

// Agent returns a named agent, or nil.
func (c *Coordinator) Agent(name string) Agent { return c.agents[name] }

// Process routes a task to its target agent.
func (c *Coordinator) Process(ctx context.Context, task *model.AgentTask) *model.AgentTask {
	task.Status = model.TaskRunning
	agentName := inputString(task.InputData, "target_agent", task.AgentName)
	agent := c.agents[agentName]
	if agent == nil {
		return c.failTask(task, fmt.Sprintf("Unknown agent: %s", agentName))
	}
	return agent.Process(ctx, task)
}

// Chat routes a message to the best-matching agent and prefixes the
// response with the responder's name.
func (c *Coordinator) Chat(ctx context.Context, message string, chatCtx map[string]interface{}) string {
	c.logMessage("user", message)
	c.appendConversation(model.AgentMessage{
		Role:      "user",
		Content:   message,
		AgentName: "coordinator",
		Timestamp: time.Now().UTC(),
	})

	agentName := c.routeMessage(message)
	var response string
	if agent := c.agents[agentName]; agent != nil {
		preview := message
		if len(preview) > 50 {
			preview = preview[:50]
		}
		log.Infof("Routing to %s agent: %s...", agentName, preview)
		response = fmt.Sprintf("*[%s Agent]*\n\n%s", titleCase(agentName), agent.Chat(ctx, message, chatCtx))
	} else {
		agentName = "coordinator"
		response = defaultResponse()
	}

	c.appendConversation(model.AgentMessage{
		Role:      "assistant",
		Content:   response,
		AgentName: agentName,
		Timestamp: time.Now().UTC(),
	})
	c.logMessage("assistant", response)
	return response
}

// RunWorkflow chains several agents. Supported workflows:
// diagnose_and_fix (diagnose, remediate, verify) and full_audit
// (discover, compliance audit).
func (c *Coordinator) RunWorkflow(ctx context.Context, workflow string, input map[string]interface{}) WorkflowResult {
	result := WorkflowResult{Workflow: workflow, Steps: []WorkflowStep{}}

	step := func(agentName, taskType, description string, taskInput map[string]interface{}) bool {
		if err := ctx.Err(); err != nil {
			result.Status = model.TaskCancelled
			return false
		}
		task := NewTask(agentName, taskType, description, taskInput)
		done := c.agents[agentName].Process(ctx, task)
		result.Steps = append(result.Steps, WorkflowStep{Agent: agentName, Result: done.OutputData})
		return true
	}

	switch workflow {
	case "diagnose_and_fix":
		if !step("diagnosis", "diagnose", "Diagnose the issue", input) {
			return result
		}
		if !step("remediation", "propose_fix", "Propose a fix", map[string]interface{}{
			"issue":     inputString(input, "issue", "generic"),
			"device_id": inputString(input, "device_id", ""),
		}) {
			return result
		}
		if !step("verification", "verify_change", "Verify the fix", map[string]interface{}{
			"device_id":   inputString(input, "device_id", ""),
			"change_type": inputString(input, "issue", ""),
		}) {
			return result
		}

	case "full_audit":
		if !step("discovery", "scan_subnet", "Discover devices", map[string]interface{}{
			"subnet": inputString(input, "subnet", "10.0.0.0/24"),
		}) {
			return result
		}
		if !step("compliance", "audit_all", "Run compliance audit", map[string]interface{}{
			"framework": inputString(input, "framework", ""),
		}) {
			return result
		}

	default:
		result.Status = model.TaskFailed
		return result
	}

	result.Status = model.TaskCompleted
	return result
}

// routeMessage picks the agent whose pattern matches the message most.
func (c *Coordinator) routeMessage(message string) string {
	lower := strings.ToLower(message)
	best := ""
	bestScore := 0
	for _, rp := range routingPatterns {
		matches := rp.re.FindAllString(lower, -1)
		if len(matches) > bestScore {
			bestScore = len(matches)
			best = rp.agent
		}
	}
	return best
}

// Conversation returns recent coordinator conversation turns.
func (c *Coordinator) Conversation(limit int) []model.AgentMessage {
	c.convMu.Lock()
	defer c.convMu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	start := len(c.conversation) - limit
	if start < 0 {
		start = 0
	}
	out := make([]model.AgentMessage, len(c.conversation)-start)
	copy(out, c.conversation[start:])
	return out
}

// Status reports bookkeeping counters for every agent.
func (c *Coordinator) Status() map[string]AgentStatus {
	status := make(map[string]AgentStatus, len(c.agents))
	for name, agent := range c.agents {
		s := AgentStatus{Name: agent.Name(), Description: agent.Description()}
		type historied interface {
			History(int) []model.AgentMessage
			TaskHistory(int) []*model.AgentTask
		}
		if h, ok := agent.(historied); ok {
			s.TasksCompleted = len(h.TaskHistory(0))
			s.Messages = len(h.History(0))
		}
		status[name] = s
	}
	return status
}

func (c *Coordinator) appendConversation(msg model.AgentMessage) {
	c.convMu.Lock()
	c.conversation = append(c.conversation, msg)
	c.convMu.Unlock()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func defaultResponse() string {
	return "I'm NetOpsHub's assistant. I can help with:\n\n" +
		"**Discovery** — 'Discover devices on 10.0.0.0/24'\n" +
		"**Diagnosis** — 'Why is BGP flapping on router-core-1?'\n" +
		"**Knowledge** — 'What causes OSPF adjacency failures?'\n" +
		"**Compliance** — 'Run a NIST 800-53 compliance audit'\n" +
		"**Forecasting** — 'When will WAN bandwidth run out?'\n" +
		"**Remediation** — 'Fix the compliance failures'\n" +
		"**Verification** — 'Verify the last change was successful'\n\n" +
		"What would you like to investigate?"
}
