// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package model

import "time"

// Task statuses.
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskCancelled = "cancelled"
)

// AgentMessage is one turn in an agent conversation.
type AgentMessage struct {
	Role      string                 `json:"role"` // user, assistant, system, tool
	Content   string                 `json:"content"`
	AgentName string                 `json:"agent_name,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AgentTask is a unit of work assigned to an agent.
type AgentTask struct {
	ID          string                 `json:"id"`
	AgentName   string                 `json:"agent_name"`
	TaskType    string                 `json:"task_type"`
	Description string                 `json:"description"`
	InputData   map[string]interface{} `json:"input_data,omitempty"`
	OutputData  map[string]interface{} `json:"output_data,omitempty"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// RemediationProposal is a configuration change proposed by the remediation
// agent, held for explicit approval before anything touches a device.
type RemediationProposal struct {
	ID               string    `json:"id"`
	DeviceID         string    `json:"device_id"`
	DeviceHostname   string    `json:"device_hostname,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ConfigCommands   []string  `json:"config_commands"`
	RollbackCommands []string  `json:"rollback_commands"`
	RiskLevel        string    `json:"risk_level"` // low, medium, high, critical
	Approved         bool      `json:"approved"`
	ApprovedBy       string    `json:"approved_by,omitempty"`
	Executed         bool      `json:"executed"`
	CreatedAt        time.Time `json:"created_at"`
}
