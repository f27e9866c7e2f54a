// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package agents implements the intent-routed agent system: a coordinator
// that dispatches chat messages and tasks to specialized handlers for
// discovery, diagnosis, knowledge, compliance, forecasting, remediation
// and verification.
package agents

import (
	"context"
	"sync"
	"time"

	"github.com/cwccie/netopshub/pkg/model"
)

// Agent is a specialized task and chat handler.
type Agent interface {
	Name() string
	Description() string

	// Process runs a task to completion, returning it with status,
	// output data and timestamps filled in.
	Process(ctx context.Context, task *model.AgentTask) *model.AgentTask

	// Chat answers a free-form message in the agent's domain.
	Chat(ctx context.Context, message string, chatCtx map[string]interface{}) string
}

// baseAgent carries the bookkeeping shared by every agent.
type baseAgent struct {
	name        string
	description string

	mu       sync.Mutex
	tasks    []*model.AgentTask
	messages []model.AgentMessage
}

func newBaseAgent(name, description string) baseAgent {
	return baseAgent{name: name, description: description}
}

func (a *baseAgent) Name() string        { return a.name }
func (a *baseAgent) Description() string { return a.description }

func (a *baseAgent) logMessage(role, content string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, model.AgentMessage{
		Role:      role,
		Content:   content,
		AgentName: a.name,
		Timestamp: time.Now().UTC(),
	})
}

// History returns the most recent chat messages, oldest first.
func (a *baseAgent) History(limit int) []model.AgentMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	start := len(a.messages) - limit
	if start < 0 {
		start = 0
	}
	out := make([]model.AgentMessage, len(a.messages)-start)
	copy(out, a.messages[start:])
	return out
}

// TaskHistory returns the most recently processed tasks, oldest first.
func (a *baseAgent) TaskHistory(limit int) []*model.AgentTask {
	a.mu.Lock()
	defer a.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	start := len(a.tasks) - limit
	if start < 0 {
		start = 0
	}
	out := make([]*model.AgentTask, len(a.tasks)-start)
	copy(out, a.tasks[start:])
	return out
}

func (a *baseAgent) completeTask(task *model.AgentTask, output map[string]interface{}) *model.AgentTask {
	now := time.Now().UTC()
	task.Status = model.TaskCompleted
	task.OutputData = output
	task.CompletedAt = &now
	a.mu.Lock()
	a.tasks = append(a.tasks, task)
	a.mu.Unlock()
	return task
}

func (a *baseAgent) failTask(task *model.AgentTask, errMsg string) *model.AgentTask {
	now := time.Now().UTC()
	task.Status = model.TaskFailed
	task.Error = errMsg
	task.CompletedAt = &now
	a.mu.Lock()
	a.tasks = append(a.tasks, task)
	a.mu.Unlock()
	return task
}

// NewTask builds a pending task addressed to an agent.
func NewTask(agentName, taskType, description string, input map[string]interface{}) *model.AgentTask {
	return &model.AgentTask{
		ID:          model.NewID(),
		AgentName:   agentName,
		TaskType:    taskType,
		Description: description,
		InputData:   input,
		Status:      model.TaskPending,
		CreatedAt:   time.Now().UTC(),
	}
}

// inputString reads a string field from task input data.
func inputString(input map[string]interface{}, key, fallback string) string {
	if v, ok := input[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// inputFloats reads a numeric slice from task input data, tolerating the
// interface slices produced by JSON decoding.
func inputFloats(input map[string]interface{}, key string) []float64 {
	switch v := input[key].(type) {
	case []float64:
		return v
	case []interface{}:
		out := make([]float64, 0, len(v))
		for _, item := range v {
			switch n := item.(type) {
			case float64:
				out = append(out, n)
			case int:
				out = append(out, float64(n))
			case int64:
				out = append(out, float64(n))
			}
		}
		return out
	}
	return nil
}

// inputFloat reads a numeric field from task input data.
func inputFloat(input map[string]interface{}, key string, fallback float64) float64 {
	switch v := input[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return fallback
}
