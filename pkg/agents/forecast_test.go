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

func TestForecastPredictCapacity(t *testing.T) {
	a := NewForecastAgent()

	// Values arrive as []interface{} when the task came over the API.
	history := make([]interface{}, 0, 10)
	for v := 10.0; v < 30; v += 2 {
		history = append(history, v)
	}
	task := NewTask("forecast", "predict_capacity", "", map[string]interface{}{
		"metric_history": history,
		"threshold":      50.0,
	})
	done := a.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)

	assert.Equal(t, "breach_predicted", done.OutputData["status"])
	assert.Equal(t, 28.0, done.OutputData["current_value"])
	assert.Equal(t, 50.0, done.OutputData["threshold"])
}

func TestForecastPredictCapacityDefaultThreshold(t *testing.T) {
	a := NewForecastAgent()

	task := NewTask("forecast", "predict_capacity", "", map[string]interface{}{
		"metric_history": []float64{85, 86, 87, 88, 89},
	})
	done := a.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)
	// Falls back to a 90% threshold.
	assert.Equal(t, 90.0, done.OutputData["threshold"])
	assert.Equal(t, "breach_predicted", done.OutputData["status"])
}

func TestForecastTrendAnalysis(t *testing.T) {
	a := NewForecastAgent()

	task := NewTask("forecast", "trend_analysis", "", map[string]interface{}{
		"metric_history": []float64{50, 40, 30, 20, 10},
	})
	done := a.Process(context.Background(), task)
	require.Equal(t, model.TaskCompleted, done.Status)
	assert.Equal(t, "decreasing", done.OutputData["trend"])
}

func TestForecastUnknownTaskType(t *testing.T) {
	a := NewForecastAgent()

	done := a.Process(context.Background(), NewTask("forecast", "bogus", "", nil))
	assert.Equal(t, model.TaskFailed, done.Status)
	assert.Equal(t, "Unknown task type: bogus", done.Error)
}

func TestForecastChat(t *testing.T) {
	a := NewForecastAgent()
	ctx := context.Background()

	response := a.Chat(ctx, "When will bandwidth run out?", nil)
	assert.Contains(t, response, "Bandwidth Capacity Forecast")

	response = a.Chat(ctx, "How is CPU trending?", nil)
	assert.Contains(t, response, "Resource Capacity Forecast")

	response = a.Chat(ctx, "Show me the forecast", nil)
	assert.Contains(t, response, "Network Forecast Summary")

	response = a.Chat(ctx, "hello", nil)
	assert.Contains(t, response, "capacity exhaustion")
}
