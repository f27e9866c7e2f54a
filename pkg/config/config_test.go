// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "info", cfg.GetString("log_level"))
	assert.True(t, cfg.GetBool("demo_mode"))
	assert.Equal(t, 8000, cfg.GetInt("api.port"))
	assert.Equal(t, 2055, cfg.GetInt("netflow.port"))
	assert.Equal(t, 514, cfg.GetInt("syslog.port"))
	assert.Equal(t, "public", cfg.GetString("snmp.community"))
	assert.Equal(t, 5*time.Second, cfg.GetDuration("snmp.timeout"))
	assert.Equal(t, 10000, cfg.GetInt("collect.max_metrics"))
	assert.Equal(t, 3.0, cfg.GetFloat64("anomaly.z_threshold"))
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netopshub.yaml")
	content := `log_level: debug
api:
  port: 9000
demo_mode: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFile(path))
	assert.Equal(t, "debug", cfg.GetString("log_level"))
	assert.Equal(t, 9000, cfg.GetInt("api.port"))
	assert.False(t, cfg.GetBool("demo_mode"))
	// Untouched keys keep their defaults.
	assert.Equal(t, 2055, cfg.GetInt("netflow.port"))
}

func TestLoadFileEmptyPathIsNoop(t *testing.T) {
	cfg := NewConfig()
	assert.NoError(t, cfg.LoadFile(""))
}

func TestLoadFileMissing(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.LoadFile("/nonexistent/netopshub.yaml"))
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("NETOPSHUB_LOG_LEVEL", "warn")
	t.Setenv("NETOPSHUB_API_PORT", "8081")
	cfg := NewConfig()
	assert.Equal(t, "warn", cfg.GetString("log_level"))
	assert.Equal(t, 8081, cfg.GetInt("api.port"))
}
