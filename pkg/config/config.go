// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package config holds the runtime configuration for netopshub. Settings are
// resolved from an optional YAML file, NETOPSHUB_ environment variables, and
// built-in defaults, in that order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg is the process-wide configuration instance.
var Cfg = NewConfig()

// Config is the resolved netopshub configuration.
type Config struct {
	*viper.Viper
}

// NewConfig builds a Config with defaults and environment binding applied.
func NewConfig() Config {
	v := viper.New()
	v.SetEnvPrefix("NETOPSHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return Config{Viper: v}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("demo_mode", true)

	// API server
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8000)
	v.SetDefault("api.read_timeout", 30*time.Second)
	v.SetDefault("api.write_timeout", 30*time.Second)

	// Collectors
	v.SetDefault("netflow.port", 2055)
	v.SetDefault("netflow.host", "0.0.0.0")
	v.SetDefault("netflow.workers", 1)
	v.SetDefault("netflow.max_flows", 50000)
	v.SetDefault("syslog.port", 514)
	v.SetDefault("syslog.host", "0.0.0.0")
	v.SetDefault("syslog.max_messages", 10000)
	v.SetDefault("snmp.community", "public")
	v.SetDefault("snmp.timeout", 5*time.Second)
	v.SetDefault("snmp.retries", 3)
	v.SetDefault("collect.max_metrics", 10000)

	// Monitoring
	v.SetDefault("health.max_history", 1000)
	v.SetDefault("sla.max_history", 1440)

	// Anomaly detection
	v.SetDefault("anomaly.max_history", 2000)
	v.SetDefault("anomaly.min_samples", 10)
	v.SetDefault("anomaly.z_threshold", 3.0)
	v.SetDefault("anomaly.iqr_multiplier", 1.5)
	v.SetDefault("anomaly.ewma_alpha", 0.3)
	v.SetDefault("anomaly.correlation_window", 300*time.Second)
}

// LoadFile merges settings from the given YAML config file, if present.
func (c Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	c.SetConfigFile(path)
	c.SetConfigType("yaml")
	return c.MergeInConfig()
}
