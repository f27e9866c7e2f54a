// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package log provides the logging facade used across netopshub, backed by
// seelog. Callers use the package-level functions; the logger is configured
// once at startup via SetupLogger.
package log

import (
	"fmt"
	"sync"

	"github.com/cihub/seelog"
)

var (
	mu     sync.RWMutex
	logger seelog.LoggerInterface = seelog.Default
)

const configTemplate = `
<seelog minlevel="%s">
  <outputs formatid="common">
    <console/>
  </outputs>
  <formats>
    <format id="common" format="%%Date %%Time | %%LEV | %%Msg%%n"/>
  </formats>
</seelog>`

// SetupLogger configures the package logger with the given minimum level
// (trace, debug, info, warn, error, critical).
func SetupLogger(level string) error {
	if _, ok := seelog.LogLevelFromString(level); !ok {
		return fmt.Errorf("unknown log level: %q", level)
	}
	l, err := seelog.LoggerFromConfigAsString(fmt.Sprintf(configTemplate, level))
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	logger = l
	return nil
}

// Flush flushes any buffered log entries.
func Flush() {
	mu.RLock()
	defer mu.RUnlock()
	logger.Flush()
}

// Debug logs at the debug level.
func Debug(v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Debug(v...)
}

// Debugf logs with format at the debug level.
func Debugf(format string, params ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Debugf(format, params...)
}

// Info logs at the info level.
func Info(v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Info(v...)
}

// Infof logs with format at the info level.
func Infof(format string, params ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Infof(format, params...)
}

// Warn logs at the warn level.
func Warn(v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Warn(v...) //nolint:errcheck
}

// Warnf logs with format at the warn level.
func Warnf(format string, params ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Warnf(format, params...) //nolint:errcheck
}

// Error logs at the error level.
func Error(v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Error(v...) //nolint:errcheck
}

// Errorf logs with format at the error level.
func Errorf(format string, params ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Errorf(format, params...) //nolint:errcheck
}
