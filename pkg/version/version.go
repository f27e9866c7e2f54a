// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package version holds the version of the netopshub binary.
package version

// Version is the current NetOpsHub version.
const Version = "0.4.0"
