// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package main is the entry point for the netopshub binary.
package main

import (
	"os"

	"github.com/cwccie/netopshub/cmd/netopshub/command"
	"github.com/cwccie/netopshub/pkg/util/log"
)

func main() {
	defer log.Flush()
	if err := command.MakeRootCommand().Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}
