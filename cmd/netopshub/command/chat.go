// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cwccie/netopshub/pkg/agents"
	"github.com/cwccie/netopshub/pkg/collect"
	"github.com/cwccie/netopshub/pkg/compliance"
	"github.com/cwccie/netopshub/pkg/config"
	"github.com/cwccie/netopshub/pkg/discover"
)

func makeChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Chat with the operations assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			demoMode := config.Cfg.GetBool("demo_mode")
			poller := collect.NewSNMPPoller(demoMode)
			scanner := discover.NewNetworkScanner(poller, demoMode)
			topology := discover.NewTopologyDiscovery()
			engine := compliance.NewEngine(demoMode)

			coordinator := agents.NewCoordinator(scanner, topology, engine)
			response := coordinator.Chat(cmd.Context(), strings.Join(args, " "), nil)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", response)
			return nil
		},
	}
}
