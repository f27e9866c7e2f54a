// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package command

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cwccie/netopshub/pkg/collect"
	"github.com/cwccie/netopshub/pkg/config"
	"github.com/cwccie/netopshub/pkg/discover"
)

func makeDiscoverCommand() *cobra.Command {
	var subnet, community string

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Discover network devices on a subnet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scanning %s...\n", subnet)

			poller := collect.NewSNMPPoller(config.Cfg.GetBool("demo_mode"))
			scanner := discover.NewNetworkScanner(poller, config.Cfg.GetBool("demo_mode"))
			devices, err := scanner.ScanSubnet(cmd.Context(), subnet, community)
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Fprintf(out, "\nDiscovered %d devices:\n\n", len(devices))
			for _, d := range devices {
				fmt.Fprintf(out, "  %-25s %-15s %-10s %-20s %s\n",
					d.Hostname, d.IPAddress, d.Vendor, d.Model, d.OSVersion)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&subnet, "subnet", "10.0.0.0/24", "subnet to scan")
	cmd.Flags().StringVar(&community, "community", "public", "SNMP community string")
	return cmd
}
