// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

// Package command builds the netopshub command tree.
package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwccie/netopshub/pkg/config"
	"github.com/cwccie/netopshub/pkg/util/log"
	"github.com/cwccie/netopshub/pkg/version"
)

type globalFlags struct {
	confFilePath string
	logLevel     string
}

// MakeRootCommand assembles the root command with every subcommand
// attached.
func MakeRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "netopshub",
		Short:        "Network operations observability platform",
		Long:         "NetOpsHub collects network telemetry over SNMP, NetFlow, syslog and REST,\nmonitors device health, audits configuration compliance, and answers\noperational questions through intent-routed agents.",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if flags.confFilePath != "" {
				if err := config.Cfg.LoadFile(flags.confFilePath); err != nil {
					return err
				}
			}
			level := flags.logLevel
			if level == "" {
				level = config.Cfg.GetString("log_level")
			}
			return log.SetupLogger(level)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.confFilePath, "config", "c", "", "path to netopshub.yaml")
	rootCmd.PersistentFlags().StringVarP(&flags.logLevel, "log-level", "l", "", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		makeServeCommand(),
		makeDiscoverCommand(),
		makeMonitorCommand(),
		makeComplianceCommand(),
		makeChatCommand(),
		makeVersionCommand(),
	)
	return rootCmd
}

func makeVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "netopshub %s\n", version.Version)
			return nil
		},
	}
}
