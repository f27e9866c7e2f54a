// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cwccie/netopshub/pkg/api"
	"github.com/cwccie/netopshub/pkg/config"
)

func makeServeCommand() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the NetOpsHub API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if host == "" {
				host = config.Cfg.GetString("api.host")
			}
			if port == 0 {
				port = config.Cfg.GetInt("api.port")
			}
			addr := fmt.Sprintf("%s:%d", host, port)
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Starting NetOpsHub API on %s\n", addr)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(api.NewState(config.Cfg), addr)
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "bind address")
	cmd.Flags().IntVar(&port, "port", 0, "bind port")
	return cmd
}
