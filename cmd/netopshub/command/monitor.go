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
	"github.com/cwccie/netopshub/pkg/model"
	"github.com/cwccie/netopshub/pkg/monitor"
)

func makeMonitorCommand() *cobra.Command {
	var device string

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Show health metrics for a device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			target := device
			if target == "" {
				target = "10.0.0.1"
			}

			poller := collect.NewSNMPPoller(config.Cfg.GetBool("demo_mode"))
			poller.AddTarget(collect.SNMPTarget{Host: target})
			metrics, err := poller.PollDevice(cmd.Context(), target)
			if err != nil {
				return err
			}

			healthMonitor := monitor.NewHealthMonitor(nil, config.Cfg.GetInt("health.max_history"))
			alerts := healthMonitor.ProcessMetrics(metrics)

			fmt.Fprintf(out, "\nHealth metrics for %s:\n\n", target)
			for _, m := range metrics {
				intf := ""
				if m.InterfaceName != "" {
					intf = fmt.Sprintf(" (%s)", m.InterfaceName)
				}
				fmt.Fprintf(out, "  %-20s%-25s %8.1f %s\n", m.MetricType, intf, m.Value, m.Unit)
			}

			if len(alerts) > 0 {
				fmt.Fprintf(out, "\n%d alert(s):\n", len(alerts))
				for _, a := range alerts {
					severityColor(a.Severity).Fprintf(out, "  [%-8s] %s\n", a.Severity, a.Title)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&device, "device", "", "device hostname or IP")
	return cmd
}

func severityColor(severity model.AlertSeverity) *color.Color {
	switch severity {
	case model.SeverityEmergency, model.SeverityCritical:
		return color.New(color.FgRed)
	case model.SeverityWarning:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgCyan)
	}
}
