// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// Copyright 2024-present NetOpsHub authors.

package command

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cwccie/netopshub/pkg/compliance"
	"github.com/cwccie/netopshub/pkg/config"
)

func makeComplianceCommand() *cobra.Command {
	var framework string

	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Run a compliance audit against security frameworks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			engine := compliance.NewEngine(config.Cfg.GetBool("demo_mode"))
			report := engine.AuditAll(framework)

			bold := color.New(color.Bold)
			bold.Fprintf(out, "\nCompliance Audit Results\n")
			fmt.Fprintln(out, strings.Repeat("=", 50))
			fmt.Fprintf(out, "Overall Score: %g%%\n", report.Summary.OverallScore)
			fmt.Fprintf(out, "Checks: %d total, %d passed, %d failed\n\n",
				report.Summary.TotalChecks, report.Summary.Compliant, report.Summary.NonCompliant)

			deviceIDs := make([]string, 0, len(report.Devices))
			for id := range report.Devices {
				deviceIDs = append(deviceIDs, id)
			}
			sort.Strings(deviceIDs)

			red := color.New(color.FgRed)
			for _, id := range deviceIDs {
				data := report.Devices[id]
				fmt.Fprintf(out, "  %s: %g%%\n", id, data.Score)
				for _, failure := range data.Failures {
					red.Fprintf(out, "    FAIL: %s\n", failure.Rule)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&framework, "framework", "", "framework (NIST-800-53, CIS, PCI-DSS)")
	return cmd
}
