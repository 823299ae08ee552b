// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sas-verify/health"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the configured store",
	Long: `health registers the database check for the configured store driver
and reports its status; the to-device transport is not checked.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	checker := health.NewHealthChecker(5 * time.Second)
	checker.RegisterCheck("store", health.DatabaseHealthCheck(st.Ping))

	ctx := context.Background()
	results := checker.CheckAll(ctx)
	overall := checker.GetOverallStatus(ctx)

	if healthJSON {
		data, err := json.MarshalIndent(map[string]interface{}{
			"status": overall,
			"checks": results,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode health status: %w", err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  SAS Verify Health Check")
		fmt.Println("═══════════════════════════════════════════════════════════")
		for name, result := range results {
			symbol := "?"
			switch result.Status {
			case health.StatusHealthy:
				symbol = "✓"
			case health.StatusDegraded:
				symbol = "⚠"
			case health.StatusUnhealthy:
				symbol = "✗"
			}
			fmt.Printf("%s %-12s %s", symbol, name, result.Status)
			if result.Message != "" {
				fmt.Printf(" (%s)", result.Message)
			}
			fmt.Println()
		}
		fmt.Printf("\nOverall: %s\n", overall)
		fmt.Println("═══════════════════════════════════════════════════════════")
	}

	if overall != health.StatusHealthy {
		os.Exit(1)
	}
	return nil
}
