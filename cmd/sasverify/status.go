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
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/sas-verify/internal/metrics"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the in-process verification metrics snapshot",
	Long: `status reports the current process's MetricsCollector snapshot: state
transitions, commitment checks, MAC validations, store lookups, and
to-device sends recorded since process start. In a running server this is
a cheaper cousin of the /metrics Prometheus endpoint.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	snapshot := metrics.GetGlobalCollector().GetSnapshot()

	if statusJSON {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	}

	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("  SAS Verify Status")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("Uptime:             %s\n", snapshot.Uptime)
	fmt.Printf("Transitions:        %d\n", snapshot.TransitionCount)
	fmt.Printf("Commitment checks:  %d (matched %d, mismatched %d)\n",
		snapshot.CommitmentChecks, snapshot.CommitmentMatches, snapshot.CommitmentMismatches)
	fmt.Printf("MAC validations:    %d (valid %.1f%%)\n",
		snapshot.MacValidations, snapshot.GetMacValidRate())
	fmt.Printf("Store lookups:      %d (hit rate %.1f%%)\n",
		snapshot.StoreLookups, snapshot.GetStoreHitRate())
	fmt.Printf("Transport sends:    %d (error rate %.1f%%)\n",
		snapshot.TransportSends, snapshot.GetTransportErrorRate())
	fmt.Printf("Avg transition:     %.0fus (p95 %dus)\n", snapshot.AvgTransitionTime, snapshot.P95TransitionTime)
	fmt.Println("═══════════════════════════════════════════════════════════")

	return nil
}
