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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Wires the Ed25519/X25519 key generators and memory key storage into
	// the crypto package's constructor hooks.
	_ "github.com/sage-x-project/sas-verify/internal/cryptoinit"
)

var rootCmd = &cobra.Command{
	Use:   "sasverify",
	Short: "SAS Verify CLI - Matrix short authentication string device verification",
	Long: `sasverify drives and inspects Matrix Short Authentication String (SAS)
device-verification flows.

This tool supports:
- Running a local end-to-end SAS verification between two simulated devices
- Serving the to-device WebSocket transport for real verification traffic
- Checking the health of the configured store
- Printing in-process verification metrics`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
