// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

package main

import (
	"github.com/spf13/cobra"
)

// serviceName labels logs, traces and metrics.
const serviceName = "amesco-plus"

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the amesco CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "amesco",
		Short: "Amesco Plus loyalty backend",
		Long: `Amesco Plus serves member registration, login sessions and
password recovery for the Amesco loyalty program over HTTP+JSON.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default $XDG_CONFIG_HOME/amesco/config.yaml)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
