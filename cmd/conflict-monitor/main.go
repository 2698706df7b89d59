// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the conflict-monitor CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/conflict-monitor/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the conflict-monitor CLI.
var rootCmd = &cobra.Command{
	Use:   "conflict-monitor",
	Short: "Fetch and validate conflict-map snapshots",
	Long: `conflict-monitor fetches date-named conflict-map JSON snapshots from a
remote file listing, validates each against the required document shape and
the domain business rules, and partitions results: valid snapshots are
accepted, invalid ones are quarantined with a human-readable error report.

The process subcommand runs one fetch-validate-classify batch; history shows
past runs from the local archive.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./conflict-monitor.yaml or ~/.config/conflict-monitor/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("conflict-monitor")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "conflict-monitor"))
		}
	}

	viper.SetEnvPrefix("CONFLICT_MONITOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
